package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/websocket"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/wsconn"
)

type flatOracle struct{}

func (flatOracle) Quote(_ context.Context, _ quoting.Venue, _, _ *asset.Asset, amount decimal.Decimal) (decimal.Decimal, error) {
	return amount, nil
}

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
}

func testPlan(key string, sameToken bool) domain.Plan {
	usdt := asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), "USDT", 18)
	usdc := asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"), "USDC", 18)
	if sameToken {
		usdc = usdt
	}
	rng := domain.ScanRange{Min: 1, Max: 10}
	return domain.Plan{
		Key:       key,
		Name:      key,
		Chain:     "bsc",
		Token0:    usdt,
		Token1:    usdc,
		VenueA:    quoting.Venue{Kind: quoting.KindV2, Address: common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E")},
		VenueB:    quoting.Venue{Kind: quoting.KindV3, Address: common.HexToAddress("0x78D78E420Da98ad378D7799bE8f4AF69033EB077"), Fee: 100},
		Direction: domain.Forward,
		Base:      domain.BaseToken0,
		Range:     &rng,
		Mode:      domain.ModeThorough,
		Params:    domain.ThoroughParams(),
	}
}

func newRadar(t *testing.T) *app.Radar {
	t.Helper()
	opts := app.SurfaceOptions{Oracle: flatOracle{}, Logger: testLogger()}
	r, err := app.NewRadar(testLogger(),
		app.NewSurface(testPlan("good", false), opts),
		app.NewSurface(testPlan("bad", true), opts),
	)
	if err != nil {
		t.Fatalf("NewRadar: %v", err)
	}
	return r
}

func TestControlAPI(t *testing.T) {
	radar := newRadar(t)
	mux := http.NewServeMux()
	NewControlAPI(radar, nil, testLogger()).Register(mux)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "list", method: http.MethodGet, path: "/surfaces", wantStatus: http.StatusOK, wantBody: `"key":"good"`},
		{name: "get", method: http.MethodGet, path: "/surfaces/good", wantStatus: http.StatusOK, wantBody: `"state":"idle"`},
		{name: "unknown surface", method: http.MethodGet, path: "/surfaces/nope", wantStatus: http.StatusNotFound, wantBody: "SURFACE_NOT_FOUND"},
		{name: "scan", method: http.MethodPost, path: "/surfaces/good/scan", wantStatus: http.StatusAccepted, wantBody: `"session"`},
		{name: "blocked scan", method: http.MethodPost, path: "/surfaces/bad/scan", wantStatus: http.StatusBadRequest, wantBody: "SAME_TOKEN"},
		{name: "cancel", method: http.MethodPost, path: "/surfaces/good/cancel", wantStatus: http.StatusNoContent},
		{name: "cancel unknown", method: http.MethodPost, path: "/surfaces/nope/cancel", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/surfaces/good/scan", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s missing %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestControlAPI_ScanPublishes(t *testing.T) {
	radar := newRadar(t)
	mux := http.NewServeMux()
	NewControlAPI(radar, nil, testLogger()).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/surfaces/good/scan", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	s, _ := radar.Surface("good")
	if err := s.Active().Wait(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/surfaces/good", nil))

	var snap struct {
		State  string `json:"state"`
		Result *struct {
			BestInput  float64 `json:"best_input"`
			Profitable bool    `json:"profitable"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.State != "done" || snap.Result == nil {
		t.Fatalf("snapshot = %s", rec.Body.String())
	}
	if snap.Result.Profitable {
		t.Error("flat round trip reported profitable")
	}
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r.Report(app.Event{Type: app.EventProgress, Surface: "a", Progress: 40, At: at})
	if buf.Len() != 0 {
		t.Fatalf("progress printed: %q", buf.String())
	}

	r.Report(app.Event{Type: app.EventResult, Surface: "a", At: at, Result: &domain.ScanResult{
		BestInput: 250, BestProfit: 7.5, Profitable: true, Evaluations: 25, CompletedAt: at,
	}})
	r.Report(app.Event{Type: app.EventRateLimited, Surface: "a", At: at})

	out := buf.String()
	for _, want := range []string{"SCAN RESULT: a", "250.000000", "+7.500000", "PROFITABLE", "03:04:05] a: rate limited"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTUIReporter_SkipsSamples(t *testing.T) {
	var got []any
	r := NewTUIReporter(func(msg tea.Msg) { got = append(got, msg) })

	r.Report(app.Event{Type: app.EventEvaluation})
	r.Report(app.Event{Type: app.EventProgress})
	r.Report(app.Event{Type: app.EventRateLimited, Surface: "a"})

	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
}

func TestFeedReporter_Broadcasts(t *testing.T) {
	hub := wsconn.NewHub(wsconn.Config{})
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	NewFeedReporter(hub, testLogger()).Report(app.Event{Type: app.EventRateLimited, Surface: "a"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev app.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != app.EventRateLimited || ev.Surface != "a" {
		t.Errorf("event = %+v", ev)
	}
}
