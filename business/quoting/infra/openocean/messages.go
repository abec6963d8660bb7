package openocean

import (
	"bytes"
	"encoding/json"
)

// QuoteResponse is the body of GET /{chain}/quote.
type QuoteResponse struct {
	Code int        `json:"code"`
	Data *QuoteData `json:"data"`
}

// QuoteData holds the fields of a quote the radar reads.
type QuoteData struct {
	InAmount     RawAmount `json:"inAmount"`
	OutAmount    RawAmount `json:"outAmount"`
	EstimatedGas RawAmount `json:"estimatedGas"`
}

// RawAmount is an integer amount in the token's smallest unit. The API sends
// it either as a JSON string or as a bare number.
type RawAmount string

// UnmarshalJSON accepts quoted and unquoted integers.
func (r *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = RawAmount(n.String())
	return nil
}
