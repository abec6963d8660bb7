// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/config"
	"github.com/fd1az/optimal-input-radar/internal/di"
	"github.com/fd1az/optimal-input-radar/internal/health"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient(chain string) (*ethclient.Client, error)
	AssetRegistry() *asset.Registry
	Mux() *health.Server
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	server        *health.Server
	container     di.Container

	clientsMu  sync.Mutex
	ethClients map[string]*ethclient.Client
	dial       func(rawurl string) (*ethclient.Client, error)
}

// New creates a new Monolith instance. RPC clients are dialed lazily, per
// chain, the first time a module asks for one.
func New(cfg *config.Config, log logger.LoggerInterface, server *health.Server) *app {
	assetRegistry := asset.DefaultRegistry()

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("assetRegistry", assetRegistry)

	a := &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		server:        server,
		container:     container,
		ethClients:    make(map[string]*ethclient.Client),
		dial:          ethclient.Dial,
	}
	container.Register("monolith", Monolith(a))
	return a
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

// EthClient returns the shared RPC client for a configured chain.
func (a *app) EthClient(chain string) (*ethclient.Client, error) {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()

	if c, ok := a.ethClients[chain]; ok {
		return c, nil
	}

	cc, ok := a.config.Chains[chain]
	if !ok || cc.RPCURL == "" {
		return nil, apperror.New(apperror.CodeChainNotConfigured, apperror.WithContext(chain))
	}

	c, err := a.dial(cc.RPCURL)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("chain %s", chain)))
	}
	a.ethClients[chain] = c
	return c, nil
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

// Mux returns the HTTP server modules mount their handlers on.
func (a *app) Mux() *health.Server {
	return a.server
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all RPC clients.
func (a *app) Close() error {
	a.clientsMu.Lock()
	defer a.clientsMu.Unlock()
	for chain, c := range a.ethClients {
		c.Close()
		delete(a.ethClients, chain)
	}
	return nil
}
