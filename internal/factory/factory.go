package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/okeefe/typeduel/internal/dependencies/random"
	"github.com/okeefe/typeduel/internal/services/passage"
	"github.com/okeefe/typeduel/internal/services/registry"
	"github.com/okeefe/typeduel/internal/services/session"
	"github.com/okeefe/typeduel/internal/storage"
	"github.com/okeefe/typeduel/internal/storage/memory"
	redisstorage "github.com/okeefe/typeduel/internal/storage/redis"
	"github.com/okeefe/typeduel/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clockwork.Clock
	Random random.Random

	// Services
	PassageService *passage.Service
	Registry       *registry.Registry
	Sessions       *session.Controller

	// Transport
	Hub           *ws.Hub
	SocketHandler *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionConfig holds countdown settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// SocketConfig holds websocket transport settings (optional)
	// If zero value, defaults to ws.DefaultConfig()
	SocketConfig ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sessionCfg := cfg.SessionConfig
	if sessionCfg.TickInterval == 0 {
		sessionCfg = session.DefaultConfig()
	}
	socketCfg := cfg.SocketConfig
	if socketCfg.PingInterval == 0 {
		socketCfg = ws.DefaultConfig()
	}

	return newWithDependencies(store, clockwork.NewRealClock(), random.New(), sessionCfg, socketCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clockwork.Clock,
	rnd random.Random,
	sessionCfg session.Config,
	socketCfg ws.Config,
	logger *slog.Logger,
) *App {
	passageService := passage.New(store, rnd)
	roomRegistry := registry.New(store, clk, rnd, logger)

	hub := ws.NewHub(logger)
	broadcaster := session.NewBroadcaster(hub, logger)
	sessions := session.NewController(roomRegistry, passageService, broadcaster, clk, sessionCfg, logger)
	socketHandler := ws.NewHandler(hub, sessions, socketCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		PassageService: passageService,
		Registry:       roomRegistry,
		Sessions:       sessions,
		Hub:            hub,
		SocketHandler:  socketHandler,
	}
}
