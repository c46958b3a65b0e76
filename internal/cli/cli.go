package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/extract"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
	"github.com/matzehuels/lineage/pkg/store/filestore"
	"github.com/matzehuels/lineage/pkg/store/mongostore"
	"github.com/matzehuels/lineage/pkg/store/redisstore"
	"github.com/matzehuels/lineage/pkg/store/sqlstore"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lineage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Session
// =============================================================================

// sessionStore opens the store holding the CLI session. The returned close
// function releases any connection it opened.
func sessionStore(cfg config.Config) (*session.CLIStore, func() error, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
		return session.NewCurrent(session.NewRedisStore(client)), client.Close, nil
	default:
		s, err := session.NewCLIStore(cfg.Session.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return s, func() error { return nil }, nil
	}
}

// currentSession returns the logged-in session or an UNAUTHORIZED error.
func currentSession(ctx context.Context, cfg config.Config) (*session.Session, error) {
	ss, closeFn, err := sessionStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	sess, err := ss.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeUnauthorized, "not logged in (run '%s login' first)", appName)
	}
	return sess, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openBackend connects the storage backend selected in cfg for userID.
func openBackend(ctx context.Context, cfg config.Config, userID string) (store.Backend, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendMongo:
		return mongostore.Open(ctx, mongostore.Config{URI: sc.MongoURI, Database: sc.MongoDatabase}, userID)
	case config.BackendRedis:
		return redisstore.Open(ctx, redisstore.Config{Addr: sc.RedisAddr, Password: sc.RedisPassword, DB: sc.RedisDB}, userID)
	case config.BackendPostgres:
		return sqlstore.Open(sc.PostgresDSN, userID, sc.Debug)
	default:
		dir := sc.Dir
		if dir == "" {
			d, err := filestore.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return filestore.New(dir, userID)
	}
}

// openStore loads the family tree of the logged-in user. Callers must
// release it with closeStore.
func (c *CLI) openStore(ctx context.Context) (*store.Store, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	sess, err := currentSession(ctx, cfg)
	if err != nil {
		return nil, cfg, err
	}
	st, err := c.loadStore(ctx, cfg, sess)
	return st, cfg, err
}

// loadStore opens the configured backend for sess and loads its tree.
func (c *CLI) loadStore(ctx context.Context, cfg config.Config, sess *session.Session) (*store.Store, error) {
	backend, err := openBackend(ctx, cfg, sess.UserID())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s storage", cfg.Storage.Backend)
	}
	st, err := store.New(sess, backend, store.WithLogger(c.Logger))
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := st.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// closeStore waits for relative updates, reports failures and closes the
// backend.
func (c *CLI) closeStore(ctx context.Context, st *store.Store) {
	if err := st.Flush(context.WithoutCancel(ctx)); err != nil {
		printWarning("Some relatives could not be updated: %v", err)
	}
	if err := st.Close(); err != nil {
		c.Logger.Warn("close storage", "error", err)
	}
}

// =============================================================================
// Extraction Factory
// =============================================================================

// newCache opens the response cache selected in cfg.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.BackendRedis {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newExtractor builds the text extraction client for userID. Responses are
// cached per user.
func (c *CLI) newExtractor(ctx context.Context, cfg config.Config, userID string, noCache bool) (extract.Extractor, func() error, error) {
	if !cfg.AI.Enabled() {
		return extract.Disabled{}, func() error { return nil }, nil
	}
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "error", err)
		ch = cache.NewNullCache()
	}
	client := extract.NewOpenAI(extract.Config{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Logger:  c.Logger,
	})
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:"+userID+":")
	return extract.NewCached(client, ch, keyer), ch.Close, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lineage/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
