package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/sleepwatch/internal/client"
	"github.com/julianstephens/sleepwatch/internal/config"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/controller"
	"github.com/julianstephens/sleepwatch/internal/keyring"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/storage"
	"github.com/julianstephens/sleepwatch/internal/storage/postgres"
	"github.com/julianstephens/sleepwatch/internal/storage/sqlite"
)

type Context struct {
	Config *config.Config
	Store  storage.Provider

	// Remote overrides the HTTP client built from Config.
	Remote controller.Remote
	// Clock overrides time.Now.
	Clock func() time.Time
	Out   io.Writer

	ctrl *controller.Controller
}

// Controller returns the controller for this invocation, building it and
// restoring the local cache on first use.
func (c *Context) Controller() (*controller.Controller, error) {
	if c.ctrl != nil {
		return c.ctrl, nil
	}

	loc, err := c.Config.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	remote := c.Remote
	if remote == nil {
		cl, err := client.New(client.Config{BaseURL: c.Config.BaseURL, Timeout: c.Config.Timeout})
		if err != nil {
			return nil, err
		}
		remote = cl
	}

	opts := []controller.Option{controller.WithLocation(loc)}
	if c.Clock != nil {
		opts = append(opts, controller.WithClock(c.Clock))
	}
	ctrl := controller.New(remote, c.Store, opts...)
	if err := ctrl.Init(); err != nil {
		// The cache only seeds the first screen; carry on without it.
		logger.Warn("starting without cached state", "error", err)
	}
	c.ctrl = ctrl
	return ctrl, nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, args...)
}

// OpenStore picks the storage backend for path. ephemeral keeps everything in
// memory for the lifetime of the process.
func OpenStore(path string, ephemeral bool) (storage.Provider, error) {
	switch {
	case ephemeral:
		return storage.NewMemoryStore(), nil

	case path == constants.StoreKeyring:
		connStr, err := keyring.ResolveConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in %s or the keyring; use '%s keyring set'", keyring.EnvConnectionString, constants.AppName)
			}
			return nil, err
		}
		return postgres.New(connStr), nil

	case config.IsPostgres(path):
		if _, err := postgres.ValidateConnString(path); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with '%s keyring set' or use .pgpass", constants.AppName)
			}
			return nil, err
		}
		return postgres.New(path), nil
	}
	return sqlite.NewStore(config.ExpandHome(path)), nil
}

// LoadStore opens an existing store, creating it on first run.
func LoadStore(store storage.Provider) error {
	err := store.Load()
	if errors.Is(err, storage.ErrNotInitialized) {
		logger.Info("initializing local state store", "path", store.GetConfigPath())
		return store.Init()
	}
	return err
}
