package main

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vitalvas/reroute/mux"
	"github.com/vitalvas/reroute/resolver"
	"github.com/vitalvas/reroute/routecache"
	"github.com/vitalvas/reroute/routes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	viper      *viper.Viper
	cfg        *Config
	logger     *log.Logger

	closers []io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "routectl",
		Short: "Inspect and exercise reroute route definitions",
		Long: `routectl loads a route definition file (YAML, TOML or JSON) into a
router and runs forward or reverse dispatch against it.

Examples:
  routectl list --routes routes.yaml
  routectl match GET widget/42/edit
  routectl reverse edit Widget --id 42
  routectl fingerprint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./routectl.yaml)")
	flags.String("routes", "", "route definition file")
	flags.String("prefix", "", "router path prefix, overrides the definition file")
	flags.Bool("debug", false, "log every dispatch")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newListCmd(a),
		newMatchCmd(a),
		newReverseCmd(a),
		newFingerprintCmd(a),
		newCacheCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.viper, a.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	logger.SetOutput(cmd.ErrOrStderr())

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}

// loadFile loads and validates the configured definition file.
func (a *app) loadFile() (*routes.File, string, error) {
	file, err := routes.LoadFile(a.cfg.Routes)
	if err != nil {
		return nil, "", err
	}
	if a.cfg.Prefix != "" {
		file.Prefix = a.cfg.Prefix
	}

	version, err := file.Fingerprint()
	if err != nil {
		return nil, "", err
	}
	return file, version, nil
}

// cacheStore returns the configured Redis store, or nil when caching is off.
func (a *app) cacheStore() *routecache.Redis {
	if a.cfg.Cache.Redis.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Cache.Redis.Addr,
		Password: a.cfg.Cache.Redis.Password,
		DB:       a.cfg.Cache.Redis.DB,
	})
	a.closers = append(a.closers, client)

	return routecache.NewRedis(client,
		routecache.WithPrefix(a.cfg.Cache.Redis.Prefix),
		routecache.WithTTL(a.cfg.Cache.TTL),
	)
}

// openRecords opens the sqlite database of routable records, or returns
// nil when none is configured.
func (a *app) openRecords(ctx context.Context) (*resolver.Store, error) {
	if a.cfg.DB.Path == "" {
		return nil, nil
	}

	db, err := gorm.Open(sqlite.Open(a.cfg.DB.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.DB.Path, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB)
	}

	store := resolver.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// buildRouter loads the definitions into a new router, through the cache
// when one is configured, and wires the record resolver.
// newRouter loads the definition file and returns an empty router with the
// file and config types registered, plus the file and its version id.
func (a *app) newRouter() (*mux.Router, *routes.File, string, error) {
	file, version, err := a.loadFile()
	if err != nil {
		return nil, nil, "", err
	}

	r := mux.NewRouter().SetLogger(a.logger).SetDebug(a.cfg.Debug)

	// Types are not part of cached snapshots. Config keys arrive
	// lower-cased, so known types keep the spelling of the file.
	types := r.Types()
	for _, name := range sortedKeys(file.Types) {
		if err := types.Register(name, file.Types[name]); err != nil {
			return nil, nil, "", fmt.Errorf("type %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(a.cfg.Types) {
		parent := a.cfg.Types[name]
		if parent != "" {
			parent = types.Canonical(parent)
		}
		if err := types.Register(types.Canonical(name), parent); err != nil {
			return nil, nil, "", fmt.Errorf("type %q: %w", name, err)
		}
	}

	return r, file, version, nil
}

func (a *app) buildRouter(ctx context.Context) (*mux.Router, error) {
	r, file, version, err := a.newRouter()
	if err != nil {
		return nil, err
	}

	if store := a.cacheStore(); store != nil {
		cached, err := r.LoadCached(ctx, store, a.cfg.Cache.Key, version, file.Builder())
		if err != nil {
			return nil, err
		}
		a.logger.WithFields(log.Fields{"cached": cached, "version": version}).Debug("route table loaded")
	} else if err := file.Apply(r); err != nil {
		return nil, err
	}

	records, err := a.openRecords(ctx)
	if err != nil {
		return nil, err
	}
	if records != nil {
		r.SetResolver(resolver.NewRegistry(r.Types()).Register(mux.RootType, records.Lookup()))
	}

	return r, nil
}
