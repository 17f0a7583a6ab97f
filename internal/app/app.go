package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/config"
	"github.com/five82/comanda/internal/logging"
	"github.com/five82/comanda/internal/prefs"
	"github.com/five82/comanda/internal/query"
	"github.com/five82/comanda/internal/realtime"
	"github.com/five82/comanda/internal/session"
	"github.com/five82/comanda/internal/state"
	"github.com/five82/comanda/internal/ui"
)

// Options configure the comanda application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/comanda/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Logout     bool   // clear the stored session and exit
	Version    string
}

// Run boots the comanda TUI until the context is cancelled or the operator
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	sess, err := session.Open(cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = sess.Close() }()

	if opts.Logout {
		if err := sess.Clear(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		logger.Info("session cleared")
		return nil
	}

	userAgent := "comanda"
	if opts.Version != "" {
		userAgent += "/" + opts.Version
	}
	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithTokenSource(sess),
		api.WithUserAgent(userAgent),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	if err := ensureSession(ctx, client, sess, logger, time.Now()); err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs", "err", err)
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	return serve(ctx, cfg, userPrefs, opts.PrefsPath, interval, client, sess, logger)
}

// serve runs the background workers alongside the UI and stops them all when
// the UI exits.
func serve(ctx context.Context, cfg config.Config, userPrefs prefs.Prefs, prefsPath string, interval time.Duration, client *api.Client, sess *session.Store, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	cache := query.New(
		query.WithClock(clock.Real()),
		query.WithStaleTime(cfg.StaleTime),
		query.WithGCTime(cfg.GCTime),
		query.WithLogger(logger.WithPrefix("query")),
		query.WithContext(gctx),
	)
	bridge := realtime.New(cache, realtime.WithLogger(logger.WithPrefix("realtime")))
	store := &state.Store{}

	// Populate the header before the first frame.
	refresh(gctx, store, client, sess, logger)

	g.Go(func() error { return cache.Run(gctx) })
	g.Go(func() error { return bridge.Run(gctx) })
	if cfg.RealtimeURL != "" {
		g.Go(func() error {
			return bridge.Connect(gctx, cfg.RealtimeURL, sess, store.SetRealtime)
		})
	}
	g.Go(func() error {
		poll(gctx, store, client, sess, interval, logger)
		return nil
	})

	var loggedOut bool
	g.Go(func() error {
		defer cancel()
		out, err := ui.Run(ui.Options{
			Context:   gctx,
			Backend:   client,
			Cache:     cache,
			Bridge:    bridge,
			Store:     store,
			Logger:    logger.WithPrefix("ui"),
			PollTick:  interval,
			PageSize:  cfg.PageSize,
			Search:    cfg.SearchDebounce,
			Stock:     cfg.StockDebounce,
			ThemeName: userPrefs.Theme,
			PrefsPath: prefsPath,
			Location:  userPrefs.Location,
			LogPath:   cfg.LogFile,
			OnLogout:  sess.Clear,
		})
		loggedOut = out
		return err
	})

	err := g.Wait()
	cache.Wait()
	if loggedOut {
		logger.Info("signed out")
	}
	return err
}
