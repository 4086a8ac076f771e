package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"songd/internal/common/fsutil"
	"songd/internal/config"
	"songd/internal/events"
	"songd/internal/httpapi"
	"songd/internal/library"
	"songd/internal/streamd"
)

const shutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "songd",
		Short:         "Music library and streaming daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TCP streaming channels and the HTTP admin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyFlagOverrides(cmd, &cfg)
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", os.Getenv("SONGD_CONFIG"), "Path to a .yaml, .json or .toml config file (defaults SONGD_CONFIG)")
	cmd.Flags().String("host", "", "Bind host for the TCP channels")
	cmd.Flags().Int("communication-port", 0, "Port for the communication channel")
	cmd.Flags().Int("streaming-port", 0, "Port for the streaming channel")
	cmd.Flags().String("http-addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().String("db", "", "Path to the SQLite library database")
	cmd.Flags().String("songs-dir", "", "Directory holding audio files")
	cmd.Flags().String("images-dir", "", "Directory holding cover art")
	cmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	return cmd
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host, _ = f.GetString("host")
	}
	if f.Changed("communication-port") {
		cfg.CommunicationPort, _ = f.GetInt("communication-port")
	}
	if f.Changed("streaming-port") {
		cfg.StreamingPort, _ = f.GetInt("streaming-port")
	}
	if f.Changed("http-addr") {
		cfg.HTTPAddr, _ = f.GetString("http-addr")
	}
	if f.Changed("db") {
		cfg.DBPath, _ = f.GetString("db")
	}
	if f.Changed("songs-dir") {
		cfg.SongsDir, _ = f.GetString("songs-dir")
	}
	if f.Changed("images-dir") {
		cfg.ImagesDir, _ = f.GetString("images-dir")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBus()
	metrics := streamd.RegisterMetrics(bus)
	defer metrics.Close()

	srv := streamd.New(cfg.CommunicationAddr(), cfg.StreamingAddr(), store, bus, log)

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{http.MethodGet, http.MethodOptions},
			[]string{"Content-Type"})
	}
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: httpapi.NewMux(srv)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	log.Info().
		Str("communication", cfg.CommunicationAddr()).
		Str("streaming", cfg.StreamingAddr()).
		Str("db", cfg.DBPath).
		Msg("songd started")

	err = g.Wait()
	log.Info().Msg("songd stopped")
	return err
}

// openStore expands the configured paths, makes sure the media directories
// exist and opens the library database.
func openStore(ctx context.Context, cfg config.Config) (*library.Store, error) {
	dbPath, err := fsutil.ExpandHome(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	songsDir, err := fsutil.ExpandHome(cfg.SongsDir)
	if err != nil {
		return nil, err
	}
	imagesDir, err := fsutil.ExpandHome(cfg.ImagesDir)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(songsDir); err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(imagesDir); err != nil {
		return nil, err
	}

	store, err := library.Open(dbPath, songsDir, imagesDir)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
