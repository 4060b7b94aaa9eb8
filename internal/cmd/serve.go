package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/presets"
	"github.com/MeKo-Tech/globetex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bump maps and cloud layers over HTTP",
	Long: `Serve /bumpmap and /clouds. Every request is rendered on demand;
responses carry a deterministic ETag so clients and proxies can cache them.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("max-concurrent-generations", runtime.NumCPU(), "Max concurrent texture renders (default: number of CPUs)")
	serveCmd.Flags().Int("row-workers", 0, "Row workers per render (default: number of CPUs)")
	serveCmd.Flags().Duration("generation-timeout", 2*time.Minute, "Timeout per texture render")
	serveCmd.Flags().String("cache-control", server.DefaultCacheControl, "Cache-Control header for served textures")
	serveCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	serveCmd.Flags().Int("jpeg-quality", encode.DefaultJPEGQuality, "JPEG quality (1-100)")
	serveCmd.Flags().Bool("presets", false, "Resolve ?preset= from the preset database")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.max_concurrent_generations", "max-concurrent-generations")
	mustBind("serve.row_workers", "row-workers")
	mustBind("serve.generation_timeout", "generation-timeout")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.png_compression", "png-compression")
	mustBind("serve.jpeg_quality", "jpeg-quality")
	mustBind("serve.presets", "presets")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	maxConc := viper.GetInt("serve.max_concurrent_generations")
	enablePresets := viper.GetBool("serve.presets")

	var store server.PresetSource
	if enablePresets {
		db, err := presets.Open(viper.GetString("presets_db"))
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	textures := server.NewTextures(server.TexturesConfig{
		CacheControl:             viper.GetString("serve.cache_control"),
		PNGCompression:           viper.GetString("serve.png_compression"),
		JPEGQuality:              viper.GetInt("serve.jpeg_quality"),
		MaxConcurrentGenerations: maxConc,
		GenerationTimeout:        viper.GetDuration("serve.generation_timeout"),
		RowWorkers:               viper.GetInt("serve.row_workers"),
	}, store, logger)

	logger.Info("texture server listening",
		"addr", addr,
		"max_concurrent_generations", maxConc,
		"presets", enablePresets,
	)

	srv := &http.Server{Addr: addr, Handler: textures.Routes(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down texture server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
