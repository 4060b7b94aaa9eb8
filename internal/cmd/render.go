package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/globetex/internal/encode"
	"github.com/MeKo-Tech/globetex/internal/synth"
	"github.com/MeKo-Tech/globetex/internal/worker"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a bump map or cloud layer to a file",
	Long: `Render a texture with the same parameters the HTTP endpoints accept.

Parameters are given as a query string, e.g.
  globetex render --mode clouds --params "w=2048&h=1024&seed=42&anom=2.5"
Stored presets can be combined with --params, which take precedence.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("mode", "bump", "Texture mode: bump or clouds")
	renderCmd.Flags().String("params", "", "Texture parameters as a query string (w=..&h=..&seed=..)")
	renderCmd.Flags().String("preset", "", "Name of a stored preset to start from")
	renderCmd.Flags().StringP("output", "o", "", "Output file (default: <key>.<ext> in --output-dir, '-' for stdout)")
	renderCmd.Flags().String("output-dir", ".", "Directory for the default output file")
	renderCmd.Flags().IntP("workers", "w", 0, "Number of row workers (default: number of CPUs)")
	renderCmd.Flags().Bool("progress", true, "Show progress bar while rendering")
	renderCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	renderCmd.Flags().Int("jpeg-quality", encode.DefaultJPEGQuality, "JPEG quality (1-100)")
	renderCmd.Flags().Bool("force", false, "Overwrite the output file if it exists")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"render.mode", "mode"},
		{"render.params", "params"},
		{"render.preset", "preset"},
		{"render.output", "output"},
		{"render.output_dir", "output-dir"},
		{"render.workers", "workers"},
		{"render.progress", "progress"},
		{"render.png_compression", "png-compression"},
		{"render.jpeg_quality", "jpeg-quality"},
		{"render.force", "force"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, renderCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	mode := viper.GetString("render.mode")
	params := viper.GetString("render.params")
	preset := viper.GetString("render.preset")
	output := viper.GetString("render.output")
	outputDir := viper.GetString("render.output_dir")
	workers := viper.GetInt("render.workers")
	showProgress := viper.GetBool("render.progress")
	force := viper.GetBool("render.force")
	encOpts := encode.Options{
		Compression: encode.ParseCompression(viper.GetString("render.png_compression")),
		JPEGQuality: viper.GetInt("render.jpeg_quality"),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	j, err := resolveJob(ctx, mode, params, preset)
	if err != nil {
		return err
	}

	toStdout := output == "-"
	if output == "" {
		output = filepath.Join(outputDir, j.filename())
	}
	if !toStdout && !force {
		if _, err := os.Stat(output); err == nil {
			logger.Info("Texture exists, skipping (use --force to overwrite)", "path", output, "key", j.key)
			return nil
		}
	}

	progress := worker.NewProgress(j.height(), showProgress)
	synthOpts := []synth.Option{
		synth.WithWorkers(workers),
		synth.WithProgress(progress.Callback()),
		synth.WithBandObserver(progress.Observe),
		synth.WithLogger(logger),
	}

	logger.Info("Rendering texture",
		"mode", j.mode,
		"key", j.key,
		"format", j.format,
		"output", output,
	)

	if toStdout {
		if _, err := j.render(ctx, os.Stdout, encOpts, synthOpts...); err != nil {
			return err
		}
		progress.Done()
		return nil
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Write next to the target and rename so an interrupted render never
	// leaves a truncated texture behind.
	tmp, err := os.CreateTemp(filepath.Dir(output), ".globetex-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := j.render(ctx, tmp, encOpts, synthOpts...)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("failed to move texture into place: %w", err)
	}

	progress.Done()
	logger.Info("Texture written", "path", output, "bytes", n, "key", j.key)
	logger.Info(progress.Summary())
	return nil
}
