package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/convert"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/extract"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/pipeline"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/transcribe"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/config"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/ffmpeg"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/httpserver"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/logging"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/probe"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/vosk"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/wavcodec"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/whisper"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP processing server",
	Long: `Start the HTTP server that accepts video uploads, extracts audio,
transcribes speech and serves the resulting audio files in chunks.

Example:
  audio-extractor serve
  audio-extractor serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config or :8000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		cfg = config.Default()
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)

	if err := os.MkdirAll(cfg.Paths.WorkDirectory, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	extractor := ffmpeg.NewExtractor()
	verifyCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := extractor.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	pipe := buildPipeline(cfg, extractor, engine, logger)

	server := &http.Server{
		Addr: addr,
		Handler: httpserver.NewServer(pipe, logger,
			httpserver.WithMaxUploadBytes(cfg.Server.MaxUploadMB*1024*1024),
		).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("work_dir", cfg.Paths.WorkDirectory).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildPipeline assembles the production pipeline from configuration
func buildPipeline(cfg *config.Config, extractor *ffmpeg.Extractor, engine speech.Engine, logger zerolog.Logger) *pipeline.Service {
	checker := filesystem.NewChecker()
	saver := filesystem.NewSaver()
	exporter := wavcodec.NewExporter()

	extractSvc := extract.NewService(extractor, probe.NewProber(), checker, cfg.Audio.Bitrate, logger)
	convertSvc := convert.NewService(ffmpeg.NewDecoder(), exporter, checker, logger)
	transcribeSvc := transcribe.NewService(engine, wavcodec.NewLoader(), exporter, checker, logger)

	return pipeline.NewService(saver, checker, extractSvc, convertSvc, transcribeSvc, cfg.Paths.WorkDirectory, logger)
}

// buildEngine selects the recognition backend from configuration
func buildEngine(cfg *config.Config) (speech.Engine, error) {
	switch cfg.Speech.Engine {
	case "openai":
		return whisper.NewEngine(os.Getenv("OPENAI_API_KEY"))
	default:
		return vosk.NewEngine(cfg.Speech.Models), nil
	}
}
