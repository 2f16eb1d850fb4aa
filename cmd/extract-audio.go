package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appextract "github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/extract"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/ffmpeg"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/logging"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/probe"
)

var (
	extractSourcePath string
	extractOutputPath string
	extractFormat     string
	extractBitrate    string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract the audio track from a video file",
	Long: `Extract the audio track from a video file.

The output defaults to the source path with the audio format as extension.
Extraction is retried on transient failures and the output is verified to
be non-empty before the command reports success.

Example:
  audio-extractor extract-audio --source recording.mp4
  audio-extractor extract-audio --source recording.mp4 --format wav --bitrate 128k`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSourcePath, "source", "", "Path to source video file (required)")
	extractAudioCmd.Flags().StringVar(&extractOutputPath, "output", "", "Path for the extracted audio (defaults next to the source)")
	extractAudioCmd.Flags().StringVar(&extractFormat, "format", media.DefaultAudioFormat, "Audio format: mp3, wav, aac or ogg")
	extractAudioCmd.Flags().StringVar(&extractBitrate, "bitrate", "", "Audio bitrate (default from config or 192k)")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}

	bitrate := extractBitrate
	if bitrate == "" {
		bitrate = cfg.Audio.Bitrate
	}
	if bitrate == "" {
		bitrate = media.DefaultAudioBitrate
	}

	outputPath := extractOutputPath
	if outputPath == "" {
		ext := filepath.Ext(extractSourcePath)
		outputPath = strings.TrimSuffix(extractSourcePath, ext) + "." + extractFormat
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)
	extractor := ffmpeg.NewExtractor()

	verifyCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := extractor.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	service := appextract.NewService(extractor, probe.NewProber(), filesystem.NewChecker(), bitrate, logger)

	fmt.Fprintf(DefaultOutput, "Extracting audio from %s with bitrate %s...\n", extractSourcePath, bitrate)

	if err := service.Extract(cmd.Context(), extractSourcePath, outputPath, extractFormat); err != nil {
		return err
	}

	fmt.Fprintf(DefaultOutput, "Successfully created: %s\n", outputPath)
	return nil
}
