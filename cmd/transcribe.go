package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appconvert "github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/convert"
	apptranscribe "github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/transcribe"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/ffmpeg"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/logging"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/wavcodec"
)

var (
	transcribeSourcePath string
	transcribeLanguage   string
	transcribeKeepWav    bool
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe speech from an audio or video file",
	Long: `Transcribe speech from an audio or video file.

The source is decoded and converted to the canonical recognition format
(16kHz mono wav), then recognized in 30-second segments. The joined
transcript is printed to stdout.

Example:
  audio-extractor transcribe --source recording.mp4
  audio-extractor transcribe --source audio.mp3 --language en`,
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeSourcePath, "source", "", "Path to source audio or video file (required)")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", media.LanguageChinese, "Recognition language: zh or en")
	transcribeCmd.Flags().BoolVar(&transcribeKeepWav, "keep-wav", false, "Keep the intermediate canonical wav file")
	transcribeCmd.MarkFlagRequired("source")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}
	if !media.IsSupportedLanguage(transcribeLanguage) {
		return fmt.Errorf("unsupported language %q", transcribeLanguage)
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)
	checker := filesystem.NewChecker()
	exporter := wavcodec.NewExporter()

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	converter := appconvert.NewService(ffmpeg.NewDecoder(), exporter, checker, logger)
	recognizer := apptranscribe.NewService(engine, wavcodec.NewLoader(), exporter, checker, logger)

	canonicalPath, err := converter.ToCanonical(cmd.Context(), transcribeSourcePath)
	if err != nil {
		return err
	}
	if !transcribeKeepWav {
		defer os.Remove(canonicalPath)
	}

	transcript, err := recognizer.Recognize(cmd.Context(), canonicalPath, transcribeLanguage)
	if err != nil {
		return err
	}

	fmt.Fprintln(DefaultOutput, transcript.Text)
	return nil
}
