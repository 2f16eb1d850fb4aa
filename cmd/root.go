package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// OutputWriter allows capturing command output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is where commands write their human-readable output
var DefaultOutput OutputWriter = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "audio-extractor",
	Short: "Extract audio and transcribe speech from video files",
	Long: `audio-extractor turns video files into audio tracks and text transcripts:

  - Extract the audio track as MP3 (or wav/aac/ogg)
  - Normalize, filter and resample for speech recognition
  - Transcribe speech segment by segment with local models
  - Serve the whole pipeline over HTTP with chunked audio delivery

Example:
  audio-extractor serve --addr :8000
  audio-extractor extract-audio --source recording.mp4
  audio-extractor transcribe --source recording.mp4 --language zh`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	// .env is optional; environment overrides apply on top of the file
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.LoadOrDefault(cfgFile)
	if err != nil {
		// Config file is present but unreadable. Commands that need config
		// will check and error appropriately.
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
