package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/config"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the server address, the working
directory for media files, audio settings and the speech model locations.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(DefaultOutput, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(DefaultOutput, "Welcome to audio-extractor setup!")
	fmt.Fprintln(DefaultOutput)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}
	if err := promptSpeech(prompter, cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(DefaultOutput)
	fmt.Fprintf(DefaultOutput, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Listen address for the HTTP server?", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	workDir, err := prompter.Input("Working directory for uploads and audio output?", cfg.Paths.WorkDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if workDir == "" {
		return fmt.Errorf("working directory is required")
	}
	cfg.Paths.WorkDirectory = workDir
	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	bitrate, err := prompter.Input("Audio bitrate for extraction?", cfg.Audio.Bitrate)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate != "" {
		cfg.Audio.Bitrate = bitrate
	}
	return nil
}

func promptSpeech(prompter Prompter, cfg *config.Config) error {
	engine, err := prompter.Input("Speech engine (vosk or openai)?", cfg.Speech.Engine)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if engine != "" {
		cfg.Speech.Engine = engine
	}

	if cfg.Speech.Engine != "vosk" {
		return nil
	}

	for lang, dir := range map[string]string{
		"zh": cfg.Speech.Models["zh"],
		"en": cfg.Speech.Models["en"],
	} {
		updated, err := prompter.Input(fmt.Sprintf("Model directory for language %q?", lang), dir)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if updated != "" {
			cfg.Speech.Models[lang] = updated
		}
	}
	return nil
}
