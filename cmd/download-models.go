package cmd

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// modelURLs maps language identifiers to the published model archives
var modelURLs = map[string]string{
	"zh": "https://alphacephei.com/vosk/models/vosk-model-cn-0.22.zip",
	"en": "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22.zip",
}

var downloadLanguages []string

var downloadModelsCmd = &cobra.Command{
	Use:   "download-models",
	Short: "Download speech recognition models",
	Long: `Download and unpack the speech recognition models for the configured
languages. Models that are already present on disk are skipped.

Example:
  audio-extractor download-models
  audio-extractor download-models --language zh`,
	RunE: runDownloadModels,
}

func init() {
	rootCmd.AddCommand(downloadModelsCmd)
	downloadModelsCmd.Flags().StringSliceVar(&downloadLanguages, "language", []string{"zh", "en"}, "Languages to download models for")
}

func runDownloadModels(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists")
	}

	for _, lang := range downloadLanguages {
		url, ok := modelURLs[lang]
		if !ok {
			return fmt.Errorf("no model archive known for language %q", lang)
		}
		dir, ok := cfg.Speech.Models[lang]
		if !ok || dir == "" {
			return fmt.Errorf("no model directory configured for language %q", lang)
		}

		if _, err := os.Stat(dir); err == nil {
			fmt.Fprintf(DefaultOutput, "Model for %s already present at %s, skipping\n", lang, dir)
			continue
		}

		fmt.Fprintf(DefaultOutput, "Downloading model for %s from %s...\n", lang, url)
		if err := downloadAndUnpack(url, dir); err != nil {
			return fmt.Errorf("failed to download model for %s: %w", lang, err)
		}
		fmt.Fprintf(DefaultOutput, "Model for %s installed at %s\n", lang, dir)
	}

	return nil
}

// downloadAndUnpack fetches the archive and extracts it so that the model
// contents end up directly under destDir, regardless of the archive's
// top-level folder name.
func downloadAndUnpack(url, destDir string) error {
	tmp, err := os.CreateTemp("", "model-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(tmp, size)
	if err != nil {
		return err
	}

	for _, f := range reader.File {
		if err := extractArchiveFile(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractArchiveFile(f *zip.File, destDir string) error {
	// Strip the archive's top-level directory
	parts := strings.SplitN(filepath.ToSlash(f.Name), "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	rel := filepath.FromSlash(parts[1])
	if strings.Contains(rel, "..") {
		return fmt.Errorf("archive entry %q escapes destination", f.Name)
	}
	target := filepath.Join(destDir, rel)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
