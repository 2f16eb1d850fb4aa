//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/pipeline"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/transcribe"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
)

// fakeExtractor writes a placeholder audio file and records the paths it saw
type fakeExtractor struct {
	videoPath string
	audioPath string
	failWith  string
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, audioPath, format string) error {
	f.videoPath = videoPath
	f.audioPath = audioPath
	if f.failWith != "" {
		return media.Errorf(media.KindExtractionFailed, "%s", f.failWith)
	}
	return os.WriteFile(audioPath, []byte("audio-bytes"), 0o644)
}

// fakeConverter writes a placeholder canonical wav next to the input
type fakeConverter struct {
	canonicalPath string
}

func (f *fakeConverter) ToCanonical(ctx context.Context, inputPath string) (string, error) {
	f.canonicalPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".wav"
	return f.canonicalPath, os.WriteFile(f.canonicalPath, []byte("wav-bytes"), 0o644)
}

// fakeRecognizer returns a canned transcript or a canned failure
type fakeRecognizer struct {
	text     string
	failWith string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, canonicalPath, language string) (transcribe.Transcript, error) {
	if f.failWith != "" {
		return transcribe.Transcript{}, media.Errorf(media.KindRecognitionFailed, "%s", f.failWith)
	}
	return transcribe.Transcript{Text: f.text, Outcome: transcribe.OutcomeRecognized}, nil
}

// processContext holds test state for pipeline scenarios
type processContext struct {
	workDir    string
	uploadName string
	extractor  *fakeExtractor
	converter  *fakeConverter
	recognizer *fakeRecognizer
	result     *pipeline.Result
	err        error
}

// SharedProcessContext is reset before each scenario via Before hook
var SharedProcessContext *processContext

func getProcessContext() *processContext {
	return SharedProcessContext
}

func InitializeProcessScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		workDir, err := os.MkdirTemp("", "process-feature-*")
		if err != nil {
			return c, err
		}
		SharedProcessContext = &processContext{
			workDir:    workDir,
			extractor:  &fakeExtractor{},
			converter:  &fakeConverter{},
			recognizer: &fakeRecognizer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedProcessContext != nil {
			os.RemoveAll(SharedProcessContext.workDir)
		}
		SharedProcessContext = nil
		return c, nil
	})

	ctx.Step(`^an uploaded video named "([^"]*)"$`, anUploadedVideoNamed)
	ctx.Step(`^the recognizer will return "([^"]*)"$`, theRecognizerWillReturn)
	ctx.Step(`^the recognizer will fail with "([^"]*)"$`, theRecognizerWillFailWith)
	ctx.Step(`^the extractor will fail with "([^"]*)"$`, theExtractorWillFailWith)
	ctx.Step(`^I process the upload$`, iProcessTheUpload)
	ctx.Step(`^the request should succeed$`, theRequestShouldSucceed)
	ctx.Step(`^the request should fail$`, theRequestShouldFail)
	ctx.Step(`^the request should fail with an invalid input error$`, theRequestShouldFailWithInvalidInput)
	ctx.Step(`^the audio URL should point at the extracted audio file$`, theAudioURLShouldPointAtTheAudioFile)
	ctx.Step(`^the transcribed text should be "([^"]*)"$`, theTranscribedTextShouldBe)
	ctx.Step(`^the transcribed text should explain the transcription failure$`, theTranscribedTextShouldExplainFailure)
	ctx.Step(`^the uploaded video file should be removed$`, theUploadedVideoShouldBeRemoved)
	ctx.Step(`^the canonical wav file should be removed$`, theCanonicalWavShouldBeRemoved)
	ctx.Step(`^the extracted audio file should be retained$`, theAudioFileShouldBeRetained)
	ctx.Step(`^no files should have been written$`, noFilesShouldHaveBeenWritten)
}

func anUploadedVideoNamed(name string) error {
	p := getProcessContext()
	p.uploadName = name
	return nil
}

func theRecognizerWillReturn(text string) error {
	getProcessContext().recognizer.text = text
	return nil
}

func theRecognizerWillFailWith(message string) error {
	getProcessContext().recognizer.failWith = message
	return nil
}

func theExtractorWillFailWith(message string) error {
	getProcessContext().extractor.failWith = message
	return nil
}

func iProcessTheUpload() error {
	p := getProcessContext()
	service := pipeline.NewService(
		filesystem.NewSaver(),
		filesystem.NewChecker(),
		p.extractor,
		p.converter,
		p.recognizer,
		p.workDir,
		zerolog.Nop(),
		pipeline.WithSavePolicy(media.FixedDelay(1, 0)),
	)
	p.result, p.err = service.ProcessRequest(
		context.Background(),
		strings.NewReader("fake video bytes"),
		p.uploadName,
		media.DefaultOptions(),
	)
	return nil
}

func theRequestShouldSucceed() error {
	p := getProcessContext()
	if p.err != nil {
		return fmt.Errorf("expected success, got error: %v", p.err)
	}
	return nil
}

func theRequestShouldFail() error {
	if getProcessContext().err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	return nil
}

func theRequestShouldFailWithInvalidInput() error {
	p := getProcessContext()
	if p.err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	if kind := media.KindOf(p.err); kind != media.KindInvalidInput {
		return fmt.Errorf("expected invalid input error, got kind %q", kind)
	}
	return nil
}

func theAudioURLShouldPointAtTheAudioFile() error {
	p := getProcessContext()
	want := pipeline.AudioURLPrefix + filepath.Base(p.extractor.audioPath)
	if p.result == nil || p.result.AudioURL != want {
		return fmt.Errorf("expected audio URL %q, got %+v", want, p.result)
	}
	return nil
}

func theTranscribedTextShouldBe(text string) error {
	p := getProcessContext()
	if p.result == nil || p.result.TranscribedText != text {
		return fmt.Errorf("expected transcript %q, got %+v", text, p.result)
	}
	return nil
}

func theTranscribedTextShouldExplainFailure() error {
	p := getProcessContext()
	if p.result == nil || !strings.HasPrefix(p.result.TranscribedText, "transcription failed") {
		return fmt.Errorf("expected explanatory transcript, got %+v", p.result)
	}
	return nil
}

func theUploadedVideoShouldBeRemoved() error {
	p := getProcessContext()
	if p.extractor.videoPath == "" {
		// Extraction never ran; verify no video file lingers in the work dir
		return noFilesShouldHaveBeenWritten()
	}
	if _, err := os.Stat(p.extractor.videoPath); !os.IsNotExist(err) {
		return fmt.Errorf("uploaded video %s still exists", p.extractor.videoPath)
	}
	return nil
}

func theCanonicalWavShouldBeRemoved() error {
	p := getProcessContext()
	if p.converter.canonicalPath == "" {
		return fmt.Errorf("conversion never ran")
	}
	if _, err := os.Stat(p.converter.canonicalPath); !os.IsNotExist(err) {
		return fmt.Errorf("canonical wav %s still exists", p.converter.canonicalPath)
	}
	return nil
}

func theAudioFileShouldBeRetained() error {
	p := getProcessContext()
	if p.extractor.audioPath == "" {
		return fmt.Errorf("extraction never ran")
	}
	if _, err := os.Stat(p.extractor.audioPath); err != nil {
		return fmt.Errorf("extracted audio %s is missing: %v", p.extractor.audioPath, err)
	}
	return nil
}

func noFilesShouldHaveBeenWritten() error {
	p := getProcessContext()
	entries, err := os.ReadDir(p.workDir)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("expected empty work directory, found %d entries", len(entries))
	}
	return nil
}
