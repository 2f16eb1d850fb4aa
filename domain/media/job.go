package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultAudioBitrate is the default bitrate for audio extraction
const DefaultAudioBitrate = "192k"

// DefaultAudioFormat is the output format used when a request does not specify one
const DefaultAudioFormat = "mp3"

// SupportedVideoExtensions lists the upload container formats the pipeline accepts
var SupportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// Status tracks a job through the processing pipeline
type Status string

const (
	StatusCreated     Status = "created"
	StatusExtracting  Status = "extracting"
	StatusConverting  Status = "converting"
	StatusRecognizing Status = "recognizing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Options are the processing options accepted with an upload
type Options struct {
	ExtractAudio   bool
	TranscribeText bool
	AudioFormat    string
	Language       string
}

// DefaultOptions returns the option defaults applied when a request omits fields
func DefaultOptions() Options {
	return Options{
		ExtractAudio:   true,
		TranscribeText: true,
		AudioFormat:    DefaultAudioFormat,
		Language:       LanguageChinese,
	}
}

// Job is one request's end-to-end extraction/transcription unit of work.
// All of its paths live under a work directory namespace keyed by the job ID,
// so concurrent jobs never contend on files.
type Job struct {
	ID            string
	VideoPath     string
	AudioPath     string
	CanonicalPath string
	Options       Options
	Status        Status
}

// NewJob creates a job for an uploaded file, generating a fresh identifier
// and deriving the request-scoped video and audio paths under workDir.
func NewJob(workDir, uploadName string, opts Options) (*Job, error) {
	if uploadName == "" {
		return nil, fmt.Errorf("upload filename is required")
	}
	if !IsSupportedVideo(uploadName) {
		return nil, &Error{
			Kind: KindInvalidInput,
			Err:  fmt.Errorf("unsupported file format %q: upload MP4, AVI, MOV or MKV", filepath.Ext(uploadName)),
		}
	}

	format := opts.AudioFormat
	if format == "" {
		format = DefaultAudioFormat
	}
	opts.AudioFormat = format

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(uploadName))
	return &Job{
		ID:        id,
		VideoPath: filepath.Join(workDir, fmt.Sprintf("%s_video%s", id, ext)),
		AudioPath: filepath.Join(workDir, fmt.Sprintf("%s_audio.%s", id, format)),
		Options:   opts,
		Status:    StatusCreated,
	}, nil
}

// IsSupportedVideo reports whether the filename carries an accepted video extension
func IsSupportedVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedVideoExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
