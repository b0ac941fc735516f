package sources

import (
	"errors"
	"fmt"
)

// Caption pipeline failure classes. Typed errors below match these with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid YouTube URL")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrExtractionFailed    = errors.New("player response extraction failed")
	ErrMarkerNotFound      = errors.New("ytInitialPlayerResponse not found in watch page")
	ErrMalformedBlob       = errors.New("ytInitialPlayerResponse is not valid JSON")
	ErrNoCaptions          = errors.New("no captions available")
	ErrUnexpectedContent   = errors.New("unexpected content type")
)

// UpstreamError reports a failed request to YouTube: a non-2xx status, a transport
// failure, or a body of the wrong type.
type UpstreamError struct {
	Stage      string // "watch page" or "caption track"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: HTTP %d: %v", e.Stage, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Stage, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return e.Stage + ": " + ErrUpstreamUnavailable.Error()
}

func (e *UpstreamError) Unwrap() error        { return e.Err }
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// ExtractionError reports that the player response could not be pulled out of the
// watch page. Title and Sample help spot consent pages and layout drift.
type ExtractionError struct {
	Err    error // ErrMarkerNotFound or ErrMalformedBlob
	Cause  error // JSON decode error for ErrMalformedBlob
	Title  string
	Sample string
}

func (e *ExtractionError) Error() string {
	msg := e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Title != "" {
		msg += fmt.Sprintf(" (page title %q)", e.Title)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error        { return e.Err }
func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

// NoTracksError means the video exposes no caption tracks. Reason carries YouTube's
// own explanation when the player response has one.
type NoTracksError struct {
	Reason string
}

func (e *NoTracksError) Error() string {
	if e.Reason == "" {
		return ErrNoCaptions.Error()
	}
	return ErrNoCaptions.Error() + ": " + e.Reason
}

func (e *NoTracksError) Is(target error) bool { return target == ErrNoCaptions }
