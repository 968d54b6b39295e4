package playback

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration failures.
type ConfigErrorCode string

const (
	// ErrCodeUnsupportedArchive indicates the recording file is not a
	// recognized archive type.
	ErrCodeUnsupportedArchive ConfigErrorCode = "UNSUPPORTED_ARCHIVE"

	// ErrCodeExtractionFailed indicates the archive could not be
	// unpacked.
	ErrCodeExtractionFailed ConfigErrorCode = "EXTRACTION_FAILED"
)

// ConfigError reports a failure while resolving the recording path.
// Configuration errors are terminal: playback does not start and
// there is no retry.
type ConfigError struct {
	Code    ConfigErrorCode
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error { return e.Err }

// StartErrorCode categorizes session start failures.
type StartErrorCode string

const (
	// ErrCodeMissingLogFile indicates state.tlog does not exist in
	// the log directory.
	ErrCodeMissingLogFile StartErrorCode = "MISSING_LOG_FILE"

	// ErrCodeOpenFailed indicates the state log exists but could not
	// be opened.
	ErrCodeOpenFailed StartErrorCode = "OPEN_FAILED"
)

// StartError reports a failure while starting a session. The session
// remains idle; the world is untouched.
type StartError struct {
	Code    StartErrorCode
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *StartError) Unwrap() error { return e.Err }

// IsUnsupportedArchive reports whether err is a ConfigError for an
// unrecognized archive type. Uses errors.As to handle wrapping.
func IsUnsupportedArchive(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnsupportedArchive
}

// IsExtractionFailed reports whether err is a ConfigError for a
// failed extraction.
func IsExtractionFailed(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeExtractionFailed
}

// IsMissingLogFile reports whether err is a StartError for a missing
// state.tlog.
func IsMissingLogFile(err error) bool {
	var se *StartError
	return errors.As(err, &se) && se.Code == ErrCodeMissingLogFile
}
