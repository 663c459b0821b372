package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Constants
const (
	DefaultMaxRetries = 3
	UserAgent         = "tidaloader/1.0"

	maxPathComponent = 200
	invalidPathChars = `<>:"/\|?*`
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// NewHTTPError builds an HTTPError from a response, reading at most 200 bytes
// of the body into the message.
func NewHTTPError(resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 201))
	message := string(body)
	if len(message) > 200 {
		message = message[:200] + "..."
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    message,
	}
}

// IsRetryableHTTPError checks if an HTTP error should be retried
func IsRetryableHTTPError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusServiceUnavailable,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsNotFoundHTTPError reports whether err carries a 404 from upstream.
func IsNotFoundHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// RetryWithBackoffForHTTP retries fn while it fails with a retryable HTTP
// error, sleeping with exponential backoff and ±25% jitter between attempts.
func RetryWithBackoffForHTTP(ctx context.Context, maxRetries int, initialDelay, maxDelay time.Duration, fn func() error) error {
	var lastErr error

	if maxRetries <= 0 {
		return fn()
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryableHTTPError(lastErr) {
			return lastErr
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > maxDelay {
			delay = maxDelay
		}
		if delay > 0 {
			jitter := time.Duration(rand.Int63n(int64(delay/2)+1)) - delay/4
			if delay+jitter > 0 {
				delay += jitter
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func replaceInvalidPathChars(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidPathChars, r) {
			return '_'
		}
		return r
	}, name)
}

// SanitizePathComponent turns an arbitrary string into a single safe file or
// folder name: reserved characters become '_', leading and trailing dots and
// spaces are stripped, the result is capped at 200 characters and an empty
// result becomes "Unknown".
func SanitizePathComponent(name string) string {
	if name == "" {
		return "Unknown"
	}

	result := strings.Trim(replaceInvalidPathChars(name), ". ")

	if utf8.RuneCountInString(result) > maxPathComponent {
		result = strings.TrimFunc(string([]rune(result)[:maxPathComponent]), unicode.IsSpace)
	}

	if result == "" {
		return "Unknown"
	}
	return result
}

// StagingPattern is the os.CreateTemp pattern a download is written under
// before it is enriched and placed. The random part keeps two jobs for the
// same track apart.
func StagingPattern(trackID int64) string {
	return fmt.Sprintf("%d-*%s.part", trackID, AudioExtension)
}

// GetTrackFilename generates the library file name for a track. A zero track
// number omits the "NN - " prefix.
func GetTrackFilename(trackNumber int, title string) string {
	if trackNumber <= 0 {
		return SanitizePathComponent(title) + AudioExtension
	}
	return fmt.Sprintf("%02d - %s%s", trackNumber, SanitizePathComponent(title), AudioExtension)
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CreateDirIfNotExists creates a directory if it doesn't exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// MoveFile renames src to dst, falling back to copy and delete when the two
// paths live on different filesystems.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to close destination: %w", err)
	}

	in.Close()
	return os.Remove(src)
}

// ReplaceExt swaps the extension of path for ext.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// TruncateString truncates a string to the specified length, adding ellipsis if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
