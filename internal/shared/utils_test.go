package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"slash and trailing dot", "AC/DC. ", "AC_DC"},
		{"reserved characters", `a<b>c:d"e\f|g?h*i`, "a_b_c_d_e_f_g_h_i"},
		{"leading dots and spaces", " ..Hidden", "Hidden"},
		{"empty", "", "Unknown"},
		{"only dots", "...", "Unknown"},
		{"untouched", "Sigur Rós", "Sigur Rós"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePathComponent(tt.in))
		})
	}
}

func TestSanitizePathComponentTruncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := SanitizePathComponent(long)
	assert.Equal(t, 200, len([]rune(got)))

	// trailing whitespace exposed by the cut is dropped
	padded := strings.Repeat("x", 199) + "  tail"
	assert.Equal(t, strings.Repeat("x", 199), SanitizePathComponent(padded))
}

func TestGetTrackFilename(t *testing.T) {
	assert.Equal(t, "03 - B.flac", GetTrackFilename(3, "B"))
	assert.Equal(t, "12 - What_.flac", GetTrackFilename(12, "What?"))
	assert.Equal(t, "B.flac", GetTrackFilename(0, "B"))
}

func TestStagingPatternIsUniquePerJob(t *testing.T) {
	assert.Equal(t, "42-*.flac.part", StagingPattern(42))

	dir := t.TempDir()
	a, err := os.CreateTemp(dir, StagingPattern(42))
	require.NoError(t, err)
	defer a.Close()
	b, err := os.CreateTemp(dir, StagingPattern(42))
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Name(), b.Name())
	assert.True(t, strings.HasPrefix(filepath.Base(a.Name()), "42-"))
	assert.True(t, strings.HasSuffix(a.Name(), ".flac.part"))
}

func TestIsRetryableHTTPError(t *testing.T) {
	assert.True(t, IsRetryableHTTPError(&HTTPError{StatusCode: http.StatusServiceUnavailable}))
	assert.True(t, IsRetryableHTTPError(fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: http.StatusTooManyRequests})))
	assert.False(t, IsRetryableHTTPError(&HTTPError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsRetryableHTTPError(errors.New("plain")))
}

func TestRetryWithBackoffForHTTP(t *testing.T) {
	attempts := 0
	err := RetryWithBackoffForHTTP(context.Background(), 3, time.Millisecond, 5*time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = RetryWithBackoffForHTTP(context.Background(), 3, time.Millisecond, 5*time.Millisecond, func() error {
		attempts++
		return &HTTPError{StatusCode: http.StatusForbidden}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "non-retryable errors return immediately")
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.part")
	dst := filepath.Join(dir, "nested", "dst.flac")
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))

	require.NoError(t, MoveFile(src, dst))

	assert.False(t, FileExists(src))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}

func TestWarningCollectorConcurrent(t *testing.T) {
	wc := NewWarningCollector(true)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			wc.AddLyricsWarning(TrackContext("A", fmt.Sprint(i)), "boom")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, 8, wc.GetWarningCount())
	assert.Len(t, wc.GetWarningsByType()[LyricsWarning], 8)

	disabled := NewWarningCollector(false)
	disabled.AddTagWriteWarning("x", "y")
	assert.False(t, disabled.HasWarnings())
}
