package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

// Place moves a finished temp file to finalPath and returns where the audio
// now lives. A file already at finalPath wins: the temp file is discarded
// and the existing path returned. On failure the temp path is returned with
// the error so the audio is never lost.
func Place(tempPath, finalPath string) (string, error) {
	if tempPath == finalPath {
		return finalPath, nil
	}
	if shared.FileExists(finalPath) {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return finalPath, fmt.Errorf("failed to discard duplicate download: %w", err)
		}
		return finalPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return tempPath, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := shared.MoveFile(tempPath, finalPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			// lost a race with a concurrent identical download
			os.Remove(tempPath)
			return finalPath, nil
		}
		return tempPath, fmt.Errorf("failed to move file into library: %w", err)
	}
	return finalPath, nil
}

// WriteLyricsFile stores synced lyrics beside audioPath with the lyric
// extension.
func WriteLyricsFile(audioPath, lyrics string) (string, error) {
	lrcPath := shared.ReplaceExt(audioPath, shared.LyricsExtension)
	if err := os.WriteFile(lrcPath, []byte(lyrics), 0644); err != nil {
		return "", fmt.Errorf("failed to write lyrics file: %w", err)
	}
	return lrcPath, nil
}
