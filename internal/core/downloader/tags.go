package downloader

import (
	"fmt"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// TagWriter writes tags and an optional front cover into an audio file.
type TagWriter interface {
	WriteTags(filePath string, fields []TagField, cover []byte) error
}

// FLACTagWriter rewrites the Vorbis comment and picture blocks of a FLAC file.
type FLACTagWriter struct{}

// WriteTags replaces any existing comments and pictures in filePath.
func (FLACTagWriter) WriteTags(filePath string, fields []TagField, cover []byte) error {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop existing VORBIS_COMMENT and PICTURE blocks so tags are not duplicated
	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()
	for _, field := range fields {
		addField(comment, field.Name, field.Value)
	}
	vorbisCommentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &vorbisCommentBlock)

	var coverErr error
	if len(cover) > 0 {
		coverErr = addCoverArt(f, cover)
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file with metadata: %w", err)
	}
	if coverErr != nil {
		return &CoverError{Err: coverErr}
	}
	return nil
}

// CoverError reports tags that were saved without the cover picture.
type CoverError struct {
	Err error
}

func (e *CoverError) Error() string { return "cover art not embedded: " + e.Err.Error() }
func (e *CoverError) Unwrap() error { return e.Err }

// addField adds a field to vorbis comment only if value is not empty
func addField(comment *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value != "" {
		comment.Add(field, value)
	}
}

// addCoverArt embeds coverData as the front cover
func addCoverArt(f *flac.File, coverData []byte) error {
	picture, err := flacpicture.NewFromImageData(
		flacpicture.PictureTypeFrontCover,
		"Cover",
		coverData,
		"image/jpeg",
	)
	if err != nil {
		return fmt.Errorf("failed to create picture metadata: %w", err)
	}

	pictureBlock := picture.Marshal()
	f.Meta = append(f.Meta, &pictureBlock)
	return nil
}
