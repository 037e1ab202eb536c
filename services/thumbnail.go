package services

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

const thumbnailSize = 1024

// NormalizeThumbnail crops the image around its centre to a square JPEG.
func NormalizeThumbnail(r io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, invalid("unsupported image: %v", err)
	}

	thumb := imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return &buf, nil
}
