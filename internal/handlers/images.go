package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const maxImageWidth = 800

var errUnsupportedImage = errors.New("unsupported image format. Only PNG, JPG, JPEG are allowed")

// saveDishImage decodes an uploaded PNG or JPEG, scales it down to at most
// maxImageWidth pixels wide and stores it in dir as a JPEG with a random
// name. It returns the file name.
func saveDishImage(src io.Reader, uploadName, dir string) (string, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(uploadName)) {
	case ".png":
		img, err = png.Decode(src)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(src)
	default:
		return "", errUnsupportedImage
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filename := uuid.NewString() + ".jpg"
	out, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		out.Close()
		return "", fmt.Errorf("encode image: %w", err)
	}
	return filename, out.Close()
}
