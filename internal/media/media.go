// Package media stores uploaded review images and returns their public URLs.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 15 << 20

// Asset is a stored image.
type Asset struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// File is one image handed to an Uploader.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Uploader persists one image.
type Uploader interface {
	Upload(ctx context.Context, file File) (Asset, error)
}

// UploadAll uploads files in order. On failure it returns the assets stored
// before the failing file together with the error.
func UploadAll(ctx context.Context, up Uploader, files []File) ([]Asset, error) {
	assets := make([]Asset, 0, len(files))
	for _, file := range files {
		asset, err := up.Upload(ctx, file)
		if err != nil {
			return assets, fmt.Errorf("upload %s: %w", file.Name, err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// readImage buffers an upload, checks that it is an image and probes its
// dimensions. Formats without a registered decoder keep zero dimensions.
func readImage(file File) ([]byte, string, image.Config, error) {
	data, err := io.ReadAll(io.LimitReader(file.Reader, MaxImageBytes+1))
	if err != nil {
		return nil, "", image.Config{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", image.Config{}, apperr.Validation("images", "Uploaded file is empty")
	}
	if len(data) > MaxImageBytes {
		return nil, "", image.Config{}, apperr.Validation("images", "Image is larger than 15 MB")
	}

	contentType := strings.ToLower(strings.TrimSpace(file.ContentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", image.Config{}, apperr.Validation("images", "Only image files can be uploaded")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		cfg = image.Config{}
	}
	return data, contentType, cfg, nil
}

// storedName returns a date-prefixed unique name keeping the original extension.
func storedName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
}
