package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader writes images below a directory served as static files.
type LocalUploader struct {
	dir     string
	urlPath string
	now     func() time.Time
}

func NewLocalUploader(dir, urlPath string) *LocalUploader {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "web/static/uploads"
	}
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	if urlPath == "/" {
		urlPath = "/static/uploads"
	}
	return &LocalUploader{dir: dir, urlPath: urlPath, now: time.Now}
}

func (u *LocalUploader) Upload(ctx context.Context, file File) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	data, _, cfg, err := readImage(file)
	if err != nil {
		return Asset{}, err
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return Asset{}, fmt.Errorf("create upload dir: %w", err)
	}
	name := storedName(file.Name, u.now())
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("save upload: %w", err)
	}

	return Asset{
		URL:    u.urlPath + "/" + name,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
