package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// BlobStore holds generated media (audio narration, mirrored images) as
// plain files and hands out relative handles suitable for serving.
type BlobStore struct {
	dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create media directory", "dir", dir, "error", err)
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Put writes data under name and returns the handle callers embed in turns.
func (s *BlobStore) Put(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to store blob %q: %w", name, err)
	}
	return "/media/" + name, nil
}

// Dir returns the backing directory, for mounting as a static file route.
func (s *BlobStore) Dir() string {
	return s.dir
}

// MediaFetcher downloads provider-hosted media into the blob store so the
// handles we persist outlive the provider's short-lived URLs.
type MediaFetcher struct {
	client *resty.Client
	blobs  *BlobStore
}

func NewMediaFetcher(blobs *BlobStore) *MediaFetcher {
	return &MediaFetcher{
		client: resty.New().SetTimeout(30 * time.Second),
		blobs:  blobs,
	}
}

// FetchImage downloads the image at rawURL and stores it under name,
// returning the local handle.
func (f *MediaFetcher) FetchImage(ctx context.Context, rawURL, name string) (string, error) {
	res, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to download image: status %d", res.StatusCode())
	}

	if ext := imageExt(rawURL); ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	return f.blobs.Put(name, res.Body())
}

func imageExt(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch ext := path.Ext(parsed.Path); ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	default:
		return ".png"
	}
}
