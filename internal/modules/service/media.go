package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/calabriando/api/internal/infra/blob"
	"github.com/calabriando/api/internal/modules/model"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaService is the shared upload/replace/delete pipeline every editor
// screen goes through. Keys are namespaced by category with a
// collision-resistant suffix, so uploads never overwrite each other.
type MediaService interface {
	// Upload stores a new image for an entity and returns its public URL.
	// Rejected with ErrGalleryFull when the entity already holds the
	// category's maximum image count.
	Upload(ctx context.Context, cfg model.CategoryConfig, currentImages []string, filename string, body io.Reader) (string, error)
	// Replace uploads the new image first and only then deletes the old
	// one; a failed delete leaves an orphan in the bucket, never an
	// entity without its image.
	Replace(ctx context.Context, cfg model.CategoryConfig, oldURL string, filename string, body io.Reader) (string, error)
	// Remove deletes the backing object of a stored URL. Unparseable URLs
	// are skipped with a warning so the caller's primary operation is
	// never blocked.
	Remove(ctx context.Context, publicURL string)
	// RemoveAll is the delete-cascade variant used when an entity goes away.
	RemoveAll(ctx context.Context, publicURLs []string)
}

type mediaService struct {
	s3  *blob.S3Deps
	log *zap.Logger
}

func NewMediaService(s3 *blob.S3Deps, log *zap.Logger) MediaService {
	return &mediaService{s3: s3, log: log}
}

func (s *mediaService) Upload(ctx context.Context, cfg model.CategoryConfig, currentImages []string, filename string, body io.Reader) (string, error) {
	if len(currentImages) >= cfg.MaxImages {
		return "", ErrGalleryFull
	}
	return s.upload(ctx, cfg.Slug, filename, body)
}

func (s *mediaService) Replace(ctx context.Context, cfg model.CategoryConfig, oldURL string, filename string, body io.Reader) (string, error) {
	url, err := s.upload(ctx, cfg.Slug, filename, body)
	if err != nil {
		return "", err
	}
	if oldURL != "" {
		s.Remove(ctx, oldURL)
	}
	return url, nil
}

func (s *mediaService) upload(ctx context.Context, category, filename string, body io.Reader) (string, error) {
	// Sniff the real content type instead of trusting the filename.
	head := make([]byte, 3072)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read media header: %w", err)
	}
	mtype := mimetype.Detect(head[:n])
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = extOf(filename)
	}
	key := fmt.Sprintf("%s/%d-%s%s", category, time.Now().UnixNano(), uuid.NewString()[:8], ext)

	full := io.MultiReader(bytes.NewReader(head[:n]), body)
	if err := s.s3.Upload(ctx, key, mtype.String(), full); err != nil {
		return "", err
	}
	return s.s3.PublicURL(key), nil
}

func (s *mediaService) Remove(ctx context.Context, publicURL string) {
	key, err := s.s3.KeyFromPublicURL(publicURL)
	if err != nil {
		s.log.Warn("skipping media removal, url not recognized",
			zap.String("url", publicURL))
		return
	}
	if err := s.s3.DeleteObject(ctx, key); err != nil {
		s.log.Warn("media removal failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *mediaService) RemoveAll(ctx context.Context, publicURLs []string) {
	keys := make([]string, 0, len(publicURLs))
	for _, u := range publicURLs {
		if u == "" {
			continue
		}
		key, err := s.s3.KeyFromPublicURL(u)
		if err != nil {
			s.log.Warn("skipping media removal, url not recognized",
				zap.String("url", u))
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.s3.DeleteObjects(ctx, keys); err != nil {
		s.log.Warn("media cascade removal failed",
			zap.Int("count", len(keys)), zap.Error(err))
	}
}

func extOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
