// Package upload checks images against the listing constraints and pushes
// them to object storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

// ObjectStore is where accepted images end up.
type ObjectStore interface {
	PutObject(ctx context.Context, objectKey string, body io.Reader, contentType string, size int64, metadata map[string]string) error
	PublicURL(objectKey string) string
}

type Options struct {
	MaxBytes     int64
	AllowedTypes []string
	Prefix       string
}

type Gate struct {
	store    ObjectStore
	maxBytes int64
	allowed  map[string]struct{}
	prefix   string

	now    func() time.Time
	suffix func() string
}

func NewGate(store ObjectStore, opts Options) *Gate {
	allowed := make(map[string]struct{}, len(opts.AllowedTypes))
	for _, t := range opts.AllowedTypes {
		allowed[normalizeType(t)] = struct{}{}
	}
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix == "" {
		prefix = "images"
	}
	return &Gate{
		store:    store,
		maxBytes: opts.MaxBytes,
		allowed:  allowed,
		prefix:   prefix,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// Check applies the size and type constraints without touching storage.
func (g *Gate) Check(f domain.File) error {
	if f.Body == nil {
		return domain.ErrValidation(domain.MsgFileMissing)
	}
	if f.Size > g.maxBytes {
		return domain.ErrValidation(domain.MsgFileTooLarge)
	}
	if _, ok := g.allowed[normalizeType(f.ContentType)]; !ok {
		return domain.ErrValidation(domain.MsgFileTypeNotAllowed)
	}
	return nil
}

// Upload stores f under a fresh key and returns where it can be downloaded.
// Rejected files never reach storage.
func (g *Gate) Upload(ctx context.Context, f domain.File) (*domain.UploadResult, error) {
	log := logger.Ctx(ctx)
	if err := g.Check(f); err != nil {
		metrics.RecordUpload("rejected", 0)
		log.Info().Str("file", f.Name).Int64("size", f.Size).Str("content_type", f.ContentType).Msg("upload_rejected")
		return nil, err
	}

	contentType := normalizeType(f.ContentType)
	key := g.objectKey(f.Name, contentType)
	meta := map[string]string{
		"content-type":  contentType,
		"original-name": f.Name,
	}

	start := time.Now()
	if err := g.store.PutObject(ctx, key, f.Body, contentType, f.Size, meta); err != nil {
		metrics.RecordUpload("failed", time.Since(start))
		log.Error().Err(err).Str("key", key).Msg("upload_failed")
		return nil, domain.ErrUploadFailed(err)
	}
	metrics.RecordUpload("ok", time.Since(start))
	log.Info().Str("key", key).Int64("size", f.Size).Msg("upload_stored")

	return &domain.UploadResult{
		DownloadURL:      g.store.PublicURL(key),
		OriginalFileName: f.Name,
		ContentType:      contentType,
	}, nil
}

func (g *Gate) objectKey(name, contentType string) string {
	return fmt.Sprintf("%s/%d-%s.%s", g.prefix, g.now().UnixMilli(), g.suffix(), extension(name, contentType))
}

// extension keeps the original file's extension, falling back to one derived
// from the content type.
func extension(name, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext != "" {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	}
	return "bin"
}

func normalizeType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
