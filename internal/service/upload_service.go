package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/observability"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadTarget says where an uploaded file is indexed.
type UploadTarget struct {
	Area repository.FileArea
	// UserID is the user the file belongs to.
	UserID   uint
	FilePath string
	// MaxBytes overrides the service limit when positive.
	MaxBytes int64
}

// UploadService validates uploads, stores them and indexes them in a file area.
type UploadService interface {
	Store(ctx context.Context, files repository.FileRepository, file *multipart.FileHeader, target UploadTarget) (models.StoredFile, error)
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/gema-assign/internal/service/upload"),
	}
}

func (s *uploadService) Store(ctx context.Context, files repository.FileRepository, file *multipart.FileHeader, target UploadTarget) (models.StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	limit := s.maxSize
	if target.MaxBytes > 0 && target.MaxBytes < limit {
		limit = target.MaxBytes
	}

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", limit),
		attribute.String("upload.component", target.Area.Component),
		attribute.String("upload.file_area", target.Area.FileArea),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return models.StoredFile{}, err
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > limit {
		return models.StoredFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return models.StoredFile{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, limit+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return models.StoredFile{}, err
	}
	if int64(buf.Len()) > limit {
		return models.StoredFile{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !isAllowedType(detected) {
		return models.StoredFile{}, s.reject(span, "type", ErrUploadTypeNotAllowed)
	}

	if err := s.scan(buf.Bytes(), detected, limit); err != nil {
		return models.StoredFile{}, s.reject(span, "scan", err)
	}

	checksum := sha256.Sum256(buf.Bytes())
	displayName := cleanDisplayName(file.Filename)
	storageName := fmt.Sprintf("%d-%s-%d-%s", target.Area.ContextID, target.Area.FileArea, target.Area.ItemID, sanitizeFileName(displayName))

	url, err := s.storage.Upload(ctx, storageName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return models.StoredFile{}, err
	}

	record := models.StoredFile{
		ContextID: target.Area.ContextID,
		Component: target.Area.Component,
		FileArea:  target.Area.FileArea,
		ItemID:    target.Area.ItemID,
		UserID:    target.UserID,
		FilePath:  models.NormalizeFilePath(target.FilePath),
		FileName:  displayName,
		URL:       url,
		MimeType:  detected.String(),
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}
	if err := files.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return models.StoredFile{}, err
	}

	observability.Uploads().WithLabelValues(target.Area.FileArea).Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Debug().
		Uint("context_id", record.ContextID).
		Str("file_area", record.FileArea).
		Str("file_name", record.FileName).
		Msg("file stored")

	return record, nil
}

func (s *uploadService) reject(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "rejected: "+reason)
	return err
}

func (s *uploadService) scan(payload []byte, detected *mimetype.MIME, limit int64) error {
	if !detected.Is("application/zip") {
		return nil
	}
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrUploadScanFailed
	}
	var totalUncompressed uint64
	for _, f := range reader.File {
		totalUncompressed += f.UncompressedSize64
		if totalUncompressed > uint64(limit*20) {
			return fmt.Errorf("zip archive uncompressed size too large: %w", ErrUploadScanFailed)
		}
	}
	return nil
}

var blockedTypes = []string{
	"application/vnd.microsoft.portable-executable",
	"application/x-elf",
	"application/x-mach-binary",
	"application/x-msdownload",
}

func isAllowedType(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, blocked := range blockedTypes {
			if m.Is(blocked) {
				return false
			}
		}
	}
	return true
}

func cleanDisplayName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return fmt.Sprintf("upload-%d.bin", time.Now().Unix())
	}
	return base
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
