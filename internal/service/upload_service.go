package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"matrixart/internal/config"
	"matrixart/internal/models"
	"matrixart/internal/observability"

	"github.com/google/uuid"
)

// allowedExtensions is the fixed allow-list for uploaded media.
var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"mp4": true, "webm": true,
	"mp3": true, "wav": true, "ogg": true,
}

// mimeTypes maps allowed extensions to their MIME types. Anything
// outside the table serves as application/octet-stream.
var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
}

// StoredFile describes a persisted upload.
type StoredFile struct {
	StoredName string          `json:"stored_name"`
	SizeBytes  int64           `json:"size_bytes"`
	MimeType   string          `json:"mime_type"`
	Category   models.FileType `json:"category"`
}

// UploadService validates and persists media blobs in the uploads area.
type UploadService struct {
	uploadsDir   string
	maxSizeBytes int64
}

// NewUploadService creates an UploadService from the application config.
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{
		uploadsDir:   cfg.UploadsDir,
		maxSizeBytes: cfg.MaxUploadSizeBytes(),
	}
}

// EnsureDir creates the uploads directory if it doesn't exist.
func (s *UploadService) EnsureDir() error {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory %s: %w", s.uploadsDir, err)
	}
	return nil
}

// Validate checks the size ceiling and the extension allow-list. The
// extension comes from the filename only; the declared content type is
// not trusted. Returns the normalized extension.
func (s *UploadService) Validate(filename string, sizeBytes int64) (string, error) {
	if sizeBytes > s.maxSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxSizeBytes/(1024*1024)))
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("Invalid file type")
	}
	return ext, nil
}

// Store validates the upload and writes the blob under a generated name
// preserving the extension.
func (s *UploadService) Store(ctx context.Context, filename string, content []byte) (*StoredFile, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	ext, err := s.Validate(filename, int64(len(content)))
	if err != nil {
		return nil, err
	}

	storedName := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	target := filepath.Join(s.uploadsDir, storedName)
	if err := os.WriteFile(target, content, 0o644); err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, models.NewInternalError(err)
	}

	mimeType := MimeForExtension(ext)
	category := CategoryForMime(mimeType)
	observability.UploadsTotal.WithLabelValues(string(category)).Inc()

	return &StoredFile{
		StoredName: storedName,
		SizeBytes:  int64(len(content)),
		MimeType:   mimeType,
		Category:   category,
	}, nil
}

// Exists reports whether a stored file name is present in the uploads
// area. Names carrying path separators never resolve.
func (s *UploadService) Exists(storedName string) bool {
	if storedName == "" || storedName != filepath.Base(storedName) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.uploadsDir, storedName))
	return err == nil
}

// Path returns the on-disk path for a stored file name.
func (s *UploadService) Path(storedName string) string {
	return filepath.Join(s.uploadsDir, storedName)
}

// MimeForExtension maps an extension to its MIME type.
func MimeForExtension(ext string) string {
	if mime, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// CategoryForMime classifies a MIME type by its prefix.
func CategoryForMime(mimeType string) models.FileType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.FileTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return models.FileTypeAudio
	default:
		return models.FileTypeUnknown
	}
}
