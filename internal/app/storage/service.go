/*
Package storage provides the S3-compatible object storage used for location imagery.
Uploads and downloads happen client-side through pre-signed URLs; the server only
mints URLs and records the resulting keys.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// UploadURLDuration is the validity window of a pre-signed upload URL.
	UploadURLDuration = 5 * time.Minute

	// DownloadURLDuration is the validity window of a pre-signed download URL.
	DownloadURLDuration = 15 * time.Minute

	// MaxImageSize bounds location image uploads (bytes).
	MaxImageSize int64 = 5 << 20 // 5 MB

	// locationKeyPrefix namespaces every location image key.
	locationKeyPrefix = "locations"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService defines the public interface for the imagery storage service.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Upload streams an object through the server into the bucket.
	Upload(ctx context.Context, key, mimeType string, body io.Reader) error

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error
}

// NewStorageService is the factory function for StorageService.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}

// LocationImageKey derives the storage key for a location's image from the location
// id and the uploaded file name's extension.
func LocationImageKey(locationID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s/image%s", locationKeyPrefix, locationID, ext)
}

// IsLocationKey reports whether key belongs to the location imagery namespace.
func IsLocationKey(key string) bool {
	return strings.HasPrefix(key, locationKeyPrefix+"/")
}

// allowedImageTypes maps accepted image MIME types to their expected extensions.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateImageType checks that the file name extension and declared MIME type are
// an accepted image pair.
func ValidateImageType(fileName, mimeType string) error {
	wantExt, ok := allowedImageTypes[strings.ToLower(mimeType)]
	if !ok {
		return fmt.Errorf("unsupported image type %q", mimeType)
	}

	ext := strings.ToLower(path.Ext(fileName))
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	if ext != wantExt {
		return fmt.Errorf("file extension %q does not match type %q", ext, mimeType)
	}
	return nil
}
