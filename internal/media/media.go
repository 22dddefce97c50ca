// Package media stores uploaded store assets such as the logo, either on
// S3 or in a local directory served by the web tier.
package media

import (
	"context"
	"io"
	"regexp"
	"strings"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// allowedImageTypes maps accepted content types to a default extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IsAllowedImageType reports whether contentType is an accepted image type.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

// ExtensionFor returns the default file extension for an image type.
func ExtensionFor(contentType string) string {
	return allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// productImageTypes is the narrower set accepted for catalogue images.
var productImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// IsAllowedProductImageType reports whether contentType may be used as a
// product image. GIF is accepted for the logo only.
func IsAllowedProductImageType(contentType string) bool {
	return productImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// unsafeNameChars matches everything SanitiseName drops.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitiseName reduces a client file name to letters, digits, dots and
// dashes. The result may be empty.
func SanitiseName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "")
}

// Store persists named media objects.
type Store interface {
	// Save writes the object and returns its public URL.
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// URL returns the public URL of a stored object.
	URL(name string) string
}

// NewStore returns the S3 store when S3 is enabled and the local file store
// otherwise.
func NewStore(ctx context.Context, s3cfg config.S3Config, mediaCfg config.MediaConfig, logger zerolog.Logger) (Store, error) {
	if s3cfg.Enabled {
		return NewS3Store(ctx, s3cfg.Bucket, s3cfg.Region, s3cfg.Prefix, mediaCfg.BaseURL, logger)
	}
	return NewFileStore(mediaCfg.Dir, mediaCfg.BaseURL, logger)
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}
