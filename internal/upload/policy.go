// Package upload holds the validation rules and naming scheme shared by media
// and avatar uploads.
package upload

import (
	"mime"
	"path"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

// Size ceilings.
const (
	MediaMaxBytes  int64 = 2 << 20
	AvatarMaxBytes int64 = 5 << 20
)

// DefaultContentType is served for files with an unknown extension.
const DefaultContentType = "application/octet-stream"

// allowed maps accepted content types to the extension given to stored files.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var byExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Policy bounds one kind of upload.
type Policy struct {
	MaxBytes int64
}

// Check validates an upload in fixed order: empty, then size, then type.
// It returns the normalized content type on success.
func (p Policy) Check(size int64, contentType string) (string, error) {
	if size <= 0 {
		return "", errs.ErrEmptyFile
	}
	if size > p.MaxBytes {
		return "", errs.ErrFileTooLarge
	}
	ct, ok := Normalize(contentType)
	if !ok {
		return "", errs.ErrBadContentType
	}
	return ct, nil
}

// Normalize lowercases contentType, drops parameters and folds the image/jpg alias.
// ok is false when the result is not on the allow-list.
func Normalize(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	_, ok := allowed[ct]
	return ct, ok
}

// NewFilename returns a fresh server-side name for an allowed content type.
func NewFilename(contentType string) (string, error) {
	ct, ok := Normalize(contentType)
	if !ok {
		return "", errs.ErrBadContentType
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String() + allowed[ct], nil
}

// ContentTypeFor derives the served content type from a stored filename.
func ContentTypeFor(filename string) string {
	if ct, ok := byExtension[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return DefaultContentType
}

// Locator builds the retrieval path /{collection}/file/{resourceID}/{filename}.
func Locator(collection, resourceID, filename string) string {
	return "/" + strings.Trim(collection, "/") + "/file/" + resourceID + "/" + filename
}
