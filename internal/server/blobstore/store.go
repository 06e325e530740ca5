// Package blobstore keeps uploaded attachments outside the database. The
// database only records the path returned by Put.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidKey is returned for keys that sanitize to nothing or are not
// already in sanitized form.
var ErrInvalidKey = errors.New("invalid blob key")

// Store is the attachment storage used by the upload endpoint.
type Store interface {
	// Put stores the content under key and returns the path to record.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// ObjectKey derives the storage key for an attachment from the owner, the
// attachment kind and the client-supplied filename.
func ObjectKey(userID, kind, filename string) (string, error) {
	key := SanitizeFilename(fmt.Sprintf("%s_%s_%s", userID, kind, filename))
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}

// SanitizeFilename reduces name to a single safe path component: path
// separators and whitespace become "_", everything outside [A-Za-z0-9._-]
// is dropped and leading or trailing dots and underscores are trimmed.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}
