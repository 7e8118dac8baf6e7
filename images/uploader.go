// Package images uploads meal and profile photos to an external image host
// and returns the public URL the backend stores.
package images

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores content under key and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, key string, content io.Reader) (string, error)
}

// NewKey builds a unique object key such as "meals/5b1c...e2.jpg"
func NewKey(prefix, filename string) string {
	key := uuid.NewString() + strings.ToLower(path.Ext(filename))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
