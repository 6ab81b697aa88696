// Package artifact stores original flyer images durably outside the
// relational store.
package artifact

import "context"

// Store writes one image and returns the stable path it can be fetched
// under. Implementations must treat a path collision as an upsert, not an
// error. A failed upload is a soft failure: it aborts only the submission
// being stored, never the process.
type Store interface {
	Store(ctx context.Context, imageData []byte, mimeType, sourceContact string) (string, error)
}
