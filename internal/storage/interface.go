package storage

import "context"

// AudioStore defines the interface for persisting generated audio assets.
// Upload writes the full payload before returning; the returned URL is the
// stable public address of the object.
type AudioStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}
