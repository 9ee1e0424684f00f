package storage

import "context"

// Blob is a stored binary payload with its media type.
type Blob struct {
	ID   string
	MIME string
	Data []byte
}

// BlobStore holds image bytes separately from the JSON document, keyed
// by generated id. The document only ever holds weak references; deleting
// a reference does not cascade here.
type BlobStore interface {
	PutBlob(ctx context.Context, blob Blob) error
	GetBlob(ctx context.Context, id string) (Blob, error)
	DeleteBlob(ctx context.Context, id string) error
}
