package gcs

import (
	"context"
)

// StorageService reads application payloads from and writes decision
// artefacts to Cloud Storage.
type StorageService interface {
	// FetchFromGCS returns the bytes of the object at a gs://bucket/object URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// UploadBytes stores data at bucket/object and returns its gs:// URI.
	UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error)

	// UploadFile copies a local application file into bucket/object.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error
}
