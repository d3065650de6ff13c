package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// FetchURI downloads the object bytes at a gs:// URI. It opens a fresh
// client per call; batch sources are fetched rarely enough that holding a
// client is not worth the wiring.
func FetchURI(ctx context.Context, uri string) ([]byte, error) {
	// uri example: gs://my-bucket/dumps/batch-01.txt
	if !strings.HasPrefix(uri, "gs://") {
		return nil, fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	bucketName := parts[0]
	objectPath := parts[1]

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchURI: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchURI: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchURI: reading bytes: %w", err)
	}

	return data, nil
}
