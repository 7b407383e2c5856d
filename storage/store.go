package storage

import "strings"

// Store defines the interface for saving, retrieving, and deleting staged
// image blobs across the configured buckets
type Store interface {
	// Upload stores data under objectName in the given bucket and returns
	// the public URL for the stored object
	Upload(bucket, objectName string, data []byte, contentType string) (string, error)
	// Read retrieves the full contents of an object
	Read(bucket, objectName string) ([]byte, error)
	// Delete removes an object; deleting a missing object is not an error
	Delete(bucket, objectName string) error
	// URL returns the public URL for an object without touching the backend
	URL(bucket, objectName string) string
	// Protocol returns the URL scheme this store serves objects under
	Protocol() string
	// EnsureBuckets creates the given buckets if missing and makes their
	// objects publicly readable
	EnsureBuckets(buckets []string) error
}

// SplitObjectURL breaks a URL produced by a Store back into its bucket and
// object name, given the prefix the store serves from (scheme://endpoint/).
// Returns ok=false when the URL does not belong to that store.
func SplitObjectURL(url, prefix string) (bucket, objectName string, ok bool) {
	if !strings.HasPrefix(url, prefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(url, prefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
