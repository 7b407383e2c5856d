package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements the Store interface on the local filesystem. Each
// bucket maps to a subdirectory under the base path and objects are served
// back through the API's /blob/ route, making it a drop-in stand-in for the
// object store in development.
type LocalStore struct {
	basePath       string // absolute path blobs are written under
	publicEndpoint string // host:port embedded in returned URLs
}

// NewLocalStore creates a filesystem-backed store rooted at basePath.
func NewLocalStore(basePath, publicEndpoint string) (*LocalStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	log.Printf("storage: Initialized local store at %s", absBasePath)
	return &LocalStore{
		basePath:       absBasePath,
		publicEndpoint: publicEndpoint,
	}, nil
}

// BasePath returns the absolute directory blobs live under. The HTTP layer
// uses it to mount the /blob/ file server.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) Protocol() string {
	return "http"
}

// PublicPrefix returns the URL prefix of URLs this store hands out.
func (s *LocalStore) PublicPrefix() string {
	return fmt.Sprintf("http://%s/blob/", s.publicEndpoint)
}

func (s *LocalStore) URL(bucket, objectName string) string {
	return s.PublicPrefix() + bucket + "/" + objectName
}

// objectPath resolves and validates the filesystem path for an object,
// rejecting names that would escape the bucket directory.
func (s *LocalStore) objectPath(bucket, objectName string) (string, error) {
	fullPath := filepath.Join(s.basePath, bucket, filepath.FromSlash(objectName))
	if !strings.HasPrefix(filepath.Clean(fullPath), s.basePath) {
		return "", fmt.Errorf("object name '%s' resolves outside storage path", objectName)
	}
	return fullPath, nil
}

func (s *LocalStore) Upload(bucket, objectName string, data []byte, contentType string) (string, error) {
	fullPath, err := s.objectPath(bucket, objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for '%s/%s': %w", bucket, objectName, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object '%s/%s': %w", bucket, objectName, err)
	}
	return s.URL(bucket, objectName), nil
}

func (s *LocalStore) Read(bucket, objectName string) ([]byte, error) {
	fullPath, err := s.objectPath(bucket, objectName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s/%s': %w", bucket, objectName, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(bucket, objectName string) error {
	fullPath, err := s.objectPath(bucket, objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object '%s/%s': %w", bucket, objectName, err)
	}
	return nil
}

func (s *LocalStore) EnsureBuckets(buckets []string) error {
	for _, bucket := range buckets {
		dirPath := filepath.Join(s.basePath, bucket)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("failed to create bucket directory '%s': %w", bucket, err)
		}
	}
	return nil
}
