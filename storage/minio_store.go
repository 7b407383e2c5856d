package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore implements the Store interface against an S3-compatible object
// store. Objects are served straight from the store's public endpoint, so
// result and upload buckets are made anonymously readable on startup.
type MinIOStore struct {
	client         *minio.Client
	endpoint       string // host:port the backend is reached at
	publicEndpoint string // host:port embedded in returned URLs
	useSSL         bool
}

// NewMinIOStore creates a store backed by the object store at endpoint.
// publicEndpoint is the address clients resolve; it differs from endpoint
// when the API runs inside a container network.
func NewMinIOStore(endpoint, publicEndpoint, accessKey, secretKey string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client for '%s': %w", endpoint, err)
	}

	log.Printf("storage: Initialized MinIO store at %s (public: %s)", endpoint, publicEndpoint)
	return &MinIOStore{
		client:         client,
		endpoint:       endpoint,
		publicEndpoint: publicEndpoint,
		useSSL:         useSSL,
	}, nil
}

func (s *MinIOStore) Protocol() string {
	if s.useSSL {
		return "https"
	}
	return "http"
}

// InternalPrefix returns the URL prefix for objects addressed through the
// backend endpoint rather than the public one.
func (s *MinIOStore) InternalPrefix() string {
	return fmt.Sprintf("%s://%s/", s.Protocol(), s.endpoint)
}

// PublicPrefix returns the URL prefix of URLs this store hands out.
func (s *MinIOStore) PublicPrefix() string {
	return fmt.Sprintf("%s://%s/", s.Protocol(), s.publicEndpoint)
}

func (s *MinIOStore) URL(bucket, objectName string) string {
	return s.PublicPrefix() + bucket + "/" + objectName
}

func (s *MinIOStore) Upload(bucket, objectName string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(context.Background(), bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object '%s/%s': %w", bucket, objectName, err)
	}
	return s.URL(bucket, objectName), nil
}

func (s *MinIOStore) Read(bucket, objectName string) ([]byte, error) {
	obj, err := s.client.GetObject(context.Background(), bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s/%s': %w", bucket, objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s/%s': %w", bucket, objectName, err)
	}
	return data, nil
}

func (s *MinIOStore) Delete(bucket, objectName string) error {
	err := s.client.RemoveObject(context.Background(), bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s/%s': %w", bucket, objectName, err)
	}
	return nil
}

// EnsureBuckets creates any missing buckets and applies an anonymous
// read-only policy so stored URLs are directly fetchable.
func (s *MinIOStore) EnsureBuckets(buckets []string) error {
	ctx := context.Background()
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket '%s': %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket '%s': %w", bucket, err)
			}
			log.Printf("storage: Created bucket '%s'", bucket)
		}

		policy := fmt.Sprintf(`{
			"Version": "2012-10-17",
			"Statement": [
				{
					"Effect": "Allow",
					"Principal": {"AWS": ["*"]},
					"Action": ["s3:GetObject"],
					"Resource": ["arn:aws:s3:::%s/*"]
				}
			]
		}`, bucket)
		if err := s.client.SetBucketPolicy(ctx, bucket, policy); err != nil {
			return fmt.Errorf("failed to set policy on bucket '%s': %w", bucket, err)
		}
	}
	return nil
}
