package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSStore сохраняет ресурсы в бакет Google Cloud Storage
type GCSStore struct {
	client     *gcs.Client
	bucket     string
	publicBase string
}

// NewGCSStore создает клиент GCS. credentialsFile может быть пустым: тогда используются
// учетные данные окружения. publicBase задает CDN-домен для ссылок.
func NewGCSStore(ctx context.Context, bucket, publicBase, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Put загружает объект с условием DoesNotExist: одинаковое содержимое уже лежит под тем же именем
func (s *GCSStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := s.client.Bucket(s.bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed {
			return s.publicURL(name), nil
		}
		return "", fmt.Errorf("close object writer %s: %w", name, err)
	}
	return s.publicURL(name), nil
}

// Close закрывает клиент GCS
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) publicURL(name string) string {
	return s.publicBase + "/" + name
}
