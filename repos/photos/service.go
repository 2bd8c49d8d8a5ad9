// Package photos stores user and group images in the Firebase Storage bucket.
package photos

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/samborkent/uuidv7"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/playmatch/api/pkg/apperrors"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// Uploader writes an object and returns a public download URL for it.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

type Service struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewService(bucket *gcs.BucketHandle, bucketName string) *Service {
	return &Service{bucket: bucket, bucketName: bucketName}
}

func (s *Service) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	token := uuidv7.New().String()

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		log.WithError(err).WithField("path", path).Error("Failed to upload object")
		return "", xerrors.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		log.WithError(err).WithField("path", path).Error("Failed to finalize object")
		return "", xerrors.Errorf("upload %s: %w", path, err)
	}
	return DownloadURL(s.bucketName, path, token), nil
}

// DownloadURL is the token-protected URL Firebase clients use for an object.
func DownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), token)
}

// Unavailable is the uploader used when no storage bucket is configured.
type Unavailable struct{}

func (Unavailable) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", xerrors.Errorf("photo storage is not configured: %w", apperrors.ErrUnavailable)
}
