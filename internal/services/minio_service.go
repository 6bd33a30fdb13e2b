package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"partsportal/internal/config"
)

// ErrInvalidAttachmentKey is returned for keys outside the attachment prefix
var ErrInvalidAttachmentKey = errors.New("invalid attachment key")

const attachmentPrefix = "attachments/"

// Attachment describes a stored file
type Attachment struct {
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// objectStore is the subset of *minio.Client used for attachments
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type AttachmentService interface {
	Upload(ctx context.Context, fileName, contentType string, reader io.Reader, size int64) (*Attachment, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	EnsureBucketExists(ctx context.Context) error
}

type minioAttachmentService struct {
	client objectStore
	bucket string
	expiry time.Duration
}

// NewMinioService connects to the attachment store
func NewMinioService(cfg config.MinioConfig) (AttachmentService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newAttachmentService(client, cfg.Bucket), nil
}

func newAttachmentService(client objectStore, bucket string) *minioAttachmentService {
	return &minioAttachmentService{
		client: client,
		bucket: bucket,
		expiry: 15 * time.Minute,
	}
}

// Upload stores a file under a fresh key
func (m *minioAttachmentService) Upload(ctx context.Context, fileName, contentType string, reader io.Reader, size int64) (*Attachment, error) {
	name := sanitizeFileName(fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := attachmentPrefix + uuid.NewString() + "/" + name

	if _, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	log.Infof("stored attachment %s (%d bytes)", key, size)
	return &Attachment{
		Key:         key,
		FileName:    name,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// PresignedURL returns a time-limited download URL
func (m *minioAttachmentService) PresignedURL(ctx context.Context, key string) (string, error) {
	if !validAttachmentKey(key) {
		return "", ErrInvalidAttachmentKey
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}
	return u.String(), nil
}

func (m *minioAttachmentService) Delete(ctx context.Context, key string) error {
	if !validAttachmentKey(key) {
		return ErrInvalidAttachmentKey
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func (m *minioAttachmentService) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func validAttachmentKey(key string) bool {
	if !strings.HasPrefix(key, attachmentPrefix) || strings.Contains(key, "..") {
		return false
	}
	return len(strings.Split(key, "/")) == 3
}
