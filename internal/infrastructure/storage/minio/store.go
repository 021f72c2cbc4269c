// Package minio stores rendered export artifacts and hands out presigned
// download links.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/competiscope/internal/config"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
)

// minioAPI is the subset of the MinIO client the store uses; abstracted for
// testing.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Artifact describes a stored export document.
type Artifact struct {
	ObjectName  string    `json:"object_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ArtifactStore uploads export documents and returns presigned links.
type ArtifactStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (*Artifact, error)
}

type artifactStore struct {
	api           minioAPI
	bucket        string
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewArtifactStore connects to MinIO and ensures the export bucket exists.
func NewArtifactStore(ctx context.Context, cfg *config.MinIOConfig, log logging.Logger) (ArtifactStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create minio client")
	}

	store := &artifactStore{
		api:           client,
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
		logger:        log,
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *artifactStore) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeNetworkFailure, "failed to check export bucket")
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create export bucket")
	}
	s.logger.Info("Created export bucket", logging.String("bucket", s.bucket))
	return nil
}

// Put uploads data under a unique object name derived from name and returns
// the artifact with a presigned download link.
func (s *artifactStore) Put(ctx context.Context, name, contentType string, data []byte) (*Artifact, error) {
	objectName := fmt.Sprintf("%s/%s-%s", time.Now().UTC().Format("2006/01/02"), uuid.New().String()[:8], name)

	info, err := s.api.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportUploadFailed, "failed to upload export artifact")
	}

	link, err := s.api.PresignedGetObject(ctx, s.bucket, objectName, s.presignExpiry, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportUploadFailed, "failed to presign export artifact")
	}

	s.logger.Info("Stored export artifact",
		logging.String("object", objectName),
		logging.Int64("size", info.Size),
	)

	return &Artifact{
		ObjectName:  objectName,
		ContentType: contentType,
		Size:        info.Size,
		DownloadURL: link.String(),
		ExpiresAt:   time.Now().UTC().Add(s.presignExpiry),
	}, nil
}
