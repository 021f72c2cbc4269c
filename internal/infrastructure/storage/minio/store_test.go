package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
)

type fakeMinIO struct {
	bucketExists bool
	madeBucket   string
	putObject    string
	putData      int64
	putType      string
	presigned    string
}

func (f *fakeMinIO) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeMinIO) MakeBucket(_ context.Context, bucketName string, _ miniogo.MakeBucketOptions) error {
	f.madeBucket = bucketName
	return nil
}

func (f *fakeMinIO) PutObject(_ context.Context, _, objectName string, reader io.Reader, objectSize int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	f.putObject = objectName
	f.putData = objectSize
	f.putType = opts.ContentType
	return miniogo.UploadInfo{Key: objectName, Size: objectSize}, nil
}

func (f *fakeMinIO) PresignedGetObject(_ context.Context, _, objectName string, _ time.Duration, _ url.Values) (*url.URL, error) {
	f.presigned = objectName
	return url.Parse("https://minio.local/exports/" + objectName)
}

func TestArtifactStore_Put(t *testing.T) {
	api := &fakeMinIO{bucketExists: true}
	store := &artifactStore{
		api:           api,
		bucket:        "competiscope-exports",
		presignExpiry: time.Hour,
		logger:        logging.NewNopLogger(),
	}

	artifact, err := store.Put(context.Background(), "comparison.csv", "text/csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	assert.Contains(t, artifact.ObjectName, "comparison.csv")
	assert.Equal(t, "text/csv", artifact.ContentType)
	assert.EqualValues(t, 8, artifact.Size)
	assert.Contains(t, artifact.DownloadURL, artifact.ObjectName)
	assert.Equal(t, api.putObject, api.presigned)
	assert.WithinDuration(t, time.Now().Add(time.Hour), artifact.ExpiresAt, time.Minute)
}

func TestArtifactStore_EnsureBucketCreatesMissing(t *testing.T) {
	api := &fakeMinIO{bucketExists: false}
	store := &artifactStore{
		api:    api,
		bucket: "competiscope-exports",
		logger: logging.NewNopLogger(),
	}

	require.NoError(t, store.ensureBucket(context.Background()))
	assert.Equal(t, "competiscope-exports", api.madeBucket)
}

func TestArtifactStore_EnsureBucketSkipsExisting(t *testing.T) {
	api := &fakeMinIO{bucketExists: true}
	store := &artifactStore{
		api:    api,
		bucket: "competiscope-exports",
		logger: logging.NewNopLogger(),
	}

	require.NoError(t, store.ensureBucket(context.Background()))
	assert.Empty(t, api.madeBucket)
}
