package aws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitS3URI(t *testing.T) {
	t.Run("bucket and key", func(t *testing.T) {
		bucket, key, err := SplitS3URI("s3://my-bucket/some/deep/key.csv")
		require.NoError(t, err)
		assert.Equal(t, "my-bucket", bucket)
		assert.Equal(t, "some/deep/key.csv", key)
	})

	t.Run("bare bucket", func(t *testing.T) {
		bucket, key, err := SplitS3URI("s3://my-bucket")
		require.NoError(t, err)
		assert.Equal(t, "my-bucket", bucket)
		assert.Equal(t, "", key)
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		_, _, err := SplitS3URI("https://my-bucket/key")
		require.Error(t, err)
	})

	t.Run("rejects empty bucket", func(t *testing.T) {
		_, _, err := SplitS3URI("s3:///key")
		require.Error(t, err)
	})
}

func TestS3Keys(t *testing.T) {
	b := &S3Bucket{BucketName: "data", Folder: "exports/daily"}
	assert.Equal(t, "exports/daily/2024/run.csv", b.Key("2024", "run.csv"))
	assert.Equal(t, "s3://data/exports/daily/2024/run.csv", b.URI("2024", "run.csv"))

	flat := &S3Bucket{BucketName: "data"}
	assert.Equal(t, "run.csv", flat.Key("run.csv"))
	assert.Equal(t, "s3://data", flat.URI())
}
