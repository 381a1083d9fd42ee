package attachments

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nipa/healthsync/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts   []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestNewS3Uploader_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	fake := &fakeS3{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	u, err := NewS3Uploader(context.Background(), S3Config{
		Region:       "eu-central-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "healthsync",
	})
	require.NoError(t, err)
	assert.True(t, u.Enabled())
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Uploader_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err := NewS3Uploader(context.Background(), S3Config{Bucket: "b"})
	require.ErrorContains(t, err, "load aws config")
}

func TestNewS3Uploader_NoBucketDisables(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Config{})
	require.NoError(t, err)
	assert.False(t, u.Enabled())

	_, err = u.Upload(context.Background(), "p1", "/tmp/x")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestUpload_ContentAddressedKey(t *testing.T) {
	fake := &fakeS3{}
	u := &S3Uploader{bucket: "healthsync", client: fake}
	p := writeFile(t, "xray.png", "image-bytes")

	key, err := u.Upload(context.Background(), "prov-1", p)
	require.NoError(t, err)

	hash, err := cryptox.FileHash(p)
	require.NoError(t, err)
	assert.Equal(t, "attachments/prov-1/"+hash, key)

	again, err := u.Upload(context.Background(), "prov-1", p)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	require.Len(t, fake.puts, 2)
	assert.Equal(t, "healthsync", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, []byte("image-bytes"), fake.bodies[0])
}

func TestUpload_Errors(t *testing.T) {
	u := &S3Uploader{bucket: "b", client: &fakeS3{err: errors.New("503")}}

	_, err := u.Upload(context.Background(), "p", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = u.Upload(context.Background(), "p", writeFile(t, "a.txt", "a"))
	require.ErrorContains(t, err, "put attachments/p/")
}
