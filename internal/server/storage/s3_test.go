package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/coursekeeper/internal/server/config"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
	body    string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "eu-central-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "media",
	}
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "eu-central-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		require.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	store, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	require.Equal(t, "media", store.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	require.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	require.True(t, opts.UsePathStyle)
}

func TestNewS3Store_LoadConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	boom := errors.New("no creds")
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}

	_, err := NewS3Store(context.Background(), testConfig())
	require.ErrorIs(t, err, boom)
}

func TestS3Store_Put(t *testing.T) {
	api := &fakeS3{}
	store := &S3Store{api: api, bucket: "media"}

	err := store.Put(context.Background(), "media/2026/03/01/x.mp4", "video/mp4", 5, strings.NewReader("hello"))
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	in := api.puts[0]
	require.Equal(t, "media", aws.ToString(in.Bucket))
	require.Equal(t, "media/2026/03/01/x.mp4", aws.ToString(in.Key))
	require.Equal(t, "video/mp4", aws.ToString(in.ContentType))
	require.Equal(t, int64(5), aws.ToInt64(in.ContentLength))
	require.Equal(t, "hello", api.body)
}

func TestS3Store_PutWithoutContentType(t *testing.T) {
	api := &fakeS3{}
	store := &S3Store{api: api, bucket: "media"}

	require.NoError(t, store.Put(context.Background(), "k", "", 0, strings.NewReader("")))
	require.Nil(t, api.puts[0].ContentType)
}

func TestS3Store_ErrorsAreWrapped(t *testing.T) {
	boom := errors.New("503 slow down")
	store := &S3Store{api: &fakeS3{err: boom}, bucket: "media"}

	err := store.Put(context.Background(), "k", "", 1, strings.NewReader("x"))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "put object k")

	err = store.Delete(context.Background(), "k")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "delete object k")
}

func TestS3Store_Delete(t *testing.T) {
	api := &fakeS3{}
	store := &S3Store{api: api, bucket: "media"}

	require.NoError(t, store.Delete(context.Background(), "media/a.pdf"))
	require.Len(t, api.deletes, 1)
	require.Equal(t, "media", aws.ToString(api.deletes[0].Bucket))
	require.Equal(t, "media/a.pdf", aws.ToString(api.deletes[0].Key))
}
