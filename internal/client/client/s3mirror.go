package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config points the mirror at a bucket. Endpoint is set for MinIO and other
// S3-compatible stores.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func (c S3Config) Enabled() bool { return c.Bucket != "" && c.Key != "" }

type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror keeps a copy of the published manifest in a bucket, using the
// object's ETag the same way the contents API uses the file sha.
type S3Mirror struct {
	api    s3API
	bucket string
	key    string
}

type MirrorResult struct {
	ETag    string
	Created bool
}

func NewS3Mirror(ctx context.Context, c S3Config) (*S3Mirror, error) {
	opts := []func(*config.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Mirror{api: api, bucket: c.Bucket, key: c.Key}, nil
}

func (m *S3Mirror) currentETag(ctx context.Context) (string, error) {
	out, err := m.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(m.bucket), Key: aws.String(m.key)})
	if err != nil {
		var nf *types.NotFound
		var apiErr smithy.APIError
		if errors.As(err, &nf) || (errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound") {
			return "", nil
		}
		return "", s3Failure("mirror head", err)
	}
	return aws.ToString(out.ETag), nil
}

// Mirror uploads content, conditional on the object not having changed since
// it was read. A lost race matches common.ErrConflict.
func (m *S3Mirror) Mirror(ctx context.Context, content []byte) (MirrorResult, error) {
	etag, err := m.currentETag(ctx)
	if err != nil {
		return MirrorResult{}, err
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	}
	if etag == "" {
		in.IfNoneMatch = aws.String("*")
	} else {
		in.IfMatch = aws.String(etag)
	}

	out, err := m.api.PutObject(ctx, in)
	if err != nil {
		return MirrorResult{}, s3Failure("mirror put", err)
	}
	return MirrorResult{ETag: aws.ToString(out.ETag), Created: etag == ""}, nil
}

func s3Failure(op string, err error) *SyncFailure {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return transportFailure(op, err)
	}

	f := &SyncFailure{Op: op, Reason: apiErr.ErrorMessage(), Err: err}
	if f.Reason == "" {
		f.Reason = apiErr.ErrorCode()
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed":
		f.StatusCode = http.StatusPreconditionFailed
	case "ConditionalRequestConflict":
		f.StatusCode = http.StatusConflict
	case "AccessDenied":
		f.StatusCode = http.StatusForbidden
	case "NoSuchBucket":
		f.StatusCode = http.StatusNotFound
	}
	return f
}
