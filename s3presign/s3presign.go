// Package s3presign signs upload URLs for an S3 compatible bucket locally, as
// a drop-in replacement for the service's upload URL endpoint.
package s3presign

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bitrise-io/go-cdnclient/cdn"
	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/google/uuid"
)

// DefaultExpiry is how long a signed upload URL stays valid.
const DefaultExpiry = 15 * time.Minute

// Params ...
type Params struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint points at an S3 compatible service (R2, MinIO); path style
	// addressing is used when it is set.
	Endpoint string
	// KeyPrefix is prepended to every object key.
	KeyPrefix string
	Expiry    time.Duration
}

// Presigner implements cdn.Presigner.
type Presigner struct {
	client    *s3.PresignClient
	bucket    string
	keyPrefix string
	expiry    time.Duration
	logger    log.Logger
}

// New ...
func New(ctx context.Context, params Params, logger log.Logger) (*Presigner, error) {
	if params.Bucket == "" {
		return nil, fmt.Errorf("Bucket must not be empty")
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	cfg, err := loadAWSCredentials(ctx, params.Region, params.AccessKeyID, params.SecretAccessKey, logger)
	if err != nil {
		return nil, fmt.Errorf("load aws credentials: %w", err)
	}

	client := s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := params.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	return &Presigner{
		client:    s3.NewPresignClient(client),
		bucket:    params.Bucket,
		keyPrefix: strings.Trim(params.KeyPrefix, "/"),
		expiry:    expiry,
		logger:    logger,
	}, nil
}

// Presign signs a PUT for a fresh key. Every call yields a new key, so a
// retried upload never overwrites a half-written object.
func (p *Presigner) Presign(ctx context.Context, req cdn.PresignRequest) envelope.Result {
	if req.FileName == "" {
		return envelope.Fail("file name is empty")
	}

	key := path.Join(p.keyPrefix, uuid.NewString(), path.Base(req.FileName))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		ContentLength: aws.Int64(req.FileSize),
	}
	if req.FileType != "" {
		input.ContentType = aws.String(req.FileType)
	}

	signed, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(p.expiry))
	if err != nil {
		p.logger.Errorf("Failed to presign %s: %s", key, err)
		return envelope.Fail("presign %s: %s", key, err)
	}

	p.logger.Debugf("Presigned %s %s/%s, valid for %s", signed.Method, p.bucket, key, p.expiry)
	return envelope.OK(http.StatusOK, cdn.PresignGrant{URL: signed.URL, Key: key}, "")
}

func loadAWSCredentials(
	ctx context.Context,
	region string,
	accessKeyID string,
	secretKey string,
	logger log.Logger,
) (*aws.Config, error) {
	if region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if accessKeyID != "" && secretKey != "" {
		logger.Debugf("aws credentials provided, using them...")
		opts = append(opts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %v", err)
	}

	return &cfg, nil
}
