package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/port"
)

// defaultPresignExpiry applies when the caller passes a non-positive expiry.
const defaultPresignExpiry = 15 * time.Minute

type s3Client struct {
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	log       *zap.Logger
}

// NewS3Client creates a new S3-backed ObjectStorage used to archive rendered documents.
func NewS3Client(cfg *config.S3Config, log *zap.Logger) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	// A custom endpoint means MinIO or LocalStack, which need path-style addressing.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Client{
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		log:       log.Named("s3"),
	}, nil
}

// Upload stores an archived document. Archives are written once per number,
// so objects are private and marked immutable for caches.
func (c *s3Client) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	put := &s3.PutObjectInput{
		Bucket:               aws.String(input.Bucket),
		Key:                  aws.String(input.Key),
		Body:                 input.Body,
		ContentType:          aws.String(input.ContentType),
		CacheControl:         aws.String("private, max-age=31536000, immutable"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if input.Size > 0 {
		put.ContentLength = aws.Int64(input.Size)
	}
	result, err := c.uploader.Upload(ctx, put)
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", input.Key, err)
	}

	c.log.Debug("document archived", zap.String("key", input.Key), zap.Int64("bytes", input.Size))
	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

func (c *s3Client) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	expiry := time.Duration(expirySeconds) * time.Second
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	result, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return result.URL, nil
}
