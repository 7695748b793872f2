// Package archive keeps copies of generated label PDFs in an S3-compatible
// bucket (R2 or MinIO in cluster deployments). Uploads are best-effort: an
// unconfigured or unreachable bucket never blocks printing.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"intake-backend/internal/config"
)

type Uploader struct {
	client *s3.Client
	bucket string
}

// NewUploader builds an uploader from the archive config. Returns nil when
// no endpoint is configured; callers treat a nil uploader as "archiving off".
func NewUploader(cfg *config.Config) *Uploader {
	if cfg.Archive.Endpoint == "" || cfg.Archive.Bucket == "" {
		log.Printf("[Archive] No archive bucket configured, label archiving disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		log.Printf("[Archive] Failed to configure client: %v", err)
		return nil
	}

	endpoint := cfg.Archive.Endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &Uploader{client: client, bucket: cfg.Archive.Bucket}
}

// StoreLabel uploads one rendered label PDF under labels/<date>/<name>.pdf.
func (u *Uploader) StoreLabel(ctx context.Context, name string, pdf []byte) error {
	if u == nil {
		return nil
	}

	key := fmt.Sprintf("labels/%s/%s.pdf", time.Now().Format("2006-01-02"), name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive label %s: %w", key, err)
	}
	return nil
}
