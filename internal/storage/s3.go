// Package storage uploads published artifacts to S3 when enabled.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"autosub/internal/config"
	"autosub/internal/jobs"
	"autosub/internal/logging"
)

// ObjectPutter is the slice of the S3 API the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Uploader copies manifest artifacts into an S3 bucket.
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// NewUploader builds an uploader from configuration, loading AWS credentials
// from the default chain.
func NewUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Storage.S3Bucket,
		prefix: cfg.Storage.S3Prefix,
		logger: logging.NewComponentLogger(logger, "storage"),
	}, nil
}

// NewUploaderWithClient builds an uploader over an existing client.
func NewUploaderWithClient(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logging.NewComponentLogger(logger, "storage"),
	}
}

// UploadManifest uploads every file-backed manifest entry, keyed by job ID
// and basename. Already-present objects are skipped. Upload failure of one
// artifact stops the batch; outputs on local disk remain authoritative.
func (u *Uploader) UploadManifest(ctx context.Context, jobID string, manifest map[string]string) error {
	labels := make([]string, 0, len(manifest))
	for label := range manifest {
		if label == jobs.DurationLabel {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		localPath := manifest[label]
		key := path.Join(u.prefix, jobID, filepath.Base(localPath))
		exists, err := u.objectExists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := u.uploadFile(ctx, localPath, key); err != nil {
			return fmt.Errorf("upload %s: %w", label, err)
		}
		if u.logger != nil {
			u.logger.Info("artifact uploaded",
				logging.String(logging.FieldJobID, jobID),
				logging.String("key", key),
			)
		}
	}
	return nil
}

func (u *Uploader) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   file,
	})
	return err
}

func (u *Uploader) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isNotFoundError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NotFoundException" || code == "404" || code == "NoSuchKey"
	}
	return strings.Contains(err.Error(), "NotFound")
}
