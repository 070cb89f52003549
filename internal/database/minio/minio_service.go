package minio

import (
	"auth-account/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioClient struct {
	client      *minio.Client
	bucket      string
	resourceURL string
}

// NewMinioClient connects to the object store, makes sure the avatar bucket
// exists and opens it for anonymous reads.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*MinioClient, error) {
	client, err := minio.New(cfg.MinioUrl, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to MinIO client: %w", err)
	}

	if err := ensureBucket(ctx, client, cfg.MinioBucket, cfg.MinioLocation, logger); err != nil {
		return nil, err
	}
	if err := setPublicBucketPolicy(ctx, client, cfg.MinioBucket); err != nil {
		return nil, fmt.Errorf("failed to set public policy for %s bucket: %w", cfg.MinioBucket, err)
	}

	return &MinioClient{
		client:      client,
		bucket:      cfg.MinioBucket,
		resourceURL: cfg.MinioResourceUrl,
	}, nil
}

func setPublicBucketPolicy(ctx context.Context, client *minio.Client, bucketName string) error {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Action":    []string{"s3:GetObject"},
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucketName)},
			},
		},
	}

	policyBytes, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("error marshalling policy: %w", err)
	}
	if err := client.SetBucketPolicy(ctx, bucketName, string(policyBytes)); err != nil {
		return fmt.Errorf("error setting bucket policy: %w", err)
	}
	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucketName, location string, logger *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("error creating bucket %s: %w", bucketName, err)
	}
	logger.Info("bucket created", zap.String("bucket", bucketName), zap.String("location", location))
	return nil
}

// PutObject uploads an object and returns its public URL.
func (mc *MinioClient) PutObject(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := mc.client.PutObject(ctx, mc.bucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return mc.ObjectURL(objectName), nil
}

func (mc *MinioClient) ObjectURL(objectName string) string {
	return strings.TrimSuffix(mc.resourceURL, "/") + "/" + mc.bucket + "/" + objectName
}
