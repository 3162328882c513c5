// Package storage provides the object-storage client used for catalog exports.
package storage

import (
	"bytes"
	"context"
	"time"

	"bridge-go/internal/config"
	"bridge-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient is the shared MinIO client instance.
var MinioClient *minio.Client

// InitMinIO initializes the MinIO client and ensures the export bucket exists.
// Called exactly once at process start.
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("failed to initialize MinIO client", err)
	}

	log.Info("MinIO client initialized successfully")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("failed to check MinIO bucket", err)
	}

	if !exists {
		log.Infof("bucket '%s' does not exist, creating...", bucketName)
		err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("failed to create MinIO bucket", err)
		}
		log.Infof("bucket '%s' created successfully", bucketName)
	} else {
		log.Infof("bucket '%s' already exists", bucketName)
	}
}

// PutJSONObject uploads a JSON payload under the given object name.
func PutJSONObject(ctx context.Context, bucketName, objectName string, data []byte) error {
	_, err := MinioClient.PutObject(ctx, bucketName, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// GetPresignedURL generates a presigned URL for a given object.
func GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := MinioClient.PresignedGetObject(context.Background(), bucketName, objectName, expiry, nil)
	if err != nil {
		log.Errorf("error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
