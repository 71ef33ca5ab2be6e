package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// S3Storage keeps objects in an S3 bucket under an optional key prefix
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// Ensure S3Storage implements StorageInterface
var _ StorageInterface = (*S3Storage)(nil)

// NewS3Storage creates a client from the default AWS credential chain
func NewS3Storage(ctx context.Context, bucket, region, prefix string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	logrus.Infof("Using S3 bucket %s (region %s)", bucket, region)
	return &S3Storage{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *S3Storage) key(name string) string {
	return s.prefix + name
}

// Store uploads an object
func (s *S3Storage) Store(filename string, data []byte) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:         aws.String(s.key(filename)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentTypeFor(filename)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", filename, err)
	}
	return nil
}

// Retrieve downloads an object
func (s *S3Storage) Retrieve(filename string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filename)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s from s3: %w", filename, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from s3: %w", filename, err)
	}
	return data, nil
}

// List returns object names starting with prefix
func (s *S3Storage) List(prefix string) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to list s3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	return names, nil
}

// Delete removes an object
func (s *S3Storage) Delete(filename string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filename)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from s3: %w", filename, err)
	}
	return nil
}
