package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Image folders inside the store.
const (
	RecipeImageFolder = "recipes/images"
	AvatarFolder      = "users"
)

// ImageStore persists images submitted as base64 data URIs and returns the
// public reference that is stored on the owning row.
type ImageStore interface {
	Save(ctx context.Context, payload, folder string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// DecodedImage is a validated image payload.
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImage parses a "data:image/<type>;base64,<data>" payload and checks
// that the decoded bytes really are an image.
func DecodeImage(payload string) (*DecodedImage, error) {
	header, encoded, ok := strings.Cut(payload, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, withDetail(ErrInvalidValue, "image", "expected a base64 encoded image")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, withDetail(ErrInvalidValue, "image", "image data is not valid base64")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, withDetail(ErrInvalidValue, "image", "uploaded file is not an image")
	}

	return &DecodedImage{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}

func objectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

// LocalImageStore writes images below a media root that is served statically.
type LocalImageStore struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

func NewLocalImageStore(root, baseURL string, logger *zap.Logger) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (s *LocalImageStore) Save(ctx context.Context, payload, folder string) (string, error) {
	img, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, img.Extension)
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	s.logger.Debug("image stored", zap.String("key", key), zap.String("content_type", img.ContentType))
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.baseURL+"/")
	if key == ref || key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// S3API is the subset of the S3 client used by S3ImageStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads images to a bucket and references them by public URL.
type S3ImageStore struct {
	client    S3API
	bucket    string
	publicURL string
	logger    *zap.Logger
}

func NewS3ImageStore(client S3API, bucket, publicURL string, logger *zap.Logger) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (s *S3ImageStore) Save(ctx context.Context, payload, folder string) (string, error) {
	img, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, img.Extension)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.publicURL + "/" + key
	s.logger.Info("uploaded image to S3", zap.String("url", url))
	return url, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.publicURL+"/")
	if key == ref || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
