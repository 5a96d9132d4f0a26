package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Storage struct {
	Client    *s3.Client
	Bucket    string
	Region    string
	PublicURL string
}

func NewS3Storage(ctx context.Context, bucket, region, publicURL string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3Storage{
		Client:    s3.NewFromConfig(cfg),
		Bucket:    bucket,
		Region:    region,
		PublicURL: publicURL,
	}, nil
}

// UploadAvatar puts the image under a per-user key, overwriting any
// previous avatar, and returns the public URL of the object.
func (s *S3Storage) UploadAvatar(ctx context.Context, username, contentType string, body io.Reader) (string, error) {
	key := "avatars/" + username

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	if s.PublicURL != "" {
		return s.PublicURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key), nil
}
