package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"
	"go-athlete-backend/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/image/draw"
)

const (
	maxPictureDimension = 1200
	jpegQuality         = 80
)

// Config holds S3-compatible storage settings. A non-empty Endpoint selects
// a custom S3-compatible provider (e.g. Wasabi) with path-style addressing.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
}

type pictureStore struct {
	client *s3.Client
	cfg    Config
}

// NewPictureStore builds an S3-backed profile picture store.
func NewPictureStore(ctx context.Context, cfg Config) (domain.PictureStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &pictureStore{client: client, cfg: cfg}, nil
}

// UploadProfilePicture re-encodes the image as a bounded JPEG and uploads it
// under a per-user key. Returns the public URL of the stored object.
func (s *pictureStore) UploadProfilePicture(ctx context.Context, userID string, data []byte) (string, error) {
	contentType := http.DetectContentType(data)

	finalBytes := data
	if compressed, err := compressImage(data, maxPictureDimension, jpegQuality); err == nil {
		finalBytes = compressed
		contentType = "image/jpeg"
	} else {
		logger.Log.Warn("picture compression failed, uploading original", "user_id", userID, "error", err)
	}

	key := fmt.Sprintf("profile-pictures/%s/%d.jpg", userID, time.Now().UnixNano())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(finalBytes),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperror.NetworkError(fmt.Errorf("picture upload failed: %w", err))
	}

	if s.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key), nil
}

// compressImage bounds the image to maxDimension on its longer side and
// re-encodes it as JPEG.
func compressImage(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width >= height && width > maxDimension {
		newWidth = maxDimension
		newHeight = int(float64(height) * float64(maxDimension) / float64(width))
	} else if height > width && height > maxDimension {
		newHeight = maxDimension
		newWidth = int(float64(width) * float64(maxDimension) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
