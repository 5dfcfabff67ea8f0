package blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
)

const imageContentType = "image/jpeg"

// Store issues time-bounded upload/download URLs for ticket images and
// performs deletion. It carries no business logic and does not retry;
// retry policy belongs to the coordinator.
type Store struct {
	client  aws.S3API
	presign aws.S3PresignAPI
	bucket  string
	ttl     time.Duration
}

// NewStore returns a Store bound to one bucket. ttl bounds the validity
// of every URL the store hands out.
func NewStore(client aws.S3API, presign aws.S3PresignAPI, bucket string, ttl time.Duration) *Store {
	return &Store{
		client:  client,
		presign: presign,
		bucket:  bucket,
		ttl:     ttl,
	}
}

// ObjectKey derives the bucket key for a ticket's image.
func ObjectKey(ticketID string) string {
	return ticketID + ".jpg"
}

// AllocateWriteLocation returns the object key and a pre-signed PUT URL
// the caller uses to upload image bytes directly to the bucket.
func (s *Store) AllocateWriteLocation(ctx context.Context, ticketID string) (string, string, error) {
	key := ObjectKey(ticketID)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		ContentType: awsString(imageContentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return key, req.URL, nil
}

// AllocateReadLocation returns a pre-signed GET URL for an existing key.
func (s *Store) AllocateReadLocation(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

// Upload stores inline image bytes under the ticket's key and returns
// that key.
func (s *Store) Upload(ctx context.Context, ticketID string, data []byte) (string, error) {
	key := ObjectKey(ticketID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: awsString(imageContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// Delete removes the object. S3 treats a missing key as success, which
// is exactly the idempotent cleanup semantics we want.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func awsString(s string) *string { return &s }
