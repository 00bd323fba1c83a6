package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive copies accepted uploads into a bucket under
// <prefix>/<YYYY-MM-DD>/<run id>.csv.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Archive(client *s3.Client, bucket, prefix string) *S3Archive {
	return newS3Archive(client, bucket, prefix)
}

func newS3Archive(client objectPutter, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

func (a *S3Archive) Key(runID string) string {
	return path.Join(a.prefix, a.now().UTC().Format("2006-01-02"), runID+".csv")
}

func (a *S3Archive) Archive(ctx context.Context, runID string, file io.Reader) error {
	key := a.Key(runID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s in bucket %s: %w", key, a.bucket, err)
	}

	return nil
}
