package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
	"github.com/caminho-app/caminho/internal/metrics"
)

// test seams, following the aws wiring style used elsewhere in the project
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// objectPutter is the slice of the S3 API the pipeline needs.
// *s3.Client satisfies it.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config carries the storage backend settings.
type S3Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix objects are served from,
	// e.g. "https://media.caminho.app". Defaults to Endpoint + "/" + Bucket.
	PublicBaseURL string
}

// S3Pipeline uploads payloads with PutObject and retries transient failures
// a bounded number of times. The payload is re-sent whole on retry, so the
// no-partial-range caveat of resumable uploads does not apply.
type S3Pipeline struct {
	client  objectPutter
	bucket  string
	baseURL string
	log     logging.Logger
	metrics metrics.Collector

	attempts uint64
	backoff  time.Duration
}

func NewS3Pipeline(ctx context.Context, cfg S3Config, log logging.Logger, m metrics.Collector) (*S3Pipeline, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	if m == nil {
		m = metrics.Nop{}
	}

	return &S3Pipeline{
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		log:      log,
		metrics:  m,
		attempts: 3,
		backoff:  500 * time.Millisecond,
	}, nil
}

func (p *S3Pipeline) UploadImage(ctx context.Context, payload Payload, ownerID string, onProgress ProgressFunc) (string, error) {
	return p.upload(ctx, payload, storageKey(ownerID, "image"), "image", onProgress)
}

func (p *S3Pipeline) UploadAudio(ctx context.Context, payload Payload, ownerID string, onProgress ProgressFunc) (string, error) {
	return p.upload(ctx, payload, storageKey(ownerID, "audio"), "audio", onProgress)
}

// storageKey namespaces the destination by owner and media kind, with a
// collision-resistant object name.
func storageKey(ownerID, kind string) string {
	return fmt.Sprintf("users/%s/%s/%v", ownerID, kind, uuid.New())
}

func (p *S3Pipeline) upload(ctx context.Context, payload Payload, key, kind string, onProgress ProgressFunc) (string, error) {
	tracker := &progressTracker{fn: onProgress}
	start := time.Now()

	backoff := retry.WithMaxRetries(p.attempts-1, retry.NewFibonacci(p.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := payload.Body.Seek(0, 0); err != nil {
			return fmt.Errorf("rewinding payload: %w", err)
		}

		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(key),
			Body:          &progressReader{r: payload.Body, total: payload.Size, tracker: tracker},
			ContentLength: aws.Int64(payload.Size),
			ContentType:   aws.String(payload.ContentType),
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		p.log.Warn(ctx, "upload attempt failed", "key", key, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		p.metrics.RecordUploadFailure(kind)
		return "", fmt.Errorf("put object %s: %w: %w", key, common.ErrUploadFailed, err)
	}

	tracker.emit(100)
	p.metrics.RecordUploadSuccess(kind, payload.Size, time.Since(start))
	p.log.Info(ctx, "upload finished", "key", key, "bytes", payload.Size)

	return p.baseURL + "/" + key, nil
}
