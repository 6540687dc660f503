package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

// UnknownEmotion is reported when inference fails or detects no face. The
// record keeps its emotion fields unset in that case.
const UnknownEmotion = "Unknown"

// ObjectStore defines the interface for external object storage.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Remove(ctx context.Context, key string) error
}

// RecordStore defines the interface for image record persistence.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.ImageRecord) (string, error)
	List(ctx context.Context, userID string) ([]models.ImageRecord, error)
	GetByID(ctx context.Context, id string) (*models.ImageRecord, error)
	SetEmotion(ctx context.Context, id string, emotion string, confidence float64) error
	Delete(ctx context.Context, id string) error
}

// Detector defines the interface for the emotion-detection service.
type Detector interface {
	Detect(ctx context.Context, filename string, data []byte) ([]models.Detection, error)
}

// Upload is one caller's payload entering the pipeline.
type Upload struct {
	Owner    string
	Filename string
	MimeType string
	Data     []byte
}

// Result is the terminal state of a successful pipeline run. Emotion and
// Confidence mirror what was persisted on the record; Confidence is nil when
// inference produced nothing.
type Result struct {
	Record     models.ImageRecord
	Emotion    string
	Confidence *float64
}

// Pipeline coordinates object storage, record persistence, and inference for
// one upload at a time. It holds no cross-request mutable state.
type Pipeline struct {
	objects  ObjectStore
	records  RecordStore
	detector Detector
	log      *slog.Logger

	timeout       time.Duration
	retryAttempts int
	retryBase     time.Duration
}

func NewPipeline(objects ObjectStore, records RecordStore, detector Detector, log *slog.Logger,
	timeout time.Duration, retryAttempts int, retryBase time.Duration) *Pipeline {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Pipeline{
		objects:       objects,
		records:       records,
		detector:      detector,
		log:           log,
		timeout:       timeout,
		retryAttempts: retryAttempts,
		retryBase:     retryBase,
	}
}

// Run executes the upload pipeline: store the bytes, persist the record, then
// analyze. The record is created before inference so the image stays
// catalogued even when analysis fails; inference failure or an empty result
// set still counts as overall success with emotion "Unknown".
func (p *Pipeline) Run(ctx context.Context, up Upload) (*Result, error) {
	if len(up.Data) == 0 {
		return nil, errs.ErrNoFilePayload
	}

	key := "uploads/" + uuid.New().String() + filepath.Ext(up.Filename)

	var url string
	err := p.withRetry(ctx, func(ctx context.Context) error {
		var err error
		url, err = p.objects.Upload(ctx, key, up.Data, up.MimeType)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	rec := &models.ImageRecord{
		UserID:     up.Owner,
		Filename:   up.Filename,
		URL:        url,
		StorageKey: key,
		MimeType:   up.MimeType,
		Size:       int64(len(up.Data)),
	}
	id, err := p.records.Insert(ctx, rec)
	if err != nil {
		// Compensating delete so the failed run leaves no orphaned object.
		if rmErr := p.removeObject(ctx, key); rmErr != nil {
			p.log.Error("compensating object delete failed", "key", key, "error", rmErr)
		}
		return nil, fmt.Errorf("record image: %w", err)
	}

	var results []models.Detection
	err = p.withRetry(ctx, func(ctx context.Context) error {
		var err error
		results, err = p.detector.Detect(ctx, up.Filename, up.Data)
		return err
	})
	if err != nil {
		p.log.Warn("inference failed, keeping record without emotion", "id", id, "error", err)
		return &Result{Record: *rec, Emotion: UnknownEmotion}, nil
	}
	if len(results) == 0 {
		return &Result{Record: *rec, Emotion: UnknownEmotion}, nil
	}

	first := results[0]
	if err := p.records.SetEmotion(ctx, id, first.Emotion, first.Confidence); err != nil {
		// The response must agree with the persisted record, so a failed
		// write-back downgrades the result to Unknown.
		p.log.Error("emotion write-back failed", "id", id, "error", err)
		return &Result{Record: *rec, Emotion: UnknownEmotion}, nil
	}
	rec.Emotion = &first.Emotion
	rec.Confidence = &first.Confidence

	return &Result{Record: *rec, Emotion: first.Emotion, Confidence: &first.Confidence}, nil
}

// List returns image records, scoped to an owner when one is given.
func (p *Pipeline) List(ctx context.Context, owner string) ([]models.ImageRecord, error) {
	return p.records.List(ctx, owner)
}

// Delete removes the storage object and then the record. The storage delete
// must succeed first: metadata is never dropped for an object that still
// exists.
func (p *Pipeline) Delete(ctx context.Context, owner, id string) error {
	rec, err := p.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if owner != "" && rec.UserID != owner {
		return errs.ErrNotFound
	}

	if err := p.removeObject(ctx, rec.StorageKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return p.records.Delete(ctx, id)
}

func (p *Pipeline) removeObject(ctx context.Context, key string) error {
	return p.withRetry(ctx, func(ctx context.Context) error {
		return p.objects.Remove(ctx, key)
	})
}

// withRetry bounds each attempt with the upstream timeout and retries with
// exponential backoff, but only on transient upstream failures. Rejections
// are permanent and surface immediately.
func (p *Pipeline) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(p.retryAttempts-1), retry.NewExponential(p.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		err := op(attemptCtx)
		if errors.Is(err, errs.ErrUpstreamUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}
