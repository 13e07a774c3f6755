package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/participation-check/internal/imagestore"
	"github.com/example/participation-check/internal/logging"
	"github.com/example/participation-check/internal/repository"
	"github.com/example/participation-check/internal/vision"
)

// ParticipationRepository defines the persistence operations needed by the
// use case.
type ParticipationRepository interface {
	Append(ctx context.Context, rec *repository.ParticipationRecord) error
	FindByRequestID(ctx context.Context, requestID string) (*repository.ParticipationRecord, error)
}

// Services groups the external vision collaborators.
type Services struct {
	Detector  vision.Detector
	Comparer  vision.Comparer
	Extractor vision.Extractor
}

// Config carries the pipeline tunables.
type Config struct {
	NamesPrefix         string
	FacesPrefix         string
	UploadPrefix        string
	SimilarityThreshold float64
	WorkerPoolSize      int
	RequestTimeout      time.Duration
}

// VerificationUseCase orchestrates one participation verification: validate,
// ingest the image, load the reference corpus, collect evidence in parallel,
// decide, persist best-effort, and assemble the response.
type VerificationUseCase struct {
	store  imagestore.Store
	svc    Services
	repo   ParticipationRepository
	cache  Cache
	logger *zap.Logger
	cfg    Config
}

// cachedRecord is the reduced record kept in Redis after each verification.
type cachedRecord struct {
	RequestID        string    `json:"request_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	ClassDate        string    `json:"class_date"`
	Participation    bool      `json:"participation"`
	NameMatch        bool      `json:"name_match"`
	FaceMatch        bool      `json:"face_match"`
	UploadedImageKey string    `json:"uploaded_image_key"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewVerificationUseCase constructs a new use case instance. Zero-valued
// tunables fall back to defaults: names/, faces/, uploads/ prefixes,
// threshold 85, pool size 10.
func NewVerificationUseCase(store imagestore.Store, svc Services, repo ParticipationRepository, cache Cache, logger *zap.Logger, cfg Config) *VerificationUseCase {
	if cfg.NamesPrefix == "" {
		cfg.NamesPrefix = "names/"
	}
	if cfg.FacesPrefix == "" {
		cfg.FacesPrefix = "faces/"
	}
	if cfg.UploadPrefix == "" {
		cfg.UploadPrefix = "uploads/"
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 85.0
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}
	return &VerificationUseCase{
		store:  store,
		svc:    svc,
		repo:   repo,
		cache:  cache,
		logger: logger.Named("verification_usecase"),
		cfg:    cfg,
	}
}

// Verify runs the full pipeline for one request. Fatal pipeline errors are
// returned as errors; a persistence failure is reported inline on the
// response instead, since the decision itself is already authoritative.
func (uc *VerificationUseCase) Verify(ctx context.Context, req Request) (*Response, error) {
	if uc.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.RequestTimeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify_participation", requestID)
	start := time.Now()

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		observeVerification(outcomeRejected, time.Since(start))
		return nil, err
	}

	key, err := uc.ingestImage(ctx, req)
	if err != nil {
		opLogger.Error("image ingestion failed", zap.Error(err))
		observeVerification(outcomeRejected, time.Since(start))
		return nil, err
	}

	uploaded, err := uc.store.Get(ctx, key)
	if err != nil {
		opLogger.Error("uploaded image fetch failed", zap.String("key", key), zap.Error(err))
		observeVerification(outcomeRejected, time.Since(start))
		return nil, ErrInsufficientCorpus
	}

	corpus, err := uc.loadCorpus(ctx, opLogger)
	if err != nil {
		observeVerification(outcomeRejected, time.Since(start))
		return nil, err
	}

	ev, err := uc.collectEvidence(ctx, opLogger, uploaded, corpus)
	if err != nil {
		opLogger.Warn("evidence collection aborted", zap.Error(err))
		observeVerification(outcomeRejected, time.Since(start))
		return nil, err
	}

	dec := decide(req.Name, ev)
	opLogger.Info("participation decided",
		zap.Bool("participation", dec.Participation),
		zap.Bool("name_match", dec.NameMatch),
		zap.Bool("face_match", dec.FaceMatch),
		zap.Int("name_images", len(corpus.nameKeys)),
		zap.Int("face_images", len(corpus.faceKeys)))

	resp := &Response{
		Participation:    dec.Participation,
		Name:             req.Name,
		Email:            req.Email,
		ClassDate:        req.ClassDate,
		NameMatch:        dec.NameMatch,
		FaceMatch:        dec.FaceMatch,
		ExtractedNames:   ev.ExtractedNames,
		UploadedFaces:    ev.UploadedFaces,
		ReferenceFaces:   ev.ReferenceFaces,
		SimilarityScores: dec.SimilarityScores,
		RequestID:        requestID,
	}

	uc.persistRecord(ctx, opLogger, requestID, req, dec, key, resp)

	if dec.Participation {
		observeVerification(outcomeParticipated, time.Since(start))
	} else {
		observeVerification(outcomeNotParticipated, time.Since(start))
	}
	return resp, nil
}

// persistRecord appends the evidence record and caches the reduced form.
// Both writes are best-effort: a failure sets resp.Error and nothing else.
func (uc *VerificationUseCase) persistRecord(ctx context.Context, opLogger *zap.Logger, requestID string, req Request, dec Decision, imageKey string, resp *Response) {
	rec := &repository.ParticipationRecord{
		RequestID:        requestID,
		Name:             req.Name,
		Email:            req.Email,
		ClassDate:        req.ClassDate,
		Participation:    dec.Participation,
		NameMatch:        dec.NameMatch,
		FaceMatch:        dec.FaceMatch,
		UploadedImageKey: imageKey,
		CreatedAt:        time.Now().UTC(),
	}
	if err := uc.repo.Append(ctx, rec); err != nil {
		wrapped := logging.NewOperationError("usecase.append_record", requestID, err)
		opLogger.Error("failed to persist participation record", zap.Error(wrapped))
		msg := "failed to persist record"
		resp.Error = &msg
		return
	}

	cached := cachedRecord{
		RequestID:        requestID,
		Name:             rec.Name,
		Email:            rec.Email,
		ClassDate:        rec.ClassDate,
		Participation:    rec.Participation,
		NameMatch:        rec.NameMatch,
		FaceMatch:        rec.FaceMatch,
		UploadedImageKey: rec.UploadedImageKey,
		CreatedAt:        rec.CreatedAt,
	}
	serialized, err := json.Marshal(cached)
	if err != nil {
		opLogger.Warn("failed to serialize cached record", zap.Error(err))
		return
	}
	if err := uc.cache.Set(ctx, cacheKey(requestID), string(serialized), 5*time.Minute); err != nil {
		opLogger.Warn("failed to cache participation record", zap.Error(err))
	}
}

// GetResult retrieves a persisted verification outcome, cache first with a
// repository fallback.
func (uc *VerificationUseCase) GetResult(ctx context.Context, requestID string) (*repository.ParticipationRecord, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.get_result", requestID)

	if cached, err := uc.cache.Get(ctx, cacheKey(requestID)); err == nil {
		var payload cachedRecord
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			opLogger.Warn("failed to decode cached record", zap.Error(err))
		} else {
			return &repository.ParticipationRecord{
				RequestID:        payload.RequestID,
				Name:             payload.Name,
				Email:            payload.Email,
				ClassDate:        payload.ClassDate,
				Participation:    payload.Participation,
				NameMatch:        payload.NameMatch,
				FaceMatch:        payload.FaceMatch,
				UploadedImageKey: payload.UploadedImageKey,
				CreatedAt:        payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		opLogger.Warn("failed to read cache", zap.Error(err))
	}

	return uc.repo.FindByRequestID(ctx, requestID)
}

func cacheKey(requestID string) string {
	return "verification:" + requestID
}
