package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/participation-check/internal/vision"
)

// faceComparison is the reduced comparison outcome for one reference face
// image. A zero value means "no match", whether the service found none or
// the call failed.
type faceComparison struct {
	Matched    bool
	Similarity float64
}

// Evidence is the raw per-item material collected before aggregation. Slices
// are index-aligned with the corpus listings captured at the start of the
// request; entries for failed items are empty, never missing.
type Evidence struct {
	ExtractedNames [][]string
	UploadedFaces  []vision.FaceDescriptor
	ReferenceFaces [][]vision.FaceDescriptor
	Comparisons    []faceComparison
}

// collectEvidence runs the three fan-outs concurrently under one bounded
// group: text extraction per name-list image, face detection on the upload,
// and detection+comparison per reference face image. Per-item failures
// degrade to empty evidence. The only hard failure here is zero faces across
// the upload and the entire face corpus.
func (uc *VerificationUseCase) collectEvidence(ctx context.Context, opLogger *zap.Logger, uploaded []byte, corpus *referenceCorpus) (*Evidence, error) {
	ev := &Evidence{
		ExtractedNames: make([][]string, len(corpus.nameKeys)),
		UploadedFaces:  []vision.FaceDescriptor{},
		ReferenceFaces: make([][]vision.FaceDescriptor, len(corpus.faceKeys)),
		Comparisons:    make([]faceComparison, len(corpus.faceKeys)),
	}

	var g errgroup.Group
	g.SetLimit(uc.cfg.WorkerPoolSize)

	for i, key := range corpus.nameKeys {
		i, key := i, key
		ev.ExtractedNames[i] = []string{}
		g.Go(func() error {
			image, err := uc.store.Get(ctx, key)
			if err != nil {
				opLogger.Warn("name-list image fetch failed", zap.String("key", key), zap.Error(err))
				return nil
			}
			lines, err := uc.svc.Extractor.ExtractLines(ctx, image)
			if err != nil {
				opLogger.Warn("text extraction failed", zap.String("key", key), zap.Error(err))
				return nil
			}
			if lines != nil {
				ev.ExtractedNames[i] = lines
			}
			return nil
		})
	}

	g.Go(func() error {
		faces, err := uc.svc.Detector.DetectFaces(ctx, uploaded)
		if err != nil {
			opLogger.Warn("face detection on upload failed", zap.Error(err))
			return nil
		}
		if faces != nil {
			ev.UploadedFaces = faces
		}
		return nil
	})

	for i, key := range corpus.faceKeys {
		i, key := i, key
		ev.ReferenceFaces[i] = []vision.FaceDescriptor{}
		g.Go(func() error {
			image, err := uc.store.Get(ctx, key)
			if err != nil {
				opLogger.Warn("reference face image fetch failed", zap.String("key", key), zap.Error(err))
				return nil
			}

			faces, err := uc.svc.Detector.DetectFaces(ctx, image)
			if err != nil {
				opLogger.Warn("face detection on reference failed", zap.String("key", key), zap.Error(err))
			} else if faces != nil {
				ev.ReferenceFaces[i] = faces
			}

			matches, err := uc.svc.Comparer.CompareFaces(ctx, uploaded, image, uc.cfg.SimilarityThreshold)
			if err != nil {
				opLogger.Warn("face comparison failed", zap.String("key", key), zap.Error(err))
				return nil
			}
			if len(matches) > 0 {
				ev.Comparisons[i] = faceComparison{Matched: true, Similarity: matches[0].Similarity}
			}
			return nil
		})
	}

	// Tasks swallow their own failures, so Wait only synchronizes.
	_ = g.Wait()

	// A dead request context means the in-flight calls were abandoned, not
	// that the corpus produced no evidence; truncated evidence must never
	// ship as an authoritative decision.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evidence collection abandoned: %w", err)
	}

	if len(ev.UploadedFaces) == 0 && allEmpty(ev.ReferenceFaces) {
		return nil, ErrNoFacesDetected
	}
	return ev, nil
}

func allEmpty(faces [][]vision.FaceDescriptor) bool {
	for _, f := range faces {
		if len(f) > 0 {
			return false
		}
	}
	return true
}
