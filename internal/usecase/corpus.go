package usecase

import (
	"context"

	"go.uber.org/zap"
)

// referenceCorpus captures the key listings for both reference sets once per
// request. All positional response arrays index into these slices, so the
// listing order observed here is the order the caller sees.
type referenceCorpus struct {
	nameKeys []string
	faceKeys []string
}

// loadCorpus lists both reference prefixes. A listing failure or an empty
// listing for either prefix is a hard failure; individual object fetches are
// deferred to evidence collection, where they degrade softly.
func (uc *VerificationUseCase) loadCorpus(ctx context.Context, opLogger *zap.Logger) (*referenceCorpus, error) {
	nameKeys, err := uc.store.List(ctx, uc.cfg.NamesPrefix)
	if err != nil {
		opLogger.Error("failed to list name-list corpus", zap.Error(err), zap.String("prefix", uc.cfg.NamesPrefix))
		return nil, ErrInsufficientCorpus
	}

	faceKeys, err := uc.store.List(ctx, uc.cfg.FacesPrefix)
	if err != nil {
		opLogger.Error("failed to list face corpus", zap.Error(err), zap.String("prefix", uc.cfg.FacesPrefix))
		return nil, ErrInsufficientCorpus
	}

	if len(nameKeys) == 0 || len(faceKeys) == 0 {
		opLogger.Warn("reference corpus empty",
			zap.Int("name_keys", len(nameKeys)),
			zap.Int("face_keys", len(faceKeys)))
		return nil, ErrInsufficientCorpus
	}

	return &referenceCorpus{nameKeys: nameKeys, faceKeys: faceKeys}, nil
}
