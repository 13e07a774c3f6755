package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// ingestImage resolves the request to a stored image key. Inline base64 data
// is decoded (after stripping any data-URI prefix up to the first comma) and
// written to the image store under a key derived from class date and name; a
// pre-existing key passes through unchanged.
func (uc *VerificationUseCase) ingestImage(ctx context.Context, req Request) (string, error) {
	if req.ImageData != "" {
		data := req.ImageData
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}

		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", &UploadError{Err: err}
		}

		key := uc.uploadKey(req.ClassDate, req.Name)
		if err := uc.store.Put(ctx, key, raw, "image/jpeg"); err != nil {
			return "", &UploadError{Err: err}
		}
		return key, nil
	}

	if req.ImageKey != "" {
		return req.ImageKey, nil
	}

	return "", ErrNoImage
}

func (uc *VerificationUseCase) uploadKey(classDate, name string) string {
	return fmt.Sprintf("%s%s/%s.jpg", uc.cfg.UploadPrefix, classDate, name)
}
