package usecase

import (
	"strings"

	"github.com/example/participation-check/internal/vision"
)

// Request is the inbound verification payload. Exactly one of ImageData and
// ImageKey is expected; when both are set the inline data wins.
type Request struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassDate string `json:"class_date"`
	ImageData string `json:"uploaded_image_data"`
	ImageKey  string `json:"uploaded_image_key"`
}

// Response carries the participation decision plus the full evidence that
// produced it. Positional arrays align with the corpus listing order.
type Response struct {
	Participation    bool                      `json:"participation"`
	Name             string                    `json:"name"`
	Email            string                    `json:"email"`
	ClassDate        string                    `json:"class_date"`
	NameMatch        bool                      `json:"name_match"`
	FaceMatch        bool                      `json:"face_match"`
	ExtractedNames   [][]string                `json:"extracted_names"`
	UploadedFaces    []vision.FaceDescriptor   `json:"uploaded_faces"`
	ReferenceFaces   [][]vision.FaceDescriptor `json:"reference_faces"`
	SimilarityScores []float64                 `json:"similarity_scores"`
	Error            *string                   `json:"error"`
	RequestID        string                    `json:"request_id,omitempty"`
}

// NormalizeName trims surrounding whitespace and lowercases. Idempotent.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize returns a copy of the request with the name normalized.
func (r Request) Normalize() Request {
	r.Name = NormalizeName(r.Name)
	return r
}

// Validate rejects requests missing any required identity field. Email
// syntax and date format are deliberately not checked.
func (r Request) Validate() error {
	if r.Name == "" || r.Email == "" || r.ClassDate == "" {
		return ErrMissingFields
	}
	return nil
}

// ErrorEnvelope shapes the uniform failure payload: participation false,
// empty evidence arrays, and the error message inline. Identity fields are
// echoed back normalized, empty when absent.
func ErrorEnvelope(req Request, err error) *Response {
	msg := err.Error()
	return &Response{
		Participation:    false,
		Name:             NormalizeName(req.Name),
		Email:            req.Email,
		ClassDate:        req.ClassDate,
		NameMatch:        false,
		FaceMatch:        false,
		ExtractedNames:   [][]string{},
		UploadedFaces:    []vision.FaceDescriptor{},
		ReferenceFaces:   [][]vision.FaceDescriptor{},
		SimilarityScores: []float64{},
		Error:            &msg,
	}
}
