package vision

import "context"

// FaceDescriptor is the serializable projection of one detected face.
// Gender and Smile stay nil when the service did not report the attribute;
// nil is distinct from "" / false and survives JSON round-trips as null.
type FaceDescriptor struct {
	Confidence float64 `json:"confidence"`
	Gender     *string `json:"gender"`
	Smile      *bool   `json:"smile"`
}

// ComparisonMatch is one similarity match above the requested threshold.
type ComparisonMatch struct {
	Similarity float64 `json:"similarity"`
}

// Detector finds faces in a single image.
type Detector interface {
	DetectFaces(ctx context.Context, image []byte) ([]FaceDescriptor, error)
}

// Comparer ranks face matches between a source and a target image. Only
// matches at or above threshold are returned; an empty slice means no match.
type Comparer interface {
	CompareFaces(ctx context.Context, source, target []byte, threshold float64) ([]ComparisonMatch, error)
}

// Extractor returns the ordered text lines recognized in an image.
type Extractor interface {
	ExtractLines(ctx context.Context, image []byte) ([]string, error)
}
