package usecase

import "strings"

// Decision aggregates collected evidence into the participation outcome.
// Either signal alone is sufficient; there is no weighting between the two.
type Decision struct {
	Participation    bool
	NameMatch        bool
	FaceMatch        bool
	SimilarityScores []float64
}

// decide computes both sub-signals from the evidence. name must already be
// normalized. Similarity scores carry one entry per matching reference image,
// in corpus order.
func decide(name string, ev *Evidence) Decision {
	scores := []float64{}
	for _, cmp := range ev.Comparisons {
		if cmp.Matched {
			scores = append(scores, cmp.Similarity)
		}
	}
	faceMatch := len(scores) > 0

	nameMatch := false
	for _, lines := range ev.ExtractedNames {
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), name) {
				nameMatch = true
				break
			}
		}
		if nameMatch {
			break
		}
	}

	return Decision{
		Participation:    faceMatch || nameMatch,
		NameMatch:        nameMatch,
		FaceMatch:        faceMatch,
		SimilarityScores: scores,
	}
}
