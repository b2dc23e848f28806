package release

import (
	"github.com/hbollon/go-edlib"
)

// MatchConfidence grades how closely a catalog title matches a search query.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// MatchResult is the best-scoring candidate title for a query.
type MatchResult struct {
	Title      string
	Score      float64 // Jaro-Winkler similarity, 0.0-1.0
	Confidence MatchConfidence
}

// MatchTitle scores candidate titles against a query with Jaro-Winkler
// similarity. It is diagnostic only: callers log the confidence of a catalog
// pick but never choose candidates by it.
func MatchTitle(query string, candidates ...string) MatchResult {
	best := MatchResult{Confidence: ConfidenceNone}
	cleanQuery := CleanTitle(query)
	if cleanQuery == "" {
		return best
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(cleanQuery, CleanTitle(candidate)))
		if score > best.Score {
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	}
	return best
}
