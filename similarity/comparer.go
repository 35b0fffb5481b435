package similarity

import (
	"fmt"
	"image"
	"math"
)

// Comparer turns images into feature vectors and scores their closeness.
// Scores are normalized to [0,1]; higher means more similar.
type Comparer interface {
	Name() string
	// CacheID qualifies the method with its parameters. Cached feature
	// vectors keyed by it are never reused across configurations that
	// produce differently shaped or scaled vectors.
	CacheID() string
	Featurize(img image.Image) ([]float32, error)
	Similarity(a, b []float32) float64
}

// NewComparer builds the comparer selected by cfg.Method. Comparers holding
// native resources implement io.Closer; Engine.Close releases them.
func NewComparer(cfg Config) (Comparer, error) {
	cfg.ApplyDefaults()
	switch cfg.Method {
	case MethodTemplate:
		return NewTemplateComparer(cfg.TargetSize), nil
	case MethodHistogram:
		return NewHistogramComparer(cfg.HistogramBins), nil
	case MethodPHash:
		return PHashComparer{}, nil
	case MethodMixed:
		return NewMixedComparer(
			WeightedPart{Comparer: PHashComparer{}, Len: pHashBits, Weight: cfg.PHashWeight},
			WeightedPart{Comparer: NewHistogramComparer(cfg.HistogramBins), Len: 3 * cfg.HistogramBins, Weight: 1 - cfg.PHashWeight},
		), nil
	case MethodDeep:
		return NewDeepComparer(cfg.Embedder)
	}
	return nil, fmt.Errorf("unknown comparison method %q", cfg.Method)
}

func cosine32(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
