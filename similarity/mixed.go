package similarity

import (
	"fmt"
	"image"
	"strings"
)

// WeightedPart pairs a comparer with its fixed feature length and blend weight.
type WeightedPart struct {
	Comparer Comparer
	Len      int
	Weight   float64
}

// MixedComparer blends the scores of several comparers. The feature vectors
// of the parts are packed end to end; Len of each part must be constant so
// cached vectors can be split back into segments.
type MixedComparer struct {
	parts []WeightedPart
}

// NewMixedComparer constructs a blended comparer from the given parts.
func NewMixedComparer(parts ...WeightedPart) *MixedComparer {
	return &MixedComparer{parts: parts}
}

func (m *MixedComparer) Name() string { return string(MethodMixed) }

func (m *MixedComparer) CacheID() string {
	ids := make([]string, len(m.parts))
	for i, p := range m.parts {
		ids[i] = fmt.Sprintf("%s:%g", p.Comparer.CacheID(), p.Weight)
	}
	return "mixed[" + strings.Join(ids, ",") + "]"
}

func (m *MixedComparer) Featurize(img image.Image) ([]float32, error) {
	var out []float32
	for _, p := range m.parts {
		vec, err := p.Comparer.Featurize(img)
		if err != nil {
			return nil, err
		}
		if len(vec) != p.Len {
			return nil, fmt.Errorf("%s: feature length %d, expected %d", p.Comparer.Name(), len(vec), p.Len)
		}
		out = append(out, vec...)
	}
	return out, nil
}

func (m *MixedComparer) Similarity(a, b []float32) float64 {
	var score, total float64
	off := 0
	for _, p := range m.parts {
		end := off + p.Len
		if end > len(a) || end > len(b) {
			break
		}
		score += p.Weight * p.Comparer.Similarity(a[off:end], b[off:end])
		total += p.Weight
		off = end
	}
	if total == 0 {
		return 0
	}
	return clamp01(score / total)
}
