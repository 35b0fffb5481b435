package similarity

import (
	"errors"
	"fmt"
	"image"
)

// HistogramComparer scores images by the correlation of their per-channel
// color histograms. Histograms are normalized by pixel count so images of
// different sizes compare directly.
type HistogramComparer struct {
	bins int
}

// NewHistogramComparer constructs a comparer with the given bin count per channel.
func NewHistogramComparer(bins int) *HistogramComparer {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	return &HistogramComparer{bins: bins}
}

func (h *HistogramComparer) Name() string { return string(MethodHistogram) }

func (h *HistogramComparer) CacheID() string { return fmt.Sprintf("histogram-%d", h.bins) }

// Featurize returns the R, G and B histograms packed end to end.
func (h *HistogramComparer) Featurize(img image.Image) ([]float32, error) {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return nil, errors.New("image has no pixels")
	}
	vec := make([]float32, 3*h.bins)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			vec[h.binIdx(r)]++
			vec[h.bins+h.binIdx(g)]++
			vec[2*h.bins+h.binIdx(b)]++
		}
	}
	norm := float32(pixels)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Similarity is the cosine of the histogram vectors; histograms are
// non-negative so the result is already in [0,1].
func (h *HistogramComparer) Similarity(a, b []float32) float64 {
	return clamp01(cosine32(a, b))
}

func (h *HistogramComparer) binIdx(component uint32) int {
	idx := int(float64(h.bins) * float64(component) / 0xffff)
	if idx >= h.bins {
		idx = h.bins - 1
	}
	return idx
}
