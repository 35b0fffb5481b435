package similarity

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// TemplateComparer scores images by normalized cross-correlation of grayscale
// thumbnails. Both images are scaled to the same square and mean-centered, so
// the correlation reduces to the cosine of the centered pixel vectors. The
// raw [-1,1] correlation is mapped to [0,1].
type TemplateComparer struct {
	size int
}

// NewTemplateComparer constructs a comparer with the given thumbnail size.
func NewTemplateComparer(size int) *TemplateComparer {
	if size <= 0 {
		size = DefaultTargetSize
	}
	return &TemplateComparer{size: size}
}

func (t *TemplateComparer) Name() string { return string(MethodTemplate) }

func (t *TemplateComparer) CacheID() string { return fmt.Sprintf("template-%d", t.size) }

// Featurize returns the mean-centered grayscale pixel vector of the scaled image.
func (t *TemplateComparer) Featurize(img image.Image) ([]float32, error) {
	scaled := resize.Resize(uint(t.size), uint(t.size), img, resize.Bilinear)
	b := scaled.Bounds()
	vec := make([]float32, 0, b.Dx()*b.Dy())
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(scaled.At(x, y))
			r, _, _, _ := gray.RGBA()
			v := float64(r) / 0xffff
			vec = append(vec, float32(v))
			sum += v
		}
	}
	if len(vec) == 0 {
		return nil, errors.New("image has no pixels")
	}
	mean := float32(sum / float64(len(vec)))
	for i := range vec {
		vec[i] -= mean
	}
	return vec, nil
}

func (t *TemplateComparer) Similarity(a, b []float32) float64 {
	return clamp01((cosine32(a, b) + 1) / 2)
}
