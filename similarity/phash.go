package similarity

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

const pHashBits = 64

// PHashComparer scores images by the fraction of matching bits in their
// 64-bit perceptual hashes. Robust against scaling and mild recompression.
type PHashComparer struct{}

func (PHashComparer) Name() string { return string(MethodPHash) }

func (PHashComparer) CacheID() string { return fmt.Sprintf("phash-%d", pHashBits) }

// Featurize expands the perceptual hash into one value per bit so hashes can
// be cached and compared like any other feature vector.
func (PHashComparer) Featurize(img image.Image) ([]float32, error) {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}
	bits := make([]float32, pHashBits)
	v := hash.GetHash()
	for i := 0; i < pHashBits; i++ {
		if v&(1<<uint(i)) != 0 {
			bits[i] = 1
		}
	}
	return bits, nil
}

func (PHashComparer) Similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var matched int
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matched++
		}
	}
	return float64(matched) / float64(n)
}
