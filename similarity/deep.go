package similarity

import (
	"fmt"
	"image"

	"searchbyimage/emb"
)

// DeepComparer scores images by the cosine similarity of embeddings produced
// by an ONNX vision model. Only available when a model path is configured.
type DeepComparer struct {
	enc     *emb.Encoder
	cacheID string
}

// NewDeepComparer initializes the ONNX encoder.
func NewDeepComparer(cfg EmbedderConfig) (*DeepComparer, error) {
	enc := &emb.Encoder{}
	if err := enc.Init(emb.Config{
		OrtDLL:     cfg.OrtDLL,
		ModelPath:  cfg.ModelPath,
		InputName:  cfg.InputName,
		OutputName: cfg.OutputName,
		InputSize:  cfg.InputSize,
	}); err != nil {
		return nil, err
	}
	return &DeepComparer{
		enc:     enc,
		cacheID: fmt.Sprintf("deep|%s|%d", cfg.ModelPath, cfg.InputSize),
	}, nil
}

func (d *DeepComparer) Name() string { return string(MethodDeep) }

func (d *DeepComparer) CacheID() string { return d.cacheID }

func (d *DeepComparer) Featurize(img image.Image) ([]float32, error) {
	return d.enc.EncodeImage(img)
}

func (d *DeepComparer) Similarity(a, b []float32) float64 {
	return clamp01((cosine32(a, b) + 1) / 2)
}

// Close releases the ONNX session.
func (d *DeepComparer) Close() error {
	d.enc.Close()
	return nil
}
