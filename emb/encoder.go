// Package emb wraps ONNX Runtime vision models that map images to embedding
// vectors.
package emb

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the runtime library and the model.
type Config struct {
	OrtDLL     string
	ModelPath  string
	InputName  string
	OutputName string
	InputSize  int
}

// ImageNet channel statistics used by most pretrained vision models.
var (
	chanMean = [3]float32{0.485, 0.456, 0.406}
	chanStd  = [3]float32{0.229, 0.224, 0.225}
)

// Encoder produces embedding vectors for images via an ONNX model.
type Encoder struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	cfg     Config
}

// Init loads the runtime library and the model.
func (e *Encoder) Init(cfg Config) error {
	if cfg.ModelPath == "" {
		return errors.New("model path is required")
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = 224
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if !ort.IsInitialized() {
		if cfg.OrtDLL != "" {
			ort.SetSharedLibraryPath(cfg.OrtDLL)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("init onnxruntime: %w", err)
		}
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		return fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	e.mu.Lock()
	e.session = session
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// Close releases the session.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
}

// EncodeImage runs the model over one image and returns its embedding.
func (e *Encoder) EncodeImage(img image.Image) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, errors.New("encoder is not initialized")
	}
	size := e.cfg.InputSize
	data := chwTensor(img, size)
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, errors.New("model output is not a float32 tensor")
	}
	defer out.Destroy()
	return append([]float32(nil), out.GetData()...), nil
}

// chwTensor converts an image into a normalized 1x3xNxN float32 tensor.
func chwTensor(img image.Image, size int) []float32 {
	scaled := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	b := scaled.Bounds()
	n := size * size
	data := make([]float32, 3*n)
	i := 0
	for y := b.Min.Y; y < b.Max.Y && i < n; y++ {
		for x := b.Min.X; x < b.Max.X && i < n; x++ {
			r, g, bl, _ := scaled.At(x, y).RGBA()
			data[i] = (float32(r)/0xffff - chanMean[0]) / chanStd[0]
			data[n+i] = (float32(g)/0xffff - chanMean[1]) / chanStd[1]
			data[2*n+i] = (float32(bl)/0xffff - chanMean[2]) / chanStd[2]
			i++
		}
	}
	return data
}
