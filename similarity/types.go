package similarity

import (
	"encoding/json"
	"time"
)

// Method selects the comparison algorithm used for a scan.
type Method string

const (
	// MethodTemplate scores normalized cross-correlation of grayscale thumbnails.
	MethodTemplate Method = "template"
	// MethodHistogram scores correlation of per-channel color histograms.
	MethodHistogram Method = "histogram"
	// MethodPHash scores the matching bit fraction of 64-bit perceptual hashes.
	MethodPHash Method = "phash"
	// MethodMixed blends the phash and histogram scores.
	MethodMixed Method = "mixed"
	// MethodDeep scores cosine similarity of ONNX model embeddings.
	MethodDeep Method = "deep"
)

const (
	DefaultTargetSize    = 224
	DefaultHistogramBins = 32
	DefaultPHashWeight   = 0.7
)

// SupportedExtensions lists the image file extensions a scan will consider.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// Match is one scored candidate. A non-nil Err marks a candidate that could
// not be read; error rows carry no score and never win a scan.
type Match struct {
	Path  string  `json:"path"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Err   error   `json:"-"`
}

// Request describes one search. It is validated before dispatch and not
// mutated afterwards.
type Request struct {
	ImagePath  string
	FolderPath string
	OutputDir  string
}

// Result is the outcome of a completed scan.
type Result struct {
	// Matches holds every examined candidate, ranked by descending score
	// with ties in first-seen order. Error rows sort to the end.
	Matches    []Match
	Best       Match
	CopiedPath string
	Total      int
	Skipped    int
	Elapsed    time.Duration
}

// EmbedderConfig wraps the optional ONNX image encoder settings.
type EmbedderConfig struct {
	OrtDLL     string `json:"ortDll"`
	ModelPath  string `json:"modelPath"`
	InputName  string `json:"inputName"`
	OutputName string `json:"outputName"`
	InputSize  int    `json:"inputSize"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Method        Method         `json:"method"`
	TargetSize    int            `json:"targetSize"`
	HistogramBins int            `json:"histogramBins"`
	PHashWeight   float64        `json:"phashWeight"`
	Embedder      EmbedderConfig `json:"embedder"`
	CacheDir      string         `json:"cacheDir"`
	LastImageDir  string         `json:"lastImageDir,omitempty"`
	LastFolderDir string         `json:"lastFolderDir,omitempty"`
	LastOutputDir string         `json:"lastOutputDir,omitempty"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	switch c.Method {
	case MethodTemplate, MethodHistogram, MethodPHash, MethodMixed, MethodDeep:
	default:
		c.Method = MethodTemplate
	}
	if c.TargetSize <= 0 {
		c.TargetSize = DefaultTargetSize
	}
	if c.HistogramBins <= 0 {
		c.HistogramBins = DefaultHistogramBins
	}
	if c.PHashWeight <= 0 || c.PHashWeight >= 1 {
		c.PHashWeight = DefaultPHashWeight
	}
	if c.Embedder.InputSize <= 0 {
		c.Embedder.InputSize = DefaultTargetSize
	}
	if c.CacheDir == "" {
		c.CacheDir = "./cache"
	}
}
