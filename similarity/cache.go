package similarity

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// featureCache keeps feature vectors in memory and mirrors them to disk so
// repeated scans over an unchanged folder skip decoding entirely.
type featureCache struct {
	mu  sync.RWMutex
	m   map[string][]float32
	dir string
}

func newFeatureCache(dir string) *featureCache {
	return &featureCache{m: make(map[string][]float32), dir: dir}
}

func (c *featureCache) get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *featureCache) put(key string, v []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = v
}

func (c *featureCache) load(key string) ([]float32, bool, error) {
	if c.dir == "" {
		return nil, false, nil
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(data) < 4 {
		return nil, false, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, false, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, true, nil
}

func (c *featureCache) save(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	path := filepath.Join(c.dir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// cacheKey ties a cached vector to the parameterized method, the file
// identity and its last modification, so edited files and reconfigured
// comparers are re-featurized.
func cacheKey(cacheID, path string, info os.FileInfo) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d|%d", cacheID, path, info.Size(), info.ModTime().UnixNano())))
	return hex.EncodeToString(h[:])
}
