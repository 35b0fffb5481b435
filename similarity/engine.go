package similarity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	// ErrNoCandidates means the search folder holds no supported images.
	ErrNoCandidates = errors.New("no supported images found in the folder")
	// ErrNoValidMatches means every candidate failed to decode.
	ErrNoValidMatches = errors.New("no valid matches found")
	// ErrCancelled means the scan was aborted and partial results discarded.
	ErrCancelled = errors.New("search cancelled")
)

// ConflictDecision says what to do when the copy destination already exists.
type ConflictDecision int

const (
	// ConflictRename picks the next free name_N.ext destination.
	ConflictRename ConflictDecision = iota
	// ConflictOverwrite replaces the existing file.
	ConflictOverwrite
	// ConflictAbort fails the scan without copying.
	ConflictAbort
)

// SearchOptions carries the optional callbacks for a scan. All callbacks are
// invoked from the scanning goroutine.
type SearchOptions struct {
	// OnProgress reports candidates processed so far out of the total.
	OnProgress func(done, total int)
	// OnMatch delivers each candidate row as soon as it is scored.
	OnMatch func(Match)
	// OnConflict decides the fate of an existing destination file.
	// Nil means rename; overwriting requires an explicit decision.
	OnConflict func(dest string) ConflictDecision
}

// Engine runs similarity scans with a single comparer.
type Engine struct {
	comparer Comparer
	cache    *featureCache
	logger   *log.Logger
}

// NewEngine constructs an engine around the given comparer.
func NewEngine(comparer Comparer, cfg Config, logger *log.Logger) (*Engine, error) {
	if comparer == nil {
		return nil, errors.New("comparer is required")
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &Engine{
		comparer: comparer,
		cache:    newFeatureCache(cfg.CacheDir),
		logger:   logger,
	}, nil
}

// Close releases comparer resources.
func (e *Engine) Close() error {
	if c, ok := e.comparer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Validate checks a request before dispatch.
func (r Request) Validate() error {
	if r.ImagePath == "" {
		return errors.New("modified image is not selected")
	}
	if r.FolderPath == "" {
		return errors.New("search folder is not selected")
	}
	if r.OutputDir == "" {
		return errors.New("output folder is not selected")
	}
	if !SupportedExt(r.ImagePath) {
		return fmt.Errorf("unsupported image format: %s", filepath.Ext(r.ImagePath))
	}
	if _, err := os.Stat(r.ImagePath); err != nil {
		return fmt.Errorf("modified image: %w", err)
	}
	info, err := os.Stat(r.FolderPath)
	if err != nil {
		return fmt.Errorf("search folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("search folder %s is not a directory", r.FolderPath)
	}
	return nil
}

// ListCandidates returns the supported image paths in the folder, collated in
// a stable numeric-aware order, with the reference image itself excluded.
func (e *Engine) ListCandidates(folder, refPath string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !SupportedExt(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	coll := collate.New(language.Und, collate.Numeric)
	coll.SortStrings(names)

	refAbs, _ := filepath.Abs(refPath)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(folder, name)
		if abs, err := filepath.Abs(path); err == nil && abs == refAbs {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Search scans the folder of req, ranks every candidate against the modified
// image and copies the best match into the output folder. Candidates that
// fail to decode become error rows; cancellation discards partial results.
func (e *Engine) Search(ctx context.Context, req Request, opts SearchOptions) (*Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	refImg, err := LoadImage(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("load modified image: %w", err)
	}
	refVec, err := e.comparer.Featurize(refImg)
	if err != nil {
		return nil, fmt.Errorf("featurize modified image: %w", err)
	}

	candidates, err := e.ListCandidates(req.FolderPath, req.ImagePath)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	total := len(candidates)
	matches := make([]Match, 0, total)
	skipped := 0
	for i, path := range candidates {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		m := Match{Path: path, Name: filepath.Base(path)}
		vec, err := e.featurizePath(path)
		if err != nil {
			m.Err = err
			skipped++
			e.logf("skipping %s: %v", m.Name, err)
		} else {
			m.Score = e.comparer.Similarity(refVec, vec)
		}
		matches = append(matches, m)
		if opts.OnMatch != nil {
			opts.OnMatch(m)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total)
		}
	}

	ranked := RankMatches(matches)
	best, ok := BestMatch(ranked)
	if !ok {
		return nil, ErrNoValidMatches
	}

	copied, err := e.copyBestMatch(best.Path, req.OutputDir, opts.OnConflict)
	if err != nil {
		return nil, err
	}
	e.logf("best match %s (score %.4f) copied to %s", best.Name, best.Score, copied)
	return &Result{
		Matches:    ranked,
		Best:       best,
		CopiedPath: copied,
		Total:      total,
		Skipped:    skipped,
		Elapsed:    time.Since(start),
	}, nil
}

func (e *Engine) featurizePath(path string) ([]float32, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey(e.comparer.CacheID(), path, info)
	if vec, ok := e.cache.get(key); ok {
		return vec, nil
	}
	if vec, ok, err := e.cache.load(key); err != nil {
		e.logf("cache read error: %v", err)
	} else if ok {
		e.cache.put(key, vec)
		return vec, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	vec, err := e.comparer.Featurize(img)
	if err != nil {
		return nil, err
	}
	e.cache.put(key, vec)
	if err := e.cache.save(key, vec); err != nil {
		e.logf("cache save error: %v", err)
	}
	return vec, nil
}

func (e *Engine) copyBestMatch(src, outDir string, onConflict func(string) ConflictDecision) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	dest := filepath.Join(outDir, filepath.Base(src))
	if _, err := os.Stat(dest); err == nil {
		decision := ConflictRename
		if onConflict != nil {
			decision = onConflict(dest)
		}
		switch decision {
		case ConflictOverwrite:
		case ConflictAbort:
			return "", fmt.Errorf("copy aborted: %s already exists", dest)
		default:
			next, err := nextFreeName(dest)
			if err != nil {
				return "", fmt.Errorf("pick free destination: %w", err)
			}
			dest = next
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("check destination: %w", err)
	}
	if err := copyFile(src, dest); err != nil {
		return "", fmt.Errorf("copy best match: %w", err)
	}
	return dest, nil
}

func nextFreeName(dest string) (string, error) {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s_%d%s", base, i, ext)
		_, err := os.Stat(cand)
		if errors.Is(err, os.ErrNotExist) {
			return cand, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// copyFile writes through a temp file and preserves mode and modtime.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	tmp := dest + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	_ = os.Chtimes(dest, time.Now(), info.ModTime())
	return nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
