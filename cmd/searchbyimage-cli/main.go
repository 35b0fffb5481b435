package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"searchbyimage/similarity"
)

type cliOptions struct {
	configPath string
	imagePath  string
	folderPath string
	outputDir  string
	method     string
	top        int
	overwrite  bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("searchbyimage-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("searchbyimage-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.imagePath, "image", "", "Modified image to search for")
	flag.StringVar(&opts.folderPath, "dir", "", "Folder of candidate images")
	flag.StringVar(&opts.outputDir, "out", "", "Folder the best match is copied into")
	flag.StringVar(&opts.method, "method", "", "Comparison method: template|histogram|phash|mixed|deep (default from config)")
	flag.IntVar(&opts.top, "top", 10, "Number of ranked rows to print")
	flag.BoolVar(&opts.overwrite, "overwrite", false, "Overwrite an existing file in the output folder instead of renaming")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --image FILE --dir FOLDER --out FOLDER [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.imagePath = strings.TrimSpace(opts.imagePath)
	opts.folderPath = strings.TrimSpace(opts.folderPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)
	opts.method = strings.TrimSpace(opts.method)

	if opts.imagePath == "" {
		flag.Usage()
		return opts, errors.New("missing required --image file")
	}
	if opts.folderPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --dir folder")
	}
	if opts.outputDir == "" {
		flag.Usage()
		return opts, errors.New("missing required --out folder")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := similarity.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.method != "" {
		cfg.Method = similarity.Method(opts.method)
	}

	comparer, err := similarity.NewComparer(cfg)
	if err != nil {
		return fmt.Errorf("init comparer: %w", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	engine, err := similarity.NewEngine(comparer, cfg, logger)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}
	defer engine.Close()

	req := similarity.Request{
		ImagePath:  opts.imagePath,
		FolderPath: opts.folderPath,
		OutputDir:  opts.outputDir,
	}

	searchOpts := similarity.SearchOptions{
		OnProgress: func(done, total int) {
			if done%50 == 0 || done == total {
				logger.Printf("processed %d/%d", done, total)
			}
		},
	}
	if opts.overwrite {
		searchOpts.OnConflict = func(string) similarity.ConflictDecision {
			return similarity.ConflictOverwrite
		}
	}

	res, err := engine.Search(context.Background(), req, searchOpts)
	if err != nil {
		return err
	}

	printRanking(res, opts.top)
	fmt.Printf("\nBest match: %s (score %.4f)\nCopied to:  %s\n", res.Best.Name, res.Best.Score, res.CopiedPath)
	return nil
}

func printRanking(res *similarity.Result, top int) {
	if top <= 0 || top > len(res.Matches) {
		top = len(res.Matches)
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Filename", "Score"})
	for i, m := range res.Matches[:top] {
		if m.Err != nil {
			t.AppendRow(table.Row{i + 1, m.Name, "error: " + m.Err.Error()})
			continue
		}
		t.AppendRow(table.Row{i + 1, m.Name, fmt.Sprintf("%.4f", m.Score)})
	}
	t.Render()
}
