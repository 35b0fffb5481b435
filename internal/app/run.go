package app

import (
	"fmt"
	"io"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"searchbyimage/similarity"
)

const fyneAppID = "studio.searchbyimage.desktop"

// Run initializes required resources and starts the desktop UI.
func Run() error {
	cfg, err := similarity.LoadConfig("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	comparer, err := similarity.NewComparer(cfg)
	if err != nil {
		return fmt.Errorf("init comparer: %w", err)
	}

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, cfg)

	logger := log.New(io.MultiWriter(os.Stdout, logCapture{u}), "", log.LstdFlags)
	engine, err := similarity.NewEngine(comparer, cfg, logger)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}
	defer engine.Close()
	u.engine = engine

	u.w.ShowAndRun()

	if err := similarity.SaveConfig("", u.cfg); err != nil {
		logger.Printf("save config: %v", err)
	}
	return nil
}
