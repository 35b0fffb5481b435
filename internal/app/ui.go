package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"searchbyimage/similarity"
)

const logDebounceInterval = 150 * time.Millisecond

type tableColumn struct {
	Title  string
	Width  float32
	Render func(similarity.Match) string
}

type uiState struct {
	engine *similarity.Engine
	cfg    similarity.Config

	w fyne.Window

	imageLabel  *widget.Label
	folderLabel *widget.Label
	outputLabel *widget.Label

	imageBtn  *widget.Button
	folderBtn *widget.Button
	outputBtn *widget.Button
	searchBtn *widget.Button
	cancelBtn *widget.Button

	status    *widget.Label
	progress  *widget.ProgressBar
	bestLabel *widget.Label
	resTbl    *widget.Table
	columns   []tableColumn
	logView   *widget.Entry

	statusBind   binding.String
	progressBind binding.Float
	logBind      binding.String

	req    similarity.Request
	state  searchState
	cancel context.CancelFunc

	rows resultRows

	logMu       sync.Mutex
	logLines    []string
	logUpdateCh chan struct{}
}

func buildUI(a fyne.App, cfg similarity.Config) *uiState {
	u := &uiState{cfg: cfg, state: stateIdle}
	u.w = a.NewWindow("Search by Image")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.progressBind = binding.NewFloat()
	u.logBind = binding.NewString()
	u.startLogUpdater()

	u.imageLabel = widget.NewLabel("Modified image: not selected")
	u.folderLabel = widget.NewLabel("Search folder: not selected")
	u.outputLabel = widget.NewLabel("Output folder: not selected")
	u.imageLabel.Truncation = fyne.TextTruncateEllipsis
	u.folderLabel.Truncation = fyne.TextTruncateEllipsis
	u.outputLabel.Truncation = fyne.TextTruncateEllipsis

	u.imageBtn = widget.NewButtonWithIcon("Select Modified Image", theme.FileImageIcon(), func() { u.onSelectImage() })
	u.folderBtn = widget.NewButtonWithIcon("Select Search Folder", theme.FolderOpenIcon(), func() { u.onSelectFolder() })
	u.outputBtn = widget.NewButtonWithIcon("Select Output Folder", theme.FolderNewIcon(), func() { u.onSelectOutput() })
	u.searchBtn = widget.NewButtonWithIcon("Start Search", theme.SearchIcon(), func() { u.onSearch() })
	u.searchBtn.Disable()
	u.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), func() { u.onCancel() })
	u.cancelBtn.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()
	u.bestLabel = widget.NewLabel("Best match: none")
	u.bestLabel.Wrapping = fyne.TextWrapWord

	u.logView = widget.NewEntryWithData(u.logBind)
	u.logView.MultiLine = true
	u.logView.Wrapping = fyne.TextWrapWord
	u.logView.SetPlaceHolder("Activity log")
	u.logView.Disable()

	u.columns = []tableColumn{
		{Title: "Filename", Width: 340, Render: func(m similarity.Match) string { return m.Name }},
		{Title: "Similarity Score", Width: 160, Render: renderScore},
	}
	u.resTbl = widget.NewTable(
		func() (int, int) {
			return u.rows.count() + 1, len(u.columns)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				lbl.SetText(u.columns[id.Col].Title)
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				lbl.Alignment = fyne.TextAlignCenter
				return
			}
			lbl.Alignment = fyne.TextAlignLeading
			rowIdx := id.Row - 1
			m, ok := u.rows.at(rowIdx)
			if !ok || id.Col >= len(u.columns) {
				lbl.SetText("")
				return
			}
			lbl.TextStyle = fyne.TextStyle{Bold: u.rows.bold(rowIdx)}
			lbl.SetText(u.columns[id.Col].Render(m))
		},
	)
	for i, col := range u.columns {
		u.resTbl.SetColumnWidth(i, col.Width)
	}

	left := container.NewVBox(
		widget.NewLabelWithStyle("Inputs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(3, u.imageBtn, u.folderBtn, u.outputBtn),
		u.imageLabel,
		u.folderLabel,
		u.outputLabel,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, u.searchBtn, u.cancelBtn),
		u.progress,
		u.status,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Best match", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.bestLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewMax(u.logView),
	)

	split := container.NewHSplit(left, container.NewBorder(nil, nil, nil, nil, u.resTbl))
	split.Offset = 0.42
	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(980, 640))
	return u
}

func renderScore(m similarity.Match) string {
	if m.Err != nil {
		return fmt.Sprintf("error: %v", m.Err)
	}
	return fmt.Sprintf("%.4f", m.Score)
}

func (u *uiState) onSelectImage() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()
		path := rc.URI().Path()
		u.req.ImagePath = path
		u.cfg.LastImageDir = filepath.Dir(path)
		u.imageLabel.SetText("Modified image: " + path)
		u.updateSearchButton()
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter(similarity.SupportedExtensions))
	fd.Show()
}

func (u *uiState) onSelectFolder() {
	dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if uri == nil {
			return
		}
		u.req.FolderPath = uri.Path()
		u.cfg.LastFolderDir = uri.Path()
		u.folderLabel.SetText("Search folder: " + uri.Path())
		u.updateSearchButton()
	}, u.w).Show()
}

func (u *uiState) onSelectOutput() {
	dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if uri == nil {
			return
		}
		u.req.OutputDir = uri.Path()
		u.cfg.LastOutputDir = uri.Path()
		u.outputLabel.SetText("Output folder: " + uri.Path())
		u.updateSearchButton()
	}, u.w).Show()
}

func (u *uiState) updateSearchButton() {
	if u.state != stateRunning && u.req.ImagePath != "" && u.req.FolderPath != "" && u.req.OutputDir != "" {
		u.searchBtn.Enable()
	} else {
		u.searchBtn.Disable()
	}
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		if b {
			u.imageBtn.Disable()
			u.folderBtn.Disable()
			u.outputBtn.Disable()
			u.searchBtn.Disable()
			u.cancelBtn.Enable()
		} else {
			u.imageBtn.Enable()
			u.folderBtn.Enable()
			u.outputBtn.Enable()
			u.cancelBtn.Disable()
			u.updateSearchButton()
		}
	})
}

func (u *uiState) onSearch() {
	req := u.req
	if err := req.Validate(); err != nil {
		dialog.ShowError(err, u.w)
		return
	}
	u.state = stateRunning
	u.clearRows()
	u.bestLabel.SetText("Best match: none")
	_ = u.progressBind.Set(0)
	u.progress.Show()
	u.setStatus("Scanning...")
	u.setBusy(true)
	u.appendLog(fmt.Sprintf("search started: %s against %s", filepath.Base(req.ImagePath), req.FolderPath))

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel

	go func() {
		defer cancel()
		res, err := u.engine.Search(ctx, req, similarity.SearchOptions{
			OnProgress: func(done, total int) {
				u.setProgress(done, total)
				u.setStatus(fmt.Sprintf("Processed %d of %d", done, total))
			},
			OnMatch:    func(m similarity.Match) { u.addRow(m) },
			OnConflict: u.confirmOverwrite,
		})
		fyne.Do(func() { u.progress.Hide() })
		if err != nil {
			u.finishWithError(err)
		} else {
			u.finishWithResult(res)
		}
		// Queued after the state transitions so the gated Start button
		// sees the idle state when it re-enables.
		u.setBusy(false)
	}()
}

func (u *uiState) onCancel() {
	if u.cancel != nil {
		u.cancel()
	}
}

func (u *uiState) finishWithError(err error) {
	if errors.Is(err, similarity.ErrCancelled) {
		u.setState(stateCancelled)
		u.clearRows()
		u.setStatus("Cancelled")
		u.appendLog("search cancelled, partial results discarded")
	} else {
		u.setState(stateFailed)
		u.setStatus("Error")
		u.appendLog(fmt.Sprintf("error: %v", err))
		fyne.Do(func() {
			dialog.ShowError(err, u.w)
		})
	}
	u.setState(stateIdle)
}

func (u *uiState) finishWithResult(res *similarity.Result) {
	u.setState(stateCompleted)
	u.rows.setRanked(res.Matches)
	fyne.Do(func() {
		u.resTbl.Refresh()
		u.bestLabel.SetText(fmt.Sprintf("Best match: %s (score %.4f)\nCopied to: %s",
			res.Best.Name, res.Best.Score, res.CopiedPath))
	})
	u.setStatus(fmt.Sprintf("Done: %d candidates, %d skipped (%.1fs)", res.Total, res.Skipped, res.Elapsed.Seconds()))
	u.appendLog(fmt.Sprintf("best match %s (score %.4f) copied to %s", res.Best.Name, res.Best.Score, res.CopiedPath))
	u.setState(stateIdle)
}

// setState queues the transition so u.state is only ever touched on the main
// thread; fyne.Do preserves submission order.
func (u *uiState) setState(s searchState) {
	fyne.Do(func() { u.state = s })
}

// confirmOverwrite blocks the scanning goroutine until the user answers.
func (u *uiState) confirmOverwrite(dest string) similarity.ConflictDecision {
	answer := make(chan bool, 1)
	fyne.Do(func() {
		dialog.NewConfirm("File exists",
			fmt.Sprintf("%s already exists in the output folder.\nOverwrite it? Choosing No keeps both files.", filepath.Base(dest)),
			func(ok bool) { answer <- ok }, u.w).Show()
	})
	if <-answer {
		return similarity.ConflictOverwrite
	}
	return similarity.ConflictRename
}

func (u *uiState) addRow(m similarity.Match) {
	u.rows.add(m)
	fyne.Do(func() {
		u.resTbl.Refresh()
	})
}

func (u *uiState) clearRows() {
	u.rows.clear()
	fyne.Do(func() {
		u.resTbl.Refresh()
	})
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) setProgress(done, total int) {
	fyne.Do(func() {
		u.progress.Min = 0
		u.progress.Max = float64(total)
	})
	_ = u.progressBind.Set(float64(done))
}

func (u *uiState) appendLog(msg string) {
	u.pushLogLine(fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg))
}

func (u *uiState) pushLogLine(line string) {
	u.logMu.Lock()
	u.logLines = append(u.logLines, line)
	if len(u.logLines) > 200 {
		u.logLines = u.logLines[len(u.logLines)-200:]
	}
	u.logMu.Unlock()

	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

func (u *uiState) flushLog() {
	u.logMu.Lock()
	text := strings.Join(u.logLines, "\n")
	u.logMu.Unlock()
	_ = u.logBind.Set(text)
}

// logCapture feeds engine log output into the log pane line by line.
type logCapture struct {
	u *uiState
}

func (l logCapture) Write(p []byte) (int, error) {
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.u.pushLogLine(part)
	}
	return len(p), nil
}
