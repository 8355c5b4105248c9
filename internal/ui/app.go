package ui

import (
	"context"
	"log"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/export"
	boardsync "github.com/toanminhbui/viral/internal/sync"
)

const prefKeyUsername = "username"

// Config carries everything main resolved before the UI starts.
type Config struct {
	Store  *board.Store
	Remote boardsync.Remote
	// Name is the participant name; empty means ask on startup
	// (falling back to the remembered one first).
	Name string
	Poll time.Duration
}

// RunApp assembles the window and runs the session until the window
// closes. The sync engine starts once the participant has a name.
func RunApp(cfg Config) {
	a := app.NewWithID("com.toanminhbui.viral")
	w := a.NewWindow("viral board")
	w.Resize(fyne.NewSize(1024, 768))

	b := NewBoardWidget(cfg.Store)
	users := NewUserPanel()
	status := widget.NewLabel("connecting...")

	ctx, cancel := context.WithCancel(context.Background())
	w.SetOnClosed(cancel)

	start := func(name string) {
		b.SetAuthor(name)
		a.Preferences().SetString(prefKeyUsername, name)

		engine := boardsync.New(cfg.Remote, cfg.Store, name)
		if cfg.Poll > 0 {
			engine.PollInterval = cfg.Poll
		}
		// Engine callbacks arrive from network goroutines; hop onto
		// the UI thread before touching widgets.
		engine.OnFullRedraw = func() {
			fyne.Do(b.FullRedraw)
		}
		engine.OnElement = func(el board.Element) {
			fyne.Do(func() { b.ApplyRemote(el) })
		}
		engine.OnStatus = func(s string) {
			fyne.Do(func() { status.SetText(s) })
		}
		engine.OnUsers = func(known, active []string) {
			fyne.Do(func() { users.SetUsers(known, active) })
		}
		b.OnNewElement = func(el board.Element) {
			engine.Persist(ctx, el)
		}
		b.OnUpdateLabel = func(el board.Element) {
			engine.PersistUpdate(ctx, el)
		}

		go engine.Run(ctx)
		status.SetText("drawing as " + name)
	}

	w.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("File",
		fyne.NewMenuItem("Export PDF...", func() {
			dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil || writer == nil {
					return
				}
				defer writer.Close()
				if err := export.PDF(writer, cfg.Store.Snapshot()); err != nil {
					log.Printf("[EXPORT] pdf export failed: %v", err)
					status.SetText("export failed")
					return
				}
				status.SetText("exported " + writer.URI().Name())
			}, w)
		}),
	)))

	content := container.NewBorder(NewToolbar(b), status, nil, users.Object(), b)
	w.SetContent(content)

	name := cfg.Name
	if name == "" {
		name = a.Preferences().String(prefKeyUsername)
	}
	if name != "" {
		start(name)
	} else {
		entry := widget.NewEntry()
		entry.SetPlaceHolder("your name")
		d := dialog.NewForm("Join the board", "Join", "", []*widget.FormItem{
			widget.NewFormItem("Name", entry),
		}, func(ok bool) {
			n := strings.TrimSpace(entry.Text)
			if !ok || n == "" {
				n = "anonymous"
			}
			start(n)
		}, w)
		d.Resize(fyne.NewSize(300, 150))
		d.Show()
	}

	w.ShowAndRun()
}
