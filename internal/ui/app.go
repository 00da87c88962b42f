package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"colorbook/internal/config"
)

// RunApp opens the coloring window and blocks until it is closed. If
// imagePath is set it is loaded before the window shows.
func RunApp(cfg config.Config, imagePath string) error {
	myApp := app.NewWithID("io.colorbook.desktop")
	myWindow := myApp.NewWindow("ColorBook")
	myWindow.Resize(fyne.NewSize(1024, 768))

	status := widget.NewLabel("Open a line art image to start coloring")
	board := NewBoardWidget(cfg.Engine.FrameRate, cfg.EngineOptions()...)
	sess := board.Session()
	sess.SetBrushSize(cfg.Brush.DefaultSize())
	if colors := cfg.Colors(); len(colors) > 0 {
		sess.SetColor(colors[0])
	}

	toolbar := NewToolbar(board, myWindow, cfg, status)
	content := container.NewBorder(toolbar, status, nil, nil, board)
	myWindow.SetContent(content)
	addShortcuts(myWindow, board)

	if imagePath != "" {
		if err := LoadFile(board, imagePath, false); err != nil {
			return fmt.Errorf("open %s: %w", imagePath, err)
		}
		setStatus(status, "Opened %s", imagePath)
	}

	myWindow.ShowAndRun()
	return nil
}

func addShortcuts(w fyne.Window, board *BoardWidget) {
	sess := board.Session()
	add := func(key fyne.KeyName, mod fyne.KeyModifier, f func()) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { f() })
	}
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault, func() { sess.Undo() })
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, func() { sess.Redo() })
	add(fyne.KeyY, fyne.KeyModifierShortcutDefault, func() { sess.Redo() })
	add(fyne.Key0, fyne.KeyModifierShortcutDefault, sess.ResetZoom)
}
