package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"colorbook/internal/config"
	"colorbook/internal/state"
	"colorbook/internal/tool"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
	border   *canvas.Rectangle
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1
	s := &colorSwatch{Color: c, OnTapped: tapped, border: border}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))
	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// SetSelected draws a heavier border around the active swatch.
func (s *colorSwatch) SetSelected(on bool) {
	if on {
		s.border.StrokeColor = color.Gray{Y: 40}
		s.border.StrokeWidth = 3
	} else {
		s.border.StrokeColor = color.Gray{Y: 150}
		s.border.StrokeWidth = 1
	}
	s.border.Refresh()
}

// --- The Main Toolbar ---
func NewToolbar(board *BoardWidget, win fyne.Window, cfg config.Config, status *widget.Label) fyne.CanvasObject {
	sess := board.Session()
	toolLabel := widget.NewLabel(sess.Tool().Tool.String())
	selectTool := func(k tool.Kind) {
		sess.SetTool(k)
		toolLabel.SetText(k.String())
	}
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ColorPaletteIcon(), func() { selectTool(tool.Fill) }),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { selectTool(tool.Brush) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { selectTool(tool.Eraser) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomFitIcon(), sess.ResetZoom),
	)

	// --- Color Palette ---
	var swatches []*colorSwatch
	onColorTapped := func(c color.NRGBA) {
		sess.SetColor(c)
		for _, s := range swatches {
			s.SetSelected(s.Color == c)
		}
	}
	colorBox := container.NewHBox()
	for _, c := range cfg.Colors() {
		s := newColorSwatch(c, onColorTapped)
		s.SetSelected(c == sess.Tool().Color)
		swatches = append(swatches, s)
		colorBox.Add(s)
	}

	// --- Brush Size ---
	sizeLabel := widget.NewLabel(fmt.Sprintf("%dpx", sess.Tool().BrushSize))
	sizeSlider := widget.NewSlider(1, 60)
	sizeSlider.Step = 1
	sizeSlider.OnChanged = func(v float64) {
		sess.SetBrushSize(int(v))
		sizeLabel.SetText(fmt.Sprintf("%dpx", sess.Tool().BrushSize))
	}
	sizeSlider.SetValue(float64(sess.Tool().BrushSize))
	presets := container.NewHBox()
	for i, name := range []string{"S", "M", "L"} {
		size := cfg.Brush.Sizes()[i]
		presets.Add(widget.NewButton(name, func() { sizeSlider.SetValue(float64(size)) }))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider)

	// --- History ---
	undo := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { sess.Undo() })
	redo := widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { sess.Redo() })
	setHistory := func(h state.HistoryState) {
		setEnabled(undo, h.CanUndo)
		setEnabled(redo, h.CanRedo)
	}
	setHistory(sess.HistoryState())
	board.OnHistory = setHistory

	// --- Files ---
	files := container.NewHBox(
		widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() { openImage(win, board, false, status) }),
		widget.NewButtonWithIcon("Resume", theme.HistoryIcon(), func() { openImage(win, board, true, status) }),
		widget.NewButtonWithIcon("PNG", theme.DocumentSaveIcon(), func() { saveImage(win, board, ".png", status) }),
		widget.NewButtonWithIcon("PDF", theme.DocumentPrintIcon(), func() { saveImage(win, board, ".pdf", status) }),
	)

	// --- Assemble everything ---
	row1 := container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		toolLabel,
		widget.NewSeparator(),
		undo,
		redo,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		presets,
		sliderContainer,
		sizeLabel,
		layout.NewSpacer(),
		files,
	)
	row2 := container.NewHBox(widget.NewLabel("Color:"), colorBox, layout.NewSpacer())
	return container.NewVBox(row1, row2)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
