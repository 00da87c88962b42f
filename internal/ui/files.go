package ui

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"colorbook/internal/export"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

func setStatus(label *widget.Label, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	log.Printf("[UI] %s", text)
	if label != nil {
		label.SetText(text)
	}
}

// openImage asks for an image and loads it. With restore set the image is
// treated as previously saved work and becomes the color layer too.
func openImage(win fyne.Window, board *BoardWidget, restore bool, status *widget.Label) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if reader == nil {
			return
		}
		name := reader.URI().Name()
		if err := loadReader(board, reader, restore); err != nil {
			setStatus(status, "Could not open %s: %v", name, err)
			dialog.ShowError(err, win)
			return
		}
		size := board.Session().Size()
		setStatus(status, "Opened %s (%dx%d)", name, size.Width, size.Height)
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	d.Show()
}

func loadReader(board *BoardWidget, r io.ReadCloser, restore bool) error {
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("[UI] close: %v", err)
		}
	}()
	return board.Session().LoadImageData(r, restore)
}

// LoadFile loads the image at path into the board.
func LoadFile(board *BoardWidget, path string, restore bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return loadReader(board, f, restore)
}

// saveImage asks for a destination and writes the flattened page as PNG
// or PDF depending on ext.
func saveImage(win fyne.Window, board *BoardWidget, ext string, status *widget.Label) {
	img, err := board.Session().Export()
	if err != nil {
		dialog.ShowError(err, win)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return
		}
		defer func() {
			if err := writer.Close(); err != nil {
				log.Printf("[UI] close: %v", err)
			}
		}()

		name := writer.URI().Name()
		if ext == ".pdf" {
			err = export.PDF(writer, img, strings.TrimSuffix(name, ext))
		} else {
			err = export.PNG(writer, img)
		}
		if err != nil {
			setStatus(status, "Could not save %s: %v", name, err)
			dialog.ShowError(err, win)
			return
		}
		setStatus(status, "Saved %s", name)
	}, win)
	d.SetFileName("coloring" + ext)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
