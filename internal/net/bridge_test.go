package net

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorbook/internal/export"
	"colorbook/internal/state"
)

func framedPNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	black := color.NRGBA{A: 255}
	for i := 24; i <= 75; i++ {
		img.SetNRGBA(i, 24, black)
		img.SetNRGBA(i, 75, black)
		img.SetNRGBA(24, i, black)
		img.SetNRGBA(75, i, black)
	}
	url, err := export.PNGDataURL(img)
	require.NoError(t, err)
	return url
}

func dial(t *testing.T, cfg BridgeConfig) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewBridge(cfg).Handler())
	t.Cleanup(srv.Close)
	return dialURL(t, srv.URL)
}

func dialURL(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	m := next(t, ws, MsgReady)
	var ready Ready
	require.NoError(t, m.Decode(&ready))
	assert.NotEmpty(t, ready.SessionID)
	return ws
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	m, err := NewMessage(typ, payload)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(m))
}

// next reads until a message of type typ arrives.
func next(t *testing.T, ws *websocket.Conn, typ string) Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m Message
		require.NoError(t, ws.ReadJSON(&m))
		if m.Type == typ {
			return m
		}
	}
}

func decodePNG(t *testing.T, m Message) image.Image {
	t.Helper()
	var url string
	require.NoError(t, m.Decode(&url))
	_, data, err := ParseDataURL(url)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestBridgeFillAndExport(t *testing.T) {
	ws := dial(t, BridgeConfig{})

	send(t, ws, MsgResize, ResizeEvent{Width: 100, Height: 100})
	send(t, ws, MsgSetImage, framedPNG(t))
	var size state.Size
	require.NoError(t, next(t, ws, MsgImageLoaded).Decode(&size))
	assert.Equal(t, state.Size{Width: 100, Height: 100}, size)

	send(t, ws, MsgSetColor, "#FF0000")
	send(t, ws, MsgSetTool, "fill")
	send(t, ws, MsgPointerDown, PointerEvent{ID: 1, X: 50, Y: 50})
	send(t, ws, MsgPointerUp, PointerEvent{ID: 1, X: 50, Y: 50})

	var h state.HistoryState
	require.NoError(t, next(t, ws, MsgHistory).Decode(&h))
	assert.True(t, h.CanUndo)

	send(t, ws, MsgGetImageData, nil)
	img := decodePNG(t, next(t, ws, MsgImageData))
	assert.Equal(t, color.NRGBAModel.Convert(color.NRGBA{R: 255, A: 255}), color.NRGBAModel.Convert(img.At(50, 50)))
	assert.Equal(t, color.NRGBAModel.Convert(color.NRGBA{A: 255}), color.NRGBAModel.Convert(img.At(24, 50)))

	send(t, ws, MsgUndo, nil)
	require.NoError(t, next(t, ws, MsgHistory).Decode(&h))
	assert.False(t, h.CanUndo)
	assert.True(t, h.CanRedo)

	send(t, ws, MsgGetPDFData, nil)
	var pdf string
	require.NoError(t, next(t, ws, MsgPDFData).Decode(&pdf))
	assert.True(t, strings.HasPrefix(pdf, "data:application/pdf;base64,"))
}

func TestBridgeReportsErrorsAndStaysOpen(t *testing.T) {
	ws := dial(t, BridgeConfig{})

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var e ErrorEvent
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Contains(t, e.Message, "malformed")

	send(t, ws, "PAINT_EVERYTHING", nil)
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Equal(t, "PAINT_EVERYTHING", e.Request)

	send(t, ws, MsgSetTool, "crayon")
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Equal(t, MsgSetTool, e.Request)

	send(t, ws, MsgSetColor, "nope")
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Equal(t, MsgSetColor, e.Request)

	send(t, ws, MsgGetImageData, nil)
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Equal(t, state.ErrNotLoaded.Error(), e.Message)

	send(t, ws, MsgSetImage, "data:image/png;base64,AAAA")
	require.NoError(t, next(t, ws, MsgError).Decode(&e))
	assert.Equal(t, MsgSetImage, e.Request)
}

func TestBridgeFrames(t *testing.T) {
	ws := dial(t, BridgeConfig{Frames: true, FrameRate: 200})

	send(t, ws, MsgResize, ResizeEvent{Width: 40, Height: 30})
	send(t, ws, MsgSetImage, framedPNG(t))
	img := decodePNG(t, next(t, ws, MsgFrame))
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestMessageDecodeWithoutPayload(t *testing.T) {
	var v string
	assert.Error(t, Message{Type: MsgSetColor}.Decode(&v))

	m, err := NewMessage(MsgUndo, nil)
	require.NoError(t, err)
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"UNDO"}`, string(raw))
}

func TestOversizedMessageClosesOnlyItsConnection(t *testing.T) {
	loader := NewLoader(0, 1024)
	srv := httptest.NewServer(NewBridge(BridgeConfig{Loader: loader}).Handler())
	t.Cleanup(srv.Close)

	ws := dialURL(t, srv.URL)
	m, err := NewMessage(MsgSetImage, "data:image/png;base64,"+strings.Repeat("A", int(loader.MessageLimit())))
	require.NoError(t, err)
	// the server may drop the socket before the write finishes
	_ = ws.WriteJSON(m)
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, ws.SetReadDeadline(deadline))
	for err == nil {
		_, _, err = ws.ReadMessage()
	}
	assert.True(t, time.Now().Before(deadline), "connection stayed open: %v", err)

	other := dialURL(t, srv.URL)
	send(t, other, MsgSetImage, framedPNG(t))
	var size state.Size
	require.NoError(t, next(t, other, MsgImageLoaded).Decode(&size))
	assert.Equal(t, state.Size{Width: 100, Height: 100}, size)
}
