package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"colorbook/internal/export"
	"colorbook/internal/render"
	"colorbook/internal/state"
	"colorbook/internal/tool"
)

const writeWait = 10 * time.Second

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	// Engine options applied to every session.
	Engine []state.Option
	// Frames enables FRAME events carrying the composed surface.
	Frames    bool
	FrameRate int
	Loader    *Loader
	// Logger is handed to sessions; nil keeps them silent.
	Logger *slog.Logger
}

// Bridge serves coloring sessions over WebSocket. Every connection owns
// one session and one goroutine that runs its commands in order.
type Bridge struct {
	cfg      BridgeConfig
	upgrader websocket.Upgrader
}

// NewBridge returns a bridge with the given configuration.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Loader == nil {
		cfg.Loader = NewLoader(0, 0)
	}
	return &Bridge{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are local webviews and browsers on the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the bridge's HTTP routes.
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Serve accepts connections on ln until ctx is done.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: b.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	log.Printf("[BRIDGE] listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[BRIDGE] upgrade failed: %v", err)
		return
	}
	ws.SetReadLimit(b.cfg.Loader.MessageLimit())
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{
		bridge: b,
		ws:     ws,
		ctx:    ctx,
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
	opts := append([]state.Option{}, b.cfg.Engine...)
	opts = append(opts,
		state.WithPost(render.IntervalPost(render.FrameInterval(b.cfg.FrameRate), c.enqueue)),
		state.WithOnHistory(func(h state.HistoryState) { c.send(MsgHistory, h) }),
	)
	if b.cfg.Frames {
		opts = append(opts, state.WithOnFrame(c.sendFrame))
	}
	if b.cfg.Logger != nil {
		opts = append(opts, state.WithLogger(b.cfg.Logger))
	}
	c.sess = state.New(opts...)

	log.Printf("[BRIDGE] session %s opened from %s", c.sess.ID(), r.RemoteAddr)
	go c.read()
	c.send(MsgReady, Ready{SessionID: c.sess.ID()})
	c.loop()
	ws.Close()
	log.Printf("[BRIDGE] session %s closed", c.sess.ID())
}

// conn is one client. Only the loop goroutine touches sess or writes to ws.
type conn struct {
	bridge *Bridge
	ws     *websocket.Conn
	sess   *state.Session
	ctx    context.Context
	tasks  chan func()
	done   chan struct{}
}

func (c *conn) enqueue(f func()) {
	select {
	case c.tasks <- f:
	case <-c.done:
	}
}

func (c *conn) loop() {
	for {
		select {
		case f := <-c.tasks:
			f()
		case <-c.done:
			return
		}
	}
}

func (c *conn) read() {
	defer close(c.done)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				log.Printf("[BRIDGE] message over %d bytes, closing", c.bridge.cfg.Loader.MessageLimit())
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				log.Printf("[BRIDGE] read: %v", err)
			}
			return
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.enqueue(func() { c.fail("", fmt.Errorf("malformed message: %w", err)) })
			continue
		}
		c.enqueue(func() { c.handle(m) })
	}
}

func (c *conn) handle(m Message) {
	s := c.sess
	switch m.Type {
	case MsgSetImage, MsgLoadSavedImage:
		var src string
		if err := m.Decode(&src); err != nil {
			c.fail(m.Type, err)
			return
		}
		c.load(m.Type, src, m.Type == MsgLoadSavedImage)
	case MsgSetColor:
		var hex string
		if err := m.Decode(&hex); err != nil {
			c.fail(m.Type, err)
			return
		}
		if err := s.SetColorHex(hex); err != nil {
			c.fail(m.Type, err)
		}
	case MsgSetTool:
		var k tool.Kind
		if err := m.Decode(&k); err != nil {
			c.fail(m.Type, err)
			return
		}
		s.SetTool(k)
	case MsgSetBrushSize:
		var size float64
		if err := m.Decode(&size); err != nil {
			c.fail(m.Type, err)
			return
		}
		s.SetBrushSize(int(math.Round(size)))
	case MsgUndo:
		s.Undo()
	case MsgRedo:
		s.Redo()
	case MsgResetZoom:
		s.ResetZoom()
	case MsgGetImageData:
		img, err := s.Export()
		if err == nil {
			var url string
			if url, err = export.PNGDataURL(img); err == nil {
				c.send(MsgImageData, url)
				return
			}
		}
		c.fail(m.Type, err)
	case MsgGetPDFData:
		img, err := s.Export()
		if err == nil {
			var url string
			if url, err = export.PDFDataURL(img, "colorbook"); err == nil {
				c.send(MsgPDFData, url)
				return
			}
		}
		c.fail(m.Type, err)
	case MsgResize:
		var ev ResizeEvent
		if err := m.Decode(&ev); err != nil {
			c.fail(m.Type, err)
			return
		}
		s.SetViewportSize(ev.Width, ev.Height)
	case MsgPointerDown, MsgPointerMove, MsgPointerUp:
		var ev PointerEvent
		if err := m.Decode(&ev); err != nil {
			c.fail(m.Type, err)
			return
		}
		switch m.Type {
		case MsgPointerDown:
			s.PointerDown(ev.ID, ev.X, ev.Y)
		case MsgPointerMove:
			s.PointerMove(ev.ID, ev.X, ev.Y)
		default:
			s.PointerUp(ev.ID, ev.X, ev.Y)
		}
	case MsgPointerCancel:
		s.PointerCancel()
	default:
		c.fail(m.Type, fmt.Errorf("unknown message type %q", m.Type))
	}
}

// load fetches src off the loop and loads it on the loop.
func (c *conn) load(req, src string, restore bool) {
	go func() {
		data, err := c.bridge.cfg.Loader.Fetch(c.ctx, src)
		c.enqueue(func() {
			if err == nil {
				err = c.sess.LoadImageData(bytes.NewReader(data), restore)
			}
			if err != nil {
				c.fail(req, err)
				return
			}
			c.send(MsgImageLoaded, c.sess.Size())
		})
	}()
}

func (c *conn) sendFrame(frame *image.RGBA) {
	url, err := export.PNGDataURL(frame)
	if err != nil {
		log.Printf("[BRIDGE] frame: %v", err)
		return
	}
	c.send(MsgFrame, url)
}

func (c *conn) fail(req string, err error) {
	c.send(MsgError, ErrorEvent{Message: err.Error(), Request: req})
}

func (c *conn) send(typ string, payload any) {
	m, err := NewMessage(typ, payload)
	if err != nil {
		log.Printf("[BRIDGE] encode %s: %v", typ, err)
		return
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(m); err != nil {
		log.Printf("[BRIDGE] write %s: %v", typ, err)
		c.ws.Close()
	}
}
