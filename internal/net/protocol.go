package net

import "encoding/json"

// Message types accepted from a client.
const (
	MsgSetImage       = "SET_IMAGE"
	MsgLoadSavedImage = "LOAD_SAVED_IMAGE"
	MsgSetColor       = "SET_COLOR"
	MsgSetTool        = "SET_TOOL"
	MsgSetBrushSize   = "SET_BRUSH_SIZE"
	MsgUndo           = "UNDO"
	MsgRedo           = "REDO"
	MsgResetZoom      = "RESET_ZOOM"
	MsgGetImageData   = "GET_IMAGE_DATA"
	MsgGetPDFData     = "GET_PDF_DATA"
	MsgResize         = "RESIZE"
	MsgPointerDown    = "POINTER_DOWN"
	MsgPointerMove    = "POINTER_MOVE"
	MsgPointerUp      = "POINTER_UP"
	MsgPointerCancel  = "POINTER_CANCEL"
)

// Message types sent to a client.
const (
	MsgReady       = "READY"
	MsgImageLoaded = "IMAGE_LOADED"
	MsgImageData   = "IMAGE_DATA"
	MsgPDFData     = "PDF_DATA"
	MsgFrame       = "FRAME"
	MsgHistory     = "HISTORY"
	MsgError       = "ERROR"
)

// Message is one JSON frame on the bridge in either direction.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a message, encoding payload as JSON. A nil payload is
// omitted.
func NewMessage(typ string, payload any) (Message, error) {
	m := Message{Type: typ}
	if payload == nil {
		return m, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return m, err
	}
	m.Payload = raw
	return m, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return errMissingPayload
	}
	return json.Unmarshal(m.Payload, v)
}

// PointerEvent is the payload of the POINTER_* messages, in viewport pixels.
type PointerEvent struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ResizeEvent is the payload of RESIZE.
type ResizeEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Ready is the payload of READY.
type Ready struct {
	SessionID string `json:"sessionId"`
}

// ErrorEvent is the payload of ERROR.
type ErrorEvent struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
