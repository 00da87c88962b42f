package net

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	errMissingPayload = errors.New("missing payload")

	// ErrTooLarge is returned when a source exceeds the loader's size cap.
	ErrTooLarge = errors.New("image source too large")
	// ErrUnsupportedSource is returned for sources that are neither data
	// URLs nor http(s) URLs.
	ErrUnsupportedSource = errors.New("unsupported image source")
	// ErrBadDataURL is returned for malformed data URLs.
	ErrBadDataURL = errors.New("malformed data url")
)

// Default loader limits.
const (
	DefaultFetchTimeout   = 15 * time.Second
	DefaultMaxSourceBytes = 32 << 20
)

// Loader resolves the image sources clients send: data URLs inline, and
// http(s) URLs fetched with a timeout.
type Loader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewLoader returns a loader with the given timeout and size cap. Zero
// values select the defaults.
func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSourceBytes
	}
	return &Loader{Client: &http.Client{Timeout: timeout}, MaxBytes: maxBytes}
}

// messageSlack is room for the JSON envelope and data URL prefix around an
// encoded image.
const messageSlack = 64 << 10

// MessageLimit is the largest client message that can carry a data URL of
// at most MaxBytes.
func (l *Loader) MessageLimit() int64 {
	n := l.MaxBytes
	if n <= 0 {
		n = DefaultMaxSourceBytes
	}
	return int64(base64.StdEncoding.EncodedLen(int(n))) + messageSlack
}

// Fetch returns the bytes behind src.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(src, "data:"):
		_, data, err := ParseDataURL(src)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > l.MaxBytes {
			return nil, ErrTooLarge
		}
		return data, nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.get(ctx, src)
	}
	return nil, ErrUnsupportedSource
}

func (l *Loader) get(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ParseDataURL splits a "data:[mime][;base64],payload" URL.
func ParseDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some producers drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mime, []byte(text), nil
}
