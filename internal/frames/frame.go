// Package frames holds the single-instant snapshots the browser streams in
// from its camera and the inbox the detector reads them from.
package frames

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultMIME is assumed when a frame arrives as raw bytes without a type.
const DefaultMIME = "image/jpeg"

// ErrInvalidDataURI is returned when a data URI cannot be decoded into a frame.
var ErrInvalidDataURI = errors.New("frames: invalid data uri")

// Frame is one immutable image snapshot. Data is shared by reference between
// the inbox and the request reading it, so it must not be modified after
// Publish.
type Frame struct {
	Data       []byte
	MIME       string
	CapturedAt time.Time
	// Seq is assigned by the inbox on Publish and increases monotonically.
	Seq uint64
}

// DataURI encodes the frame as a base64 data URI, the shape the
// classification service expects.
func (f Frame) DataURI() string {
	mime := f.MIME
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// FromBytes wraps raw image bytes, sniffing the content type.
func FromBytes(data []byte, capturedAt time.Time) Frame {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = DefaultMIME
	}
	return Frame{Data: data, MIME: mime, CapturedAt: capturedAt}
}

// ParseDataURI decodes a `data:<mime>;base64,<payload>` string. A bare base64
// payload without the data: prefix is accepted as JPEG.
func ParseDataURI(uri string, capturedAt time.Time) (Frame, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Frame{}, fmt.Errorf("%w: empty", ErrInvalidDataURI)
	}
	mime := DefaultMIME
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		header, body, ok := strings.Cut(uri, ",")
		if !ok {
			return Frame{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return Frame{}, fmt.Errorf("%w: not base64", ErrInvalidDataURI)
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Frame{}, fmt.Errorf("%w: empty image", ErrInvalidDataURI)
	}
	return Frame{Data: data, MIME: mime, CapturedAt: capturedAt}, nil
}
