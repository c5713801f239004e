package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"github.com/naseer2426/telegram-proxy/internal/telegram"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderOSVersion    = "X-OS-Version"

	FieldText      = "text"
	FieldCaption   = "caption"
	FieldOSVersion = "osVersion"
	FieldPhoto     = "photo"

	UnknownOS = "Unknown OS"
)

var ErrInvalidJSON = errors.New("invalid JSON body")

// Request is an inbound call normalized away from the host runtime. Fields
// holds the scalar body values (JSON keys or multipart text fields).
type Request struct {
	ID         string
	Header     http.Header
	RemoteAddr string
	Fields     map[string]string
	Photo      *telegram.InputFile
}

// ClientIP prefers the first X-Forwarded-For entry and falls back to the
// connection address without its port.
func (r *Request) ClientIP() string {
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// OSVersion reads the OS hint from the header, then the body, then gives up.
func (r *Request) OSVersion() string {
	if v := r.Header.Get(HeaderOSVersion); v != "" {
		return v
	}
	if v := r.Fields[FieldOSVersion]; v != "" {
		return v
	}
	return UnknownOS
}

// FieldsFromJSON flattens the scalar members of a JSON object body. An empty
// body is an empty object.
func FieldsFromJSON(raw []byte) (map[string]string, error) {
	fields := map[string]string{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}

	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
	}
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			if val {
				fields[k] = "true"
			}
		}
	}
	return fields, nil
}

// FromMultipartForm extracts the text fields and the photo file, if any.
func FromMultipartForm(form *multipart.Form) (map[string]string, *telegram.InputFile, error) {
	fields := map[string]string{}
	if form == nil {
		return fields, nil, nil
	}
	for k, v := range form.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	files := form.File[FieldPhoto]
	if len(files) == 0 {
		return fields, nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open uploaded photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read uploaded photo: %w", err)
	}
	return fields, &telegram.InputFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
