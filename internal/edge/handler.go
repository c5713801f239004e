// Package edge serves the proxy from an AWS Lambda function URL. It mirrors
// the routes of the gin service and adds the CORS headers itself, since there
// is no middleware chain in front of it.
package edge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naseer2426/telegram-proxy/internal/relay"
)

const headerConnectingIP = "CF-Connecting-IP"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, X-OS-Version, X-Request-ID",
}

type Handler struct {
	relay          *relay.Service
	log            *zap.SugaredLogger
	maxUploadBytes int64
}

func NewHandler(svc *relay.Service, log *zap.SugaredLogger, maxUploadBytes int64) *Handler {
	return &Handler{relay: svc, log: log, maxUploadBytes: maxUploadBytes}
}

// Handle is the Lambda entry point.
func (h *Handler) Handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	method := event.RequestContext.HTTP.Method
	path := event.RawPath
	if path == "" {
		path = event.RequestContext.HTTP.Path
	}

	switch {
	case method == http.MethodOptions:
		return respond(http.StatusOK, "", nil), nil
	case path == "/" && method == http.MethodGet:
		return respond(http.StatusOK, relay.StatusText, map[string]string{"Content-Type": "text/plain"}), nil
	case path == "/sendMessage" && method == http.MethodPost:
		return h.sendMessage(ctx, event), nil
	case path == "/sendPhoto" && method == http.MethodPost:
		return h.sendPhoto(ctx, event), nil
	}
	return respond(http.StatusNotFound, "Not Found", nil), nil
}

func (h *Handler) sendMessage(ctx context.Context, event events.LambdaFunctionURLRequest) events.LambdaFunctionURLResponse {
	req := h.baseRequest(event)
	body, err := decodeBody(event)
	if err != nil {
		return respondJSON(relay.ErrorResult(http.StatusInternalServerError, err.Error()))
	}
	fields, err := relay.FieldsFromJSON(body)
	if err != nil {
		h.log.Infow("rejecting sendMessage body", "request_id", req.ID, "error", err)
		return respondJSON(relay.ErrorResult(http.StatusBadRequest, relay.ErrInvalidJSON.Error()))
	}
	req.Fields = fields
	return respondJSON(h.relay.SendMessage(ctx, req))
}

func (h *Handler) sendPhoto(ctx context.Context, event events.LambdaFunctionURLRequest) events.LambdaFunctionURLResponse {
	req := h.baseRequest(event)
	body, err := decodeBody(event)
	if err != nil {
		return respondJSON(relay.ErrorResult(http.StatusInternalServerError, err.Error()))
	}
	if h.maxUploadBytes > 0 && int64(len(body)) > h.maxUploadBytes {
		h.log.Infow("rejecting oversized upload", "request_id", req.ID, "bytes", len(body))
		return respondJSON(relay.ErrorResult(http.StatusRequestEntityTooLarge, relay.MsgPhotoTooLarge))
	}

	form, err := h.readForm(req.Header.Get("Content-Type"), body)
	if err != nil {
		h.log.Debugw("no multipart form", "request_id", req.ID, "error", err)
	} else {
		defer form.RemoveAll()
		fields, photo, err := relay.FromMultipartForm(form)
		if err != nil {
			h.log.Errorw("read photo upload failed", "request_id", req.ID, "error", err)
			return respondJSON(relay.ErrorResult(http.StatusInternalServerError, err.Error()))
		}
		req.Fields = fields
		req.Photo = photo
	}
	return respondJSON(h.relay.SendPhoto(ctx, req))
}

func (h *Handler) baseRequest(event events.LambdaFunctionURLRequest) *relay.Request {
	header := http.Header{}
	for k, v := range event.Headers {
		header.Set(k, v)
	}

	remote := header.Get(headerConnectingIP)
	if remote == "" {
		remote = event.RequestContext.HTTP.SourceIP
	}

	id := header.Get("X-Request-ID")
	if id == "" {
		id = event.RequestContext.RequestID
	}
	if id == "" {
		id = uuid.NewString()
	}

	return &relay.Request{
		ID:         id,
		Header:     header,
		RemoteAddr: remote,
		Fields:     map[string]string{},
	}
}

func (h *Handler) readForm(contentType string, body []byte) (*multipart.Form, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return nil, fmt.Errorf("not a multipart body: %s", mediaType)
	}
	return multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(h.maxUploadBytes)
}

func decodeBody(event events.LambdaFunctionURLRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return nil, errors.New("failed to decode base64 body")
	}
	return b, nil
}

func respond(status int, body string, extra map[string]string) events.LambdaFunctionURLResponse {
	headers := make(map[string]string, len(corsHeaders)+len(extra))
	for k, v := range corsHeaders {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return events.LambdaFunctionURLResponse{StatusCode: status, Headers: headers, Body: body}
}

func respondJSON(res relay.Result) events.LambdaFunctionURLResponse {
	b, err := json.Marshal(res.Body)
	if err != nil {
		res = relay.ErrorResult(http.StatusInternalServerError, "failed to encode response")
		b, _ = json.Marshal(res.Body)
	}
	return respond(res.Status, string(b), map[string]string{"Content-Type": "application/json"})
}
