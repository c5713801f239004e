package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultPhotoName        = "photo.jpg"
	DefaultPhotoContentType = "application/octet-stream"
)

var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

// APIError is returned when the Bot API answers with a non-2xx status. Body
// is the upstream body as JSON, ready to be embedded in another document.
type APIError struct {
	StatusCode  int
	Body        json.RawMessage
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram returned non-2xx status: %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram returned non-2xx status: %d", e.StatusCode)
}

type TelegramAPI struct {
	token  string
	client *resty.Client
}

func NewTelegramAPI(baseURL, token string, timeout time.Duration) *TelegramAPI {
	return &TelegramAPI{
		token:  token,
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

// SendMessage sends a text message to a Telegram chat and returns the raw
// Bot API response body.
func (t *TelegramAPI) SendMessage(ctx context.Context, requestID, chatID, text string) (json.RawMessage, error) {
	if t.token == "" {
		return nil, ErrMissingToken
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", requestID).
		SetBody(SendMessageRequest{ChatID: chatID, Text: text}).
		Post(t.methodPath("sendMessage"))
	if err != nil {
		return nil, fmt.Errorf("http call to telegram failed: %w", redact(err))
	}

	return t.result(resp)
}

// SendPhoto uploads photo to a Telegram chat with the given caption.
func (t *TelegramAPI) SendPhoto(ctx context.Context, requestID, chatID, caption string, photo InputFile) (json.RawMessage, error) {
	if t.token == "" {
		return nil, ErrMissingToken
	}

	name := photo.Name
	if name == "" {
		name = DefaultPhotoName
	}
	contentType := photo.ContentType
	if contentType == "" {
		contentType = DefaultPhotoContentType
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetMultipartFormData(map[string]string{
			"chat_id": chatID,
			"caption": caption,
		}).
		SetMultipartField("photo", name, contentType, bytes.NewReader(photo.Data)).
		Post(t.methodPath("sendPhoto"))
	if err != nil {
		return nil, fmt.Errorf("http call to telegram failed: %w", redact(err))
	}

	return t.result(resp)
}

func (t *TelegramAPI) methodPath(method string) string {
	return fmt.Sprintf("/bot%s/%s", t.token, method)
}

func (t *TelegramAPI) result(resp *resty.Response) (json.RawMessage, error) {
	body := asJSON(resp.Body())
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Body: body}
		var envelope APIResponse
		if json.Unmarshal(resp.Body(), &envelope) == nil {
			apiErr.Description = envelope.Description
		}
		return nil, apiErr
	}
	return body, nil
}

// asJSON returns b when it is a JSON document, otherwise b encoded as a JSON
// string, so upstream bodies can always be embedded verbatim.
func asJSON(b []byte) json.RawMessage {
	if len(b) > 0 && json.Valid(b) {
		return json.RawMessage(b)
	}
	encoded, _ := json.Marshal(string(b))
	return encoded
}

// redact drops the request URL from transport errors; it carries the bot token.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
