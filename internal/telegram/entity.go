package telegram

import "encoding/json"

// Telegram Bot API payloads

type SendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// APIResponse is the envelope every Bot API method answers with. Only used
// for logging; callers receive the raw body.
type APIResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// InputFile is a file uploaded as multipart form data.
type InputFile struct {
	Name        string
	ContentType string
	Data        []byte
}
