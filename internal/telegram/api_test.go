package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendMessage_Success(t *testing.T) {
	var gotPath, gotReqID string
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}))
	defer srv.Close()

	api := NewTelegramAPI(srv.URL, "123:abc", time.Second)
	body, err := api.SendMessage(context.Background(), "req-9", "-100", "hi")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotReqID != "req-9" {
		t.Errorf("expected request id to be forwarded, got %q", gotReqID)
	}
	if got.ChatID != "-100" || got.Text != "hi" {
		t.Errorf("unexpected payload %+v", got)
	}
	if string(body) != `{"ok":true,"result":{"message_id":7}}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	api := NewTelegramAPI(srv.URL, "t", time.Second)
	_, err := api.SendMessage(context.Background(), "", "1", "x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(string(apiErr.Body), "bot was blocked") {
		t.Errorf("expected upstream body, got %s", apiErr.Body)
	}
	if apiErr.Description != "Forbidden: bot was blocked by the user" {
		t.Errorf("unexpected description %q", apiErr.Description)
	}
}

func TestSendMessage_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	api := NewTelegramAPI(srv.URL, "t", time.Second)
	_, err := api.SendMessage(context.Background(), "", "1", "x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if string(apiErr.Body) != `"bad gateway"` {
		t.Errorf("expected body as JSON string, got %s", apiErr.Body)
	}
}

func TestSendMessage_MissingToken(t *testing.T) {
	api := NewTelegramAPI("http://unused", "", time.Second)
	if _, err := api.SendMessage(context.Background(), "", "1", "x"); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestSendMessage_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	api := NewTelegramAPI(base, "secret-token", time.Second)
	_, err := api.SendMessage(context.Background(), "", "1", "x")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("error leaks the bot token: %v", err)
	}
}

func TestSendPhoto_Multipart(t *testing.T) {
	var fields = map[string]string{}
	var fileName, fileType, fileData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bott/sendPhoto" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		fh := r.MultipartForm.File["photo"][0]
		fileName = fh.Filename
		fileType = fh.Header.Get("Content-Type")
		f, _ := fh.Open()
		b, _ := io.ReadAll(f)
		fileData = string(b)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	api := NewTelegramAPI(srv.URL, "t", time.Second)
	_, err := api.SendPhoto(context.Background(), "", "42", "cap", InputFile{
		Name:        "cat.png",
		ContentType: "image/png",
		Data:        []byte("PNGDATA"),
	})
	if err != nil {
		t.Fatalf("SendPhoto: %v", err)
	}
	if fields["chat_id"] != "42" || fields["caption"] != "cap" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fileName != "cat.png" || fileType != "image/png" || fileData != "PNGDATA" {
		t.Errorf("unexpected file %s %s %s", fileName, fileType, fileData)
	}
}

func TestSendPhoto_DefaultName(t *testing.T) {
	var fileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			fileName = r.MultipartForm.File["photo"][0].Filename
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	api := NewTelegramAPI(srv.URL, "t", time.Second)
	if _, err := api.SendPhoto(context.Background(), "", "1", "", InputFile{Data: []byte("x")}); err != nil {
		t.Fatalf("SendPhoto: %v", err)
	}
	if fileName != DefaultPhotoName {
		t.Errorf("expected %s, got %q", DefaultPhotoName, fileName)
	}
}
