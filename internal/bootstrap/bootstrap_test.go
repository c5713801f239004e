package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/naseer2426/telegram-proxy/internal/config"
	"github.com/naseer2426/telegram-proxy/internal/relay"
)

func TestNewRelay_WithoutDatabase(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Telegram.BotToken = "9:xyz"
	cfg.Telegram.ChatID = "5"
	cfg.Telegram.APIBase = srv.URL
	cfg.Geo.APIBase = srv.URL

	svc, cleanup, err := NewRelay(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewRelay: %v", err)
	}
	defer cleanup()

	res := svc.SendMessage(context.Background(), &relay.Request{
		Header:     http.Header{},
		RemoteAddr: "127.0.0.1:1",
		Fields:     map[string]string{"text": "ping"},
	})
	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status)
	}
	if !strings.HasPrefix(gotPath, "/bot9:xyz/") {
		t.Errorf("configured token not used, path %s", gotPath)
	}
}
