// Package bootstrap wires a relay.Service from configuration for both
// deployments.
package bootstrap

import (
	"go.uber.org/zap"

	"github.com/naseer2426/telegram-proxy/internal/config"
	"github.com/naseer2426/telegram-proxy/internal/db"
	"github.com/naseer2426/telegram-proxy/internal/geo"
	"github.com/naseer2426/telegram-proxy/internal/relay"
	"github.com/naseer2426/telegram-proxy/internal/telegram"
)

// NewRelay builds the relay core. When a database URL is configured the relay
// log is enabled and the returned cleanup closes the pool.
func NewRelay(cfg *config.Config, log *zap.SugaredLogger) (*relay.Service, func(), error) {
	opts := relay.Options{
		ChatID:  cfg.Telegram.ChatID,
		Locator: geo.NewIPAPI(cfg.Geo.APIBase, cfg.Geo.Timeout, log),
		Sender:  telegram.NewTelegramAPI(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.Timeout),
		Logger:  log,
	}
	cleanup := func() {}

	if cfg.DatabaseURL != "" {
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = db.NewStore(database)
		cleanup = func() {
			if err := db.Close(database); err != nil {
				log.Warnw("close database", "error", err)
			}
		}
		log.Infow("relay log enabled")
	}

	return relay.NewService(opts), cleanup, nil
}
