// Command lambda runs the proxy as an AWS Lambda function URL handler.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/naseer2426/telegram-proxy/internal/bootstrap"
	"github.com/naseer2426/telegram-proxy/internal/config"
	"github.com/naseer2426/telegram-proxy/internal/edge"
	"github.com/naseer2426/telegram-proxy/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	svc, cleanup, err := bootstrap.NewRelay(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to build relay", "error", err)
	}
	defer cleanup()

	lambda.Start(edge.NewHandler(svc, logger, cfg.MaxUploadBytes).Handle)
}
