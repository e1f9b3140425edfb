// Package email sends transactional notifications. A SendGrid-backed
// service is used when an API key is configured; otherwise messages go
// to the application log so local development needs no credentials.
package email

import (
	"log"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Service interface {
	Send(msg Message) error
}

func NewFromConfig(cfg *config.Config, logger *log.Logger) Service {
	if cfg.SendGridAPIKey != "" {
		return NewSendGridService(cfg.SendGridAPIKey, cfg.AppName, cfg.FromEmail)
	}
	return NewConsoleService(logger)
}
