package factory

import (
	"fmt"

	"github.com/mikey/llm-review-triage/internal/adapters/notify"
	"github.com/mikey/llm-review-triage/internal/config"
	"github.com/mikey/llm-review-triage/internal/ports"
	"go.uber.org/zap"
)

// NotifierFactory creates reply notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReplyNotifier creates a reply notifier based on the configuration
func (f *NotifierFactory) CreateReplyNotifier() (ports.ReplyNotifier, error) {
	notifyCfg, err := f.cfg.GetNotify()
	if err != nil {
		return nil, err
	}

	switch notifyCfg.Type {
	case "", "none":
		return notify.NewNoneNotifier(f.logger), nil
	case "smtp":
		return notify.NewSMTPNotifier(notify.SMTPOptions{
			Address:  notifyCfg.SMTP.Address,
			Port:     notifyCfg.SMTP.Port,
			Username: notifyCfg.SMTP.Username,
			Password: notifyCfg.SMTP.Password,
			From:     notifyCfg.SMTP.From,
			To:       notifyCfg.SMTP.To,
			StartTLS: notifyCfg.SMTP.StartTLS,
			Timeout:  notifyCfg.SMTP.Timeout,
		}, f.logger)
	case "telegram":
		return notify.NewTelegramNotifier(notifyCfg.Telegram.Token, notifyCfg.Telegram.ChatID, f.logger)
	default:
		return nil, fmt.Errorf("unsupported notify type: %s", notifyCfg.Type)
	}
}
