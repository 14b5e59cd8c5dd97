package config

import (
	"fmt"
	"time"
)

type QueueConfig struct {
	QueueUser           string        `mapstructure:"queue-user"`
	QueuePassword       string        `mapstructure:"queue-password"`
	Url                 string        `mapstructure:"url"`
	ExchangeName        string        `mapstructure:"exchange-name"`
	PublishTimeout      time.Duration `mapstructure:"publish-timeout"`
	MsgMaxRetryAttempts uint          `mapstructure:"msg-max-retry-attempts"`
	RetryDelayTime      time.Duration `mapstructure:"retry-delay-time"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.QueueUser == "" {
		return fmt.Errorf("queue user cannot be empty")
	}
	if cfg.QueuePassword == "" {
		return fmt.Errorf("queue password cannot be empty")
	}
	if cfg.Url == "" {
		return fmt.Errorf("queue url cannot be empty")
	}
	if cfg.ExchangeName == "" {
		return fmt.Errorf("queue exchange name cannot be empty")
	}
	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("publish-timeout must be positive")
	}
	if cfg.MsgMaxRetryAttempts == 0 {
		return fmt.Errorf("msg-max-retry-attempts must be positive")
	}
	if cfg.RetryDelayTime <= 0 {
		return fmt.Errorf("retry-delay-time must be positive")
	}
	return nil
}
