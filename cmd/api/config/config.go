package config

import "time"

type Config struct {
	AnalysisTimeout       time.Duration
	WatchlistConfirmation time.Duration
	ChatHistoryDir        string
}

func NewConfig() *Config {
	return &Config{
		AnalysisTimeout:       30 * time.Second,
		WatchlistConfirmation: 3 * time.Second,
		ChatHistoryDir:        "data/chat_history",
	}
}
