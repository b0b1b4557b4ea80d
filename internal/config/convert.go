package config

import (
	"time"

	"github.com/danmuck/linkctl/internal/arq"
)

// ARQConfig translates file-level settings into engine parameters.
func ARQConfig(cfg LinkConfig) arq.Config {
	out := arq.DefaultConfig()
	out.FragmentSize = cfg.FragmentSize
	out.AckTimeout = time.Duration(cfg.AckTimeoutMS) * time.Millisecond
	out.PollTimeout = time.Duration(cfg.PollTimeoutMS) * time.Millisecond
	out.MaxRetry = cfg.MaxRetry
	return out
}
