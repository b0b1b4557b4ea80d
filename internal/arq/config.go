package arq

import "time"

// BackoffConfig shapes the delay between retransmission rounds. The default
// multiplier of 1.0 with zero initial delay reproduces the classic
// retransmit-on-timeout behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config is the reliability profile. Both peers must run identical values;
// there is no negotiation on the wire.
type Config struct {
	// FragmentSize is the payload capacity per fragment before FEC
	// expansion. Messages up to twice this size travel unfragmented.
	FragmentSize int
	// AckTimeout bounds one round of waiting for acknowledgments.
	AckTimeout time.Duration
	// PollTimeout bounds a single channel read in the receive loop, keeping
	// it responsive to shutdown.
	PollTimeout time.Duration
	// MaxRetry is the per-fragment transmission ceiling.
	MaxRetry int

	Backoff BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		FragmentSize: 64,
		AckTimeout:   time.Second,
		PollTimeout:  200 * time.Millisecond,
		MaxRetry:     5,
		Backoff: BackoffConfig{
			InitialDelay: 0,
			Multiplier:   1.0,
		},
	}
}
