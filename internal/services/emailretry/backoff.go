package emailretry

import "time"

type BackoffConfig struct {
	Step1 time.Duration `json:"step1"`
	Step2 time.Duration `json:"step2"`
	Step3 time.Duration `json:"step3"`
	Step4 time.Duration `json:"step4"`
	// MaxAttempts is the total number of sends before an email is abandoned.
	MaxAttempts int32 `json:"maxAttempts"`
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Step1:       1 * time.Minute,
		Step2:       5 * time.Minute,
		Step3:       15 * time.Minute,
		Step4:       60 * time.Minute,
		MaxAttempts: 6,
	}
}

// Backoff schedules retries of failed emails.
type Backoff struct {
	cfg BackoffConfig
}

func NewBackoff(cfg BackoffConfig) *Backoff {
	def := DefaultBackoffConfig()
	if cfg.Step1 <= 0 {
		cfg.Step1 = def.Step1
	}
	if cfg.Step2 <= 0 {
		cfg.Step2 = def.Step2
	}
	if cfg.Step3 <= 0 {
		cfg.Step3 = def.Step3
	}
	if cfg.Step4 <= 0 {
		cfg.Step4 = def.Step4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	return &Backoff{cfg: cfg}
}

func (b *Backoff) Config() BackoffConfig {
	return b.cfg
}

// Delay is the wait after the given number of failed attempts.
func (b *Backoff) Delay(failedAttempts int32) time.Duration {
	switch {
	case failedAttempts <= 1:
		return b.cfg.Step1
	case failedAttempts == 2:
		return b.cfg.Step2
	case failedAttempts == 3:
		return b.cfg.Step3
	default:
		return b.cfg.Step4
	}
}

// Exhausted reports whether no attempt is left after failedAttempts.
func (b *Backoff) Exhausted(failedAttempts int32) bool {
	return failedAttempts >= b.cfg.MaxAttempts
}
