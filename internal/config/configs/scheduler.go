package configs

import "time"

// Scheduler configures the sweep trigger. Secret authenticates the external
// time trigger calling POST /scheduler/run; with an empty secret the
// endpoint rejects every request. PollInterval, when positive, additionally
// runs an in-process sweep loop.
type Scheduler struct {
	Secret       string        `env:"SECRET"`
	BaseURL      string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"0"`
}
