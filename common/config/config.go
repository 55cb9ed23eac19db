package config

import "time"

type (
	Config struct {
		Server      Server      `koanf:"server" yaml:"server" validate:"required"`
		Scheduler   Scheduler   `koanf:"scheduler" yaml:"scheduler"`
		Identity    Identity    `koanf:"identity" yaml:"identity"`
		Persistence Persistence `koanf:"persistence" yaml:"persistence"`
	}

	Server struct {
		Host string `koanf:"host"`
		Port int    `koanf:"port" validate:"required,min=1,max=65535"`
	}

	Scheduler struct {
		// TickInterval is the poll interval of the deferred comment worker.
		// Delivery latency is bounded by one tick after a job's fire time.
		TickInterval time.Duration `koanf:"tickInterval"`
	}

	Identity struct {
		// Provider selects the identity verification backend. Empty disables
		// bearer token verification on the API.
		Provider  string `koanf:"provider" validate:"omitempty,oneof=google"`
		WebAPIKey string `koanf:"webApiKey"`
	}

	Persistence struct {
		// Driver selects the publish history backend. Empty disables the
		// history ledger entirely.
		Driver string `koanf:"driver" validate:"omitempty,oneof=sqlite"`
		DSN    string `koanf:"dsn"`
	}
)

const DefaultTickInterval = 60 * time.Second

func (s *Scheduler) Tick() time.Duration {
	if s.TickInterval <= 0 {
		return DefaultTickInterval
	}
	return s.TickInterval
}
