package checks

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/protocol"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// CheckerConfig holds the checker's dependencies.
type CheckerConfig struct {
	Client   protocol.Client
	Logger   Logger
	Registry prometheus.Registerer
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *CheckerConfig) validate() error {
	if c.Client == nil {
		return errors.New("config: Client cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	return nil
}

// Checker runs the absolute validators of a listing: expected reserve spec,
// interest-rate curve, proxy implementations, and oracle source. Each check
// fails on the first violated invariant with the literal expected/actual
// values involved.
type Checker struct {
	client  protocol.Client
	logger  Logger
	metrics *metrics
}

// NewChecker constructs a Checker from a configuration, returning an error if
// the config is invalid.
func NewChecker(cfg *CheckerConfig) (*Checker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Checker{
		client:  cfg.Client,
		logger:  cfg.Logger,
		metrics: newMetrics(cfg.Registry),
	}, nil
}
