package differ

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/reserve"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ReserveDifferConfig holds the differ's dependencies.
type ReserveDifferConfig struct {
	Registry prometheus.Registerer
	Logger   Logger
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *ReserveDifferConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// ReserveDiffer compares before/after reserve snapshots around a governance
// action. It proves two properties: the action added exactly the expected
// number of listings, and it left every pre-existing reserve untouched.
type ReserveDiffer struct {
	metrics *Metrics
	logger  Logger
}

// NewReserveDiffer constructs a new differ from a configuration, returning an
// error if the config is invalid.
func NewReserveDiffer(cfg *ReserveDifferConfig) (*ReserveDiffer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &ReserveDiffer{
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// ValidateListingCount checks that after holds exactly expectedNew more
// reserves than before. This is a pure length check; it does not identify
// which entries are new.
func (d *ReserveDiffer) ValidateListingCount(expectedNew int, before, after reserve.Snapshot) error {
	timer := prometheus.NewTimer(d.metrics.checkDuration.WithLabelValues("listing_count"))
	defer timer.ObserveDuration()

	if len(after) != len(before)+expectedNew {
		d.metrics.violations.WithLabelValues("listing_count").Inc()
		return &CountMismatchError{
			ExpectedNew: expectedNew,
			Before:      len(before),
			After:       len(after),
		}
	}

	d.logger.Debug("listing count matches", "before", len(before), "after", len(after), "new", expectedNew)
	return nil
}

// ValidateNoDrift checks that every entry of before is still present,
// unchanged and at the same index, in after. Comparison is positional rather
// than symbol-keyed so that an accidental reordering of existing reserves is
// caught as well. The first divergent field aborts the check.
func (d *ReserveDiffer) ValidateNoDrift(before, after reserve.Snapshot) error {
	timer := prometheus.NewTimer(d.metrics.checkDuration.WithLabelValues("drift"))
	defer timer.ObserveDuration()

	if len(after) < len(before) {
		d.metrics.violations.WithLabelValues("drift").Inc()
		return &CountMismatchError{ExpectedNew: 0, Before: len(before), After: len(after)}
	}

	for i := range before {
		mismatch, found := reserve.FirstMismatch(before[i], after[i], false)
		if !found {
			continue
		}
		d.metrics.violations.WithLabelValues("drift").Inc()
		return &ConfigChangedError{
			Index:  i,
			Symbol: before[i].Symbol,
			Field:  mismatch.Field,
			Before: mismatch.Expected,
			After:  mismatch.Actual,
		}
	}

	d.logger.Debug("no drift on pre-existing reserves", "checked", len(before))
	return nil
}
