package config

import (
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Matcher struct {
	PollInterval  time.Duration
	SnapshotDepth int
	// StrictInvariants makes invariant violations crash the loop instead of
	// being logged per asset
	StrictInvariants bool
}

const (
	defaultPollInterval  = 10 * time.Second
	defaultSnapshotDepth = 10
)

func (c *config) Matcher() Matcher {
	return c.matcherOnce.Do(func() interface{} {
		var cfg struct {
			PollInterval     time.Duration `fig:"poll_interval"`
			SnapshotDepth    int           `fig:"snapshot_depth"`
			StrictInvariants bool          `fig:"strict_invariants"`
		}

		raw, err := c.getter.GetStringMap("matcher")
		if err != nil {
			panic(errors.Wrap(err, "failed to get matcher config"))
		}
		err = figure.Out(&cfg).From(raw).Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out matcher"))
		}

		if cfg.PollInterval <= 0 {
			cfg.PollInterval = defaultPollInterval
		}
		if cfg.SnapshotDepth <= 0 {
			cfg.SnapshotDepth = defaultSnapshotDepth
		}

		return Matcher{
			PollInterval:     cfg.PollInterval,
			SnapshotDepth:    cfg.SnapshotDepth,
			StrictInvariants: cfg.StrictInvariants,
		}
	}).(Matcher)
}
