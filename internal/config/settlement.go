package config

import (
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const (
	SettlementEscrow = "escrow"
	SettlementLedger = "ledger"
)

type Settlement struct {
	Mode string
	// SubmitTimeout bounds a single commit, including waiting for the receipt
	SubmitTimeout time.Duration
}

const defaultSubmitTimeout = 2 * time.Minute

func (c *config) Settlement() Settlement {
	return c.settlementOnce.Do(func() interface{} {
		var cfg struct {
			Mode          string        `fig:"mode"`
			SubmitTimeout time.Duration `fig:"submit_timeout"`
		}

		raw, err := c.getter.GetStringMap("settlement")
		if err != nil {
			panic(errors.Wrap(err, "failed to get settlement config"))
		}
		err = figure.Out(&cfg).From(raw).Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out settlement"))
		}

		switch cfg.Mode {
		case "":
			cfg.Mode = SettlementEscrow
		case SettlementEscrow, SettlementLedger:
		default:
			panic(errors.From(errors.New("unknown settlement mode"), logan.F{"mode": cfg.Mode}))
		}
		if cfg.SubmitTimeout <= 0 {
			cfg.SubmitTimeout = defaultSubmitTimeout
		}

		return Settlement{Mode: cfg.Mode, SubmitTimeout: cfg.SubmitTimeout}
	}).(Settlement)
}
