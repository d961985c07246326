package config

import (
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Metrics struct {
	// Addr is empty when metrics are not served
	Addr string
}

func (c *config) Metrics() Metrics {
	return c.metricsOnce.Do(func() interface{} {
		var cfg struct {
			Addr string `fig:"addr"`
		}

		raw, err := c.getter.GetStringMap("metrics")
		if err != nil {
			panic(errors.Wrap(err, "failed to get metrics config"))
		}
		if err = figure.Out(&cfg).From(raw).Please(); err != nil {
			panic(errors.Wrap(err, "failed to figure out metrics"))
		}
		return Metrics{Addr: cfg.Addr}
	}).(Metrics)
}
