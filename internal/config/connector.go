package config

import (
	"net/http"
	"net/url"
	"time"

	"gitlab.com/distributed_lab/figure/v3"
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/tokend/connectors/signed"
)

func (c *config) Collector() *jsonapi.Connector {
	return c.collectorOnce.Do(func() interface{} {
		return c.connector("collector", false)
	}).(*jsonapi.Connector)
}

func (c *config) Ledger() *jsonapi.Connector {
	return c.ledgerOnce.Do(func() interface{} {
		return c.connector("ledger", true)
	}).(*jsonapi.Connector)
}

func (c *config) connector(key string, required bool) *jsonapi.Connector {
	raw, err := c.getter.GetStringMap(key)
	if err != nil {
		panic(errors.Wrap(err, "failed to get "+key+" config"))
	}
	if len(raw) == 0 {
		if required {
			panic(errors.New(key + " config is required"))
		}
		return nil
	}

	var cfg struct {
		Endpoint       *url.URL      `fig:"endpoint,required"`
		RequestTimeout time.Duration `fig:"request_timeout"`
	}
	err = figure.Out(&cfg).
		From(raw).
		Please()
	if err != nil {
		panic(errors.Wrap(err, "failed to figure out "+key))
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return jsonapi.NewConnector(signed.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.Endpoint))
}
