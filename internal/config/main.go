package config

import (
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/kit/comfig"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/kit/pgdb"
)

type Config interface {
	comfig.Logger
	pgdb.Databaser

	Network() Network
	Matcher() Matcher
	Settlement() Settlement
	// Collector is nil when no collector is configured
	Collector() *jsonapi.Connector
	Ledger() *jsonapi.Connector
	Metrics() Metrics
}

type config struct {
	comfig.Logger
	pgdb.Databaser
	getter kv.Getter

	networkOnce    comfig.Once
	matcherOnce    comfig.Once
	settlementOnce comfig.Once
	collectorOnce  comfig.Once
	ledgerOnce     comfig.Once
	metricsOnce    comfig.Once
}

func New(getter kv.Getter) Config {
	return &config{
		getter:    getter,
		Databaser: pgdb.NewDatabaser(getter),
		Logger:    comfig.NewLogger(getter, comfig.LoggerOpts{}),
	}
}
