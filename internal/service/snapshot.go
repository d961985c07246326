package service

import (
	"context"
	"net/url"

	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/arc-coordination/matching-svc/internal/service/requests"
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type publisher interface {
	Publish(ctx context.Context, s engine.Snapshot, cycle uint64) error
}

type collector struct {
	connector *jsonapi.Connector
	endpoint  *url.URL
}

func newCollector(connector *jsonapi.Connector) *collector {
	u, _ := url.Parse("/order_books")
	return &collector{connector: connector, endpoint: u}
}

func (c *collector) Publish(ctx context.Context, s engine.Snapshot, cycle uint64) error {
	err := c.connector.PostJSON(c.endpoint, requests.NewOrderBook(s, cycle), ctx, nil)
	if requests.IsConflict(err) {
		return nil
	}
	return errors.Wrap(err, "failed to publish order book snapshot")
}
