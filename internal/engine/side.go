package engine

import (
	"strings"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Side string

const (
	SideBid Side = "BID"
	SideAsk Side = "ASK"
)

var ErrUnknownSide = errors.New("unknown side")

func ParseSide(raw string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SideBid):
		return SideBid, nil
	case string(SideAsk):
		return SideAsk, nil
	default:
		return "", ErrUnknownSide
	}
}

func (s Side) String() string {
	return string(s)
}
