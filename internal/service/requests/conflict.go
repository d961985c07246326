package requests

import (
	"net/http"

	"gitlab.com/distributed_lab/json-api-connector/cerrors"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

func IsConflict(err error) bool {
	c, ok := errors.Cause(err).(cerrors.Error)
	return ok && c.Status() == http.StatusConflict
}
