package pool

import "errors"

var (
	errPooledConnUnusable   = errors.New("pool: connection is FAILED or not alive")
	errAfterReleaseRejected = errors.New("pool: AfterRelease rejected connection")
)
