package neo4rs

import (
	"errors"

	"github.com/sumyiren/neo4rs-go/retry"
)

// defaultRetriableCodes lists the server error codes considered transient by
// default (spec §9 Open Question (a)): classifications that are a function
// of server load or cluster topology, not of the query itself, so retrying
// unchanged is expected to eventually succeed.
var defaultRetriableCodes = map[string]bool{
	"Neo.ClientError.Security.AuthorizationExpired":          true,
	"Neo.ClientError.Cluster.NotALeader":                     true,
	"Neo.ClientError.General.ForbiddenOnReadOnlyDatabase":     true,
	"Neo.TransientError.Transaction.Terminated":               true,
	"Neo.TransientError.Transaction.LockClientStopped":        true,
	"Neo.TransientError.Transaction.DeadlockDetected":         true,
	"Neo.TransientError.General.OutOfMemoryError":             true,
	"Neo.TransientError.General.StackOverFlowError":           true,
	"Neo.TransientError.General.DatabaseUnavailable":          true,
	"Neo.TransientError.Network.CommunicationError":           true,
}

// RetriableCodes is the table retry.Classifier consults; it is a package
// variable rather than a Config field so callers can extend or replace it
// wholesale (e.g. in tests) without threading it through every Config.
var RetriableCodes = func() map[string]bool {
	m := make(map[string]bool, len(defaultRetriableCodes))
	for k, v := range defaultRetriableCodes {
		m[k] = v
	}
	return m
}()

// classifyError reports whether err is retriable: a ServerError whose Code
// is in RetriableCodes, or any IOError/ConnectionError (the connection may
// simply have been replaced by the pool on the next attempt). Anything else,
// including a canceled context, is not retriable.
func classifyError(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return RetriableCodes[serverErr.Code]
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return true
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	return false
}

var _ retry.Classifier = classifyError
