package neo4rs

import (
	"context"

	"github.com/sumyiren/neo4rs-go/value"
	"github.com/sumyiren/neo4rs-go/wire"
)

// noQueryID is used for servers/versions that never report a qid: the
// single-query-at-a-time conversations this driver drives never need to
// disambiguate which query a PULL/DISCARD targets.
const noQueryID = -1

// runResult is what RUN's SUCCESS metadata carries forward into the stream.
type runResult struct {
	fields []string
	qid    int64
}

// run sends RUN and returns the field names and query id for the result
// that follows. mode is "r" for a read query, "w" for a write query (spec
// §4.1/§6); db selects the target database, "" meaning the server default.
func (c *Connection) run(ctx context.Context, query string, params map[string]value.Value, db, mode string) (runResult, error) {
	c.mu.Lock()
	inTx := c.state == stateTxReady || c.state == stateTxStreaming
	c.mu.Unlock()
	c.setState(stateRunning)

	sig, fields := wire.RunRequest(query, params, db, mode)
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return runResult{}, err
	}

	switch resp.Kind {
	case wire.Success:
		meta := resp.Metadata()
		fieldNames, _ := meta["fields"].AsList()
		names := make([]string, len(fieldNames))
		for i, f := range fieldNames {
			names[i], _ = f.AsString()
		}
		qid := int64(noQueryID)
		if q, ok := meta["qid"].AsInt(); ok {
			qid = q
		}
		if inTx {
			c.setState(stateTxStreaming)
		} else {
			c.setState(stateStreaming)
		}
		return runResult{fields: names, qid: qid}, nil
	case wire.Failure:
		c.setState(stateFailed)
		return runResult{}, serverErrorFromMetadata(resp.Metadata())
	default:
		return runResult{}, unexpectedMessage("RUN", resp.Kind.String())
	}
}

// pullResult is one PULL's outcome: the records it carried, and whether the
// result has more records to fetch (a SUCCESS with has_more=true) or is
// exhausted (a SUCCESS without it).
type pullResult struct {
	records []map[string]value.Value
	hasMore bool
}

// pull requests up to n more records (n<=0 meaning "all remaining", per the
// wire protocol's convention of n=-1) for the query identified by qid.
func (c *Connection) pull(ctx context.Context, n, qid int64, fieldNames []string) (pullResult, error) {
	sig, fields := wire.PullRequest(n, qid)

	var out pullResult
	for {
		resp, err := c.exchange(ctx, sig, fields)
		if err != nil {
			return out, err
		}

		switch resp.Kind {
		case wire.Record:
			row := make(map[string]value.Value, len(fieldNames))
			vals := resp.RecordFields()
			for i, name := range fieldNames {
				if i < len(vals) {
					row[name] = vals[i]
				}
			}
			out.records = append(out.records, row)
			continue
		case wire.Success:
			meta := resp.Metadata()
			hasMore, _ := meta["has_more"].AsBool()
			out.hasMore = hasMore
			if !hasMore {
				c.finishStream()
			}
			return out, nil
		case wire.Failure:
			c.setState(stateFailed)
			return out, serverErrorFromMetadata(resp.Metadata())
		default:
			return out, unexpectedMessage("PULL", resp.Kind.String())
		}
	}
}

// discard consumes the remainder of the current result without buffering
// it, used by RowStream when a caller abandons iteration early.
func (c *Connection) discard(ctx context.Context, qid int64) error {
	sig, fields := wire.DiscardRequest(qid)
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.Success:
		c.finishStream()
		return nil
	case wire.Failure:
		c.setState(stateFailed)
		return serverErrorFromMetadata(resp.Metadata())
	default:
		return unexpectedMessage("DISCARD", resp.Kind.String())
	}
}

// finishStream ends the current result: back to txReady inside a
// transaction, otherwise idle.
func (c *Connection) finishStream() {
	c.mu.Lock()
	if c.state == stateTxStreaming {
		c.state = stateTxReady
	} else {
		c.state = stateIdle
	}
	c.mu.Unlock()
}

// begin opens a transaction (spec §4.5). The connection must be idle.
func (c *Connection) begin(ctx context.Context, db, mode string) error {
	sig, fields := wire.BeginRequest(db, mode)
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.Success:
		c.setState(stateTxReady)
		return nil
	case wire.Failure:
		c.setState(stateFailed)
		return serverErrorFromMetadata(resp.Metadata())
	default:
		return unexpectedMessage("BEGIN", resp.Kind.String())
	}
}

func (c *Connection) commit(ctx context.Context) error {
	sig, fields := wire.CommitRequest()
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.Success:
		c.setState(stateIdle)
		return nil
	case wire.Failure:
		c.setState(stateFailed)
		return serverErrorFromMetadata(resp.Metadata())
	default:
		return unexpectedMessage("COMMIT", resp.Kind.String())
	}
}

func (c *Connection) rollback(ctx context.Context) error {
	sig, fields := wire.RollbackRequest()
	resp, err := c.exchange(ctx, sig, fields)
	if err != nil {
		return err
	}

	switch resp.Kind {
	case wire.Success:
		c.setState(stateIdle)
		return nil
	case wire.Failure:
		// A failed ROLLBACK still leaves the connection requiring RESET;
		// there is nothing further the caller can do about it, so the
		// error is reported but the state transition is identical to the
		// success path's FAILED handling elsewhere.
		c.setState(stateFailed)
		return serverErrorFromMetadata(resp.Metadata())
	default:
		return unexpectedMessage("ROLLBACK", resp.Kind.String())
	}
}

func serverErrorFromMetadata(meta map[string]value.Value) error {
	code, _ := meta["code"].AsString()
	msg, _ := meta["message"].AsString()
	return &ServerError{Code: code, Message: msg}
}
