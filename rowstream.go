package neo4rs

import (
	"context"

	"github.com/sumyiren/neo4rs-go/value"
)

// streamState tracks a RowStream's lazy-cursor lifecycle, mirroring
// original_source/lib/src/stream.rs's State{Ready,Streaming,Buffered,Complete}.
type streamState int

const (
	streamReady streamState = iota
	streamStreaming
	streamBuffered
	streamComplete
)

// Row is one record, keyed by field name — the positional RECORD fields
// paired back up with the field names RUN's SUCCESS reported.
type Row map[string]value.Value

// Get returns the named field, or value.Null with ok=false if the row has
// no such field.
func (r Row) Get(name string) (value.Value, bool) {
	v, ok := r[name]
	if !ok {
		return value.Null, false
	}
	return v, true
}

// RowStream is a lazily-fetched, back-pressured cursor over one query's
// results: it only pulls fetchSize records at a time, buffering them until
// Next drains the buffer, then issues another PULL. Grounded on
// original_source/lib/src/stream.rs's RowStream.
type RowStream struct {
	conn       *Connection
	qid        int64
	fieldNames []string
	fetchSize  int64

	state   streamState
	buf     []Row
	bufPos  int
}

func newRowStream(conn *Connection, r runResult, fetchSize int64) *RowStream {
	return &RowStream{
		conn:       conn,
		qid:        r.qid,
		fieldNames: r.fields,
		fetchSize:  fetchSize,
		state:      streamReady,
	}
}

// Keys returns the field names of each row, in positional order.
func (s *RowStream) Keys() []string {
	return s.fieldNames
}

// Next advances the cursor and returns the next row. It returns
// (Row{}, false, nil) once the stream is exhausted, and propagates any
// protocol/server error encountered while fetching more records.
func (s *RowStream) Next(ctx context.Context) (Row, bool, error) {
	for {
		if s.bufPos < len(s.buf) {
			row := s.buf[s.bufPos]
			s.bufPos++
			if s.bufPos == len(s.buf) && s.state != streamComplete {
				s.state = streamStreaming
			}
			return row, true, nil
		}

		if s.state == streamComplete {
			return nil, false, nil
		}

		if err := s.fetchMore(ctx); err != nil {
			return nil, false, err
		}
	}
}

func (s *RowStream) fetchMore(ctx context.Context) error {
	s.state = streamStreaming
	res, err := s.conn.pull(ctx, s.fetchSize, s.qid, s.fieldNames)
	if err != nil {
		s.state = streamComplete
		return err
	}

	s.buf = make([]Row, len(res.records))
	for i, r := range res.records {
		s.buf[i] = Row(r)
	}
	s.bufPos = 0

	if res.hasMore {
		s.state = streamBuffered
	} else {
		s.state = streamComplete
	}

	return nil
}

// drained reports whether the server side of the result is finished: the
// last PULL reported no more records, or Consume discarded the rest. Rows
// from that last PULL may still be buffered for Next. It is the condition
// Transaction.Run checks before allowing another RUN on the same
// conversation.
func (s *RowStream) drained() bool {
	return s.state == streamComplete
}

// Consume discards the remainder of the result without materializing it —
// for callers that stop iterating early but still need the connection back
// in the idle state before they can issue another RUN.
func (s *RowStream) Consume(ctx context.Context) error {
	if s.state == streamComplete {
		return nil
	}
	s.buf = nil
	s.bufPos = 0
	s.state = streamComplete
	return s.conn.discard(ctx, s.qid)
}

// Collect drains the stream into a slice, a convenience for small result
// sets where back-pressure doesn't matter.
func (s *RowStream) Collect(ctx context.Context) ([]Row, error) {
	var rows []Row
	for {
		row, ok, err := s.Next(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
