package tracelog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumyiren/neo4rs-go/log"
	"github.com/sumyiren/neo4rs-go/tracelog"
)

type recordingLogger struct {
	level log.Level
	msg   string
	data  map[string]interface{}
}

func (r *recordingLogger) Log(ctx context.Context, level log.Level, msg string, data map[string]interface{}) {
	r.level = level
	r.msg = msg
	r.data = data
}

func TestTraceRunEndLogsInfoOnSuccess(t *testing.T) {
	rl := &recordingLogger{}
	tl := &tracelog.TraceLog{Logger: rl, Level: log.LevelInfo}

	ctx := tl.TraceRunStart(context.Background(), "MATCH (n) RETURN n")
	tl.TraceRunEnd(ctx, nil)

	assert.Equal(t, log.LevelInfo, rl.level)
	assert.Equal(t, "Run", rl.msg)
	assert.Equal(t, "MATCH (n) RETURN n", rl.data["query"])
}

func TestTraceRunEndLogsErrorRegardlessOfLevel(t *testing.T) {
	rl := &recordingLogger{}
	tl := &tracelog.TraceLog{Logger: rl, Level: log.LevelError}

	ctx := tl.TraceRunStart(context.Background(), "MATCH (n) RETURN n")
	wantErr := errors.New("boom")
	tl.TraceRunEnd(ctx, wantErr)

	require.Equal(t, log.LevelError, rl.level)
	assert.Equal(t, wantErr, rl.data["err"])
}

func TestTraceLevelNoneSuppressesAllLogging(t *testing.T) {
	rl := &recordingLogger{}
	tl := &tracelog.TraceLog{Logger: rl, Level: log.LevelNone}

	ctx := tl.TraceRunStart(context.Background(), "RETURN 1")
	tl.TraceRunEnd(ctx, nil)

	assert.Empty(t, rl.msg)
}

func TestTraceTxEndUsesTheStartedOperationName(t *testing.T) {
	rl := &recordingLogger{}
	tl := &tracelog.TraceLog{Logger: rl, Level: log.LevelInfo}

	ctx := tl.TraceTxStart(context.Background(), "Commit")
	tl.TraceTxEnd(ctx, nil)

	assert.Equal(t, "Commit", rl.msg)
}

func TestTraceAcquireEndLogsDebugOnSuccess(t *testing.T) {
	rl := &recordingLogger{}
	tl := &tracelog.TraceLog{Logger: rl, Level: log.LevelDebug}

	ctx := tl.TraceAcquireStart(context.Background())
	tl.TraceAcquireEnd(ctx, nil)

	assert.Equal(t, "Acquire", rl.msg)
	assert.Equal(t, log.LevelDebug, rl.level)
}
