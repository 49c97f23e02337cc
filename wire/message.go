package wire

import "github.com/sumyiren/neo4rs-go/value"

// ResponseKind identifies which kind of message a Receive call returned: one
// of the four server message kinds (spec §4.1/§6), or Request for a client
// request read by the server side of a connection, as test doubles do.
type ResponseKind int

const (
	Success ResponseKind = iota
	Failure
	Ignored
	Record
	Request
)

func (k ResponseKind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Ignored:
		return "IGNORED"
	case Record:
		return "RECORD"
	case Request:
		return "REQUEST"
	default:
		return "UNKNOWN"
	}
}

func responseKindFromSig(sig byte) (ResponseKind, bool) {
	switch sig {
	case sigSuccess:
		return Success, true
	case sigFailure:
		return Failure, true
	case sigIgnored:
		return Ignored, true
	case sigRecord:
		return Record, true
	case sigHello, sigReset, sigRun, sigBegin, sigCommit, sigRollback, sigDiscard, sigPull:
		return Request, true
	default:
		return 0, false
	}
}

// Response is a decoded server message: its kind plus positional fields, in
// the order the negotiated protocol version defines them.
type Response struct {
	Kind   ResponseKind
	Fields []value.Value
}

// Metadata returns Fields[0] as a map, the shape SUCCESS and FAILURE always
// carry. Returns an empty map if the field is absent or not a map.
func (r Response) Metadata() map[string]value.Value {
	if len(r.Fields) == 0 {
		return map[string]value.Value{}
	}
	m, ok := r.Fields[0].AsMap()
	if !ok {
		return map[string]value.Value{}
	}
	return m
}

// RecordFields returns Fields[0] as a list, the shape RECORD always carries.
func (r Response) RecordFields() []value.Value {
	if len(r.Fields) == 0 {
		return nil
	}
	l, _ := r.Fields[0].AsList()
	return l
}

// Request builder helpers. Each returns the signature byte and positional
// field values for one client message kind, per spec §6.

func HelloRequest(userAgent, principal, credentials string) (byte, []value.Value) {
	return sigHello, []value.Value{value.Map(map[string]value.Value{
		"user_agent": value.String(userAgent),
		"scheme":     value.String("basic"),
		"principal":  value.String(principal),
		"credentials": value.String(credentials),
	})}
}

func RunRequest(query string, params map[string]value.Value, db, mode string) (byte, []value.Value) {
	if params == nil {
		params = map[string]value.Value{}
	}
	meta := map[string]value.Value{"mode": value.String(mode)}
	if db != "" {
		meta["db"] = value.String(db)
	}
	return sigRun, []value.Value{
		value.String(query),
		value.Map(params),
		value.Map(meta),
	}
}

func PullRequest(n int64, qid int64) (byte, []value.Value) {
	return sigPull, []value.Value{value.Map(map[string]value.Value{
		"n":   value.Int(n),
		"qid": value.Int(qid),
	})}
}

func DiscardRequest(qid int64) (byte, []value.Value) {
	return sigDiscard, []value.Value{value.Map(map[string]value.Value{
		"n":   value.Int(-1),
		"qid": value.Int(qid),
	})}
}

func BeginRequest(db, mode string) (byte, []value.Value) {
	meta := map[string]value.Value{"mode": value.String(mode)}
	if db != "" {
		meta["db"] = value.String(db)
	}
	return sigBegin, []value.Value{value.Map(meta)}
}

func CommitRequest() (byte, []value.Value)   { return sigCommit, nil }
func RollbackRequest() (byte, []value.Value) { return sigRollback, nil }
func ResetRequest() (byte, []value.Value)    { return sigReset, nil }
