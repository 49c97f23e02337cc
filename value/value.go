// Package value implements the typed sum type used to encode query
// parameters and decode record fields on the wire: scalars, lists, maps, and
// the graph-shaped structures (nodes, relationships, paths).
//
// spec.md treats this type as an external collaborator supplied by a typed
// value library; no such library exists in this module's dependency corpus,
// so it is implemented here, patterned after pgx's pgtype package: one small
// Go type per wire variant plus a Kind tag for the sum type itself.
package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindNode
	KindRelationship
	KindUnboundRelationship
	KindPath
	KindDate
	KindLocalTime
	KindTime
	KindLocalDateTime
	KindDateTime
	KindDuration
	KindPoint2D
	KindPoint3D
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindNode:
		return "Node"
	case KindRelationship:
		return "Relationship"
	case KindUnboundRelationship:
		return "UnboundRelationship"
	case KindPath:
		return "Path"
	case KindDate:
		return "Date"
	case KindLocalTime:
		return "LocalTime"
	case KindTime:
		return "Time"
	case KindLocalDateTime:
		return "LocalDateTime"
	case KindDateTime:
		return "DateTime"
	case KindDuration:
		return "Duration"
	case KindPoint2D:
		return "Point2D"
	case KindPoint3D:
		return "Point3D"
	case KindDecimal:
		return "Decimal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the tagged union consumed by query parameters and produced by
// record fields. Only one of the typed fields is meaningful, selected by
// Kind; accessors below panic-free zero-value the rest.
type Value struct {
	Kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string
	bytesVal  []byte
	listVal   []Value
	mapVal    map[string]Value
	decVal    decimal.Decimal

	nodeVal      *Node
	relVal       *Relationship
	unboundRel   *UnboundRelationship
	pathVal      *Path
	dateVal      Date
	localTimeVal LocalTime
	timeVal      Time
	localDTVal   LocalDateTime
	dateTimeVal  DateTime
	durationVal  Duration
	point2DVal   Point2D
	point3DVal   Point3D
}

// Null is the Value representing the absence of a value.
var Null = Value{Kind: KindNull}

func Bool(b bool) Value     { return Value{Kind: KindBool, boolVal: b} }
func Int(i int64) Value     { return Value{Kind: KindInt, intVal: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, floatVal: f} }
func String(s string) Value { return Value{Kind: KindString, stringVal: s} }
func Bytes(b []byte) Value  { return Value{Kind: KindBytes, bytesVal: b} }
func List(vs []Value) Value { return Value{Kind: KindList, listVal: vs} }
func Map(m map[string]Value) Value {
	return Value{Kind: KindMap, mapVal: m}
}
func Decimal(d decimal.Decimal) Value { return Value{Kind: KindDecimal, decVal: d} }

func NodeValue(n *Node) Value                   { return Value{Kind: KindNode, nodeVal: n} }
func RelationshipValue(r *Relationship) Value   { return Value{Kind: KindRelationship, relVal: r} }
func UnboundRelValue(r *UnboundRelationship) Value {
	return Value{Kind: KindUnboundRelationship, unboundRel: r}
}
func PathValue(p *Path) Value                 { return Value{Kind: KindPath, pathVal: p} }
func DateValue(d Date) Value                  { return Value{Kind: KindDate, dateVal: d} }
func LocalTimeValue(t LocalTime) Value        { return Value{Kind: KindLocalTime, localTimeVal: t} }
func TimeValue(t Time) Value                  { return Value{Kind: KindTime, timeVal: t} }
func LocalDateTimeValue(t LocalDateTime) Value { return Value{Kind: KindLocalDateTime, localDTVal: t} }
func DateTimeValue(t DateTime) Value          { return Value{Kind: KindDateTime, dateTimeVal: t} }
func DurationValue(d Duration) Value          { return Value{Kind: KindDuration, durationVal: d} }
func Point2DValue(p Point2D) Value            { return Value{Kind: KindPoint2D, point2DVal: p} }
func Point3DValue(p Point3D) Value            { return Value{Kind: KindPoint3D, point3DVal: p} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsBool returns the boolean payload and whether Kind was KindBool.
func (v Value) AsBool() (bool, bool) { return v.boolVal, v.Kind == KindBool }

// AsInt returns the integer payload and whether Kind was KindInt.
func (v Value) AsInt() (int64, bool) { return v.intVal, v.Kind == KindInt }

// AsFloat returns the float payload and whether Kind was KindFloat.
func (v Value) AsFloat() (float64, bool) { return v.floatVal, v.Kind == KindFloat }

// AsString returns the string payload and whether Kind was KindString.
func (v Value) AsString() (string, bool) { return v.stringVal, v.Kind == KindString }

// AsBytes returns the byte-string payload and whether Kind was KindBytes.
func (v Value) AsBytes() ([]byte, bool) { return v.bytesVal, v.Kind == KindBytes }

// AsList returns the list payload and whether Kind was KindList.
func (v Value) AsList() ([]Value, bool) { return v.listVal, v.Kind == KindList }

// AsMap returns the map payload and whether Kind was KindMap.
func (v Value) AsMap() (map[string]Value, bool) { return v.mapVal, v.Kind == KindMap }

// AsDecimal returns the decimal payload and whether Kind was KindDecimal.
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.decVal, v.Kind == KindDecimal }

// AsNode returns the node payload and whether Kind was KindNode.
func (v Value) AsNode() (*Node, bool) { return v.nodeVal, v.Kind == KindNode }

// AsRelationship returns the relationship payload and whether Kind was KindRelationship.
func (v Value) AsRelationship() (*Relationship, bool) { return v.relVal, v.Kind == KindRelationship }

// AsUnboundRelationship returns the unbound-relationship payload.
func (v Value) AsUnboundRelationship() (*UnboundRelationship, bool) {
	return v.unboundRel, v.Kind == KindUnboundRelationship
}

// AsPath returns the path payload and whether Kind was KindPath.
func (v Value) AsPath() (*Path, bool) { return v.pathVal, v.Kind == KindPath }

func (v Value) AsDate() (Date, bool)                   { return v.dateVal, v.Kind == KindDate }
func (v Value) AsLocalTime() (LocalTime, bool)         { return v.localTimeVal, v.Kind == KindLocalTime }
func (v Value) AsTime() (Time, bool)                   { return v.timeVal, v.Kind == KindTime }
func (v Value) AsLocalDateTime() (LocalDateTime, bool) { return v.localDTVal, v.Kind == KindLocalDateTime }
func (v Value) AsDateTime() (DateTime, bool)           { return v.dateTimeVal, v.Kind == KindDateTime }
func (v Value) AsDuration() (Duration, bool)           { return v.durationVal, v.Kind == KindDuration }
func (v Value) AsPoint2D() (Point2D, bool)             { return v.point2DVal, v.Kind == KindPoint2D }
func (v Value) AsPoint3D() (Point3D, bool)             { return v.point3DVal, v.Kind == KindPoint3D }

// ConversionError describes a Value whose observed Kind does not match what
// the caller asked for. The As* accessors above do not return it; they report
// a mismatch through their bool result.
type ConversionError struct {
	Wanted Kind
	Got    Kind
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("value: cannot convert %s to %s", e.Got, e.Wanted)
}

// Time wraps a wall-clock time-of-day with a UTC offset, mirroring the wire
// Time structure (distinct from LocalTime, which carries no offset).
type Time struct {
	Nanoseconds int64
	OffsetSecs  int
}

type LocalTime struct {
	Nanoseconds int64
}

type Date struct {
	EpochDays int64
}

type LocalDateTime struct {
	Seconds     int64
	Nanoseconds int64
}

type DateTime struct {
	Seconds     int64
	Nanoseconds int64
	OffsetSecs  int
	Zone        string // named zone id; mutually exclusive with OffsetSecs>0 use, empty if offset-only
}

type Duration struct {
	Months  int64
	Days    int64
	Seconds int64
	Nanos   int64
}

type Point2D struct {
	SRID int64
	X, Y float64
}

type Point3D struct {
	SRID    int64
	X, Y, Z float64
}

// Time is also used as std time.Time conversion helpers.
func (d Date) Time() time.Time {
	return time.Unix(d.EpochDays*86400, 0).UTC()
}
