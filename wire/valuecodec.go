package wire

import (
	"encoding/binary"
	"math"

	"github.com/sumyiren/neo4rs-go/value"
)

// EncodeValue appends v's wire encoding to buf and returns the extended
// slice. It is a pure function over byte buffers so it can be exercised by
// offline fuzzing, per spec §9.
func EncodeValue(buf []byte, v value.Value) ([]byte, error) {
	switch v.Kind {
	case value.KindNull:
		return append(buf, markerNull), nil
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(buf, markerTrue), nil
		}
		return append(buf, markerFalse), nil
	case value.KindInt:
		i, _ := v.AsInt()
		return encodeInt(buf, i), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		buf = append(buf, markerFloat64)
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(f)), nil
	case value.KindString:
		s, _ := v.AsString()
		return encodeString(buf, s)
	case value.KindBytes:
		b, _ := v.AsBytes()
		return encodeBytes(buf, b)
	case value.KindList:
		list, _ := v.AsList()
		return encodeList(buf, list)
	case value.KindMap:
		m, _ := v.AsMap()
		return encodeMap(buf, m)
	case value.KindNode:
		n, _ := v.AsNode()
		return encodeNode(buf, n)
	case value.KindRelationship:
		r, _ := v.AsRelationship()
		return encodeRelationship(buf, r)
	case value.KindUnboundRelationship:
		r, _ := v.AsUnboundRelationship()
		return encodeUnboundRelationship(buf, r)
	case value.KindPath:
		p, _ := v.AsPath()
		return encodePath(buf, p)
	default:
		return nil, errUnknownTypeTag(byte(v.Kind))
	}
}

func encodeInt(buf []byte, i int64) []byte {
	switch {
	case i >= tinyIntMinNegative && i <= tinyIntMaxPositive:
		return append(buf, byte(int8(i)))
	case i >= math.MinInt8 && i <= math.MaxInt8:
		return append(buf, markerInt8, byte(int8(i)))
	case i >= math.MinInt16 && i <= math.MaxInt16:
		buf = append(buf, markerInt16)
		return binary.BigEndian.AppendUint16(buf, uint16(int16(i)))
	case i >= math.MinInt32 && i <= math.MaxInt32:
		buf = append(buf, markerInt32)
		return binary.BigEndian.AppendUint32(buf, uint32(int32(i)))
	default:
		buf = append(buf, markerInt64)
		return binary.BigEndian.AppendUint64(buf, uint64(i))
	}
}

func encodeSizedHeader(buf []byte, n int, tinyBase byte, tinyMax int, m8, m16, m32 byte) ([]byte, error) {
	switch {
	case n <= tinyMax:
		return append(buf, tinyBase+byte(n)), nil
	case n <= math.MaxUint8:
		return append(buf, m8, byte(n)), nil
	case n <= math.MaxUint16:
		buf = append(buf, m16)
		return binary.BigEndian.AppendUint16(buf, uint16(n)), nil
	case n <= maxSize32:
		buf = append(buf, m32)
		return binary.BigEndian.AppendUint32(buf, uint32(n)), nil
	default:
		return nil, nil // caller checks n against maxSize32 first and returns the typed error
	}
}

func encodeString(buf []byte, s string) ([]byte, error) {
	n := len(s)
	if n > maxSize32 {
		return nil, errStringTooLong(n)
	}
	buf, _ = encodeSizedHeader(buf, n, tinyStringBase, tinyStringMax, string8, string16, string32)
	return append(buf, s...), nil
}

func encodeBytes(buf []byte, b []byte) ([]byte, error) {
	n := len(b)
	if n > maxSize32 {
		return nil, errBytesTooBig(n)
	}
	// Byte strings have no tiny-length form on the wire; always length-prefixed.
	switch {
	case n <= math.MaxUint8:
		buf = append(buf, string8, byte(n))
	case n <= math.MaxUint16:
		buf = append(buf, string16)
		buf = binary.BigEndian.AppendUint16(buf, uint16(n))
	default:
		buf = append(buf, string32)
		buf = binary.BigEndian.AppendUint32(buf, uint32(n))
	}
	return append(buf, b...), nil
}

func encodeList(buf []byte, list []value.Value) ([]byte, error) {
	n := len(list)
	if n > maxSize32 {
		return nil, errListTooLong(n)
	}
	var err error
	buf, err = encodeSizedHeader(buf, n, tinyListBase, tinyListMax, list8, list16, list32)
	if err != nil {
		return nil, err
	}
	for _, item := range list {
		buf, err = EncodeValue(buf, item)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeMap(buf []byte, m map[string]value.Value) ([]byte, error) {
	n := len(m)
	if n > maxSize32 {
		return nil, errMapTooBig(n)
	}
	var err error
	buf, err = encodeSizedHeader(buf, n, tinyMapBase, tinyMapMax, map8, map16, map32)
	if err != nil {
		return nil, err
	}
	for k, val := range m {
		buf, err = encodeString(buf, k)
		if err != nil {
			return nil, err
		}
		buf, err = EncodeValue(buf, val)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeStructHeader(buf []byte, fields int, sig byte) []byte {
	buf = append(buf, tinyStructBase+byte(fields))
	return append(buf, sig)
}

func encodeNode(buf []byte, n *value.Node) ([]byte, error) {
	buf = encodeStructHeader(buf, 4, sigNode)
	buf = encodeInt(buf, n.ID)
	var err error
	labels := make([]value.Value, len(n.Labels))
	for i, l := range n.Labels {
		labels[i] = value.String(l)
	}
	buf, err = encodeList(buf, labels)
	if err != nil {
		return nil, err
	}
	buf, err = encodeMap(buf, n.Properties)
	if err != nil {
		return nil, err
	}
	return encodeString(buf, n.ElementID)
}

func encodeRelationship(buf []byte, r *value.Relationship) ([]byte, error) {
	buf = encodeStructHeader(buf, 8, sigRelationship)
	buf = encodeInt(buf, r.ID)
	buf = encodeInt(buf, r.StartNodeID)
	buf = encodeInt(buf, r.EndNodeID)
	buf, err := encodeString(buf, r.Type)
	if err != nil {
		return nil, err
	}
	buf, err = encodeMap(buf, r.Properties)
	if err != nil {
		return nil, err
	}
	buf, err = encodeString(buf, r.ElementID)
	if err != nil {
		return nil, err
	}
	buf, err = encodeString(buf, r.StartElementID)
	if err != nil {
		return nil, err
	}
	return encodeString(buf, r.EndElementID)
}

func encodeUnboundRelationship(buf []byte, r *value.UnboundRelationship) ([]byte, error) {
	buf = encodeStructHeader(buf, 4, sigUnboundRelationship)
	buf = encodeInt(buf, r.ID)
	buf, err := encodeString(buf, r.Type)
	if err != nil {
		return nil, err
	}
	buf, err = encodeMap(buf, r.Properties)
	if err != nil {
		return nil, err
	}
	return encodeString(buf, r.ElementID)
}

func encodePath(buf []byte, p *value.Path) ([]byte, error) {
	buf = encodeStructHeader(buf, 3, sigPath)
	nodes := make([]value.Value, len(p.Nodes))
	for i := range p.Nodes {
		nodes[i] = value.NodeValue(&p.Nodes[i])
	}
	buf, err := encodeList(buf, nodes)
	if err != nil {
		return nil, err
	}
	rels := make([]value.Value, len(p.Rels))
	for i := range p.Rels {
		rels[i] = value.UnboundRelValue(&p.Rels[i])
	}
	buf, err = encodeList(buf, rels)
	if err != nil {
		return nil, err
	}
	dirs := make([]value.Value, len(p.Dirs))
	for i, d := range p.Dirs {
		dirs[i] = value.Bool(d)
	}
	return encodeList(buf, dirs)
}

// decoder reads sequential values off a flat buffer, used both for
// top-level message field lists and nested value decoding.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, errInvalidTypeMarker(0)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, errInvalidTypeMarker(0)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// DecodeValue reads one Value from src and returns it along with the
// remaining unconsumed bytes.
func DecodeValue(src []byte) (value.Value, []byte, error) {
	d := &decoder{buf: src}
	v, err := d.value()
	if err != nil {
		return value.Value{}, nil, err
	}
	return v, d.buf[d.pos:], nil
}

func (d *decoder) value() (value.Value, error) {
	marker, err := d.byte()
	if err != nil {
		return value.Value{}, err
	}

	switch {
	case marker == markerNull:
		return value.Null, nil
	case marker == markerFalse:
		return value.Bool(false), nil
	case marker == markerTrue:
		return value.Bool(true), nil
	case marker == markerFloat64:
		b, err := d.take(8)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case marker == markerInt8:
		b, err := d.take(1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(int8(b[0]))), nil
	case marker == markerInt16:
		b, err := d.take(2)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(int16(binary.BigEndian.Uint16(b)))), nil
	case marker == markerInt32:
		b, err := d.take(4)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(int32(binary.BigEndian.Uint32(b)))), nil
	case marker == markerInt64:
		b, err := d.take(8)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(binary.BigEndian.Uint64(b))), nil
	case marker <= tinyIntMaxPositive || int8(marker) >= tinyIntMinNegative:
		return value.Int(int64(int8(marker))), nil
	case marker&0xF0 == tinyStringBase:
		return d.string(int(marker & 0x0F))
	case marker == string8:
		n, err := d.take(1)
		if err != nil {
			return value.Value{}, err
		}
		return d.string(int(n[0]))
	case marker == string16:
		n, err := d.take(2)
		if err != nil {
			return value.Value{}, err
		}
		return d.string(int(binary.BigEndian.Uint16(n)))
	case marker == string32:
		n, err := d.take(4)
		if err != nil {
			return value.Value{}, err
		}
		return d.string(int(binary.BigEndian.Uint32(n)))
	case marker&0xF0 == tinyListBase:
		return d.list(int(marker & 0x0F))
	case marker == list8:
		n, err := d.take(1)
		if err != nil {
			return value.Value{}, err
		}
		return d.list(int(n[0]))
	case marker == list16:
		n, err := d.take(2)
		if err != nil {
			return value.Value{}, err
		}
		return d.list(int(binary.BigEndian.Uint16(n)))
	case marker == list32:
		n, err := d.take(4)
		if err != nil {
			return value.Value{}, err
		}
		return d.list(int(binary.BigEndian.Uint32(n)))
	case marker&0xF0 == tinyMapBase:
		return d.mapValue(int(marker & 0x0F))
	case marker == map8:
		n, err := d.take(1)
		if err != nil {
			return value.Value{}, err
		}
		return d.mapValue(int(n[0]))
	case marker == map16:
		n, err := d.take(2)
		if err != nil {
			return value.Value{}, err
		}
		return d.mapValue(int(binary.BigEndian.Uint16(n)))
	case marker == map32:
		n, err := d.take(4)
		if err != nil {
			return value.Value{}, err
		}
		return d.mapValue(int(binary.BigEndian.Uint32(n)))
	case marker&0xF0 == tinyStructBase:
		return d.structValue(int(marker & 0x0F))
	default:
		return value.Value{}, errInvalidTypeMarker(marker)
	}
}

func (d *decoder) string(n int) (value.Value, error) {
	b, err := d.take(n)
	if err != nil {
		return value.Value{}, err
	}
	return value.String(string(b)), nil
}

func (d *decoder) list(n int) (value.Value, error) {
	items := make([]value.Value, n)
	for i := 0; i < n; i++ {
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		items[i] = v
	}
	return value.List(items), nil
}

func (d *decoder) mapValue(n int) (value.Value, error) {
	m := make(map[string]value.Value, n)
	for i := 0; i < n; i++ {
		k, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		ks, ok := k.AsString()
		if !ok {
			return value.Value{}, errInvalidTypeMarker(0)
		}
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		m[ks] = v
	}
	return value.Map(m), nil
}

func (d *decoder) structValue(fields int) (value.Value, error) {
	sig, err := d.byte()
	if err != nil {
		return value.Value{}, err
	}
	switch sig {
	case sigNode:
		return d.decodeNode()
	case sigRelationship:
		return d.decodeRelationship()
	case sigUnboundRelationship:
		return d.decodeUnboundRelationship()
	case sigPath:
		return d.decodePath()
	default:
		// Any other structure, including the temporal and spatial ones
		// (Date, Time, DateTime, Duration, Point2D, Point3D, ...), is not
		// decoded: its fields are read through, then decoding fails with an
		// UnknownTypeTag error.
		for i := 0; i < fields; i++ {
			if _, err := d.value(); err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, errUnknownTypeTag(sig)
	}
}

func (d *decoder) decodeNode() (value.Value, error) {
	id, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	idI, _ := id.AsInt()
	labelsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	labelsL, _ := labelsV.AsList()
	labels := make([]string, len(labelsL))
	for i, l := range labelsL {
		labels[i], _ = l.AsString()
	}
	propsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	props, _ := propsV.AsMap()
	elementID := ""
	if d.pos < len(d.buf) {
		eidV, err := d.value()
		if err == nil {
			elementID, _ = eidV.AsString()
		}
	}
	return value.NodeValue(&value.Node{ID: idI, ElementID: elementID, Labels: labels, Properties: props}), nil
}

func (d *decoder) decodeRelationship() (value.Value, error) {
	idV, _ := d.value()
	startV, _ := d.value()
	endV, _ := d.value()
	typeV, _ := d.value()
	propsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	id, _ := idV.AsInt()
	start, _ := startV.AsInt()
	end, _ := endV.AsInt()
	relType, _ := typeV.AsString()
	props, _ := propsV.AsMap()

	r := &value.Relationship{ID: id, StartNodeID: start, EndNodeID: end, Type: relType, Properties: props}
	if d.pos < len(d.buf) {
		if eidV, err := d.value(); err == nil {
			r.ElementID, _ = eidV.AsString()
		}
	}
	if d.pos < len(d.buf) {
		if sV, err := d.value(); err == nil {
			r.StartElementID, _ = sV.AsString()
		}
	}
	if d.pos < len(d.buf) {
		if eV, err := d.value(); err == nil {
			r.EndElementID, _ = eV.AsString()
		}
	}
	return value.RelationshipValue(r), nil
}

func (d *decoder) decodeUnboundRelationship() (value.Value, error) {
	idV, _ := d.value()
	typeV, _ := d.value()
	propsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	id, _ := idV.AsInt()
	relType, _ := typeV.AsString()
	props, _ := propsV.AsMap()
	r := &value.UnboundRelationship{ID: id, Type: relType, Properties: props}
	if d.pos < len(d.buf) {
		if eidV, err := d.value(); err == nil {
			r.ElementID, _ = eidV.AsString()
		}
	}
	return value.UnboundRelValue(r), nil
}

func (d *decoder) decodePath() (value.Value, error) {
	nodesV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	relsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	dirsV, err := d.value()
	if err != nil {
		return value.Value{}, err
	}

	nodesL, _ := nodesV.AsList()
	nodes := make([]value.Node, len(nodesL))
	for i, nv := range nodesL {
		if n, ok := nv.AsNode(); ok {
			nodes[i] = *n
		}
	}
	relsL, _ := relsV.AsList()
	rels := make([]value.UnboundRelationship, len(relsL))
	for i, rv := range relsL {
		if r, ok := rv.AsUnboundRelationship(); ok {
			rels[i] = *r
		}
	}
	dirsL, _ := dirsV.AsList()
	dirs := make([]bool, len(dirsL))
	for i, dv := range dirsL {
		dirs[i], _ = dv.AsBool()
	}
	return value.PathValue(&value.Path{Nodes: nodes, Rels: rels, Dirs: dirs}), nil
}
