package value

import "github.com/gofrs/uuid"

// ElementUUID parses a Node/Relationship ElementID as a UUID, for servers
// whose element ids are plain UUID strings rather than the legacy numeric
// ID scheme. It returns ok=false when the string does not parse, which is
// expected for servers still on the numeric-only ID scheme — callers should
// fall back to the numeric ID field in that case.
//
// Mirrors the teacher's ext/gofrs-uuid adapter, which bridges pgtype's UUID
// wire encoding to gofrs/uuid.UUID; here the bridge is a string parse
// instead of a 16-byte wire decode, since ElementID already arrives decoded
// as a string field.
func ElementUUID(elementID string) (uuid.UUID, bool) {
	id, err := uuid.FromString(elementID)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// UUID returns n.ElementID parsed as a UUID.
func (n Node) UUID() (uuid.UUID, bool) { return ElementUUID(n.ElementID) }

// UUID returns r.ElementID parsed as a UUID.
func (r Relationship) UUID() (uuid.UUID, bool) { return ElementUUID(r.ElementID) }

// UUID returns r.ElementID parsed as a UUID.
func (r UnboundRelationship) UUID() (uuid.UUID, bool) { return ElementUUID(r.ElementID) }
