package parser

import (
	"fmt"
	"strings"
)

// MaxLinks bounds the link, part and ring lists of a single feature.
const MaxLinks = 5000

// Feature is one translated record group.
type Feature struct {
	// ID is the feature id: the reader's base id plus a running counter
	ID int64
	// Class is the output class, e.g. "GENERIC_POINT" or "BOUNDARYLINE_POLY"
	Class string
	// AnchorType and AnchorID identify the record that opened the group
	AnchorType RecordType
	AnchorID   int
	// Geometry is nil for features without geometry (nodes, collections,
	// names without position)
	Geometry *Geometry
	// Attributes holds the structural fields of the anchor records and the
	// decoded attribute values, keyed by field name. Values with a code
	// list description are joined by a NAME_DESC entry.
	Attributes map[string]interface{}
	// AttributeList is the decoded attribute values in record order
	AttributeList []AttributeValue
	// GeomID is the GEOM_ID of the group's geometry record, 0 if none
	GeomID int
	// LinkIDs are the line geometry ids bounding a polygon or meeting at a
	// node; Directions holds the matching direction flags
	LinkIDs    []int
	Directions []int
	// RingStarts indexes LinkIDs where each ring of a polygon starts
	RingStarts []int
	// PartIDs and PartTypes list the members of a collection or complex
	// polygon
	PartIDs   []int
	PartTypes []RecordType
	// TileName echoes the section the feature was read from
	TileName string
}

func newFeature(class string, anchor *Record) *Feature {
	return &Feature{
		Class:      class,
		AnchorType: anchor.Type(),
		AnchorID:   anchor.ID(),
		Attributes: make(map[string]interface{}),
	}
}

// Attribute returns the value stored under name.
func (f *Feature) Attribute(name string) (interface{}, bool) {
	v, ok := f.Attributes[name]
	return v, ok
}

// AttributeString returns the value stored under name formatted as text.
func (f *Feature) AttributeString(name string) (string, bool) {
	v, ok := f.Attributes[name]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return strings.TrimSpace(fmt.Sprint(v)), true
}

// applyAttributes publishes decoded attribute values. A code that repeats
// within the group keeps its first value, the way a single valued field
// would.
func (f *Feature) applyAttributes(values []AttributeValue) {
	f.AttributeList = append(f.AttributeList, values...)
	for _, v := range values {
		name := v.FieldName()
		if _, exists := f.Attributes[name]; exists {
			continue
		}
		f.Attributes[name] = v.Value
		if v.HasDescription {
			f.Attributes[name+"_DESC"] = v.Description
		}
	}
}

// findRecord returns the first record of type t in group
func findRecord(group []*Record, t RecordType) *Record {
	for _, r := range group {
		if r.Type() == t {
			return r
		}
	}
	return nil
}

// findGeometry returns the first 2D or 3D geometry record of group
func findGeometry(group []*Record) *Record {
	for _, r := range group {
		if r.Type().IsGeometry() {
			return r
		}
	}
	return nil
}
