package parser

import (
	"io"
)

// recordSource is anything that yields records until io.EOF
type recordSource interface {
	Next() (*Record, error)
}

// RecordKey identifies a record by type and id.
type RecordKey struct {
	Type RecordType
	ID   int
}

// IndexStats summarises an index build.
type IndexStats struct {
	Records    int         // records indexed
	Skipped    int         // records with an invalid type or id
	Duplicates []RecordKey // keys seen more than once; the last record wins
}

// TypeIndex maps (record type, record id) to records, one growable slice
// per record type. A nil slot means no such record.
type TypeIndex struct {
	slots [maxRecordType][]*Record
	built bool
}

// NewTypeIndex creates an empty, unbuilt index.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{}
}

// Built reports whether Build has run since the last Invalidate.
func (x *TypeIndex) Built() bool { return x.built }

// Invalidate drops every record so the index can be built again.
func (x *TypeIndex) Invalidate() {
	for i := range x.slots {
		x.slots[i] = nil
	}
	x.built = false
}

// Build reads src up to the volume terminator (or the end of the stream)
// and indexes every record by type and id. Building an index that is
// already built fails with ErrIndexBuilt. Errors from src other than io.EOF
// abort the build and leave the index unbuilt.
func (x *TypeIndex) Build(src recordSource) (IndexStats, error) {
	var stats IndexStats
	if x.built {
		return stats, ErrIndexBuilt
	}
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			x.Invalidate()
			return stats, err
		}
		if rec.Type() == RecordVolumeTerminator {
			break
		}
		ok, dup := x.put(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Records++
		if dup {
			stats.Duplicates = append(stats.Duplicates, RecordKey{Type: rec.Type(), ID: rec.ID()})
		}
	}
	x.built = true
	return stats, nil
}

// put stores rec, growing the slice of its type to max(id+1, 2*size+10).
// dup reports that a record with the same key was replaced.
func (x *TypeIndex) put(rec *Record) (ok, dup bool) {
	t, id := rec.Type(), rec.ID()
	if t <= 0 || t >= maxRecordType || id < 0 {
		return false, false
	}
	slot := x.slots[t]
	if id >= len(slot) {
		size := 2*len(slot) + 10
		if id+1 > size {
			size = id + 1
		}
		grown := make([]*Record, size)
		copy(grown, slot)
		x.slots[t] = grown
		slot = grown
	}
	dup = slot[id] != nil
	slot[id] = rec
	return true, dup
}

// Size returns the length of the id range allocated for a type.
func (x *TypeIndex) Size(t RecordType) int {
	if t < 0 || t >= maxRecordType {
		return 0
	}
	return len(x.slots[t])
}

// Lookup returns the record of type t with the given id. A GEOMETRY lookup
// that finds nothing falls back to GEOMETRY3D with the same id.
func (x *TypeIndex) Lookup(t RecordType, id int) (*Record, bool) {
	if t >= 0 && t < maxRecordType && id >= 0 && id < len(x.slots[t]) && x.slots[t][id] != nil {
		return x.slots[t][id], true
	}
	if t == RecordGeometry {
		return x.Lookup(RecordGeometry3D, id)
	}
	return nil, false
}

// anchorTypes are the record types that start an indexed group, in the
// order the walk visits them.
var anchorTypes = []RecordType{
	RecordName,
	RecordPoint,
	RecordNode,
	RecordLine,
	RecordPolygon,
	RecordComplexPolygon,
	RecordCollection,
	RecordText,
}

// indexedGrouper walks the anchors of a built TypeIndex, type by type in
// anchorTypes order and by increasing id within a type, and builds each
// group from the references held in its anchor. Id 0 is never an anchor.
type indexedGrouper struct {
	index    *TypeIndex
	typeSlot int
	prevID   int
}

func newIndexedGrouper(index *TypeIndex) *indexedGrouper {
	return &indexedGrouper{index: index}
}

// rewind restarts the walk at the first anchor.
func (g *indexedGrouper) rewind() {
	g.typeSlot = 0
	g.prevID = 0
}

// nextAnchor advances to the next indexed anchor record.
func (g *indexedGrouper) nextAnchor() *Record {
	for g.typeSlot < len(anchorTypes) {
		t := anchorTypes[g.typeSlot]
		g.prevID++
		if g.prevID >= g.index.Size(t) {
			g.typeSlot++
			g.prevID = 0
			continue
		}
		if rec, ok := g.index.Lookup(t, g.prevID); ok && rec.Type() == t {
			return rec
		}
	}
	return nil
}

// indexGroup collects the records of one indexed group
type indexGroup struct {
	index   *TypeIndex
	anchor  *Record
	records []*Record
	errs    []error
	capped  bool
}

// add looks up a referenced record and appends it. Id 0 means no
// reference. Records already in the group are not added twice.
func (b *indexGroup) add(t RecordType, id int) {
	if id <= 0 {
		return
	}
	rec, ok := b.index.Lookup(t, id)
	if !ok {
		b.errs = append(b.errs, referenceError(&ErrMissingRecord{
			Anchor:     b.anchor.Type(),
			AnchorID:   b.anchor.ID(),
			Referenced: t,
			ID:         id,
		}))
		return
	}
	for _, r := range b.records {
		if r == rec {
			return
		}
	}
	if len(b.records) >= MaxGroupSize {
		if !b.capped {
			b.capped = true
			b.errs = append(b.errs, capacityError(&ErrGroupTooLarge{Anchor: b.anchor.Type(), Limit: MaxGroupSize}))
		}
		return
	}
	b.records = append(b.records, rec)
}

// Next returns the next indexed group with the non fatal errors met while
// building it. A nil group means every anchor has been visited.
func (g *indexedGrouper) Next() ([]*Record, []error) {
	anchor := g.nextAnchor()
	if anchor == nil {
		return nil, nil
	}
	b := &indexGroup{index: g.index, anchor: anchor, records: []*Record{anchor}}

	switch anchor.Type() {
	case RecordPoint, RecordLine:
		b.add(RecordGeometry, anchor.IntOrZero(9, 14))
		attCount := 0
		if anchor.Len() >= 16 {
			attCount = anchor.IntOrZero(15, 16)
		}
		for i := 0; i < attCount; i++ {
			b.add(RecordAttribute, anchor.IntOrZero(17+6*i, 22+6*i))
		}

	case RecordText:
		selCount := anchor.IntOrZero(9, 10)
		if selCount < 0 {
			selCount = 0
		}
		for i := 0; i < selCount; i++ {
			start := 11 + 12*i + 6
			b.add(RecordTextPosition, anchor.IntOrZero(start, start+5))
		}
		for _, pos := range b.records[1:] {
			if pos.Type() != RecordTextPosition {
				continue
			}
			numTexr := pos.IntOrZero(9, 10)
			for j := 0; j < numTexr; j++ {
				b.add(RecordTextRep, pos.IntOrZero(11+12*j, 16+12*j))
				b.add(RecordGeometry, pos.IntOrZero(17+12*j, 22+12*j))
			}
		}
		attCount := 0
		if anchor.Len() >= 10+selCount*12+2 {
			attCount = anchor.IntOrZero(11+selCount*12, 12+selCount*12)
		}
		for i := 0; i < attCount; i++ {
			start := 13 + selCount*12 + 6*i
			b.add(RecordAttribute, anchor.IntOrZero(start, start+5))
		}

	case RecordNode:
		b.add(RecordGeometry, anchor.IntOrZero(9, 14))

	case RecordCollection:
		parts := anchor.IntOrZero(9, 12)
		if parts < 0 {
			parts = 0
		}
		attOffset := 13 + parts*8
		attCount := 0
		if anchor.Len() > attOffset+2 {
			attCount = anchor.IntOrZero(attOffset, attOffset+1)
		}
		for i := 0; i < attCount; i++ {
			start := attOffset + 2 + 6*i
			b.add(RecordAttribute, anchor.IntOrZero(start, start+5))
		}

	case RecordPolygon:
		b.add(RecordChain, anchor.IntOrZero(9, 14))
		if anchor.Len() >= 20 {
			b.add(RecordGeometry, anchor.IntOrZero(15, 20))
		}
		attCount := 0
		if anchor.Len() >= 22 {
			attCount = anchor.IntOrZero(21, 22)
		}
		for i := 0; i < attCount; i++ {
			b.add(RecordAttribute, anchor.IntOrZero(23+6*i, 28+6*i))
		}

	case RecordComplexPolygon:
		polyCount := anchor.IntOrZero(9, 12)
		if polyCount < 0 {
			polyCount = 0
		}
		postPoly := polyCount*7 + 12
		if anchor.Len() >= postPoly+6 {
			b.add(RecordGeometry, anchor.IntOrZero(postPoly+1, postPoly+6))
		}
		if anchor.Len() >= postPoly+8 {
			attCount := anchor.IntOrZero(postPoly+7, postPoly+8)
			for i := 0; i < attCount; i++ {
				b.add(RecordAttribute, anchor.IntOrZero(postPoly+9+6*i, postPoly+14+6*i))
			}
		}

	case RecordName:
		// Name records carry no references in the generic layout
	}

	return b.records, b.errs
}
