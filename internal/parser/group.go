package parser

import (
	"io"
)

// MaxGroupSize bounds the number of records in one record group.
const MaxGroupSize = 100

// featureStartTypes are the record types that always open a new group
var featureStartTypes = map[RecordType]bool{
	RecordName:           true,
	RecordNode:           true,
	RecordLine:           true,
	RecordPoint:          true,
	RecordPolygon:        true,
	RecordComplexPolygon: true,
	RecordCollection:     true,
	RecordText:           true,
	RecordComment:        true,
}

// belongsToGroup decides whether candidate continues group.
//
// A group opening with POLYGON followed by CHAIN may be the run of
// POLYGON/CHAIN pairs of a complex polygon: it keeps absorbing records
// until its closing GEOMETRY, and once the CPOLY record has been seen only
// GEOMETRY and ATTREC records may follow. Otherwise a feature start record
// or a second record of a type already present (ATTREC excepted) ends the
// group.
func belongsToGroup(group []*Record, candidate *Record) bool {
	ct := candidate.Type()

	if len(group) >= 2 && group[0].Type() == RecordPolygon && group[1].Type() == RecordChain {
		gotCPoly := false
		for _, r := range group {
			if r.Type() == RecordComplexPolygon {
				gotCPoly = true
			}
		}
		if gotCPoly && ct != RecordGeometry && ct != RecordAttribute {
			return false
		}
		return group[len(group)-1].Type() != RecordGeometry
	}

	if len(group) > 0 && featureStartTypes[ct] {
		return false
	}

	if ct != RecordAttribute {
		for _, r := range group {
			if r.Type() == ct {
				return false
			}
		}
	}
	return true
}

// sequentialGrouper assembles record groups from consecutive records. It
// keeps the one record that ended the previous group for the next call.
type sequentialGrouper struct {
	rr    *recordReader
	saved *Record
}

func newSequentialGrouper(rr *recordReader) *sequentialGrouper {
	return &sequentialGrouper{rr: rr}
}

// readRecord returns the saved record if there is one, otherwise the next
// record of the stream. io.EOF is returned at the end of the stream.
func (g *sequentialGrouper) readRecord() (*Record, error) {
	if g.saved != nil {
		rec := g.saved
		g.saved = nil
		return rec, nil
	}
	return g.rr.Next()
}

// position returns the offset of the first record not yet consumed by a
// group.
func (g *sequentialGrouper) position() int64 {
	if g.saved != nil && g.saved.Offset() >= 0 {
		return g.saved.Offset()
	}
	return g.rr.Offset()
}

// seek drops the saved record and moves the stream to offset.
func (g *sequentialGrouper) seek(offset int64) error {
	g.saved = nil
	return g.rr.Seek(offset)
}

// Next returns the next record group. A nil group with a nil error means
// the end of the section was reached: end of stream or the volume
// terminator, which stays saved so later calls also report the end.
//
// A group that reaches MaxGroupSize is returned as it is together with an
// error marked ErrCapacity; the record that did not fit starts the next
// group. Errors marked ErrFormat come from the record stream and end the
// file.
func (g *sequentialGrouper) Next() ([]*Record, error) {
	var group []*Record
	for {
		rec, err := g.readRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.Type() == RecordVolumeTerminator {
			g.saved = rec
			break
		}
		if len(group) >= MaxGroupSize {
			g.saved = rec
			return group, capacityError(&ErrGroupTooLarge{Anchor: group[0].Type(), Limit: MaxGroupSize})
		}
		if !belongsToGroup(group, rec) {
			g.saved = rec
			break
		}
		group = append(group, rec)
	}
	return group, nil
}
