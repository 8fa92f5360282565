package parser

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
)

// sliceSource replays records
type sliceSource struct {
	records []*Record
}

func (s *sliceSource) Next() (*Record, error) {
	if len(s.records) == 0 {
		return nil, io.EOF
	}
	r := s.records[0]
	s.records = s.records[1:]
	return r, nil
}

func source(data ...string) *sliceSource {
	s := &sliceSource{}
	for _, d := range data {
		s.records = append(s.records, NewRecord(d))
	}
	return s
}

// TestTypeIndexBuild tests indexing, duplicates and lookup fallback
func TestTypeIndexBuild(t *testing.T) {
	x := NewTypeIndex()
	stats, err := x.Build(source(
		pointData(1, 1),
		geomData(1, 1, [2]int{1, 1}),
		pointData(1, 2),
		"22000500"+"1"+"0001"+"000001000001 000001",
		lineData(600, 0),
		"ZZ000001",
		"99",
		pointData(9, 9),
	))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !x.Built() {
		t.Errorf("Expected index to be built")
	}
	if stats.Records != 5 {
		t.Errorf("Expected 5 records, got %d", stats.Records)
	}
	if stats.Skipped != 1 {
		t.Errorf("Expected 1 skipped record, got %d", stats.Skipped)
	}
	if len(stats.Duplicates) != 1 || stats.Duplicates[0] != (RecordKey{Type: RecordPoint, ID: 1}) {
		t.Errorf("Expected duplicate POINTREC 1, got %v", stats.Duplicates)
	}

	p, ok := x.Lookup(RecordPoint, 1)
	if !ok || p.IntOrZero(9, 14) != 2 {
		t.Errorf("Expected the last POINTREC 1 to win, got %v", p)
	}
	if _, ok := x.Lookup(RecordPoint, 9); ok {
		t.Errorf("Expected records after the terminator to be ignored")
	}
	if g, ok := x.Lookup(RecordGeometry, 500); !ok || g.Type() != RecordGeometry3D {
		t.Errorf("Expected GEOMETRY lookup to fall back to GEOMETRY3D, got %v", g)
	}
	if x.Size(RecordLine) < 601 {
		t.Errorf("Expected line slots to grow past id 600, got %d", x.Size(RecordLine))
	}

	if _, err := x.Build(source()); !errors.Is(err, ErrIndexBuilt) {
		t.Errorf("Expected ErrIndexBuilt, got %v", err)
	}
	x.Invalidate()
	if x.Built() {
		t.Errorf("Expected index to be invalidated")
	}
	if _, ok := x.Lookup(RecordPoint, 1); ok {
		t.Errorf("Expected empty index after Invalidate")
	}
}

// TestIndexedGrouperOrder tests anchor order and group contents
func TestIndexedGrouperOrder(t *testing.T) {
	x := NewTypeIndex()
	_, err := x.Build(source(
		lineData(2, 11, 5),
		pointData(3, 10),
		pointData(1, 10, 4),
		geomData(10, 1, [2]int{1, 1}),
		geomData(11, 2, [2]int{1, 1}, [2]int{2, 2}),
		attData(4, "FC0001"),
		attData(5, "FC0002"),
		"11000007"+"ABCD"+"03"+"Foo",
		"99",
	))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	g := newIndexedGrouper(x)
	want := []struct {
		anchor RecordType
		id     int
		types  []RecordType
	}{
		{RecordName, 7, []RecordType{RecordName}},
		{RecordPoint, 1, []RecordType{RecordPoint, RecordGeometry, RecordAttribute}},
		{RecordPoint, 3, []RecordType{RecordPoint, RecordGeometry}},
		{RecordLine, 2, []RecordType{RecordLine, RecordGeometry, RecordAttribute}},
	}
	for _, w := range want {
		group, errs := g.Next()
		if len(errs) != 0 {
			t.Errorf("Unexpected errors: %v", errs)
		}
		if group == nil {
			t.Fatalf("Expected %v %d, got end of index", w.anchor, w.id)
		}
		if group[0].Type() != w.anchor || group[0].ID() != w.id {
			t.Errorf("Expected anchor %v %d, got %v", w.anchor, w.id, group[0])
		}
		if got := groupTypes(group); !equalTypes(got, w.types) {
			t.Errorf("Expected %v, got %v", w.types, got)
		}
	}
	if group, _ := g.Next(); group != nil {
		t.Errorf("Expected end of index, got %v", group)
	}

	g.rewind()
	if group, _ := g.Next(); group == nil || group[0].Type() != RecordName {
		t.Errorf("Expected rewind to restart at the name record")
	}
}

// TestIndexedGrouperMissingReference tests unresolved references
func TestIndexedGrouperMissingReference(t *testing.T) {
	x := NewTypeIndex()
	if _, err := x.Build(source(pointData(1, 99, 0, 8), "99")); err != nil {
		t.Fatal(err)
	}

	group, errs := newIndexedGrouper(x).Next()
	if len(group) != 1 {
		t.Errorf("Expected the anchor alone, got %v", group)
	}
	if len(errs) != 2 {
		t.Fatalf("Expected 2 reference errors, got %v", errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrReference) {
			t.Errorf("Expected ErrReference, got %v", err)
		}
	}
	var missing *ErrMissingRecord
	if !errors.As(errs[0], &missing) || missing.Referenced != RecordGeometry || missing.ID != 99 {
		t.Errorf("Expected missing GEOMETRY 99, got %v", errs[0])
	}
}
