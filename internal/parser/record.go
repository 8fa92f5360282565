package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordType is the two digit record descriptor found in columns 1-2 of the
// first physical line of every record.
type RecordType int

// Record descriptors of NTF levels 1 to 5.
const (
	RecordVolumeHeader     RecordType = 1
	RecordDatabaseHeader   RecordType = 2
	RecordFeatureClass     RecordType = 5
	RecordSectionHeader    RecordType = 7
	RecordName             RecordType = 11
	RecordNamePosition     RecordType = 12
	RecordAttribute        RecordType = 14
	RecordPoint            RecordType = 15
	RecordNode             RecordType = 16
	RecordGeometry         RecordType = 21
	RecordGeometry3D       RecordType = 22
	RecordLine             RecordType = 23
	RecordChain            RecordType = 24
	RecordPolygon          RecordType = 31
	RecordComplexPolygon   RecordType = 33
	RecordCollection       RecordType = 34
	RecordAttributeDesc    RecordType = 40
	RecordCodeList         RecordType = 42
	RecordText             RecordType = 43
	RecordTextPosition     RecordType = 44
	RecordTextRep          RecordType = 45
	RecordGridHeader       RecordType = 50
	RecordGrid             RecordType = 51
	RecordComment          RecordType = 90
	RecordVolumeTerminator RecordType = 99
)

// maxRecordType bounds the descriptor space (two decimal digits).
const maxRecordType = 100

var recordTypeNames = map[RecordType]string{
	RecordVolumeHeader:     "VHR",
	RecordDatabaseHeader:   "DHR",
	RecordFeatureClass:     "FCR",
	RecordSectionHeader:    "SHR",
	RecordName:             "NAMEREC",
	RecordNamePosition:     "NAMEPOSTN",
	RecordAttribute:        "ATTREC",
	RecordPoint:            "POINTREC",
	RecordNode:             "NODEREC",
	RecordGeometry:         "GEOMETRY",
	RecordGeometry3D:       "GEOMETRY3D",
	RecordLine:             "LINEREC",
	RecordChain:            "CHAIN",
	RecordPolygon:          "POLYGON",
	RecordComplexPolygon:   "CPOLY",
	RecordCollection:       "COLLECT",
	RecordAttributeDesc:    "ATTDESC",
	RecordCodeList:         "CODELIST",
	RecordText:             "TEXTREC",
	RecordTextPosition:     "TEXTPOS",
	RecordTextRep:          "TEXTREP",
	RecordGridHeader:       "GRIDHREC",
	RecordGrid:             "GRIDREC",
	RecordComment:          "COMMENT",
	RecordVolumeTerminator: "VTR",
}

func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type-%02d", int(t))
}

// IsGeometry reports whether records of this type carry coordinates.
func (t RecordType) IsGeometry() bool {
	return t == RecordGeometry || t == RecordGeometry3D
}

// Record is one logical NTF record: the first physical line (type prefix
// included) followed by the payload of every continuation line.
//
// Fields are addressed with 1-based inclusive column numbers, the way the
// NTF record layouts are published.
type Record struct {
	typ    RecordType
	data   string
	offset int64
}

// NewRecord builds a record from already merged record data. The record type
// is taken from the first two characters.
func NewRecord(data string) *Record {
	return newRecordAt(data, -1)
}

func newRecordAt(data string, offset int64) *Record {
	typ := RecordType(-1)
	if len(data) >= 2 {
		typ = RecordType(atoi(data[:2]))
	}
	return &Record{typ: typ, data: data, offset: offset}
}

// Type returns the record descriptor.
func (r *Record) Type() RecordType { return r.typ }

// Data returns the merged record text.
func (r *Record) Data() string { return r.data }

// Len returns the length of the merged record text.
func (r *Record) Len() int { return len(r.data) }

// Offset returns the byte offset of the record's first line, or -1 when the
// record was not read from a stream.
func (r *Record) Offset() int64 { return r.offset }

// ID returns the record identifier held in columns 3-8 by every feature and
// geometry record.
func (r *Record) ID() int {
	return atoi(r.FieldOrEmpty(3, 8))
}

// Field returns columns start..end inclusive. A range that ends one column
// before it starts is an empty field; any range reaching past the record is
// an error.
func (r *Record) Field(start, end int) (string, error) {
	if start < 1 || end < start-1 || end > len(r.data) {
		return "", &ErrFieldRange{Type: r.typ, Start: start, End: end, Length: len(r.data)}
	}
	return r.data[start-1 : end], nil
}

// FieldOrEmpty is Field with range errors folded into an empty result.
func (r *Record) FieldOrEmpty(start, end int) string {
	s, err := r.Field(start, end)
	if err != nil {
		return ""
	}
	return s
}

// Int returns the integer value of columns start..end.
func (r *Record) Int(start, end int) (int, error) {
	s, err := r.Field(start, end)
	if err != nil {
		return 0, err
	}
	return atoi(s), nil
}

// IntOrZero is Int with range errors folded into zero.
func (r *Record) IntOrZero(start, end int) int {
	return atoi(r.FieldOrEmpty(start, end))
}

func (r *Record) String() string {
	return fmt.Sprintf("%v(%d)", r.typ, r.ID())
}

// fieldReader extracts several fields from one record and keeps the first
// range error, like bufio.Scanner keeps its first error.
type fieldReader struct {
	rec *Record
	err error
}

func newFieldReader(rec *Record) *fieldReader {
	return &fieldReader{rec: rec}
}

func (f *fieldReader) str(start, end int) string {
	s, err := f.rec.Field(start, end)
	if err != nil && f.err == nil {
		f.err = err
	}
	return s
}

func (f *fieldReader) int(start, end int) int {
	return atoi(f.str(start, end))
}

func (f *fieldReader) Err() error { return f.err }

// atoi parses a leading optionally signed decimal integer after any blanks.
// Anything that is not a number yields zero; trailing text is ignored.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// atof parses a leading decimal number after any blanks, zero on failure.
func atof(s string) float64 {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}
