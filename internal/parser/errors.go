package parser

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error categories. Every error produced by this package is marked with
// exactly one of them, so callers can branch with errors.Is without knowing
// the concrete type.
var (
	// ErrFormat marks malformed input that stops processing of the file.
	ErrFormat = errors.New("ntf: format error")
	// ErrDecode marks a record or group that could not be decoded. The
	// group (or the geometry/attribute) is dropped and reading continues.
	ErrDecode = errors.New("ntf: decode error")
	// ErrReference marks a cross reference that could not be resolved.
	// The feature is still produced without the missing part.
	ErrReference = errors.New("ntf: reference error")
	// ErrCapacity marks a group or link list that hit a hard limit. The
	// feature is produced capped and reading continues.
	ErrCapacity = errors.New("ntf: capacity exceeded")
)

// ErrIndexBuilt is returned when BuildIndex is called on a reader whose
// index is already current.
var ErrIndexBuilt = errors.New("ntf: record index already built")

func formatError(err error) error    { return errors.Mark(err, ErrFormat) }
func decodeError(err error) error    { return errors.Mark(err, ErrDecode) }
func referenceError(err error) error { return errors.Mark(err, ErrReference) }
func capacityError(err error) error  { return errors.Mark(err, ErrCapacity) }

// ErrLineTooLong indicates no line terminator within the maximum line length
type ErrLineTooLong struct {
	Offset int64
	Limit  int
}

func (e *ErrLineTooLong) Error() string {
	return fmt.Sprintf("line at offset %d exceeds %d characters without a terminator", e.Offset, e.Limit)
}

// ErrMissingTerminator indicates a line that does not end with the '%' marker
type ErrMissingTerminator struct {
	Offset int64
	Line   string
}

func (e *ErrMissingTerminator) Error() string {
	return fmt.Sprintf("line at offset %d has no record terminator: %q", e.Offset, e.Line)
}

// ErrInvalidContinuation indicates a continuation line without the "00" prefix
type ErrInvalidContinuation struct {
	Offset int64
	Line   string
}

func (e *ErrInvalidContinuation) Error() string {
	return fmt.Sprintf("invalid continuation line at offset %d: %q", e.Offset, e.Line)
}

// ErrFieldRange indicates a column range outside the record
type ErrFieldRange struct {
	Type       RecordType
	Start, End int
	Length     int
}

func (e *ErrFieldRange) Error() string {
	return fmt.Sprintf("field %d-%d out of range for %v record of length %d",
		e.Start, e.End, e.Type, e.Length)
}

// ErrInvalidHeader indicates a header record that cannot be used
type ErrInvalidHeader struct {
	Type   RecordType
	Reason string
}

func (e *ErrInvalidHeader) Error() string {
	if e.Type != 0 {
		return fmt.Sprintf("invalid %v record: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid header: %s", e.Reason)
}

// ErrUnknownAttributeCode indicates an attribute code with no descriptor
type ErrUnknownAttributeCode struct {
	Code     string
	RecordID int
}

func (e *ErrUnknownAttributeCode) Error() string {
	return fmt.Sprintf("attribute record %d: unknown attribute code %q", e.RecordID, e.Code)
}

// ErrInvalidAttribute indicates an attribute value that cannot be extracted
type ErrInvalidAttribute struct {
	Code     string
	RecordID int
	Reason   string
}

func (e *ErrInvalidAttribute) Error() string {
	return fmt.Sprintf("attribute record %d: %s: %s", e.RecordID, e.Code, e.Reason)
}

// ErrUnsupportedGeometry indicates a GTYPE code the decoder does not handle
type ErrUnsupportedGeometry struct {
	GeomID int
	GType  int
	Dim3   bool
}

func (e *ErrUnsupportedGeometry) Error() string {
	if e.Dim3 {
		return fmt.Sprintf("geometry %d: unhandled 3D GTYPE %d", e.GeomID, e.GType)
	}
	return fmt.Sprintf("geometry %d: unhandled GTYPE %d", e.GeomID, e.GType)
}

// ErrInvalidGeometry indicates a geometry record whose coordinates cannot be used
type ErrInvalidGeometry struct {
	Type   GeometryType
	GeomID int
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	if e.Type != GeometryTypeUnknown {
		return fmt.Sprintf("invalid geometry %d (%v): %s", e.GeomID, e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid geometry %d: %s", e.GeomID, e.Reason)
}

// ErrArcCenter indicates three arc points whose center cannot be computed
type ErrArcCenter struct {
	Points [3][2]float64
}

func (e *ErrArcCenter) Error() string {
	return fmt.Sprintf("cannot compute arc center from collinear points %v", e.Points)
}

// ErrMissingRecord indicates an anchor references a record absent from the index
type ErrMissingRecord struct {
	Anchor     RecordType
	AnchorID   int
	Referenced RecordType
	ID         int
}

func (e *ErrMissingRecord) Error() string {
	return fmt.Sprintf("%v %d references missing %v %d", e.Anchor, e.AnchorID, e.Referenced, e.ID)
}

// ErrMissingGeometry indicates a polygon link whose line geometry is not cached
type ErrMissingGeometry struct {
	GeomID int
}

func (e *ErrMissingGeometry) Error() string {
	return fmt.Sprintf("line geometry %d not in cache", e.GeomID)
}

// ErrRingNotClosed indicates edges that do not join into closed rings
type ErrRingNotClosed struct {
	Edges int
}

func (e *ErrRingNotClosed) Error() string {
	return fmt.Sprintf("failed to close ring from %d edges", e.Edges)
}

// ErrGroupTooLarge indicates a record group above the group size limit
type ErrGroupTooLarge struct {
	Anchor RecordType
	Limit  int
}

func (e *ErrGroupTooLarge) Error() string {
	return fmt.Sprintf("%v record group exceeds %d records", e.Anchor, e.Limit)
}

// ErrTooManyLinks indicates a link or part list above the per-feature limit
type ErrTooManyLinks struct {
	Anchor   RecordType
	AnchorID int
	Count    int
	Limit    int
}

func (e *ErrTooManyLinks) Error() string {
	return fmt.Sprintf("%v %d lists %d links, limit is %d", e.Anchor, e.AnchorID, e.Count, e.Limit)
}

// ErrTranslate indicates a group that no translator could turn into a feature
type ErrTranslate struct {
	Anchor   RecordType
	AnchorID int
	Product  Product
	Reason   string
}

func (e *ErrTranslate) Error() string {
	return fmt.Sprintf("cannot translate %v %d group in %v file: %s", e.Anchor, e.AnchorID, e.Product, e.Reason)
}
