package parser

import (
	"strings"
)

// FormatKind classifies the FINTER format of an attribute.
type FormatKind int

const (
	// FormatAlpha values pass through verbatim
	FormatAlpha FormatKind = iota
	// FormatInteger values are reformatted without leading zeros
	FormatInteger
	// FormatReal values carry an implied decimal point ("R9,3")
	FormatReal
	// FormatOther covers any other FINTER letter; values pass through
	FormatOther
)

func (k FormatKind) String() string {
	switch k {
	case FormatAlpha:
		return "Alpha"
	case FormatInteger:
		return "Integer"
	case FormatReal:
		return "Real"
	default:
		return "Other"
	}
}

func formatKindOf(finter string) FormatKind {
	if finter == "" {
		return FormatOther
	}
	switch finter[0] {
	case 'A':
		return FormatAlpha
	case 'I':
		return FormatInteger
	case 'R':
		return FormatReal
	default:
		return FormatOther
	}
}

// AttributeDescriptor describes one attribute code, from an ATTDESC record.
//
//	cols 3-4   VAL_TYPE  two character code
//	cols 5-7   FWIDTH    field width, 0 = variable (backslash terminated)
//	cols 8-12  FINTER    format, e.g. "A4", "I6", "R9,3"
//	cols 13-   ATT_NAME  long name up to '\' or end of record
type AttributeDescriptor struct {
	Code     string
	Width    int
	Format   string
	Kind     FormatKind
	Name     string
	CodeList *CodeList
}

// Precision returns the number of implied decimals of a Real format. ok is
// false when the format has no ",d" part.
func (d *AttributeDescriptor) Precision() (digits int, ok bool) {
	i := strings.IndexByte(d.Format, ',')
	if i < 0 {
		return 0, false
	}
	return atoi(d.Format[i+1:]), true
}

// parseAttributeDescriptor decodes an ATTDESC record. Records shorter than
// the fixed part are rejected.
func parseAttributeDescriptor(rec *Record) (*AttributeDescriptor, error) {
	if rec.Type() != RecordAttributeDesc || rec.Len() < 13 {
		return nil, decodeError(&ErrInvalidHeader{Type: rec.Type(), Reason: "attribute description shorter than 13 characters"})
	}
	data := rec.Data()
	end := strings.IndexByte(data[12:], '\\')
	if end < 0 {
		end = len(data)
	} else {
		end += 12
	}
	finter := strings.TrimRight(rec.FieldOrEmpty(8, 12), " ")
	return &AttributeDescriptor{
		Code:   rec.FieldOrEmpty(3, 4),
		Width:  rec.IntOrZero(5, 7),
		Format: finter,
		Kind:   formatKindOf(finter),
		Name:   strings.TrimRight(data[12:end], " "),
	}, nil
}

// codeEntry is one value/description pair of a code list
type codeEntry struct {
	Value       string
	Description string
}

// CodeList translates coded attribute values into descriptions. It is built
// from a CODELIST record:
//
//	cols 13-14 VAL_TYPE  attribute code the list belongs to
//	cols 15-19 FINTER    format of the coded values
//	cols 20-22 NUM_CODE  number of entries
//	cols 23-   value\description\ pairs
type CodeList struct {
	Code    string
	Format  string
	entries []codeEntry
}

// Len returns the number of entries.
func (c *CodeList) Len() int { return len(c.entries) }

// Lookup returns the description of a coded value. Values compare case
// insensitively.
func (c *CodeList) Lookup(value string) (string, bool) {
	for _, e := range c.entries {
		if strings.EqualFold(e.Value, value) {
			return e.Description, true
		}
	}
	return "", false
}

// parseCodeList decodes a CODELIST record. truncated reports that the record
// held fewer entries than NUM_CODE declared.
func parseCodeList(rec *Record) (list *CodeList, truncated bool) {
	list = &CodeList{
		Code:   rec.FieldOrEmpty(13, 14),
		Format: strings.TrimRight(rec.FieldOrEmpty(15, 19), " "),
	}
	declared := rec.IntOrZero(20, 22)
	if rec.Len() <= 22 {
		return list, declared > 0
	}

	text := rec.Data()[22:]
	for len(list.entries) < declared && text != "" {
		var e codeEntry
		e.Value, text = cutBackslash(text)
		e.Description, text = cutBackslash(text)
		list.entries = append(list.entries, e)
	}
	return list, len(list.entries) < declared
}

func cutBackslash(s string) (field, rest string) {
	before, after, found := strings.Cut(s, "\\")
	if !found {
		return s, ""
	}
	return before, after
}

// AttributeCatalog holds the attribute descriptors of one file, keyed by
// their two character code.
type AttributeCatalog struct {
	byCode map[string]*AttributeDescriptor
	order  []*AttributeDescriptor
}

// NewAttributeCatalog creates an empty catalog.
func NewAttributeCatalog() *AttributeCatalog {
	return &AttributeCatalog{byCode: make(map[string]*AttributeDescriptor)}
}

func catalogKey(code string) string {
	if len(code) > 2 {
		code = code[:2]
	}
	return strings.ToUpper(code)
}

// Add registers a descriptor. The first descriptor of a code wins.
func (c *AttributeCatalog) Add(d *AttributeDescriptor) bool {
	key := catalogKey(d.Code)
	if _, exists := c.byCode[key]; exists {
		return false
	}
	c.byCode[key] = d
	c.order = append(c.order, d)
	return true
}

// Lookup finds the descriptor for a code, comparing case insensitively.
func (c *AttributeCatalog) Lookup(code string) (*AttributeDescriptor, bool) {
	d, ok := c.byCode[catalogKey(code)]
	return d, ok
}

// Len returns the number of descriptors.
func (c *AttributeCatalog) Len() int { return len(c.order) }

// Descriptors returns the descriptors in file order.
func (c *AttributeCatalog) Descriptors() []*AttributeDescriptor {
	return c.order
}

// codeListResult reports what AttachCodeList did with a list
type codeListResult int

const (
	codeListAttached codeListResult = iota
	codeListNoDescriptor
	codeListDuplicate
)

// AttachCodeList hangs a code list on the descriptor of its code. A list
// for an unknown code is discarded, as is any list after the first.
func (c *AttributeCatalog) AttachCodeList(list *CodeList) codeListResult {
	d, ok := c.Lookup(list.Code)
	if !ok {
		return codeListNoDescriptor
	}
	if d.CodeList != nil {
		return codeListDuplicate
	}
	d.CodeList = list
	return codeListAttached
}
