package parser

import (
	"strconv"
)

// AttributeValue is one decoded attribute of an ATTREC record.
type AttributeValue struct {
	// Code is the two character attribute code, e.g. "FC"
	Code string
	// Name is the long name from the attribute description
	Name string
	// Raw is the value as stored in the record
	Raw string
	// Value is Raw after format processing
	Value string
	// Description is the code list translation of Value, when HasDescription
	Description    string
	HasDescription bool
}

// FieldName returns the name the value is published under: the long name
// when the descriptor has one, otherwise the code.
func (v AttributeValue) FieldName() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Code
}

// DecodeRecord extracts the (code, value) pairs of one ATTREC record.
//
// After the 8 character prefix (type and ATT_ID) the payload is a run of
// two character codes each followed by its value. Fixed width values take
// exactly the descriptor width; zero width values run to the next backslash
// or the end of the record. A '0' in code position ends the run.
//
// Any unknown code fails the whole record, as does a record without values.
func (c *AttributeCatalog) DecodeRecord(rec *Record) ([]AttributeValue, error) {
	if rec.Type() != RecordAttribute || rec.Len() < 8 {
		return nil, decodeError(&ErrInvalidAttribute{RecordID: rec.ID(), Reason: "not an attribute record"})
	}

	attID := rec.ID()
	data := rec.Data()
	length := rec.Len()
	var values []AttributeValue

	offset := 8
	for offset < length && data[offset] != '0' {
		code := rec.FieldOrEmpty(offset+1, offset+2)
		desc, ok := c.Lookup(code)
		if !ok {
			return nil, decodeError(&ErrUnknownAttributeCode{Code: code, RecordID: attID})
		}
		if desc.Width < 0 {
			return nil, decodeError(&ErrInvalidAttribute{Code: code, RecordID: attID, Reason: "negative field width"})
		}

		var end int
		if desc.Width == 0 {
			if offset+2 >= length {
				return nil, decodeError(&ErrInvalidAttribute{Code: code, RecordID: attID, Reason: "variable width value missing"})
			}
			end = offset + 2
			for end < length && data[end] != '\\' {
				end++
			}
		} else {
			end = offset + 3 + desc.Width - 1
		}

		raw, err := rec.Field(offset+3, end)
		if err != nil {
			return nil, decodeError(&ErrInvalidAttribute{Code: code, RecordID: attID, Reason: err.Error()})
		}
		values = append(values, c.formatValue(desc, raw))

		if desc.Width == 0 {
			offset = end
			if offset >= length {
				break
			}
			if data[offset] == '\\' {
				offset++
			}
		} else {
			offset += 2 + desc.Width
		}
	}

	if len(values) == 0 {
		return nil, decodeError(&ErrInvalidAttribute{RecordID: attID, Reason: "no attribute values"})
	}
	return values, nil
}

// DecodeGroup decodes every ATTREC record of a group, in group order. A
// record that fails is left out and its error returned; the other records
// still contribute their values.
func (c *AttributeCatalog) DecodeGroup(group []*Record) ([]AttributeValue, []error) {
	var (
		values []AttributeValue
		errs   []error
	)
	for _, rec := range group {
		if rec.Type() != RecordAttribute {
			continue
		}
		v, err := c.DecodeRecord(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values = append(values, v...)
	}
	return values, errs
}

func (c *AttributeCatalog) formatValue(desc *AttributeDescriptor, raw string) AttributeValue {
	v := AttributeValue{Code: desc.Code, Name: desc.Name, Raw: raw}

	switch desc.Kind {
	case FormatReal:
		v.Value = insertImpliedDecimal(desc, raw)
	case FormatInteger:
		v.Value = strconv.Itoa(atoi(raw))
	default:
		v.Value = raw
	}

	if desc.CodeList != nil {
		v.Description, v.HasDescription = desc.CodeList.Lookup(v.Value)
	}
	return v
}

// insertImpliedDecimal places the decimal point of an "Rw,d" value d digits
// from the right. A format without precision, or a precision that does not
// fit the value, yields an empty value.
func insertImpliedDecimal(desc *AttributeDescriptor, raw string) string {
	precision, ok := desc.Precision()
	if !ok {
		return ""
	}
	width := len(raw)
	if precision < 0 || precision >= width {
		return ""
	}
	return raw[:width-precision] + "." + raw[width-precision:]
}
