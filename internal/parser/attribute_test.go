package parser

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func testCatalog(t *testing.T, adrs ...string) *AttributeCatalog {
	t.Helper()
	c := NewAttributeCatalog()
	for _, a := range adrs {
		d, err := parseAttributeDescriptor(NewRecord(a))
		if err != nil {
			t.Fatalf("parseAttributeDescriptor(%q): %v", a, err)
		}
		c.Add(d)
	}
	return c
}

// TestParseAttributeDescriptor tests ATTDESC decoding
func TestParseAttributeDescriptor(t *testing.T) {
	tests := []struct {
		data      string
		code      string
		width     int
		kind      FormatKind
		name      string
		precision int
	}{
		{adrData("FC", 4, "A4", "FEAT_CODE"), "FC", 4, FormatAlpha, "FEAT_CODE", -1},
		{adrData("HT", 6, "R6,2", "HEIGHT"), "HT", 6, FormatReal, "HEIGHT", 2},
		{adrData("PN", 0, "A*", "PROPER_NAME"), "PN", 0, FormatAlpha, "PROPER_NAME", -1},
		{adrData("NU", 3, "I3", "NUMBER"), "NU", 3, FormatInteger, "NUMBER", -1},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			d, err := parseAttributeDescriptor(NewRecord(tt.data))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if d.Code != tt.code || d.Width != tt.width || d.Kind != tt.kind || d.Name != tt.name {
				t.Errorf("Expected %s/%d/%v/%s, got %s/%d/%v/%s",
					tt.code, tt.width, tt.kind, tt.name, d.Code, d.Width, d.Kind, d.Name)
			}
			p, ok := d.Precision()
			if tt.precision < 0 && ok {
				t.Errorf("Expected no precision, got %d", p)
			}
			if tt.precision >= 0 && (!ok || p != tt.precision) {
				t.Errorf("Expected precision %d, got %d (%v)", tt.precision, p, ok)
			}
		})
	}

	if _, err := parseAttributeDescriptor(NewRecord("40FC004")); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected short descriptor to fail with ErrDecode, got %v", err)
	}
}

// TestDecodeAttributeRecord tests the FC example: code FC, width 4
func TestDecodeAttributeRecord(t *testing.T) {
	c := testCatalog(t, adrData("FC", 4, "A4", "FEAT_CODE"))

	values, err := c.DecodeRecord(NewRecord("14000001FC1234"))
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("Expected 1 value, got %d", len(values))
	}
	v := values[0]
	if v.Code != "FC" || v.Value != "1234" || v.FieldName() != "FEAT_CODE" {
		t.Errorf("Expected FC=1234 named FEAT_CODE, got %s=%s named %s", v.Code, v.Value, v.FieldName())
	}
}

// TestDecodeAttributeEmpty tests that a record without values fails
func TestDecodeAttributeEmpty(t *testing.T) {
	c := testCatalog(t, adrData("FC", 4, "A4", "FEAT_CODE"))

	for _, data := range []string{"14000001", "140000010"} {
		values, err := c.DecodeRecord(NewRecord(data))
		if !errors.Is(err, ErrDecode) {
			t.Errorf("%q: expected ErrDecode, got %v", data, err)
		}
		var invalid *ErrInvalidAttribute
		if !errors.As(err, &invalid) || invalid.RecordID != 1 {
			t.Errorf("%q: expected ErrInvalidAttribute for record 1, got %v", data, err)
		}
		if values != nil {
			t.Errorf("%q: expected no values, got %v", data, values)
		}
	}
}

// TestDecodeAttributeUnknownCode tests that an unknown code fails the record
func TestDecodeAttributeUnknownCode(t *testing.T) {
	c := testCatalog(t, adrData("FC", 4, "A4", "FEAT_CODE"))

	_, err := c.DecodeRecord(NewRecord("14000001FC1234ZZ99"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Expected ErrDecode, got %v", err)
	}
	var unknown *ErrUnknownAttributeCode
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected ErrUnknownAttributeCode, got %v", err)
	}
	if unknown.Code != "ZZ" || unknown.RecordID != 1 {
		t.Errorf("Expected code ZZ in record 1, got %s in %d", unknown.Code, unknown.RecordID)
	}
}

// TestDecodeAttributeFormats tests variable width, integer and real values
func TestDecodeAttributeFormats(t *testing.T) {
	c := testCatalog(t,
		adrData("PN", 0, "A*", "PROPER_NAME"),
		adrData("HT", 6, "R6,2", "HEIGHT"),
		adrData("NU", 3, "I3", "NUMBER"),
	)

	values, err := c.DecodeRecord(NewRecord("14000009PNHigh Street\\HT001250NU007"))
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	want := map[string]string{"PN": "High Street", "HT": "0012.50", "NU": "7"}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d: %+v", len(want), len(values), values)
	}
	for _, v := range values {
		if want[v.Code] != v.Value {
			t.Errorf("Expected %s=%q, got %q", v.Code, want[v.Code], v.Value)
		}
	}
}

// TestCodeList tests code list parsing and description lookup
func TestCodeList(t *testing.T) {
	c := testCatalog(t, adrData("LC", 2, "A2", "LINE_CODE"))

	list, truncated := parseCodeList(NewRecord(codeListData("LC", "A2", "01", "Motorway", "02", "A Road")))
	if truncated {
		t.Errorf("Expected complete code list")
	}
	if list.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", list.Len())
	}
	if res := c.AttachCodeList(list); res != codeListAttached {
		t.Fatalf("Expected code list attached, got %v", res)
	}
	if res := c.AttachCodeList(list); res != codeListDuplicate {
		t.Errorf("Expected second list rejected, got %v", res)
	}
	orphan, _ := parseCodeList(NewRecord(codeListData("XX", "A2", "01", "One")))
	if res := c.AttachCodeList(orphan); res != codeListNoDescriptor {
		t.Errorf("Expected list without descriptor rejected, got %v", res)
	}

	values, errs := c.DecodeGroup([]*Record{
		NewRecord("14000001LC02"),
		NewRecord("14000002QQ01"),
		NewRecord("14000003LC09"),
	})
	if len(errs) != 1 || !errors.Is(errs[0], ErrDecode) {
		t.Errorf("Expected one decode error, got %v", errs)
	}
	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %d", len(values))
	}
	if !values[0].HasDescription || values[0].Description != "A Road" {
		t.Errorf("Expected description 'A Road', got %q (%v)", values[0].Description, values[0].HasDescription)
	}
	if values[1].HasDescription {
		t.Errorf("Expected no description for unlisted value, got %q", values[1].Description)
	}

	f := &Feature{Attributes: map[string]interface{}{}}
	f.applyAttributes(values)
	if f.Attributes["LINE_CODE"] != "02" || f.Attributes["LINE_CODE_DESC"] != "A Road" {
		t.Errorf("Expected first value to win with its description, got %v", f.Attributes)
	}
}

// TestCodeListTruncated tests a list with fewer entries than declared
func TestCodeListTruncated(t *testing.T) {
	data := "42" + "          " + "LC" + "A2   " + "003" + "01\\One\\02\\Two\\"
	list, truncated := parseCodeList(NewRecord(data))
	if !truncated {
		t.Errorf("Expected truncated code list")
	}
	if list.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", list.Len())
	}
}
