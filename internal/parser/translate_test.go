package parser

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

func testContext(t *testing.T, product Product, cache *GeometryCache) *translateContext {
	t.Helper()
	ctx := &translateContext{
		product: product,
		catalog: testCatalog(t, adrData("FC", 4, "A4", "FEAT_CODE")),
		decoder: NewGeometryDecoder(testParams(), cache, DefaultArcVertices),
	}
	if cache != nil {
		ctx.assembler = NewPolygonAssembler(cache)
	}
	return ctx
}

func recordGroup(data ...string) []*Record {
	out := make([]*Record, len(data))
	for i, d := range data {
		out[i] = NewRecord(d)
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func floatAttr(t *testing.T, f *Feature, name string) float64 {
	t.Helper()
	v, ok := f.Attribute(name)
	if !ok {
		t.Fatalf("Expected attribute %s", name)
	}
	x, ok := v.(float64)
	if !ok {
		t.Fatalf("Expected %s to be a float64, got %T", name, v)
	}
	return x
}

// TestTranslatorsFor tests the per product translation tables
func TestTranslatorsFor(t *testing.T) {
	tests := []struct {
		product Product
		anchor  RecordType
		class   string // empty when the product has no translator
	}{
		{ProductLandline, RecordPoint, "LANDLINE_POINT"},
		{ProductLandline, RecordName, "LANDLINE_NAME"},
		{ProductLandline, RecordNode, ""},
		{ProductLandline99, RecordLine, "LANDLINE99_LINE"},
		{ProductLandrangerCont, RecordLine, "PANORAMA_CONTOUR"},
		{ProductMeridian2, RecordNode, "MERIDIAN2_NODE"},
		{ProductBoundaryLine, RecordGeometry, "BOUNDARYLINE_LINK"},
		{ProductBoundaryLine, RecordCollection, "BOUNDARYLINE_COLLECTIONS"},
		{ProductBoundaryLine, RecordPoint, ""},
		{ProductBL2000, RecordLine, "BL2000_LINK"},
		{ProductBL2000, RecordGeometry, ""},
		{ProductOscarTraffic, RecordPoint, "OSCAR_POINT"},
		{ProductCodePointPlus, RecordPoint, "CODE_POINT_PLUS"},
		{ProductUnknown, RecordComplexPolygon, "GENERIC_CPOLY"},
		{ProductUnknown, RecordCollection, "GENERIC_COLLECTION"},
		{ProductUnknown, RecordGeometry, ""},
	}

	for _, tt := range tests {
		t.Run(tt.product.String()+"/"+tt.anchor.String(), func(t *testing.T) {
			tr, ok := translatorsFor(tt.product)[tt.anchor]
			if tt.class == "" {
				if ok {
					t.Errorf("Expected no translator, got %s", tr.class)
				}
				return
			}
			if !ok || tr.class != tt.class {
				t.Errorf("Expected %s, got %v", tt.class, tr)
			}
		})
	}

	if n := len(translatorsFor(ProductUnknown).Classes()); n != 8 {
		t.Errorf("Expected 8 generic classes, got %d", n)
	}
}

// TestTranslateLandlinePoint tests the product specific point fields
func TestTranslateLandlinePoint(t *testing.T) {
	ctx := testContext(t, ProductLandline, nil)
	tr := translatorsFor(ProductLandline)[RecordPoint]

	f, errs := tr.translate(ctx, recordGroup(
		"15000001"+"00"+"000900"+"0001",
		geomData(1, 1, [2]int{10, 20}),
		attData(1, "FC0042"),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if f.Class != "LANDLINE_POINT" || f.AnchorID != 1 {
		t.Errorf("Expected LANDLINE_POINT 1, got %s %d", f.Class, f.AnchorID)
	}
	if v, _ := f.AttributeString("FEAT_CODE"); v != "0001" {
		t.Errorf("Expected the anchor FEAT_CODE to win, got %q", v)
	}
	if o := floatAttr(t, f, "ORIENT"); !near(o, 90) {
		t.Errorf("Expected ORIENT 90, got %v", o)
	}
	if !orb.Equal(f.Geometry.Geom, orb.Point{10, 20}) {
		t.Errorf("Expected point (10, 20), got %v", f.Geometry.Geom)
	}
	if len(f.AttributeList) != 1 || f.AttributeList[0].Value != "0042" {
		t.Errorf("Expected the ATTREC value in the attribute list, got %v", f.AttributeList)
	}
}

// TestTranslateNode tests node link lists
func TestTranslateNode(t *testing.T) {
	ctx := testContext(t, ProductUnknown, nil)
	tr := translatorsFor(ProductUnknown)[RecordNode]

	f, errs := tr.translate(ctx, recordGroup(
		"16000004"+"000010"+"0002"+"1"+"000021"+"0450"+"0"+"2"+"000022"+"1800"+"1",
		geomData(10, 1, [2]int{3, 4}),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if v, _ := f.Attribute("NODE_ID"); v != 4 {
		t.Errorf("Expected NODE_ID 4, got %v", v)
	}
	if v, _ := f.Attribute("GEOM_ID_OF_POINT"); v != 10 {
		t.Errorf("Expected GEOM_ID_OF_POINT 10, got %v", v)
	}
	if len(f.LinkIDs) != 2 || f.LinkIDs[0] != 21 || f.LinkIDs[1] != 22 {
		t.Errorf("Expected links [21 22], got %v", f.LinkIDs)
	}
	if len(f.Directions) != 2 || f.Directions[0] != 1 || f.Directions[1] != 2 {
		t.Errorf("Expected directions [1 2], got %v", f.Directions)
	}
	orient := f.Attributes["ORIENT"].([]float64)
	if len(orient) != 2 || !near(orient[0], 45) || !near(orient[1], 180) {
		t.Errorf("Expected ORIENT [45 180], got %v", orient)
	}
	levels := f.Attributes["LEVEL"].([]int)
	if len(levels) != 2 || levels[1] != 1 {
		t.Errorf("Expected LEVEL [0 1], got %v", levels)
	}
	if f.Geometry == nil || !orb.Equal(f.Geometry.Geom, orb.Point{3, 4}) {
		t.Errorf("Expected node point, got %v", f.Geometry)
	}
}

// TestTranslateNodeLimits tests truncated and oversized link lists
func TestTranslateNodeLimits(t *testing.T) {
	ctx := testContext(t, ProductUnknown, nil)
	tr := translatorsFor(ProductUnknown)[RecordNode]

	f, errs := tr.translate(ctx, recordGroup("16000004"+"000010"+"0003"+"1"+"000021"+"0450"+"0"))
	if f == nil {
		t.Fatal("Expected a feature from a truncated node")
	}
	if len(f.LinkIDs) != 1 {
		t.Errorf("Expected the complete link only, got %v", f.LinkIDs)
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrDecode) {
		t.Errorf("Expected one ErrDecode, got %v", errs)
	}

	_, errs = tr.translate(ctx, recordGroup("16000004"+"000010"+"9999"))
	var tooMany *ErrTooManyLinks
	if len(errs) == 0 || !errors.Is(errs[0], ErrCapacity) || !errors.As(errs[0], &tooMany) {
		t.Fatalf("Expected ErrTooManyLinks first, got %v", errs)
	}
	if tooMany.Count != 9999 || tooMany.Limit != MaxLinks {
		t.Errorf("Expected 9999 over %d, got %d over %d", MaxLinks, tooMany.Count, tooMany.Limit)
	}
}

// TestTranslateName tests name text and position fields
func TestTranslateName(t *testing.T) {
	ctx := testContext(t, ProductUnknown, nil)
	tr := translatorsFor(ProductUnknown)[RecordName]

	f, errs := tr.translate(ctx, recordGroup(
		"11000007"+"ABCD"+"05"+"Hello",
		"12"+"0003"+"025"+"5"+"0900",
		geomData(1, 1, [2]int{1, 2}),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if v, _ := f.AttributeString("TEXT"); v != "Hello" {
		t.Errorf("Expected TEXT Hello, got %q", v)
	}
	if v, _ := f.AttributeString("TEXT_CODE"); v != "ABCD" {
		t.Errorf("Expected TEXT_CODE ABCD, got %q", v)
	}
	if v, _ := f.Attribute("FONT"); v != 3 {
		t.Errorf("Expected FONT 3, got %v", v)
	}
	if h := floatAttr(t, f, "TEXT_HT"); !near(h, 2.5) {
		t.Errorf("Expected TEXT_HT 2.5, got %v", h)
	}
	if h := floatAttr(t, f, "TEXT_HT_GROUND"); !near(h, 25) {
		t.Errorf("Expected TEXT_HT_GROUND 25, got %v", h)
	}
	if o := floatAttr(t, f, "ORIENT"); !near(o, 90) {
		t.Errorf("Expected ORIENT 90, got %v", o)
	}

	f, errs = tr.translate(ctx, recordGroup("11000008"+"ABCD"+"00"))
	if f != nil {
		t.Errorf("Expected no feature for an empty name, got %v", f)
	}
	var te *ErrTranslate
	if len(errs) != 1 || !errors.Is(errs[0], ErrDecode) || !errors.As(errs[0], &te) {
		t.Errorf("Expected one ErrTranslate, got %v", errs)
	}
}

// TestTranslateText tests text representation fields
func TestTranslateText(t *testing.T) {
	ctx := testContext(t, ProductStrategi, nil)
	tr := translatorsFor(ProductStrategi)[RecordText]

	f, errs := tr.translate(ctx, recordGroup(
		"43000001"+"01"+"0000000000000001",
		"44000001"+"01"+"000001000002",
		"45000001"+"0002"+"030"+"4"+"1800",
		geomData(2, 1, [2]int{7, 8}),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if f.Class != "STRATEGI_TEXT" {
		t.Errorf("Expected STRATEGI_TEXT, got %s", f.Class)
	}
	if v, _ := f.Attribute("FONT"); v != 2 {
		t.Errorf("Expected FONT 2, got %v", v)
	}
	if v, _ := f.Attribute("DIG_POSTN"); v != 4 {
		t.Errorf("Expected DIG_POSTN 4, got %v", v)
	}
	if h := floatAttr(t, f, "TEXT_HT"); !near(h, 3) {
		t.Errorf("Expected TEXT_HT 3, got %v", h)
	}
	if o := floatAttr(t, f, "ORIENT"); !near(o, 180) {
		t.Errorf("Expected ORIENT 180, got %v", o)
	}
	if f.GeomID != 2 {
		t.Errorf("Expected GEOM_ID 2, got %d", f.GeomID)
	}

	if f, errs := tr.translate(ctx, recordGroup("43000001", geomData(2, 1, [2]int{7, 8}))); f != nil || len(errs) != 1 {
		t.Errorf("Expected a text group without TEXTREP to fail, got %v %v", f, errs)
	}
}

// TestTranslateCollection tests collection part lists
func TestTranslateCollection(t *testing.T) {
	ctx := testContext(t, ProductBoundaryLine, nil)
	tr := translatorsFor(ProductBoundaryLine)[RecordCollection]

	f, errs := tr.translate(ctx, recordGroup(
		"34000009"+"0002"+"31000001"+"34000003",
		attData(1, "FC0300"),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(f.PartTypes) != 2 || f.PartTypes[0] != RecordPolygon || f.PartTypes[1] != RecordCollection {
		t.Errorf("Expected part types [POLYGON COLLECT], got %v", f.PartTypes)
	}
	if polys := f.Attributes["POLY_ID"].([]int); len(polys) != 1 || polys[0] != 1 {
		t.Errorf("Expected POLY_ID [1], got %v", polys)
	}
	if colls := f.Attributes["COLL_ID_REFS"].([]int); len(colls) != 1 || colls[0] != 3 {
		t.Errorf("Expected COLL_ID_REFS [3], got %v", colls)
	}
	if f.Geometry != nil {
		t.Errorf("Expected a collection without geometry, got %v", f.Geometry)
	}
	if v, _ := f.AttributeString("FEAT_CODE"); v != "0300" {
		t.Errorf("Expected FEAT_CODE 0300, got %q", v)
	}
}

// TestTranslatePolygonRun tests a complex polygon read sequentially
func TestTranslatePolygonRun(t *testing.T) {
	cache := NewGeometryCache()
	shell := square(0, 0, 100)
	cache.Put(1, lineGeom(shell[0], shell[1], shell[2]))
	cache.Put(2, lineGeom(shell[2], shell[3], shell[4]))
	cache.Put(3, lineGeom(square(10, 10, 10)...))
	ctx := testContext(t, ProductBL2000, cache)
	tr := translatorsFor(ProductBL2000)[RecordPolygon]

	f, errs := tr.translate(ctx, recordGroup(
		polygonData(1, 1, 0),
		chainData(1, [2]int{1, 1}, [2]int{2, 1}),
		polygonData(2, 2, 0),
		chainData(2, [2]int{3, 1}),
		"330000050002"+"0000010"+"0000020",
		attData(1, "FC0500"),
		geomData(4, 1, [2]int{50, 50}),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if f.AnchorType != RecordComplexPolygon || f.AnchorID != 5 {
		t.Errorf("Expected CPOLY 5 anchor, got %v %d", f.AnchorType, f.AnchorID)
	}
	if len(f.RingStarts) != 2 || f.RingStarts[0] != 0 || f.RingStarts[1] != 2 {
		t.Errorf("Expected ring starts [0 2], got %v", f.RingStarts)
	}
	if len(f.PartIDs) != 2 || f.PartIDs[1] != 2 {
		t.Errorf("Expected polygon parts [1 2], got %v", f.PartIDs)
	}
	if len(f.LinkIDs) != 3 {
		t.Errorf("Expected 3 links, got %v", f.LinkIDs)
	}
	if f.Geometry == nil || f.Geometry.Type != GeometryTypePolygon {
		t.Fatalf("Expected assembled polygon, got %v", f.Geometry)
	}
	if n := len(f.Geometry.Geom.(orb.Polygon)); n != 2 {
		t.Errorf("Expected shell and hole, got %d rings", n)
	}
	if v, _ := f.AttributeString("FEAT_CODE"); v != "0500" {
		t.Errorf("Expected FEAT_CODE 0500, got %q", v)
	}
}

// TestTranslatePolygonAssemblyFailure tests that the seed point survives a
// failed assembly
func TestTranslatePolygonAssemblyFailure(t *testing.T) {
	ctx := testContext(t, ProductBoundaryLine, NewGeometryCache())
	tr := translatorsFor(ProductBoundaryLine)[RecordPolygon]

	f, errs := tr.translate(ctx, recordGroup(
		polygonData(1, 1, 3),
		chainData(1, [2]int{99, 1}),
		geomData(3, 1, [2]int{5, 5}),
	))
	if f == nil {
		t.Fatal("Expected a feature")
	}
	if f.Geometry == nil || !orb.Equal(f.Geometry.Geom, orb.Point{5, 5}) {
		t.Errorf("Expected the seed point, got %v", f.Geometry)
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrReference) {
		t.Errorf("Expected one ErrReference, got %v", errs)
	}
}

// TestTranslateComplexPolygonIndexed tests CPOLY anchored groups
func TestTranslateComplexPolygonIndexed(t *testing.T) {
	ctx := testContext(t, ProductUnknown, nil)
	tr := translatorsFor(ProductUnknown)[RecordComplexPolygon]

	f, errs := tr.translate(ctx, recordGroup(
		"330000050002"+"0000010"+"0000020",
		geomData(4, 1, [2]int{50, 50}),
	))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(f.PartIDs) != 2 || f.PartIDs[0] != 1 || f.PartIDs[1] != 2 {
		t.Errorf("Expected polygon ids [1 2], got %v", f.PartIDs)
	}
	if v, _ := f.Attribute("NUM_PARTS"); v != 2 {
		t.Errorf("Expected NUM_PARTS 2, got %v", v)
	}

	if f, errs := tr.translate(ctx, nil); f != nil || errs != nil {
		t.Errorf("Expected nothing for an empty group")
	}
}
