package parser

// translate.go - turns record groups into features.
// Which translator handles a group depends on the product and the type of
// the group's anchor record.

import (
	"fmt"
)

// translatorKind tags the known translators
type translatorKind int

const (
	translateNone translatorKind = iota
	translatePoint
	translateLine
	translateNode
	translateText
	translateName
	translatePolygon
	translateComplexPolygon
	translateCollection
	translateLink
)

func (k translatorKind) String() string {
	switch k {
	case translatePoint:
		return "point"
	case translateLine:
		return "line"
	case translateNode:
		return "node"
	case translateText:
		return "text"
	case translateName:
		return "name"
	case translatePolygon:
		return "polygon"
	case translateComplexPolygon:
		return "complex polygon"
	case translateCollection:
		return "collection"
	case translateLink:
		return "link"
	default:
		return "none"
	}
}

// translator is one entry of a product's translation table
type translator struct {
	kind  translatorKind
	class string
}

// defaultTranslator gives the translator and class suffix used for an
// anchor type unless a product overrides it
func defaultTranslator(t RecordType) (translatorKind, string) {
	switch t {
	case RecordPoint:
		return translatePoint, "POINT"
	case RecordLine:
		return translateLine, "LINE"
	case RecordNode:
		return translateNode, "NODE"
	case RecordText:
		return translateText, "TEXT"
	case RecordName:
		return translateName, "NAME"
	case RecordPolygon:
		return translatePolygon, "POLY"
	case RecordComplexPolygon:
		return translateComplexPolygon, "CPOLY"
	case RecordCollection:
		return translateCollection, "COLLECTIONS"
	case RecordGeometry, RecordGeometry3D:
		return translateLink, "LINK"
	default:
		return translateNone, ""
	}
}

// translationTable maps anchor record types to translators.
type translationTable map[RecordType]translator

func newTable(prefix string, anchors ...RecordType) translationTable {
	t := make(translationTable, len(anchors))
	for _, a := range anchors {
		kind, suffix := defaultTranslator(a)
		t[a] = translator{kind: kind, class: prefix + "_" + suffix}
	}
	return t
}

// translatorsFor returns the translation table of a product. Products
// without a table of their own are read with the generic table.
func translatorsFor(p Product) translationTable {
	switch p {
	case ProductLandline, ProductLandline99:
		prefix := "LANDLINE"
		if p == ProductLandline99 {
			prefix = "LANDLINE99"
		}
		return newTable(prefix, RecordPoint, RecordLine, RecordName)

	case ProductLandrangerCont:
		t := newTable("PANORAMA", RecordPoint)
		t[RecordLine] = translator{kind: translateLine, class: "PANORAMA_CONTOUR"}
		return t

	case ProductLandformProfileCont:
		return newTable("PROFILE", RecordPoint, RecordLine)

	case ProductStrategi:
		return newTable("STRATEGI", RecordPoint, RecordLine, RecordText, RecordNode)
	case ProductMeridian:
		return newTable("MERIDIAN", RecordPoint, RecordLine, RecordText, RecordNode)
	case ProductMeridian2:
		return newTable("MERIDIAN2", RecordPoint, RecordLine, RecordText, RecordNode)
	case ProductBaseData:
		return newTable("BASEDATA", RecordPoint, RecordLine, RecordText, RecordNode)

	case ProductBoundaryLine:
		return newTable("BOUNDARYLINE", RecordGeometry, RecordPolygon, RecordCollection)

	case ProductBL2000:
		t := newTable("BL2000", RecordPolygon, RecordCollection)
		t[RecordLine] = translator{kind: translateLine, class: "BL2000_LINK"}
		return t

	case ProductOscarAsset, ProductOscarTraffic:
		return newTable("OSCAR", RecordPoint, RecordLine, RecordNode)
	case ProductOscarRoute:
		return newTable("OSCAR_ROUTE", RecordPoint, RecordLine, RecordNode)
	case ProductOscarNetwork:
		return newTable("OSCAR_NETWORK", RecordPoint, RecordLine, RecordNode)

	case ProductAddressPoint:
		return newTable("ADDRESS", RecordPoint)
	case ProductCodePoint:
		return newTable("CODE", RecordPoint)
	case ProductCodePointPlus:
		return translationTable{RecordPoint: {kind: translatePoint, class: "CODE_POINT_PLUS"}}

	default:
		t := newTable("GENERIC", RecordPoint, RecordLine, RecordNode, RecordText,
			RecordName, RecordPolygon, RecordComplexPolygon)
		t[RecordCollection] = translator{kind: translateCollection, class: "GENERIC_COLLECTION"}
		return t
	}
}

// Classes lists the output classes of the table.
func (t translationTable) Classes() []string {
	seen := make(map[string]bool, len(t))
	var classes []string
	for _, tr := range t {
		if !seen[tr.class] {
			seen[tr.class] = true
			classes = append(classes, tr.class)
		}
	}
	return classes
}

// translateContext is the per file state translators read
type translateContext struct {
	product   Product
	catalog   *AttributeCatalog
	decoder   *GeometryDecoder
	assembler *PolygonAssembler // nil when lines are not cached
}

// translation accumulates a feature and the non fatal errors met while
// building it
type translation struct {
	ctx     *translateContext
	feature *Feature
	errs    []error
}

func (tr *translation) fail(err error) {
	tr.errs = append(tr.errs, err)
}

func (tr *translation) attributes(group []*Record) {
	values, errs := tr.ctx.catalog.DecodeGroup(group)
	tr.feature.applyAttributes(values)
	tr.errs = append(tr.errs, errs...)
}

// geometry decodes rec into the feature geometry. A nil rec leaves the
// feature without geometry.
func (tr *translation) geometry(rec *Record) {
	if rec == nil {
		return
	}
	g, geomID, err := tr.ctx.decoder.Decode(rec)
	tr.feature.GeomID = geomID
	if err != nil {
		tr.fail(err)
		return
	}
	tr.feature.Geometry = g
}

func (tr *translation) set(name string, value interface{}) {
	tr.feature.Attributes[name] = value
}

// translate runs the translator over group. A nil feature means the group
// does not have the shape the translator needs; the returned errors then
// hold an error marked ErrDecode saying so.
func (t translator) translate(ctx *translateContext, group []*Record) (*Feature, []error) {
	if len(group) == 0 {
		return nil, nil
	}
	anchor := group[0]
	tr := &translation{ctx: ctx, feature: newFeature(t.class, anchor)}

	var ok bool
	switch t.kind {
	case translatePoint:
		ok = tr.point(group)
	case translateLine:
		ok = tr.line(group)
	case translateNode:
		ok = tr.node(group)
	case translateText:
		ok = tr.text(group)
	case translateName:
		ok = tr.name(group)
	case translatePolygon:
		ok = tr.polygon(group)
	case translateComplexPolygon:
		ok = tr.complexPolygon(group)
	case translateCollection:
		ok = tr.collection(group)
	case translateLink:
		ok = tr.link(group)
	}
	if !ok {
		return nil, append(tr.errs, decodeError(&ErrTranslate{
			Anchor:   anchor.Type(),
			AnchorID: anchor.ID(),
			Product:  ctx.product,
			Reason:   fmt.Sprintf("unexpected %s group %v", t.kind, group),
		}))
	}
	return tr.feature, tr.errs
}

func (tr *translation) point(group []*Record) bool {
	anchor := group[0]
	tr.set("POINT_ID", anchor.ID())
	tr.geometry(findGeometry(group))
	tr.set("GEOM_ID", tr.feature.GeomID)

	switch tr.ctx.product {
	case ProductLandline, ProductLandline99:
		tr.set("FEAT_CODE", anchor.FieldOrEmpty(17, 20))
		tr.set("ORIENT", float64(anchor.IntOrZero(11, 16))*0.1)
	case ProductLandrangerCont:
		tr.set("FEAT_CODE", anchor.FieldOrEmpty(17, 20))
		tr.set("HEIGHT", anchor.IntOrZero(11, 16))
	}

	tr.attributes(group)
	return true
}

func (tr *translation) line(group []*Record) bool {
	anchor := group[0]
	tr.set("LINE_ID", anchor.ID())
	tr.geometry(findGeometry(group))
	tr.set("GEOM_ID", tr.feature.GeomID)

	switch tr.ctx.product {
	case ProductLandline, ProductLandline99:
		tr.set("FEAT_CODE", anchor.FieldOrEmpty(17, 20))
	case ProductLandrangerCont:
		tr.set("FEAT_CODE", anchor.FieldOrEmpty(17, 20))
		tr.set("HEIGHT", anchor.IntOrZero(11, 16))
	}

	tr.attributes(group)
	return true
}

// link translates a line geometry that is a feature of its own
func (tr *translation) link(group []*Record) bool {
	tr.geometry(group[0])
	tr.set("GEOM_ID", tr.feature.GeomID)
	tr.attributes(group)
	return true
}

// countField reads a list length and caps it at limit, recording an error
// marked ErrCapacity when it had to.
func (tr *translation) countField(rec *Record, start, end, limit int) int {
	n := rec.IntOrZero(start, end)
	if n < 0 {
		return 0
	}
	if n > limit {
		tr.fail(capacityError(&ErrTooManyLinks{
			Anchor:   tr.feature.AnchorType,
			AnchorID: tr.feature.AnchorID,
			Count:    n,
			Limit:    limit,
		}))
		return limit
	}
	return n
}

// node reads the link list of a node record
//
//	cols 9-14   GEOM_ID_OF_POINT
//	cols 15-18  NUM_LINKS
//	per link, 12 columns from col 19:
//	  DIR, GEOM_ID_OF_LINK (6), ORIENT (4, tenths of a degree), LEVEL
func (tr *translation) node(group []*Record) bool {
	anchor := group[0]
	tr.set("NODE_ID", anchor.ID())
	tr.set("GEOM_ID_OF_POINT", anchor.IntOrZero(9, 14))

	n := tr.countField(anchor, 15, 18, MaxLinks)
	f := newFieldReader(anchor)
	orient := make([]float64, 0, n)
	levels := make([]int, 0, n)
	for i := 0; i < n; i++ {
		base := 19 + i*12
		dir := f.int(base, base)
		link := f.int(base+1, base+6)
		o := f.int(base+7, base+10)
		level := f.int(base+11, base+11)
		if f.Err() != nil {
			break
		}
		tr.feature.Directions = append(tr.feature.Directions, dir)
		tr.feature.LinkIDs = append(tr.feature.LinkIDs, link)
		orient = append(orient, float64(o)*0.1)
		levels = append(levels, level)
	}
	if err := f.Err(); err != nil {
		tr.fail(decodeError(&ErrTranslate{
			Anchor:   anchor.Type(),
			AnchorID: anchor.ID(),
			Product:  tr.ctx.product,
			Reason:   "link list truncated: " + err.Error(),
		}))
	}
	tr.set("NUM_LINKS", n)
	tr.set("DIR", tr.feature.Directions)
	tr.set("GEOM_ID_OF_LINK", tr.feature.LinkIDs)
	tr.set("ORIENT", orient)
	tr.set("LEVEL", levels)

	tr.geometry(findGeometry(group))
	tr.attributes(group)
	return true
}

// text reads the representation of a TEXTREC/TEXTPOS/TEXTREP/GEOMETRY group
//
//	TEXTREP cols 9-12 FONT, 13-15 TEXT_HT (tenths of a mm), 16 DIG_POSTN,
//	        17-20 ORIENT (tenths of a degree)
func (tr *translation) text(group []*Record) bool {
	rep := findRecord(group, RecordTextRep)
	if rep == nil {
		return false
	}
	anchor := group[0]
	height := float64(rep.IntOrZero(13, 15)) * 0.1
	tr.set("TEXT_ID", anchor.ID())
	tr.set("FONT", rep.IntOrZero(9, 12))
	tr.set("TEXT_HT", height)
	tr.set("DIG_POSTN", rep.IntOrZero(16, 16))
	tr.set("ORIENT", float64(rep.IntOrZero(17, 20))*0.1)
	tr.set("TEXT_HT_GROUND", height*tr.ctx.decoder.Params().PaperToGround)

	tr.geometry(findGeometry(group))
	tr.attributes(group)
	return true
}

// name reads a NAMEREC group
//
//	NAMEREC   cols 9-12 TEXT_CODE, 13-14 NUM_CHAR, 15- TEXT
//	NAMEPOSTN cols 3-6 FONT, 7-9 TEXT_HT, 10 DIG_POSTN, 11-14 ORIENT
func (tr *translation) name(group []*Record) bool {
	anchor := group[0]
	numChar := anchor.IntOrZero(13, 14)
	if numChar <= 0 {
		return false
	}
	text, err := anchor.Field(15, 15+numChar-1)
	if err != nil {
		tr.fail(decodeError(&ErrTranslate{
			Anchor:   anchor.Type(),
			AnchorID: anchor.ID(),
			Product:  tr.ctx.product,
			Reason:   "name text: " + err.Error(),
		}))
		text = anchor.Data()[min(14, anchor.Len()):]
	}
	tr.set("NAME_ID", anchor.ID())
	tr.set("TEXT_CODE", anchor.FieldOrEmpty(9, 12))
	tr.set("TEXT", text)

	if pos := findRecord(group, RecordNamePosition); pos != nil {
		height := float64(pos.IntOrZero(7, 9)) * 0.1
		tr.set("FONT", pos.IntOrZero(3, 6))
		tr.set("TEXT_HT", height)
		tr.set("DIG_POSTN", pos.IntOrZero(10, 10))
		tr.set("ORIENT", atof(pos.FieldOrEmpty(11, 14))*0.1)
		tr.set("TEXT_HT_GROUND", height*tr.ctx.decoder.Params().PaperToGround)
	}

	tr.geometry(findGeometry(group))
	tr.attributes(group)
	return true
}

// chainLinks appends the links of a CHAIN record, 7 columns each from col
// 13: GEOM_ID_OF_LINK (6) then DIR. It stops at total links and reports
// whether the cap was hit.
func (tr *translation) chainLinks(chain *Record, total int) bool {
	n := chain.IntOrZero(9, 12)
	for i := 0; i < n; i++ {
		if len(tr.feature.LinkIDs) >= total {
			return true
		}
		tr.feature.LinkIDs = append(tr.feature.LinkIDs, chain.IntOrZero(13+i*7, 18+i*7))
		tr.feature.Directions = append(tr.feature.Directions, chain.IntOrZero(19+i*7, 19+i*7))
	}
	return false
}

// assemble replaces the seed geometry with the polygon built from the
// links when lines are cached.
func (tr *translation) assemble() {
	if tr.ctx.assembler == nil || len(tr.feature.LinkIDs) == 0 {
		return
	}
	poly, err := tr.ctx.assembler.Assemble(tr.feature.LinkIDs)
	if err != nil {
		tr.fail(err)
		return
	}
	tr.feature.Geometry = poly
}

func (tr *translation) setLinks() {
	tr.set("NUM_PARTS", len(tr.feature.LinkIDs))
	tr.set("DIR", tr.feature.Directions)
	tr.set("GEOM_ID_OF_LINK", tr.feature.LinkIDs)
	tr.set("RingStart", tr.feature.RingStarts)
}

// polygon translates a POLYGON group. A group that continues with further
// POLYGON/CHAIN pairs and a CPOLY record is a complex polygon read
// sequentially.
func (tr *translation) polygon(group []*Record) bool {
	if len(group) >= 2 && group[1].Type() == RecordChain && findRecord(group, RecordComplexPolygon) != nil {
		return tr.polygonRun(group)
	}

	anchor := group[0]
	tr.set("POLY_ID", anchor.ID())
	if chain := findRecord(group, RecordChain); chain != nil {
		if n := chain.IntOrZero(9, 12); n > MaxLinks {
			tr.fail(capacityError(&ErrTooManyLinks{
				Anchor: anchor.Type(), AnchorID: anchor.ID(), Count: n, Limit: MaxLinks,
			}))
		}
		tr.chainLinks(chain, MaxLinks)
		tr.feature.RingStarts = []int{0}
	}
	tr.setLinks()

	tr.attributes(group)
	tr.geometry(findGeometry(group))
	tr.assemble()
	return true
}

// polygonRun handles POLYGON, CHAIN, [POLYGON, CHAIN ...], CPOLY, ATTREC,
// GEOMETRY. The links of all rings go into one list; RingStarts marks
// where each ring begins.
func (tr *translation) polygonRun(group []*Record) bool {
	i := 0
	for ; i+1 < len(group) && group[i].Type() == RecordPolygon && group[i+1].Type() == RecordChain; i += 2 {
		tr.feature.RingStarts = append(tr.feature.RingStarts, len(tr.feature.LinkIDs))
		tr.feature.PartIDs = append(tr.feature.PartIDs, group[i].ID())
		tr.feature.PartTypes = append(tr.feature.PartTypes, RecordPolygon)
		if tr.chainLinks(group[i+1], 2*MaxLinks) {
			tr.fail(capacityError(&ErrTooManyLinks{
				Anchor:   RecordComplexPolygon,
				AnchorID: tr.feature.AnchorID,
				Count:    len(tr.feature.LinkIDs) + group[i+1].IntOrZero(9, 12),
				Limit:    2 * MaxLinks,
			}))
			for i+1 < len(group) && group[i].Type() != RecordComplexPolygon {
				i++
			}
			break
		}
	}
	if i >= len(group) || group[i].Type() != RecordComplexPolygon {
		return false
	}

	cpoly := group[i]
	tr.feature.AnchorType = RecordComplexPolygon
	tr.feature.AnchorID = cpoly.ID()
	tr.set("POLY_ID", cpoly.ID())
	tr.set("POLY_IDS", tr.feature.PartIDs)
	tr.setLinks()

	tr.attributes(group)
	tr.geometry(findGeometry(group[i:]))
	tr.assemble()
	return true
}

// complexPolygon translates a CPOLY anchored group as the index builds it:
// the polygon ids listed in the record (7 columns each from col 13) plus
// the seed geometry and attributes.
func (tr *translation) complexPolygon(group []*Record) bool {
	anchor := group[0]
	n := tr.countField(anchor, 9, 12, MaxLinks)
	for i := 0; i < n; i++ {
		id, err := anchor.Int(13+i*7, 18+i*7)
		if err != nil {
			tr.fail(decodeError(&ErrTranslate{
				Anchor:   anchor.Type(),
				AnchorID: anchor.ID(),
				Product:  tr.ctx.product,
				Reason:   "polygon list truncated: " + err.Error(),
			}))
			break
		}
		tr.feature.PartIDs = append(tr.feature.PartIDs, id)
		tr.feature.PartTypes = append(tr.feature.PartTypes, RecordPolygon)
	}
	tr.set("POLY_ID", anchor.ID())
	tr.set("NUM_PARTS", len(tr.feature.PartIDs))
	tr.set("POLY_IDS", tr.feature.PartIDs)

	tr.geometry(findGeometry(group))
	tr.attributes(group)
	return true
}

// collection reads the part list of a COLLECT record, 8 columns per part
// from col 13: record type (2) then id (6).
func (tr *translation) collection(group []*Record) bool {
	anchor := group[0]
	n := tr.countField(anchor, 9, 12, MaxLinks)
	var polys, colls []int
	for i := 0; i < n; i++ {
		typ := RecordType(anchor.IntOrZero(13+i*8, 14+i*8))
		id := anchor.IntOrZero(15+i*8, 20+i*8)
		tr.feature.PartTypes = append(tr.feature.PartTypes, typ)
		tr.feature.PartIDs = append(tr.feature.PartIDs, id)
		if typ == RecordCollection {
			colls = append(colls, id)
		} else {
			polys = append(polys, id)
		}
	}
	tr.set("COLL_ID", anchor.ID())
	tr.set("NUM_PARTS", n)
	tr.set("POLY_ID", polys)
	if len(colls) > 0 {
		tr.set("COLL_ID_REFS", colls)
	}
	tr.attributes(group)
	return true
}
