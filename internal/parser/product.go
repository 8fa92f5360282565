package parser

import (
	"strings"
)

// Product identifies the Ordnance Survey product a file belongs to. It is
// derived from the database header and decides default scale, line caching
// and how record groups are traversed.
type Product int

const (
	ProductUnknown Product = iota
	ProductLandline
	ProductLandline99
	ProductLandrangerCont
	ProductLandformProfileCont
	ProductStrategi
	ProductMeridian
	ProductMeridian2
	ProductBoundaryLine
	ProductBL2000
	ProductBaseData
	ProductOscarAsset
	ProductOscarTraffic
	ProductOscarRoute
	ProductOscarNetwork
	ProductAddressPoint
	ProductCodePoint
	ProductCodePointPlus
	ProductLandrangerDTM
	ProductLandformProfileDTM
)

var productNames = [...]string{
	ProductUnknown:             "Unknown",
	ProductLandline:            "Land-Line",
	ProductLandline99:          "Land-Line 99",
	ProductLandrangerCont:      "Landranger Contours",
	ProductLandformProfileCont: "Land-Form PROFILE Contours",
	ProductStrategi:            "Strategi",
	ProductMeridian:            "Meridian",
	ProductMeridian2:           "Meridian 2",
	ProductBoundaryLine:        "Boundary-Line",
	ProductBL2000:              "Boundary-Line 2000",
	ProductBaseData:            "BaseData.GB",
	ProductOscarAsset:          "OSCAR Asset",
	ProductOscarTraffic:        "OSCAR Traffic",
	ProductOscarRoute:          "OSCAR Route",
	ProductOscarNetwork:        "OSCAR Network",
	ProductAddressPoint:        "ADDRESS-POINT",
	ProductCodePoint:           "Code-Point",
	ProductCodePointPlus:       "Code-Point Plus",
	ProductLandrangerDTM:       "Landranger DTM",
	ProductLandformProfileDTM:  "Land-Form PROFILE DTM",
}

func (p Product) String() string {
	if p >= 0 && int(p) < len(productNames) {
		return productNames[p]
	}
	return "Unknown"
}

// boundaryLineName is the DHR product name shared by both Boundary-Line
// editions; the product version tells them apart.
const boundaryLineName = "Boundary-Line"

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// classifyProduct maps the DHR product name and version onto a Product.
// hasAttr reports whether the file describes a given attribute code; it
// separates Code-Point from Code-Point Plus.
func classifyProduct(name, version string, hasAttr func(code string) bool) Product {
	switch {
	case hasPrefixFold(name, "LAND-LINE") && len(version) > 5 && atof(version[5:]) < 1.3:
		return ProductLandline
	case hasPrefixFold(name, "LAND-LINE"):
		return ProductLandline99
	case strings.EqualFold(name, "OS_LANDRANGER_CONT"):
		return ProductLandrangerCont
	case strings.EqualFold(name, "L-F_PROFILE_CON"):
		return ProductLandformProfileCont
	case hasPrefixFold(name, "Strategi"):
		return ProductStrategi
	case hasPrefixFold(name, "Meridian_02"):
		return ProductMeridian2
	case hasPrefixFold(name, "Meridian_01"):
		return ProductMeridian
	case strings.EqualFold(name, boundaryLineName) && hasPrefixFold(version, "A10N_FC"):
		return ProductBoundaryLine
	case strings.EqualFold(name, boundaryLineName) && hasPrefixFold(version, "A20N_FC"):
		return ProductBL2000
	case hasPrefixFold(name, "BaseData.GB"):
		return ProductBaseData
	case hasPrefixFold(name, "OSCAR_ASSET"):
		return ProductOscarAsset
	case hasPrefixFold(name, "OSCAR_TRAFF"):
		return ProductOscarTraffic
	case hasPrefixFold(name, "OSCAR_ROUTE"):
		return ProductOscarRoute
	case hasPrefixFold(name, "OSCAR_NETWO"):
		return ProductOscarNetwork
	case hasPrefixFold(name, "ADDRESS_POI"):
		return ProductAddressPoint
	case hasPrefixFold(name, "CODE_POINT"):
		if hasAttr != nil && hasAttr("RH") {
			return ProductCodePointPlus
		}
		return ProductCodePoint
	case hasPrefixFold(name, "OS_LANDRANGER_DTM"):
		return ProductLandrangerDTM
	case hasPrefixFold(name, "L-F_PROFILE_DTM"), hasPrefixFold(name, "NEXTMap Britain DTM"):
		return ProductLandformProfileDTM
	}
	return ProductUnknown
}

// IsRaster reports whether the product is a gridded height model.
func (p Product) IsRaster() bool {
	return p == ProductLandrangerDTM || p == ProductLandformProfileDTM
}

// CachesLines reports whether line geometries of the product are kept for
// polygon assembly. Only the Boundary-Line products build polygons from
// shared edges.
func (p Product) CachesLines() bool {
	return p == ProductBoundaryLine || p == ProductBL2000
}

// DefaultScale is the scale used when the section header carries none.
func (p Product) DefaultScale() float64 {
	switch p {
	case ProductStrategi:
		return 250000
	case ProductMeridian, ProductMeridian2:
		return 100000
	case ProductLandformProfileCont:
		return 10000
	case ProductLandrangerCont:
		return 50000
	case ProductOscarAsset, ProductOscarTraffic, ProductOscarNetwork, ProductOscarRoute:
		return 10000
	case ProductBaseData:
		return 625000
	default:
		return 10000
	}
}
