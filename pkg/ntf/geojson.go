package ntf

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON property names added next to the feature attributes.
const (
	PropertyFID   = "fid"
	PropertyClass = "class"
	PropertyTile  = "tile"
)

// GeoJSON converts the feature to a GeoJSON feature. Heights are not
// exported. Returns nil for features without geometry.
func (f *Feature) GeoJSON() *geojson.Feature {
	if f.geometry == nil || f.geometry.Geom == nil {
		return nil
	}
	gf := geojson.NewFeature(f.geometry.Geom)
	gf.ID = f.id
	for k, v := range f.attributes {
		gf.Properties[k] = v
	}
	gf.Properties[PropertyFID] = f.id
	gf.Properties[PropertyClass] = f.class
	if f.tileName != "" {
		gf.Properties[PropertyTile] = f.tileName
	}
	return gf
}

func collect(fc *geojson.FeatureCollection, features []*Feature) {
	for _, f := range features {
		if gf := f.GeoJSON(); gf != nil {
			fc.Append(gf)
		}
	}
}

// GeoJSON returns the features with geometry as a feature collection.
func (d *Dataset) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	collect(fc, d.features)
	return fc
}

// GeoJSON returns the features of every tile with geometry as one feature
// collection, in id order.
func (ts *TileSet) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range ts.Tiles {
		collect(fc, t.features)
	}
	return fc
}

// WriteGeoJSON writes a feature collection to w.
//
// Example:
//
//	out, _ := os.Create("TQ3080.geojson")
//	defer out.Close()
//	err := ntf.WriteGeoJSON(out, ds.GeoJSON())
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write geojson")
	}
	return nil
}
