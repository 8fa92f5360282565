package ntf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFeatureGeoJSON tests the conversion of one feature
func TestFeatureGeoJSON(t *testing.T) {
	ds, err := NewParser().ParseReader(strings.NewReader(squareTile()), DefaultParseOptions())
	require.NoError(t, err)

	gf := ds.Features()[1].GeoJSON()
	require.NotNil(t, gf)
	assert.Equal(t, orb.Point{530900, 180900}, gf.Geometry)
	assert.Equal(t, int64(2), gf.ID)
	assert.Equal(t, int64(2), gf.Properties[PropertyFID])
	assert.Equal(t, "GENERIC_POINT", gf.Properties[PropertyClass])
	assert.Equal(t, "TQ3080", gf.Properties[PropertyTile])
	assert.Equal(t, "0002", gf.Properties["FEAT_CODE"])

	assert.Nil(t, (&Feature{id: 9, class: "GENERIC_COLLECTION"}).GeoJSON())
}

// TestDatasetGeoJSON tests the exported collection
func TestDatasetGeoJSON(t *testing.T) {
	ds, err := NewParser().ParseReader(strings.NewReader(squareTile()), DefaultParseOptions())
	require.NoError(t, err)

	fc := ds.GeoJSON()
	require.Len(t, fc.Features, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, fc))

	back, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, back.Features, 2)
	assert.Equal(t, orb.Point{530100, 180100}, back.Features[0].Geometry)
	assert.Equal(t, "0001", back.Features[0].Properties.MustString("FEAT_CODE"))
	assert.Equal(t, 1.0, back.Features[0].Properties.MustFloat64(PropertyFID))
}
