package main

import (
	"log"
	"os"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func main() {
	parser := ntf.NewParser()

	// Compressed files are read directly
	ds, err := parser.Parse("TQ3080.NTF.gz")
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create("TQ3080.geojson")
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	// Features without geometry (collections) are left out
	if err := ntf.WriteGeoJSON(out, ds.GeoJSON()); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d features", len(ds.GeoJSON().Features))
}
