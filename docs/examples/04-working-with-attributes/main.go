package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func main() {
	parser := ntf.NewParser()
	ds, err := parser.Parse("TQ3080.NTF")
	if err != nil {
		log.Fatal(err)
	}

	// Attribute codes declared in the file header
	fmt.Println("Attributes:")
	for _, desc := range ds.Attributes() {
		fmt.Printf("  %s %-12s %s\n", desc.Code, desc.Name, desc.Format)
	}

	// Feature classification records, if the product has them
	for _, fc := range ds.FeatureClasses() {
		fmt.Printf("  class %s: %s\n", fc.Code, fc.Name)
	}

	// Text features carry their placement as attributes
	for _, text := range ds.FeaturesByClass("LANDLINE_NAME") {
		s, _ := text.Attribute("TEXT")
		height, _ := text.Attribute("TEXT_HT_GROUND")
		orient, _ := text.Attribute("ORIENT")
		fmt.Printf("%q height %vm rotated %v degrees\n", s, height, orient)
	}

	// Dump one feature
	if ds.FeatureCount() > 0 {
		f := ds.Features()[0]
		attrs := f.Attributes()
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("Feature %d (%s):\n", f.ID(), f.Class())
		for _, name := range names {
			fmt.Printf("  %s = %v\n", name, attrs[name])
		}
	}
}
