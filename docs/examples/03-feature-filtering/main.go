package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func main() {
	parser := ntf.NewParser()

	// Only translate the classes we need; other groups are skipped but
	// still use up a feature id, so ids match an unfiltered read.
	opts := ntf.DefaultParseOptions()
	opts.ClassFilter = []string{
		"BOUNDARYLINE_POLY",
		"BOUNDARYLINE_COLLECTIONS",
	}

	ds, err := parser.ParseWithOptions("EX_SAMPLE.NTF", opts)
	if err != nil {
		log.Fatal(err)
	}

	for _, poly := range ds.FeaturesByClass("BOUNDARYLINE_POLY") {
		name, _ := poly.Attribute("NAME")
		ids, _ := poly.LinkIDs()
		fmt.Printf("%d %v: %d links in %d rings\n",
			poly.ID(), name, len(ids), len(poly.RingStarts()))
	}

	for _, coll := range ds.FeaturesByClass("BOUNDARYLINE_COLLECTIONS") {
		fmt.Printf("collection %d: polygons %v\n", coll.ID(), coll.PartIDs())
	}

	// Read any product with the generic classes
	opts = ntf.DefaultParseOptions()
	opts.ForceGeneric = true
	generic, err := parser.ParseWithOptions("EX_SAMPLE.NTF", opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("generic polygons: %d\n", len(generic.FeaturesByClass("GENERIC_POLY")))
}
