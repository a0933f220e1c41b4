package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bndltools/bundle/bundle"
)

func loadCatalog(path string) *bundle.Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read archive", "path", path, "error", err)
		os.Exit(1)
	}

	cat, err := bundle.Load(data)
	if err != nil {
		logger.Error("load archive", "path", path, "error", err)
		os.Exit(1)
	}

	return cat
}

func doInspect(args []string) {
	flagset := flag.NewFlagSet("inspect", flag.ExitOnError)
	byType := flagset.Bool("by-type", false, "group listed resources by resource type")
	flagset.Parse(args)

	if flagset.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: bundletool inspect [flags] <archive>")
		os.Exit(2)
	}

	path := flagset.Arg(0)
	cat := loadCatalog(path)

	logger.Info("opened archive",
		"path", path,
		"flavor", cat.Flavor(),
		"revision", cat.Revision(),
		"platform", cat.Platform(),
		"resources", len(cat.ListIDs()),
	)

	if *byType {
		for resourceType, ids := range cat.ListIDsByType() {
			fmt.Printf("%v (%d):\n", resourceType, len(ids))
			for _, id := range ids {
				printResourceLine(cat, id)
			}
		}
		return
	}

	for _, id := range cat.ListIDs() {
		printResourceLine(cat, id)
	}
}

func printResourceLine(cat *bundle.Catalog, id uint32) {
	info, hasDebugInfo := cat.DebugInfo(id)
	if hasDebugInfo {
		fmt.Printf("  %08x  %s (%s)\n", id, info.Name, info.TypeName)
	} else {
		fmt.Printf("  %08x\n", id)
	}
}
