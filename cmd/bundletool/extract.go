package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func doExtract(args []string) {
	flagset := flag.NewFlagSet("extract", flag.ExitOnError)
	outDir := flagset.String("out", ".", "directory to write extracted resource blocks into")
	flagset.Parse(args)

	if flagset.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: bundletool extract [flags] <archive>")
		os.Exit(2)
	}

	path := flagset.Arg(0)
	cat := loadCatalog(path)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("create output directory", "path", *outDir, "error", err)
		os.Exit(1)
	}

	for _, id := range cat.ListIDs() {
		data, err := cat.Get(id)
		if err != nil {
			logger.Error("get resource", "id", fmt.Sprintf("%08x", id), "error", err)
			continue
		}

		for block, payload := range data.FileBlocks {
			if len(payload) == 0 {
				continue
			}

			name := filepath.Join(*outDir, fmt.Sprintf("%08x.block%d", id, block))
			if err := os.WriteFile(name, payload, 0644); err != nil {
				logger.Error("write block", "path", name, "error", err)
				continue
			}
			logger.Info("extracted block", "path", name, "bytes", len(payload))
		}
	}
}
