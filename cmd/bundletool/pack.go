package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bndltools/bundle/bundle"
)

// manifest lines have the shape:
//
//	<resourceID hex>\t<resourceType decimal>\t<block0 path>[\t<block1 path>[\t<block2 path>]]
//
// A block path of "-" means that block is empty.
func readPackManifest(path string) ([]manifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []manifestEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("manifest: malformed line: %q", line)
		}

		id, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("manifest: resource id %q: %w", fields[0], err)
		}

		resourceType, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("manifest: resource type %q: %w", fields[1], err)
		}

		entry := manifestEntry{
			id:           uint32(id),
			resourceType: bundle.ResourceType(resourceType),
		}
		for i, field := range fields[2:] {
			if field != "-" {
				entry.blockPaths[i] = field
			}
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

type manifestEntry struct {
	id           uint32
	resourceType bundle.ResourceType
	blockPaths   [3]string
}

func doPack(args []string) {
	flagset := flag.NewFlagSet("pack", flag.ExitOnError)
	manifestPath := flagset.String("manifest", "manifest.txt", "tab-separated manifest listing resource IDs, types, and block files")
	out := flagset.String("out", "out.bnd2", "output archive path")
	legacy := flagset.Bool("legacy", false, "write a Legacy (bndl) archive instead of Modern (bnd2)")
	compressed := flagset.Bool("compressed", false, "compress file block contents")
	flagset.Parse(args)

	entries, err := readPackManifest(*manifestPath)
	if err != nil {
		logger.Error("read manifest", "path", *manifestPath, "error", err)
		os.Exit(1)
	}

	var flags bundle.Flags
	if *compressed {
		flags |= bundle.Compressed
	}

	flavor := bundle.Modern
	platform := bundle.PC
	revision := uint32(2)
	if *legacy {
		flavor = bundle.Legacy
		platform = bundle.Xbox360
		revision = 5
	}

	cat := bundle.New(flavor, revision, platform, flags)

	for _, entry := range entries {
		data := bundle.ResourceData{ResourceType: entry.resourceType}
		for i, path := range entry.blockPaths {
			if path == "" {
				continue
			}

			contents, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read block", "path", path, "error", err)
				os.Exit(1)
			}

			data.FileBlocks[i] = contents
			data.Alignments[i] = 16
		}

		if err := cat.AddResource(entry.id, data); err != nil {
			logger.Error("add resource", "id", fmt.Sprintf("%08x", entry.id), "error", err)
			os.Exit(1)
		}
	}

	raw, err := bundle.Save(cat)
	if err != nil {
		logger.Error("save archive", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil && filepath.Dir(*out) != "." {
		logger.Error("create output directory", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, raw, 0644); err != nil {
		logger.Error("write archive", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("packed archive", "path", *out, "flavor", cat.Flavor(), "resources", len(entries))
}
