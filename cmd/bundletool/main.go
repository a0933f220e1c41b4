package main

import (
	"fmt"
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

type commandFunc func(args []string)

var commands = map[string]commandFunc{
	"inspect": doInspect,
	"extract": doExtract,
	"pack":    doPack,
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bundletool <inspect|extract|pack> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	command, ok := commands[os.Args[1]]
	if !ok {
		usage()
	}

	command(os.Args[2:])
}
