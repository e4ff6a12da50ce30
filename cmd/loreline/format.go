package main

import (
	"fmt"
	"os"
	"strings"

	"loreline/engine-go/pkg/driver"
	"loreline/engine-go/pkg/printer"
)

// runFmt reprints scripts in canonical form, to stdout or back in place.
func runFmt(args []string) int {
	indentWidth := 2
	crlf := false
	write := false
	var files []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--indent":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "loreline fmt: --indent expects a value")
				return 1
			}
			n := 0
			if _, err := fmt.Sscanf(args[i], "%d", &n); err != nil || n < 1 || n > 8 {
				fmt.Fprintf(os.Stderr, "loreline fmt: invalid indent %q\n", args[i])
				return 1
			}
			indentWidth = n
		case "--crlf":
			crlf = true
		case "--write", "-w":
			write = true
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "loreline fmt: unknown flag %q\n", args[i])
				return 1
			}
			files = append(files, args[i])
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "loreline fmt: no files given")
		return 1
	}

	newline := "\n"
	if crlf {
		newline = "\r\n"
	}
	indent := strings.Repeat(" ", indentWidth)

	for _, path := range files {
		script, err := driver.LoadScript(path)
		if err != nil {
			reportParseError(path, err)
			return 1
		}
		out := printer.Print(script, indent, newline)
		if write {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "loreline fmt: write %s: %v\n", path, err)
				return 1
			}
			continue
		}
		fmt.Fprint(os.Stdout, out)
	}
	return 0
}
