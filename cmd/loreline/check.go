package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"loreline/engine-go/pkg/driver"
	"loreline/engine-go/pkg/parser"
)

// runCheck parses every given script and reports the first error per file.
func runCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "loreline check: no files given")
		return 1
	}
	failed := 0
	for _, path := range args {
		log.Debug().Str("file", path).Msg("checking")
		if _, err := driver.LoadScript(path); err != nil {
			failed++
			reportParseError(path, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "ok %s\n", path)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func reportParseError(path string, err error) {
	var syntaxErr *parser.SyntaxError
	var importErr *parser.ImportError
	switch {
	case errors.As(err, &syntaxErr):
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", path, syntaxErr.Line, syntaxErr.Column, syntaxErr.Message)
	case errors.As(err, &importErr):
		fmt.Fprintf(os.Stderr, "%s:%d:%d: import %q: %s\n", path, importErr.Line, importErr.Column, importErr.ImportPath, importErr.Reason)
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
	}
}
