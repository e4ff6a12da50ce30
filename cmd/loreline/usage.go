package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  loreline run <story.lor | story.yml> [--beat name] [--lang code] [--strict]")
	fmt.Fprintln(os.Stderr, "               [--save file] [--load file]")
	fmt.Fprintln(os.Stderr, "  loreline <story.lor>")
	fmt.Fprintln(os.Stderr, "  loreline check <file.lor ...>")
	fmt.Fprintln(os.Stderr, "  loreline fmt [--indent n] [--crlf] [--write] <file.lor ...>")
	fmt.Fprintln(os.Stderr, "  loreline test <directory>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Global flags: --verbose, --version, --help")
}
