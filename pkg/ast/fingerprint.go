package ast

import (
	"fmt"
	"hash/fnv"
)

// Fingerprint hashes the structural shape of the script: beat names and the
// nesting shape of their statement sequences. Two scripts with equal
// fingerprints expose the same execution coordinates, so a snapshot taken
// against one can be restored against the other. Text edits and expression
// edits do not change the fingerprint; adding, removing or reordering
// statements does.
func (s *Script) Fingerprint() string {
	h := fnv.New64a()
	for _, d := range s.Decls {
		b, ok := d.(*Beat)
		if !ok {
			continue
		}
		fmt.Fprintf(h, "beat %s\n", b.Name)
		fingerprintBlock(h, b.Body)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func fingerprintBlock(h interface{ Write([]byte) (int, error) }, block []Statement) {
	fmt.Fprintf(h, "[%d", len(block))
	for _, stmt := range block {
		switch s := stmt.(type) {
		case *DialogueStatement:
			fmt.Fprint(h, "d")
		case *ChoiceStatement:
			fmt.Fprintf(h, "c%d", len(s.Options))
			for _, opt := range s.Options {
				fingerprintBlock(h, opt.Body)
			}
		case *Assignment:
			fmt.Fprint(h, "a")
		case *IfStatement:
			fmt.Fprint(h, "i")
			fingerprintBlock(h, s.Then)
			fingerprintBlock(h, s.Else)
		case *JumpStatement:
			fmt.Fprint(h, "j")
		}
	}
	fmt.Fprint(h, "]")
}
