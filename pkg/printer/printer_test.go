package printer

import (
	"strings"
	"testing"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/parser"
)

func parse(t *testing.T, src string) *ast.Script {
	t.Helper()
	script, err := parser.Parse(src, "test.lor", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return script
}

// The printer's contract: printing a parsed script, reparsing the output and
// printing again must reproduce the first output byte for byte.
func assertIdempotent(t *testing.T, src string) string {
	t.Helper()
	print1 := Print(parse(t, src), "  ", "\n")
	print2 := Print(parse(t, print1), "  ", "\n")
	if print1 != print2 {
		t.Fatalf("print not idempotent\nfirst:\n%s\nsecond:\n%s", print1, print2)
	}
	return print1
}

func TestPrintIdempotentCorpus(t *testing.T) {
	corpus := []string{
		"beat B\n  Hello\n",
		"state\n  gold: 10\n  name: \"Em\"\ncharacter em\n  name: \"Emily\"\nbeat B\n  em: Hi {name}!\n",
		"beat B\n  choice\n    Leave\n      -> .\n    Pay if gold >= 10\n      gold -= 10\n      -> Paid\nbeat Paid\n  Done\n",
		"beat B\n  if n > 1\n    Big\n  else if n > 0\n    Small\n  else\n    Nothing here\n",
		"beat B\n  A line\n    with continuation\n",
		"beat B\n  em: Hello <wave>world</wave> and <b>more</b>\n",
		"beat B\n  Math: {1 + 2 * 3} and {(1 + 2) * 3}\n",
		"beat B\n  x = 1.5\n  y = 2.0\n  z = -x\n  ok = not done and (a or b)\n",
		"beat B\n  A literal \\{brace\\} and a \\< tag start\n",
		"beat B\n  1 < 2 is just text\n",
	}
	for _, src := range corpus {
		assertIdempotent(t, src)
	}
}

func TestPrintCanonicalLayout(t *testing.T) {
	got := assertIdempotent(t, "state\n    gold:   10\nbeat B\n      gold    +=   1\n      Hi\n")
	want := strings.Join([]string{
		"state",
		"  gold: 10",
		"",
		"beat B",
		"  gold += 1",
		"  Hi",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("expected canonical output:\n%q\ngot:\n%q", want, got)
	}
}

func TestPrintCRLFAndCustomIndent(t *testing.T) {
	out := Print(parse(t, "beat B\n  if x\n    Hi\n"), "    ", "\r\n")
	want := "beat B\r\n    if x\r\n        Hi\r\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestPrintEscapesLeadingKeyword(t *testing.T) {
	// Narrator text that reads like a statement must not reclassify when
	// printed and reparsed.
	script := parse(t, "beat B\n  \\if only it were so\n")
	d := script.Beat("B").Body[0].(*ast.DialogueStatement)
	text, _, _ := d.Content.Static()
	if text != "if only it were so" {
		t.Fatalf("unexpected parsed text %q", text)
	}
	out := Print(script, "  ", "\n")
	if !strings.Contains(out, "\\if only it were so") {
		t.Fatalf("expected escaped keyword in output, got %q", out)
	}
	assertIdempotent(t, out)
}

func TestPrintEscapesLeadingSpeakerForm(t *testing.T) {
	// Narrator text reading like `Name: ...` must stay narrator text after
	// printing and reparsing instead of gaining a speaker.
	script := parse(t, "beat B\n  \\Note: remember this\n")
	d := script.Beat("B").Body[0].(*ast.DialogueStatement)
	if d.Speaker != "" {
		t.Fatalf("expected narrator, got speaker %q", d.Speaker)
	}
	text, _, _ := d.Content.Static()
	if text != "Note: remember this" {
		t.Fatalf("unexpected parsed text %q", text)
	}

	out := Print(script, "  ", "\n")
	if !strings.Contains(out, "\\Note: remember this") {
		t.Fatalf("expected escaped colon form in output, got %q", out)
	}
	reparsed := parse(t, out)
	d2 := reparsed.Beat("B").Body[0].(*ast.DialogueStatement)
	if d2.Speaker != "" {
		t.Fatalf("reparse reclassified narrator as speaker %q", d2.Speaker)
	}
	assertIdempotent(t, out)
}

func TestPrintKeepsMinimalParens(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  x = (1 + 2) * 3\n  y = 1 + 2 * 3\n  z = (a or b) and c\n")
	for _, want := range []string{"x = (1 + 2) * 3", "y = 1 + 2 * 3", "z = (a or b) and c"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintNormalizesOperatorKeywords(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  ok = a && b || !c\n")
	if !strings.Contains(out, "ok = a and b or not c") {
		t.Fatalf("expected keyword operators, got:\n%s", out)
	}
}

func TestPrintFloatsKeepDecimalPoint(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  x = 2.0\n")
	if !strings.Contains(out, "x = 2.0") {
		t.Fatalf("expected float literal to keep its point, got:\n%s", out)
	}
}

func TestPrintChoiceConditionPlacement(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  choice\n    Pay the toll if gold >= 10\n      -> .\n")
	if !strings.Contains(out, "    Pay the toll if gold >= 10\n") {
		t.Fatalf("expected option with trailing condition, got:\n%s", out)
	}
}

func TestPrintContinuationLines(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  First line\n    second line\n")
	want := "beat B\n  First line\n    second line\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestPrintTagsAndInterpolations(t *testing.T) {
	out := assertIdempotent(t, "beat B\n  em: Hello <wave>{name}</wave>!\n")
	if !strings.Contains(out, "em: Hello <wave>{name}</wave>!") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
