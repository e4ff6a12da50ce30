package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loreline/engine-go/pkg/ast"
)

func TestInsertTags(t *testing.T) {
	tags := []ast.TextTag{
		{Value: "wave", Offset: 0},
		{Value: "wave", Offset: 5, Closing: true},
	}
	got := insertTags("Hello world", tags, false)
	if got != "<<wave>>Hello<</wave>> world" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInsertTagsAtEnd(t *testing.T) {
	tags := []ast.TextTag{{Value: "b", Offset: 5, Closing: true}}
	got := insertTags("Hello", tags, false)
	if got != "Hello<</b>>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInsertTagsCountsRunes(t *testing.T) {
	tags := []ast.TextTag{{Value: "b", Offset: 6, Closing: true}}
	got := insertTags("Émilie!", tags, false)
	if got != "Émilie<</b>>!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInsertTagsMultilineIndents(t *testing.T) {
	got := insertTags("first\nsecond", nil, true)
	if got != "first\n  second" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInsertTagsTrimsTrailingWhitespace(t *testing.T) {
	if got := insertTags("text  \n", nil, false); got != "text" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCompareOutput(t *testing.T) {
	if got := compareOutput("a\nb\n", "a\nb"); got != -1 {
		t.Fatalf("expected match, got line %d", got)
	}
	if got := compareOutput("a\r\nb\r\n", "a\nb\n"); got != -1 {
		t.Fatalf("expected CRLF-insensitive match, got line %d", got)
	}
	if got := compareOutput("a\nb", "a\nc"); got != 1 {
		t.Fatalf("expected difference at line 1, got %d", got)
	}
	if got := compareOutput("a\nb\nc", "a\nb"); got != 2 {
		t.Fatalf("expected length mismatch at line 2, got %d", got)
	}
}

func TestExtractTests(t *testing.T) {
	content := strings.Join([]string{
		"beat Intro",
		"  Hello",
		"",
		"/*",
		"<test>",
		"- choices: [0, 1]",
		"  beat: Intro",
		"  expected: |",
		"    ~ Hello",
		"</test>",
		"*/",
		"",
		"/*",
		"<test>",
		"- saveAtDialogue: 0",
		"  expected: |",
		"    ~ Hello",
		"</test>",
		"*/",
		"",
	}, "\n")
	cases, err := extractTests(content)
	if err != nil {
		t.Fatalf("extractTests: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	first := cases[0]
	if len(first.Choices) != 2 || first.Choices[0] != 0 || first.Choices[1] != 1 {
		t.Fatalf("unexpected choices %v", first.Choices)
	}
	if first.Beat != "Intro" || !strings.Contains(first.Expected, "~ Hello") {
		t.Fatalf("unexpected case %+v", first)
	}
	if first.saveAtDialogue() != -1 || first.saveAtChoice() != -1 {
		t.Fatal("expected absent save keys to read as -1")
	}
	if cases[1].saveAtDialogue() != 0 {
		t.Fatalf("expected saveAtDialogue 0, got %d", cases[1].saveAtDialogue())
	}
}

func TestExtractTestsRejectsBadYAML(t *testing.T) {
	if _, err := extractTests("<test>\n- choices: [\n</test>\n"); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestTestLabel(t *testing.T) {
	item := testCase{Choices: []int{0, 2}}
	if got := testLabel("story.lor", true, item); got != "story.lor ~ CRLF ~ [0,2]" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := testLabel("story.lor", false, testCase{}); got != "story.lor ~ LF" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestCollectTestFilesSkipsSiblingsAndImports(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("story.lor", "beat B\n  Hi\n")
	write("story.fr.lor", "beat B\n  Salut\n")
	write("notes.txt", "not a script")
	write("imports/part.lor", "beat C\n  Part\n")
	write("modified/story.lor", "beat B\n  Changed\n")
	write("nested/other.lor", "beat D\n  Deep\n")

	files, err := collectTestFiles(dir)
	if err != nil {
		t.Fatalf("collectTestFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "story.lor" && base != "other.lor" {
			t.Fatalf("unexpected file %s", f)
		}
	}
}

func TestRunTestCaseEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.lor")
	script := strings.Join([]string{
		"beat Intro",
		"  Hello",
		"  choice",
		"    Continue",
		"      Done",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	item := testCase{
		Choices:  []int{0},
		Expected: "~ Hello\n\n+ Continue\n\n~ Done\n",
	}
	for _, crlf := range []bool{false, true} {
		res := runTestCase(path, script, item, crlf)
		if !res.passed {
			t.Fatalf("crlf=%v: expected pass, got %+v", crlf, res)
		}
	}
}

func TestRunTestCaseSaveAndResume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.lor")
	script := strings.Join([]string{
		"state",
		"  n: 0",
		"beat Main",
		"  First",
		"  n += 1",
		"  Second {n}",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	zero := 0
	item := testCase{
		SaveAtDialogue: &zero,
		Expected:       "~ First\n\n~ Second 1\n",
	}
	res := runTestCase(path, script, item, false)
	if !res.passed {
		t.Fatalf("expected pass, got %+v", res)
	}
}

func TestRunTestCaseTranslationSibling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.lor")
	script := "beat Intro\n  Hello\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "story.fr.lor"), []byte("beat Intro\n  Bonjour\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	item := testCase{Translation: "fr", Expected: "~ Bonjour\n"}
	res := runTestCase(path, script, item, false)
	if !res.passed {
		t.Fatalf("expected pass, got %+v", res)
	}
}

func TestRunTestCaseReportsDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.lor")
	script := "beat Intro\n  Hello\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	res := runTestCase(path, script, testCase{Expected: "~ Goodbye\n"}, false)
	if res.passed {
		t.Fatal("expected failure")
	}
	details := diffDetails(res)
	if len(details) == 0 || !strings.Contains(details[0], "line 1") {
		t.Fatalf("unexpected details %v", details)
	}
}
