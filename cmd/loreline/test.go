package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"loreline/engine-go/pkg/parser"
	"loreline/engine-go/pkg/printer"
)

var (
	testPassStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	testFailStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	testDimStyle  = lipgloss.NewStyle().Faint(true)
)

// testCase is one scenario from a <test> block. Optional save indices use
// pointers so an absent key and an explicit zero stay distinct.
type testCase struct {
	Choices        []int  `yaml:"choices"`
	Beat           string `yaml:"beat"`
	SaveAtChoice   *int   `yaml:"saveAtChoice"`
	SaveAtDialogue *int   `yaml:"saveAtDialogue"`
	RestoreFile    string `yaml:"restoreFile"`
	Translation    string `yaml:"translation"`
	Expected       string `yaml:"expected"`
}

func (c testCase) saveAtChoice() int {
	if c.SaveAtChoice == nil {
		return -1
	}
	return *c.SaveAtChoice
}

func (c testCase) saveAtDialogue() int {
	if c.SaveAtDialogue == nil {
		return -1
	}
	return *c.SaveAtDialogue
}

type testReport struct {
	passed int
	failed int
}

func (r *testReport) pass(label string) {
	r.passed++
	fmt.Fprintf(os.Stdout, "%s - %s\n", testPassStyle.Render("PASS"), testDimStyle.Render(label))
}

func (r *testReport) fail(label string, details ...string) {
	r.failed++
	fmt.Fprintf(os.Stdout, "%s - %s\n", testFailStyle.Render("FAIL"), testDimStyle.Render(label))
	for _, d := range details {
		fmt.Fprintf(os.Stdout, "  %s\n", d)
	}
}

// runTest walks a directory of .lor scenario files, runs every embedded
// <test> block in LF and CRLF modes, and checks printer roundtrip stability
// for each file.
func runTest(args []string) int {
	dir := "."
	if len(args) > 0 {
		if len(args) > 1 || strings.HasPrefix(args[0], "-") {
			fmt.Fprintln(os.Stderr, "loreline test: expected a single directory")
			return 1
		}
		dir = args[0]
	}

	files, err := collectTestFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loreline test: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "loreline test: no test files found in %s\n", dir)
		return 1
	}

	report := &testReport{}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline test: %v\n", err)
			return 2
		}
		cases, err := extractTests(string(raw))
		if err != nil {
			report.fail(path, fmt.Sprintf("Error: %v", err))
			continue
		}
		if len(cases) == 0 {
			continue
		}
		for _, item := range cases {
			for _, crlf := range []bool{false, true} {
				label := testLabel(path, crlf, item)
				res := runTestCase(path, string(raw), item, crlf)
				if res.passed {
					report.pass(label)
				} else {
					report.fail(label, diffDetails(res)...)
				}
			}
		}
		for _, crlf := range []bool{false, true} {
			runRoundtrip(report, path, string(raw), cases, crlf)
		}
	}

	total := report.passed + report.failed
	fmt.Fprintln(os.Stdout)
	if report.failed == 0 {
		fmt.Fprintln(os.Stdout, testPassStyle.Render(fmt.Sprintf("  All %d tests passed", total)))
		return 0
	}
	fmt.Fprintln(os.Stdout, testFailStyle.Render(fmt.Sprintf("  %d of %d tests failed", report.failed, total)))
	return 1
}

func testLabel(path string, crlf bool, item testCase) string {
	mode := "LF"
	if crlf {
		mode = "CRLF"
	}
	label := path + " ~ " + mode
	if len(item.Choices) > 0 {
		parts := make([]string, len(item.Choices))
		for i, c := range item.Choices {
			parts[i] = fmt.Sprintf("%d", c)
		}
		label += " ~ [" + strings.Join(parts, ",") + "]"
	}
	return label
}

func diffDetails(res harnessResult) []string {
	var details []string
	if res.errMsg != "" {
		details = append(details, "Error: "+res.errMsg)
	}
	expected := strings.Split(strings.TrimSpace(normalizeLF(res.expected)), "\n")
	actual := strings.Split(strings.TrimSpace(normalizeLF(res.actual)), "\n")
	n := len(expected)
	if len(actual) < n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			return append(details,
				fmt.Sprintf("> Unexpected output at line %d", i+1),
				fmt.Sprintf(">  got: %s", actual[i]),
				fmt.Sprintf("> need: %s", expected[i]))
		}
	}
	if len(expected) != len(actual) {
		got, need := "(empty)", "(empty)"
		if n < len(actual) {
			got = actual[n]
		}
		if n < len(expected) {
			need = expected[n]
		}
		details = append(details,
			fmt.Sprintf("> Unexpected output at line %d", n+1),
			fmt.Sprintf(">  got: %s", got),
			fmt.Sprintf("> need: %s", need))
	}
	return details
}

// runRoundtrip checks that printing is idempotent for the file and that
// every scenario still passes when run against the printed form.
func runRoundtrip(report *testReport, path, raw string, cases []testCase, crlf bool) {
	mode := "LF"
	newline := "\n"
	if crlf {
		mode = "CRLF"
		newline = "\r\n"
	}
	label := path + " ~ " + mode + " ~ roundtrip"

	content := normalizeNewlines(raw, crlf)
	loader := testLoader(path, crlf)
	script1, err := parser.Parse(content, filepath.Base(path), loader)
	if err != nil {
		report.fail(label, fmt.Sprintf("Error: failed to parse original script: %v", err))
		return
	}
	print1 := printer.Print(script1, "  ", newline)
	script2, err := parser.Parse(print1, filepath.Base(path), loader)
	if err != nil {
		report.fail(label, fmt.Sprintf("Error: failed to parse printed script: %v", err))
		return
	}
	print2 := printer.Print(script2, "  ", newline)
	if print1 != print2 {
		lines1 := strings.Split(normalizeLF(print1), "\n")
		lines2 := strings.Split(normalizeLF(print2), "\n")
		n := len(lines1)
		if len(lines2) < n {
			n = len(lines2)
		}
		details := []string{}
		for i := 0; i < n; i++ {
			if lines1[i] != lines2[i] {
				details = append(details,
					fmt.Sprintf("> Printer output not idempotent at line %d", i+1),
					fmt.Sprintf(">  print1: %s", lines1[i]),
					fmt.Sprintf(">  print2: %s", lines2[i]))
				break
			}
		}
		if len(lines1) != len(lines2) {
			details = append(details, fmt.Sprintf("> Line count differs: print1=%d, print2=%d", len(lines1), len(lines2)))
		}
		report.fail(label, details...)
		return
	}

	for _, item := range cases {
		res := runTestCase(path, print1, item, crlf)
		if !res.passed {
			report.fail(label, diffDetails(res)...)
			return
		}
	}
	report.pass(label)
}

var langSiblingPattern = regexp.MustCompile(`\.\w{2}\.lor$`)

// collectTestFiles gathers .lor files recursively, skipping imports/ and
// modified/ directories and translation siblings like story.fr.lor.
func collectTestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "imports", "modified":
				if path != dir {
					return fs.SkipDir
				}
			}
			return nil
		}
		if filepath.Ext(path) != ".lor" || langSiblingPattern.MatchString(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

var testBlockPattern = regexp.MustCompile(`(?s)<test>(.*?)</test>`)

// extractTests pulls <test> YAML blocks out of a scenario file. The blocks
// live inside block comments, so the script itself parses cleanly.
func extractTests(content string) ([]testCase, error) {
	var cases []testCase
	for _, match := range testBlockPattern.FindAllStringSubmatch(content, -1) {
		var block []testCase
		if err := yaml.Unmarshal([]byte(match[1]), &block); err != nil {
			return nil, fmt.Errorf("invalid <test> block: %w", err)
		}
		cases = append(cases, block...)
	}
	return cases, nil
}

func normalizeLF(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func normalizeNewlines(s string, crlf bool) string {
	s = normalizeLF(s)
	if crlf {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}
