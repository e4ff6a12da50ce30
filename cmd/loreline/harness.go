package main

import (
	"os"
	"path/filepath"
	"strings"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/driver"
	"loreline/engine-go/pkg/interpreter"
	"loreline/engine-go/pkg/parser"
	"loreline/engine-go/pkg/runtime"
	"loreline/engine-go/pkg/translation"
)

type harnessResult struct {
	passed   bool
	actual   string
	expected string
	errMsg   string
}

// harness drives one scenario: it plays the script, records a transcript of
// every dialogue line and choice, optionally saves and resumes mid-run, and
// compares the transcript with the scenario's expected output.
type harness struct {
	path    string
	content string
	crlf    bool
	item    testCase

	out           strings.Builder
	choices       []int
	choiceCount   int
	dialogueCount int
	script        *ast.Script
	restoreInput  *string
	opts          interpreter.Options
	result        *harnessResult
}

// testLoader resolves imports next to the scenario file, normalised to the
// line-ending mode under test.
func testLoader(path string, crlf bool) parser.FileLoader {
	base := driver.DiskLoader(filepath.Dir(path))
	return func(p string, supply func(*string)) {
		base(p, func(src *string) {
			if src == nil {
				supply(nil)
				return
			}
			s := normalizeNewlines(*src, crlf)
			supply(&s)
		})
	}
}

func runTestCase(path, raw string, item testCase, crlf bool) harnessResult {
	h := &harness{
		path:    path,
		content: normalizeNewlines(raw, crlf),
		crlf:    crlf,
		item:    item,
		choices: append([]int(nil), item.Choices...),
	}
	if err := h.prepare(); err != nil {
		return harnessResult{expected: item.Expected, errMsg: err.Error()}
	}
	return h.run()
}

func (h *harness) prepare() error {
	if h.item.Translation != "" {
		stem := strings.TrimSuffix(h.path, ".lor")
		translationPath := stem + "." + h.item.Translation + ".lor"
		data, err := os.ReadFile(translationPath)
		if err != nil {
			return err
		}
		script, err := parser.Parse(normalizeNewlines(string(data), h.crlf), filepath.Base(translationPath), testLoader(h.path, h.crlf))
		if err != nil {
			return err
		}
		h.opts.Translations = translation.Extract(script)
	}
	if h.item.RestoreFile != "" {
		data, err := os.ReadFile(filepath.Join(filepath.Dir(h.path), h.item.RestoreFile))
		if err != nil {
			return err
		}
		s := normalizeNewlines(string(data), h.crlf)
		h.restoreInput = &s
	}
	return nil
}

func (h *harness) run() harnessResult {
	script, err := parser.Parse(h.content, filepath.Base(h.path), testLoader(h.path, h.crlf))
	if err != nil {
		return harnessResult{actual: h.out.String(), expected: h.item.Expected, errMsg: "Error parsing script: " + err.Error()}
	}
	h.script = script
	if _, err := interpreter.Play(script, h.handlers(), h.item.Beat, h.opts); err != nil {
		h.fail(err.Error())
	}
	if h.result == nil {
		h.fail("Test did not produce a result")
	}
	return *h.result
}

func (h *harness) handlers() interpreter.Handlers {
	return interpreter.Handlers{
		Dialogue: h.onDialogue,
		Choice:   h.onChoice,
		Finish:   h.onFinish,
	}
}

func (h *harness) onDialogue(in *interpreter.Interpreter, ev interpreter.DialogueEvent, adv *interpreter.Advance) {
	multiline := strings.Contains(ev.Text, "\n")
	tagged := insertTags(ev.Text, ev.Tags, multiline)
	if ev.Speaker != "" {
		name := ev.Speaker
		if v, err := in.GetCharacterField(ev.Speaker, "name"); err == nil {
			if s := runtime.Stringify(v); s != "" {
				name = s
			}
		}
		if multiline {
			h.out.WriteString(name + ":\n  " + tagged + "\n\n")
		} else {
			h.out.WriteString(name + ": " + tagged + "\n\n")
		}
	} else {
		h.out.WriteString("~ " + tagged + "\n\n")
	}

	if h.item.saveAtDialogue() >= 0 && h.dialogueCount == h.item.saveAtDialogue() {
		h.dialogueCount++
		h.saveAndResume(in)
		return
	}
	h.dialogueCount++
	if err := adv.Call(); err != nil {
		h.fail(err.Error())
	}
}

func (h *harness) onChoice(in *interpreter.Interpreter, ev interpreter.ChoiceEvent, sel *interpreter.Select) {
	for _, opt := range ev.Options {
		prefix := "+"
		if !opt.Enabled {
			prefix = "-"
		}
		multiline := strings.Contains(opt.Text, "\n")
		h.out.WriteString(prefix + " " + insertTags(opt.Text, opt.Tags, multiline) + "\n")
	}
	h.out.WriteString("\n")

	if h.item.saveAtChoice() >= 0 && h.choiceCount == h.item.saveAtChoice() {
		h.choiceCount++
		h.saveAndResume(in)
		return
	}
	h.choiceCount++

	if len(h.choices) == 0 {
		h.onFinish(in)
		return
	}
	index := h.choices[0]
	h.choices = h.choices[1:]
	if err := sel.Choose(index); err != nil {
		h.fail(err.Error())
	}
}

func (h *harness) onFinish(*interpreter.Interpreter) {
	if h.result != nil {
		return
	}
	actual := h.out.String()
	passed := compareOutput(h.item.Expected, actual) == -1
	h.result = &harnessResult{passed: passed, actual: actual, expected: h.item.Expected}
}

// saveAndResume snapshots the running interpreter and resumes the snapshot
// on a fresh one, optionally against a modified script from restoreFile. The
// handlers carry over, so the transcript keeps growing seamlessly.
func (h *harness) saveAndResume(in *interpreter.Interpreter) {
	snap, err := in.Save()
	if err != nil {
		h.fail(err.Error())
		return
	}
	script := h.script
	if h.restoreInput != nil {
		restored, err := parser.Parse(*h.restoreInput, filepath.Base(h.path), testLoader(h.path, h.crlf))
		if err != nil {
			h.fail("Error parsing restoreInput script: " + err.Error())
			return
		}
		script = restored
	}
	if _, err := interpreter.Resume(script, h.handlers(), snap, "", h.opts); err != nil {
		h.fail(err.Error())
	}
}

func (h *harness) fail(msg string) {
	if h.result != nil {
		return
	}
	h.result = &harnessResult{actual: h.out.String(), expected: h.item.Expected, errMsg: msg}
}

// insertTags renders tags inline as <<tag>> markers at their rune offsets.
// In multiline mode newlines gain the transcript's two-space continuation
// indent.
func insertTags(text string, tags []ast.TextTag, multiline bool) string {
	runes := []rune(text)
	var b strings.Builder
	for i := 0; i <= len(runes); i++ {
		for _, tag := range tags {
			atEnd := i == len(runes) && tag.Offset >= len(runes)
			if tag.Offset == i && i < len(runes) || atEnd {
				b.WriteString("<<")
				if tag.Closing {
					b.WriteString("/")
				}
				b.WriteString(tag.Value)
				b.WriteString(">>")
			}
		}
		if i == len(runes) {
			break
		}
		if multiline && runes[i] == '\n' {
			b.WriteString("\n  ")
		} else {
			b.WriteRune(runes[i])
		}
	}
	return strings.TrimRight(b.String(), " \t\r\n")
}

// compareOutput returns -1 when the outputs match line for line, otherwise
// the index of the first differing line.
func compareOutput(expected, actual string) int {
	expectedLines := strings.Split(strings.TrimSpace(normalizeLF(expected)), "\n")
	actualLines := strings.Split(strings.TrimSpace(normalizeLF(actual)), "\n")
	n := len(expectedLines)
	if len(actualLines) < n {
		n = len(actualLines)
	}
	for i := 0; i < n; i++ {
		if expectedLines[i] != actualLines[i] {
			return i
		}
	}
	if len(expectedLines) != len(actualLines) {
		return n
	}
	return -1
}
