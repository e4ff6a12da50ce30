package interpreter

import (
	"errors"
	"strings"
	"testing"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/parser"
	"loreline/engine-go/pkg/runtime"
	"loreline/engine-go/pkg/snapshot"
	"loreline/engine-go/pkg/translation"
)

func parseScript(t *testing.T, src string) *ast.Script {
	t.Helper()
	script, err := parser.Parse(src, "test.lor", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return script
}

// transcript records every event and auto-advances, picking queued choice
// indices in order.
type transcript struct {
	t        *testing.T
	lines    []string
	picks    []int
	finished bool
}

func (tr *transcript) handlers() Handlers {
	return Handlers{
		Dialogue: func(_ *Interpreter, ev DialogueEvent, adv *Advance) {
			prefix := "~ "
			if ev.Speaker != "" {
				prefix = ev.Speaker + ": "
			}
			tr.lines = append(tr.lines, prefix+ev.Text)
			if err := adv.Call(); err != nil {
				tr.t.Fatalf("advance: %v", err)
			}
		},
		Choice: func(_ *Interpreter, ev ChoiceEvent, sel *Select) {
			for _, opt := range ev.Options {
				mark := "+"
				if !opt.Enabled {
					mark = "-"
				}
				tr.lines = append(tr.lines, mark+" "+opt.Text)
			}
			if len(tr.picks) == 0 {
				return
			}
			pick := tr.picks[0]
			tr.picks = tr.picks[1:]
			if err := sel.Choose(pick); err != nil {
				tr.t.Fatalf("choose: %v", err)
			}
		},
		Finish: func(*Interpreter) { tr.finished = true },
	}
}

func (tr *transcript) assert(want ...string) {
	tr.t.Helper()
	got := strings.Join(tr.lines, "\n")
	expected := strings.Join(want, "\n")
	if got != expected {
		tr.t.Fatalf("unexpected transcript:\n%s\nwant:\n%s", got, expected)
	}
}

func TestPlayDialogueChoiceFinish(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"beat Intro",
		"  Hello",
		"  choice",
		"    Continue",
		"      Done",
		"",
	}, "\n"))
	tr := &transcript{t: t, picks: []int{0}}
	if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !tr.finished {
		t.Fatal("expected finish event")
	}
	tr.assert("~ Hello", "+ Continue", "~ Done")
}

func TestPlayStartsAtNamedBeat(t *testing.T) {
	script := parseScript(t, "beat A\n  First\nbeat B\n  Second\n")
	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "B", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("~ Second")
}

func TestPlayUnknownBeat(t *testing.T) {
	script := parseScript(t, "beat A\n  Hi\n")
	_, err := Play(script, (&transcript{t: t}).handlers(), "Missing", Options{})
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestStateAndInterpolation(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"state",
		"  gold: 3",
		"character em",
		"  name: \"Emily\"",
		"beat B",
		"  gold += 2",
		"  em: I have {gold} gold, says {em.name}.",
		"",
	}, "\n"))
	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("em: I have 5 gold, says Emily.")
}

func TestIfElseBranching(t *testing.T) {
	src := strings.Join([]string{
		"state",
		"  n: %s",
		"beat B",
		"  if n > 1",
		"    Big",
		"  else if n > 0",
		"    Small",
		"  else",
		"    Zero",
		"",
	}, "\n")
	cases := []struct{ value, want string }{
		{"5", "~ Big"},
		{"1", "~ Small"},
		{"0", "~ Zero"},
	}
	for _, c := range cases {
		script := parseScript(t, strings.ReplaceAll(src, "%s", c.value))
		tr := &transcript{t: t}
		if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
			t.Fatalf("play n=%s: %v", c.value, err)
		}
		tr.assert(c.want)
	}
}

func TestJumpAndEnd(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"beat A",
		"  One",
		"  -> C",
		"  Never shown",
		"beat B",
		"  Skipped",
		"beat C",
		"  Two",
		"  -> .",
		"  Also never shown",
		"",
	}, "\n"))
	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !tr.finished {
		t.Fatal("expected finish after -> .")
	}
	tr.assert("~ One", "~ Two")
}

func TestJumpToUnknownBeat(t *testing.T) {
	script := parseScript(t, "beat A\n  -> Missing\n")
	_, err := Play(script, (&transcript{t: t}).handlers(), "", Options{})
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestChoiceConditionsDisableOptions(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"state",
		"  gold: 5",
		"beat B",
		"  choice",
		"    Leave",
		"    Pay if gold >= 10",
		"",
	}, "\n"))
	var sel *Select
	var options []PresentedOption
	h := Handlers{
		Dialogue: func(*Interpreter, DialogueEvent, *Advance) {},
		Choice: func(_ *Interpreter, ev ChoiceEvent, s *Select) {
			options, sel = ev.Options, s
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(options) != 2 || !options[0].Enabled || options[1].Enabled {
		t.Fatalf("unexpected options: %+v", options)
	}

	var accessErr *AccessError
	if err := sel.Choose(1); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError selecting disabled option, got %v", err)
	}
	if err := sel.Choose(5); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError selecting out of range, got %v", err)
	}
	if err := sel.Choose(0); err != nil {
		t.Fatalf("expected enabled option to select, got %v", err)
	}
	if err := sel.Choose(0); err == nil {
		t.Fatal("expected reuse of continuation to fail")
	}
}

func TestStrictAccess(t *testing.T) {
	script := parseScript(t, "beat B\n  a{missing}b\n")
	var accessErr *AccessError
	_, err := Play(script, (&transcript{t: t}).handlers(), "", Options{StrictAccess: true})
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError, got %v", err)
	}

	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
		t.Fatalf("non-strict play: %v", err)
	}
	tr.assert("~ ab")
}

func TestHostFunctions(t *testing.T) {
	script := parseScript(t, "beat B\n  Rolled {roll(6)}\n")
	opts := Options{Functions: map[string]Function{
		"roll": func(args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				t.Fatalf("expected 1 arg, got %d", len(args))
			}
			return runtime.IntValue{Val: 4}, nil
		},
	}}
	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", opts); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("~ Rolled 4")

	var accessErr *AccessError
	if _, err := Play(script, (&transcript{t: t}).handlers(), "", Options{}); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError for unregistered function, got %v", err)
	}
}

func TestTagsCarryRuneOffsets(t *testing.T) {
	script := parseScript(t, "character em\n  name: \"Émilie\"\nbeat B\n  em: <wave>{em.name}</wave>!\n")
	var got DialogueEvent
	h := Handlers{
		Dialogue: func(_ *Interpreter, ev DialogueEvent, adv *Advance) {
			got = ev
			_ = adv.Call()
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if got.Text != "Émilie!" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %+v", got.Tags)
	}
	if got.Tags[0].Offset != 0 || got.Tags[0].Closing {
		t.Fatalf("unexpected opening tag %+v", got.Tags[0])
	}
	// Offsets count runes of the rendered text, not bytes.
	if got.Tags[1].Offset != 6 || !got.Tags[1].Closing {
		t.Fatalf("unexpected closing tag %+v", got.Tags[1])
	}
}

func TestSaveAtDialogueResumesWithoutReplay(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"state",
		"  n: 0",
		"beat B",
		"  First",
		"  n += 1",
		"  Second {n}",
		"",
	}, "\n"))

	var snap []byte
	h := Handlers{
		Dialogue: func(in *Interpreter, ev DialogueEvent, adv *Advance) {
			s, err := in.Save()
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			data, err := s.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			snap = data
			// Do not advance: the playthrough continues from the snapshot.
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}

	decoded := decodeSnap(t, snap)
	tr := &transcript{t: t}
	if _, err := Resume(script, tr.handlers(), decoded, "", Options{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !tr.finished {
		t.Fatal("expected finish")
	}
	// "First" was already shown before the save and must not replay.
	tr.assert("~ Second 1")
}

func TestSaveAtChoiceRepresentsChoice(t *testing.T) {
	script := parseScript(t, strings.Join([]string{
		"beat B",
		"  choice",
		"    Continue",
		"      Done",
		"",
	}, "\n"))

	var snap []byte
	h := Handlers{
		Choice: func(in *Interpreter, ev ChoiceEvent, sel *Select) {
			s, err := in.Save()
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			data, err := s.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			snap = data
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}

	tr := &transcript{t: t, picks: []int{0}}
	if _, err := Resume(script, tr.handlers(), decodeSnap(t, snap), "", Options{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !tr.finished {
		t.Fatal("expected finish")
	}
	// The pending choice is presented again after restoring.
	tr.assert("+ Continue", "~ Done")
}

func TestRestoreRejectsOtherScript(t *testing.T) {
	script := parseScript(t, "beat B\n  Hello\n  World\n")
	other := parseScript(t, "beat Other\n  Hi\n")

	var snap []byte
	h := Handlers{
		Dialogue: func(in *Interpreter, ev DialogueEvent, adv *Advance) {
			if snap == nil {
				s, err := in.Save()
				if err != nil {
					t.Fatalf("save: %v", err)
				}
				snap, _ = s.Encode()
			}
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}

	var stateErr *StateError
	_, err := Resume(other, (&transcript{t: t}).handlers(), decodeSnap(t, snap), "", Options{})
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError for foreign snapshot, got %v", err)
	}
}

func TestRestoreAcceptsSameShapeScript(t *testing.T) {
	script := parseScript(t, "beat B\n  Hello\n  World\n")
	// Same structure, different text: fingerprints match and the snapshot
	// restores against the edited script.
	edited := parseScript(t, "beat B\n  Bonjour\n  Monde\n")

	var snap []byte
	h := Handlers{
		Dialogue: func(in *Interpreter, ev DialogueEvent, adv *Advance) {
			if snap == nil {
				s, err := in.Save()
				if err != nil {
					t.Fatalf("save: %v", err)
				}
				snap, _ = s.Encode()
			}
		},
	}
	if _, err := Play(script, h, "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}

	tr := &transcript{t: t}
	if _, err := Resume(edited, tr.handlers(), decodeSnap(t, snap), "", Options{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	tr.assert("~ Monde")
}

func TestContinuationGoesStaleAfterRestore(t *testing.T) {
	script := parseScript(t, "beat B\n  One\n  Two\n")

	var firstAdv *Advance
	var snap []byte
	in, err := Play(script, Handlers{
		Dialogue: func(in *Interpreter, ev DialogueEvent, adv *Advance) {
			if firstAdv == nil {
				firstAdv = adv
				s, err := in.Save()
				if err != nil {
					t.Fatalf("save: %v", err)
				}
				snap, _ = s.Encode()
			}
		},
	}, "", Options{})
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	if err := in.Restore(decodeSnap(t, snap)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	var stateErr *StateError
	if err := firstAdv.Call(); !errors.As(err, &stateErr) {
		t.Fatalf("expected stale continuation error, got %v", err)
	}
	if err := in.ResumePlayback(); err != nil {
		t.Fatalf("resume: %v", err)
	}
}

func TestResumeWithoutRestore(t *testing.T) {
	script := parseScript(t, "beat B\n  Hi\n")
	in, err := New(script, Handlers{Dialogue: func(*Interpreter, DialogueEvent, *Advance) {}}, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var stateErr *StateError
	if err := in.ResumePlayback(); !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestTranslationOverlayWithFallback(t *testing.T) {
	script := parseScript(t, "beat Intro\n  Hello\n  Goodbye\n")
	// The overlay only translates the first line; the second falls back.
	overlay := parseScript(t, "beat Intro\n  Bonjour\n")
	table := translation.Extract(overlay)

	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", Options{Translations: table}); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("~ Bonjour", "~ Goodbye")
}

func TestTranslationKeysFollowStructure(t *testing.T) {
	src := strings.Join([]string{
		"state",
		"  ok: true",
		"beat B",
		"  if ok",
		"    Inside then",
		"  choice",
		"    First option",
		"      Option body",
		"",
	}, "\n")
	overlay := strings.Join([]string{
		"state",
		"  ok: true",
		"beat B",
		"  if ok",
		"    Dedans",
		"  choice",
		"    Premier choix",
		"      Corps du choix",
		"",
	}, "\n")
	table := translation.Extract(parseScript(t, overlay))

	tr := &transcript{t: t, picks: []int{0}}
	if _, err := Play(parseScript(t, src), tr.handlers(), "", Options{Translations: table}); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("~ Dedans", "+ Premier choix", "~ Corps du choix")
}

func TestHostStateAccessors(t *testing.T) {
	script := parseScript(t, "state\n  gold: 2\ncharacter em\n  name: \"Emily\"\nbeat B\n  Hi\n")
	in, err := Play(script, (&transcript{t: t}).handlers(), "", Options{StrictAccess: true})
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	v, err := in.GetVar("gold")
	if err != nil || v.(runtime.IntValue).Val != 2 {
		t.Fatalf("GetVar: %#v (%v)", v, err)
	}
	v, err = in.GetCharacterField("em", "name")
	if err != nil || v.(runtime.StringValue).Val != "Emily" {
		t.Fatalf("GetCharacterField: %#v (%v)", v, err)
	}

	var accessErr *AccessError
	if _, err := in.GetCharacterField("ghost", "name"); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError, got %v", err)
	}
	if err := in.SetCharacterField("ghost", "name", runtime.StringValue{Val: "x"}); !errors.As(err, &accessErr) {
		t.Fatalf("expected AccessError on strict write, got %v", err)
	}
	if err := in.SetCharacterField("em", "mood", runtime.IntValue{Val: 1}); err != nil {
		t.Fatalf("SetCharacterField: %v", err)
	}
}

func TestCompoundAssignmentOnUnsetVariable(t *testing.T) {
	script := parseScript(t, "beat B\n  score += 3\n  Score {score}\n")
	tr := &transcript{t: t}
	if _, err := Play(script, tr.handlers(), "", Options{}); err != nil {
		t.Fatalf("play: %v", err)
	}
	tr.assert("~ Score 3")
}

func TestFinishFiresOnce(t *testing.T) {
	script := parseScript(t, "beat B\n  Hi\n")
	finishes := 0
	h := Handlers{
		Dialogue: func(_ *Interpreter, _ DialogueEvent, adv *Advance) {
			if err := adv.Call(); err != nil {
				t.Fatalf("advance: %v", err)
			}
		},
		Finish: func(*Interpreter) { finishes++ },
	}
	in, err := Play(script, h, "", Options{})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if finishes != 1 {
		t.Fatalf("expected one finish, got %d", finishes)
	}
	if !in.Finished() {
		t.Fatal("expected Finished() true")
	}
}

func decodeSnap(t *testing.T, data []byte) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Decode(data)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}
