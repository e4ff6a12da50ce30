// Package interpreter executes a parsed script as a cooperative state
// machine. The interpreter never blocks and owns no goroutines: it runs
// statements until an event needs the host (a dialogue line, a choice, the
// end of the script), hands the host a one-shot continuation, and stops.
// Everything resumes on the caller's goroutine when the continuation is
// invoked, whether that happens inside the handler or much later.
package interpreter

import (
	"fmt"

	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/runtime"
	"loreline/engine-go/pkg/snapshot"
	"loreline/engine-go/pkg/translation"
)

// Function is a host-registered function callable from script expressions.
type Function func(args []runtime.Value) (runtime.Value, error)

// Options configures an interpreter.
type Options struct {
	// Functions maps names callable from script expressions. Calling a name
	// not present here is an AccessError regardless of StrictAccess.
	Functions map[string]Function

	// StrictAccess makes reads of undeclared variables, unknown characters
	// and unset fields fail with AccessError instead of yielding null.
	StrictAccess bool

	// Translations optionally overlays replacement text, keyed by structural
	// position. Missing entries fall back to the script's own text.
	Translations *translation.Table
}

// DialogueEvent is one emitted line: the speaking character's id (empty for
// narrator text), the rendered text with interpolations resolved, and the
// inline tags with rune offsets into that text.
type DialogueEvent struct {
	Speaker string
	Text    string
	Tags    []ast.TextTag
}

// PresentedOption is one entry of a choice as shown to the player. Disabled
// options are presented but cannot be selected.
type PresentedOption struct {
	Text    string
	Tags    []ast.TextTag
	Enabled bool
}

// ChoiceEvent is an emitted choice with all options in declaration order.
type ChoiceEvent struct {
	Options []PresentedOption
}

// Handlers receives the interpreter's events. A nil Dialogue or Choice
// handler leaves the event pending with no way to continue, so hosts supply
// both; Finish may be nil.
type Handlers struct {
	Dialogue func(in *Interpreter, ev DialogueEvent, advance *Advance)
	Choice   func(in *Interpreter, ev ChoiceEvent, sel *Select)
	Finish   func(in *Interpreter)
}

type pendingState int

const (
	pendingNone pendingState = iota
	pendingDialogue
	pendingChoice
	pendingRestored
)

// frame is one level of the execution stack: a statement block, the cursor
// of the next statement to run, the translation key prefix of the block, and
// the path step by which the block was entered (zero for a beat root).
type frame struct {
	block  []ast.Statement
	cursor int
	key    string
	step   snapshot.PathStep
}

// Interpreter is a single playthrough of a script. It is not safe for
// concurrent use; all methods and continuations must be called from one
// goroutine at a time.
type Interpreter struct {
	script      *ast.Script
	handlers    Handlers
	opts        Options
	store       *runtime.Store
	fingerprint string

	// gen invalidates outstanding continuations whenever execution is
	// restarted or restored over them.
	gen      uint64
	beat     string
	stack    []frame
	pend     pendingState
	finished bool
	running  bool
}

// New creates an interpreter and seeds its store from the script's state and
// character declarations, evaluating defaults in declaration order.
func New(script *ast.Script, handlers Handlers, opts Options) (*Interpreter, error) {
	in := &Interpreter{
		script:      script,
		handlers:    handlers,
		opts:        opts,
		store:       runtime.NewStore(),
		fingerprint: script.Fingerprint(),
	}
	if err := in.seed(); err != nil {
		return nil, err
	}
	return in, nil
}

// Play creates an interpreter and starts it at the named beat, or at the
// first declared beat when beatName is empty. Events fire before Play
// returns if the handlers keep advancing synchronously.
func Play(script *ast.Script, handlers Handlers, beatName string, opts Options) (*Interpreter, error) {
	in, err := New(script, handlers, opts)
	if err != nil {
		return nil, err
	}
	if err := in.Start(beatName); err != nil {
		return in, err
	}
	return in, nil
}

// Resume creates an interpreter, restores the snapshot into it and resumes
// playback. A non-empty beatName discards the snapshot's position and starts
// at that beat instead, keeping the restored variables and fields.
func Resume(script *ast.Script, handlers Handlers, snap *snapshot.Snapshot, beatName string, opts Options) (*Interpreter, error) {
	in, err := New(script, handlers, opts)
	if err != nil {
		return nil, err
	}
	if err := in.Restore(snap); err != nil {
		return nil, err
	}
	if beatName != "" {
		err = in.Start(beatName)
	} else {
		err = in.ResumePlayback()
	}
	if err != nil {
		return in, err
	}
	return in, nil
}

func (in *Interpreter) seed() error {
	for _, d := range in.script.Decls {
		switch decl := d.(type) {
		case *ast.StateDecl:
			for _, f := range decl.Vars {
				v, err := in.eval(f.Value)
				if err != nil {
					return err
				}
				in.store.SetVar(f.Name, v)
			}
		case *ast.CharacterDecl:
			in.store.DeclareCharacter(decl.ID)
			for _, f := range decl.Fields {
				v, err := in.eval(f.Value)
				if err != nil {
					return err
				}
				in.store.SetField(decl.ID, f.Name, v)
			}
		}
	}
	return nil
}

// Start positions the interpreter at the named beat (or the first declared
// beat when beatName is empty) and runs until an event is pending or the
// script finishes. Any outstanding continuations become stale.
func (in *Interpreter) Start(beatName string) error {
	beat := in.script.DefaultBeat()
	if beatName != "" {
		beat = in.script.Beat(beatName)
	}
	if beat == nil {
		if beatName != "" {
			return stateErrf("no beat named %q", beatName)
		}
		return stateErrf("script has no beats")
	}
	in.gen++
	in.beat = beat.Name
	in.stack = []frame{{block: beat.Body, key: beat.Name}}
	in.pend = pendingNone
	in.finished = false
	return in.run()
}

// ResumePlayback continues execution after Restore. The statement that was
// pending at save time re-emits for a choice and is skipped for dialogue,
// which was already shown before the save.
func (in *Interpreter) ResumePlayback() error {
	if in.pend != pendingRestored {
		return stateErrf("nothing to resume: no snapshot was restored")
	}
	in.pend = pendingNone
	return in.run()
}

// Finished reports whether the script has run to completion.
func (in *Interpreter) Finished() bool { return in.finished }

// CurrentBeat returns the name of the beat currently executing.
func (in *Interpreter) CurrentBeat() string { return in.beat }

// run drives the statement loop until an event is pending or the script
// finishes. Re-entrant calls from inside a handler return immediately; the
// outer loop picks up whatever state the handler left behind.
func (in *Interpreter) run() error {
	if in.running {
		return nil
	}
	in.running = true
	defer func() { in.running = false }()
	for in.pend == pendingNone && !in.finished {
		if err := in.step(); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) step() error {
	for len(in.stack) > 0 {
		top := &in.stack[len(in.stack)-1]
		if top.cursor < len(top.block) {
			break
		}
		in.stack = in.stack[:len(in.stack)-1]
	}
	if len(in.stack) == 0 {
		in.finish()
		return nil
	}
	f := &in.stack[len(in.stack)-1]
	stmt := f.block[f.cursor]
	key := translation.StatementKey(f.key, f.cursor)
	switch s := stmt.(type) {
	case *ast.DialogueStatement:
		// Advance past the line before emitting so that a snapshot taken
		// while it is pending resumes after it, never replaying it.
		f.cursor++
		return in.emitDialogue(s, key)
	case *ast.ChoiceStatement:
		// The cursor stays on the choice until an option is selected; a
		// snapshot taken here re-presents the same choice on resume.
		return in.emitChoice(s, key, f.cursor)
	case *ast.Assignment:
		f.cursor++
		return in.execAssign(s)
	case *ast.IfStatement:
		f.cursor++
		return in.execIf(s, key, f.cursor-1)
	case *ast.JumpStatement:
		return in.execJump(s)
	default:
		pos := stmt.Pos()
		return stateErrf("%d:%d: unexpected statement", pos.Line, pos.Column)
	}
}

func (in *Interpreter) finish() {
	in.finished = true
	in.pend = pendingNone
	if in.handlers.Finish != nil {
		in.handlers.Finish(in)
	}
}

func (in *Interpreter) push(f frame) {
	in.stack = append(in.stack, f)
}

func (in *Interpreter) emitDialogue(s *ast.DialogueStatement, key string) error {
	text, tags, err := in.renderContent(in.translated(key, s.Content))
	if err != nil {
		return err
	}
	in.pend = pendingDialogue
	adv := &Advance{in: in, gen: in.gen}
	if in.handlers.Dialogue != nil {
		in.handlers.Dialogue(in, DialogueEvent{Speaker: s.Speaker, Text: text, Tags: tags}, adv)
	}
	return nil
}

func (in *Interpreter) emitChoice(s *ast.ChoiceStatement, key string, index int) error {
	presented := make([]PresentedOption, len(s.Options))
	enabled := make([]bool, len(s.Options))
	for i, opt := range s.Options {
		enabled[i] = true
		if opt.Condition != nil {
			v, err := in.eval(opt.Condition)
			if err != nil {
				return err
			}
			enabled[i] = runtime.Truthy(v)
		}
		text, tags, err := in.renderContent(in.translated(translation.OptionKey(key, i), opt.Content))
		if err != nil {
			return err
		}
		presented[i] = PresentedOption{Text: text, Tags: tags, Enabled: enabled[i]}
	}
	in.pend = pendingChoice
	sel := &Select{in: in, gen: in.gen, stmt: s, key: key, index: index, enabled: enabled}
	if in.handlers.Choice != nil {
		in.handlers.Choice(in, ChoiceEvent{Options: presented}, sel)
	}
	return nil
}

func (in *Interpreter) execAssign(s *ast.Assignment) error {
	val, err := in.eval(s.Value)
	if err != nil {
		return err
	}
	if s.Op != ast.AssignSet {
		cur, err := in.readTarget(s.Target)
		if err != nil {
			return err
		}
		if cur == nil || cur.Kind() == runtime.KindNull {
			// Compound assignment treats an unset target as the operand's
			// zero, so `score += 1` works without a state block.
			cur = zeroLike(val)
		}
		switch s.Op {
		case ast.AssignAdd:
			val, err = runtime.Add(cur, val)
		case ast.AssignSub:
			val, err = runtime.Arithmetic("-", cur, val)
		}
		if err != nil {
			return posErr(s.Position, err)
		}
	}
	return in.writeTarget(s.Target, val)
}

func (in *Interpreter) readTarget(target ast.Expression) (runtime.Value, error) {
	switch t := target.(type) {
	case *ast.VarRef:
		return in.readVar(t.Name, t.Position)
	case *ast.FieldAccess:
		return in.readField(t.Character, t.Field, t.Position)
	}
	pos := target.Pos()
	return nil, stateErrf("%d:%d: invalid assignment target", pos.Line, pos.Column)
}

func (in *Interpreter) writeTarget(target ast.Expression, v runtime.Value) error {
	switch t := target.(type) {
	case *ast.VarRef:
		in.store.SetVar(t.Name, v)
		return nil
	case *ast.FieldAccess:
		if in.opts.StrictAccess && !in.store.HasCharacter(t.Character) {
			return accessErrf("%d:%d: unknown character %q", t.Position.Line, t.Position.Column, t.Character)
		}
		in.store.SetField(t.Character, t.Field, v)
		return nil
	}
	pos := target.Pos()
	return stateErrf("%d:%d: invalid assignment target", pos.Line, pos.Column)
}

func (in *Interpreter) execIf(s *ast.IfStatement, key string, index int) error {
	cond, err := in.eval(s.Condition)
	if err != nil {
		return err
	}
	if runtime.Truthy(cond) {
		if len(s.Then) > 0 {
			in.push(frame{
				block: s.Then,
				key:   translation.ThenKey(key),
				step:  snapshot.PathStep{Index: index, Kind: snapshot.StepThen},
			})
		}
		return nil
	}
	if len(s.Else) > 0 {
		in.push(frame{
			block: s.Else,
			key:   translation.ElseKey(key),
			step:  snapshot.PathStep{Index: index, Kind: snapshot.StepElse},
		})
	}
	return nil
}

func (in *Interpreter) execJump(s *ast.JumpStatement) error {
	if s.Target == ast.EndTarget {
		in.stack = nil
		return nil
	}
	beat := in.script.Beat(s.Target)
	if beat == nil {
		return stateErrf("%d:%d: jump to unknown beat %q", s.Position.Line, s.Position.Column, s.Target)
	}
	in.beat = beat.Name
	in.stack = []frame{{block: beat.Body, key: beat.Name}}
	return nil
}

func (in *Interpreter) translated(key string, content *ast.TextContent) *ast.TextContent {
	if c, ok := in.opts.Translations.Lookup(key); ok {
		return c
	}
	return content
}

func zeroLike(v runtime.Value) runtime.Value {
	switch v.Kind() {
	case runtime.KindString:
		return runtime.StringValue{}
	case runtime.KindFloat:
		return runtime.FloatValue{}
	default:
		return runtime.IntValue{}
	}
}

func posErr(pos ast.Position, err error) error {
	return fmt.Errorf("%d:%d: %w", pos.Line, pos.Column, err)
}
