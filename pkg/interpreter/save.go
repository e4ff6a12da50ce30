package interpreter

import (
	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/snapshot"
	"loreline/engine-go/pkg/translation"
)

// Save captures the interpreter's position and state as a snapshot. Saving
// is allowed at any point between Start and Finish, including while a
// dialogue or choice event is pending.
func (in *Interpreter) Save() (*snapshot.Snapshot, error) {
	if len(in.stack) == 0 {
		return nil, stateErrf("nothing to save: script is not running")
	}
	snap := snapshot.New(in.fingerprint)
	snap.Position = in.position()
	switch in.pend {
	case pendingDialogue:
		snap.Pending = "dialogue"
	case pendingChoice:
		snap.Pending = "choice"
	}
	snap.Vars = in.store.VarsNative()
	snap.Characters = in.store.CharactersNative()
	return snap, nil
}

func (in *Interpreter) position() snapshot.Position {
	pos := snapshot.Position{Beat: in.beat}
	for _, f := range in.stack[1:] {
		pos.Path = append(pos.Path, f.step)
	}
	pos.Cursor = in.stack[len(in.stack)-1].cursor
	return pos
}

// Restore replaces the interpreter's position and state with the snapshot's.
// The snapshot must carry the fingerprint of this script and its position
// must fit the script's structure; on any mismatch the interpreter is left
// untouched. Outstanding continuations become stale. Call ResumePlayback to
// continue emitting events.
func (in *Interpreter) Restore(snap *snapshot.Snapshot) error {
	if snap.Fingerprint != in.fingerprint {
		return stateErrf("snapshot fingerprint %s does not match script fingerprint %s", snap.Fingerprint, in.fingerprint)
	}
	stack, err := in.rebuild(snap.Position)
	if err != nil {
		return err
	}
	in.store.RestoreNative(snap.Vars, snap.Characters)
	in.gen++
	in.stack = stack
	in.beat = snap.Position.Beat
	in.pend = pendingRestored
	in.finished = false
	return nil
}

// rebuild replays the snapshot's descent path against the script tree,
// reconstructing every frame cursor along the way. Each step must land on a
// statement of the right shape.
func (in *Interpreter) rebuild(pos snapshot.Position) ([]frame, error) {
	beat := in.script.Beat(pos.Beat)
	if beat == nil {
		return nil, stateErrf("snapshot references unknown beat %q", pos.Beat)
	}
	stack := []frame{{block: beat.Body, key: beat.Name}}
	for _, step := range pos.Path {
		top := &stack[len(stack)-1]
		if step.Index < 0 || step.Index >= len(top.block) {
			return nil, stateErrf("snapshot path index %d out of range in beat %q", step.Index, pos.Beat)
		}
		stmt := top.block[step.Index]
		stmtKey := translation.StatementKey(top.key, step.Index)
		var block []ast.Statement
		var key string
		switch step.Kind {
		case snapshot.StepThen, snapshot.StepElse:
			ifs, ok := stmt.(*ast.IfStatement)
			if !ok {
				return nil, stateErrf("snapshot path expects an if statement at %s", stmtKey)
			}
			if step.Kind == snapshot.StepThen {
				block, key = ifs.Then, translation.ThenKey(stmtKey)
			} else {
				block, key = ifs.Else, translation.ElseKey(stmtKey)
			}
		case snapshot.StepOption:
			ch, ok := stmt.(*ast.ChoiceStatement)
			if !ok {
				return nil, stateErrf("snapshot path expects a choice at %s", stmtKey)
			}
			if step.Option < 0 || step.Option >= len(ch.Options) {
				return nil, stateErrf("snapshot path option %d out of range at %s", step.Option, stmtKey)
			}
			block, key = ch.Options[step.Option].Body, translation.OptionKey(stmtKey, step.Option)
		default:
			return nil, stateErrf("snapshot path has unknown step kind %q", step.Kind)
		}
		top.cursor = step.Index + 1
		stack = append(stack, frame{block: block, key: key, step: step})
	}
	top := &stack[len(stack)-1]
	if pos.Cursor < 0 || pos.Cursor > len(top.block) {
		return nil, stateErrf("snapshot cursor %d out of range in beat %q", pos.Cursor, pos.Beat)
	}
	top.cursor = pos.Cursor
	return stack, nil
}
