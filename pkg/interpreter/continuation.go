package interpreter

import (
	"loreline/engine-go/pkg/ast"
	"loreline/engine-go/pkg/snapshot"
	"loreline/engine-go/pkg/translation"
)

// Advance is the one-shot continuation handed to a dialogue handler. It may
// be invoked inside the handler or at any later point on the same goroutine;
// invoking it twice, or after the interpreter was restarted or restored, is
// a StateError.
type Advance struct {
	in   *Interpreter
	gen  uint64
	used bool
}

// Call acknowledges the dialogue line and continues execution.
func (a *Advance) Call() error {
	if a.used {
		return stateErrf("advance: continuation already used")
	}
	if a.gen != a.in.gen {
		return stateErrf("advance: stale continuation: interpreter was restarted or restored")
	}
	if a.in.pend != pendingDialogue {
		return stateErrf("advance: no dialogue pending")
	}
	a.used = true
	a.in.pend = pendingNone
	return a.in.run()
}

// Select is the one-shot continuation handed to a choice handler. The same
// staleness and reuse rules as Advance apply.
type Select struct {
	in      *Interpreter
	gen     uint64
	stmt    *ast.ChoiceStatement
	key     string
	index   int
	enabled []bool
	used    bool
}

// Choose picks the option at the given zero-based index and continues
// execution. An out-of-range index, or one whose option was presented as
// disabled, is rejected with AccessError.
func (s *Select) Choose(i int) error {
	if s.used {
		return stateErrf("select: continuation already used")
	}
	if s.gen != s.in.gen {
		return stateErrf("select: stale continuation: interpreter was restarted or restored")
	}
	if s.in.pend != pendingChoice {
		return stateErrf("select: no choice pending")
	}
	if i < 0 || i >= len(s.stmt.Options) {
		return accessErrf("select: option %d out of range (choice has %d options)", i, len(s.stmt.Options))
	}
	if !s.enabled[i] {
		return accessErrf("select: option %d is disabled", i)
	}
	s.used = true
	in := s.in
	in.pend = pendingNone
	top := &in.stack[len(in.stack)-1]
	top.cursor++
	if body := s.stmt.Options[i].Body; len(body) > 0 {
		in.push(frame{
			block: body,
			key:   translation.OptionKey(s.key, i),
			step:  snapshot.PathStep{Index: s.index, Kind: snapshot.StepOption, Option: i},
		})
	}
	return in.run()
}
