// Package ast defines the node types shared by the parser, the interpreter
// and the printer. A Script is immutable after parse: any number of
// interpreters may walk the same tree concurrently without synchronization.
package ast

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Node is the shared behaviour of every tree node.
type Node interface {
	Pos() Position
}

// Decl is a top-level declaration: state block, character block or beat.
type Decl interface {
	Node
	declNode()
}

// Statement is an executable statement inside a beat body or nested block.
type Statement interface {
	Node
	stmtNode()
}

// Script is the root of a parsed tree. Decls preserves declaration order
// (imports are spliced in at parse time and do not appear as nodes).
type Script struct {
	Path  string
	Decls []Decl
}

func (s *Script) Pos() Position {
	if len(s.Decls) > 0 {
		return s.Decls[0].Pos()
	}
	return Position{Line: 1, Column: 1}
}

// Beats returns the script's beats in declaration order.
func (s *Script) Beats() []*Beat {
	var beats []*Beat
	for _, d := range s.Decls {
		if b, ok := d.(*Beat); ok {
			beats = append(beats, b)
		}
	}
	return beats
}

// Beat returns the named beat, or nil.
func (s *Script) Beat(name string) *Beat {
	for _, d := range s.Decls {
		if b, ok := d.(*Beat); ok && b.Name == name {
			return b
		}
	}
	return nil
}

// DefaultBeat returns the first declared beat, or nil for an empty script.
func (s *Script) DefaultBeat() *Beat {
	for _, d := range s.Decls {
		if b, ok := d.(*Beat); ok {
			return b
		}
	}
	return nil
}

// Character returns the declaration for the given character id, or nil.
func (s *Script) Character(id string) *CharacterDecl {
	for _, d := range s.Decls {
		if c, ok := d.(*CharacterDecl); ok && c.ID == id {
			return c
		}
	}
	return nil
}

// Characters returns the character declarations in declaration order.
func (s *Script) Characters() []*CharacterDecl {
	var chars []*CharacterDecl
	for _, d := range s.Decls {
		if c, ok := d.(*CharacterDecl); ok {
			chars = append(chars, c)
		}
	}
	return chars
}

// States returns the state blocks in declaration order.
func (s *Script) States() []*StateDecl {
	var states []*StateDecl
	for _, d := range s.Decls {
		if st, ok := d.(*StateDecl); ok {
			states = append(states, st)
		}
	}
	return states
}

// FieldDefault is a single `name: expression` line in a state or character
// block.
type FieldDefault struct {
	Position Position
	Name     string
	Value    Expression
}

func (f *FieldDefault) Pos() Position { return f.Position }

// StateDecl declares script-scoped variables with default values.
type StateDecl struct {
	Position Position
	Vars     []*FieldDefault
}

func (d *StateDecl) Pos() Position { return d.Position }
func (d *StateDecl) declNode()     {}

// CharacterDecl declares a character id and its default fields.
type CharacterDecl struct {
	Position Position
	ID       string
	Fields   []*FieldDefault
}

func (d *CharacterDecl) Pos() Position { return d.Position }
func (d *CharacterDecl) declNode()     {}

// Beat is a named entry point holding an ordered statement sequence.
type Beat struct {
	Position Position
	Name     string
	Body     []Statement
}

func (b *Beat) Pos() Position { return b.Position }
func (b *Beat) declNode()     {}

// DialogueStatement is a line of dialogue. Speaker is the character id, or
// empty for narrator text.
type DialogueStatement struct {
	Position Position
	Speaker  string
	Content  *TextContent
}

func (s *DialogueStatement) Pos() Position { return s.Position }
func (s *DialogueStatement) stmtNode()     {}

// ChoiceStatement presents an ordered set of options to the player.
type ChoiceStatement struct {
	Position Position
	Options  []*ChoiceOption
}

func (s *ChoiceStatement) Pos() Position { return s.Position }
func (s *ChoiceStatement) stmtNode()     {}

// ChoiceOption is one selectable entry of a choice. Condition may be nil
// (always enabled); Body may be empty.
type ChoiceOption struct {
	Position  Position
	Content   *TextContent
	Condition Expression
	Body      []Statement
}

func (o *ChoiceOption) Pos() Position { return o.Position }

// AssignOp is the operator of an assignment statement.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
)

func (op AssignOp) String() string {
	switch op {
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	default:
		return "="
	}
}

// Assignment mutates a variable or a character field.
type Assignment struct {
	Position Position
	Target   Expression // *VarRef or *FieldAccess
	Op       AssignOp
	Value    Expression
}

func (s *Assignment) Pos() Position { return s.Position }
func (s *Assignment) stmtNode()     {}

// IfStatement executes Then when the condition holds, otherwise Else.
// An `else if` chain is represented as an Else body holding a single
// IfStatement.
type IfStatement struct {
	Position  Position
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (s *IfStatement) Pos() Position { return s.Position }
func (s *IfStatement) stmtNode()     {}

// EndTarget is the jump target that terminates the script.
const EndTarget = "."

// JumpStatement transfers control to another beat, or ends the script when
// Target is EndTarget.
type JumpStatement struct {
	Position Position
	Target   string
}

func (s *JumpStatement) Pos() Position { return s.Position }
func (s *JumpStatement) stmtNode()     {}
