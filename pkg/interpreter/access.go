package interpreter

import "loreline/engine-go/pkg/runtime"

// GetVar reads a script variable from the host side. With StrictAccess an
// unknown name is an AccessError; otherwise it reads as null.
func (in *Interpreter) GetVar(name string) (runtime.Value, error) {
	if v, ok := in.store.Var(name); ok {
		return v, nil
	}
	if in.opts.StrictAccess {
		return nil, accessErrf("unknown variable %q", name)
	}
	return runtime.Null, nil
}

// SetVar writes a script variable from the host side.
func (in *Interpreter) SetVar(name string, v runtime.Value) {
	in.store.SetVar(name, v)
}

// GetCharacterField reads a character field from the host side, with the
// same strictness rules as script reads.
func (in *Interpreter) GetCharacterField(character, field string) (runtime.Value, error) {
	if !in.store.HasCharacter(character) {
		if in.opts.StrictAccess {
			return nil, accessErrf("unknown character %q", character)
		}
		return runtime.Null, nil
	}
	if v, ok := in.store.Field(character, field); ok {
		return v, nil
	}
	if in.opts.StrictAccess {
		return nil, accessErrf("character %q has no field %q", character, field)
	}
	return runtime.Null, nil
}

// SetCharacterField writes a character field from the host side. With
// StrictAccess the character must already be declared.
func (in *Interpreter) SetCharacterField(character, field string, v runtime.Value) error {
	if in.opts.StrictAccess && !in.store.HasCharacter(character) {
		return accessErrf("unknown character %q", character)
	}
	in.store.SetField(character, field, v)
	return nil
}
