package runtime

// Store holds the mutable state of one interpreter: script-scoped variables
// and per-character fields. Keys are independent across character ids.
type Store struct {
	vars       map[string]Value
	characters map[string]map[string]Value
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		vars:       make(map[string]Value),
		characters: make(map[string]map[string]Value),
	}
}

// Var reads a script variable.
func (s *Store) Var(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVar writes a script variable.
func (s *Store) SetVar(name string, v Value) {
	s.vars[name] = v
}

// HasCharacter reports whether the character id exists in the store.
func (s *Store) HasCharacter(id string) bool {
	_, ok := s.characters[id]
	return ok
}

// DeclareCharacter ensures a field map exists for the character id.
func (s *Store) DeclareCharacter(id string) {
	if _, ok := s.characters[id]; !ok {
		s.characters[id] = make(map[string]Value)
	}
}

// Field reads a character field.
func (s *Store) Field(id, field string) (Value, bool) {
	fields, ok := s.characters[id]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

// SetField writes a character field, creating the character entry when
// needed.
func (s *Store) SetField(id, field string, v Value) {
	s.DeclareCharacter(id)
	s.characters[id][field] = v
}

// VarsNative exports the variables as JSON-native values.
func (s *Store) VarsNative() map[string]any {
	out := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		out[k] = ToNative(v)
	}
	return out
}

// CharactersNative exports the character fields as JSON-native values.
func (s *Store) CharactersNative() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.characters))
	for id, fields := range s.characters {
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = ToNative(v)
		}
		out[id] = m
	}
	return out
}

// RestoreNative replaces the store contents from JSON-native maps.
func (s *Store) RestoreNative(vars map[string]any, characters map[string]map[string]any) {
	s.vars = make(map[string]Value, len(vars))
	for k, v := range vars {
		s.vars[k] = FromNative(v)
	}
	s.characters = make(map[string]map[string]Value, len(characters))
	for id, fields := range characters {
		m := make(map[string]Value, len(fields))
		for k, v := range fields {
			m[k] = FromNative(v)
		}
		s.characters[id] = m
	}
}
