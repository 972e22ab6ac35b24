package collection

// VariableTable maps variable names to their JSON values. It is built once per
// collection and never modified afterwards.
type VariableTable struct {
	values map[string]any
}

// NewVariableTable builds the table from a collection's variable list. Entries
// without a key or value, and entries whose value is the empty string, are
// skipped. A later duplicate key replaces an earlier one.
func NewVariableTable(vars []Variable) VariableTable {
	values := make(map[string]any, len(vars))
	for _, v := range vars {
		if v.Key == nil || v.Value == nil {
			continue
		}
		if s, ok := v.Value.(string); ok && s == "" {
			continue
		}
		values[*v.Key] = v.Value
	}
	return VariableTable{values: values}
}

// Lookup returns the raw value stored under name.
func (t VariableTable) Lookup(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// String returns the value stored under name when it is a string.
func (t VariableTable) String(name string) (string, bool) {
	v, ok := t.values[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Len returns the number of variables in the table.
func (t VariableTable) Len() int { return len(t.values) }
