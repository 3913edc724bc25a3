package forms

// IsVisible reports whether field should be shown for the current state.
//
// includes only matches when the controlling value is a list; a scalar
// controlling value never satisfies includes, whatever dependsOn.value is.
func IsVisible(field FieldSpec, state State) bool {
	dep := field.DependsOn
	if dep == nil {
		return true
	}
	current := state.Get(dep.Field)

	switch dep.Condition {
	case ConditionNotEquals:
		return !current.StrictEquals(dep.Value)
	case ConditionIncludes:
		if !current.IsMulti() {
			return false
		}
		wanted := dep.Value.List()
		for _, have := range current.Items() {
			for _, w := range wanted {
				if have == w {
					return true
				}
			}
		}
		return false
	default:
		return current.StrictEquals(dep.Value)
	}
}

// VisibleFields filters fields down to the ones currently shown.
func VisibleFields(fields []FieldSpec, state State) []FieldSpec {
	out := make([]FieldSpec, 0, len(fields))
	for _, f := range fields {
		if IsVisible(f, state) {
			out = append(out, f)
		}
	}
	return out
}
