package comparison

// Selection is the A/B focus pair used by the head-to-head view.  Left and
// Right hold subject keys; either may be empty when no subjects exist.
type Selection struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Repair re-anchors a selection onto the current subject list.  An invalid
// or missing left side falls back to the first subject; an invalid right
// side falls back to the second subject, skipping whatever left resolved to
// so the pair never collapses onto one subject while an alternative exists.
func Repair(sel Selection, subjects []Subject) Selection {
	if len(subjects) == 0 {
		return Selection{}
	}

	keys := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		keys[s.Key] = struct{}{}
	}

	out := sel
	if _, ok := keys[out.Left]; !ok {
		out.Left = subjects[0].Key
	}

	if _, ok := keys[out.Right]; !ok || out.Right == out.Left {
		out.Right = ""
		if len(subjects) > 1 && subjects[1].Key != out.Left {
			out.Right = subjects[1].Key
		} else {
			for _, s := range subjects {
				if s.Key != out.Left {
					out.Right = s.Key
					break
				}
			}
		}
		if out.Right == "" {
			out.Right = subjects[0].Key
		}
	}
	return out
}

// Select applies an explicit user choice for one side, leaving the other
// side to Repair.  Side must be "left" or "right"; anything else leaves the
// selection untouched.
func Select(sel Selection, subjects []Subject, side, key string) Selection {
	valid := false
	for _, s := range subjects {
		if s.Key == key {
			valid = true
			break
		}
	}
	if !valid {
		return Repair(sel, subjects)
	}

	// Choosing the key already held by the other side swaps the pair so the
	// explicit choice is honored without collapsing the selection.
	switch side {
	case "left":
		if sel.Right == key {
			sel.Right = sel.Left
		}
		sel.Left = key
	case "right":
		if sel.Left == key {
			sel.Left = sel.Right
		}
		sel.Right = key
	default:
		return Repair(sel, subjects)
	}
	return Repair(sel, subjects)
}
