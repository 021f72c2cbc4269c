// Package comparison holds the comparison domain rules: subject
// normalization and coloring, A/B selection repair, and filter semantics.
package comparison

import (
	"fmt"
	"strings"

	"github.com/turtacn/competiscope/pkg/errors"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// MaxSubjects bounds a single comparison.
const MaxSubjects = 8

// Subject is one resolved comparison participant.  Key is unique within a
// comparison and derived from the identity pair (type, reference id), so the
// same company cannot be added twice no matter how it was labelled.
type Subject struct {
	Key         string                `json:"key"`
	Type        analytics.SubjectType `json:"type"`
	ReferenceID string                `json:"reference_id"`
	Label       string                `json:"label"`
	Color       string                `json:"color"`
	CompanyIDs  []string              `json:"company_ids"`
}

// SubjectKey derives the identity key for a subject reference.
func SubjectKey(t analytics.SubjectType, referenceID string) string {
	return fmt.Sprintf("%s:%s", t, referenceID)
}

// NewSubject builds an unresolved subject from a wire reference.  Label
// falls back to the reference id until the backend supplies a display name.
func NewSubject(ref analytics.SubjectRef) Subject {
	label := strings.TrimSpace(ref.Label)
	if label == "" {
		label = ref.ReferenceID
	}
	return Subject{
		Key:         SubjectKey(ref.Type, ref.ReferenceID),
		Type:        ref.Type,
		ReferenceID: ref.ReferenceID,
		Label:       label,
	}
}

// Normalize validates and dedups a list of subject references into resolved
// subjects with palette colors assigned by position.
func Normalize(refs []analytics.SubjectRef) ([]Subject, error) {
	if len(refs) == 0 {
		return nil, errors.New(errors.CodeNoSubjects, "a comparison needs at least one subject")
	}
	if len(refs) > MaxSubjects {
		return nil, errors.Newf(errors.CodeInvalidParam, "a comparison supports at most %d subjects", MaxSubjects)
	}

	subjects := make([]Subject, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.ReferenceID) == "" {
			return nil, errors.New(errors.CodeInvalidParam, "subject reference id is required")
		}
		switch ref.Type {
		case analytics.SubjectCompany, analytics.SubjectPreset:
		default:
			return nil, errors.Newf(errors.CodeInvalidParam, "unknown subject type %q", ref.Type)
		}

		s := NewSubject(ref)
		if _, dup := seen[s.Key]; dup {
			return nil, errors.Newf(errors.CodeSubjectExists, "subject %s is already part of the comparison", s.Key)
		}
		seen[s.Key] = struct{}{}
		subjects = append(subjects, s)
	}

	AssignColors(subjects)
	return subjects, nil
}

// Add appends one subject to an existing list, rejecting duplicates and
// recoloring the result.  The input slice is not modified.
func Add(subjects []Subject, ref analytics.SubjectRef) ([]Subject, error) {
	key := SubjectKey(ref.Type, ref.ReferenceID)
	for _, s := range subjects {
		if s.Key == key {
			return nil, errors.Newf(errors.CodeSubjectExists, "subject %s is already part of the comparison", key)
		}
	}
	if len(subjects) >= MaxSubjects {
		return nil, errors.Newf(errors.CodeInvalidParam, "a comparison supports at most %d subjects", MaxSubjects)
	}

	out := make([]Subject, len(subjects), len(subjects)+1)
	copy(out, subjects)
	out = append(out, NewSubject(ref))
	AssignColors(out)
	return out, nil
}

// Remove deletes the subject with the given key and recolors the remainder.
// The input slice is not modified; removing an unknown key is a no-op copy.
func Remove(subjects []Subject, key string) []Subject {
	out := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.Key != key {
			out = append(out, s)
		}
	}
	AssignColors(out)
	return out
}

// AssignColors fills subject colors by position.  A color already present
// (typically supplied by the backend) is kept.
func AssignColors(subjects []Subject) {
	for i := range subjects {
		if subjects[i].Color == "" {
			subjects[i].Color = ColorAt(i)
		}
	}
}

// ApplySummaries merges backend-resolved subject details into the local
// list, matching on key.  Backend labels, company ids, and colors win when
// present; locally assigned palette colors fill any gap the backend left.
func ApplySummaries(subjects []Subject, summaries []analytics.SubjectSummary) []Subject {
	byKey := make(map[string]analytics.SubjectSummary, len(summaries))
	for _, sum := range summaries {
		byKey[sum.SubjectKey] = sum
	}

	out := make([]Subject, len(subjects))
	copy(out, subjects)
	for i := range out {
		sum, ok := byKey[out[i].Key]
		if !ok {
			continue
		}
		if sum.Label != "" {
			out[i].Label = sum.Label
		}
		if sum.Color != "" {
			out[i].Color = sum.Color
		}
		if len(sum.CompanyIDs) > 0 {
			out[i].CompanyIDs = sum.CompanyIDs
		}
	}
	AssignColors(out)
	return out
}

// Keys projects the subject list to its identity keys, in order.
func Keys(subjects []Subject) []string {
	keys := make([]string, len(subjects))
	for i, s := range subjects {
		keys[i] = s.Key
	}
	return keys
}

// CompanyIDs collects the distinct company ids across all subjects, in first
// appearance order.  Subjects whose backend resolution has not arrived yet
// contribute their reference id when they are plain companies.
func CompanyIDs(subjects []Subject) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, s := range subjects {
		if len(s.CompanyIDs) > 0 {
			for _, id := range s.CompanyIDs {
				add(id)
			}
			continue
		}
		if s.Type == analytics.SubjectCompany {
			add(s.ReferenceID)
		}
	}
	return out
}
