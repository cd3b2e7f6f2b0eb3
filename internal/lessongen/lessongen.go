// Package lessongen expands Subjects into the atomic Lesson instances
// the solver and optimizer assign. Grounded in
// original_source/CSP.py's generate_lessons, translated into the
// explicit-Problem idiom of spec.md §9 Design Notes (densely packed
// integer ids, no back-pointers).
package lessongen

import (
	"math"

	"github.com/univsched/unitimetable/internal/model"
)

// Generate expands subjects into an ordered, densely-id'd Lesson list.
// Deterministic given input order (P9). Subjects referencing an unknown
// group must already have been filtered out by the caller (ingest's
// FilterUnknownGroups) per spec.md §4.1's skip-with-warning policy.
func Generate(subjects []model.Subject, groups []model.Group) []model.Lesson {
	byNumber := make(map[string]*model.Group, len(groups))
	for i := range groups {
		byNumber[groups[i].Number] = &groups[i]
	}

	var lessons []model.Lesson
	nextID := 0

	for _, subject := range subjects {
		group, ok := byNumber[subject.GroupID]
		if !ok {
			continue
		}

		for i := 0; i < subject.NumLectures; i++ {
			lessons = append(lessons, model.Lesson{
				ID:        nextID,
				SubjectID: subject.ID,
				Kind:      model.Lecture,
				GroupID:   group.Number,
			})
			nextID++
		}

		if subject.RequiresSubgroups && len(group.Subgroups) > 0 {
			perSubgroup := int(math.Ceil(float64(subject.NumPracticals) / float64(len(group.Subgroups))))
			for _, sg := range group.Subgroups {
				for i := 0; i < perSubgroup; i++ {
					lessons = append(lessons, model.Lesson{
						ID:        nextID,
						SubjectID: subject.ID,
						Kind:      model.Practical,
						GroupID:   group.Number,
						Subgroup:  sg,
					})
					nextID++
				}
			}
		} else {
			for i := 0; i < subject.NumPracticals; i++ {
				lessons = append(lessons, model.Lesson{
					ID:        nextID,
					SubjectID: subject.ID,
					Kind:      model.Practical,
					GroupID:   group.Number,
				})
				nextID++
			}
		}
	}

	return lessons
}
