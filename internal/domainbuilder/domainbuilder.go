// Package domainbuilder computes, for each Lesson, the full set of
// feasible (slot, room, instructor) candidate tuples from the static
// constraints: capacity sufficiency and instructor qualification.
// Grounded in original_source/CSP.py's create_domains, generalized to
// the Problem-scoped idiom.
package domainbuilder

import (
	"fmt"

	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/schederr"
)

// Build returns domain[lesson.ID] = candidate tuples, for every Lesson.
// A Lesson with no qualifying instructor or no suitable room gets an
// empty domain and a corresponding error is returned (wrapping
// ErrNoCandidateInstructor / ErrNoSuitableRoom) so the caller can decide
// whether that is fatal (C5) or just a penalty (C7).
func Build(lessons []model.Lesson, groups []model.Group, rooms []model.Room, instructors []model.Instructor) (map[int][]model.Tuple, []error) {
	groupByNumber := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		groupByNumber[g.Number] = g
	}

	domains := make(map[int][]model.Tuple, len(lessons))
	var errs []error
	slots := model.AllSlots()

	for _, lesson := range lessons {
		group := groupByNumber[lesson.GroupID]
		effectiveSize := group.Size
		if lesson.HasSubgroup() {
			effectiveSize = group.SubgroupSize()
		}

		var qualified []model.Instructor
		for _, ins := range instructors {
			if ins.Qualifies(lesson.SubjectID, lesson.Kind) {
				qualified = append(qualified, ins)
			}
		}
		if len(qualified) == 0 {
			errs = append(errs, fmt.Errorf("%w: lesson %d (subject %s, %s)", schederr.ErrNoCandidateInstructor, lesson.ID, lesson.SubjectID, lesson.Kind))
			domains[lesson.ID] = nil
			continue
		}

		var suitable []model.Room
		for _, r := range rooms {
			if r.Capacity >= effectiveSize {
				suitable = append(suitable, r)
			}
		}
		if len(suitable) == 0 {
			errs = append(errs, fmt.Errorf("%w: lesson %d needs capacity %d", schederr.ErrNoSuitableRoom, lesson.ID, effectiveSize))
			domains[lesson.ID] = nil
			continue
		}

		tuples := make([]model.Tuple, 0, len(slots)*len(suitable)*len(qualified))
		for _, slot := range slots {
			for _, room := range suitable {
				for _, ins := range qualified {
					tuples = append(tuples, model.Tuple{Slot: slot, RoomID: room.ID, InstructorID: ins.ID})
				}
			}
		}
		domains[lesson.ID] = tuples
	}

	return domains, errs
}
