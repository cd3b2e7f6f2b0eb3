// Package materialize projects an Assignment (or a GA individual's
// assignment) onto the even/odd parity Timetables external report
// consumers read (C8). Grounded in original_source/CSP.py's
// week_type-driven schedule_even/schedule_odd split, generalized to the
// dense-array Timetable shape of spec.md §9 Design Notes.
package materialize

import (
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
)

// Entry is one materialized lesson placement, value-copied so it can be
// freely shared between a Timetable and a report Dataset without
// aliasing the assignment it was built from (spec.md §9's deep-copy
// semantics). It carries enough denormalized context (instructor cap,
// subject counts, group subgroups) that fitness evaluation never has to
// reach back into a Problem, which matters for the GA: its individuals
// mutate buckets independently of any single Problem-derived
// assignment.
type Entry struct {
	LessonID       int
	Slot           model.Slot
	GroupLabel     string
	GroupSubgroups []string
	SubjectID      string
	SubjectName    string
	Kind           model.LessonKind
	Subgroup       string
	InstructorID   string
	InstructorName string
	InstructorMaxHours int
	RoomID         string
	Students       int
	Capacity       int

	SubjectNumLectures       int
	SubjectNumPracticals     int
	SubjectRequiresSubgroups bool
}

// SubjectInfo is the subset of Subject fields F4 needs, recovered from
// an Entry so the fitness package never has to look a Subject back up.
type SubjectInfo struct {
	NumLectures       int
	NumPracticals     int
	RequiresSubgroups bool
	Subgroups         []string
}

// Timetable holds the two week-parity views of a schedule.
type Timetable struct {
	Even map[model.Slot][]Entry
	Odd  map[model.Slot][]Entry
}

func NewTimetable() *Timetable {
	return &Timetable{Even: make(map[model.Slot][]Entry), Odd: make(map[model.Slot][]Entry)}
}

// EntryFor builds the materialized Entry for lessonID placed at tuple,
// using p's entity tables. Exported so the population optimizer can
// build entries directly into its own per-week buckets without routing
// through Build's Subject.WeekType projection.
func EntryFor(p *problem.Problem, lessonID int, tuple model.Tuple) (Entry, bool) {
	lesson, ok := p.Lookup.Lessons[lessonID]
	if !ok {
		return Entry{}, false
	}
	subject, ok := p.SubjectByID()[lesson.SubjectID]
	if !ok {
		return Entry{}, false
	}
	group := p.Lookup.Groups[lesson.GroupID]
	instructor := p.Lookup.Instructors[tuple.InstructorID]
	room := p.Lookup.Rooms[tuple.RoomID]

	label := group.Number
	students := group.Size
	if lesson.HasSubgroup() {
		label = group.Number + " (Subgroup " + lesson.Subgroup + ")"
		students = group.SubgroupSize()
	}

	return Entry{
		LessonID:                 lessonID,
		Slot:                     tuple.Slot,
		GroupLabel:               label,
		GroupSubgroups:           group.Subgroups,
		SubjectID:                subject.ID,
		SubjectName:              subject.Name,
		Kind:                     lesson.Kind,
		Subgroup:                 lesson.Subgroup,
		InstructorID:             instructor.ID,
		InstructorName:           instructor.Name,
		InstructorMaxHours:       instructor.MaxHoursPerWeek,
		RoomID:                   room.ID,
		Students:                 students,
		Capacity:                 room.Capacity,
		SubjectNumLectures:       subject.NumLectures,
		SubjectNumPracticals:     subject.NumPracticals,
		SubjectRequiresSubgroups: subject.RequiresSubgroups,
	}, true
}

// Build projects a full assignment onto a fresh Timetable using p's
// entity tables. A Lesson whose Subject.WeekType is Even/Odd appears in
// only that week's view; Both appears, identically, in both (I7). This
// is the path the backtracking solver's output takes; the population
// optimizer builds its Timetables directly via EntryFor instead; see
// internal/ga.
func Build(p *problem.Problem, assignment map[int]model.Tuple) *Timetable {
	tt := NewTimetable()
	subjects := p.SubjectByID()

	for lessonID, tuple := range assignment {
		entry, ok := EntryFor(p, lessonID, tuple)
		if !ok {
			continue
		}
		lesson := p.Lookup.Lessons[lessonID]
		subject := subjects[lesson.SubjectID]

		switch subject.WeekType {
		case model.Even:
			tt.Even[tuple.Slot] = append(tt.Even[tuple.Slot], entry)
		case model.Odd:
			tt.Odd[tuple.Slot] = append(tt.Odd[tuple.Slot], entry)
		default: // Both
			tt.Even[tuple.Slot] = append(tt.Even[tuple.Slot], entry)
			tt.Odd[tuple.Slot] = append(tt.Odd[tuple.Slot], entry)
		}
	}

	return tt
}
