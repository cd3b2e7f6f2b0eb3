// Package constraints is the hard-constraint oracle (C4) over a partial
// assignment: invariants I1-I6 and I8 from spec.md §3, evaluated exactly
// (no soft relaxation at this layer); week parity (I7) is handled by the
// materializer instead. Grounded in
// original_source/CSP.py's CSP.is_consistent, restructured around
// dense per-slot indices instead of a linear scan of the whole
// assignment (spec.md §9 Design Notes: dense arrays over dicts).
package constraints

import (
	"github.com/univsched/unitimetable/internal/model"
)

// Lookup bundles the read-only entity tables the checker needs to
// resolve ids into capacities, qualifications, and week types.
type Lookup struct {
	Lessons     map[int]model.Lesson
	Groups      map[string]model.Group
	Rooms       map[string]model.Room
	Instructors map[string]model.Instructor
}

// State is the partial-assignment side information the checker
// consults: which (slot,room), (slot,instructor), (slot,group[,subgroup])
// are already occupied, plus per-instructor hour counters. It is kept
// by the caller (solver or optimizer) and updated incrementally as
// lessons are committed or undone, mirroring the teacher's
// RoomTimeBadness/InstructorTimeBadness dense maps.
type State struct {
	RoomSlot       map[model.Slot]map[string]int // slot -> roomID -> lessonID
	InstructorSlot map[model.Slot]map[string]int // slot -> instructorID -> lessonID
	GroupSlot      map[model.Slot]map[string][]int // slot -> groupID -> lessonIDs (subgroup or whole)
	WeeklyHours    map[string]int                // instructorID -> committed hours
	DailyHours     map[string]map[int]int        // instructorID -> day -> hours
}

func NewState() *State {
	return &State{
		RoomSlot:       make(map[model.Slot]map[string]int),
		InstructorSlot: make(map[model.Slot]map[string]int),
		GroupSlot:      make(map[model.Slot]map[string][]int),
		WeeklyHours:    make(map[string]int),
		DailyHours:     make(map[string]map[int]int),
	}
}

// Consistent evaluates I1-I6 and I8 for placing lessonID at tuple
// against the current partial assignment, with dailyCap as the I8
// per-instructor per-day limit. Week parity (I7) is not checked here:
// the even/odd projection is left to the materializer.
func (s *State) Consistent(lk Lookup, lessonID int, tuple model.Tuple, dailyCap int) bool {
	lesson := lk.Lessons[lessonID]
	group := lk.Groups[lesson.GroupID]
	instructor := lk.Instructors[tuple.InstructorID]
	room := lk.Rooms[tuple.RoomID]

	// I6: qualification.
	if !instructor.Qualifies(lesson.SubjectID, lesson.Kind) {
		return false
	}

	// I4: capacity.
	effectiveSize := group.Size
	if lesson.HasSubgroup() {
		effectiveSize = group.SubgroupSize()
	}
	if room.Capacity < effectiveSize {
		return false
	}

	// I1: room not double-booked at this slot.
	if byRoom, ok := s.RoomSlot[tuple.Slot]; ok {
		if _, occupied := byRoom[tuple.RoomID]; occupied {
			return false
		}
	}

	// I2: instructor not double-booked at this slot.
	if byIns, ok := s.InstructorSlot[tuple.Slot]; ok {
		if _, occupied := byIns[tuple.InstructorID]; occupied {
			return false
		}
	}

	// I3: group/subgroup exclusivity at this slot.
	if byGroup, ok := s.GroupSlot[tuple.Slot]; ok {
		for _, otherID := range byGroup[lesson.GroupID] {
			other := lk.Lessons[otherID]
			if !lesson.HasSubgroup() || !other.HasSubgroup() {
				return false // a whole-group lesson conflicts with anything
			}
			if lesson.Subgroup == other.Subgroup {
				return false
			}
		}
	}

	// I5: weekly hour cap.
	if s.WeeklyHours[tuple.InstructorID]+1 > instructor.MaxHoursPerWeek {
		return false
	}

	// I8: daily cap.
	dayHours := s.DailyHours[tuple.InstructorID]
	if dayHours != nil && dayHours[tuple.Slot.Day]+1 > dailyCap {
		return false
	}

	return true
}

// Commit records lessonID at tuple, updating all the incremental
// indices Consistent relies on. Must only be called after Consistent
// returned true for the same (lessonID, tuple).
func (s *State) Commit(lesson model.Lesson, tuple model.Tuple) {
	if s.RoomSlot[tuple.Slot] == nil {
		s.RoomSlot[tuple.Slot] = make(map[string]int)
	}
	s.RoomSlot[tuple.Slot][tuple.RoomID] = lesson.ID

	if s.InstructorSlot[tuple.Slot] == nil {
		s.InstructorSlot[tuple.Slot] = make(map[string]int)
	}
	s.InstructorSlot[tuple.Slot][tuple.InstructorID] = lesson.ID

	if s.GroupSlot[tuple.Slot] == nil {
		s.GroupSlot[tuple.Slot] = make(map[string][]int)
	}
	s.GroupSlot[tuple.Slot][lesson.GroupID] = append(s.GroupSlot[tuple.Slot][lesson.GroupID], lesson.ID)

	s.WeeklyHours[tuple.InstructorID]++
	if s.DailyHours[tuple.InstructorID] == nil {
		s.DailyHours[tuple.InstructorID] = make(map[int]int)
	}
	s.DailyHours[tuple.InstructorID][tuple.Slot.Day]++
}

// Undo reverses a prior Commit for lessonID at tuple (backtracking).
func (s *State) Undo(lesson model.Lesson, tuple model.Tuple) {
	delete(s.RoomSlot[tuple.Slot], tuple.RoomID)
	delete(s.InstructorSlot[tuple.Slot], tuple.InstructorID)

	ids := s.GroupSlot[tuple.Slot][lesson.GroupID]
	for i, id := range ids {
		if id == lesson.ID {
			s.GroupSlot[tuple.Slot][lesson.GroupID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	s.WeeklyHours[tuple.InstructorID]--
	s.DailyHours[tuple.InstructorID][tuple.Slot.Day]--
}
