// Package backtrack implements the systematic depth-first constraint
// solver (C5): MRV + degree variable ordering, least-constraining-value
// domain ordering, producing one feasible full assignment or failing.
// Grounded in original_source/CSP.py's CSP.backtrack/
// select_unassigned_variable/order_domain_values, translated from
// per-call full-assignment scans into the incremental constraints.State
// the teacher's SearchState models (search.go).
package backtrack

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/constraints"
	"github.com/univsched/unitimetable/internal/metrics"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
	"github.com/univsched/unitimetable/internal/schederr"
)

// Solver runs the deterministic depth-first search over a single
// Problem. It holds no mutable cross-call state of its own; each Solve
// call starts a fresh search.
type Solver struct {
	p       *problem.Problem
	log     *zap.Logger
	metrics *metrics.Registry

	meta map[int]lessonMeta
}

type lessonMeta struct {
	domain        []model.Tuple
	instructorSet map[string]bool
	groupID       string
}

// New builds a Solver over problem p.
func New(p *problem.Problem, log *zap.Logger, m *metrics.Registry) *Solver {
	meta := make(map[int]lessonMeta, len(p.Lessons))
	for _, lesson := range p.Lessons {
		ins := make(map[string]bool)
		for _, t := range p.Domains[lesson.ID] {
			ins[t.InstructorID] = true
		}
		meta[lesson.ID] = lessonMeta{
			domain:        p.Domains[lesson.ID],
			instructorSet: ins,
			groupID:       lesson.GroupID,
		}
	}
	return &Solver{p: p, log: log, metrics: m, meta: meta}
}

// Solve returns a full lesson-id to tuple assignment, or an error
// wrapping ErrNoCandidateInstructor/ErrNoSuitableRoom (empty domain,
// checked up front), ErrCancelled (context done between expansions), or
// ErrInfeasible (search exhausted).
func (s *Solver) Solve(ctx context.Context) (map[int]model.Tuple, error) {
	remaining := make([]int, 0, len(s.p.Lessons))
	for _, lesson := range s.p.Lessons {
		m := s.meta[lesson.ID]
		if len(m.domain) == 0 {
			cause := schederr.ErrNoCandidateInstructor
			for i := range s.p.Instructors {
				if s.p.Instructors[i].Qualifies(lesson.SubjectID, lesson.Kind) {
					cause = schederr.ErrNoSuitableRoom
					break
				}
			}
			return nil, fmt.Errorf("%w: lesson %d has an empty domain", cause, lesson.ID)
		}
		remaining = append(remaining, lesson.ID)
	}

	assignment := make(map[int]model.Tuple, len(remaining))
	state := constraints.NewState()

	ok, err := s.search(ctx, assignment, state, remaining)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: exhausted search with %d/%d lessons placed", schederr.ErrInfeasible, len(assignment), len(s.p.Lessons))
	}
	return assignment, nil
}

func (s *Solver) search(ctx context.Context, assignment map[int]model.Tuple, state *constraints.State, remaining []int) (bool, error) {
	if len(remaining) == 0 {
		return true, nil
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%w", schederr.ErrCancelled)
	default:
	}

	lessonID, rest := s.selectVariable(remaining)
	lesson := s.p.Lookup.Lessons[lessonID]
	options := s.orderValues(lessonID, rest)

	for _, tuple := range options {
		s.metrics.SolverBacktracks.Inc()
		if !state.Consistent(s.p.Lookup, lessonID, tuple, s.dailyCap()) {
			continue
		}
		state.Commit(lesson, tuple)
		assignment[lessonID] = tuple

		ok, err := s.search(ctx, assignment, state, rest)
		if ok || err != nil {
			return ok, err
		}

		delete(assignment, lessonID)
		state.Undo(lesson, tuple)
	}

	s.log.Debug("exhausted options for lesson", zap.Int("lesson_id", lessonID), zap.Int("remaining", len(remaining)))
	return false, nil
}

func (s *Solver) dailyCap() int {
	if s.p.Config == nil || s.p.Config.DailyCap == 0 {
		return 3
	}
	return s.p.Config.DailyCap
}

// selectVariable picks the next lesson to assign via MRV, breaking ties
// by degree (descending) then by ascending lesson id, and returns the
// chosen id plus the remaining slice with it removed (order-preserving
// is not required; determinism only requires the chosen id be
// reproducible, which selectVariable's tie-break chain guarantees).
func (s *Solver) selectVariable(remaining []int) (int, []int) {
	best := remaining[0]
	bestIdx := 0
	bestDomainSize := len(s.meta[best].domain)
	bestDegree := -1

	for idx, id := range remaining {
		size := len(s.meta[id].domain)
		if size > bestDomainSize {
			continue
		}
		if size < bestDomainSize {
			bestDomainSize = size
			best = id
			bestIdx = idx
			bestDegree = -1
			continue
		}
		// size == bestDomainSize: tie-break by degree, then id.
		if bestDegree < 0 {
			bestDegree = s.degree(best, remaining)
		}
		degree := s.degree(id, remaining)
		if degree > bestDegree || (degree == bestDegree && id < best) {
			best = id
			bestIdx = idx
			bestDegree = degree
		}
	}

	rest := make([]int, 0, len(remaining)-1)
	rest = append(rest, remaining[:bestIdx]...)
	rest = append(rest, remaining[bestIdx+1:]...)
	return best, rest
}

// degree counts how many other unassigned lessons share a Group or at
// least one candidate instructor with lessonID — the authoritative
// definition from spec.md §4.4/§9, not the shadowed approximation in
// original_source/CSP.py's is_neighbor.
func (s *Solver) degree(lessonID int, remaining []int) int {
	self := s.meta[lessonID]
	count := 0
	for _, other := range remaining {
		if other == lessonID {
			continue
		}
		if s.isNeighbor(self, s.meta[other]) {
			count++
		}
	}
	return count
}

func (s *Solver) isNeighbor(a, b lessonMeta) bool {
	if a.groupID == b.groupID {
		return true
	}
	for ins := range a.instructorSet {
		if b.instructorSet[ins] {
			return true
		}
	}
	return false
}

// orderValues sorts lessonID's domain ascending by the number of
// remaining-variable candidate tuples it would eliminate (LCV), ties
// broken lexicographically by (day, period, room, instructor).
func (s *Solver) orderValues(lessonID int, rest []int) []model.Tuple {
	lesson := s.p.Lookup.Lessons[lessonID]
	domain := append([]model.Tuple(nil), s.meta[lessonID].domain...)

	eliminated := make([]int, len(domain))
	for i, t := range domain {
		eliminated[i] = s.countEliminated(lesson, t, rest)
	}

	idx := make([]int, len(domain))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if eliminated[ia] != eliminated[ib] {
			return eliminated[ia] < eliminated[ib]
		}
		ta, tb := domain[ia], domain[ib]
		if ta.Slot.Day != tb.Slot.Day {
			return ta.Slot.Day < tb.Slot.Day
		}
		if ta.Slot.Period != tb.Slot.Period {
			return ta.Slot.Period < tb.Slot.Period
		}
		if ta.RoomID != tb.RoomID {
			return ta.RoomID < tb.RoomID
		}
		return ta.InstructorID < tb.InstructorID
	})

	ordered := make([]model.Tuple, len(domain))
	for i, j := range idx {
		ordered[i] = domain[j]
	}
	return ordered
}

func (s *Solver) countEliminated(lesson model.Lesson, candidate model.Tuple, rest []int) int {
	count := 0
	for _, otherID := range rest {
		otherLesson := s.p.Lookup.Lessons[otherID]
		otherMeta := s.meta[otherID]
		sameGroup := lesson.GroupID == otherLesson.GroupID
		for _, t := range otherMeta.domain {
			if t.Slot != candidate.Slot {
				continue
			}
			if t.RoomID == candidate.RoomID || t.InstructorID == candidate.InstructorID {
				count++
				continue
			}
			if sameGroup {
				if !lesson.HasSubgroup() || !otherLesson.HasSubgroup() || lesson.Subgroup == otherLesson.Subgroup {
					count++
				}
			}
		}
	}
	return count
}
