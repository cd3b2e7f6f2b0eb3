// Package fitness is the soft-constraint penalty function (C6) over a
// materialized two-week Timetable: gap penalties for groups and
// instructors, instructor weekly overload, and deviation from required
// lecture/practical counts. Pure and side-effect free, per spec.md
// §4.5. Grounded in original_source/CSP.py's calculate_fitness (the
// windows/gap count) and the teacher's Complain (score.go) for the
// same-day sorted-period gap-counting idiom, extended with F3/F4 which
// neither source computes directly.
package fitness

import (
	"sort"

	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
)

// Evaluate computes fitness = 1/(1+penalty) for a full feasible
// assignment (the backtracking solver's output): it is first projected
// onto a Timetable per Subject.WeekType (C8), then scored.
func Evaluate(p *problem.Problem, assignment map[int]model.Tuple) float64 {
	return EvaluateTimetable(materialize.Build(p, assignment))
}

// EvaluateTimetable scores an already-materialized Timetable directly.
// This is the entry point the population optimizer uses: its
// individuals maintain their own, possibly parity-divergent, even/odd
// buckets (spec.md §4.6's mutation operators can move or duplicate
// lessons across weeks independently of Subject.WeekType), so they
// cannot always be round-tripped through a single assignment map first.
func EvaluateTimetable(tt *materialize.Timetable) float64 {
	penalty := weekPenalty(tt.Even) + weekPenalty(tt.Odd) + subjectDeviationPenalty(tt)
	if penalty < 0 {
		penalty = 0
	}
	return 1.0 / (1.0 + penalty)
}

// CountGaps reports the total F1+F2 gap count (group and instructor
// idle-period count) for one week's materialized entries, independent
// of the overload/deviation penalties EvaluateTimetable also folds in.
// Reports use this to print a gap count alongside fitness.
func CountGaps(byslot map[model.Slot][]materialize.Entry) int {
	byGroupDay := make(map[string]map[int][]int)
	byInstructorDay := make(map[string]map[int][]int)

	for slot, entries := range byslot {
		for _, e := range entries {
			if byGroupDay[e.GroupLabel] == nil {
				byGroupDay[e.GroupLabel] = make(map[int][]int)
			}
			byGroupDay[e.GroupLabel][slot.Day] = append(byGroupDay[e.GroupLabel][slot.Day], slot.Period)

			if byInstructorDay[e.InstructorID] == nil {
				byInstructorDay[e.InstructorID] = make(map[int][]int)
			}
			byInstructorDay[e.InstructorID][slot.Day] = append(byInstructorDay[e.InstructorID][slot.Day], slot.Period)
		}
	}

	gaps := 0
	for _, days := range byGroupDay {
		gaps += gapsAcrossDays(days)
	}
	for _, days := range byInstructorDay {
		gaps += gapsAcrossDays(days)
	}
	return gaps
}

// weekPenalty sums F1 (group/subgroup gaps), F2 (instructor gaps), and
// F3 (instructor overload) for one week's materialized entries.
func weekPenalty(byslot map[model.Slot][]materialize.Entry) float64 {
	byGroupDay := make(map[string]map[int][]int)      // group label -> day -> periods
	byInstructorDay := make(map[string]map[int][]int) // instructor id -> day -> periods
	instructorHours := make(map[string]int)
	instructorMax := make(map[string]int)

	for slot, entries := range byslot {
		for _, e := range entries {
			if byGroupDay[e.GroupLabel] == nil {
				byGroupDay[e.GroupLabel] = make(map[int][]int)
			}
			byGroupDay[e.GroupLabel][slot.Day] = append(byGroupDay[e.GroupLabel][slot.Day], slot.Period)

			if byInstructorDay[e.InstructorID] == nil {
				byInstructorDay[e.InstructorID] = make(map[int][]int)
			}
			byInstructorDay[e.InstructorID][slot.Day] = append(byInstructorDay[e.InstructorID][slot.Day], slot.Period)

			instructorHours[e.InstructorID]++
			instructorMax[e.InstructorID] = e.InstructorMaxHours
		}
	}

	var penalty float64
	for _, days := range byGroupDay {
		penalty += float64(gapsAcrossDays(days))
	}
	for _, days := range byInstructorDay {
		penalty += float64(gapsAcrossDays(days))
	}

	for insID, hours := range instructorHours {
		if max := instructorMax[insID]; hours > max {
			penalty += 2 * float64(hours-max)
		}
	}

	return penalty
}

func gapsAcrossDays(days map[int][]int) int {
	gaps := 0
	for _, periods := range days {
		sorted := append([]int(nil), periods...)
		sort.Ints(sorted)
		for i := 0; i+1 < len(sorted); i++ {
			if d := sorted[i+1] - sorted[i] - 1; d > 0 {
				gaps += d
			}
		}
	}
	return gaps
}

// subjectDeviationPenalty is F4: for each Subject, 2*|scheduled lectures
// - NumLectures| plus 2*sum over subgroups of |scheduled practicals for
// that subgroup - NumPracticals|. Subgroup-less practicals are counted
// under a single pseudo-subgroup (the empty string), per spec.md §4.5.
// Counts are taken over the union of lessons appearing in either week,
// deduplicated by lesson id, so a Both-type lesson placed identically
// in both weeks is counted once.
func subjectDeviationPenalty(tt *materialize.Timetable) float64 {
	type key struct {
		subjectID string
		subgroup  string
	}

	seen := make(map[int]materialize.Entry)
	collect := func(byslot map[model.Slot][]materialize.Entry) {
		for _, entries := range byslot {
			for _, e := range entries {
				seen[e.LessonID] = e
			}
		}
	}
	collect(tt.Even)
	collect(tt.Odd)

	lectureCounts := make(map[string]int)
	practicalCounts := make(map[key]int)
	subjects := make(map[string]materialize.SubjectInfo)

	for _, e := range seen {
		subjects[e.SubjectID] = materialize.SubjectInfo{
			NumLectures:       e.SubjectNumLectures,
			NumPracticals:     e.SubjectNumPracticals,
			RequiresSubgroups: e.SubjectRequiresSubgroups,
			Subgroups:         e.GroupSubgroups,
		}
		switch e.Kind {
		case model.Lecture:
			lectureCounts[e.SubjectID]++
		case model.Practical:
			practicalCounts[key{e.SubjectID, e.Subgroup}]++
		}
	}

	var penalty float64
	for subjectID, info := range subjects {
		penalty += 2 * absInt(lectureCounts[subjectID]-info.NumLectures)

		if info.RequiresSubgroups && len(info.Subgroups) > 0 {
			expected := expectedPerSubgroup(info.NumPracticals, len(info.Subgroups))
			for _, sg := range info.Subgroups {
				penalty += 2 * absInt(practicalCounts[key{subjectID, sg}]-expected)
			}
		} else {
			penalty += 2 * absInt(practicalCounts[key{subjectID, ""}]-info.NumPracticals)
		}
	}
	return penalty
}

func expectedPerSubgroup(numPracticals, subgroups int) int {
	if subgroups == 0 {
		return numPracticals
	}
	return (numPracticals + subgroups - 1) / subgroups
}

func absInt(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}
