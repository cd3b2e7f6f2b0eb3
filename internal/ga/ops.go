package ga

import (
	"math/rand"

	"github.com/univsched/unitimetable/internal/model"
)

// seed builds one randomized individual: lessons are visited in random
// order, and each is greedily placed into the week bucket(s) its
// Subject.WeekType implies (Both placing identically into Even and
// Odd) at the first slot/room/instructor domain tuple that does not
// conflict with what has already been placed in that bucket. A lesson
// with no conflict-free tuple is simply left unplaced; F4 in
// internal/fitness penalizes the resulting deviation rather than the
// optimizer treating it as fatal, matching the metaheuristic's
// tolerance for partial schedules mid-search.
func (o *Optimizer) seed(rng *rand.Rand) *Individual {
	ind := newIndividual()
	subjects := o.p.SubjectByID()

	order := append([]model.Lesson(nil), o.p.Lessons...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, lesson := range order {
		domain := o.p.Domains[lesson.ID]
		if len(domain) == 0 {
			continue
		}
		candidates := append([]model.Tuple(nil), domain...)
		rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

		weekType := subjects[lesson.SubjectID].WeekType
		for _, tuple := range candidates {
			if o.placeIfConsistent(ind, weekType, lesson, tuple) {
				break
			}
		}
	}
	return ind
}

// placeIfConsistent commits lesson at tuple into the bucket(s) implied
// by weekType if doing so does not collide with an existing room or
// instructor occupant at that slot in any bucket it would land in.
// Group/subgroup overlap at the slot is not checked.
func (o *Optimizer) placeIfConsistent(ind *Individual, weekType model.WeekType, lesson model.Lesson, tuple model.Tuple) bool {
	buckets := weekBuckets(ind, weekType)
	for _, bucket := range buckets {
		if !bucketConsistent(bucket, lesson, tuple) {
			return false
		}
	}
	placement := Placement{LessonID: lesson.ID, Tuple: tuple}
	for _, bucket := range buckets {
		(*bucket)[tuple.Slot] = append((*bucket)[tuple.Slot], placement)
	}
	return true
}

func weekBuckets(ind *Individual, weekType model.WeekType) []*map[model.Slot][]Placement {
	switch weekType {
	case model.Even:
		return []*map[model.Slot][]Placement{&ind.Even}
	case model.Odd:
		return []*map[model.Slot][]Placement{&ind.Odd}
	default:
		return []*map[model.Slot][]Placement{&ind.Even, &ind.Odd}
	}
}

// bucketConsistent reports whether placing lesson at tuple would keep
// room and instructor exclusivity (I1-I2) within a single week bucket.
// It does not check group/subgroup exclusivity (I3), and it does not
// enforce weekly/daily hour caps or qualification;
// those are left to the fitness penalty (F3) since the optimizer
// explores the penalty landscape rather than a strictly feasible
// subspace.
func bucketConsistent(bucket *map[model.Slot][]Placement, lesson model.Lesson, tuple model.Tuple) bool {
	for _, other := range (*bucket)[tuple.Slot] {
		if other.LessonID == lesson.ID {
			continue
		}
		if other.Tuple.RoomID == tuple.RoomID || other.Tuple.InstructorID == tuple.InstructorID {
			return false
		}
	}
	return true
}

// crossover builds a child by choosing, per slot, one parent's bucket
// for both weeks at once (uniform crossover keyed on time slot).
// Because a bucket is taken wholesale, no intra-slot room/instructor
// conflict can be introduced by the merge itself; a lesson that ends up
// placed in more than one slot (its two parents disagreed on where to
// put it) is silently dropped, within each week, from every slot but the
// first encountered.
func (o *Optimizer) crossover(a, b *Individual, rng *rand.Rand) *Individual {
	child := newIndividual()
	for _, slot := range model.AllSlots() {
		if rng.Intn(2) == 0 {
			child.Even[slot] = append([]Placement(nil), a.Even[slot]...)
			child.Odd[slot] = append([]Placement(nil), a.Odd[slot]...)
		} else {
			child.Even[slot] = append([]Placement(nil), b.Even[slot]...)
			child.Odd[slot] = append([]Placement(nil), b.Odd[slot]...)
		}
	}
	dedupeLessons(child)
	return child
}

func dedupeLessons(ind *Individual) {
	dedupe := func(bucket map[model.Slot][]Placement) {
		seen := make(map[int]bool)
		for slot, placements := range bucket {
			kept := placements[:0]
			for _, pl := range placements {
				if seen[pl.LessonID] {
					continue
				}
				seen[pl.LessonID] = true
				kept = append(kept, pl)
			}
			bucket[slot] = kept
		}
	}
	dedupe(ind.Even)
	dedupe(ind.Odd)
}

// mutate runs all four structural operators as independent Bernoulli
// trials at Config.GA.MutationRate: swap-week-bucket, add-lesson, and
// remove-lesson each fire on their own draw at that rate, and the reroll
// operator visits every currently-placed Lesson, independently drawing
// at that rate for each one.
func (o *Optimizer) mutate(ind *Individual, rng *rand.Rand) {
	rate := o.p.Config.GA.MutationRate
	if rng.Float64() < rate {
		o.mutateSwapWeekBucket(ind, rng)
	}
	if rng.Float64() < rate {
		o.mutateAddLesson(ind, rng)
	}
	if rng.Float64() < rate {
		o.mutateRemoveLesson(ind, rng)
	}
	o.mutateRerollSlot(ind, rng, rate)
}

// bucketMove names a candidate slot whose lessons currently sit in
// exactly one week, plus which bucket they would move from/to.
type bucketMove struct {
	slot model.Slot
	from *map[model.Slot][]Placement
	to   *map[model.Slot][]Placement
}

// mutateSwapWeekBucket picks a slot that holds lessons in exactly one
// week and moves its entire bucket to the other week, no-oping if any
// lesson in it would conflict there.
func (o *Optimizer) mutateSwapWeekBucket(ind *Individual, rng *rand.Rand) {
	var candidates []bucketMove
	for _, slot := range model.AllSlots() {
		switch {
		case len(ind.Even[slot]) > 0 && len(ind.Odd[slot]) == 0:
			candidates = append(candidates, bucketMove{slot, &ind.Even, &ind.Odd})
		case len(ind.Odd[slot]) > 0 && len(ind.Even[slot]) == 0:
			candidates = append(candidates, bucketMove{slot, &ind.Odd, &ind.Even})
		}
	}
	if len(candidates) == 0 {
		return
	}
	move := candidates[rng.Intn(len(candidates))]
	bucket := (*move.from)[move.slot]

	for _, pl := range bucket {
		lesson := o.p.Lookup.Lessons[pl.LessonID]
		if !bucketConsistent(move.to, lesson, pl.Tuple) {
			return
		}
	}
	(*move.to)[move.slot] = append([]Placement(nil), bucket...)
	delete(*move.from, move.slot)
}

func (o *Optimizer) mutateAddLesson(ind *Individual, rng *rand.Rand) {
	placed := make(map[int]bool)
	collectPlaced(ind, placed)

	candidates := make([]model.Lesson, 0)
	for _, lesson := range o.p.Lessons {
		if !placed[lesson.ID] {
			candidates = append(candidates, lesson)
		}
	}
	if len(candidates) == 0 {
		return
	}
	subjects := o.p.SubjectByID()
	lesson := candidates[rng.Intn(len(candidates))]
	domain := append([]model.Tuple(nil), o.p.Domains[lesson.ID]...)
	rng.Shuffle(len(domain), func(i, j int) { domain[i], domain[j] = domain[j], domain[i] })

	weekType := subjects[lesson.SubjectID].WeekType
	for _, tuple := range domain {
		if o.placeIfConsistent(ind, weekType, lesson, tuple) {
			return
		}
	}
}

// mutateRemoveLesson drops a uniformly random placed Lesson; if it is
// scoped to a subgroup, every sibling sharing (SubjectID, GroupID,
// Kind, Subgroup) is removed alongside it.
func (o *Optimizer) mutateRemoveLesson(ind *Individual, rng *rand.Rand) {
	placed := make(map[int]bool)
	collectPlaced(ind, placed)
	if len(placed) == 0 {
		return
	}
	ids := make([]int, 0, len(placed))
	for id := range placed {
		ids = append(ids, id)
	}
	target := o.p.Lookup.Lessons[ids[rng.Intn(len(ids))]]

	for id := range placed {
		sibling := o.p.Lookup.Lessons[id]
		if sibling.HasSubgroup() && sibling.SubjectID == target.SubjectID &&
			sibling.GroupID == target.GroupID && sibling.Kind == target.Kind &&
			sibling.Subgroup == target.Subgroup {
			removeLesson(ind.Even, id)
			removeLesson(ind.Odd, id)
		}
	}
	removeLesson(ind.Even, target.ID)
	removeLesson(ind.Odd, target.ID)
}

// mutateRerollSlot visits every currently-placed Lesson and, with its
// own independent probability rate, removes it from both weeks and
// re-places it at the first conflict-free tuple of its shuffled domain,
// into the week(s) its Subject.WeekType implies. Slot, room and
// instructor may all change; if no tuple is conflict-free the lesson
// stays unplaced.
func (o *Optimizer) mutateRerollSlot(ind *Individual, rng *rand.Rand, rate float64) {
	placed := make(map[int]bool)
	collectPlaced(ind, placed)
	if len(placed) == 0 {
		return
	}
	ids := make([]int, 0, len(placed))
	for id := range placed {
		ids = append(ids, id)
	}

	subjects := o.p.SubjectByID()
	for _, lessonID := range ids {
		if rng.Float64() >= rate {
			continue
		}
		lesson := o.p.Lookup.Lessons[lessonID]
		weekType := subjects[lesson.SubjectID].WeekType

		removeLesson(ind.Even, lessonID)
		removeLesson(ind.Odd, lessonID)

		domain := append([]model.Tuple(nil), o.p.Domains[lessonID]...)
		rng.Shuffle(len(domain), func(i, j int) { domain[i], domain[j] = domain[j], domain[i] })
		for _, tuple := range domain {
			if o.placeIfConsistent(ind, weekType, lesson, tuple) {
				break
			}
		}
	}
}

func collectPlaced(ind *Individual, out map[int]bool) {
	for _, placements := range ind.Even {
		for _, pl := range placements {
			out[pl.LessonID] = true
		}
	}
	for _, placements := range ind.Odd {
		for _, pl := range placements {
			out[pl.LessonID] = true
		}
	}
}

func removeLesson(bucket map[model.Slot][]Placement, lessonID int) {
	for slot, placements := range bucket {
		kept := placements[:0]
		for _, pl := range placements {
			if pl.LessonID != lessonID {
				kept = append(kept, pl)
			}
		}
		bucket[slot] = kept
	}
}
