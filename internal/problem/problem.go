// Package problem is the explicit aggregate spec.md §9 Design Notes
// calls for in place of module-global state: the read-only entity
// tables, the generated Lessons, their precomputed Domains, and the
// resolved Config, all passed by pointer into the backtracking solver
// and the population optimizer constructors.
package problem

import (
	"math/rand"

	"github.com/univsched/unitimetable/internal/config"
	"github.com/univsched/unitimetable/internal/constraints"
	"github.com/univsched/unitimetable/internal/domainbuilder"
	"github.com/univsched/unitimetable/internal/lessongen"
	"github.com/univsched/unitimetable/internal/model"
)

// Problem bundles everything C5 and C7 need, built once from ingest
// output.
type Problem struct {
	Rooms       []model.Room
	Groups      []model.Group
	Instructors []model.Instructor
	Subjects    []model.Subject
	Lessons     []model.Lesson

	Domains map[int][]model.Tuple
	Lookup  constraints.Lookup

	Config *config.Config
}

// New runs C2 (lesson generation) and C3 (domain building) over the
// ingested entities and returns the assembled Problem plus any
// NoCandidateInstructor/NoSuitableRoom errors domain building raised
// (one per affected Lesson; the caller decides whether these are fatal
// per spec.md §7).
func New(rooms []model.Room, groups []model.Group, instructors []model.Instructor, subjects []model.Subject, cfg *config.Config) (*Problem, []error) {
	lessons := lessongen.Generate(subjects, groups)
	domains, errs := domainbuilder.Build(lessons, groups, rooms, instructors)

	lessonByID := make(map[int]model.Lesson, len(lessons))
	for _, l := range lessons {
		lessonByID[l.ID] = l
	}
	groupByNumber := make(map[string]model.Group, len(groups))
	for _, g := range groups {
		groupByNumber[g.Number] = g
	}
	roomByID := make(map[string]model.Room, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r
	}
	instructorByID := make(map[string]model.Instructor, len(instructors))
	for _, i := range instructors {
		instructorByID[i.ID] = i
	}

	p := &Problem{
		Rooms:       rooms,
		Groups:      groups,
		Instructors: instructors,
		Subjects:    subjects,
		Lessons:     lessons,
		Domains:     domains,
		Lookup: constraints.Lookup{
			Lessons:     lessonByID,
			Groups:      groupByNumber,
			Rooms:       roomByID,
			Instructors: instructorByID,
		},
		Config: cfg,
	}
	return p, errs
}

// SubjectByID is a convenience lookup used by the fitness evaluator and
// materializer, built on demand since it is not on the solver's hot
// path.
func (p *Problem) SubjectByID() map[string]model.Subject {
	out := make(map[string]model.Subject, len(p.Subjects))
	for _, s := range p.Subjects {
		out[s.ID] = s
	}
	return out
}

// NewRand returns a seeded *rand.Rand derived from Config.Seed mixed
// with salt, so concurrent GA workers each get an independent,
// reproducible stream instead of racing on the global math/rand
// source (spec.md §9 Design Notes).
func (p *Problem) NewRand(salt int64) *rand.Rand {
	seed := p.Config.Seed
	// a cheap, deterministic mix; this does not need to be
	// cryptographically independent, only reproducible per worker.
	seed = seed*6364136223846793005 + salt
	return rand.New(rand.NewSource(seed))
}
