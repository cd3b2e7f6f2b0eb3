// Package ingest reads the four CSV entity tables (rooms, groups,
// instructors, subjects) per the record shapes in spec.md §6. This is
// the thin external-collaborator layer spec.md keeps out of the core:
// only its data contracts matter to the solver, but a runnable
// repository needs something that honors them. Grounded in the
// teacher's line-oriented csv.Reader + "%q line %d: %v" error style
// (parse.go) and in original_source/CSP.py's csv.DictReader field
// names.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/schederr"
)

// Warning is a non-fatal ingest diagnostic, e.g. UnknownGroup
// (skip-with-warning per spec.md §4.1/§7).
type Warning struct {
	Row     int
	Message string
}

var splitSubjects = regexp.MustCompile(`[;,]`)

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schederr.ErrMalformedInput, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// first row is the header; callers index by position, not name
	return rows[1:], nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Rooms parses the "auditoriumID; capacity" table.
func Rooms(r io.Reader) ([]model.Room, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	rooms := make([]model.Room, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: rooms row %d: expected 2 fields, got %d", schederr.ErrMalformedInput, i+2, len(row))
		}
		cap, err := strconv.Atoi(field(row, 1))
		if err != nil {
			return nil, fmt.Errorf("%w: rooms row %d: capacity %q: %v", schederr.ErrMalformedInput, i+2, field(row, 1), err)
		}
		rooms = append(rooms, model.Room{ID: field(row, 0), Capacity: cap})
	}
	return rooms, nil
}

// Groups parses the "groupNumber; studentAmount; subgroups" table. The
// subgroups field may be quoted and is ';'-separated within the field;
// csv.Reader already strips the surrounding quotes, so it only needs
// re-splitting.
func Groups(r io.Reader) ([]model.Group, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	groups := make([]model.Group, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: groups row %d: expected at least 2 fields, got %d", schederr.ErrMalformedInput, i+2, len(row))
		}
		size, err := strconv.Atoi(field(row, 1))
		if err != nil {
			return nil, fmt.Errorf("%w: groups row %d: studentAmount %q: %v", schederr.ErrMalformedInput, i+2, field(row, 1), err)
		}
		var subgroups []string
		if raw := field(row, 2); raw != "" {
			for _, s := range strings.Split(raw, ";") {
				s = strings.TrimSpace(strings.Trim(s, `"`))
				if s != "" {
					subgroups = append(subgroups, s)
				}
			}
		}
		groups = append(groups, model.Group{Number: field(row, 0), Size: size, Subgroups: subgroups})
	}
	return groups, nil
}

// Instructors parses the "lecturerID; lecturerName; subjectsCanTeach;
// typesCanTeach; maxHoursPerWeek" table. The can-teach fields are split
// on both ';' and ',' and trimmed.
func Instructors(r io.Reader) ([]model.Instructor, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	instructors := make([]model.Instructor, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("%w: instructors row %d: expected 5 fields, got %d", schederr.ErrMalformedInput, i+2, len(row))
		}
		hours, err := strconv.Atoi(field(row, 4))
		if err != nil {
			return nil, fmt.Errorf("%w: instructors row %d: maxHoursPerWeek %q: %v", schederr.ErrMalformedInput, i+2, field(row, 4), err)
		}

		subjects := make(map[string]bool)
		for _, s := range splitSubjects.Split(field(row, 2), -1) {
			s = strings.TrimSpace(s)
			if s != "" {
				subjects[s] = true
			}
		}

		types := make(map[model.LessonKind]bool)
		for _, t := range splitSubjects.Split(field(row, 3), -1) {
			t = strings.TrimSpace(t)
			switch t {
			case "Лекція":
				types[model.Lecture] = true
			case "Практика":
				types[model.Practical] = true
			}
		}

		instructors = append(instructors, model.Instructor{
			ID:               field(row, 0),
			Name:             field(row, 1),
			SubjectsCanTeach: subjects,
			TypesCanTeach:    types,
			MaxHoursPerWeek:  hours,
		})
	}
	return instructors, nil
}

// Subjects parses the "id; name; groupID; numLectures; numPracticals;
// requiresSubgroups; weekType" table.
func Subjects(r io.Reader) ([]model.Subject, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	subjects := make([]model.Subject, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, fmt.Errorf("%w: subjects row %d: expected 7 fields, got %d", schederr.ErrMalformedInput, i+2, len(row))
		}
		lectures, err := strconv.Atoi(field(row, 3))
		if err != nil {
			return nil, fmt.Errorf("%w: subjects row %d: numLectures %q: %v", schederr.ErrMalformedInput, i+2, field(row, 3), err)
		}
		practicals, err := strconv.Atoi(field(row, 4))
		if err != nil {
			return nil, fmt.Errorf("%w: subjects row %d: numPracticals %q: %v", schederr.ErrMalformedInput, i+2, field(row, 4), err)
		}
		requiresSubgroups := strings.EqualFold(field(row, 5), "yes")

		subjects = append(subjects, model.Subject{
			ID:                field(row, 0),
			Name:              field(row, 1),
			GroupID:           field(row, 2),
			NumLectures:       lectures,
			NumPracticals:     practicals,
			RequiresSubgroups: requiresSubgroups,
			WeekType:          model.ParseWeekType(strings.ToLower(field(row, 6))),
		})
	}
	return subjects, nil
}

// FilterUnknownGroups drops subjects referencing an absent group id,
// per spec.md §4.1's skip-with-warning policy, and logs one warning
// line per dropped subject.
func FilterUnknownGroups(subjects []model.Subject, groups []model.Group, log *zap.Logger) []model.Subject {
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.Number] = true
	}
	kept := subjects[:0:0]
	for _, s := range subjects {
		if !known[s.GroupID] {
			log.Warn("dropping subject with unknown group",
				zap.String("subject_id", s.ID), zap.String("group_id", s.GroupID))
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// EffectiveSize is the student count a single schedulable unit of a
// Subject must be roomed for: the whole group, or one subgroup's share
// when subgroups are in play.
func EffectiveSize(group model.Group, hasSubgroup bool) int {
	if !hasSubgroup || len(group.Subgroups) == 0 {
		return group.Size
	}
	return int(math.Ceil(float64(group.Size) / float64(len(group.Subgroups))))
}
