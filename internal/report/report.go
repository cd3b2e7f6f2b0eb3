// Package report renders a materialized Timetable (C8) as a console
// table, a CSV Dataset, or a PDF document (C10). The console layout is
// grounded in the teacher's padded-Fprintf CommandByCourse/
// CommandByInstructor (cli.go); CSV/PDF rendering is grounded in
// noah-isme-sma-adp-api/pkg/export's Dataset/CSVExporter/PDFExporter,
// generalized from arbitrary string-map rows to the fixed eight-column
// timetable layout spec.md §6 calls for.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/model"
)

var columns = []string{"Timeslot", "Group(s)", "Subject", "Type", "Lecturer", "Auditorium", "Students", "Capacity"}

// Dataset is the column-oriented view report consumers (console, CSV,
// PDF) all render from, decoupled from materialize.Entry so a future
// export format does not need to learn the Timetable shape.
type Dataset struct {
	Title string
	Rows  []Row
}

type Row struct {
	Timeslot   string
	Groups     string
	Subject    string
	Kind       string
	Lecturer   string
	Auditorium string
	Students   int
	Capacity   int
}

// BuildDataset flattens one week's materialized entries into a
// timeslot-sorted Dataset.
func BuildDataset(title string, byslot map[model.Slot][]materialize.Entry) Dataset {
	slots := make([]model.Slot, 0, len(byslot))
	for slot := range byslot {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Period < slots[j].Period
	})

	ds := Dataset{Title: title}
	for _, slot := range slots {
		entries := append([]materialize.Entry(nil), byslot[slot]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].GroupLabel < entries[j].GroupLabel })
		for _, e := range entries {
			ds.Rows = append(ds.Rows, Row{
				Timeslot:   slot.String(),
				Groups:     e.GroupLabel,
				Subject:    e.SubjectName,
				Kind:       e.Kind.String(),
				Lecturer:   e.InstructorName,
				Auditorium: e.RoomID,
				Students:   e.Students,
				Capacity:   e.Capacity,
			})
		}
	}
	return ds
}

// WriteConsole prints ds as a padded, column-aligned table followed by
// a trailing summary line, mirroring the teacher's
// CommandByCourse/CommandByInstructor console output.
func WriteConsole(w io.Writer, ds Dataset, fitness float64, gapCount int) {
	widths := make([]int, len(columns))
	for i, h := range columns {
		widths[i] = len(h)
	}
	cells := make([][]string, len(ds.Rows))
	for i, row := range ds.Rows {
		cells[i] = []string{
			row.Timeslot, row.Groups, row.Subject, row.Kind, row.Lecturer,
			row.Auditorium, fmt.Sprintf("%d", row.Students), fmt.Sprintf("%d", row.Capacity),
		}
		for c, v := range cells[i] {
			if len(v) > widths[c] {
				widths[c] = len(v)
			}
		}
	}

	if ds.Title != "" {
		fmt.Fprintf(w, "%s\n", ds.Title)
	}
	for i, h := range columns {
		fmt.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)
	for _, row := range cells {
		for i, v := range row {
			fmt.Fprintf(w, "%-*s  ", widths[i], v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "fitness %.4f, %d gap(s)\n", fitness, gapCount)
}

// ToCSV encodes ds to CSV bytes, following
// noah-isme-sma-adp-api/pkg/export/csv_exporter.go's writer usage.
func ToCSV(ds Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range ds.Rows {
		record := []string{
			row.Timeslot, row.Groups, row.Subject, row.Kind, row.Lecturer,
			row.Auditorium, fmt.Sprintf("%d", row.Students), fmt.Sprintf("%d", row.Capacity),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ToPDF renders ds as a one-page-per-call table, following
// noah-isme-sma-adp-api/pkg/export/pdf_exporter.go's CellFormat
// grid layout.
func ToPDF(ds Dataset) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if ds.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, ds.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := 277.0 / float64(len(columns))
	for _, h := range columns {
		pdf.CellFormat(colWidth, 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range ds.Rows {
		cells := []string{
			row.Timeslot, row.Groups, row.Subject, row.Kind, row.Lecturer,
			row.Auditorium, fmt.Sprintf("%d", row.Students), fmt.Sprintf("%d", row.Capacity),
		}
		for _, v := range cells {
			pdf.CellFormat(colWidth, 7, v, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
