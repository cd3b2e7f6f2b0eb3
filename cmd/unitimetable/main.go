// Command unitimetable builds and reports university timetables.
// Its command tree is grounded in the teacher's cobra wiring (cli.go):
// one root command with a flat set of subcommands, each delegating to a
// RunE function. All flags are persistent flags of the root command and
// are shared by every subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/backtrack"
	"github.com/univsched/unitimetable/internal/config"
	"github.com/univsched/unitimetable/internal/fitness"
	"github.com/univsched/unitimetable/internal/ga"
	"github.com/univsched/unitimetable/internal/ingest"
	"github.com/univsched/unitimetable/internal/logging"
	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/metrics"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
	"github.com/univsched/unitimetable/internal/report"
	"github.com/univsched/unitimetable/internal/schederr"
)

var inputFiles = struct {
	rooms       string
	groups      string
	instructors string
	subjects    string
}{
	rooms:       "rooms.csv",
	groups:      "groups.csv",
	instructors: "instructors.csv",
	subjects:    "subjects.csv",
}

var (
	pdfOut string
	csvOut string
)

func main() {
	root := &cobra.Command{
		Use:   "unitimetable",
		Short: "University timetable generator",
		Long:  "Builds feasible university timetables from CSV entity tables,\neither by exhaustive search or by population-based optimization.",
	}
	root.PersistentFlags().StringVar(&inputFiles.rooms, "rooms", inputFiles.rooms, "rooms CSV path")
	root.PersistentFlags().StringVar(&inputFiles.groups, "groups", inputFiles.groups, "groups CSV path")
	root.PersistentFlags().StringVar(&inputFiles.instructors, "instructors", inputFiles.instructors, "instructors CSV path")
	root.PersistentFlags().StringVar(&inputFiles.subjects, "subjects", inputFiles.subjects, "subjects CSV path")
	root.PersistentFlags().StringVar(&pdfOut, "pdf", "", "write the timetable as a PDF to this path")
	root.PersistentFlags().StringVar(&csvOut, "csv", "", "write the timetable as CSV to this path (prefix for -even/-odd)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "find one feasible timetable by exhaustive backtracking search",
		RunE:  runSolve,
	}
	root.AddCommand(solveCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "search for a low-penalty timetable with the population optimizer",
		RunE:  runOptimize,
	}
	root.AddCommand(optimizeCmd)

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "solve first, falling back to the population optimizer if infeasible",
		RunE:  runSchedule,
	}
	root.AddCommand(scheduleCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildProblem(cfg *config.Config, log *zap.Logger) (*problem.Problem, error) {
	rooms, groups, instructors, subjects, err := readEntities(log)
	if err != nil {
		return nil, err
	}
	p, errs := problem.New(rooms, groups, instructors, subjects, cfg)
	for _, e := range errs {
		log.Warn("domain build warning", zap.Error(e))
	}
	return p, nil
}

func readEntities(log *zap.Logger) ([]model.Room, []model.Group, []model.Instructor, []model.Subject, error) {
	rooms, err := readCSVFile(inputFiles.rooms, ingest.Rooms)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	groups, err := readCSVFile(inputFiles.groups, ingest.Groups)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	instructors, err := readCSVFile(inputFiles.instructors, ingest.Instructors)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	subjects, err := readCSVFile(inputFiles.subjects, ingest.Subjects)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	subjects = ingest.FilterUnknownGroups(subjects, groups, log)
	return rooms, groups, instructors, subjects, nil
}

func readCSVFile[T any](path string, parse func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *metrics.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, log, metrics.New(), nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, log, reg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	p, err := buildProblem(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cfg)
	defer cancel()

	assignment, err := backtrack.New(p, log, reg).Solve(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no feasible timetable found: %v\n", err)
		os.Exit(2)
	}
	printTimetable(p, assignment, fitness.Evaluate(p, assignment))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, log, reg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	p, err := buildProblem(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cfg)
	defer cancel()

	best := ga.New(p, log, reg).Run(ctx)
	printIndividual(p, best)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, reg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	p, err := buildProblem(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cfg)
	defer cancel()

	assignment, err := backtrack.New(p, log, reg).Solve(ctx)
	if err == nil {
		printTimetable(p, assignment, fitness.Evaluate(p, assignment))
		return nil
	}
	if !isInfeasible(err) {
		return err
	}

	log.Info("exhaustive search found no feasible schedule, falling back to the population optimizer", zap.Error(err))
	best := ga.New(p, log, reg).Run(ctx)
	printIndividual(p, best)
	return nil
}

func isInfeasible(err error) bool {
	return errors.Is(err, schederr.ErrInfeasible) || errors.Is(err, schederr.ErrNoCandidateInstructor) || errors.Is(err, schederr.ErrNoSuitableRoom)
}

func withTimeout(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.Timeout)
}

func printTimetable(p *problem.Problem, assignment map[int]model.Tuple, score float64) {
	tt := materialize.Build(p, assignment)
	emit(tt, score)
}

func printIndividual(p *problem.Problem, best *ga.Individual) {
	tt := best.Timetable(p)
	emit(tt, best.Fitness)
}

func emit(tt *materialize.Timetable, score float64) {
	evenDS := report.BuildDataset("Even week", tt.Even)
	oddDS := report.BuildDataset("Odd week", tt.Odd)

	report.WriteConsole(os.Stdout, evenDS, score, countGaps(tt.Even))
	fmt.Println()
	report.WriteConsole(os.Stdout, oddDS, score, countGaps(tt.Odd))

	if pdfOut != "" {
		writeSide(evenDS, oddDS, writePDFPair)
	}
	if csvOut != "" {
		writeSide(evenDS, oddDS, writeCSVPair)
	}
}

func countGaps(byslot map[model.Slot][]materialize.Entry) int {
	return fitness.CountGaps(byslot)
}

func writeSide(even, odd report.Dataset, writer func(even, odd report.Dataset) error) {
	if err := writer(even, odd); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
	}
}

func writePDFPair(even, odd report.Dataset) error {
	for _, pair := range []struct {
		suffix string
		ds     report.Dataset
	}{{"-even.pdf", even}, {"-odd.pdf", odd}} {
		bytes, err := report.ToPDF(pair.ds)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfOut+pair.suffix, bytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVPair(even, odd report.Dataset) error {
	for _, pair := range []struct {
		suffix string
		ds     report.Dataset
	}{{"-even.csv", even}, {"-odd.csv", odd}} {
		bytes, err := report.ToCSV(pair.ds)
		if err != nil {
			return err
		}
		if err := os.WriteFile(csvOut+pair.suffix, bytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}
