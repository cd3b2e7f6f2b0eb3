// Package schederr holds the sentinel errors shared across ingest,
// domain building, solving, and optimization (spec.md §7's error
// taxonomy), kept in their own leaf package so every layer can wrap and
// test with errors.Is without import cycles.
package schederr

import "errors"

var (
	ErrUnknownGroup          = errors.New("unknown group")
	ErrNoCandidateInstructor = errors.New("no candidate instructor")
	ErrNoSuitableRoom        = errors.New("no suitable room")
	ErrInfeasible            = errors.New("infeasible")
	ErrCancelled             = errors.New("cancelled")
	ErrMalformedInput        = errors.New("malformed input")
)
