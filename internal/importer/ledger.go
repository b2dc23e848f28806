package importer

import "fmt"

// Failure records one file that could not be placed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Ledger is the bookkeeping of one reorganization run.
//
// SourceDeleted is only ever set when Succeeded == Attempted and Failed == 0.
type Ledger struct {
	Attempted     int
	Succeeded     int
	Failed        int
	Moved         int // files actually relocated; already-named files are not counted
	SourceDeleted bool
	Placed        []string
	Failures      []Failure
}

// Complete reports whether every discovered file was placed.
func (l *Ledger) Complete() bool {
	return l.Succeeded == l.Attempted && l.Failed == 0
}

func (l *Ledger) succeed(dest string, moved bool) {
	l.Succeeded++
	if moved {
		l.Moved++
	}
	l.Placed = append(l.Placed, dest)
}

func (l *Ledger) fail(path string, err error) {
	l.Failed++
	l.Failures = append(l.Failures, Failure{Path: path, Err: err})
}
