package state

import (
	"github.com/pkg/errors"
)

// DiffStorage accumulates the diffs of sequential transactions within
// one block or one UTX validation pass, so that later transactions'
// CompositeView sees earlier ones' effects. One accumulator serves
// both plain and invoke validation: CompositeView already generalizes
// over "committed snapshot + overlay", so intermediate invoke changes
// are visible through ordinary Diff combination.
type DiffStorage struct {
	acc Diff
}

func NewDiffStorage() *DiffStorage {
	return &DiffStorage{acc: Empty()}
}

// Save folds d into the running accumulator.
func (s *DiffStorage) Save(d Diff) error {
	merged, err := Combine(s.acc, d)
	if err != nil {
		return errors.Wrap(err, "failed to save diff")
	}
	s.acc = merged
	return nil
}

// AllChanges returns everything accumulated so far.
func (s *DiffStorage) AllChanges() Diff { return s.acc }

// Reset clears the accumulator.
func (s *DiffStorage) Reset() { s.acc = Empty() }

// View returns a CompositeView of snapshot overlaid with everything
// accumulated so far.
func (s *DiffStorage) View(snapshot Blockchain) *CompositeView {
	return NewCompositeView(snapshot, s.acc)
}
