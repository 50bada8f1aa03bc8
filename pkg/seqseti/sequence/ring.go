package sequence

import (
	"errors"
	"fmt"
)

// ErrEmptyRing is returned when a ring cannot be built from the sequence.
var ErrEmptyRing = errors.New("sequence ring is empty")

// Ring holds the terms 1..size of a sequence and resolves any integer index
// onto [1, size] with modular wraparound, so index 0 maps to size and
// size+1 maps back to 1.
type Ring struct {
	values []float64
}

// NewRing generates seq over [1, size].
func NewRing(seq Sequence, size int) (*Ring, error) {
	if size < 1 {
		return nil, fmt.Errorf("ring size %d: %w", size, ErrEmptyRing)
	}
	values := seq.Generate(1, size)
	if len(values) != size {
		return nil, fmt.Errorf("%s generated %d terms for ring of size %d: %w",
			seq.Name(), len(values), size, ErrEmptyRing)
	}
	return &Ring{values: values}, nil
}

func (r *Ring) Size() int { return len(r.values) }

// Wrap maps k onto the index ring [1, Size()].
func (r *Ring) Wrap(k int) int {
	n := len(r.values)
	return ((k-1)%n+n)%n + 1
}

// Value returns the sequence term at the wrapped index k.
func (r *Ring) Value(k int) float64 {
	return r.values[r.Wrap(k)-1]
}

// Values returns a copy of the ring terms in index order.
func (r *Ring) Values() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}
