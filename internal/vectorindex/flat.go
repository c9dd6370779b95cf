// Package vectorindex implements an exact flat L2 index over float32 vectors.
package vectorindex

import (
	"fmt"
	"math"
	"sort"
)

// NoMatch is the position reported for unfilled result slots.
const NoMatch = -1

// Neighbor is one search hit.
type Neighbor struct {
	Position int
	Distance float64
}

// Flat stores vectors row-major and answers exact nearest-neighbor queries.
type Flat struct {
	dim  int
	data []float32
}

// Build creates a flat index over vectors. All vectors must share one dimension.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vector 0 is empty: %w", ErrDimension)
	}
	data := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), dim, ErrDimension)
		}
		data = append(data, v...)
	}
	return &Flat{dim: dim, data: data}, nil
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.data) / f.dim }

// Vector returns a copy of the vector at position i.
func (f *Flat) Vector(i int) []float32 {
	out := make([]float32, f.dim)
	copy(out, f.data[i*f.dim:(i+1)*f.dim])
	return out
}

// Search returns the k nearest vectors to query by Euclidean distance, ascending.
// Ties keep insertion order. When k exceeds Len the tail is padded with NoMatch.
func (f *Flat) Search(query []float32, k int) ([]Neighbor, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has %d dims, want %d: %w", len(query), f.dim, ErrDimension)
	}
	if k <= 0 {
		return nil, nil
	}

	n := f.Len()
	all := make([]Neighbor, n)
	for i := range n {
		all[i] = Neighbor{Position: i, Distance: f.squaredL2(i, query)}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Distance < all[b].Distance })

	out := make([]Neighbor, k)
	for i := range k {
		if i < n {
			out[i] = Neighbor{Position: all[i].Position, Distance: math.Sqrt(all[i].Distance)}
			continue
		}
		out[i] = Neighbor{Position: NoMatch, Distance: math.Inf(1)}
	}
	return out, nil
}

func (f *Flat) squaredL2(i int, q []float32) float64 {
	row := f.data[i*f.dim : (i+1)*f.dim]
	var sum float64
	for j, x := range row {
		d := float64(x) - float64(q[j])
		sum += d * d
	}
	return sum
}
