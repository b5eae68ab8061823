package core

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// MinGroupSize returns the smallest acceptable size for the last group
// when grouping by size: size/2 + 1.
func MinGroupSize(size int) int {
	return size/2 + 1
}

// Grouper assigns records to numbered groups.
//
// A Grouper with a nil source draws from the global generator and is safe
// for concurrent use. A seeded Grouper is not.
type Grouper struct {
	rng *rand.Rand
}

// NewGrouper returns a Grouper drawing from src, or from the global
// generator when src is nil.
func NewGrouper(src rand.Source) *Grouper {
	if src == nil {
		return &Grouper{}
	}
	return &Grouper{rng: rand.New(src)}
}

// NewSeededGrouper returns a Grouper whose shuffles repeat for the same seed.
func NewSeededGrouper(seed uint64) *Grouper {
	return NewGrouper(rand.NewPCG(seed, seed))
}

// Group returns a copy of ds with every record assigned a group of about
// size members, sorted by group. The input is not modified.
//
// Records are shuffled first when shuffle is set. If the trailing group
// has fewer than MinGroupSize(size) members and is not the only group,
// each of its members moves to an independently chosen random earlier
// group, which leaves that group number unused.
func (g *Grouper) Group(ds *Dataset, size int, shuffle bool) (*Dataset, error) {
	n := ds.Len()
	if n == 0 || size < 1 || size > n {
		return nil, &GroupSizeError{Size: size, Max: n}
	}

	out := ds.Clone()
	recs := out.Records

	if shuffle {
		g.shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
	}

	for i := range recs {
		recs[i].Group = i/size + 1
	}

	lastGroup := recs[len(recs)-1].Group
	lastStart := (lastGroup - 1) * size
	if lastGroup > 1 && len(recs)-lastStart < MinGroupSize(size) {
		for i := lastStart; i < len(recs); i++ {
			recs[i].Group = g.intN(lastGroup-1) + 1
		}
	}

	slices.SortStableFunc(recs, func(a, b Record) int {
		return cmp.Compare(a.Group, b.Group)
	})

	out.Grouped = true
	return out, nil
}

// shuffle is a Fisher-Yates shuffle.
func (g *Grouper) shuffle(n int, swap func(i, j int)) {
	if g.rng != nil {
		g.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

func (g *Grouper) intN(n int) int {
	if g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}
