package tlb

import (
	"github.com/sarchlab/tlbsim/mem/vm/tlb/internal"
)

// DefaultCapacity is the number of entries of a TLB built with the default
// Builder.
const DefaultCapacity = 64

// A Builder can build TLBs
type Builder struct {
	capacity int
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		capacity: DefaultCapacity,
	}
}

// WithCapacity sets the number of entries in the TLB.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	if b.capacity <= 0 {
		panic("TLB capacity must be positive")
	}

	tlb := &Comp{
		name:     name,
		capacity: b.capacity,
		entries:  internal.NewRecencyList(b.capacity),
		index:    make(map[uint64]int, b.capacity),
	}

	return tlb
}
