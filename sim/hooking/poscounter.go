package hooking

import (
	"sync"
)

// PosCounter is a hook that counts how many times each hook position is
// triggered.
type PosCounter struct {
	lock     sync.Mutex
	posNames []string
	posCount map[string]uint64
}

// NewPosCounter creates a new PosCounter
func NewPosCounter() *PosCounter {
	return &PosCounter{
		posCount: make(map[string]uint64),
	}
}

// Func counts the position of the hook context.
func (c *PosCounter) Func(ctx HookCtx) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.countPos(ctx.Pos.Name)
}

// GetPosNames returns the names of the positions triggered so far, in the
// order they are first triggered.
func (c *PosCounter) GetPosNames() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	names := make([]string, len(c.posNames))
	copy(names, c.posNames)

	return names
}

// GetPosCount returns the number of times that a position is triggered.
func (c *PosCounter) GetPosCount(posName string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.posCount[posName]
}

// Counts returns a copy of all the counts.
func (c *PosCounter) Counts() map[string]uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	counts := make(map[string]uint64, len(c.posCount))
	for name, n := range c.posCount {
		counts[name] = n
	}

	return counts
}

func (c *PosCounter) countPos(name string) {
	_, ok := c.posCount[name]
	if !ok {
		c.posNames = append(c.posNames, name)
	}

	c.posCount[name]++
}
