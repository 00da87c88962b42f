package history

// Clock hands out revision numbers for pushed snapshots.
type Clock struct {
	counter uint64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	c.counter++
	return c.counter
}

// Now returns the last value handed out.
func (c *Clock) Now() uint64 { return c.counter }
