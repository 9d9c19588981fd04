package buffer

// Circular is a fixed-size circular buffer with the ability to iterate over
// the first and second halves of the values collected in the order that they
// were appended. It also gives random access to the most recent values, which
// is what a sampler needs for a short position history.
type Circular[T any] struct {
	buffer    []T   // actual storage
	pos       int   // Current position in buffer
	BufSize   int   // BufSize is the fixed number of values maintained in memory
	Count     int   // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64 // TotalSeen is the total number of times Add has been called
}

// NewCircular creates a new circular buffer of totalSize. If totalSize is
// not a multiple of 2, it will be adjusted. Sizes below 2 become 2.
func NewCircular[T any](totalSize int) *Circular[T] {
	// Fix odd number situations
	half := totalSize / 2
	if half < 1 {
		half = 1
	}
	total := half + half

	return &Circular[T]{
		buffer:  make([]T, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}
}

// Internal: return the next array position
func (c *Circular[T]) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest entry
func (c *Circular[T]) Add(v T) {
	c.TotalSeen++

	c.buffer[c.pos] = v

	c.pos = c.nextPos()

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}
}

// Recent returns the value added back steps ago: Recent(0) is the last value
// added, Recent(1) the one before it. ok is false when there is no such value.
func (c *Circular[T]) Recent(back int) (v T, ok bool) {
	if back < 0 || back >= c.Count {
		return v, false
	}

	idx := (c.pos - 1 - back + c.BufSize) % c.BufSize
	return c.buffer[idx], true
}

// Full is true once Add has been called at least BufSize times
func (c *Circular[T]) Full() bool {
	return c.Count >= c.BufSize
}

// Reset forgets all stored values
func (c *Circular[T]) Reset() {
	var zero T
	for i := range c.buffer {
		c.buffer[i] = zero
	}
	c.pos = 0
	c.Count = 0
	c.TotalSeen = 0
}

// FirstHalf returns an iterator over the first (oldest) half of the stored
// values. Will not return a valid iterator until Add has been called at least
// BufSize times
func (c *Circular[T]) FirstHalf() *CircularIterator[T] {
	if c.Count < c.BufSize {
		return nil
	}

	return &CircularIterator[T]{
		buf:    c,
		curr:   c.pos, // Oldest is the one we're about to write
		remain: c.BufSize / 2,
	}
}

// SecondHalf returns an iterator over the second (most recent) half of the
// stored values. Will not return a valid iterator until Add has been called at
// least BufSize times
func (c *Circular[T]) SecondHalf() *CircularIterator[T] {
	if c.Count < c.BufSize {
		return nil
	}

	half := c.BufSize / 2
	pos := (c.pos + half) % c.BufSize

	return &CircularIterator[T]{
		buf:    c,
		curr:   pos,
		remain: half,
	}
}

// CircularIterator provides an iterator over a Circular buffer
type CircularIterator[T any] struct {
	buf    *Circular[T]
	curr   int
	remain int
}

// Next returns True when there are more values to read via Value
func (i *CircularIterator[T]) Next() bool {
	return i.remain > 0
}

// Value return the next value to be read. Should only be called if Next() is
// True
func (i *CircularIterator[T]) Value() T {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}
