package run

import "unicode"

// DefaultBufferCap bounds the total bytes a TextAccumulator retains.
const DefaultBufferCap = 256 << 10

// TextAccumulator is an ordered, size-bounded buffer of streamed text chunks.
// Chunk boundaries that would visually merge two words get a single space
// inserted, and once the total size passes the cap the oldest chunks are
// dropped so the newest content is always retained.
type TextAccumulator struct {
	chunks []string
	size   int
	cap    int
}

// NewTextAccumulator creates an accumulator with the given byte cap.
// Non-positive cap selects DefaultBufferCap.
func NewTextAccumulator(byteCap int) *TextAccumulator {
	if byteCap <= 0 {
		byteCap = DefaultBufferCap
	}
	return &TextAccumulator{cap: byteCap}
}

// Append adds a chunk, inserting a boundary space when the previous chunk
// ends mid-word and the new one starts mid-word ("Hello"+"World" ->
// "Hello World"). Empty chunks are ignored.
func (a *TextAccumulator) Append(chunk string) {
	if chunk == "" {
		return
	}
	if a.needsBoundarySpace(chunk) {
		a.chunks = append(a.chunks, " ")
		a.size++
	}
	a.chunks = append(a.chunks, chunk)
	a.size += len(chunk)
	a.trim()
}

func (a *TextAccumulator) needsBoundarySpace(next string) bool {
	if len(a.chunks) == 0 {
		return false
	}
	last := a.chunks[len(a.chunks)-1]
	if last == "" {
		return false
	}
	lastRunes := []rune(last)
	nextRunes := []rune(next)
	return !unicode.IsSpace(lastRunes[len(lastRunes)-1]) && !unicode.IsSpace(nextRunes[0])
}

func (a *TextAccumulator) trim() {
	for a.size > a.cap && len(a.chunks) > 1 {
		a.size -= len(a.chunks[0])
		a.chunks = a.chunks[1:]
	}
	// A single oversized chunk is kept whole; newest content wins over the cap.
	if a.size > a.cap && len(a.chunks) == 1 {
		keep := a.chunks[0]
		if len(keep) > a.cap {
			keep = keep[len(keep)-a.cap:]
			a.chunks[0] = keep
			a.size = len(keep)
		}
	}
}

// Len returns the total retained byte size.
func (a *TextAccumulator) Len() int { return a.size }

// Chunks returns the retained chunks in order.
func (a *TextAccumulator) Chunks() []string {
	out := make([]string, len(a.chunks))
	copy(out, a.chunks)
	return out
}

// String concatenates the retained chunks.
func (a *TextAccumulator) String() string {
	var n int
	for _, c := range a.chunks {
		n += len(c)
	}
	b := make([]byte, 0, n)
	for _, c := range a.chunks {
		b = append(b, c...)
	}
	return string(b)
}

// Empty reports whether nothing has been retained.
func (a *TextAccumulator) Empty() bool { return len(a.chunks) == 0 }
