package ppu

const fifoCapacity = 16

// bgPixel is a background or window colour index
type bgPixel struct {
	color uint8
}

// objPixel is the sprite candidate for the same column as its bgPixel
type objPixel struct {
	color    uint8 // 0 means transparent
	palette  uint8
	priority bool
}

// fifo is a fixed-capacity ring of pixels
type fifo[T any] struct {
	buf  [fifoCapacity]T
	head int
	size int
}

func (f *fifo[T]) Len() int { return f.size }

// Push appends v; it reports false when the ring is full
func (f *fifo[T]) Push(v T) bool {
	if f.size == fifoCapacity {
		return false
	}
	f.buf[(f.head+f.size)%fifoCapacity] = v
	f.size++
	return true
}

// Pop removes the oldest pixel
func (f *fifo[T]) Pop() (T, bool) {
	var zero T
	if f.size == 0 {
		return zero, false
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % fifoCapacity
	f.size--
	return v, true
}

func (f *fifo[T]) Clear() {
	f.head = 0
	f.size = 0
}
