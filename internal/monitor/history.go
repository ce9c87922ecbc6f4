package monitor

// history is a fixed-capacity FIFO of float64 samples. Once full, each
// push evicts the oldest sample; reads always come back in insertion
// order.
type history struct {
	buf   []float64
	head  int
	count int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]float64, capacity)}
}

func (h *history) push(v float64) {
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// values returns the stored samples, oldest first
func (h *history) values() []float64 {
	out := make([]float64, h.count)
	start := h.head - h.count
	if start < 0 {
		start += len(h.buf)
	}
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}
