package device

const (
	// FIFO_DEPTH is the depth of the UART transmit and receive queues.
	FIFO_DEPTH = 8
)

// Fifo is a fixed depth circular byte queue with separate read and write
// positions.
type Fifo struct {
	data  [FIFO_DEPTH]uint8
	head  int
	tail  int
	count int
}

// Reset empties the queue.
func (q *Fifo) Reset() {
	q.head = 0
	q.tail = 0
	q.count = 0
}

func (q *Fifo) Full() bool  { return q.count == len(q.data) }
func (q *Fifo) Empty() bool { return q.count == 0 }
func (q *Fifo) Count() int  { return q.count }
func (q *Fifo) Free() int   { return len(q.data) - q.count }

// Enqueue appends a byte. Returns false, dropping the byte, if the queue is full.
func (q *Fifo) Enqueue(value uint8) (ok bool) {
	if q.Full() {
		return
	}

	q.data[q.tail] = value
	q.tail = (q.tail + 1) % len(q.data)
	q.count++

	return true
}

// Dequeue removes the oldest byte.
func (q *Fifo) Dequeue() (value uint8, ok bool) {
	if q.Empty() {
		return
	}

	value = q.data[q.head]
	q.head = (q.head + 1) % len(q.data)
	q.count--

	return value, true
}

// Put enqueues as many bytes as fit, returning the count queued.
func (q *Fifo) Put(data []byte) (n int) {
	for _, value := range data {
		if !q.Enqueue(value) {
			break
		}
		n++
	}
	return
}

// Get dequeues up to len(data) bytes, returning the count dequeued.
func (q *Fifo) Get(data []byte) (n int) {
	for n < len(data) {
		value, ok := q.Dequeue()
		if !ok {
			break
		}
		data[n] = value
		n++
	}
	return
}
