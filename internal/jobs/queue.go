package jobs

import (
	"sync"

	"vidgrab/internal/models"
)

type queueItem struct {
	jobID string
	req   models.DownloadRequest
}

// Queue is an unbounded FIFO hand-off between the HTTP layer and the
// worker pool. Enqueue never blocks; dequeue blocks until an item is
// available or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []queueItem
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item, reporting false once the queue is closed.
func (q *Queue) Enqueue(jobID string, req models.DownloadRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, queueItem{jobID: jobID, req: req})
	q.cond.Signal()
	return true
}

func (q *Queue) dequeue() (queueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return queueItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Close rejects further submissions, abandons the backlog and wakes
// blocked workers so they can exit.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len reports the current backlog depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
