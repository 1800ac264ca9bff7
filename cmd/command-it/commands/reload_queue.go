package commands

// reloadQueue carries catalog change notifications from the file watcher to
// the repl loop. A full queue already holds a pending reload, so further
// events are dropped.
type reloadQueue struct {
	ch chan string
}

func newReloadQueue(size int) *reloadQueue {
	if size < 1 {
		size = 1
	}
	return &reloadQueue{ch: make(chan string, size)}
}

func (q *reloadQueue) Enqueue(path string) {
	if q == nil {
		return
	}
	select {
	case q.ch <- path:
	default:
	}
}

func (q *reloadQueue) Dequeue() (string, bool) {
	if q == nil {
		return "", false
	}
	select {
	case path := <-q.ch:
		return path, true
	default:
		return "", false
	}
}

// C is nil for a nil queue, which blocks forever in a select.
func (q *reloadQueue) C() <-chan string {
	if q == nil {
		return nil
	}
	return q.ch
}
