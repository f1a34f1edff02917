package processing

import (
	"errors"
	"sync"
)

// ErrRunInProgress is returned when a pipeline run is requested for a video
// that is already being processed.
var ErrRunInProgress = errors.New("processing already in progress for this video")

// runLocks tracks which video ids currently have an active pipeline run.
type runLocks struct {
	mu     sync.Mutex
	active map[uint]struct{}
}

func newRunLocks() *runLocks {
	return &runLocks{active: make(map[uint]struct{})}
}

// acquire reserves the id for a run. It never blocks; a second caller for the
// same id gets ErrRunInProgress.
func (l *runLocks) acquire(id uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.active[id]; ok {
		return ErrRunInProgress
	}
	l.active[id] = struct{}{}
	return nil
}

func (l *runLocks) release(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, id)
}
