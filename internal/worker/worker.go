package worker

import (
	"context"
	"sync"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

// NotifyFunc handles one saved alert off the request path.
type NotifyFunc func(ctx context.Context, alert models.Alert)

// Pool runs post-save alert notifications on a fixed set of workers so the
// save critical section never waits on subscribers.
type Pool struct {
	numWorkers int
	jobs       chan models.Alert
	notify     NotifyFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, notify NotifyFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan models.Alert, bufferSize),
		notify:     notify,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-p.jobs:
			if !ok {
				return
			}
			p.notify(ctx, alert)
		}
	}
}

// Submit drops the alert when the queue is full rather than blocking the
// caller; live notification is best-effort, the document is the record.
func (p *Pool) Submit(alert models.Alert) bool {
	select {
	case p.jobs <- alert:
		return true
	default:
		return false
	}
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
