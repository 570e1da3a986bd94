package imager

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kataras/psd-extractor/pkg/errors"
	"github.com/kataras/psd-extractor/pkg/psdtree"
)

// Task is a pending Materialize call. Wait blocks until a pool worker has
// finished it.
type Task struct {
	ID      uuid.UUID
	Node    psdtree.Node
	Cropped bool

	done chan struct{}
	img  Image
	err  error
}

// Done is closed once the task has a result.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its bitmap or error.
func (t *Task) Wait() (Image, error) {
	<-t.done
	return t.img, t.err
}

func (t *Task) finish(img Image, err error) {
	t.img, t.err = img, err
	close(t.done)
}

// Pool materializes layer bitmaps on a fixed set of workers so callers can
// request images without blocking on decoding and cropping. Tasks run to
// completion once started; there is no cancellation.
type Pool struct {
	exporter *Exporter
	jobs     chan *Task
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines (at least one) rendering with exporter.
func NewPool(workers int, exporter *Exporter) *Pool {
	if workers < 1 {
		workers = 1
	}
	if exporter == nil {
		exporter = NewExporter(ExportConfig{}, nil)
	}

	p := &Pool{
		exporter: exporter,
		jobs:     make(chan *Task, workers*4),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for t := range p.jobs {
		t.finish(p.exporter.Materialize(t.Node, t.Cropped))
	}
}

// Submit queues a bitmap request for n. Submitting to a closed pool
// returns a task that has already failed.
func (p *Pool) Submit(n psdtree.Node, cropped bool) *Task {
	t := &Task{
		ID:      uuid.New(),
		Node:    n,
		Cropped: cropped,
		done:    make(chan struct{}),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		t.finish(Image{}, errors.New(errors.ErrCodeInternal, "pool is closed"))
		return t
	}
	p.jobs <- t
	return t
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}
