// Package workerpool bounds how many task handlers run at once under a
// shared tomb.Tomb, so a TCP front end can accept far more connections
// than it is willing to service concurrently.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// Func is the work performed for each task pulled off the pool.
type Func = func(t *tomb.Tomb, task any) error

// Pool dispatches queued tasks to at most size concurrent handlers. A
// task waits in the queue until a handler slot frees up rather than
// spawning unbounded goroutines per connection.
type Pool struct {
	size  int
	tasks chan any
	slots chan struct{}
}

// New creates a pool with size concurrent handler slots. Call Setup to
// start dispatching.
func New(size int) Pool {
	return Pool{
		size:  size,
		tasks: make(chan any, taskChanSize),
		slots: make(chan struct{}, size),
	}
}

// AddTask enqueues a unit of work for the next free handler slot.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Setup dispatches queued tasks to at most size concurrent handlers
// under t until t starts dying. Dispatch blocks on both the next
// queued task and a free slot, so the pool never runs more than size
// handlers at once, however quickly tasks arrive.
func (p *Pool) Setup(t *tomb.Tomb, work Func) {
	log.Info().Int("slots", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		p.slots <- struct{}{}
	}

	for {
		select {
		case <-t.Dying():
			return
		case task := <-p.tasks:
			select {
			case <-t.Dying():
				return
			case <-p.slots:
			}
			t.Go(func() error {
				defer func() { p.slots <- struct{}{} }()
				if err := work(t, task); err != nil {
					log.Error().Err(err).Msg("task handler exiting")
					return err
				}
				return nil
			})
		}
	}
}
