package detect

import (
	"sync"

	"github.com/swdee/go-facetrack/logger"
	"go.uber.org/zap"
)

// Pool is a fixed set of Adapters shared by concurrent clip workers.  Each
// Adapter owns its own model handles so a worker holding one can run
// detection without locking
type Pool struct {
	// pool of adapters
	adapters chan *Adapter
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a pool of size adapters using open to create each one
func NewPool(size int, open func() (*Adapter, error)) (*Pool, error) {

	if size < 1 {
		size = 1
	}

	p := &Pool{
		adapters: make(chan *Adapter, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		a, err := open()

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(a)
	}

	return p, nil
}

// Get an adapter from the pool, blocking until one is available
func (p *Pool) Get() *Adapter {
	return <-p.adapters
}

// Return an adapter to the pool.  An adapter returned to a full pool is
// closed
func (p *Pool) Return(a *Adapter) {
	select {
	case p.adapters <- a:
	default:
		// pool is full
		if err := a.Close(); err != nil {
			logger.Log().Warn("error closing surplus adapter", zap.Error(err))
		}
	}
}

// Size returns the number of adapters in the pool
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and all adapters in it.  All adapters must have been
// returned before calling Close
func (p *Pool) Close() {
	p.close.Do(func() {
		close(p.adapters)

		for next := range p.adapters {
			_ = next.Close()
		}
	})
}
