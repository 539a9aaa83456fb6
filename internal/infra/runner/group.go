package runner

import (
	"context"
	"sync"
)

// Group runs named workers and exposes their terminal errors on a shared
// channel. Each exchange loop is an independently schedulable worker; one
// worker's failure never blocks the others.
type Group struct {
	wg   sync.WaitGroup
	errs chan Exit
	once sync.Once
}

type Exit struct {
	Name string
	Err  error
}

func (g *Group) init() { g.errs = make(chan Exit, 16) }

// Go starts fn under the group's supervision.
func (g *Group) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	g.once.Do(g.init)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := fn(ctx)
		select {
		case g.errs <- Exit{Name: name, Err: err}:
		default:
		}
	}()
}

// Exits delivers worker terminations as they happen.
func (g *Group) Exits() <-chan Exit {
	g.once.Do(g.init)
	return g.errs
}

func (g *Group) Wait() { g.wg.Wait() }
