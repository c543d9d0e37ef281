package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const shardBuffer = 64

type dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// Pool runs events on a fixed set of shards keyed by actor id. Events of one
// actor are handled in arrival order; different actors run in parallel.
type Pool struct {
	dispatcher dispatcher
	shards     []chan Event
	logger     *slog.Logger
	wg         sync.WaitGroup
}

func NewPool(dispatcher dispatcher, shards int, logger *slog.Logger) *Pool {
	if shards < 1 {
		shards = 1
	}

	p := &Pool{
		dispatcher: dispatcher,
		shards:     make([]chan Event, shards),
		logger:     logger,
	}
	for i := range p.shards {
		p.shards[i] = make(chan Event, shardBuffer)
	}
	return p
}

// Start launches one goroutine per shard. Handlers get ctx, so in-flight
// events observe cancellation.
func (p *Pool) Start(ctx context.Context) {
	for i, ch := range p.shards {
		p.wg.Add(1)
		go func(shard int, events <-chan Event) {
			defer p.wg.Done()
			for ev := range events {
				p.handle(ctx, shard, ev)
			}
		}(i, ch)
	}
}

// Submit queues ev on its actor's shard, blocking while the shard is full.
func (p *Pool) Submit(ctx context.Context, ev Event) error {
	select {
	case p.shards[p.shardOf(ev.Actor())] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the shards and waits for queued events to drain.
func (p *Pool) Stop() {
	for _, ch := range p.shards {
		close(ch)
	}
	p.wg.Wait()
}

func (p *Pool) handle(ctx context.Context, shard int, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic while handling event", "shard", shard, "user_id", ev.Actor(), "panic", fmt.Sprint(r))
		}
	}()

	// Dispatch logs its own failures.
	_ = p.dispatcher.Dispatch(ctx, ev)
}

func (p *Pool) shardOf(actorID int64) int {
	n := int64(len(p.shards))
	return int(((actorID % n) + n) % n)
}
