package engine

import (
	"context"
	"sync"

	"ratereminder/core"
)

type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

const (
	defaultQueueSize    = 64
	defaultAsyncWorkers = 1
)

type handlerFunc func(context.Context, core.Event)

// EventBus fans reminder events out to in-process subscribers.
// Handlers registered with the empty EventType receive every event.
type EventBus struct {
	mode   DispatchMode
	mu     sync.RWMutex
	subs   map[core.EventType]map[int64]handlerFunc
	nextID int64

	queue  chan core.Event
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

func NewEventBus(mode DispatchMode) *EventBus {
	eb := &EventBus{
		mode:   mode,
		subs:   make(map[core.EventType]map[int64]handlerFunc),
		closed: make(chan struct{}),
	}
	if mode == DispatchAsync {
		eb.queue = make(chan core.Event, defaultQueueSize)
		for i := 0; i < defaultAsyncWorkers; i++ {
			eb.wg.Add(1)
			go eb.worker()
		}
	}
	return eb
}

func (e *EventBus) worker() {
	defer e.wg.Done()
	for {
		select {
		case ev := <-e.queue:
			e.dispatch(context.Background(), ev)
		case <-e.closed:
			// drain what is already queued
			for {
				select {
				case ev := <-e.queue:
					e.dispatch(context.Background(), ev)
				default:
					return
				}
			}
		}
	}
}

// Close stops async workers after the queue drains. Safe to call more than once.
func (e *EventBus) Close() {
	e.once.Do(func() { close(e.closed) })
	e.wg.Wait()
}

// Subscribe registers a handler for an event type. Returns unsubscribe func.
func (e *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	if e.subs[typ] == nil {
		e.subs[typ] = make(map[int64]handlerFunc)
	}
	e.subs[typ][id] = handler
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[typ], id)
	}
}

// SubscribeAll registers a handler for every event type.
func (e *EventBus) SubscribeAll(handler func(context.Context, core.Event)) func() {
	return e.Subscribe("", handler)
}

// Publish sends an event to subscribers. In async mode a full queue drops the event
// so a slow subscriber never holds up a launch.
func (e *EventBus) Publish(ctx context.Context, ev core.Event) {
	if e.mode == DispatchAsync {
		select {
		case <-e.closed:
			return
		default:
		}
		select {
		case e.queue <- ev:
		default:
		}
		return
	}
	e.dispatch(ctx, ev)
}

func (e *EventBus) dispatch(ctx context.Context, ev core.Event) {
	e.mu.RLock()
	handlers := make([]handlerFunc, 0, len(e.subs[ev.Type])+len(e.subs[""]))
	for _, h := range e.subs[ev.Type] {
		handlers = append(handlers, h)
	}
	if ev.Type != "" {
		for _, h := range e.subs[""] {
			handlers = append(handlers, h)
		}
	}
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
