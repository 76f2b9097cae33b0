// Package workflow drives work orders through their production stages and quality
// claims through their resolution lifecycle. Every request goes through the same
// pipeline: the guard checks the actor, a tracker applies the transition, the
// recorder appends history, and the store persists the entity with its new entry.
package workflow

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultOrderPrefix = "UNI"
	defaultClaimPrefix = "CLM"
	defaultPageSize    = 10
	defaultMaxPageSize = 100
)

// Engine is the only entry point callers use to read or mutate orders, claims and tasks
type Engine struct {
	store       Store
	assigner    Assigner
	recorder    Recorder
	now         func() time.Time
	log         *zap.Logger
	orderPrefix string
	claimPrefix string
	pageSize    int
	maxPageSize int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for transition logs
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithNumberPrefixes sets the order and claim number prefixes
func WithNumberPrefixes(order, claim string) Option {
	return func(e *Engine) {
		if order != "" {
			e.orderPrefix = order
		}
		if claim != "" {
			e.claimPrefix = claim
		}
	}
}

// WithPageSizes sets the default and maximum listing page sizes
func WithPageSizes(size, maxSize int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.pageSize = size
		}
		if maxSize > 0 {
			e.maxPageSize = maxSize
		}
	}
}

// NewEngine wires the guard, trackers, assigner and recorder around a store
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		now:         time.Now,
		log:         zap.NewNop(),
		orderPrefix: defaultOrderPrefix,
		claimPrefix: defaultClaimPrefix,
		pageSize:    defaultPageSize,
		maxPageSize: defaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.assigner = NewAssigner(store)
	e.recorder = NewRecorder(e.now)
	return e
}

// normalizePage applies defaults and caps the limit
func (e *Engine) normalizePage(p Page) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = e.pageSize
	}
	if p.Limit > e.maxPageSize {
		p.Limit = e.maxPageSize
	}
	return p
}

func actorFields(actor Actor) []zap.Field {
	return []zap.Field{zap.Uint("actor_id", actor.ID), zap.String("actor_role", string(actor.Role))}
}
