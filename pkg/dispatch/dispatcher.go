// pkg/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/joeydtaylor/vblocks/pkg/tensor"
	"go.uber.org/zap"
)

// Observer receives one call per invocation; outcome is "ok" or an error Code.
type Observer interface {
	ObserveInference(kind registry.Kind, function, outcome string, took time.Duration)
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithObserver(o Observer) Option { return func(d *Dispatcher) { d.obs = o } }

// WithSerialized runs at most one user function at a time.
func WithSerialized(on bool) Option { return func(d *Dispatcher) { d.serial = on } }

// Dispatcher looks up registered functions and invokes them, turning every
// failure into a Result instead of an error or a panic.
type Dispatcher struct {
	reg    *registry.Registry
	log    *zap.Logger
	obs    Observer
	serial bool
	mu     sync.Mutex
}

func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, log: zap.NewNop(), serial: true}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// List returns the sorted function names of every non-empty namespace.
func (d *Dispatcher) List() map[registry.Kind][]string { return d.reg.List() }

func (d *Dispatcher) Generic(ctx context.Context, name string, in []tensor.Wire) Result {
	return d.run(ctx, registry.Generic, name, func(ctx context.Context) Result {
		fn, ok := d.reg.Generic(name)
		if !ok {
			return notFound(registry.Generic, name)
		}
		inputs, err := tensor.DecodeAll(in)
		if err != nil {
			return fail(CodeBadRequest, name, fmt.Errorf("%w: %w", ErrBadRequest, err))
		}
		out, err := fn(ctx, inputs)
		if err != nil {
			return fail(CodeFailed, name, err)
		}
		return encodeTensors(name, out)
	})
}

func (d *Dispatcher) TextToText(ctx context.Context, name, text string) Result {
	return d.run(ctx, registry.TextToText, name, func(ctx context.Context) Result {
		fn, ok := d.reg.TextToText(name)
		if !ok {
			return notFound(registry.TextToText, name)
		}
		out, err := fn(ctx, text)
		if err != nil {
			return fail(CodeFailed, name, err)
		}
		return Result{Text: out}
	})
}

func (d *Dispatcher) TextToTensors(ctx context.Context, name, text string) Result {
	return d.run(ctx, registry.TextToTensors, name, func(ctx context.Context) Result {
		fn, ok := d.reg.TextToTensors(name)
		if !ok {
			return notFound(registry.TextToTensors, name)
		}
		out, err := fn(ctx, text)
		if err != nil {
			return fail(CodeFailed, name, err)
		}
		return encodeTensors(name, out)
	})
}

// run wraps one invocation with panic recovery, logging and observation.
func (d *Dispatcher) run(ctx context.Context, kind registry.Kind, name string, body func(context.Context) Result) (res Result) {
	id := uuid.NewString()
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: &Error{
				Code:     CodePanic,
				Function: name,
				Err:      fmt.Errorf("%s panicked: %v", name, p),
				Stack:    string(debug.Stack()),
			}}
		}
		took := time.Since(start)
		outcome := "ok"
		if res.Err != nil {
			outcome = string(res.Err.Code)
			d.log.Warn("inference failed",
				zap.String("invocation", id),
				zap.String("kind", string(kind)),
				zap.String("function", name),
				zap.String("code", outcome),
				zap.Duration("took", took),
				zap.Error(res.Err.Err),
			)
		} else {
			d.log.Info("inference",
				zap.String("invocation", id),
				zap.String("kind", string(kind)),
				zap.String("function", name),
				zap.Duration("took", took),
			)
		}
		if d.obs != nil {
			d.obs.ObserveInference(kind, observedName(name, res.Err), outcome, took)
		}
	}()

	if d.serial {
		d.mu.Lock()
		defer d.mu.Unlock()
	}
	return body(ctx)
}

// UnknownFunction labels observations whose name came from the client and
// was never resolved, keeping metric cardinality bounded by the registry.
const UnknownFunction = "unknown"

func observedName(name string, e *Error) string {
	if e != nil && (e.Code == CodeNotFound || e.Code == CodeBadRequest) {
		return UnknownFunction
	}
	return name
}

func notFound(kind registry.Kind, name string) Result {
	return fail(CodeNotFound, name, fmt.Errorf("%w: %s function %q is not registered", ErrFunctionNotFound, kind, name))
}

func encodeTensors(name string, out []*tensor.Tensor) Result {
	ws, err := tensor.EncodeAll(out)
	if err != nil {
		return fail(CodeInvalidReturn, name,
			fmt.Errorf("%w: the returned value from %s is not a list of tensors: %w", ErrInvalidReturnType, name, err))
	}
	return Result{Tensors: ws}
}
