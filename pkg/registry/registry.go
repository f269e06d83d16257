// pkg/registry/registry.go
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joeydtaylor/vblocks/pkg/tensor"
)

// Kind names one of the three function namespaces.
type Kind string

const (
	Generic       Kind = "generic"
	TextToText    Kind = "text_to_text"
	TextToTensors Kind = "text_to_tensors"
)

// Kinds lists every namespace in listing order.
var Kinds = []Kind{Generic, TextToText, TextToTensors}

var (
	ErrDuplicate   = errors.New("registry: duplicate function")
	ErrInvalid     = errors.New("registry: name and function required")
	ErrUnknownKind = errors.New("registry: unknown kind")
)

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

type (
	// GenericFunc maps input tensors to output tensors.
	GenericFunc func(ctx context.Context, in []*tensor.Tensor) ([]*tensor.Tensor, error)
	// TextFunc maps a string to a string.
	TextFunc func(ctx context.Context, text string) (string, error)
	// TextToTensorsFunc maps a string to output tensors.
	TextToTensorsFunc func(ctx context.Context, text string) ([]*tensor.Tensor, error)
)

// Registry holds user functions by name, one map per Kind.
// Fill it before the server starts; lookups are safe from any goroutine.
type Registry struct {
	mu            sync.RWMutex
	generic       map[string]GenericFunc
	textToText    map[string]TextFunc
	textToTensors map[string]TextToTensorsFunc
}

func New() *Registry {
	return &Registry{
		generic:       map[string]GenericFunc{},
		textToText:    map[string]TextFunc{},
		textToTensors: map[string]TextToTensorsFunc{},
	}
}

func (r *Registry) RegisterGeneric(name string, fn GenericFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: %s/%q", ErrInvalid, Generic, name)
	}
	return insert(&r.mu, r.generic, Generic, name, fn)
}

func (r *Registry) RegisterTextToText(name string, fn TextFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: %s/%q", ErrInvalid, TextToText, name)
	}
	return insert(&r.mu, r.textToText, TextToText, name, fn)
}

func (r *Registry) RegisterTextToTensors(name string, fn TextToTensorsFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: %s/%q", ErrInvalid, TextToTensors, name)
	}
	return insert(&r.mu, r.textToTensors, TextToTensors, name, fn)
}

func (r *Registry) MustRegisterGeneric(name string, fn GenericFunc) {
	if err := r.RegisterGeneric(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) MustRegisterTextToText(name string, fn TextFunc) {
	if err := r.RegisterTextToText(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) MustRegisterTextToTensors(name string, fn TextToTensorsFunc) {
	if err := r.RegisterTextToTensors(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) Generic(name string) (GenericFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.generic[name]
	return fn, ok
}

func (r *Registry) TextToText(name string) (TextFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.textToText[name]
	return fn, ok
}

func (r *Registry) TextToTensors(name string) (TextToTensorsFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.textToTensors[name]
	return fn, ok
}

// Names returns the sorted function names registered under k.
func (r *Registry) Names(k Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch k {
	case Generic:
		return sortedKeys(r.generic)
	case TextToText:
		return sortedKeys(r.textToText)
	case TextToTensors:
		return sortedKeys(r.textToTensors)
	}
	return nil
}

// List returns the sorted names of every non-empty namespace.
func (r *Registry) List() map[Kind][]string {
	out := make(map[Kind][]string, len(Kinds))
	for _, k := range Kinds {
		if names := r.Names(k); len(names) > 0 {
			out[k] = names
		}
	}
	return out
}

// Len is the total number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.generic) + len(r.textToText) + len(r.textToTensors)
}

func insert[F any](mu *sync.RWMutex, m map[string]F, k Kind, name string, fn F) error {
	if name == "" {
		return fmt.Errorf("%w: %s/%q", ErrInvalid, k, name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := m[name]; dup {
		return fmt.Errorf("%w: %s/%s", ErrDuplicate, k, name)
	}
	m[name] = fn
	return nil
}

func sortedKeys[F any](m map[string]F) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
