// Package metadata implements the registration-time metadata
// collector. Controller bootstrap code declares controllers and
// methods through explicit calls; buckets accumulate until Finalize
// and are read-only afterwards.
package metadata

import (
	"fmt"
	"sync"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

// MissingMetadataError indicates a manifest-consuming operation ran
// before Finalize. It is fatal at boot and must abort startup.
type MissingMetadataError struct {
	Identity string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("metadata for controller %q was not finalized before use", e.Identity)
}

// ErrFinalized is returned when a declaration arrives after Finalize.
type ErrFinalized struct {
	Identity string
}

func (e *ErrFinalized) Error() string {
	return fmt.Sprintf("controller %q is finalized; metadata is read-only", e.Identity)
}

type controllerBucket struct {
	def         manifest.ControllerDefinition
	methods     map[string]*manifest.MethodMeta
	methodOrder []string
	finalized   bool
}

// Collector accumulates per-controller and per-method metadata
// buckets. It is safe for concurrent declaration, although controller
// bootstrap normally runs single-threaded before the server starts.
type Collector struct {
	mu      sync.Mutex
	buckets map[string]*controllerBucket
	order   []string
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{buckets: make(map[string]*controllerBucket)}
}

// defaultCollector is the process-scoped instance used by controllers
// registered through the package-level helpers.
var defaultCollector = NewCollector()

// Default returns the process-scoped collector.
func Default() *Collector { return defaultCollector }

// Reset clears the process-scoped collector. Intended for tests.
func Reset() { defaultCollector = NewCollector() }

func (c *Collector) bucket(identity string) *controllerBucket {
	b, ok := c.buckets[identity]
	if !ok {
		b = &controllerBucket{
			def:     manifest.ControllerDefinition{Name: identity, BasePath: "/"},
			methods: make(map[string]*manifest.MethodMeta),
		}
		c.buckets[identity] = b
		c.order = append(c.order, identity)
	}
	return b
}

// DeclareController records the base path and tags for a controller.
// Tags accumulate across repeated declarations; the base path is
// last-write-wins.
func (c *Collector) DeclareController(identity, basePath string, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.bucket(identity)
	if b.finalized {
		return &ErrFinalized{Identity: identity}
	}
	if basePath != "" {
		b.def.BasePath = manifest.NormalizePath(basePath)
	}
	b.def.Tags = append(b.def.Tags, tags...)
	return nil
}

// DeclareMethod merges a partial method declaration into the method's
// bucket. Array-valued fields (tags, responses, middlewares, guards)
// accumulate; scalar fields are last-write-wins in declaration order.
func (c *Collector) DeclareMethod(identity, methodName string, partial manifest.MethodMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.bucket(identity)
	if b.finalized {
		return &ErrFinalized{Identity: identity}
	}

	m, ok := b.methods[methodName]
	if !ok {
		m = &manifest.MethodMeta{Name: methodName}
		b.methods[methodName] = m
		b.methodOrder = append(b.methodOrder, methodName)
	}

	if partial.HTTPMethod != "" {
		m.HTTPMethod = partial.HTTPMethod
	}
	if partial.Path != "" {
		m.Path = partial.Path
	}
	if partial.Summary != "" {
		m.Summary = partial.Summary
	}
	if partial.StatusOverride != 0 {
		m.StatusOverride = partial.StatusOverride
	}
	if partial.Handler != nil {
		m.Handler = partial.Handler
	}
	if partial.Schema != nil {
		m.Schema = partial.Schema
	}
	if len(partial.Bindings) > 0 {
		m.Bindings = append(m.Bindings, partial.Bindings...)
	}
	m.Tags = append(m.Tags, partial.Tags...)
	m.Responses = append(m.Responses, partial.Responses...)
	m.Middlewares = append(m.Middlewares, partial.Middlewares...)
	m.Guards = append(m.Guards, partial.Guards...)
	return nil
}

// Finalize freezes the bucket for a controller. Declarations after
// this point are rejected; manifest-consuming operations before it
// fail with MissingMetadataError.
func (c *Collector) Finalize(identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[identity]
	if !ok {
		return &MissingMetadataError{Identity: identity}
	}
	b.finalized = true
	return nil
}

// FinalizeAll freezes every bucket. Convenience for bootstrap code
// that registers all controllers in one place.
func (c *Collector) FinalizeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.buckets {
		b.finalized = true
	}
}

// Controllers snapshots the finalized controller definitions in
// declaration order. Any unfinalized bucket aborts with
// MissingMetadataError.
func (c *Collector) Controllers() ([]manifest.ControllerDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]manifest.ControllerDefinition, 0, len(c.order))
	for _, identity := range c.order {
		b := c.buckets[identity]
		if !b.finalized {
			return nil, &MissingMetadataError{Identity: identity}
		}
		def := b.def
		def.Tags = append([]string(nil), b.def.Tags...)
		def.Methods = make([]manifest.MethodMeta, 0, len(b.methodOrder))
		for _, name := range b.methodOrder {
			def.Methods = append(def.Methods, *b.methods[name])
		}
		out = append(out, def)
	}
	return out, nil
}
