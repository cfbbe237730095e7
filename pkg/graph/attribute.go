package graph

import (
	"fmt"
	"maps"
	"slices"
)

// AttributeListener receives attribute change notifications.
//
// Update is called with the elements whose value changed, in ascending
// order. UpdateAll is called when the default changed, which affects every
// element without an explicit value.
type AttributeListener[K Element] interface {
	Update(changed []K)
	UpdateAll()
}

// ListenerFuncs adapts plain functions to AttributeListener. Nil fields are
// skipped.
type ListenerFuncs[K Element] struct {
	OnUpdate    func(changed []K)
	OnUpdateAll func()
}

func (f ListenerFuncs[K]) Update(changed []K) {
	if f.OnUpdate != nil {
		f.OnUpdate(changed)
	}
}

func (f ListenerFuncs[K]) UpdateAll() {
	if f.OnUpdateAll != nil {
		f.OnUpdateAll()
	}
}

// Attribute maps nodes or edges to values of type T, falling back to a
// default for elements that were never set.
type Attribute[K Element, T any] struct {
	key    string
	def    T
	values map[K]T

	listeners map[int]AttributeListener[K]
	nextSub   int

	depth      int
	pending    map[K]struct{}
	pendingAll bool
}

func newAttribute[K Element, T any](key string, def T) *Attribute[K, T] {
	return &Attribute[K, T]{
		key:       key,
		def:       def,
		values:    make(map[K]T),
		listeners: make(map[int]AttributeListener[K]),
		pending:   make(map[K]struct{}),
	}
}

// NodeAttribute returns the node attribute stored under key, creating it
// with def on first use. Subsequent calls ignore def. It panics if key is
// already registered with a different element or value type.
func NodeAttribute[T any](g *Graph, key string, def T) *Attribute[Node, T] {
	return lookup[Node](g, "node:"+key, key, def)
}

// EdgeAttribute is the edge counterpart of NodeAttribute.
func EdgeAttribute[T any](g *Graph, key string, def T) *Attribute[Edge, T] {
	return lookup[Edge](g, "edge:"+key, key, def)
}

func lookup[K Element, T any](g *Graph, slot, key string, def T) *Attribute[K, T] {
	if existing, ok := g.attrs[slot]; ok {
		a, ok := existing.(*Attribute[K, T])
		if !ok {
			panic(fmt.Sprintf("graph: attribute %q registered with type %T", key, existing))
		}
		return a
	}
	a := newAttribute[K](key, def)
	g.attrs[slot] = a
	return a
}

// Key returns the attribute's name.
func (a *Attribute[K, T]) Key() string { return a.key }

// Get returns the value of k, or the default if k has no explicit value.
func (a *Attribute[K, T]) Get(k K) T {
	if v, ok := a.values[k]; ok {
		return v
	}
	return a.def
}

// IsSet reports whether k has an explicit value.
func (a *Attribute[K, T]) IsSet(k K) bool {
	_, ok := a.values[k]
	return ok
}

// Set assigns v to k and notifies listeners.
func (a *Attribute[K, T]) Set(k K, v T) {
	a.values[k] = v
	a.changed(k)
}

// Reset removes the explicit value of k so it reads as the default again.
func (a *Attribute[K, T]) Reset(k K) {
	if _, ok := a.values[k]; !ok {
		return
	}
	delete(a.values, k)
	a.changed(k)
}

// Default returns the default value.
func (a *Attribute[K, T]) Default() T { return a.def }

// SetDefault replaces the default value and notifies listeners with
// UpdateAll.
func (a *Attribute[K, T]) SetDefault(v T) {
	a.def = v
	if a.depth > 0 {
		a.pendingAll = true
		return
	}
	a.each(func(l AttributeListener[K]) { l.UpdateAll() })
}

// NonDefault returns the elements with an explicit value, in ascending
// order.
func (a *Attribute[K, T]) NonDefault() []K {
	return slices.Sorted(maps.Keys(a.values))
}

// Each calls fn for every element with an explicit value, in ascending
// order.
func (a *Attribute[K, T]) Each(fn func(k K, v T)) {
	for _, k := range a.NonDefault() {
		fn(k, a.values[k])
	}
}

// Subscribe registers l and returns a function that unregisters it.
func (a *Attribute[K, T]) Subscribe(l AttributeListener[K]) (unsubscribe func()) {
	id := a.nextSub
	a.nextSub++
	a.listeners[id] = l
	return func() { delete(a.listeners, id) }
}

// BeginBatch opens a notification window. Changes made until the matching
// EndBatch are collected and delivered once. Batches nest; only the
// outermost EndBatch flushes.
func (a *Attribute[K, T]) BeginBatch() { a.depth++ }

// EndBatch closes the innermost window and flushes if it was the outermost.
func (a *Attribute[K, T]) EndBatch() {
	if a.depth == 0 {
		return
	}
	a.depth--
	if a.depth > 0 {
		return
	}
	all := a.pendingAll
	changed := slices.Sorted(maps.Keys(a.pending))
	a.pendingAll = false
	clear(a.pending)

	if all {
		a.each(func(l AttributeListener[K]) { l.UpdateAll() })
	}
	if len(changed) > 0 {
		a.each(func(l AttributeListener[K]) { l.Update(changed) })
	}
}

// Batch runs fn inside a notification window.
func (a *Attribute[K, T]) Batch(fn func()) {
	a.BeginBatch()
	defer a.EndBatch()
	fn()
}

func (a *Attribute[K, T]) changed(k K) {
	if a.depth > 0 {
		a.pending[k] = struct{}{}
		return
	}
	changed := []K{k}
	a.each(func(l AttributeListener[K]) { l.Update(changed) })
}

func (a *Attribute[K, T]) each(fn func(AttributeListener[K])) {
	ids := slices.Sorted(maps.Keys(a.listeners))
	for _, id := range ids {
		if l, ok := a.listeners[id]; ok {
			fn(l)
		}
	}
}

func (a *Attribute[K, T]) dropNode(n Node) {
	if k, ok := any(n).(K); ok {
		delete(a.values, k)
		delete(a.pending, k)
	}
}

func (a *Attribute[K, T]) dropEdge(e Edge) {
	if k, ok := any(e).(K); ok {
		delete(a.values, k)
		delete(a.pending, k)
	}
}
