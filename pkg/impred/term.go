package impred

// Force produces per-node force vectors. The engine sums the outputs of all
// force terms in registration order.
type Force interface {
	Compute(ctx *Context) Forces
}

// Constraint produces movement caps. The engine keeps, per node and for the
// default, the minimum over all constraint terms.
type Constraint interface {
	Compute(ctx *Context) Caps
}

// PreMovement rewrites the planned movements before they are applied.
type PreMovement interface {
	Adjust(ctx *Context) error
}

// PostProcessor runs after movements have been applied. It may edit the
// mirror structure through ctx.Sync.
type PostProcessor interface {
	Process(ctx *Context) error
}

// ForceFunc adapts a function to Force.
type ForceFunc func(ctx *Context) Forces

func (f ForceFunc) Compute(ctx *Context) Forces { return f(ctx) }

// ConstraintFunc adapts a function to Constraint.
type ConstraintFunc func(ctx *Context) Caps

func (f ConstraintFunc) Compute(ctx *Context) Caps { return f(ctx) }

// PreMovementFunc adapts a function to PreMovement.
type PreMovementFunc func(ctx *Context) error

func (f PreMovementFunc) Adjust(ctx *Context) error { return f(ctx) }

// PostProcessorFunc adapts a function to PostProcessor.
type PostProcessorFunc func(ctx *Context) error

func (f PostProcessorFunc) Process(ctx *Context) error { return f(ctx) }

// Attachment binds a stateful term to exactly one engine. Embed it by
// value in the term and call Check at the top of every compute method.
type Attachment struct {
	engine *Engine
}

// Attacher is implemented by terms that must be bound to an engine. The
// engine calls Attach once per term on construction; wrappers forward it
// to the terms they wrap.
type Attacher interface {
	Attach(e *Engine)
}

// Attach binds the term to e. It panics if the term is already attached.
func (a *Attachment) Attach(e *Engine) {
	if a.engine != nil {
		panic("impred: term is already attached to an engine")
	}
	a.engine = e
}

// Attached reports whether the term has been attached.
func (a *Attachment) Attached() bool { return a.engine != nil }

// Check panics unless the term is attached to the engine running ctx.
func (a *Attachment) Check(ctx *Context) {
	switch {
	case a.engine == nil:
		panic("impred: term used before being attached to an engine")
	case a.engine != ctx.engine:
		panic("impred: term used with an engine it is not attached to")
	}
}
