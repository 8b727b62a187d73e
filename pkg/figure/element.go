package figure

import "context"

// Status is the outcome of an element's read step. Ready means the element
// loaded its data and will participate in the plot phase; Disabled means a
// required-for-this-element input was absent, which is a normal outcome and
// not an error.
type Status struct {
	ready  bool
	reason string
}

// Ready marks the element as loaded and plottable.
func Ready() Status { return Status{ready: true} }

// Disabled marks the element as skipped, with a human-readable reason.
func Disabled(reason string) Status { return Status{reason: reason} }

// IsReady reports whether the element will be plotted.
func (s Status) IsReady() bool { return s.ready }

// Reason returns the disablement reason, or "" when ready.
func (s Status) Reason() string { return s.reason }

// Element is one self-contained unit of a composed figure. It declares its
// own arguments, loads data during the read phase, and issues draw calls
// during the plot phase.
//
// Read runs for every element in declaration order. It receives the builder
// so it can query axis state and siblings declared earlier; siblings
// declared later have not run yet. Read returns Disabled when an optional
// input is missing, and an error only for malformed required input.
//
// Plot runs in declaration order for every element whose Read returned
// Ready. It reads the final axis order and labels and draws into the
// builder's canvas.
type Element interface {
	ID() string
	Arguments() []Argument
	Read(ctx context.Context, b *Builder, p Params) (Status, error)
	Plot(ctx context.Context, b *Builder) error
}
