package figure

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/genemap/genemap/pkg/canvas"
	"github.com/genemap/genemap/pkg/errors"
)

// GlobalNamespace is the parameter namespace of arguments not tied to any
// element. Global boundary keys carry no element prefix.
const GlobalNamespace = "global"

// Phase is the builder run state. Phases advance strictly in order and are
// never skipped or re-entered.
type Phase int

// Run phases.
const (
	PhaseConstructed Phase = iota
	PhaseArgumentsParsed
	PhaseDataRead
	PhaseRendered
)

func (p Phase) String() string {
	switch p {
	case PhaseConstructed:
		return "CONSTRUCTED"
	case PhaseArgumentsParsed:
		return "ARGUMENTS_PARSED"
	case PhaseDataRead:
		return "DATA_READ"
	case PhaseRendered:
		return "RENDERED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// BoundaryArgument is a declared argument together with the namespaced key
// it is addressed by at the parameter boundary. The CLI generates one flag
// per boundary argument.
type BoundaryArgument struct {
	Namespace   string
	BoundaryKey string
	Argument    Argument
}

// Builder composes an ordered list of elements into one figure. It parses
// boundary arguments into per-element namespaces, runs the two-phase
// read/plot protocol in declaration order, and owns the axis registry plus
// the shared rendering canvas.
type Builder struct {
	runID    string
	phase    Phase
	elements []Element
	index    map[string]Element
	boundary []BoundaryArgument
	byKey    map[string]BoundaryArgument

	registry *Registry
	canvas   *canvas.Canvas
	params   map[string]Params
	disabled map[string]string
	log      *log.Logger
}

// Option configures a builder.
type Option func(*Builder)

// WithLogger sets the logger used by the builder and its axis registry.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) { b.log = logger }
}

// New constructs a builder over the given canvas, global arguments, and
// ordered elements. Declaration order is semantically significant: read and
// plot both run in this order, so elements that fix an axis must be declared
// before elements that merely consult it.
//
// Duplicate element IDs and boundary key collisions are construction-time
// errors, detected before any I/O.
func New(cv *canvas.Canvas, globalArgs []Argument, elements []Element, opts ...Option) (*Builder, error) {
	b := &Builder{
		runID:    uuid.NewString(),
		phase:    PhaseConstructed,
		elements: elements,
		index:    map[string]Element{},
		byKey:    map[string]BoundaryArgument{},
		canvas:   cv,
		params:   map[string]Params{},
		disabled: map[string]string{},
		log:      log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("run", b.runID)
	b.registry = NewRegistry(b.log)

	for _, arg := range globalArgs {
		if err := arg.validate(); err != nil {
			return nil, err
		}
		if err := b.declare(GlobalNamespace, arg.Key, arg); err != nil {
			return nil, err
		}
	}

	for _, el := range elements {
		id := el.ID()
		if id == "" || id == GlobalNamespace {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"element ID %q is reserved", id)
		}
		if _, ok := b.index[id]; ok {
			return nil, errors.New(errors.ErrCodeDuplicateElement,
				"duplicate element ID %q", id)
		}
		b.index[id] = el

		for _, arg := range el.Arguments() {
			if err := arg.validate(); err != nil {
				return nil, err
			}
			if err := b.declare(id, id+"-"+arg.Key, arg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func (b *Builder) declare(namespace, boundaryKey string, arg Argument) error {
	if prev, ok := b.byKey[boundaryKey]; ok {
		return errors.New(errors.ErrCodeInvalidArgument,
			"boundary argument key %q declared by both %q and %q",
			boundaryKey, prev.Namespace, namespace)
	}
	ba := BoundaryArgument{Namespace: namespace, BoundaryKey: boundaryKey, Argument: arg}
	b.byKey[boundaryKey] = ba
	b.boundary = append(b.boundary, ba)
	return nil
}

// RunID returns the unique identifier of this run.
func (b *Builder) RunID() string { return b.runID }

// Phase returns the current run phase.
func (b *Builder) Phase() Phase { return b.phase }

// Axis returns the named axis from the registry, creating a placeholder on
// first access.
func (b *Builder) Axis(name string) *Axis { return b.registry.Axis(name) }

// Canvas returns the shared rendering canvas.
func (b *Builder) Canvas() *canvas.Canvas { return b.canvas }

// Logger returns the run logger.
func (b *Builder) Logger() *log.Logger { return b.log }

// Params returns the resolved parameters of a namespace.
func (b *Builder) Params(namespace string) Params { return b.params[namespace] }

// Element returns the element declared under id.
func (b *Builder) Element(id string) (Element, bool) {
	el, ok := b.index[id]
	return el, ok
}

// Enabled reports whether the element exists and has not been disabled.
// Dependent elements call this during their own read step to decide whether
// to cascade-disable themselves.
func (b *Builder) Enabled(id string) bool {
	if _, ok := b.index[id]; !ok {
		return false
	}
	_, disabled := b.disabled[id]
	return !disabled
}

// DisabledReason returns the reason an element was disabled, or "".
func (b *Builder) DisabledReason(id string) string { return b.disabled[id] }

// BoundaryArguments lists every declared argument with its namespaced
// boundary key, in declaration order.
func (b *Builder) BoundaryArguments() []BoundaryArgument {
	return append([]BoundaryArgument(nil), b.boundary...)
}

// ParseArguments resolves a flat boundary mapping into per-namespace
// parameter maps. Defaults apply first; any boundary key matching no
// declared argument is a fatal unrecognized-argument error.
func (b *Builder) ParseArguments(boundary map[string]string) error {
	if b.phase != PhaseConstructed {
		return errors.New(errors.ErrCodeInvalidPhase,
			"ParseArguments called in phase %s", b.phase)
	}

	b.params[GlobalNamespace] = Params{}
	for id := range b.index {
		b.params[id] = Params{}
	}
	for _, ba := range b.boundary {
		if ba.Argument.Default != nil {
			b.params[ba.Namespace][ba.Argument.Key] = ba.Argument.Default
		}
	}

	keys := make([]string, 0, len(boundary))
	for k := range boundary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ba, ok := b.byKey[key]
		if !ok {
			return errors.New(errors.ErrCodeUnknownArgument,
				"unrecognized argument %q", key)
		}
		value, err := ba.Argument.parse(boundary[key])
		if err != nil {
			return err
		}
		b.params[ba.Namespace][ba.Argument.Key] = value
	}

	b.phase = PhaseArgumentsParsed
	return nil
}

// Read runs every element's read step in declaration order. An element
// returning Disabled is recorded and skipped during the plot phase; an
// element returning an error aborts the whole run.
func (b *Builder) Read(ctx context.Context) error {
	if b.phase != PhaseArgumentsParsed {
		return errors.New(errors.ErrCodeInvalidPhase,
			"Read called in phase %s", b.phase)
	}

	for _, el := range b.elements {
		id := el.ID()
		b.log.Debug("reading element", "element", id)
		status, err := el.Read(ctx, b, b.params[id])
		if err != nil {
			return err
		}
		if !status.IsReady() {
			b.disabled[id] = status.Reason()
			b.log.Info("element disabled", "element", id, "reason", status.Reason())
		}
	}

	b.phase = PhaseDataRead
	return nil
}

// Plot runs the plot step of every enabled element in declaration order.
// Disabled elements are never plotted.
func (b *Builder) Plot(ctx context.Context) error {
	if b.phase != PhaseDataRead {
		return errors.New(errors.ErrCodeInvalidPhase,
			"Plot called in phase %s", b.phase)
	}

	for _, el := range b.elements {
		id := el.ID()
		if _, off := b.disabled[id]; off {
			b.log.Debug("skipping disabled element", "element", id)
			continue
		}
		b.log.Debug("plotting element", "element", id)
		if err := el.Plot(ctx, b); err != nil {
			return err
		}
	}

	b.phase = PhaseRendered
	return nil
}

// Run executes the full pipeline: parse boundary arguments, read, plot.
func (b *Builder) Run(ctx context.Context, boundary map[string]string) error {
	if err := b.ParseArguments(boundary); err != nil {
		return err
	}
	if err := b.Read(ctx); err != nil {
		return err
	}
	return b.Plot(ctx)
}
