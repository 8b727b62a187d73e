package figure

import (
	"github.com/charmbracelet/log"

	"github.com/genemap/genemap/pkg/errors"
)

// Axis is a named categorical dimension ("gene", "genome") shared across
// panels. It holds membership, order, fix state, and a label mapping.
//
// An axis advances monotonically through three states: unset (no writer has
// supplied membership yet), set (order exists but is only a suggestion), and
// fixed (the current order is authoritative). Once fixed, reorder attempts
// are logged and ignored; the first writer to fix an axis wins for the rest
// of the run.
type Axis struct {
	name    string
	exists  bool
	fixed   bool
	order   []string
	labelOf map[string]string
	log     *log.Logger
}

// Name returns the axis name.
func (a *Axis) Name() string { return a.name }

// Exists reports whether any writer has supplied membership yet.
func (a *Axis) Exists() bool { return a.exists }

// IsFixed reports whether the order has been marked authoritative.
func (a *Axis) IsFixed() bool { return a.fixed }

// Len returns the number of members.
func (a *Axis) Len() int { return len(a.order) }

// Set supplies membership and labels. On an unset axis it initializes the
// order from ids and the label mapping from labels. On an already set axis
// it appends members not seen before, preserving the existing order, and
// overwrites labels for known members (last writer wins). Set never
// reorders.
func (a *Axis) Set(ids []string, labels map[string]string) {
	if !a.exists {
		a.exists = true
	}
	seen := map[string]bool{}
	for _, id := range a.order {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			a.order = append(a.order, id)
			seen[id] = true
		}
		if label, ok := labels[id]; ok {
			a.labelOf[id] = label
		}
	}
}

// SetOrder replaces the order with seq. On a fixed axis this is a logged
// no-op. On an unset axis seq initializes the membership. Otherwise every
// entry of seq must already be a member; an unknown entry is an error.
// seq may be a subset of the membership, in which case members absent from
// seq are dropped.
func (a *Axis) SetOrder(seq []string) error {
	if a.fixed {
		a.log.Warn("axis order is fixed, ignoring reorder", "axis", a.name)
		return nil
	}
	if !a.exists {
		a.exists = true
		a.order = append([]string(nil), seq...)
		return nil
	}
	known := map[string]bool{}
	for _, id := range a.order {
		known[id] = true
	}
	for _, id := range seq {
		if !known[id] {
			return errors.New(errors.ErrCodeUnknownMember,
				"axis %q: %q is not a member", a.name, id)
		}
	}
	a.order = append(a.order[:0], seq...)
	return nil
}

// Fix marks the current order authoritative. All later SetOrder calls are
// rejected. Fixing an already fixed axis is a no-op.
func (a *Axis) Fix() {
	if a.fixed {
		return
	}
	a.fixed = true
	a.log.Debug("axis order fixed", "axis", a.name, "members", len(a.order))
}

// Order returns a copy of the current member order.
func (a *Axis) Order() []string {
	return append([]string(nil), a.order...)
}

// MemberSet returns the membership as a set.
func (a *Axis) MemberSet() map[string]bool {
	set := make(map[string]bool, len(a.order))
	for _, id := range a.order {
		set[id] = true
	}
	return set
}

// Label returns the display label of id, falling back to the raw ID when no
// label was supplied.
func (a *Axis) Label(id string) string {
	if label, ok := a.labelOf[id]; ok {
		return label
	}
	return id
}

// Labels returns the display labels in current order.
func (a *Axis) Labels() []string {
	labels := make([]string, len(a.order))
	for i, id := range a.order {
		labels[i] = a.Label(id)
	}
	return labels
}

// LabelDict returns the ID-to-label mapping for every member, including the
// identity fallback for unlabeled members.
func (a *Axis) LabelDict() map[string]string {
	dict := make(map[string]string, len(a.order))
	for _, id := range a.order {
		dict[id] = a.Label(id)
	}
	return dict
}

// Registry owns one axis per dimension name and is the single source of
// truth for order and labels during a builder run.
type Registry struct {
	axes map[string]*Axis
	log  *log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{axes: map[string]*Axis{}, log: logger}
}

// Axis returns the axis for name, creating an empty placeholder on first
// access so writers can test Exists before acting.
func (r *Registry) Axis(name string) *Axis {
	if a, ok := r.axes[name]; ok {
		return a
	}
	a := &Axis{name: name, labelOf: map[string]string{}, log: r.log}
	r.axes[name] = a
	return a
}
