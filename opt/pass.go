package opt

import (
	"context"
	"slices"

	"github.com/wippyai/scriptc/ir"
	"github.com/wippyai/scriptc/ssa"
)

// Pass transforms a graph in place.
//
// Passes are stateless and can be shared across graphs. Run reports whether
// the graph changed; it returns an error only when ctx is done.
type Pass interface {
	Name() string
	Run(ctx context.Context, g *ir.Graph) (bool, error)
}

// Func is an adapter to use ordinary functions as Passes.
type Func struct {
	Fn       func(ctx context.Context, g *ir.Graph) (bool, error)
	PassName string
}

// Name implements Pass.
func (f Func) Name() string { return f.PassName }

// Run implements Pass.
func (f Func) Run(ctx context.Context, g *ir.Graph) (bool, error) {
	return f.Fn(ctx, g)
}

// Registry maps pass names to passes.
type Registry struct {
	passes map[string]Pass
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{passes: make(map[string]Pass)}
}

// DefaultRegistry returns a registry holding every built-in pass.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Fold{})
	r.Register(DeadCode{})
	r.Register(DeadBlock{})
	r.Register(Func{PassName: "simplify-phis", Fn: func(_ context.Context, g *ir.Graph) (bool, error) {
		return ssa.SimplifyPhis(g) > 0, nil
	}})
	return r
}

// Register adds p under its name, replacing any pass of the same name.
func (r *Registry) Register(p Pass) {
	r.passes[p.Name()] = p
}

// Get returns the pass with the given name, or nil if none is registered.
func (r *Registry) Get(name string) Pass {
	return r.passes[name]
}

// Has returns true if a pass is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.passes[name]
	return ok
}

// Names returns the registered pass names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.passes))
	for name := range r.passes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Missing returns the names that have no registered pass.
func (r *Registry) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// removeUnused deletes pure assignments whose target is never read and
// returns the number removed. A phi reading only itself counts as unused.
func removeUnused(g *ir.Graph) int {
	uses := g.UseCounts()
	for _, b := range g.Live() {
		for _, p := range b.Phis() {
			for _, v := range p.Phi.Values {
				if v.Value == p.Target {
					uses[p.Target]--
				}
			}
		}
	}

	removed := 0
	for _, b := range g.Live() {
		removed += b.Filter(func(instr ir.Instruction) bool {
			if !ir.IsPure(instr) {
				return true
			}
			n, _ := ir.AssigneeOf(instr)
			return uses[n] > 0
		})
	}
	return removed
}
