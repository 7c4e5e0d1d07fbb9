package ecad

import (
	"context"
	"time"

	"github.com/Draaaaaaven/ecad/pkg/observability"
)

// FlattenOptions configures LayoutView.Flatten.
type FlattenOptions struct {
	// MaxDepth limits how many instance levels are expanded. Instances below
	// the limit are kept as cell instances with composed placements. Zero
	// expands the whole hierarchy.
	MaxDepth int
}

// Flatten returns a new single-level view holding the content of v and,
// recursively, of every instanced master, mapped into v's coordinates.
// Layers and nets of masters are matched by name; names of imported
// instances are prefixed with the instance path ("u1/via3").
//
// v is not modified. A full flatten is cached on v's cell and returned by
// [Cell.FlattenedLayoutView] until the database changes.
func (v *LayoutView) Flatten(opts FlattenOptions) (*LayoutView, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	ctx := context.Background()
	hooks := observability.Engine()
	hooks.OnFlattenStart(ctx, v.name, 1)
	start := time.Now()

	f := &flattener{opts: opts}
	if opts.MaxDepth == 0 {
		f.memo = make(map[*LayoutView]*LayoutView)
		f.store = true
	}
	flat := f.flatten(v, 0)

	if opts.MaxDepth == 0 && v.cell != nil {
		v.cell.setFlattened(flat)
	}
	hooks.OnFlattenComplete(ctx, v.name, flat.primitives.Size(), time.Since(start), nil)
	return flat, nil
}

// flattener expands cell instances. When memo is set, fully flattened
// masters are looked up there first; store controls whether new results are
// recorded, so a memo shared between goroutines stays read-only.
type flattener struct {
	opts  FlattenOptions
	memo  map[*LayoutView]*LayoutView
	store bool
}

func (f *flattener) flatten(src *LayoutView, depth int) *LayoutView {
	if flat, ok := f.memo[src]; ok {
		return flat
	}

	dst := NewLayoutView(src.name, nil)
	dst.copyContent(src)
	for _, ci := range src.cellInsts.items {
		if f.opts.MaxDepth > 0 && depth >= f.opts.MaxDepth {
			_ = dst.cellInsts.add(ci.clone(dst))
			continue
		}
		child := f.flatten(ci.def, depth+1)
		// dst is new and instantiated by nobody, so merge cannot fail.
		_ = dst.merge(child, ci.tr, ci.name+"/")
	}

	if f.store {
		f.memo[src] = dst
	}
	return dst
}
