package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// renderers hands out glamour renderers per option set. A TermRenderer
// keeps state between calls, so each one serves a single goroutine at a
// time and goes back to its pool afterwards.
var renderers = struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}{pools: make(map[Options]*sync.Pool)}

func poolFor(opts Options) *sync.Pool {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()

	pool, ok := renderers.pools[opts]
	if !ok {
		pool = &sync.Pool{}
		renderers.pools[opts] = pool
	}
	return pool
}

// acquire returns a pooled renderer for opts, building one when the pool
// is empty. A bad style path surfaces here and is not cached.
func acquire(opts Options) (*glamour.TermRenderer, func(), error) {
	pool := poolFor(opts)
	r, _ := pool.Get().(*glamour.TermRenderer)
	if r == nil {
		var err error
		if r, err = newRenderer(opts); err != nil {
			return nil, nil, err
		}
	}
	return r, func() { pool.Put(r) }, nil
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	style := opts.Style
	if style == "" {
		style = StyleDark
	}

	options := []glamour.TermRendererOption{
		glamour.WithStylePath(style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		// replies are chat text; single line breaks are intentional
		glamour.WithPreservedNewLines(),
	}
	if opts.Emoji {
		options = append(options, glamour.WithEmoji())
	}
	return glamour.NewTermRenderer(options...)
}
