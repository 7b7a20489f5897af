package render

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

// Kind identifies which path produced an Output.
type Kind string

const (
	KindBlocks Kind = "blocks"
	KindHTML   Kind = "html"
)

// Output is either a block sequence (plain dialect) or sanitized markup.
type Output struct {
	Kind   Kind
	Blocks []Block
	HTML   string
}

// IsMarkup reports whether the output came from the markup path.
func (o Output) IsMarkup() bool {
	return o.Kind == KindHTML
}

// Markup returns display markup for either path.
func (o Output) Markup() string {
	if o.Kind == KindHTML {
		return o.HTML
	}
	return BlocksHTML(o.Blocks)
}

func (o Output) MarshalJSON() ([]byte, error) {
	if o.Kind == KindHTML {
		return json.Marshal(struct {
			Kind Kind   `json:"kind"`
			HTML string `json:"html"`
		}{Kind: o.Kind, HTML: o.HTML})
	}
	blocks := o.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(struct {
		Kind   Kind    `json:"kind"`
		Blocks []Block `json:"blocks"`
	}{Kind: KindBlocks, Blocks: blocks})
}

// Render classifies content and sends it down the matching path.
func Render(content string) Output {
	if IsMarkup(content) {
		return Output{Kind: KindHTML, HTML: Sanitize(content)}
	}
	return Output{Kind: KindBlocks, Blocks: Normalize(content)}
}

// Observer receives one call per render. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveRender(kind Kind, elapsed time.Duration)
}

// Renderer wraps Render with logging and an optional observer.
type Renderer struct {
	logger   interfaces.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers an observer for render timings.
func WithObserver(observer Observer) Option {
	return func(r *Renderer) {
		r.observer = observer
	}
}

// WithClock overrides the clock used for timings.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRenderer builds a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render renders content and reports the path taken.
func (r *Renderer) Render(content string) Output {
	if r == nil {
		return Render(content)
	}
	started := r.now()
	out := Render(content)
	elapsed := r.now().Sub(started)

	if r.observer != nil {
		r.observer.ObserveRender(out.Kind, elapsed)
	}
	r.logger.Trace("render.completed", "kind", out.Kind, "input_bytes", len(content), "blocks", len(out.Blocks))
	return out
}
