package render_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-manual/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSelectsPathByProbe(t *testing.T) {
	markup := render.Render("<p>hello</p><script>x()</script>")
	assert.Equal(t, render.KindHTML, markup.Kind)
	assert.True(t, markup.IsMarkup())
	assert.Equal(t, "<p>hello</p>", markup.HTML)
	assert.Nil(t, markup.Blocks)

	plain := render.Render("**Intro**\ntext")
	assert.Equal(t, render.KindBlocks, plain.Kind)
	assert.Empty(t, plain.HTML)
	assert.Equal(t, []render.Block{render.Heading{Text: "Intro"}, render.Paragraph{Text: "text"}}, plain.Blocks)
}

func TestRenderEmptyContentYieldsNoBlocks(t *testing.T) {
	out := render.Render("")
	assert.Equal(t, render.KindBlocks, out.Kind)
	assert.Empty(t, out.Blocks)
	assert.Equal(t, "", out.Markup())
}

func TestOutputJSON(t *testing.T) {
	raw, err := json.Marshal(render.Render("**T**\n- a\n- b"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"blocks","blocks":[{"type":"heading","text":"T"},{"type":"bullet_list","items":["a","b"]}]}`, string(raw))

	raw, err = json.Marshal(render.Render("<em>x</em>"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"html","html":"<em>x</em>"}`, string(raw))
}

func TestBlocksHTMLEscapesText(t *testing.T) {
	got := render.BlocksHTML([]render.Block{
		render.Heading{Text: "A & B"},
		render.Paragraph{Text: "<b>not bold</b>"},
		render.BulletList{Items: []string{"x", "y"}},
	})
	assert.Equal(t, "<h3>A &amp; B</h3><p>&lt;b&gt;not bold&lt;/b&gt;</p><ul><li>x</li><li>y</li></ul>", got)
}

func TestTypeOfCoversEveryBlock(t *testing.T) {
	assert.Equal(t, render.BlockHeading, render.TypeOf(render.Heading{}))
	assert.Equal(t, render.BlockParagraph, render.TypeOf(render.Paragraph{}))
	assert.Equal(t, render.BlockBulletList, render.TypeOf(render.BulletList{}))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world", render.PlainText("<p>Hello <strong>world</strong></p>"))
	assert.Equal(t, "Title a b", render.PlainText("**Title**\n- a\n- b"))
	assert.Equal(t, "", render.PlainText(""))
}

func TestRenderIsSafeForConcurrentUse(t *testing.T) {
	inputs := []string{"**T**\n- a", "<p>x</p><script>y</script>", "1. a\n2. b"}
	expected := make([]render.Output, len(inputs))
	for i, input := range inputs {
		expected[i] = render.Render(input)
	}

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, input := range inputs {
				assert.Equal(t, expected[i], render.Render(input))
			}
		}()
	}
	wg.Wait()
}

type recordingObserver struct {
	mu    sync.Mutex
	kinds []render.Kind
	times []time.Duration
}

func (o *recordingObserver) ObserveRender(kind render.Kind, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
	o.times = append(o.times, elapsed)
}

func TestRendererReportsToObserver(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Millisecond)
	}
	observer := &recordingObserver{}
	r := render.NewRenderer(render.WithObserver(observer), render.WithClock(clock))

	r.Render("<p>x</p>")
	r.Render("plain")

	assert.Equal(t, []render.Kind{render.KindHTML, render.KindBlocks}, observer.kinds)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, observer.times)
}
