package render_test

import (
	"testing"

	"github.com/goliatone/go-manual/internal/render"
	"github.com/stretchr/testify/assert"
)

func TestIsMarkup(t *testing.T) {
	cases := map[string]struct {
		input string
		want  bool
	}{
		"empty":               {input: "", want: false},
		"plain sentence":      {input: "Plain words only", want: false},
		"dialect":             {input: "**Title**\n- a\n1. b", want: false},
		"comparison":          {input: "a < b > c", want: false},
		"less than number":    {input: "1 <2", want: false},
		"paragraph":           {input: "<p>hi</p>", want: true},
		"closing tag only":    {input: "</div>", want: true},
		"self closing":        {input: "line<br/>break", want: true},
		"attributes":          {input: `<a href="/x" title="y">go</a>`, want: true},
		"embedded in text":    {input: "see <strong>this</strong> now", want: true},
		"unbalanced fragment": {input: "<p>open", want: true},
		"quoted less than":    {input: `<img src="a<b">`, want: true},
		"quoted greater than": {input: `<a title='x > y'>go</a>`, want: true},
		"unclosed quote":      {input: `<p class="x>hello`, want: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, render.IsMarkup(tc.input))
		})
	}
}

func TestIsMarkupIsDeterministic(t *testing.T) {
	inputs := []string{"", "<p>x</p>", "a < b", "**x**"}
	for _, input := range inputs {
		first := render.IsMarkup(input)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, render.IsMarkup(input), "input %q", input)
		}
	}
}
