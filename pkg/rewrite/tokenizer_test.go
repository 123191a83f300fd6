package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Empty(t *testing.T) {
	assert.Nil(t, Tokenize(""))
}

func TestTokenize_TextOnly(t *testing.T) {
	events := Tokenize("plain text, no markup")
	require.Len(t, events, 1)
	assert.Equal(t, EventText, events[0].Kind)
	assert.Equal(t, "plain text, no markup", events[0].Text)
}

func TestTokenize_SimpleElement(t *testing.T) {
	events := Tokenize("<p>hello</p>")
	require.Len(t, events, 3)

	assert.Equal(t, EventStartTag, events[0].Kind)
	assert.Equal(t, "p", events[0].Name)
	assert.Empty(t, events[0].Attrs)

	assert.Equal(t, EventText, events[1].Kind)
	assert.Equal(t, "hello", events[1].Text)

	assert.Equal(t, EventEndTag, events[2].Kind)
	assert.Equal(t, "p", events[2].Name)
}

func TestTokenize_Attributes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Attr
	}{
		{
			"double quoted",
			`<a href="/page">`,
			[]Attr{{Name: "href", Value: "/page", HasValue: true}},
		},
		{
			"single quoted",
			`<a href='/page'>`,
			[]Attr{{Name: "href", Value: "/page", HasValue: true}},
		},
		{
			"unquoted",
			`<a href=/page>`,
			[]Attr{{Name: "href", Value: "/page", HasValue: true}},
		},
		{
			"valueless",
			`<iframe seamless>`,
			[]Attr{{Name: "seamless"}},
		},
		{
			"empty value is not valueless",
			`<input value="">`,
			[]Attr{{Name: "value", Value: "", HasValue: true}},
		},
		{
			"mixed, order preserved",
			`<img src="x.png" alt="A cat" width=10 ismap>`,
			[]Attr{
				{Name: "src", Value: "x.png", HasValue: true},
				{Name: "alt", Value: "A cat", HasValue: true},
				{Name: "width", Value: "10", HasValue: true},
				{Name: "ismap"},
			},
		},
		{
			"entities decoded in values",
			`<a title="Tom &amp; Jerry">`,
			[]Attr{{Name: "title", Value: "Tom & Jerry", HasValue: true}},
		},
		{
			"uppercase names lowered",
			`<A HREF="/x">`,
			[]Attr{{Name: "href", Value: "/x", HasValue: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Tokenize(tt.input)
			require.NotEmpty(t, events)
			assert.Equal(t, EventStartTag, events[0].Kind)
			assert.Equal(t, tt.want, events[0].Attrs)
		})
	}
}

func TestTokenize_SelfClosing(t *testing.T) {
	events := Tokenize(`<br /><img src="x.png"/>`)
	require.Len(t, events, 2)

	assert.Equal(t, EventSelfClosingTag, events[0].Kind)
	assert.Equal(t, "br", events[0].Name)

	assert.Equal(t, EventSelfClosingTag, events[1].Kind)
	assert.Equal(t, "img", events[1].Name)
	assert.Equal(t, []Attr{{Name: "src", Value: "x.png", HasValue: true}}, events[1].Attrs)
}

func TestTokenize_References(t *testing.T) {
	events := Tokenize("a&amp;b&#39;c&#x27;d")
	require.Len(t, events, 7)

	assert.Equal(t, EventText, events[0].Kind)
	assert.Equal(t, EventEntityRef, events[1].Kind)
	assert.Equal(t, "amp", events[1].Name)
	assert.Equal(t, EventCharRef, events[3].Kind)
	assert.Equal(t, "39", events[3].Name)
	assert.Equal(t, EventCharRef, events[5].Kind)
	assert.Equal(t, "x27", events[5].Name)
	assert.Equal(t, "d", events[6].Text)
}

func TestTokenize_CommentAndDoctype(t *testing.T) {
	events := Tokenize("<!DOCTYPE html><!-- note -->text")
	require.Len(t, events, 3)

	assert.Equal(t, EventDecl, events[0].Kind)
	assert.Equal(t, "DOCTYPE html", events[0].Text)

	assert.Equal(t, EventComment, events[1].Kind)
	assert.Equal(t, " note ", events[1].Text)

	assert.Equal(t, EventText, events[2].Kind)
}

func TestTokenize_ScriptRawText(t *testing.T) {
	events := Tokenize(`<script>if (a < b && c > d) { x("<p>"); }</script>`)
	require.Len(t, events, 3)

	assert.Equal(t, EventStartTag, events[0].Kind)
	assert.Equal(t, "script", events[0].Name)

	// Script content is raw text: no tag or entity events inside.
	assert.Equal(t, EventText, events[1].Kind)
	assert.Equal(t, `if (a < b && c > d) { x("<p>"); }`, events[1].Text)

	assert.Equal(t, EventEndTag, events[2].Kind)
	assert.Equal(t, "script", events[2].Name)
}

func TestTokenize_StyleRawText(t *testing.T) {
	events := Tokenize(`<style>a > b { color: red; }</style>`)
	require.Len(t, events, 3)
	assert.Equal(t, EventText, events[1].Kind)
	assert.Equal(t, "a > b { color: red; }", events[1].Text)
}

func TestTokenize_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"stray lt", "1 < 2"},
		{"stray lt gt", "a<>b"},
		{"unterminated tag", "<a href="},
		{"unterminated quote", `<a href="oops>text`},
		{"unterminated comment", "<!-- never closed"},
		{"unterminated script", "<script>var x = 1;"},
		{"bare ampersand", "fish & chips"},
		{"end tag with junk", "</p junk>"},
		{"empty end tag", "</>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Lenient tokenization: never panics, always consumes input.
			assert.NotPanics(t, func() { Tokenize(tt.input) })
			assert.NotEmpty(t, Tokenize(tt.input))
		})
	}
}

func TestTokenize_StrayAngleBecomesText(t *testing.T) {
	events := Tokenize("1 < 2")
	require.Len(t, events, 3)
	assert.Equal(t, "1 ", events[0].Text)
	assert.Equal(t, "<", events[1].Text)
	assert.Equal(t, " 2", events[2].Text)
}

func TestTokenize_TextNeverContainsMarkup(t *testing.T) {
	// Outside raw-text elements, text events only carry '<' when they
	// are degraded single-rune stray brackets.
	events := Tokenize(`a<b>c</b><x y="<">z`)
	inRaw := false
	for _, e := range events {
		if e.Kind == EventStartTag && rawTextElements[e.Name] {
			inRaw = true
		}
		if e.Kind == EventEndTag {
			inRaw = false
		}
		if e.Kind == EventText && !inRaw && e.Text != "<" {
			assert.NotContains(t, e.Text, "<")
		}
	}
}

func TestTokenize_UnterminatedQuoteRecovers(t *testing.T) {
	events := Tokenize(`<a href="oops>text`)
	require.NotEmpty(t, events)
	assert.Equal(t, EventStartTag, events[0].Kind)
	assert.Equal(t, "a", events[0].Name)

	// The tag still closes at '>', and the trailing text survives.
	last := events[len(events)-1]
	assert.Equal(t, EventText, last.Kind)
	assert.Equal(t, "text", last.Text)
}
