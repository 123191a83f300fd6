package rewrite

import (
	"regexp"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/goscramble/pkg/scramble"
)

const exampleBase = "https://example.com/"

func mustRewrite(t *testing.T, content string, opts Options) string {
	t.Helper()
	out, err := Document(content, opts)
	require.NoError(t, err)
	return out
}

func TestRewrite_PreservesStructure(t *testing.T) {
	input := `<html><body><h1>Big News</h1><p>Some words here.</p></body></html>`
	out := mustRewrite(t, input, Options{BaseURL: exampleBase})

	// The tag skeleton is untouched; only text between tags changes.
	tags := regexp.MustCompile(`</?[a-z0-9]+[^>]*>`)
	assert.Equal(t, tags.FindAllString(input, -1), tags.FindAllString(out, -1))
	assert.Len(t, out, len(input))
}

func TestRewrite_TextLengthAndLiterals(t *testing.T) {
	input := `<p>Hello, world! 123</p>`
	out := mustRewrite(t, input, Options{})

	require.Len(t, out, len(input))
	inner := strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	assert.Equal(t, ',', rune(inner[5]))
	assert.Equal(t, '!', rune(inner[12]))
	for i, r := range inner {
		wantClass, _ := scramble.Classify(rune("Hello, world! 123"[i]))
		gotClass, _ := scramble.Classify(r)
		assert.Equal(t, wantClass, gotClass, "index %d", i)
	}
}

func TestRewrite_IdempotentStructure(t *testing.T) {
	input := `<div class="x"><p>Words change</p><hr><p>every time.</p></div>`

	first := mustRewrite(t, input, Options{})
	second := mustRewrite(t, input, Options{})

	tags := regexp.MustCompile(`</?[a-z0-9]+[^>]*>`)
	assert.Equal(t, tags.FindAllString(first, -1), tags.FindAllString(second, -1))
	assert.Len(t, second, len(first))
}

func TestRewrite_LinkRewriting(t *testing.T) {
	out := mustRewrite(t, `<a href="/page">go</a>`, Options{BaseURL: exampleBase})
	assert.Contains(t, out, `href="?url=https%3A%2F%2Fexample.com%2Fpage"`)
}

func TestRewrite_LinkRewritingHoneypot(t *testing.T) {
	out := mustRewrite(t, `<a href="/page">go</a>`, Options{BaseURL: exampleBase, Honeypot: true})
	assert.Contains(t, out, `href="?honeypot=1&amp;url=https%3A%2F%2Fexample.com%2Fpage"`)
}

func TestRewrite_FrameTargets(t *testing.T) {
	out := mustRewrite(t, `<iframe src="/inner.html"></iframe>`, Options{BaseURL: exampleBase})
	assert.Contains(t, out, `src="?url=https%3A%2F%2Fexample.com%2Finner.html"`)

	out = mustRewrite(t, `<frame src="nav.html">`, Options{BaseURL: exampleBase})
	assert.Contains(t, out, `src="?url=https%3A%2F%2Fexample.com%2Fnav.html"`)
}

func TestRewrite_PassThroughURLsResolvedOnly(t *testing.T) {
	out := mustRewrite(t, `<img src="/cat.png"><form action="/submit"><link href="/s.css">`,
		Options{BaseURL: exampleBase})

	assert.Contains(t, out, `src="https://example.com/cat.png"`)
	assert.Contains(t, out, `action="https://example.com/submit"`)
	assert.Contains(t, out, `href="https://example.com/s.css"`)
}

func TestRewrite_Srcset(t *testing.T) {
	out := mustRewrite(t,
		`<img srcset="small.png 1x, large.png 2x, plain.png">`,
		Options{BaseURL: exampleBase})

	assert.Contains(t, out,
		`srcset="https://example.com/small.png 1x, https://example.com/large.png 2x, https://example.com/plain.png"`)
}

func TestRewrite_ScrambledAttributes(t *testing.T) {
	out := mustRewrite(t, `<img alt="cat">`, Options{})

	m := regexp.MustCompile(`alt="([^"]*)"`).FindStringSubmatch(out)
	require.NotNil(t, m)
	assert.Len(t, m[1], 3)
	for _, r := range m[1] {
		assert.True(t, unicode.IsLower(r))
	}
}

func TestRewrite_InputDisabled(t *testing.T) {
	out := mustRewrite(t, `<input type="text" name="q">`, Options{})
	assert.Contains(t, out, "<input")
	assert.Contains(t, out, " disabled>")
}

func TestRewrite_InputDisabledXHTML(t *testing.T) {
	input := `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"><input type="text">`
	out := mustRewrite(t, input, Options{})
	assert.Contains(t, out, ` disabled="disabled" />`)
}

func TestRewrite_VoidElements(t *testing.T) {
	t.Run("html keeps plain closing", func(t *testing.T) {
		out := mustRewrite(t, `<p>a<br>b</p>`, Options{})
		assert.Contains(t, out, "<br>")
		assert.NotContains(t, out, "<br />")
	})

	t.Run("xhtml self-closes void tags", func(t *testing.T) {
		input := `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"><p>a<br>b</p>`
		out := mustRewrite(t, input, Options{})
		assert.Contains(t, out, "<br />")
	})

	t.Run("xhtml valueless attributes gain values", func(t *testing.T) {
		input := `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"><iframe seamless></iframe>`
		out := mustRewrite(t, input, Options{})
		assert.Contains(t, out, `seamless="seamless"`)
	})
}

func TestRewrite_ScriptSuppression(t *testing.T) {
	input := `<p>before</p><script>evil()</script><p>after</p>`
	out := mustRewrite(t, input, Options{SuppressScripts: true})

	assert.Contains(t, out, "<!-- script removed -->")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "</script>")
	assert.NotContains(t, out, "evil")
}

func TestRewrite_ScriptKeptWhenNotSuppressed(t *testing.T) {
	input := `<script>var total = 100;</script>`
	out := mustRewrite(t, input, Options{})

	// Script bodies are opaque data: present and unscrambled.
	assert.Contains(t, out, "<script>")
	assert.Contains(t, out, "var total = 100;")
	assert.Contains(t, out, "</script>")
}

func TestRewrite_StyleNotScrambled(t *testing.T) {
	input := `<style>body { color: red; }</style><p>words</p>`
	out := mustRewrite(t, input, Options{})

	assert.Contains(t, out, "body { color: red; }")
	assert.Len(t, out, len(input))
}

func TestRewrite_EntitiesPassThrough(t *testing.T) {
	input := `<p>fish &amp; chips &#169; now</p>`
	out := mustRewrite(t, input, Options{})

	assert.Contains(t, out, "&amp;")
	assert.Contains(t, out, "&#169;")
}

func TestRewrite_CommentsPassThrough(t *testing.T) {
	input := `<!--[if IE]>special<![endif]--><p>ok</p>`
	out := mustRewrite(t, input, Options{})
	assert.Contains(t, out, "<!--[if IE]>special<![endif]-->")
}

func TestRewrite_MalformedInputSurvives(t *testing.T) {
	// Purely textual degradations keep their exact length.
	lengthPreserving := []string{
		"1 < 2 but > 0",
		"a<>b",
		"<p>paragraph never closes",
		"text & more",
	}
	for _, input := range lengthPreserving {
		out := mustRewrite(t, input, Options{})
		assert.Len(t, out, len(input), "input %q", input)
	}

	// Structural repairs (recovered quotes) may resize tags, but never
	// lose the trailing content.
	out := mustRewrite(t, `<a href="unclosed>dangling`, Options{})
	assert.Contains(t, out, `<a href="?url=unclosed">`)
	assert.Len(t, out, len(`<a href="?url=unclosed">dangling`))
}

func TestRewrite_StrayBracketsKeepPositions(t *testing.T) {
	input := "1 < 2"
	out := mustRewrite(t, input, Options{})

	require.Len(t, out, len(input))
	assert.Equal(t, byte('<'), out[2])
	// Digits scramble among themselves; positions stay digits.
	assert.True(t, out[0] >= '0' && out[0] <= '9')
	assert.True(t, out[4] >= '0' && out[4] <= '9')
}

func TestRewrite_PlaceholderAlignment(t *testing.T) {
	input := `<div><p>one</p><!-- c --><p>two &amp; three</p><br></div>`

	state := newDocState(nil, Options{})
	for _, e := range Tokenize(input) {
		state.handle(e)
	}

	markers := 0
	for _, chunk := range state.buf {
		if chunk == markupMark {
			markers++
		}
	}
	assert.Equal(t, len(state.markup), markers)

	out := state.assemble(nil)
	assert.Empty(t, state.markup, "assemble must consume the whole queue")
	assert.Len(t, out, len(input))
}

func TestRewrite_TargetEncodingEscapes(t *testing.T) {
	// A Cyrillic target cannot represent 'é'; it must become a
	// character reference rather than be dropped.
	out, err := Document(`<p>café</p>`, Options{
		SourceEncoding: "utf-8",
		TargetEncoding: "iso-8859-5",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "&#")
	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "</p>")
}

func TestRewrite_BadEncodingLabel(t *testing.T) {
	_, err := Document("<p>x</p>", Options{
		SourceEncoding: "utf-8",
		TargetEncoding: "no-such-charset",
	})
	assert.Error(t, err)
}

func TestRewrite_BadBaseURL(t *testing.T) {
	_, err := Document("<p>x</p>", Options{BaseURL: "http://bad url with spaces\x7f"})
	assert.Error(t, err)
}

func TestRewriter_Reusable(t *testing.T) {
	r, err := New(Options{BaseURL: exampleBase})
	require.NoError(t, err)

	first := r.Rewrite(`<p>alpha beta</p>`)
	second := r.Rewrite(`<p>alpha beta</p>`)
	assert.Len(t, second, len(first))
}
