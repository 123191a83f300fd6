package rewrite

import (
	"html"
	"net/url"
	"strings"

	"github.com/yaklabco/goscramble/pkg/scramble"
)

// markupMark is the placeholder written into the scramble buffer where a
// markup queue entry belongs. Both runes are literals to the scrambler,
// so the marker survives scrambling in place. Text runs containing '<'
// never enter the buffer (see handleText), so the marker cannot collide
// with content.
const markupMark = "<>"

// scriptRemovedComment replaces suppressed script bodies in the output.
const scriptRemovedComment = "<!-- script removed -->"

// voidElements are tags with no closing tag or content. The tokenizer
// reports explicit <br /> syntax, but plain HTML void tags also need
// self-closing form when serializing XHTML, so membership is checked here
// as well. Includes obsolete tags still found in the wild.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
	"command": true, "keygen": true, "menuitem": true,
}

// rawTextElements contain opaque data that must pass through unscrambled.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

// docState is the per-document rewrite state machine. It consumes
// tokenizer events, routing scrambleable text into the scramble buffer
// and everything structural into the markup queue, then splices the two
// streams back together in assemble. One instance per document pass;
// nothing survives past the final string.
type docState struct {
	base *url.URL
	opts Options

	buf    []string // scramble buffer; markupMark entries locate markup
	markup []string // rendered markup, strict FIFO

	isScript     bool
	isScrambling bool
	isXHTML      bool
}

func newDocState(base *url.URL, opts Options) *docState {
	return &docState{
		base:         base,
		opts:         opts,
		isScrambling: true,
	}
}

// pushMarkup queues a rendered markup string and marks its position in
// the scramble buffer. Every event lands in exactly one of the two
// streams, keeping placeholders and queue entries one-to-one.
func (d *docState) pushMarkup(s string) {
	d.markup = append(d.markup, s)
	d.buf = append(d.buf, markupMark)
}

func (d *docState) handle(e Event) {
	switch e.Kind {
	case EventStartTag:
		d.handleStartTag(e)
	case EventSelfClosingTag:
		d.handleSelfClosingTag(e)
	case EventEndTag:
		d.handleEndTag(e)
	case EventText:
		d.handleText(e.Text)
	case EventEntityRef:
		d.pushMarkup("&" + e.Name + ";")
	case EventCharRef:
		d.pushMarkup("&#" + e.Name + ";")
	case EventComment:
		// IE conditional comments can affect rendering, so comments
		// pass through verbatim.
		d.pushMarkup("<!--" + e.Text + "-->")
	case EventDecl:
		d.pushMarkup("<!" + e.Text + ">")
		// Catches XHTML documents incorrectly served as text/html.
		if strings.Contains(e.Text, "//DTD XHTML") {
			d.isXHTML = true
		}
	}
}

func (d *docState) handleStartTag(e Event) {
	if e.Name == "script" {
		d.isScript = true
		if d.opts.SuppressScripts {
			return
		}
	}
	if rawTextElements[e.Name] {
		d.isScrambling = false
	}

	d.pushMarkup(d.buildStartTag(e.Name, e.Attrs, false))
}

func (d *docState) handleSelfClosingTag(e Event) {
	if e.Name == "script" && d.opts.SuppressScripts {
		return
	}

	d.pushMarkup(d.buildStartTag(e.Name, e.Attrs, true))
}

func (d *docState) handleEndTag(e Event) {
	if e.Name == "script" {
		d.isScript = false
		if d.opts.SuppressScripts {
			return
		}
	}
	if rawTextElements[e.Name] {
		d.isScrambling = true
	}

	d.pushMarkup("</" + e.Name + ">")
}

func (d *docState) handleText(text string) {
	switch {
	case d.isScript && d.opts.SuppressScripts:
		d.pushMarkup(scriptRemovedComment)
	case d.isScrambling && !strings.ContainsRune(text, '<'):
		d.buf = append(d.buf, text)
	default:
		// Opaque data (script/style bodies) and degraded fragments
		// holding stray '<' pass through unscrambled. '<' is a literal
		// the scrambler would preserve anyway, but keeping it out of
		// the buffer keeps the placeholder marker unambiguous.
		d.pushMarkup(text)
	}
}

// buildStartTag renders a start tag with rewritten attributes.
func (d *docState) buildStartTag(name string, attrs []Attr, isEmpty bool) string {
	var tag strings.Builder
	tag.WriteByte('<')
	tag.WriteString(name)

	for _, attr := range attrs {
		tag.WriteByte(' ')
		tag.WriteString(attr.Name)
		switch {
		case attr.HasValue:
			tag.WriteString(`="`)
			tag.WriteString(d.rewriteAttrValue(name, attr.Name, attr.Value))
			tag.WriteByte('"')
		case d.isXHTML:
			// XHTML requires every attribute to carry a value.
			tag.WriteString(`="`)
			tag.WriteString(attr.Name)
			tag.WriteByte('"')
		}
	}

	// Scrambled forms are for looking at, not filling in.
	if name == "input" {
		tag.WriteString(" disabled")
		if d.isXHTML {
			tag.WriteString(`="disabled"`)
		}
	}

	if d.isXHTML && (isEmpty || voidElements[name]) {
		tag.WriteString(" />")
	} else {
		tag.WriteByte('>')
	}

	return tag.String()
}

// rewriteAttrValue applies the per-attribute rewrite rules and escapes
// the result for double-quoted output.
func (d *docState) rewriteAttrValue(tag, attr, value string) string {
	switch {
	case (tag == "a" && attr == "href") ||
		((tag == "frame" || tag == "iframe") && attr == "src"):
		// Route link and frame targets back through the scrambler.
		target := url.QueryEscape(d.resolve(value))
		if d.opts.Honeypot {
			value = "?honeypot=1&url=" + target
		} else {
			value = "?url=" + target
		}

	case attr == "action" || attr == "href" || attr == "src":
		// Anything we can't route gets its original, absolute form.
		value = d.resolve(value)

	case attr == "srcset":
		value = d.rewriteSrcset(value)

	case attr == "alt" || attr == "placeholder" || attr == "title" || attr == "value":
		value = scramble.Text(value, d.letterOptions()...)
	}

	return html.EscapeString(value)
}

// rewriteSrcset resolves each source URL of a srcset list, keeping the
// size descriptors.
func (d *docState) rewriteSrcset(value string) string {
	items := strings.Split(value, ",")
	resolved := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if src, size, ok := strings.Cut(item, " "); ok {
			resolved = append(resolved, d.resolve(src)+" "+size)
		} else {
			resolved = append(resolved, d.resolve(item))
		}
	}

	return strings.Join(resolved, ", ")
}

// resolve makes value absolute against the page URL. Unparseable values
// pass through unchanged; this is a rewriting tool, not a validator.
func (d *docState) resolve(value string) string {
	if d.base == nil {
		return value
	}
	u, err := d.base.Parse(value)
	if err != nil {
		return value
	}
	return u.String()
}

func (d *docState) letterOptions() []scramble.Option {
	if d.opts.MixedLetters {
		return []scramble.Option{scramble.WithMixedLetters()}
	}
	return nil
}

// assemble scrambles the accumulated text buffer and re-interleaves it
// with the markup queue at the placeholder positions.
func (d *docState) assemble(recoder *chunkRecoder) string {
	s := scramble.New(d.letterOptions()...)
	s.Feed(strings.Join(d.buf, ""))

	var out strings.Builder
	for _, chunk := range strings.Split(s.Scramble(), markupMark) {
		out.WriteString(recoder.recode(chunk))
		if len(d.markup) > 0 {
			out.WriteString(d.markup[0])
			d.markup = d.markup[1:]
		}
	}

	return out.String()
}
