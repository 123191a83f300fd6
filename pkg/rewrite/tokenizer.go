package rewrite

import (
	"html"
	"strings"
)

// tokenizer performs a single-pass, lenient tokenization of HTML content.
// It is a rewriting aid, not a validator: malformed input degrades to
// best-effort text events and never produces an error.
type tokenizer struct {
	content string
	lower   string // pre-lowered copy for case-insensitive scans
	pos     int
	events  []Event

	// rawTag is the open raw-text element (script or style) whose
	// content is consumed verbatim until the matching close tag.
	rawTag string
}

// Tokenize splits content into an ordered stream of markup events.
// Every byte of input is accounted for by exactly one event, in
// document order.
func Tokenize(content string) []Event {
	if content == "" {
		return nil
	}

	t := &tokenizer{
		content: content,
		lower:   strings.ToLower(content),
	}
	t.tokenize()

	return t.events
}

func (t *tokenizer) tokenize() {
	for t.pos < len(t.content) {
		if t.rawTag != "" {
			t.consumeRawText()
			continue
		}

		switch t.content[t.pos] {
		case '<':
			t.consumeMarkup()
		case '&':
			t.consumeReference()
		default:
			t.consumeText()
		}
	}
}

// consumeText consumes character data up to the next markup or
// reference delimiter.
func (t *tokenizer) consumeText() {
	start := t.pos
	for t.pos < len(t.content) && t.content[t.pos] != '<' && t.content[t.pos] != '&' {
		t.pos++
	}
	if t.pos > start {
		t.emitText(t.content[start:t.pos])
	}
}

// consumeRawText consumes script/style content verbatim until the
// matching close tag. The close tag itself is left for the main loop.
func (t *tokenizer) consumeRawText() {
	closer := "</" + t.rawTag
	idx := strings.Index(t.lower[t.pos:], closer)
	if idx < 0 {
		// Unterminated raw-text element: the rest of the document is
		// its content.
		t.emitText(t.content[t.pos:])
		t.pos = len(t.content)
		t.rawTag = ""
		return
	}

	if idx > 0 {
		t.emitText(t.content[t.pos : t.pos+idx])
	}
	t.pos += idx
	t.rawTag = ""
}

// consumeMarkup dispatches on the construct starting at '<'. A '<' that
// does not begin a recognizable construct is emitted as a single-rune
// text event.
func (t *tokenizer) consumeMarkup() {
	rest := t.content[t.pos:]

	switch {
	case strings.HasPrefix(rest, "<!--"):
		t.consumeComment()
	case strings.HasPrefix(rest, "<!"):
		t.consumeDecl()
	case strings.HasPrefix(rest, "</"):
		t.consumeEndTag()
	case len(rest) > 1 && isTagNameStart(rest[1]):
		t.consumeStartTag()
	default:
		// Stray '<': degrade to text.
		t.emitText("<")
		t.pos++
	}
}

func (t *tokenizer) consumeComment() {
	start := t.pos + len("<!--")
	end := strings.Index(t.content[start:], "-->")
	if end < 0 {
		// Unterminated comment swallows the rest of the input.
		t.events = append(t.events, Event{Kind: EventComment, Text: t.content[start:]})
		t.pos = len(t.content)
		return
	}

	t.events = append(t.events, Event{Kind: EventComment, Text: t.content[start : start+end]})
	t.pos = start + end + len("-->")
}

func (t *tokenizer) consumeDecl() {
	start := t.pos + len("<!")
	end := strings.IndexByte(t.content[start:], '>')
	if end < 0 {
		t.events = append(t.events, Event{Kind: EventDecl, Text: t.content[start:]})
		t.pos = len(t.content)
		return
	}

	t.events = append(t.events, Event{Kind: EventDecl, Text: t.content[start : start+end]})
	t.pos = start + end + 1
}

func (t *tokenizer) consumeEndTag() {
	start := t.pos
	t.pos += len("</")

	name := t.scanTagName()
	if name == "" {
		// "</>" or similar: not a tag, degrade to text.
		t.emitText("<")
		t.pos = start + 1
		return
	}

	// Skip to the closing '>', tolerating junk in between.
	end := strings.IndexByte(t.content[t.pos:], '>')
	if end < 0 {
		t.pos = len(t.content)
	} else {
		t.pos += end + 1
	}

	t.events = append(t.events, Event{Kind: EventEndTag, Name: name})
}

func (t *tokenizer) consumeStartTag() {
	start := t.pos
	t.pos++ // consume '<'

	name := t.scanTagName()

	var attrs []Attr
	selfClosing := false

	for {
		t.skipWhitespace()

		if t.pos >= len(t.content) {
			// Unterminated tag: degrade the whole fragment to text.
			t.emitText(t.content[start:])
			return
		}

		ch := t.content[t.pos]
		if ch == '>' {
			t.pos++
			break
		}
		if ch == '/' {
			if t.pos+1 < len(t.content) && t.content[t.pos+1] == '>' {
				selfClosing = true
				t.pos += 2
				break
			}
			// Stray slash inside the tag.
			t.pos++
			continue
		}

		attr, ok := t.scanAttr()
		if !ok {
			// No progress possible; skip one byte to stay lenient.
			t.pos++
			continue
		}
		attrs = append(attrs, attr)
	}

	kind := EventStartTag
	if selfClosing {
		kind = EventSelfClosingTag
	}
	t.events = append(t.events, Event{Kind: kind, Name: name, Attrs: attrs})

	// script and style contain raw text, not markup.
	if !selfClosing && (name == "script" || name == "style") {
		t.rawTag = name
	}
}

// scanTagName consumes a tag name at the current position, lower-cased.
// Returns "" if the position does not start a name.
func (t *tokenizer) scanTagName() string {
	start := t.pos
	if t.pos >= len(t.content) || !isTagNameStart(t.content[t.pos]) {
		return ""
	}
	t.pos++
	for t.pos < len(t.content) && isTagNameByte(t.content[t.pos]) {
		t.pos++
	}
	return t.lower[start:t.pos]
}

// scanAttr consumes one attribute, with or without a value. Quoted
// values may contain anything except their quote; a missing close quote
// consumes through the end of the tag as degraded best effort.
func (t *tokenizer) scanAttr() (Attr, bool) {
	start := t.pos
	for t.pos < len(t.content) && !isAttrNameEnd(t.content[t.pos]) {
		t.pos++
	}
	if t.pos == start {
		return Attr{}, false
	}

	attr := Attr{Name: t.lower[start:t.pos]}

	t.skipWhitespace()
	if t.pos >= len(t.content) || t.content[t.pos] != '=' {
		return attr, true
	}
	t.pos++ // consume '='
	t.skipWhitespace()

	attr.HasValue = true
	attr.Value = html.UnescapeString(t.scanAttrValue())

	return attr, true
}

func (t *tokenizer) scanAttrValue() string {
	if t.pos >= len(t.content) {
		return ""
	}

	quote := t.content[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		start := t.pos
		end := strings.IndexByte(t.content[start:], quote)
		if end < 0 {
			// Unterminated quote: take what remains on this tag.
			value := t.content[start:]
			if gt := strings.IndexByte(value, '>'); gt >= 0 {
				value = value[:gt]
				t.pos = start + gt
			} else {
				t.pos = len(t.content)
			}
			return value
		}
		t.pos = start + end + 1
		return t.content[start : start+end]
	}

	// Unquoted value: runs to whitespace or tag end.
	start := t.pos
	for t.pos < len(t.content) && !isUnquotedValueEnd(t.content[t.pos]) {
		t.pos++
	}
	return t.content[start:t.pos]
}

// consumeReference parses a named or numeric character reference.
// An '&' that starts neither form degrades to a text event.
func (t *tokenizer) consumeReference() {
	rest := t.content[t.pos+1:]

	if strings.HasPrefix(rest, "#") {
		if name, size := scanCharRefName(rest[1:]); name != "" {
			t.events = append(t.events, Event{Kind: EventCharRef, Name: name})
			t.pos += 2 + size
			return
		}
	} else if name, size := scanEntityName(rest); name != "" {
		t.events = append(t.events, Event{Kind: EventEntityRef, Name: name})
		t.pos += 1 + size
		return
	}

	t.emitText("&")
	t.pos++
}

// scanCharRefName scans the digits of a numeric reference, hex or
// decimal, returning the name (e.g. "39", "x27") and bytes consumed
// including any trailing semicolon.
func scanCharRefName(s string) (string, int) {
	i := 0
	hex := false
	if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
		hex = true
		i++
	}

	digits := 0
	for i < len(s) {
		ch := s[i]
		if isDigit(ch) || (hex && isHexLetter(ch)) {
			i++
			digits++
			continue
		}
		break
	}
	if digits == 0 {
		return "", 0
	}

	name := s[:i]
	if i < len(s) && s[i] == ';' {
		i++
	}
	return name, i
}

// scanEntityName scans a named reference, returning the name and bytes
// consumed including any trailing semicolon.
func scanEntityName(s string) (string, int) {
	i := 0
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	if i == 0 || !isLetter(s[0]) {
		return "", 0
	}

	name := s[:i]
	if i < len(s) && s[i] == ';' {
		i++
	}
	return name, i
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.content) && isSpace(t.content[t.pos]) {
		t.pos++
	}
}

func (t *tokenizer) emitText(text string) {
	t.events = append(t.events, Event{Kind: EventText, Text: text})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexLetter(b byte) bool {
	return (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlnum(b byte) bool {
	return isLetter(b) || isDigit(b)
}

func isTagNameStart(b byte) bool {
	return isLetter(b)
}

func isTagNameByte(b byte) bool {
	return isAlnum(b) || b == '-' || b == ':' || b == '.'
}

func isAttrNameEnd(b byte) bool {
	return isSpace(b) || b == '=' || b == '>' || b == '/'
}

func isUnquotedValueEnd(b byte) bool {
	return isSpace(b) || b == '>'
}
