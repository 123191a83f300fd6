package rewrite

// EventKind classifies a markup event emitted by the tokenizer.
type EventKind uint8

const (
	// EventText is a run of character data. The text is raw source
	// content: character references are separate events, never decoded
	// into text runs.
	EventText EventKind = iota

	// EventStartTag is an opening tag with its attributes.
	EventStartTag

	// EventEndTag is a closing tag.
	EventEndTag

	// EventSelfClosingTag is an XHTML-style empty tag like <br />.
	EventSelfClosingTag

	// EventEntityRef is a named character reference like &amp;.
	// Name holds "amp".
	EventEntityRef

	// EventCharRef is a numeric character reference like &#39; or
	// &#x27;. Name holds "39" or "x27" without the leading '#'.
	EventCharRef

	// EventComment is a <!-- --> comment. Text holds the body.
	EventComment

	// EventDecl is a <! > declaration such as a doctype.
	// Text holds the payload without the angle brackets.
	EventDecl
)

// String returns a human-readable kind name.
func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventStartTag:
		return "start-tag"
	case EventEndTag:
		return "end-tag"
	case EventSelfClosingTag:
		return "self-closing-tag"
	case EventEntityRef:
		return "entity-ref"
	case EventCharRef:
		return "char-ref"
	case EventComment:
		return "comment"
	case EventDecl:
		return "decl"
	default:
		return "unknown"
	}
}

// Attr is a single attribute of a start tag, in source order.
// HasValue distinguishes attr="" from a bare valueless attribute
// like iframe's "seamless".
type Attr struct {
	Name     string
	Value    string
	HasValue bool
}

// Event is one structural unit of the document in source order.
type Event struct {
	Kind EventKind

	// Name is the lower-cased tag name for tag events, or the
	// reference name for entity and character reference events.
	Name string

	// Attrs holds start tag attributes in source order.
	Attrs []Attr

	// Text holds raw content for text, comment, and declaration events.
	Text string
}
