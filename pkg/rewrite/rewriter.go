// Package rewrite turns an HTML document into a structurally identical
// copy whose human-readable text has been scrambled into gibberish.
//
// The pipeline is a pure function of its inputs: a lenient single-pass
// tokenizer separates markup from text, a rewrite policy rebuilds tags
// (proxying links, disabling inputs, suppressing scripts) into an ordered
// markup queue while text accumulates in a scramble buffer, and the
// reassembly step splices the scrambled text back between the markup at
// the exact positions it came from. Tag structure is never corrupted:
// malformed input degrades to unscrambled pass-through, never to an error.
package rewrite

import (
	"fmt"
	"net/url"
)

// Options configures a document rewrite.
type Options struct {
	// BaseURL is the resolved URL of the page being rewritten.
	// Relative link targets resolve against it.
	BaseURL string

	// Honeypot confines rewritten links back through the scrambling
	// endpoint with the honeypot flag set.
	Honeypot bool

	// SuppressScripts removes all script content from the output,
	// leaving a comment in its place.
	SuppressScripts bool

	// MixedLetters shuffles all letters in one pool instead of keeping
	// consonants and vowels separate.
	MixedLetters bool

	// SourceEncoding and TargetEncoding are IANA charset labels. When
	// both are set and differ, scrambled text chunks are re-encoded
	// with XML character references substituted for runes the target
	// cannot represent. Markup is unaffected.
	SourceEncoding string
	TargetEncoding string
}

// Rewriter rewrites HTML documents. Construction work (base URL parse,
// encoding lookup) happens once; each Rewrite call owns
// fresh per-document state, so a Rewriter is safe to reuse sequentially.
type Rewriter struct {
	base    *url.URL
	recoder *chunkRecoder
	opts    Options
}

// New creates a Rewriter.
func New(opts Options) (*Rewriter, error) {
	var base *url.URL
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		base = u
	}

	recoder, err := newChunkRecoder(opts.SourceEncoding, opts.TargetEncoding)
	if err != nil {
		return nil, fmt.Errorf("resolve encodings: %w", err)
	}

	return &Rewriter{base: base, recoder: recoder, opts: opts}, nil
}

// Rewrite scrambles a whole HTML document, returning the rewritten copy.
func (r *Rewriter) Rewrite(content string) string {
	state := newDocState(r.base, r.opts)
	for _, event := range Tokenize(content) {
		state.handle(event)
	}
	return state.assemble(r.recoder)
}

// Document is a convenience wrapper: one-shot rewrite of content with the
// given options.
func Document(content string, opts Options) (string, error) {
	r, err := New(opts)
	if err != nil {
		return "", err
	}
	return r.Rewrite(content), nil
}
