package rewrite

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// chunkRecoder converts scrambled text chunks for a target output
// encoding: runes the target cannot represent natively are replaced with
// XML character references, then the bytes are decoded back using the
// source encoding so downstream byte-level re-encoding stays consistent.
// Markup is never recoded, only scrambled text chunks.
//
// A nil chunkRecoder is a valid no-op.
type chunkRecoder struct {
	enc *encoding.Encoder
	dec *encoding.Decoder
}

// newChunkRecoder builds a recoder from IANA encoding labels. Returns
// nil (no-op) when either label is empty or the labels match.
func newChunkRecoder(source, target string) (*chunkRecoder, error) {
	if source == "" || target == "" || source == target {
		return nil, nil
	}

	srcEnc, err := htmlindex.Get(source)
	if err != nil {
		return nil, err
	}
	dstEnc, err := htmlindex.Get(target)
	if err != nil {
		return nil, err
	}

	return &chunkRecoder{
		enc: encoding.HTMLEscapeUnsupported(dstEnc.NewEncoder()),
		dec: srcEnc.NewDecoder(),
	}, nil
}

// recode runs one chunk through the encode/decode round trip. Failures
// leave the chunk untouched; dropping content is never acceptable here.
func (c *chunkRecoder) recode(chunk string) string {
	if c == nil || chunk == "" {
		return chunk
	}

	encoded, err := c.enc.String(chunk)
	if err != nil {
		return chunk
	}
	decoded, err := c.dec.String(encoded)
	if err != nil {
		return chunk
	}
	return decoded
}
