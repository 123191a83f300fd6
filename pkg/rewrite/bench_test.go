package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func benchmarkDocument() string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><title>Benchmark page</title></head><body>`)
	for range 200 {
		sb.WriteString(`<p>The quick brown fox jumps over the <a href="/lazy/dog">lazy dog</a>, ` +
			`while 42 pelicans watch from a <em>nearby</em> fence.</p>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func BenchmarkTokenize(b *testing.B) {
	doc := benchmarkDocument()

	b.ReportAllocs()
	for b.Loop() {
		Tokenize(doc)
	}
}

func BenchmarkRewrite(b *testing.B) {
	doc := benchmarkDocument()
	r, err := New(Options{BaseURL: "https://example.com/"})
	require.NoError(b, err)

	b.ReportAllocs()
	for b.Loop() {
		r.Rewrite(doc)
	}
}
