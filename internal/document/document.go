// Package document loads source documents for ingestion.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bull/docchat/internal/errs"
)

// Document is a raw source text plus the identifier it was loaded from.
// Immutable once loaded.
type Document struct {
	Source  string // path the document was read from
	Content string // full UTF-8 text
}

// Load reads a UTF-8 text file into a Document. Markdown files
// (.md/.markdown) are flattened to plain text so chunk boundaries are not
// dominated by markup.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", errs.ErrConfiguration, path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", errs.ErrConfiguration, path)
	}

	content := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		content = flattenMarkdown(data)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s is empty", errs.ErrConfiguration, path)
	}

	return &Document{Source: path, Content: content}, nil
}

// flattenMarkdown extracts plain text from markdown by walking the goldmark
// AST. Block boundaries become blank lines; code block content is kept as-is.
func flattenMarkdown(source []byte) string {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		case *ast.CodeSpan:
			// children are Text nodes, handled above
		default:
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
