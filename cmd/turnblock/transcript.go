package main

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/flexigpt/turnblock-go/spec"
)

// fencedBlock is one fenced code block of a markdown transcript.
type fencedBlock struct {
	Lang spec.Lang
	Body string
	// Line is the 1-based line of the opening fence.
	Line int
}

// extractBlocks returns the fenced code blocks of src in document order.
// Indented code blocks and unlabelled fences are skipped.
func extractBlocks(src []byte) []fencedBlock {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []fencedBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(strings.TrimSpace(string(fb.Language(src))))
		if lang == "" {
			return ast.WalkSkipChildren, nil
		}

		var body strings.Builder
		lines := fb.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}
		out = append(out, fencedBlock{
			Lang: spec.Lang(lang),
			Body: body.String(),
			Line: lineOf(src, fb),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// lineOf reports the line of the fence opening fb, where its info string
// sits.
func lineOf(src []byte, fb *ast.FencedCodeBlock) int {
	if fb.Info == nil {
		return 0
	}
	return strings.Count(string(src[:fb.Info.Segment.Start]), "\n") + 1
}
