package markdown

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma style whose classes HighlightCSS emits.
// Classes (not inline styles) keep the palette overridable by theme CSS.
const highlightStyle = "github"

// Highlight renders a code block with chroma using CSS classes. Unknown
// languages fall back to the plaintext lexer. anchorLinenums additionally
// emits linkable line numbers.
func Highlight(source, lang string, anchorLinenums bool) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	opts := []chromahtml.Option{
		chromahtml.WithClasses(true),
	}
	if anchorLinenums {
		opts = append(opts,
			chromahtml.WithLineNumbers(true),
			chromahtml.WithLinkableLineNumbers(true, "L"),
		)
	}
	formatter := chromahtml.New(opts...)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return "", err
	}
	return b.String(), nil
}

// HighlightCSS emits the stylesheet for the chroma classes used by
// Highlight. The site build writes it once as assets/chroma.css.
func HighlightCSS() (string, error) {
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var b strings.Builder
	if err := formatter.WriteCSS(&b, style); err != nil {
		return "", err
	}
	return b.String(), nil
}
