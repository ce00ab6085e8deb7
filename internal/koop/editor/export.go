package editor

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
	policy "github.com/tarimkoop/koop/internal/koop/redactor-policy"
)

var ErrExport = errors.New("editor export failed")

// Theme - классы, которые редактор выставляет элементам. После очистки они не сохраняются.
type Theme struct {
	Paragraph string
	H2        string
	H3        string
	Quote     string
	UL        string
	OL        string
	ListItem  string
	Link      string
	Bold      string
	Italic    string
	Underline string
}

var DefaultTheme = Theme{
	Paragraph: "mb-2",
	H2:        "text-2xl font-bold mb-2",
	H3:        "text-xl font-semibold mb-2",
	Quote:     "border-l-4 border-gray-300 pl-4 italic text-gray-600 mb-2",
	UL:        "list-disc list-inside mb-2",
	OL:        "list-decimal list-inside mb-2",
	ListItem:  "mb-1",
	Link:      "text-blue-600 hover:underline",
	Bold:      "font-bold",
	Italic:    "italic",
	Underline: "underline",
}

// RenderHTML строит разметку документа в том виде, в каком ее отдает редактор:
// с классами темы, направлением текста и inline стилями.
func RenderHTML(doc *edtypes.Document, theme Theme) (string, error) {
	var sb strings.Builder
	for _, b := range doc.Blocks {
		switch b := b.(type) {
		case *edtypes.Paragraph:
			renderBlock(&sb, "p", theme.Paragraph, b.Align, b.Children, theme)
		case *edtypes.Heading:
			class := theme.H2
			if b.Level == 3 {
				class = theme.H3
			}
			renderBlock(&sb, fmt.Sprintf("h%d", b.Level), class, b.Align, b.Children, theme)
		case *edtypes.Quote:
			renderBlock(&sb, "blockquote", theme.Quote, b.Align, b.Children, theme)
		case *edtypes.List:
			tag, class := "ul", theme.UL
			if b.Ordered {
				tag, class = "ol", theme.OL
			}
			fmt.Fprintf(&sb, `<%s class="%s">`, tag, class)
			for i, item := range b.Items {
				fmt.Fprintf(&sb, `<li value="%d" class="%s"%s>`, i+1, theme.ListItem, dirAttr(item.Children))
				renderInlines(&sb, item.Children, theme)
				sb.WriteString("</li>")
			}
			fmt.Fprintf(&sb, "</%s>", tag)
		default:
			return "", fmt.Errorf("%w: unsupported block %T", ErrExport, b)
		}
	}
	return sb.String(), nil
}

func renderBlock(sb *strings.Builder, tag, class string, align edtypes.Align, children []edtypes.Inline, theme Theme) {
	fmt.Fprintf(sb, `<%s class="%s"%s`, tag, class, dirAttr(children))
	if align != edtypes.AlignNone {
		fmt.Fprintf(sb, ` style="text-align: %s;"`, align)
	}
	sb.WriteString(">")
	if len(children) == 0 {
		sb.WriteString("<br>")
	} else {
		renderInlines(sb, children, theme)
	}
	fmt.Fprintf(sb, "</%s>", tag)
}

func dirAttr(children []edtypes.Inline) string {
	if len(children) == 0 {
		return ""
	}
	return ` dir="ltr"`
}

func renderInlines(sb *strings.Builder, children []edtypes.Inline, theme Theme) {
	for _, c := range children {
		switch c := c.(type) {
		case *edtypes.Text:
			renderText(sb, c, theme)
		case *edtypes.Link:
			sb.WriteString(`<a href="` + html.EscapeString(c.Href) + `" class="` + theme.Link + `"`)
			if c.Target != "" {
				sb.WriteString(` target="` + html.EscapeString(c.Target) + `"`)
			}
			if c.Rel != "" {
				sb.WriteString(` rel="` + html.EscapeString(c.Rel) + `"`)
			}
			sb.WriteString(">")
			for _, t := range c.Children {
				renderText(sb, t, theme)
			}
			sb.WriteString("</a>")
		}
	}
}

func renderText(sb *strings.Builder, t *edtypes.Text, theme Theme) {
	style := "white-space: pre-wrap;"
	if t.Color != nil {
		style += " color: " + t.Color.Hex() + ";"
	}
	if t.BgColor != nil {
		style += " background-color: " + t.BgColor.Hex() + ";"
	}

	var open, close []string
	if t.Bold {
		open = append(open, `<strong class="`+theme.Bold+`">`)
		close = append([]string{"</strong>"}, close...)
	}
	if t.Italic {
		open = append(open, `<em class="`+theme.Italic+`">`)
		close = append([]string{"</em>"}, close...)
	}
	if t.Underline {
		open = append(open, `<u class="`+theme.Underline+`">`)
		close = append([]string{"</u>"}, close...)
	}

	sb.WriteString(strings.Join(open, ""))
	sb.WriteString(`<span style="` + style + `">`)
	sb.WriteString(html.EscapeString(t.Content))
	sb.WriteString("</span>")
	sb.WriteString(strings.Join(close, ""))
}

// ExportHTML возвращает очищенную разметку документа.
func ExportHTML(doc *edtypes.Document) (string, error) {
	raw, err := RenderHTML(doc, DefaultTheme)
	if err != nil {
		return "", err
	}
	return policy.SanitizeEditorHTML(raw), nil
}

// Export строит очищенную разметку и снимок из одного и того же дерева.
// Паника при обходе дерева превращается в ошибку.
func Export(doc *edtypes.Document) (markup string, snapshot string, err error) {
	defer func() {
		if r := recover(); r != nil {
			markup, snapshot = "", ""
			err = fmt.Errorf("%w: %v", ErrExport, r)
		}
	}()

	if doc == nil {
		return "", "", fmt.Errorf("%w: nil document", ErrExport)
	}

	markup, err = ExportHTML(doc)
	if err != nil {
		return "", "", err
	}
	snapshot, err = lexical.SerializeString(doc)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrExport, err)
	}
	return markup, snapshot, nil
}
