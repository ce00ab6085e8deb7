package lexical

import (
	"log/slog"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

// parseBlock преобразует узел верхнего уровня. Неизвестные элементы
// превращаются в параграф со своим текстом.
func parseBlock(node LexicalNode) []edtypes.Block {
	switch node.Type {
	case "paragraph":
		return []edtypes.Block{&edtypes.Paragraph{
			Align:    edtypes.ParseAlign(node.Align),
			Children: parseInlines(node.Children),
		}}
	case "heading":
		return []edtypes.Block{&edtypes.Heading{
			Level:    headingLevel(node.Tag),
			Align:    edtypes.ParseAlign(node.Align),
			Children: parseInlines(node.Children),
		}}
	case "quote":
		return []edtypes.Block{&edtypes.Quote{
			Align:    edtypes.ParseAlign(node.Align),
			Children: parseInlines(node.Children),
		}}
	case "list":
		return []edtypes.Block{&edtypes.List{
			Ordered: isOrdered(node),
			Items:   parseListItems(node),
		}}
	case "text", "link", "autolink", "linebreak", "tab":
		return []edtypes.Block{&edtypes.Paragraph{Children: parseInlines([]LexicalNode{node})}}
	default:
		slog.Debug("Unknown snapshot block, fallback to paragraph", "type", node.Type)
		return []edtypes.Block{&edtypes.Paragraph{
			Align:    edtypes.ParseAlign(node.Align),
			Children: parseInlines(node.Children),
		}}
	}
}

func parseInlines(nodes []LexicalNode) []edtypes.Inline {
	var res []edtypes.Inline
	for _, node := range nodes {
		switch node.Type {
		case "text":
			res = append(res, parseText(node))
		case "linebreak":
			res = append(res, &edtypes.Text{Content: " "})
		case "tab":
			res = append(res, &edtypes.Text{Content: "\t"})
		case "link", "autolink":
			link := &edtypes.Link{
				Href:   node.URL,
				Target: node.Target,
				Rel:    node.Rel,
			}
			for _, child := range parseInlines(node.Children) {
				switch c := child.(type) {
				case *edtypes.Text:
					link.Children = append(link.Children, c)
				case *edtypes.Link:
					link.Children = append(link.Children, c.Children...)
				}
			}
			res = append(res, link)
		default:
			// вложенные элементы разворачиваются в свой текст
			res = append(res, parseInlines(node.Children)...)
		}
	}
	return res
}

func parseText(node LexicalNode) *edtypes.Text {
	text := &edtypes.Text{Content: node.Text}
	applyFormat(text, node.Format)
	applyStyle(text, node.Style)
	return text
}

// parseListItems разворачивает вложенные списки в элементы того же списка.
func parseListItems(list LexicalNode) []*edtypes.ListItem {
	var items []*edtypes.ListItem
	for _, child := range list.Children {
		if child.Type != "listitem" {
			items = append(items, &edtypes.ListItem{Children: parseInlines([]LexicalNode{child})})
			continue
		}

		var inline []LexicalNode
		var nested []*edtypes.ListItem
		for _, c := range child.Children {
			if c.Type == "list" {
				nested = append(nested, parseListItems(c)...)
				continue
			}
			inline = append(inline, c)
		}
		if len(inline) > 0 || len(nested) == 0 {
			items = append(items, &edtypes.ListItem{Children: parseInlines(inline)})
		}
		items = append(items, nested...)
	}
	return items
}

func isOrdered(node LexicalNode) bool {
	switch node.ListType {
	case "number":
		return true
	case "bullet", "check":
		return false
	}
	return node.Tag == "ol"
}

func headingLevel(tag string) int {
	switch tag {
	case "h1", "h2":
		return 2
	}
	return 3
}
