package editor

import (
	"unicode/utf8"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

type lineKind int

const (
	lineParagraph lineKind = iota
	lineHeading
	lineQuote
	lineListItem
)

// line - плоское представление текстового блока. Команды работают со списком строк,
// после чего дерево собирается заново. Соседние элементы списка с одинаковым group
// образуют один List.
type line struct {
	kind    lineKind
	level   int
	align   edtypes.Align
	ordered bool
	group   int
	inlines []edtypes.Inline
}

func (l *line) length() int {
	return utf8.RuneCountInString(edtypes.InlineText(l.inlines))
}

// flatten раскладывает документ в строки. Строки содержат копии узлов.
// Возвращает также следующий свободный номер группы списка.
func flatten(doc *edtypes.Document) ([]line, int) {
	var lines []line
	group := 0
	if doc == nil {
		return lines, group
	}
	for _, b := range doc.Blocks {
		switch b := b.(type) {
		case *edtypes.Paragraph:
			lines = append(lines, line{kind: lineParagraph, align: b.Align, inlines: edtypes.CloneInlines(b.Children)})
		case *edtypes.Heading:
			lines = append(lines, line{kind: lineHeading, level: b.Level, align: b.Align, inlines: edtypes.CloneInlines(b.Children)})
		case *edtypes.Quote:
			lines = append(lines, line{kind: lineQuote, align: b.Align, inlines: edtypes.CloneInlines(b.Children)})
		case *edtypes.List:
			group++
			for _, item := range b.Items {
				lines = append(lines, line{kind: lineListItem, ordered: b.Ordered, group: group, inlines: edtypes.CloneInlines(item.Children)})
			}
		}
	}
	return lines, group + 1
}

// build собирает нормализованный документ из строк.
func build(lines []line) *edtypes.Document {
	doc := &edtypes.Document{}
	var list *edtypes.List
	listGroup := -1

	for _, l := range lines {
		if l.kind != lineListItem {
			list = nil
			listGroup = -1
		}
		switch l.kind {
		case lineParagraph:
			doc.Blocks = append(doc.Blocks, &edtypes.Paragraph{Align: l.align, Children: l.inlines})
		case lineHeading:
			doc.Blocks = append(doc.Blocks, &edtypes.Heading{Level: l.level, Align: l.align, Children: l.inlines})
		case lineQuote:
			doc.Blocks = append(doc.Blocks, &edtypes.Quote{Align: l.align, Children: l.inlines})
		case lineListItem:
			if list == nil || listGroup != l.group || list.Ordered != l.ordered {
				list = &edtypes.List{Ordered: l.ordered}
				listGroup = l.group
				doc.Blocks = append(doc.Blocks, list)
			}
			list.Items = append(list.Items, &edtypes.ListItem{Children: l.inlines})
		}
	}

	doc.Normalize()
	return doc
}
