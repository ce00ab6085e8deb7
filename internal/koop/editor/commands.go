package editor

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

var (
	ErrUnknownCommand   = errors.New("unknown editor command")
	ErrInvalidFormat    = errors.New("invalid text format")
	ErrInvalidBlockType = errors.New("invalid block type")
	ErrInvalidAlign     = errors.New("invalid alignment")
	ErrInvalidColor     = errors.New("invalid color")
	ErrSessionClosed    = errors.New("editor session closed")
)

type Format string

const (
	FormatBold      Format = "bold"
	FormatItalic    Format = "italic"
	FormatUnderline Format = "underline"
)

type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockH2        BlockType = "h2"
	BlockH3        BlockType = "h3"
	BlockQuote     BlockType = "quote"
	BlockBullet    BlockType = "ul"
	BlockNumber    BlockType = "ol"
)

// pendingStyle - формат, который получит следующий введенный текст при свернутом выделении.
type pendingStyle struct {
	pos  Position
	text edtypes.Text
}

// Editor применяет команды к документу. Документ никогда не изменяется на месте:
// каждая команда строит новое дерево, старое уходит в историю.
type Editor struct {
	doc     *edtypes.Document
	sel     *Selection
	pending *pendingStyle
	history *History
}

func NewEditor(doc *edtypes.Document, historyDepth int) *Editor {
	if doc == nil {
		doc = &edtypes.Document{}
	}
	doc = doc.Clone()
	doc.Normalize()
	return &Editor{doc: doc, history: NewHistory(historyDepth)}
}

// Document возвращает текущее дерево. Вызывающий не должен его изменять.
func (e *Editor) Document() *edtypes.Document {
	return e.doc
}

func (e *Editor) Selection() *Selection {
	return copySelection(e.sel)
}

// Reset заменяет документ целиком, история очищается. Выделение переносится в конец.
func (e *Editor) Reset(doc *edtypes.Document) {
	doc = doc.Clone()
	doc.Normalize()
	e.doc = doc
	e.pending = nil
	e.history.Clear()
	if e.sel != nil {
		lines, _ := flatten(doc)
		e.sel = e.sel.clamp(lines)
	}
}

// Select устанавливает выделение. nil снимает выделение.
func (e *Editor) Select(sel *Selection) {
	lines, _ := flatten(e.doc)
	e.sel = sel.clamp(lines)
	e.pending = nil
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// apply выполняет изменение над строками документа. Возвращает true, если документ изменился.
func (e *Editor) apply(f func(lines []line, nextGroup int, sel *Selection) ([]line, *Selection)) bool {
	lines, next := flatten(e.doc)
	sel := e.sel.clamp(lines)
	if sel == nil {
		return false
	}

	lines, sel = f(lines, next, sel)

	doc := build(lines)
	if reflect.DeepEqual(doc, e.doc) {
		e.sel = sel
		return false
	}

	e.history.Push(e.doc, e.sel)
	e.doc = doc
	newLines, _ := flatten(doc)
	e.sel = sel.clamp(newLines)
	return true
}

// eachSelected вызывает f для каждой выделенной строки с диапазоном смещений.
func eachSelected(lines []line, sel *Selection, f func(l *line, from, to int)) {
	start, end := sel.Bounds()
	for i := start.Line; i <= end.Line; i++ {
		from, to := 0, lines[i].length()
		if i == start.Line {
			from = start.Offset
		}
		if i == end.Line {
			to = end.Offset
		}
		f(&lines[i], from, to)
	}
}

func toggleMark(t *edtypes.Text, f Format) {
	switch f {
	case FormatBold:
		t.Bold = !t.Bold
	case FormatItalic:
		t.Italic = !t.Italic
	case FormatUnderline:
		t.Underline = !t.Underline
	}
}

// ToggleFormat переключает признак на каждом выделенном фрагменте.
// При свернутом выделении меняется формат следующего ввода.
func (e *Editor) ToggleFormat(f Format) (bool, error) {
	if f != FormatBold && f != FormatItalic && f != FormatUnderline {
		return false, ErrInvalidFormat
	}
	if e.sel == nil {
		return false, nil
	}
	if e.sel.IsCollapsed() {
		p := e.pendingAtCaret()
		toggleMark(&p.text, f)
		return false, nil
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		eachSelected(lines, sel, func(l *line, from, to int) {
			mapRange(l, from, to, func(t *edtypes.Text) { toggleMark(t, f) })
		})
		return lines, sel
	}), nil
}

// pendingAtCaret возвращает формат ввода в позиции курсора, создавая его при необходимости.
func (e *Editor) pendingAtCaret() *pendingStyle {
	if e.pending != nil && e.pending.pos == e.sel.Anchor {
		return e.pending
	}
	p := &pendingStyle{pos: e.sel.Anchor}
	lines, _ := flatten(e.doc)
	if t := textAt(&lines[e.sel.Anchor.Line], e.sel.Anchor.Offset); t != nil {
		p.text = *t.Clone()
		p.text.Content = ""
	}
	e.pending = p
	return p
}

// SetBlockType меняет тип выделенных блоков, сохраняя их содержимое.
// Элементы списка выходят из списка.
func (e *Editor) SetBlockType(bt BlockType) (bool, error) {
	var kind lineKind
	level := 0
	switch bt {
	case BlockParagraph:
		kind = lineParagraph
	case BlockH2:
		kind, level = lineHeading, 2
	case BlockH3:
		kind, level = lineHeading, 3
	case BlockQuote:
		kind = lineQuote
	default:
		return false, ErrInvalidBlockType
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		start, end := sel.Bounds()
		for i := start.Line; i <= end.Line; i++ {
			l := &lines[i]
			if l.kind == lineListItem {
				l.align = edtypes.AlignNone
			}
			l.kind, l.level, l.ordered, l.group = kind, level, false, 0
		}
		return lines, sel
	}), nil
}

// ToggleList оборачивает выделенные блоки в один список или, если все они
// уже в списке этого вида, возвращает их в параграфы.
func (e *Editor) ToggleList(ordered bool) (bool, error) {
	return e.apply(func(lines []line, nextGroup int, sel *Selection) ([]line, *Selection) {
		start, end := sel.Bounds()
		all := true
		for i := start.Line; i <= end.Line; i++ {
			if lines[i].kind != lineListItem || lines[i].ordered != ordered {
				all = false
				break
			}
		}
		for i := start.Line; i <= end.Line; i++ {
			l := &lines[i]
			if all {
				l.kind, l.group, l.ordered = lineParagraph, 0, false
				continue
			}
			l.kind, l.level, l.align, l.ordered, l.group = lineListItem, 0, edtypes.AlignNone, ordered, nextGroup
		}
		return lines, sel
	}), nil
}

// SetAlignment выравнивает выделенные параграфы, заголовки и цитаты.
func (e *Editor) SetAlignment(a edtypes.Align) (bool, error) {
	switch a {
	case edtypes.AlignLeft, edtypes.AlignCenter, edtypes.AlignRight, edtypes.AlignJustify, edtypes.AlignNone:
	default:
		return false, ErrInvalidAlign
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		start, end := sel.Bounds()
		for i := start.Line; i <= end.Line; i++ {
			if lines[i].kind != lineListItem {
				lines[i].align = a
			}
		}
		return lines, sel
	}), nil
}

// SetTextColor задает цвет текста выделения. Пустая строка сбрасывает цвет.
func (e *Editor) SetTextColor(raw string) (bool, error) {
	return e.setColor(raw, func(t *edtypes.Text, c *edtypes.Color) { t.Color = c })
}

// SetBackgroundColor задает цвет фона выделения. Пустая строка сбрасывает цвет.
func (e *Editor) SetBackgroundColor(raw string) (bool, error) {
	return e.setColor(raw, func(t *edtypes.Text, c *edtypes.Color) { t.BgColor = c })
}

func (e *Editor) setColor(raw string, set func(t *edtypes.Text, c *edtypes.Color)) (bool, error) {
	var c *edtypes.Color
	if strings.TrimSpace(raw) != "" {
		cc, err := edtypes.ParseColor(raw)
		if err != nil {
			return false, ErrInvalidColor
		}
		c = &cc
	}
	if e.sel == nil {
		return false, nil
	}
	if e.sel.IsCollapsed() {
		set(&e.pendingAtCaret().text, c)
		return false, nil
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		eachSelected(lines, sel, func(l *line, from, to int) {
			mapRange(l, from, to, func(t *edtypes.Text) {
				if c == nil {
					set(t, nil)
					return
				}
				cc := *c
				set(t, &cc)
			})
		})
		return lines, sel
	}), nil
}

// Undo возвращает предыдущее состояние документа.
func (e *Editor) Undo() (bool, error) {
	entry, ok := e.history.Undo(e.doc, e.sel)
	if !ok {
		return false, nil
	}
	e.doc, e.sel, e.pending = entry.doc, entry.sel, nil
	return true, nil
}

// Redo повторяет отмененное изменение.
func (e *Editor) Redo() (bool, error) {
	entry, ok := e.history.Redo(e.doc, e.sel)
	if !ok {
		return false, nil
	}
	e.doc, e.sel, e.pending = entry.doc, entry.sel, nil
	return true, nil
}

// deleteSelection удаляет выделенный диапазон и возвращает курсор в его начало.
func deleteSelection(lines []line, sel *Selection) ([]line, *Selection) {
	start, end := sel.Bounds()
	if start == end {
		return lines, sel
	}
	head, _, _ := splitRange(segmentsOf(lines[start.Line].inlines), start.Offset, start.Offset)
	_, _, tail := splitRange(segmentsOf(lines[end.Line].inlines), end.Offset, end.Offset)

	first := lines[start.Line]
	first.inlines = inlinesOf(append(head, tail...))

	res := append([]line{}, lines[:start.Line]...)
	res = append(res, first)
	res = append(res, lines[end.Line+1:]...)
	return res, Caret(start.Line, start.Offset)
}

// InsertText вставляет текст в позицию курсора, заменяя выделение.
// Переводы строк создают новые блоки.
func (e *Editor) InsertText(s string) (bool, error) {
	if e.sel == nil || s == "" {
		return false, nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var pending *edtypes.Text
	if e.sel.IsCollapsed() && e.pending != nil && e.pending.pos == e.sel.Anchor {
		t := e.pending.text
		pending = &t
	}

	changed := e.apply(func(lines []line, nextGroup int, sel *Selection) ([]line, *Selection) {
		lines, sel = deleteSelection(lines, sel)
		for i, part := range strings.Split(s, "\n") {
			if i > 0 {
				lines, sel = splitLine(lines, sel)
			}
			if part == "" {
				continue
			}
			lines, sel = insertInLine(lines, sel, part, pending)
		}
		return lines, sel
	})
	if changed {
		e.pending = nil
	}
	return changed, nil
}

func insertInLine(lines []line, sel *Selection, s string, style *edtypes.Text) ([]line, *Selection) {
	pos := sel.Anchor
	l := &lines[pos.Line]

	var t *edtypes.Text
	if style != nil {
		t = style.Clone()
	} else if cur := textAt(l, pos.Offset); cur != nil {
		t = cur.Clone()
	} else {
		t = &edtypes.Text{}
	}
	t.Content = s

	before, _, after := splitRange(segmentsOf(l.inlines), pos.Offset, pos.Offset)
	seg := segment{text: t, link: linkAt(l, pos.Offset)}
	all := append(append(before, seg), after...)
	l.inlines = inlinesOf(all)

	return lines, Caret(pos.Line, pos.Offset+utf8.RuneCountInString(s))
}

// InsertParagraph разбивает блок в позиции курсора.
func (e *Editor) InsertParagraph() (bool, error) {
	if e.sel == nil {
		return false, nil
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		lines, sel = deleteSelection(lines, sel)
		return splitLine(lines, sel)
	}), nil
}

func splitLine(lines []line, sel *Selection) ([]line, *Selection) {
	pos := sel.Anchor
	cur := lines[pos.Line]

	// Enter в пустом элементе списка выводит его из списка
	if cur.kind == lineListItem && cur.length() == 0 {
		lines[pos.Line].kind, lines[pos.Line].group, lines[pos.Line].ordered = lineParagraph, 0, false
		return lines, Caret(pos.Line, 0)
	}

	head, _, tail := splitRange(segmentsOf(cur.inlines), pos.Offset, pos.Offset)

	first := cur
	first.inlines = inlinesOf(head)
	second := cur
	second.inlines = inlinesOf(tail)
	if second.kind == lineHeading || second.kind == lineQuote {
		second.kind, second.level = lineParagraph, 0
	}

	res := append([]line{}, lines[:pos.Line]...)
	res = append(res, first, second)
	res = append(res, lines[pos.Line+1:]...)
	return res, Caret(pos.Line+1, 0)
}

// DeleteBackward удаляет символ перед курсором или выделение.
// В начале блока блок сливается с предыдущим.
func (e *Editor) DeleteBackward() (bool, error) {
	if e.sel == nil {
		return false, nil
	}
	return e.apply(func(lines []line, _ int, sel *Selection) ([]line, *Selection) {
		if !sel.IsCollapsed() {
			return deleteSelection(lines, sel)
		}
		pos := sel.Anchor
		if pos.Offset > 0 {
			return deleteSelection(lines, Range(pos.Line, pos.Offset-1, pos.Line, pos.Offset))
		}
		if lines[pos.Line].kind != lineParagraph {
			lines[pos.Line].kind, lines[pos.Line].level, lines[pos.Line].group, lines[pos.Line].ordered = lineParagraph, 0, 0, false
			return lines, sel
		}
		if pos.Line == 0 {
			return lines, sel
		}
		prevLen := lines[pos.Line-1].length()
		return deleteSelection(lines, Range(pos.Line-1, prevLen, pos.Line, 0))
	}), nil
}
