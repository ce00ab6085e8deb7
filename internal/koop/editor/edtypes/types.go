// Пакет описывает дерево документа редактора: закрытый набор блочных и строчных узлов.
//
// Основные возможности:
//   - Типы узлов: Paragraph, Heading, List, ListItem, Quote, Link, Text.
//   - Выравнивание блоков и цвета текста.
//   - Глубокое копирование и нормализация дерева.
//   - Хранение документа в JSONB колонке через зарегистрированный кодек снимка.
package edtypes

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// ParseAlign приводит CSS значение выравнивания к Align. Неизвестные значения дают AlignNone.
func ParseAlign(raw string) Align {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left", "start":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "justify":
		return AlignJustify
	}
	return AlignNone
}

// SnapshotParser - функция разбора снимка документа, устанавливается из пакета lexical
var SnapshotParser func(io.Reader) (*Document, error)

// SnapshotSerializer - функция сериализации документа в снимок, устанавливается из пакета lexical
var SnapshotSerializer func(*Document) ([]byte, error)

// Node - любой узел дерева. Набор реализаций закрыт.
type Node interface {
	node()
}

// Block - узел верхнего уровня документа.
type Block interface {
	Node
	block()
}

// Inline - содержимое текстовых блоков.
type Inline interface {
	Node
	inline()
}

type Document struct {
	Blocks []Block
}

type Paragraph struct {
	Align    Align
	Children []Inline
}

type Heading struct {
	Level    int // 2 или 3
	Align    Align
	Children []Inline
}

type List struct {
	Ordered bool
	Items   []*ListItem
}

type ListItem struct {
	Children []Inline
}

type Quote struct {
	Align    Align
	Children []Inline
}

type Link struct {
	Href     string
	Target   string
	Rel      string
	Children []*Text
}

type Text struct {
	Content string

	Bold      bool
	Italic    bool
	Underline bool

	Color   *Color
	BgColor *Color
}

func (*Paragraph) node() {}
func (*Heading) node()   {}
func (*List) node()      {}
func (*ListItem) node()  {}
func (*Quote) node()     {}
func (*Link) node()      {}
func (*Text) node()      {}

func (*Paragraph) block() {}
func (*Heading) block()   {}
func (*List) block()      {}
func (*Quote) block()     {}

func (*Link) inline() {}
func (*Text) inline() {}

// UnmarshalJSON разбирает снимок через зарегистрированный SnapshotParser.
func (d *Document) UnmarshalJSON(data []byte) error {
	if SnapshotParser == nil {
		return errors.New("SnapshotParser not registered, import lexical package to enable snapshot parsing")
	}

	doc, err := SnapshotParser(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.Blocks = doc.Blocks
	return nil
}

// MarshalJSON сериализует документ через зарегистрированный SnapshotSerializer.
func (d *Document) MarshalJSON() ([]byte, error) {
	if SnapshotSerializer == nil {
		return nil, errors.New("SnapshotSerializer not registered, import lexical package to enable snapshot serialization")
	}

	return SnapshotSerializer(d)
}

// Value реализует driver.Valuer для хранения снимка в JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует sql.Scanner.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(raw)
}

// GormDataType указывает GORM использовать JSONB.
func (Document) GormDataType() string {
	return "jsonb"
}

// IsEmpty сообщает, что в документе нет текста.
func (d *Document) IsEmpty() bool {
	return d == nil || strings.TrimSpace(d.PlainText()) == ""
}

// PlainText возвращает текст документа, блоки разделены переводом строки.
func (d *Document) PlainText() string {
	if d == nil {
		return ""
	}
	var lines []string
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *Paragraph:
			lines = append(lines, InlineText(b.Children))
		case *Heading:
			lines = append(lines, InlineText(b.Children))
		case *Quote:
			lines = append(lines, InlineText(b.Children))
		case *List:
			for _, item := range b.Items {
				lines = append(lines, InlineText(item.Children))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// InlineText склеивает текст строчных узлов.
func InlineText(children []Inline) string {
	var sb strings.Builder
	for _, c := range children {
		switch c := c.(type) {
		case *Text:
			sb.WriteString(c.Content)
		case *Link:
			for _, t := range c.Children {
				sb.WriteString(t.Content)
			}
		}
	}
	return sb.String()
}

// NewParagraph создает параграф из одного текстового узла.
func NewParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Children = []Inline{&Text{Content: text}}
	}
	return p
}

// SameFormat сравнивает форматирование двух текстовых узлов.
func (t *Text) SameFormat(o *Text) bool {
	return t.Bold == o.Bold &&
		t.Italic == o.Italic &&
		t.Underline == o.Underline &&
		t.Color.Equal(o.Color) &&
		t.BgColor.Equal(o.BgColor)
}
