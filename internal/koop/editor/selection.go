package editor

// Position - точка в документе. Line - номер текстовой строки в порядке документа
// (параграф, заголовок, цитата или элемент списка), Offset - смещение в рунах.
type Position struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

func (p Position) before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Offset < o.Offset
}

// Selection - текущий курсор или диапазон.
type Selection struct {
	Anchor Position `json:"anchor"`
	Focus  Position `json:"focus"`
}

// Caret создает свернутое выделение.
func Caret(line, offset int) *Selection {
	p := Position{Line: line, Offset: offset}
	return &Selection{Anchor: p, Focus: p}
}

// Range создает выделение от (fromLine, fromOffset) до (toLine, toOffset).
func Range(fromLine, fromOffset, toLine, toOffset int) *Selection {
	return &Selection{
		Anchor: Position{Line: fromLine, Offset: fromOffset},
		Focus:  Position{Line: toLine, Offset: toOffset},
	}
}

func (s *Selection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

// Bounds возвращает начало и конец выделения в порядке документа.
func (s *Selection) Bounds() (Position, Position) {
	if s.Focus.before(s.Anchor) {
		return s.Focus, s.Anchor
	}
	return s.Anchor, s.Focus
}

// clamp ограничивает выделение существующими строками. nil если строк нет.
func (s *Selection) clamp(lines []line) *Selection {
	if s == nil || len(lines) == 0 {
		return nil
	}
	return &Selection{
		Anchor: clampPosition(s.Anchor, lines),
		Focus:  clampPosition(s.Focus, lines),
	}
}

func clampPosition(p Position, lines []line) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(lines) {
		p.Line = len(lines) - 1
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := lines[p.Line].length(); p.Offset > n {
		p.Offset = n
	}
	return p
}
