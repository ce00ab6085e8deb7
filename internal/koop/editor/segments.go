package editor

import (
	"unicode/utf8"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

// segment - текстовый узел строки. link указывает на ссылку-владельца,
// у частей одной ссылки указатель общий.
type segment struct {
	text *edtypes.Text
	link *edtypes.Link
}

func (s segment) length() int {
	return utf8.RuneCountInString(s.text.Content)
}

func segmentsOf(inlines []edtypes.Inline) []segment {
	var segs []segment
	for _, in := range inlines {
		switch in := in.(type) {
		case *edtypes.Text:
			segs = append(segs, segment{text: in})
		case *edtypes.Link:
			for _, t := range in.Children {
				segs = append(segs, segment{text: t, link: in})
			}
		}
	}
	return segs
}

// splitAt гарантирует границу сегментов на смещении offset.
func splitAt(segs []segment, offset int) []segment {
	pos := 0
	for i, s := range segs {
		n := s.length()
		if offset > pos && offset < pos+n {
			runes := []rune(s.text.Content)
			left := s.text.Clone()
			left.Content = string(runes[:offset-pos])
			right := s.text.Clone()
			right.Content = string(runes[offset-pos:])

			res := make([]segment, 0, len(segs)+1)
			res = append(res, segs[:i]...)
			res = append(res, segment{text: left, link: s.link}, segment{text: right, link: s.link})
			return append(res, segs[i+1:]...)
		}
		pos += n
	}
	return segs
}

// splitRange делит сегменты на части до from, [from, to) и после to.
func splitRange(segs []segment, from, to int) (before, inside, after []segment) {
	segs = splitAt(splitAt(segs, from), to)
	pos := 0
	for _, s := range segs {
		n := s.length()
		switch {
		case pos+n <= from:
			before = append(before, s)
		case pos >= to:
			after = append(after, s)
		default:
			inside = append(inside, s)
		}
		pos += n
	}
	return before, inside, after
}

// inlinesOf собирает строчные узлы обратно, группируя подряд идущие части одной ссылки.
func inlinesOf(segs []segment) []edtypes.Inline {
	var res []edtypes.Inline
	var cur *edtypes.Link
	var owner *edtypes.Link
	for _, s := range segs {
		if s.link == nil {
			cur, owner = nil, nil
			res = append(res, s.text)
			continue
		}
		if owner != s.link {
			owner = s.link
			cur = &edtypes.Link{Href: s.link.Href, Target: s.link.Target, Rel: s.link.Rel}
			res = append(res, cur)
		}
		cur.Children = append(cur.Children, s.text)
	}
	return edtypes.NormalizeInlines(res)
}

// mapRange применяет f к каждому текстовому узлу строки в диапазоне [from, to).
func mapRange(l *line, from, to int, f func(t *edtypes.Text)) {
	if from >= to {
		return
	}
	before, inside, after := splitRange(segmentsOf(l.inlines), from, to)
	for _, s := range inside {
		f(s.text)
	}
	all := append(append(before, inside...), after...)
	l.inlines = inlinesOf(all)
}

// textAt возвращает текстовый узел, формат которого действует в позиции offset:
// символ перед курсором, а в начале строки - первый символ.
func textAt(l *line, offset int) *edtypes.Text {
	segs := segmentsOf(l.inlines)
	if len(segs) == 0 {
		return nil
	}
	pos := 0
	for _, s := range segs {
		n := s.length()
		if offset > pos && offset <= pos+n {
			return s.text
		}
		pos += n
	}
	return segs[0].text
}

// linkAt возвращает ссылку, внутри которой (не на границе) стоит курсор.
func linkAt(l *line, offset int) *edtypes.Link {
	pos := 0
	start := 0
	var cur *edtypes.Link
	for _, s := range segmentsOf(l.inlines) {
		if s.link != cur {
			if cur != nil && offset > start && offset < pos {
				return cur
			}
			cur, start = s.link, pos
		}
		pos += s.length()
	}
	if cur != nil && offset > start && offset < pos {
		return cur
	}
	return nil
}
