package editor

import (
	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

const (
	DefaultTextColor       = "#111827"
	DefaultBackgroundColor = "#00000000"
)

// ToolbarState - состояние кнопок панели форматирования.
type ToolbarState struct {
	Bold      bool          `json:"bold"`
	Italic    bool          `json:"italic"`
	Underline bool          `json:"underline"`
	BlockType BlockType     `json:"block_type"`
	Align     edtypes.Align `json:"align"`
	Color     string        `json:"color"`
	BgColor   string        `json:"bg_color"`
	CanUndo   bool          `json:"can_undo"`
	CanRedo   bool          `json:"can_redo"`
}

func defaultToolbarState() ToolbarState {
	return ToolbarState{
		BlockType: BlockParagraph,
		Align:     edtypes.AlignNone,
		Color:     DefaultTextColor,
		BgColor:   DefaultBackgroundColor,
	}
}

// ComputeToolbarState вычисляет состояние панели по документу и выделению.
// Не изменяет аргументы. Без выделения или блока возвращает параграф без выравнивания.
func ComputeToolbarState(doc *edtypes.Document, sel *Selection) ToolbarState {
	state := defaultToolbarState()

	lines, _ := flatten(doc)
	sel = sel.clamp(lines)
	if sel == nil {
		return state
	}

	block := &lines[sel.Anchor.Line]

	// heading > list > quote > paragraph
	switch {
	case block.kind == lineHeading && block.level == 3:
		state.BlockType = BlockH3
	case block.kind == lineHeading:
		state.BlockType = BlockH2
	case block.kind == lineListItem && block.ordered:
		state.BlockType = BlockNumber
	case block.kind == lineListItem:
		state.BlockType = BlockBullet
	case block.kind == lineQuote:
		state.BlockType = BlockQuote
	default:
		state.BlockType = BlockParagraph
	}

	state.Align = block.align
	if state.Align == edtypes.AlignNone {
		state.Align = edtypes.AlignLeft
	}

	texts := selectedTexts(lines, sel)
	if len(texts) == 0 {
		return state
	}

	// формат берется с начала выделения
	t := texts[0]
	state.Bold, state.Italic, state.Underline = t.Bold, t.Italic, t.Underline
	if t.Color != nil {
		state.Color = t.Color.Hex()
	}
	if t.BgColor != nil {
		state.BgColor = t.BgColor.Hex()
	}
	return state
}

// selectedTexts возвращает выделенные текстовые узлы в порядке документа.
func selectedTexts(lines []line, sel *Selection) []*edtypes.Text {
	if sel.IsCollapsed() {
		if t := textAt(&lines[sel.Anchor.Line], sel.Anchor.Offset); t != nil {
			return []*edtypes.Text{t}
		}
		return nil
	}

	var res []*edtypes.Text
	eachSelected(lines, sel, func(l *line, from, to int) {
		if from >= to {
			return
		}
		_, inside, _ := splitRange(segmentsOf(l.inlines), from, to)
		for _, s := range inside {
			res = append(res, s.text)
		}
	})
	return res
}

// ToolbarState учитывает также формат следующего ввода и историю.
func (e *Editor) ToolbarState() ToolbarState {
	state := ComputeToolbarState(e.doc, e.sel)
	if e.sel != nil && e.pending != nil && e.pending.pos == e.sel.Anchor {
		t := e.pending.text
		state.Bold, state.Italic, state.Underline = t.Bold, t.Italic, t.Underline
		state.Color, state.BgColor = DefaultTextColor, DefaultBackgroundColor
		if t.Color != nil {
			state.Color = t.Color.Hex()
		}
		if t.BgColor != nil {
			state.BgColor = t.BgColor.Hex()
		}
	}
	state.CanUndo = e.history.CanUndo()
	state.CanRedo = e.history.CanRedo()
	return state
}
