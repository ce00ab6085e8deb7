package editor

import "github.com/tarimkoop/koop/internal/koop/editor/edtypes"

const DefaultHistoryDepth = 100

type historyEntry struct {
	doc *edtypes.Document
	sel *Selection
}

// History - ограниченные стеки отмены и повтора. Документы в стеках не изменяются,
// команды всегда строят новое дерево.
type History struct {
	depth int
	undo  []historyEntry
	redo  []historyEntry
}

func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push сохраняет состояние перед изменением и очищает стек повтора.
func (h *History) Push(doc *edtypes.Document, sel *Selection) {
	h.undo = append(h.undo, historyEntry{doc, copySelection(sel)})
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
	h.redo = nil
}

func (h *History) Undo(doc *edtypes.Document, sel *Selection) (historyEntry, bool) {
	if len(h.undo) == 0 {
		return historyEntry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, historyEntry{doc, copySelection(sel)})
	return e, true
}

func (h *History) Redo(doc *edtypes.Document, sel *Selection) (historyEntry, bool) {
	if len(h.redo) == 0 {
		return historyEntry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, historyEntry{doc, copySelection(sel)})
	return e, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func copySelection(sel *Selection) *Selection {
	if sel == nil {
		return nil
	}
	s := *sel
	return &s
}
