package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

func TestToolbarDefaults(t *testing.T) {
	state := ComputeToolbarState(twoParagraphs(), nil)
	assert.Equal(t, ToolbarState{
		BlockType: BlockParagraph,
		Align:     edtypes.AlignNone,
		Color:     DefaultTextColor,
		BgColor:   DefaultBackgroundColor,
	}, state)

	empty := &edtypes.Document{}
	assert.Equal(t, BlockParagraph, ComputeToolbarState(empty, Caret(3, 3)).BlockType)
}

func TestToolbarBlockType(t *testing.T) {
	doc := &edtypes.Document{Blocks: []edtypes.Block{
		&edtypes.Heading{Level: 3, Align: edtypes.AlignCenter, Children: []edtypes.Inline{&edtypes.Text{Content: "h"}}},
		&edtypes.List{Ordered: true, Items: []*edtypes.ListItem{
			{Children: []edtypes.Inline{&edtypes.Text{Content: "i"}}},
		}},
		&edtypes.Quote{Align: edtypes.AlignRight, Children: []edtypes.Inline{&edtypes.Text{Content: "q"}}},
		edtypes.NewParagraph("p"),
	}}

	cases := []struct {
		line  int
		block BlockType
		align edtypes.Align
	}{
		{0, BlockH3, edtypes.AlignCenter},
		{1, BlockNumber, edtypes.AlignLeft},
		{2, BlockQuote, edtypes.AlignRight},
		{3, BlockParagraph, edtypes.AlignLeft},
	}
	for _, c := range cases {
		state := ComputeToolbarState(doc, Caret(c.line, 1))
		assert.Equal(t, c.block, state.BlockType)
		assert.Equal(t, c.align, state.Align)
	}
}

func TestToolbarMarks(t *testing.T) {
	red := edtypes.MustParseColor("#ff0000")
	doc := &edtypes.Document{Blocks: []edtypes.Block{
		&edtypes.Paragraph{Children: []edtypes.Inline{
			&edtypes.Text{Content: "ab", Bold: true, Color: red},
			&edtypes.Text{Content: "cd", Bold: true, Italic: true, Color: red},
			&edtypes.Text{Content: "ef"},
		}},
	}}

	state := ComputeToolbarState(doc, Range(0, 0, 0, 4))
	assert.True(t, state.Bold)
	assert.False(t, state.Italic)
	assert.Equal(t, "#ff0000", state.Color)
	assert.Equal(t, DefaultBackgroundColor, state.BgColor)

	state = ComputeToolbarState(doc, Range(0, 1, 0, 6))
	assert.True(t, state.Bold)
	assert.False(t, state.Italic)
	assert.Equal(t, "#ff0000", state.Color)

	state = ComputeToolbarState(doc, Range(0, 4, 0, 6))
	assert.False(t, state.Bold)
	assert.Equal(t, DefaultTextColor, state.Color)

	// обратное выделение читается с начала
	state = ComputeToolbarState(doc, Range(0, 6, 0, 2))
	assert.True(t, state.Bold)
	assert.True(t, state.Italic)

	state = ComputeToolbarState(doc, Caret(0, 3))
	assert.True(t, state.Italic)
}

func TestToolbarDoesNotMutate(t *testing.T) {
	doc := twoParagraphs()
	before := doc.Clone()
	sel := Range(1, 5, 0, 2)
	ComputeToolbarState(doc, sel)
	assert.Equal(t, before, doc)
	assert.Equal(t, Range(1, 5, 0, 2), sel)
}

func TestToolbarHistoryFlags(t *testing.T) {
	e := NewEditor(twoParagraphs(), 0)
	e.Select(Range(0, 0, 0, 5))
	assert.False(t, e.ToolbarState().CanUndo)

	_, err := e.ToggleFormat(FormatUnderline)
	assert.NoError(t, err)
	state := e.ToolbarState()
	assert.True(t, state.CanUndo)
	assert.False(t, state.CanRedo)
	assert.True(t, state.Underline)
}
