package edtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#ff0000", "#ff0000", false},
		{"#F00", "#ff0000", false},
		{"#ff000080", "#ff000080", false},
		{"#00000000", "#00000000", false},
		{"rgb(17, 24, 39)", "#111827", false},
		{"rgba(0, 0, 0, 0)", "#00000000", false},
		{`"#abcdef"`, "#abcdef", false},
		{"red", "", true},
		{"#12345", "", true},
		{"", "", true},
		{"rgb(300, 0, 0)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hex())
		})
	}
}

func TestColorEqual(t *testing.T) {
	var a, b *Color
	assert.True(t, a.Equal(b))
	assert.False(t, MustParseColor("#fff").Equal(nil))
	assert.True(t, MustParseColor("#fff").Equal(MustParseColor("#ffffff")))
}

func TestParseAlign(t *testing.T) {
	assert.Equal(t, AlignCenter, ParseAlign(" Center "))
	assert.Equal(t, AlignLeft, ParseAlign("start"))
	assert.Equal(t, AlignRight, ParseAlign("end"))
	assert.Equal(t, AlignNone, ParseAlign("middle"))
}

func TestNormalize(t *testing.T) {
	doc := &Document{Blocks: []Block{
		&Paragraph{Children: []Inline{
			&Text{Content: "Hel"},
			&Text{Content: "lo"},
			&Text{Content: ""},
			&Text{Content: " world", Bold: true},
			&Link{Href: "https://a", Children: []*Text{{Content: "a"}}},
			&Link{Href: "https://a", Children: []*Text{{Content: "b"}}},
			&Link{Href: "https://b", Children: []*Text{{Content: ""}}},
		}},
		&List{},
	}}

	doc.Normalize()

	require.Len(t, doc.Blocks, 1)
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Children, 3)
	assert.Equal(t, "Hello", p.Children[0].(*Text).Content)
	assert.Equal(t, " world", p.Children[1].(*Text).Content)
	assert.Equal(t, "ab", p.Children[2].(*Link).Children[0].Content)
}

func TestNormalizeEmpty(t *testing.T) {
	doc := &Document{}
	doc.Normalize()
	assert.Equal(t, []Block{&Paragraph{}}, doc.Blocks)
	assert.True(t, doc.IsEmpty())
}

func TestClone(t *testing.T) {
	doc := &Document{Blocks: []Block{
		&Heading{Level: 2, Align: AlignCenter, Children: []Inline{&Text{Content: "T", Color: MustParseColor("#f00")}}},
		&List{Ordered: true, Items: []*ListItem{{Children: []Inline{&Text{Content: "one"}}}}},
	}}

	c := doc.Clone()
	assert.Equal(t, doc, c)

	c.Blocks[0].(*Heading).Children[0].(*Text).Color.R = 0
	c.Blocks[1].(*List).Items[0].Children[0].(*Text).Content = "two"
	assert.Equal(t, uint8(0xff), doc.Blocks[0].(*Heading).Children[0].(*Text).Color.R)
	assert.Equal(t, "one", doc.Blocks[1].(*List).Items[0].Children[0].(*Text).Content)
}

func TestPlainText(t *testing.T) {
	doc := &Document{Blocks: []Block{
		NewParagraph("a"),
		&List{Items: []*ListItem{{Children: []Inline{&Text{Content: "b"}}}, {Children: []Inline{&Link{Children: []*Text{{Content: "c"}}}}}}},
	}}
	assert.Equal(t, "a\nb\nc", doc.PlainText())
}
