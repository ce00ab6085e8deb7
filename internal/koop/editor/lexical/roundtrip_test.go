package lexical

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

func TestRoundTrip(t *testing.T) {
	red := edtypes.MustParseColor("#ff0000")
	transparent := edtypes.MustParseColor("#00000000")

	tests := []struct {
		name string
		doc  *edtypes.Document
	}{
		{
			name: "empty paragraph",
			doc:  &edtypes.Document{Blocks: []edtypes.Block{&edtypes.Paragraph{}}},
		},
		{
			name: "marks and styles",
			doc: &edtypes.Document{Blocks: []edtypes.Block{
				&edtypes.Paragraph{Align: edtypes.AlignCenter, Children: []edtypes.Inline{
					&edtypes.Text{Content: "plain "},
					&edtypes.Text{Content: "bold", Bold: true},
					&edtypes.Text{Content: " all", Bold: true, Italic: true, Underline: true},
					&edtypes.Text{Content: " red", Color: red, BgColor: transparent},
				}},
			}},
		},
		{
			name: "headings quote list link",
			doc: &edtypes.Document{Blocks: []edtypes.Block{
				&edtypes.Heading{Level: 2, Children: []edtypes.Inline{&edtypes.Text{Content: "Başlık"}}},
				&edtypes.Heading{Level: 3, Align: edtypes.AlignRight, Children: []edtypes.Inline{&edtypes.Text{Content: "Alt"}}},
				&edtypes.Quote{Align: edtypes.AlignJustify, Children: []edtypes.Inline{&edtypes.Text{Content: "söz", Italic: true}}},
				&edtypes.List{Ordered: true, Items: []*edtypes.ListItem{
					{Children: []edtypes.Inline{&edtypes.Text{Content: "bir"}}},
					{},
					{Children: []edtypes.Inline{
						&edtypes.Text{Content: "see "},
						&edtypes.Link{Href: "https://example.org", Target: "_blank", Rel: "noopener", Children: []*edtypes.Text{{Content: "site", Underline: true}}},
					}},
				}},
				&edtypes.List{Items: []*edtypes.ListItem{{Children: []edtypes.Inline{&edtypes.Text{Content: "madde"}}}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Serialize(tt.doc)
			require.NoError(t, err)
			require.True(t, json.Valid(data))

			got, err := ParseString(string(data))
			require.NoError(t, err)
			assert.Equal(t, tt.doc, got)

			again, err := Serialize(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestDocumentJSONHooks(t *testing.T) {
	doc := &edtypes.Document{Blocks: []edtypes.Block{edtypes.NewParagraph("hi")}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back edtypes.Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc, &back)

	v, err := back.Value()
	require.NoError(t, err)

	var scanned edtypes.Document
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, doc, &scanned)
}
