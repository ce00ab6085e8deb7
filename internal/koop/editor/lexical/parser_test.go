package lexical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

// Снимок в том виде, в каком его сохраняет браузерный редактор.
const browserSnapshot = `{
  "root": {
    "children": [
      {
        "children": [
          {"detail": 0, "format": 1, "mode": "normal", "style": "", "text": "Kooperatif", "type": "text", "version": 1},
          {"detail": 0, "format": 0, "mode": "normal", "style": "color: #dc2626;", "text": " duyurusu", "type": "text", "version": 1}
        ],
        "direction": "ltr", "format": "center", "indent": 0, "type": "paragraph", "version": 1, "textFormat": 1
      },
      {
        "children": [
          {"detail": 0, "format": 0, "mode": "normal", "style": "", "text": "Başlık", "type": "text", "version": 1}
        ],
        "direction": "ltr", "format": "", "indent": 0, "type": "heading", "version": 1, "tag": "h1"
      },
      {
        "children": [
          {
            "children": [
              {"detail": 0, "format": 0, "mode": "normal", "style": "", "text": "bir", "type": "text", "version": 1}
            ],
            "direction": "ltr", "format": "", "indent": 0, "type": "listitem", "version": 1, "value": 1
          },
          {
            "children": [
              {
                "children": [
                  {
                    "children": [
                      {"detail": 0, "format": 0, "mode": "normal", "style": "", "text": "iç", "type": "text", "version": 1}
                    ],
                    "direction": "ltr", "format": "", "indent": 0, "type": "listitem", "version": 1, "value": 1
                  }
                ],
                "direction": "ltr", "format": "", "indent": 0, "type": "list", "version": 1, "listType": "bullet", "start": 1, "tag": "ul"
              }
            ],
            "direction": "ltr", "format": "", "indent": 0, "type": "listitem", "version": 1, "value": 2
          }
        ],
        "direction": "ltr", "format": "", "indent": 0, "type": "list", "version": 1, "listType": "number", "start": 1, "tag": "ol"
      },
      {
        "children": [
          {"detail": 0, "format": 0, "mode": "normal", "style": "", "text": "satır", "type": "text", "version": 1},
          {"type": "linebreak", "version": 1},
          {
            "children": [
              {"detail": 0, "format": 0, "mode": "normal", "style": "", "text": "link", "type": "text", "version": 1}
            ],
            "direction": "ltr", "format": "", "indent": 0, "type": "link", "version": 1, "rel": null, "target": null, "title": null, "url": "https://koop.org.tr"
          }
        ],
        "direction": "ltr", "format": "", "indent": 0, "type": "quote", "version": 1
      },
      {
        "children": [
          {"detail": 0, "format": 16, "mode": "normal", "style": "", "text": "x := 1", "type": "text", "version": 1}
        ],
        "direction": "ltr", "format": "", "indent": 0, "type": "code", "version": 1, "language": "go"
      }
    ],
    "direction": "ltr", "format": "", "indent": 0, "type": "root", "version": 1
  }
}`

func TestParseBrowserSnapshot(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(browserSnapshot))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 5)

	p, ok := doc.Blocks[0].(*edtypes.Paragraph)
	require.True(t, ok)
	assert.Equal(t, edtypes.AlignCenter, p.Align)
	require.Len(t, p.Children, 2)
	assert.True(t, p.Children[0].(*edtypes.Text).Bold)
	assert.Equal(t, "#dc2626", p.Children[1].(*edtypes.Text).Color.Hex())

	h, ok := doc.Blocks[1].(*edtypes.Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)

	l, ok := doc.Blocks[2].(*edtypes.List)
	require.True(t, ok)
	assert.True(t, l.Ordered)
	require.Len(t, l.Items, 2)
	assert.Equal(t, "iç", edtypes.InlineText(l.Items[1].Children))

	q, ok := doc.Blocks[3].(*edtypes.Quote)
	require.True(t, ok)
	assert.Equal(t, "satır link", edtypes.InlineText(q.Children))
	link, ok := q.Children[1].(*edtypes.Link)
	require.True(t, ok)
	assert.Equal(t, "https://koop.org.tr", link.Href)
	assert.Empty(t, link.Target)

	code, ok := doc.Blocks[4].(*edtypes.Paragraph)
	require.True(t, ok)
	assert.Equal(t, "x := 1", edtypes.InlineText(code.Children))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "<p>hi</p>"},
		{"no root", `{"foo": 1}`},
		{"wrong root type", `{"root": {"type": "paragraph", "children": []}}`},
		{"bad format", `{"root": {"type": "root", "children": [{"type": "text", "format": true}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestSerializeShape(t *testing.T) {
	doc := &edtypes.Document{Blocks: []edtypes.Block{&edtypes.Paragraph{}}}
	s, err := SerializeString(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":{"children":[{"children":[],"direction":null,"format":"","indent":0,"type":"paragraph","version":1}],"direction":"ltr","format":"","indent":0,"type":"root","version":1}}`, s)
}
