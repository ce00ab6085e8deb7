package lexical

import (
	"encoding/json"
	"fmt"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

const nodeVersion = 1

// Serialize сериализует документ в снимок состояния редактора.
func Serialize(doc *edtypes.Document) ([]byte, error) {
	state := EditorState{
		Root: LexicalNode{
			Type:    "root",
			Version: nodeVersion,
		},
	}

	if doc != nil {
		for _, block := range doc.Blocks {
			node, err := serializeBlock(block)
			if err != nil {
				return nil, err
			}
			state.Root.Children = append(state.Root.Children, node)
		}
	}
	if len(state.Root.Children) > 0 {
		state.Root.Direction = "ltr"
	}

	return json.Marshal(state)
}

// SerializeString - удобная обертка над Serialize.
func SerializeString(doc *edtypes.Document) (string, error) {
	b, err := Serialize(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func serializeBlock(block edtypes.Block) (LexicalNode, error) {
	switch b := block.(type) {
	case *edtypes.Paragraph:
		return elementNode("paragraph", b.Align, serializeInlines(b.Children)), nil
	case *edtypes.Heading:
		node := elementNode("heading", b.Align, serializeInlines(b.Children))
		node.Tag = fmt.Sprintf("h%d", b.Level)
		return node, nil
	case *edtypes.Quote:
		return elementNode("quote", b.Align, serializeInlines(b.Children)), nil
	case *edtypes.List:
		return serializeList(b), nil
	}
	return LexicalNode{}, fmt.Errorf("serialize block: unsupported node %T", block)
}

func serializeList(l *edtypes.List) LexicalNode {
	node := LexicalNode{
		Type:     "list",
		Version:  nodeVersion,
		ListType: "bullet",
		Tag:      "ul",
		Start:    1,
	}
	if l.Ordered {
		node.ListType = "number"
		node.Tag = "ol"
	}
	for i, item := range l.Items {
		li := elementNode("listitem", edtypes.AlignNone, serializeInlines(item.Children))
		li.Value = i + 1
		node.Children = append(node.Children, li)
	}
	if len(node.Children) > 0 {
		node.Direction = "ltr"
	}
	return node
}

func serializeInlines(in []edtypes.Inline) []LexicalNode {
	var res []LexicalNode
	for _, c := range in {
		switch c := c.(type) {
		case *edtypes.Text:
			res = append(res, serializeText(c))
		case *edtypes.Link:
			link := LexicalNode{
				Type:    "link",
				Version: nodeVersion,
				URL:     c.Href,
				Target:  c.Target,
				Rel:     c.Rel,
			}
			for _, t := range c.Children {
				link.Children = append(link.Children, serializeText(t))
			}
			if len(link.Children) > 0 {
				link.Direction = "ltr"
			}
			res = append(res, link)
		}
	}
	return res
}

func serializeText(t *edtypes.Text) LexicalNode {
	return LexicalNode{
		Type:    "text",
		Version: nodeVersion,
		Text:    t.Content,
		Format:  textFormat(t),
		Style:   textStyle(t),
		Mode:    "normal",
	}
}

func elementNode(typ string, align edtypes.Align, children []LexicalNode) LexicalNode {
	node := LexicalNode{
		Type:     typ,
		Version:  nodeVersion,
		Align:    string(align),
		Children: children,
	}
	if len(children) > 0 {
		node.Direction = "ltr"
	}
	return node
}
