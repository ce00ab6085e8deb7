package lexical

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

var ErrInvalidSnapshot = errors.New("invalid editor snapshot")

func init() {
	edtypes.SnapshotParser = ParseJSON
	edtypes.SnapshotSerializer = Serialize
}

// ParseJSON разбирает снимок состояния редактора в edtypes.Document.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	var state EditorState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}

	if state.Root.Type != "root" {
		return nil, ErrInvalidSnapshot
	}

	doc := &edtypes.Document{}
	for _, node := range state.Root.Children {
		doc.Blocks = append(doc.Blocks, parseBlock(node)...)
	}
	doc.Normalize()

	return doc, nil
}

// ParseString - удобная обертка над ParseJSON.
func ParseString(snapshot string) (*edtypes.Document, error) {
	return ParseJSON(strings.NewReader(snapshot))
}
