package lexical_test

import (
	"fmt"
	"strings"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
)

// ExampleParseJSON демонстрирует разбор снимка редактора.
func ExampleParseJSON() {
	snapshot := `{"root":{"type":"root","version":1,"format":"","indent":0,"direction":"ltr","children":[
		{"type":"paragraph","version":1,"format":"","indent":0,"direction":"ltr","children":[
			{"type":"text","version":1,"format":1,"mode":"normal","style":"","detail":0,"text":"Merhaba"},
			{"type":"text","version":1,"format":0,"mode":"normal","style":"","detail":0,"text":" dünya"}
		]}
	]}}`

	doc, err := lexical.ParseJSON(strings.NewReader(snapshot))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	p := doc.Blocks[0].(*edtypes.Paragraph)
	fmt.Printf("Документ содержит %d блок(ов), текст: %s\n", len(doc.Blocks), edtypes.InlineText(p.Children))

	// Output:
	// Документ содержит 1 блок(ов), текст: Merhaba dünya
}
