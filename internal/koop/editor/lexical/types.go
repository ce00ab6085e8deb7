// Пакет lexical реализует снимок документа редактора в формате сериализованного состояния Lexical.
// Преобразует JSON снимка в структуры пакета edtypes и обратно без потерь.
package lexical

import (
	"encoding/json"
	"strconv"
)

// Биты поля format текстового узла.
const (
	FormatBold          = 1
	FormatItalic        = 1 << 1
	FormatStrikethrough = 1 << 2
	FormatUnderline     = 1 << 3
	FormatCode          = 1 << 4
)

// EditorState - корень снимка.
type EditorState struct {
	Root LexicalNode `json:"root"`
}

// LexicalNode - универсальный узел снимка. В JSON поле format у элементов строка
// (выравнивание), а у текста число (битовая маска), поэтому кодирование ручное.
type LexicalNode struct {
	Type    string
	Version int

	// Элементы
	Children  []LexicalNode
	Direction string
	Align     string
	Indent    int
	Tag       string
	ListType  string
	Start     int
	Value     int
	URL       string
	Target    string
	Rel       string

	// Текст
	Text   string
	Format int
	Style  string
	Mode   string
	Detail int
}

type elementJSON struct {
	Children  []LexicalNode `json:"children"`
	Direction *string       `json:"direction"`
	Format    string        `json:"format"`
	Indent    int           `json:"indent"`
	Type      string        `json:"type"`
	Version   int           `json:"version"`
	Tag       string        `json:"tag,omitempty"`
	ListType  string        `json:"listType,omitempty"`
	Start     int           `json:"start,omitempty"`
	Value     int           `json:"value,omitempty"`
	URL       string        `json:"url,omitempty"`
	Target    *string       `json:"target,omitempty"`
	Rel       *string       `json:"rel,omitempty"`
}

type textJSON struct {
	Detail  int    `json:"detail"`
	Format  int    `json:"format"`
	Mode    string `json:"mode"`
	Style   string `json:"style"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type rawNode struct {
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Children  []LexicalNode   `json:"children"`
	Direction *string         `json:"direction"`
	Format    json.RawMessage `json:"format"`
	Indent    int             `json:"indent"`
	Tag       string          `json:"tag"`
	ListType  string          `json:"listType"`
	Start     int             `json:"start"`
	Value     int             `json:"value"`
	URL       string          `json:"url"`
	Target    *string         `json:"target"`
	Rel       *string         `json:"rel"`
	Text      string          `json:"text"`
	Style     string          `json:"style"`
	Mode      string          `json:"mode"`
	Detail    int             `json:"detail"`
}

func (n LexicalNode) MarshalJSON() ([]byte, error) {
	if n.Type == "text" {
		mode := n.Mode
		if mode == "" {
			mode = "normal"
		}
		return json.Marshal(textJSON{
			Detail:  n.Detail,
			Format:  n.Format,
			Mode:    mode,
			Style:   n.Style,
			Text:    n.Text,
			Type:    n.Type,
			Version: n.Version,
		})
	}

	children := n.Children
	if children == nil {
		children = []LexicalNode{}
	}
	return json.Marshal(elementJSON{
		Children:  children,
		Direction: optString(n.Direction),
		Format:    n.Align,
		Indent:    n.Indent,
		Type:      n.Type,
		Version:   n.Version,
		Tag:       n.Tag,
		ListType:  n.ListType,
		Start:     n.Start,
		Value:     n.Value,
		URL:       n.URL,
		Target:    optString(n.Target),
		Rel:       optString(n.Rel),
	})
}

func (n *LexicalNode) UnmarshalJSON(data []byte) error {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = LexicalNode{
		Type:     raw.Type,
		Version:  raw.Version,
		Children: raw.Children,
		Indent:   raw.Indent,
		Tag:      raw.Tag,
		ListType: raw.ListType,
		Start:    raw.Start,
		Value:    raw.Value,
		URL:      raw.URL,
		Text:     raw.Text,
		Style:    raw.Style,
		Mode:     raw.Mode,
		Detail:   raw.Detail,
	}
	if raw.Direction != nil {
		n.Direction = *raw.Direction
	}
	if raw.Target != nil {
		n.Target = *raw.Target
	}
	if raw.Rel != nil {
		n.Rel = *raw.Rel
	}

	// format: строка у элементов, число у текста
	if len(raw.Format) > 0 && string(raw.Format) != "null" {
		if raw.Format[0] == '"' {
			var s string
			if err := json.Unmarshal(raw.Format, &s); err != nil {
				return err
			}
			n.Align = s
		} else {
			f, err := strconv.Atoi(string(raw.Format))
			if err != nil {
				return err
			}
			n.Format = f
		}
	}
	return nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
