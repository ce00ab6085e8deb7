// Пакет реализует редактирование форматированного текста: загрузку документа из снимка или HTML,
// команды панели форматирования, экспорт очищенной разметки и отложенную публикацию изменений.
//
// Основные возможности:
//   - Импорт HTML с сохранением только поддерживаемых узлов и деградацией до простого текста.
//   - Загрузка и сохранение снимка документа без потерь (пакет lexical).
//   - Команды: жирный/курсив/подчеркнутый, тип блока, списки, выравнивание, цвета, отмена/повтор.
//   - Состояние панели форматирования как чистая функция документа и выделения.
//   - Сессия редактирования с задержкой экспорта и отменой при закрытии.
package editor

import (
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
	policy "github.com/tarimkoop/koop/internal/koop/redactor-policy"
)

var spacesRegexp = regexp.MustCompile(`[ \t\r\n\f]+`)

// Шаги импорта, подменяются в тестах.
var (
	importMarkup = parseMarkup
	stripTags    = policy.StripTagsPolicy.Sanitize
)

// LoadFromSnapshot восстанавливает документ из снимка.
func LoadFromSnapshot(snapshot string) (*edtypes.Document, error) {
	return lexical.ParseString(snapshot)
}

// LoadDocument выбирает источник содержимого: снимок важнее разметки.
// Ошибочный снимок приводит к загрузке из разметки.
func LoadDocument(markup, snapshot string) *edtypes.Document {
	if strings.TrimSpace(snapshot) != "" {
		doc, err := LoadFromSnapshot(snapshot)
		if err == nil {
			return doc
		}
		slog.Warn("Load editor snapshot, fallback to markup", "err", err)
	}
	if strings.TrimSpace(markup) != "" {
		return LoadFromMarkup(markup)
	}
	doc := &edtypes.Document{}
	doc.Normalize()
	return doc
}

// LoadFromMarkup строит документ из HTML. Неподдерживаемые элементы отбрасываются.
// Если блоков не осталось, а текст был, документ состоит из одного параграфа с этим текстом.
// Ошибки разбора не возвращаются: документ деградирует до простого текста.
func LoadFromMarkup(markup string) (doc *edtypes.Document) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Markup import panic, fallback to plain text", "err", r)
			doc = plainTextDocument(markup)
		}
	}()

	doc, err := importMarkup(markup)
	if err != nil {
		slog.Warn("Markup import failed, fallback to plain text", "err", err)
		return plainTextDocument(markup)
	}
	return doc
}

func parseMarkup(markup string) (*edtypes.Document, error) {
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}

	doc := &edtypes.Document{}
	var text strings.Builder
	for _, n := range nodes {
		doc.Blocks = append(doc.Blocks, parseBlocks(n)...)
		text.WriteString(textContent(n))
	}

	if len(doc.Blocks) == 0 {
		flat := strings.TrimSpace(text.String())
		if flat == "" {
			doc.Normalize()
			return doc, nil
		}
		doc.Blocks = []edtypes.Block{edtypes.NewParagraph(flat)}
	}

	doc.Normalize()
	return doc, nil
}

// plainTextDocument - последний уровень деградации: теги удаляются, текст становится параграфом.
func plainTextDocument(markup string) (doc *edtypes.Document) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Plain text fallback panic", "err", r)
			doc = &edtypes.Document{Blocks: []edtypes.Block{&edtypes.Paragraph{}}}
		}
	}()

	flat := strings.TrimSpace(html.UnescapeString(stripTags(markup)))
	return &edtypes.Document{Blocks: []edtypes.Block{edtypes.NewParagraph(flat)}}
}

// parseBlocks возвращает поддерживаемые блоки узла. Неизвестные контейнеры
// отбрасываются, но их дочерние блоки сохраняются. Текст вне блоков отбрасывается.
func parseBlocks(n *xhtml.Node) []edtypes.Block {
	if n.Type != xhtml.ElementNode {
		return nil
	}

	switch n.Data {
	case "p":
		return []edtypes.Block{&edtypes.Paragraph{Align: blockAlign(n), Children: parseInlines(n)}}
	case "h1", "h2":
		return []edtypes.Block{&edtypes.Heading{Level: 2, Align: blockAlign(n), Children: parseInlines(n)}}
	case "h3", "h4", "h5", "h6":
		return []edtypes.Block{&edtypes.Heading{Level: 3, Align: blockAlign(n), Children: parseInlines(n)}}
	case "blockquote":
		return []edtypes.Block{&edtypes.Quote{Align: blockAlign(n), Children: parseInlines(n)}}
	case "ul", "ol":
		list := &edtypes.List{Ordered: n.Data == "ol", Items: parseListItems(n)}
		if len(list.Items) == 0 {
			return nil
		}
		return []edtypes.Block{list}
	case "a":
		return []edtypes.Block{&edtypes.Paragraph{Children: finishInlines(markupInlines(n, inlineState{}))}}
	case "script", "style", "template", "noscript", "iframe", "object", "embed", "img":
		return nil
	}

	var blocks []edtypes.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		blocks = append(blocks, parseBlocks(c)...)
	}
	return blocks
}

func parseListItems(list *xhtml.Node) []*edtypes.ListItem {
	var items []*edtypes.ListItem
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != xhtml.ElementNode {
			continue
		}
		if li.Data == "ul" || li.Data == "ol" {
			items = append(items, parseListItems(li)...)
			continue
		}
		if li.Data != "li" {
			continue
		}

		item := &edtypes.ListItem{Children: parseInlines(li)}
		items = append(items, item)

		// вложенные списки разворачиваются в элементы этого же списка
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				items = append(items, parseListItems(c)...)
			}
		}
	}
	return items
}

// inlineState - формат, накопленный от обертывающих элементов.
type inlineState struct {
	text     edtypes.Text
	link     *edtypes.Link
	preserve bool
}

func parseInlines(block *xhtml.Node) []edtypes.Inline {
	var res []edtypes.Inline
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, markupInlines(c, inlineState{})...)
	}
	return finishInlines(res)
}

func finishInlines(in []edtypes.Inline) []edtypes.Inline {
	return trimEdges(edtypes.NormalizeInlines(in))
}

func markupInlines(n *xhtml.Node, st inlineState) []edtypes.Inline {
	switch n.Type {
	case xhtml.TextNode:
		content := n.Data
		if !st.preserve {
			content = spacesRegexp.ReplaceAllString(content, " ")
		}
		t := st.text.Clone()
		t.Content = content
		if st.link != nil {
			return []edtypes.Inline{&edtypes.Link{Href: st.link.Href, Target: st.link.Target, Rel: st.link.Rel, Children: []*edtypes.Text{t}}}
		}
		return []edtypes.Inline{t}
	case xhtml.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "ul", "ol", "script", "style", "template", "noscript", "iframe", "object", "embed", "img":
		return nil
	case "br":
		return markupInlines(&xhtml.Node{Type: xhtml.TextNode, Data: " "}, st)
	case "strong", "b":
		st.text.Bold = true
	case "em", "i":
		st.text.Italic = true
	case "u":
		st.text.Underline = true
	case "a":
		if st.link == nil {
			st.link = &edtypes.Link{
				Href:   getAttrValue("href", n.Attr),
				Target: getAttrValue("target", n.Attr),
				Rel:    getAttrValue("rel", n.Attr),
			}
		}
	}
	applyInlineStyle(&st, getAttrValue("style", n.Attr))

	var res []edtypes.Inline
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, markupInlines(c, st)...)
	}
	// блоки внутри строки разделяются пробелом
	if isBlockElement(n.Data) && len(res) > 0 {
		res = append(res, markupInlines(&xhtml.Node{Type: xhtml.TextNode, Data: " "}, st)...)
	}
	return res
}

func applyInlineStyle(st *inlineState, style string) {
	for _, kv := range parseStyles(style) {
		switch kv.Key {
		case "font-weight":
			w, err := strconv.Atoi(kv.Val)
			st.text.Bold = kv.Val == "bold" || kv.Val == "bolder" || err == nil && w >= 600
		case "font-style":
			st.text.Italic = kv.Val == "italic" || kv.Val == "oblique"
		case "text-decoration", "text-decoration-line":
			if strings.Contains(kv.Val, "underline") {
				st.text.Underline = true
			}
		case "color":
			if c, err := edtypes.ParseColor(kv.Val); err == nil {
				st.text.Color = &c
			}
		case "background-color":
			if c, err := edtypes.ParseColor(kv.Val); err == nil {
				st.text.BgColor = &c
			}
		case "white-space":
			st.preserve = strings.HasPrefix(kv.Val, "pre")
		}
	}
}

// trimEdges удаляет пробелы в начале и конце блока.
func trimEdges(in []edtypes.Inline) []edtypes.Inline {
	for len(in) > 0 {
		t := firstText(in[0])
		t.Content = strings.TrimLeft(t.Content, " ")
		if t.Content != "" {
			break
		}
		in = edtypes.NormalizeInlines(in)
	}
	for len(in) > 0 {
		t := lastText(in[len(in)-1])
		t.Content = strings.TrimRight(t.Content, " ")
		if t.Content != "" {
			break
		}
		in = edtypes.NormalizeInlines(in)
	}
	return in
}

func firstText(in edtypes.Inline) *edtypes.Text {
	switch in := in.(type) {
	case *edtypes.Text:
		return in
	case *edtypes.Link:
		return in.Children[0]
	}
	return nil
}

func lastText(in edtypes.Inline) *edtypes.Text {
	switch in := in.(type) {
	case *edtypes.Text:
		return in
	case *edtypes.Link:
		return in.Children[len(in.Children)-1]
	}
	return nil
}

func blockAlign(n *xhtml.Node) edtypes.Align {
	for _, kv := range parseStyles(getAttrValue("style", n.Attr)) {
		if kv.Key == "text-align" {
			return edtypes.ParseAlign(kv.Val)
		}
	}
	return edtypes.ParseAlign(getAttrValue("align", n.Attr))
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "li", "section", "article", "pre", "tr", "table":
		return true
	}
	return false
}

func textContent(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	if n.Type == xhtml.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func getAttrValue(key string, attrs []xhtml.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func parseStyles(style string) []xhtml.Attribute {
	var res []xhtml.Attribute
	for styleRaw := range strings.SplitSeq(style, ";") {
		key, val, ok := strings.Cut(styleRaw, ":")
		if !ok {
			continue
		}
		res = append(res, xhtml.Attribute{
			Key: strings.ToLower(strings.TrimSpace(key)),
			Val: strings.ToLower(strings.TrimSpace(val)),
		})
	}
	return res
}
