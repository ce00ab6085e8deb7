package policy

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Элементы, удаляемые вместе с содержимым.
var droppedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"iframe":   {},
	"object":   {},
	"embed":    {},
	"template": {},
	"noscript": {},
}

// Строчные обертки, которые не должны оставаться пустыми.
var inlineWrappers = map[string]struct{}{
	"strong": {},
	"b":      {},
	"em":     {},
	"i":      {},
	"u":      {},
	"span":   {},
}

// SanitizeEditorHTML очищает разметку, экспортированную из редактора.
//
// Для каждого элемента в порядке документа:
//   - атрибуты удаляются;
//   - p сохраняет только выравнивание в виде style="text-align: X;";
//   - span всегда разворачивается в родителя;
//   - пустые strong/b/em/i/u/span разворачиваются;
//   - a сохраняет безопасный href, target и rel.
//
// Результат проходит через EditorPolicy: неизвестные теги (form, img, svg, font...)
// удаляются, их текст остается. Ссылка без атрибутов разворачивается в текст.
//
// Функция чистая: повторный вызов на результате ничего не меняет.
func SanitizeEditorHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), container)
	if err != nil {
		return StripTagsPolicy.Sanitize(raw)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	sanitizeChildren(container)

	var sb strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return StripTagsPolicy.Sanitize(raw)
		}
	}
	return strings.TrimSpace(EditorPolicy.Sanitize(sb.String()))
}

func sanitizeChildren(parent *html.Node) {
	var next *html.Node
	for child := parent.FirstChild; child != nil; child = next {
		next = child.NextSibling

		switch child.Type {
		case html.CommentNode, html.DoctypeNode:
			parent.RemoveChild(child)
			continue
		case html.ElementNode:
		default:
			continue
		}

		if _, ok := droppedElements[child.Data]; ok {
			parent.RemoveChild(child)
			continue
		}

		cleanAttributes(child)
		sanitizeChildren(child)

		if child.Data == "span" {
			unwrap(child)
			continue
		}
		if _, ok := inlineWrappers[child.Data]; ok && strings.TrimSpace(textContent(child)) == "" {
			unwrap(child)
		}
	}
}

func cleanAttributes(n *html.Node) {
	switch n.Data {
	case "p":
		align := alignFromStyle(getAttrValue("style", n.Attr))
		n.Attr = nil
		if align != "" {
			n.Attr = []html.Attribute{{Key: "style", Val: "text-align: " + align + ";"}}
		}
	case "a":
		var attrs []html.Attribute
		if href := getAttrValue("href", n.Attr); href != "" && isSafeHref(href) {
			attrs = append(attrs, html.Attribute{Key: "href", Val: href})
		}
		if target := getAttrValue("target", n.Attr); target == "_blank" || target == "_self" {
			attrs = append(attrs, html.Attribute{Key: "target", Val: target})
		}
		if rel := strings.TrimSpace(getAttrValue("rel", n.Attr)); rel != "" && relRegexp.MatchString(rel) {
			attrs = append(attrs, html.Attribute{Key: "rel", Val: rel})
		}
		n.Attr = attrs
	default:
		n.Attr = nil
	}
}

// unwrap переносит детей узла на его место и удаляет сам узел.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func alignFromStyle(style string) string {
	for part := range strings.SplitSeq(style, ";") {
		key, value, ok := strings.Cut(part, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "text-align") {
			continue
		}
		value = strings.ToLower(strings.TrimSpace(value))
		if alignRegexp.MatchString(value) {
			return value
		}
	}
	return ""
}

func isSafeHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return true
	}
	return false
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
