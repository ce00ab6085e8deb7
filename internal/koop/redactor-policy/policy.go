// Определяет политики безопасности для HTML контента сайта и очистку разметки, экспортированной из редактора.
//
// Основные возможности:
//   - UgcPolicy для входящей HTML разметки (bluemonday) с разрешенными стилями выравнивания и цвета.
//   - StripTagsPolicy для получения чистого текста (анонсы, заголовки).
//   - SanitizeEditorHTML: удаление презентационных атрибутов и служебных оберток из экспорта редактора,
//     затем EditorPolicy отбрасывает все элементы вне списка редактора.
package policy

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

// EditorPolicy - закрытый список элементов экспорта редактора, последний шаг SanitizeEditorHTML.
var EditorPolicy *bluemonday.Policy = bluemonday.NewPolicy()

var (
	colorRegexp = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\((\d+),\s*(\d+),\s*(\d+)(,\s*[\d.]+)?\)|inherit)$`)
	alignRegexp = regexp.MustCompile(`^(left|center|right|justify|start|end)$`)
	relRegexp   = regexp.MustCompile(`^[a-z ]+$`)

	editorAlignRegexp = regexp.MustCompile(`^text-align: (left|center|right|justify|start|end);$`)
)

func init() {
	UgcPolicy.AllowStyles("text-align").Matching(alignRegexp).OnElements("p", "h2", "h3", "blockquote")
	UgcPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).OnElements("span", "strong", "em", "u", "b", "i")
	UgcPolicy.AllowAttrs("style").OnElements("span")

	UgcPolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^(_blank|_self)$`)).OnElements("a")
	UgcPolicy.AllowAttrs("rel").Matching(relRegexp).OnElements("a")
	UgcPolicy.RequireNoFollowOnLinks(false)
	UgcPolicy.AllowURLSchemes("http", "https", "mailto", "tel")

	EditorPolicy.AllowElements("p", "h2", "h3", "blockquote", "ul", "ol", "li", "strong", "b", "em", "i", "u", "br")
	EditorPolicy.AllowAttrs("style").Matching(editorAlignRegexp).OnElements("p")
	EditorPolicy.AllowAttrs("href").OnElements("a")
	EditorPolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^(_blank|_self)$`)).OnElements("a")
	EditorPolicy.AllowAttrs("rel").Matching(relRegexp).OnElements("a")
}
