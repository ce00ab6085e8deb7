package business

import (
	"strings"
	"unicode/utf8"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/editor"
	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/types"
)

const ExcerptLength = 200

// RichContent - нормализованное поле редактора: очищенная разметка, дерево и текст.
type RichContent struct {
	Html  types.RedactorHTML
	State *edtypes.Document
	Text  string
}

func (rc RichContent) IsEmpty() bool {
	return rc.State == nil || rc.State.IsEmpty()
}

// Stored возвращает значения для записи в базу. Пустой документ не хранится.
func (rc RichContent) Stored() (types.RedactorHTML, *edtypes.Document) {
	if rc.IsEmpty() {
		return types.RedactorHTML{}, nil
	}
	return rc.Html, rc.State
}

// NormalizeRichText загружает снимок (если он корректен) или разметку и
// заново экспортирует документ. Хранится только результат экспорта.
func NormalizeRichText(markup, snapshot string) (RichContent, error) {
	doc := editor.LoadDocument(markup, snapshot)
	html, _, err := editor.Export(doc)
	if err != nil {
		return RichContent{}, apierrors.ErrEditorExport
	}
	return RichContent{
		Html:  types.NewRedactorHTML(html),
		State: doc,
		Text:  strings.Join(strings.Fields(doc.PlainText()), " "),
	}, nil
}

// Excerpt обрезает текст до ExcerptLength символов.
func Excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:ExcerptLength]))
}

func excerptOr(explicit string, rc RichContent) string {
	if e := strings.TrimSpace(explicit); e != "" {
		return Excerpt(e)
	}
	return Excerpt(rc.Text)
}
