// Типы полей моделей: очищенная разметка редактора и список строк в JSON.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	policy "github.com/tarimkoop/koop/internal/koop/redactor-policy"
)

// RedactorHTML - разметка из редактора. Очищается при разборе JSON и при записи в базу.
type RedactorHTML struct {
	Body             string
	stripped         string
	AlreadySanitized bool
}

func NewRedactorHTML(body string) RedactorHTML {
	return RedactorHTML{Body: RemoveInvisibleChars(policy.SanitizeEditorHTML(body)), AlreadySanitized: true}
}

func (r RedactorHTML) Value() (driver.Value, error) {
	if !r.AlreadySanitized {
		return policy.SanitizeEditorHTML(r.Body), nil
	}
	return r.Body, nil
}

func (r *RedactorHTML) Scan(value any) error {
	switch v := value.(type) {
	case string:
		r.Body = v
	case []byte:
		r.Body = string(v)
	case nil:
		r.Body = ""
	default:
		return errors.New("unsupported type")
	}
	r.AlreadySanitized = true
	return nil
}

func (r RedactorHTML) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r.Body); err != nil {
		return nil, err
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}

func (r *RedactorHTML) UnmarshalJSON(data []byte) error {
	var body string
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*r = NewRedactorHTML(body)
	return nil
}

// StripTags возвращает текст без разметки.
func (r *RedactorHTML) StripTags() string {
	if r.stripped == "" {
		r.stripped = strings.TrimSpace(policy.StripTagsPolicy.Sanitize(r.Body))
	}
	return r.stripped
}

func (r RedactorHTML) String() string {
	return r.Body
}

func (r RedactorHTML) IsEmpty() bool {
	return strings.TrimSpace(policy.StripTagsPolicy.Sanitize(r.Body)) == ""
}

func (RedactorHTML) GormDataType() string {
	return "text"
}

func RemoveInvisibleChars(s string) string {
	for _, ch := range []string{"\u200B", "\u200C", "\u200D", "\uFEFF"} {
		s = strings.ReplaceAll(s, ch, "")
	}
	return s
}

// StringArray хранится как JSON массив в текстовой колонке, одинаково для postgres и sqlite.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *StringArray) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*a = nil
		return nil
	default:
		return errors.New("unsupported type")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(raw, a)
}

func (StringArray) GormDataType() string {
	return "text"
}

// Contains - есть ли значение в списке без учета регистра.
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
