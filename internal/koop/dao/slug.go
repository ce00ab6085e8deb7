package dao

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const defaultSlug = "icerik"

// Slugify приводит заголовок к нижнему регистру (с учетом турецкой İ/I),
// пробелы заменяются на "-", символы кроме букв, цифр и "-" отбрасываются.
func Slugify(title string) string {
	title = strings.ToLowerSpecial(unicode.TurkishCase, strings.TrimSpace(title))

	var b strings.Builder
	dash := false
	for _, r := range title {
		switch {
		case unicode.IsSpace(r) || r == '-':
			dash = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UniqueSlug подбирает свободный slug в таблице модели, добавляя числовой суффикс.
// exclude - id редактируемой записи.
func UniqueSlug(db *gorm.DB, model any, title string, exclude uuid.UUID) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = defaultSlug
	}

	slug := base
	for i := 2; ; i++ {
		var exist bool
		if err := db.Model(model).
			Select("count(*) > 0").
			Where("slug = ?", slug).
			Where("id <> ?", exclude).
			Find(&exist).Error; err != nil {
			return "", err
		}
		if !exist {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
