package lexical

import (
	"log/slog"
	"strings"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

// applyFormat применяет битовую маску format к тексту.
func applyFormat(text *edtypes.Text, format int) {
	text.Bold = format&FormatBold != 0
	text.Italic = format&FormatItalic != 0
	text.Underline = format&FormatUnderline != 0
}

// applyStyle разбирает inline стиль текста. Поддерживаются color и background-color.
func applyStyle(text *edtypes.Text, style string) {
	for key, value := range parseStyleAttr(style) {
		switch key {
		case "color":
			c, err := edtypes.ParseColor(value)
			if err != nil {
				slog.Debug("Skip snapshot text color", "value", value, "err", err)
				continue
			}
			text.Color = &c
		case "background-color":
			c, err := edtypes.ParseColor(value)
			if err != nil {
				slog.Debug("Skip snapshot background color", "value", value, "err", err)
				continue
			}
			text.BgColor = &c
		}
	}
}

func textFormat(text *edtypes.Text) int {
	var f int
	if text.Bold {
		f |= FormatBold
	}
	if text.Italic {
		f |= FormatItalic
	}
	if text.Underline {
		f |= FormatUnderline
	}
	return f
}

func textStyle(text *edtypes.Text) string {
	var sb strings.Builder
	if text.Color != nil {
		sb.WriteString("color: " + text.Color.Hex() + ";")
	}
	if text.BgColor != nil {
		sb.WriteString("background-color: " + text.BgColor.Hex() + ";")
	}
	return sb.String()
}

// parseStyleAttr парсит CSS style строку в map key-value пар.
func parseStyleAttr(style string) map[string]string {
	result := make(map[string]string)
	for part := range strings.SplitSeq(style, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])
		if key != "" && value != "" {
			result[key] = value
		}
	}
	return result
}
