package edtypes

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var (
	colorReg = regexp.MustCompile(`[rgba()#\s"]`)

	// ColorRegexp - допустимые значения цвета в стилях редактора.
	ColorRegexp = regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*(0|1|0?\.\d+)\s*)?\))$`)

	ErrUnsupportedColor = errors.New("unsupported color format")
)

type Color color.RGBA

// ParseColor разбирает #rgb, #rgba, #rrggbb, #rrggbbaa, rgb() и rgba().
// Цвет без альфа-канала считается непрозрачным.
func ParseColor(raw string) (Color, error) {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if !ColorRegexp.MatchString(raw) {
		return Color{}, ErrUnsupportedColor
	}

	if strings.HasPrefix(raw, "rgb") {
		c := Color{A: 0xff}
		for i, n := range strings.Split(colorReg.ReplaceAllString(raw, ""), ",") {
			if i == 3 {
				f, err := strconv.ParseFloat(n, 64)
				if err != nil {
					return Color{}, err
				}
				c.A = uint8(f*255 + 0.5)
				continue
			}
			nn, err := strconv.ParseUint(n, 10, 8)
			if err != nil {
				return Color{}, err
			}
			switch i {
			case 0:
				c.R = uint8(nn)
			case 1:
				c.G = uint8(nn)
			case 2:
				c.B = uint8(nn)
			}
		}
		return c, nil
	}

	// HEX
	digits := strings.TrimPrefix(raw, "#")
	if len(digits) == 3 || len(digits) == 4 {
		var sb strings.Builder
		for _, r := range digits {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		digits = sb.String()
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, err
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) > 3 {
		c.A = b[3]
	}
	return c, nil
}

// MustParseColor для констант и тестов.
func MustParseColor(raw string) *Color {
	c, err := ParseColor(raw)
	if err != nil {
		panic(err)
	}
	return &c
}

// Hex возвращает #rrggbb для непрозрачного цвета и #rrggbbaa иначе.
func (c Color) Hex() string {
	if c.A == 0xff {
		return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
	}
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}

func (c Color) String() string {
	return c.Hex()
}

// Equal сравнивает цвета, nil равен только nil.
func (c *Color) Equal(o *Color) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

func (c Color) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "%q", c.Hex()), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}

	cc, err := ParseColor(string(data))
	*c = cc

	return err
}
