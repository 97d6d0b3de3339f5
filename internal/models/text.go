package models

import (
	"strings"
	"unicode"
)

// Чтение: средняя скорость в словах в минуту для расчета времени чтения.
const readingSpeedWPM = 200

// CountWords считает слова в тексте главы.
// CJK-символы (китайский, японский, корейский) считаются по одному за слово,
// остальной текст — по разделению пробелами.
func CountWords(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	cjk := 0
	var rest strings.Builder
	for _, r := range text {
		if isCJK(r) {
			cjk++
			// Заменяем CJK-символ пробелом, чтобы не склеивать соседние слова
			rest.WriteRune(' ')
		} else {
			rest.WriteRune(r)
		}
	}

	return cjk + len(strings.Fields(rest.String()))
}

// CalculateReadTime возвращает оценку времени чтения в минутах, минимум 1.
func CalculateReadTime(wordCount int) int {
	minutes := wordCount / readingSpeedWPM
	if minutes < 1 {
		return 1
	}
	return minutes
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
