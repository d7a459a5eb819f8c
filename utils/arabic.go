package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// NormalizeOptions controls which Arabic normalization passes run.
// Teh marbuta and alef maksura folding are off by default because they can
// merge legally distinct words.
type NormalizeOptions struct {
	RemoveDiacritics    bool
	RemoveTatweel       bool
	NormalizeAlef       bool
	NormalizeTeh        bool
	NormalizeYeh        bool
	NormalizeWhitespace bool
}

var (
	diacriticsRe = regexp.MustCompile(`[\x{064B}-\x{065F}\x{0670}]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	alefVariants = strings.NewReplacer("أ", "ا", "إ", "ا", "آ", "ا", "ٱ", "ا")
	tehMarbuta   = strings.NewReplacer("ة", "ه")
	alefMaksura  = strings.NewReplacer("ى", "ي")

	arabicToASCII = strings.NewReplacer(
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	)
	asciiToArabic = strings.NewReplacer(
		"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
		"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
	)

	digitsRe = regexp.MustCompile(`\d+`)
)

const tatweel = "ـ"

// NormalizeArabic applies the selected normalization passes in a fixed order.
func NormalizeArabic(text string, opts NormalizeOptions) string {
	if text == "" {
		return ""
	}

	if opts.RemoveDiacritics {
		text = diacriticsRe.ReplaceAllString(text, "")
	}
	if opts.RemoveTatweel {
		text = strings.ReplaceAll(text, tatweel, "")
	}
	if opts.NormalizeAlef {
		text = alefVariants.Replace(text)
	}
	if opts.NormalizeTeh {
		text = tehMarbuta.Replace(text)
	}
	if opts.NormalizeYeh {
		text = alefMaksura.Replace(text)
	}
	if opts.NormalizeWhitespace {
		text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	}

	return text
}

// NormalizeForSearch applies aggressive folding for query/index matching.
func NormalizeForSearch(text string) string {
	return NormalizeArabic(text, NormalizeOptions{
		RemoveDiacritics:    true,
		RemoveTatweel:       true,
		NormalizeAlef:       true,
		NormalizeTeh:        true,
		NormalizeYeh:        true,
		NormalizeWhitespace: true,
	})
}

// NormalizeQuery is the query-pipeline profile: fold diacritics, tatweel and
// alef variants but keep teh marbuta and alef maksura so legally significant
// distinctions survive.
func NormalizeQuery(text string) string {
	return NormalizeArabic(text, NormalizeOptions{
		RemoveDiacritics:    true,
		RemoveTatweel:       true,
		NormalizeAlef:       true,
		NormalizeWhitespace: true,
	})
}

// ArabicDigitsToASCII converts Eastern Arabic numerals to ASCII digits.
func ArabicDigitsToASCII(text string) string {
	return arabicToASCII.Replace(text)
}

// ASCIIDigitsToArabic converts ASCII digits to Eastern Arabic numerals.
func ASCIIDigitsToArabic(text string) string {
	return asciiToArabic.Replace(text)
}

// ExtractNumber returns the first integer found in text, accepting either
// numeral script. The second return is false when no digits are present.
func ExtractNumber(text string) (int, bool) {
	m := digitsRe.FindString(ArabicDigitsToASCII(text))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractNumberWithReverse returns the first integer found in text along
// with its digit-reversed reading. RTL PDF extraction can emit multi-digit
// numbers with the digits in visual rather than logical order, so both
// readings are candidates until sequence filtering decides. The reversed
// value is 0/false for single-digit numbers and when both readings agree.
func ExtractNumberWithReverse(text string) (normal int, reversed int, hasReversed bool, ok bool) {
	m := digitsRe.FindString(ArabicDigitsToASCII(text))
	if m == "" {
		return 0, 0, false, false
	}
	normal, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, false, false
	}
	if len(m) > 1 {
		rev := reverseString(m)
		if r, err := strconv.Atoi(rev); err == nil && r != normal {
			return normal, r, true, true
		}
	}
	return normal, 0, false, true
}

// FormatArticleNumber renders an article citation marker, e.g. "مادة ٣".
func FormatArticleNumber(number int, useArabicNumerals bool) string {
	s := strconv.Itoa(number)
	if useArabicNumerals {
		s = ASCIIDigitsToArabic(s)
	}
	return "مادة " + s
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
