package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 匹配HTML/XML风格标签，包括行尾未闭合的标签
var markupTagPattern = regexp.MustCompile(`</?[^>]+(>|$)`)

// 匹配行首的列表标记：连续短横线或各种项目符号
var bulletRunPattern = regexp.MustCompile(`^[\s]*(?:--+|[-*\x{2022}\x{2023}\x{25E6}\x{2043}\x{2219}\x{00B7}]+)`)

// StripMarkup 去除文本中的标记标签
func StripMarkup(text string) string {
	return markupTagPattern.ReplaceAllString(text, "")
}

// StripBulletPrefix 反复去除行首的列表前缀。标记后必须紧跟空白
// （连同空白一起去除）或字母数字（保留）才视为列表前缀，
// 避免误伤 "3-4 years"、"--" 这类内容。结果再次输入时保持不变。
func StripBulletPrefix(line string) string {
	s := line
	for {
		loc := bulletRunPattern.FindStringIndex(s)
		if loc == nil {
			break
		}
		rest := s[loc[1]:]
		if rest == "" {
			break
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) {
			s = strings.TrimLeftFunc(rest, unicode.IsSpace)
			continue
		}
		if isASCIIAlnum(r) {
			s = rest
			continue
		}
		break
	}
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// OriginalPosition 把清理后文本中的偏移映射回原始文本的偏移。
// 逐字符走原始文本，跳过 <...> 标签所占的区间。
func OriginalPosition(rawText string, cleanPos int) int {
	rawPos := 0
	cleanCount := 0
	for rawPos < len(rawText) && cleanCount < cleanPos {
		if rawText[rawPos] == '<' {
			for rawPos < len(rawText) && rawText[rawPos] != '>' {
				rawPos++
			}
			if rawPos < len(rawText) {
				rawPos++
			}
			continue
		}
		cleanCount++
		rawPos++
	}
	return rawPos
}
