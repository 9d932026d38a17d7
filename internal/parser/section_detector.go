package parser

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/types"
)

// ErrNoSections 文档中未找到任何章节标题。调用方据此回退到全文处理。
var ErrNoSections = errors.New("no matching section headings found")

// sectionKeywordGroup 某个章节键对应的标题关键词组
type sectionKeywordGroup struct {
	key      types.SectionKey
	keywords []string
}

// 默认的章节标题关键词表。匹配在小写、去冒号后进行。
// 顺序固定，保证同一行命中多个章节键时结果可复现。
var defaultSectionKeywords = []sectionKeywordGroup{
	{types.SectionSummary, []string{
		"summary", "experience summary", "professional summary", "professional background",
		"profile", "professional profile", "career summary", "career profile",
		"executive summary", "technical summary", "overview", "profile summary",
	}},
	{types.SectionExperience, []string{
		"experience", "work experience", "employment", "professional experience",
		"work history", "career history", "employment history",
	}},
	{types.SectionEducation, []string{
		"education", "educational background", "academic background", "academic history",
		"academic qualification", "academic qualifications",
	}},
	{types.SectionSkills, []string{
		"skills", "technical skills", "core competencies", "key skills",
		"areas of expertise", "skills summary",
	}},
	{types.SectionCertifications, []string{
		"certifications", "certification", "certified",
	}},
}

var capitalStartPattern = regexp.MustCompile(`^[A-Z]`)

// SectionDetector 在原始简历文本中定位章节标题
type SectionDetector struct {
	keywords        []sectionKeywordGroup
	maxHeadingLen   int // 标题行最大长度
	dedupeWindow    int // 同类标题去重窗口
	searchWindow    int // 原文回找时的前后搜索窗口
	logger          zerolog.Logger
}

// SectionDetectorOption 检测器的配置选项
type SectionDetectorOption func(*SectionDetector)

// WithMaxHeadingLength 设置标题行最大长度
func WithMaxHeadingLength(n int) SectionDetectorOption {
	return func(d *SectionDetector) {
		if n > 0 {
			d.maxHeadingLen = n
		}
	}
}

// WithDedupeWindow 设置同类标题去重窗口
func WithDedupeWindow(n int) SectionDetectorOption {
	return func(d *SectionDetector) {
		if n > 0 {
			d.dedupeWindow = n
		}
	}
}

// WithSearchWindow 设置原文回找的搜索窗口
func WithSearchWindow(n int) SectionDetectorOption {
	return func(d *SectionDetector) {
		if n > 0 {
			d.searchWindow = n
		}
	}
}

// WithDetectorLogger 设置检测器日志
func WithDetectorLogger(l zerolog.Logger) SectionDetectorOption {
	return func(d *SectionDetector) {
		d.logger = l
	}
}

// NewSectionDetector 创建章节检测器
func NewSectionDetector(opts ...SectionDetectorOption) *SectionDetector {
	d := &SectionDetector{
		keywords:      defaultSectionKeywords,
		maxHeadingLen: constants.DefaultMaxHeadingLength,
		dedupeWindow:  constants.DefaultDedupeWindow,
		searchWindow:  constants.DefaultSearchWindow,
		logger:        logger.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectSections 返回按原文起始位置升序的章节标题命中列表。
// 整个文档没有任何命中时返回 ErrNoSections。
func (d *SectionDetector) DetectSections(rawText string) ([]types.SectionMatch, error) {
	cleanText := StripMarkup(rawText)
	lines := strings.Split(cleanText, "\n")

	var matches []types.SectionMatch
	cleanPos := 0

	for lineIndex, line := range lines {
		strippedLine := StripBulletPrefix(line)
		cleanLine := strings.ToLower(strings.TrimSpace(strippedLine))

		if len(cleanLine) < constants.MinHeadingLineLength {
			cleanPos += len(line) + 1
			continue
		}

		if len(cleanLine) <= d.maxHeadingLen {
			withoutColon := strings.TrimSpace(strings.ReplaceAll(cleanLine, ":", ""))

			for _, group := range d.keywords {
				for _, keyword := range group.keywords {
					exact := withoutColon == keyword || cleanLine == keyword+":"
					prefixed := strings.HasPrefix(withoutColon, keyword+" ")
					if !exact && !prefixed {
						continue
					}
					if !isStandaloneLine(lines, lineIndex, d.maxHeadingLen) {
						continue
					}

					approx := OriginalPosition(rawText, cleanPos)
					start := d.findLineInRawText(rawText, strippedLine, approx)
					end := start + d.originalLineLength(rawText, strippedLine, start)

					d.logger.Debug().
						Str("section", string(group.key)).
						Str("heading", cleanLine).
						Int("line", lineIndex+1).
						Int("start", start).
						Msg("章节标题命中")

					matches = append(matches, types.SectionMatch{
						SectionKey:  group.key,
						MatchedText: cleanLine,
						Start:       start,
						End:         end,
					})
					break
				}
			}
		}

		cleanPos += len(line) + 1
	}

	if len(matches) == 0 {
		return nil, ErrNoSections
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return d.removeDuplicateSections(matches), nil
}

// isStandaloneLine 判断一行是否独立成行（而不是段落的一部分）
func isStandaloneLine(lines []string, lineIndex int, maxHeadingLen int) bool {
	cleanLine := strings.TrimSpace(lines[lineIndex])
	if cleanLine == "" {
		return false
	}
	if len(cleanLine) > maxHeadingLen {
		return false
	}

	prevLine := ""
	if lineIndex > 0 {
		prevLine = strings.TrimSpace(lines[lineIndex-1])
	}
	nextLine := ""
	if lineIndex < len(lines)-1 {
		nextLine = strings.TrimSpace(lines[lineIndex+1])
	}

	// 以连接词或逗号结尾说明句子延续到下一行
	if strings.HasSuffix(cleanLine, ",") || strings.HasSuffix(cleanLine, "and") || strings.HasSuffix(cleanLine, "or") {
		return false
	}

	// 上一行以逗号收尾（且不是句号/冒号）说明本行接续上文
	if strings.HasSuffix(prevLine, ",") && !strings.HasSuffix(prevLine, ".") && !strings.HasSuffix(prevLine, ":") {
		return false
	}

	hasSpacingBefore := prevLine == "" || strings.HasSuffix(prevLine, ".") || strings.HasSuffix(prevLine, ":")
	hasSpacingAfter := nextLine == "" || capitalStartPattern.MatchString(nextLine)

	return hasSpacingBefore || hasSpacingAfter
}

// findLineInRawText 在原始文本中回找一行的起始位置。
// 在估算位置前后的窗口内按顺序查找该行的所有单词，
// 找不到时退回估算位置。
func (d *SectionDetector) findLineInRawText(rawText, cleanLine string, approximatePos int) int {
	words := strings.Fields(cleanLine)
	if len(words) == 0 {
		return approximatePos
	}

	searchStart := approximatePos - d.searchWindow
	if searchStart < 0 {
		searchStart = 0
	}
	searchEnd := approximatePos + d.searchWindow
	if searchEnd > len(rawText) {
		searchEnd = len(rawText)
	}
	searchText := strings.ToLower(rawText[searchStart:searchEnd])

	lastPos := 0
	for _, word := range words {
		wordPos := strings.Index(searchText[lastPos:], strings.ToLower(word))
		if wordPos == -1 {
			return approximatePos
		}
		lastPos += wordPos + len(word)
	}

	firstWordPos := strings.Index(searchText, strings.ToLower(words[0]))
	return searchStart + firstWordPos
}

// originalLineLength 估算一行在原始文本中占用的长度（含标签）。
// 在起点后的去重窗口内反向查找最后一个单词。
func (d *SectionDetector) originalLineLength(rawText, cleanLine string, startPos int) int {
	words := strings.Fields(cleanLine)
	if len(words) == 0 {
		return 0
	}

	lastWord := strings.ToLower(strings.ReplaceAll(words[len(words)-1], ":", ""))
	searchEnd := startPos + d.dedupeWindow
	if searchEnd > len(rawText) {
		searchEnd = len(rawText)
	}
	if startPos > len(rawText) {
		startPos = len(rawText)
	}
	searchText := strings.ToLower(rawText[startPos:searchEnd])

	lastWordPos := strings.LastIndex(searchText, lastWord)
	if lastWordPos == -1 {
		return len(cleanLine)
	}
	return lastWordPos + len(lastWord)
}

// removeDuplicateSections 去掉紧跟在同类标题后面的重复命中
func (d *SectionDetector) removeDuplicateSections(matches []types.SectionMatch) []types.SectionMatch {
	filtered := make([]types.SectionMatch, 0, len(matches))
	for _, match := range matches {
		if len(filtered) > 0 {
			prev := filtered[len(filtered)-1]
			if prev.SectionKey == match.SectionKey && match.Start-prev.End < d.dedupeWindow {
				d.logger.Debug().
					Str("section", string(match.SectionKey)).
					Str("heading", match.MatchedText).
					Msg("跳过重复章节标题")
				continue
			}
		}
		filtered = append(filtered, match)
	}
	return filtered
}
