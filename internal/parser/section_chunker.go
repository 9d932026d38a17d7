package parser

import (
	"strings"

	"github.com/rs/zerolog"

	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/types"
)

// 全文证书行扫描的关键词。章节检测可能漏掉散落在各处的证书描述，
// 这里对整个文档做一次补充扫描。
var certificationKeywords = []string{
	"certified", "certification", "certificate", "license", "credential",
	"awarded", "accredited", "qualified", "diploma",
}

// SectionChunker 把原始简历文本切成按章节键聚合的文本块
type SectionChunker struct {
	detector *SectionDetector
	logger   zerolog.Logger
}

// SectionChunkerOption 分块器的配置选项
type SectionChunkerOption func(*SectionChunker)

// WithDetector 使用指定的章节检测器
func WithDetector(d *SectionDetector) SectionChunkerOption {
	return func(c *SectionChunker) {
		c.detector = d
	}
}

// WithChunkerLogger 设置分块器日志
func WithChunkerLogger(l zerolog.Logger) SectionChunkerOption {
	return func(c *SectionChunker) {
		c.logger = l
	}
}

// NewSectionChunker 创建章节分块器
func NewSectionChunker(opts ...SectionChunkerOption) *SectionChunker {
	c := &SectionChunker{
		detector: NewSectionDetector(),
		logger:   logger.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkSections 检测章节并切块，返回脱敏后的章节映射。
// 未找到任何章节标题时返回 ErrNoSections。
func (c *SectionChunker) ChunkSections(rawText string) (types.SectionMap, error) {
	matches, err := c.detector.DetectSections(rawText)
	if err != nil {
		return nil, err
	}

	sections := types.SectionMap{
		types.SectionHeader:         "",
		types.SectionSummary:        "",
		types.SectionExperience:     "",
		types.SectionEducation:      "",
		types.SectionSkills:         "",
		types.SectionCertifications: "",
	}

	// 第一个章节标题之前的内容作为文档头部
	first := matches[0]
	headerContent := strings.TrimSpace(rawText[:first.Start])
	sections[types.SectionHeader] = StripMarkup(headerContent)

	// 末尾追加哨兵边界，让最后一个章节延伸到文档结尾
	boundaries := append(matches, types.SectionMatch{
		SectionKey: "end_of_document",
		Start:      len(rawText),
		End:        len(rawText),
	})

	for i := 0; i < len(boundaries)-1; i++ {
		this := boundaries[i]
		next := boundaries[i+1]
		chunk := strings.TrimSpace(rawText[this.End:next.Start])
		sections[this.SectionKey] += StripMarkup(chunk) + "\n"
	}

	c.sweepCertificationLines(rawText, sections)

	for key, content := range sections {
		c.logger.Debug().
			Str("section", string(key)).
			Int("length", len(content)).
			Msg("章节切块完成")
	}

	return SanitizeSections(sections), nil
}

// sweepCertificationLines 全文扫描含证书关键词的行，追加到证书章节
func (c *SectionChunker) sweepCertificationLines(rawText string, sections types.SectionMap) {
	cleanText := StripMarkup(rawText)
	lines := strings.Split(cleanText, "\n")

	var certificationLines []string
	for _, line := range lines {
		lowerLine := strings.ToLower(strings.TrimSpace(line))
		if len(lowerLine) < constants.MinCertificationLineLength {
			continue
		}
		for _, keyword := range certificationKeywords {
			if strings.Contains(lowerLine, keyword) {
				certificationLines = append(certificationLines, strings.TrimSpace(line))
				break
			}
		}
	}

	if len(certificationLines) == 0 {
		return
	}

	c.logger.Debug().
		Int("count", len(certificationLines)).
		Msg("全文扫描到证书相关行")

	joined := strings.Join(certificationLines, "\n")
	if sections[types.SectionCertifications] != "" {
		sections[types.SectionCertifications] += "\n" + joined
	} else {
		sections[types.SectionCertifications] = joined
	}
}
