package parser

import (
	"regexp"

	"resume-agent-go/internal/types"
)

// 联系方式识别模式。脱敏发生在分块之后、送入模型之前，
// 保证个人联系信息不会出现在任何提示词里。
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-\s]?)?(\(?\d{3}\)?[-\s]?)?\d{3}[-\s]?\d{4}`)

	linkedinURLPattern  = regexp.MustCompile(`(?i)https?://(www\.)?linkedin\.com/in/[^\s]+`)
	linkedinBarePattern = regexp.MustCompile(`(?i)linkedin\.com/in/[^\s]+`)
	githubURLPattern    = regexp.MustCompile(`(?i)https?://(www\.)?github\.com/[^\s]+`)
	githubBarePattern   = regexp.MustCompile(`(?i)github\.com/[^\s]+`)
)

// 脱敏占位符
const (
	EmailRedacted    = "[EMAIL REDACTED]"
	PhoneRedacted    = "[PHONE REDACTED]"
	LinkedInRedacted = "[LINKEDIN REDACTED]"
	GitHubRedacted   = "[GITHUB REDACTED]"
)

// SanitizeText 把文本中的邮箱、电话、LinkedIn和GitHub链接替换为占位符
func SanitizeText(text string) string {
	sanitized := emailPattern.ReplaceAllString(text, EmailRedacted)
	sanitized = phonePattern.ReplaceAllString(sanitized, PhoneRedacted)
	sanitized = linkedinURLPattern.ReplaceAllString(sanitized, LinkedInRedacted)
	sanitized = linkedinBarePattern.ReplaceAllString(sanitized, LinkedInRedacted)
	sanitized = githubURLPattern.ReplaceAllString(sanitized, GitHubRedacted)
	sanitized = githubBarePattern.ReplaceAllString(sanitized, GitHubRedacted)
	return sanitized
}

// SanitizeSections 对每个章节文本做脱敏
func SanitizeSections(sections types.SectionMap) types.SectionMap {
	sanitized := make(types.SectionMap, len(sections))
	for key, content := range sections {
		sanitized[key] = SanitizeText(content)
	}
	return sanitized
}
