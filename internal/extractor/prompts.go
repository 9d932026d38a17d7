package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-agent-go/internal/types"
)

// 所有角色共用的系统提示词
const baseSystemPrompt = `You are a specialized resume extraction agent with 40 years of experience.
Your task is to extract ONLY the specific section you're responsible for with perfect accuracy.

CRITICAL INSTRUCTIONS:
1. Extract ONLY the section type you're assigned to
2. Preserve ALL content exactly as written - no summarization
3. Maintain original structure and formatting
4. If the section doesn't exist, return empty arrays/objects
5. Never invent or hallucinate information
6. PROJECTS RULE: Only include projects if they are explicitly mentioned in the resume text. If no projects are mentioned for a job, return empty projects array.`

// 每个角色的专注范围
var agentFocus = map[types.AgentType]string{
	types.AgentHeader:  "Focus ONLY on personal information: name, title, contact details, requisition numbers.",
	types.AgentSummary: "Extract ONLY professional summary, career overview, and profile sections. Include ALL bullet points and paragraphs.",
	types.AgentExperience: `Extract ONLY employment history and work experience. Include ALL jobs with complete details. Missing any job is unacceptable.

CRITICAL PROJECT EXTRACTION RULES:
- ONLY include 'projects' if explicitly mentioned specific named projects, project titles, or project-specific work for that job, if it is outside that particular job entry dont add.
- If a job only lists general responsibilities without mentioning specific projects, return projects as empty array []
`,
	types.AgentEducation:      "Extract ONLY education, academic background, and degrees. Include ALL educational entries.",
	types.AgentSkills:         "Extract ONLY technical skills with proper hierarchical structure. When you see a main heading followed by colon-separated items, the main heading becomes the categoryName and the colon-separated items become subCategories. Items that appear grouped under a main heading belong together as subcategories, not as separate main categories. Preserve the exact nesting structure as written in the resume.",
	types.AgentCertifications: "Extract ONLY certifications, licenses, and professional credentials. Only include explicitly mentioned certifications.",
}

// systemPrompt 组装角色的系统提示词
func systemPrompt(agentType types.AgentType) string {
	return fmt.Sprintf("%s\n\nSPECIFIC FOCUS: %s", baseSystemPrompt, agentFocus[agentType])
}

// cacheVariation 生成防缓存前缀。时间戳加随机ID保证每次调用的
// 提示词都不同，避免服务端命中提示词缓存返回陈旧结果。
func cacheVariation(agentType types.AgentType) string {
	timestamp := time.Now().UnixMilli()
	randomID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	session := fmt.Sprintf("AGENT_%s_%d_%s", strings.ToUpper(string(agentType)), timestamp, randomID)

	return fmt.Sprintf("[Agent Session: %s]\n[Processing: %s]\n[Timestamp: %s]\n\n",
		session, agentType, time.Now().Format(time.RFC3339Nano))
}

// userPrompt 组装角色的用户消息
func userPrompt(agentType types.AgentType, input string) string {
	return cacheVariation(agentType) +
		fmt.Sprintf("Extract %s information from this resume:\n\n%s", agentType, input)
}
