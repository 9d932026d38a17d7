package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/parser"
	"resume-agent-go/internal/types"
)

// SectionAgent 负责单一角色的抽取：绑定该角色的函数schema，
// 调用模型，解析参数JSON并做字段清理。
type SectionAgent struct {
	llmModel  model.ToolCallingChatModel
	agentType types.AgentType
	toolInfo  *einoschema.ToolInfo
	logger    zerolog.Logger
}

// NewSectionAgent 创建指定角色的抽取agent
func NewSectionAgent(llmModel model.ToolCallingChatModel, agentType types.AgentType) (*SectionAgent, error) {
	if llmModel == nil {
		return nil, fmt.Errorf("llm model cannot be nil")
	}
	toolInfo := agentToolInfo(agentType)
	if toolInfo == nil {
		return nil, fmt.Errorf("unknown agent type: %s", agentType)
	}
	return &SectionAgent{
		llmModel:  llmModel,
		agentType: agentType,
		toolInfo:  toolInfo,
		logger:    logger.Logger.With().Str("agent", string(agentType)).Logger(),
	}, nil
}

// Process 对输入文本执行一次抽取。失败以结果形式返回而不是error，
// 单个角色失败不影响其他角色。
func (a *SectionAgent) Process(ctx context.Context, input string) types.AgentResult {
	start := time.Now()

	a.logger.Info().Int("input_chars", len(input)).Msg("开始抽取")

	payload, err := a.extract(ctx, input)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		a.logger.Error().Err(err).Int64("elapsed_ms", elapsed).Msg("抽取失败")
		return types.AgentResult{
			AgentType:    a.agentType,
			Success:      false,
			ErrorMessage: err.Error(),
			ElapsedMs:    elapsed,
		}
	}

	a.cleanPayload(payload)

	a.logger.Info().Int64("elapsed_ms", elapsed).Msg("抽取成功")
	return types.AgentResult{
		AgentType: a.agentType,
		Payload:   payload,
		Success:   true,
		ElapsedMs: elapsed,
	}
}

func (a *SectionAgent) extract(ctx context.Context, input string) (*types.AgentPayload, error) {
	boundModel, err := a.llmModel.WithTools([]*einoschema.ToolInfo{a.toolInfo})
	if err != nil {
		return nil, fmt.Errorf("绑定工具失败: %w", err)
	}

	messages := []*einoschema.Message{
		einoschema.SystemMessage(systemPrompt(a.agentType)),
		einoschema.UserMessage(userPrompt(a.agentType, input)),
	}

	resp, err := boundModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("模型调用失败: %w", err)
	}

	argsJSON := ""
	if len(resp.ToolCalls) > 0 {
		argsJSON = resp.ToolCalls[0].Function.Arguments
	} else {
		// 模型没有走工具调用时，从正文里找第一个配平的JSON对象
		argsJSON = extractJSONObject(strings.TrimPrefix(resp.Content, "\uFEFF"))
	}
	if argsJSON == "" {
		return nil, fmt.Errorf("模型响应中没有可解析的参数JSON")
	}

	var payload types.AgentPayload
	if err := json.Unmarshal([]byte(argsJSON), &payload); err != nil {
		// 常见坏形态是字符串内部的未转义引号，修复后重试一次
		if retryErr := json.Unmarshal([]byte(sanitizeJSON(argsJSON)), &payload); retryErr != nil {
			return nil, fmt.Errorf("解析参数JSON失败: %w", err)
		}
	}
	return &payload, nil
}

// cleanPayload 对模型输出做角色相关的清理：
// 剥离列表前缀，归一化时间段、地点和学位，补齐集合字段。
func (a *SectionAgent) cleanPayload(payload *types.AgentPayload) {
	switch a.agentType {
	case types.AgentSummary:
		payload.ProfessionalSummary = stripBullets(payload.ProfessionalSummary)
		for i := range payload.SummarySections {
			payload.SummarySections[i].Content = stripBullets(payload.SummarySections[i].Content)
		}

	case types.AgentExperience:
		for i := range payload.EmploymentHistory {
			job := &payload.EmploymentHistory[i]
			job.WorkPeriod = parser.NormalizeWorkPeriod(job.WorkPeriod)
			job.Location = parser.NormalizeLocation(job.Location)
			job.Responsibilities = stripBullets(job.Responsibilities)
			for j := range job.Subsections {
				job.Subsections[j].Content = stripBullets(job.Subsections[j].Content)
			}
			for j := range job.Projects {
				project := &job.Projects[j]
				project.Period = parser.NormalizeWorkPeriod(project.Period)
				project.ProjectLocation = parser.NormalizeLocation(project.ProjectLocation)
				project.ProjectResponsibilities = stripBullets(project.ProjectResponsibilities)
			}
		}

	case types.AgentEducation:
		for i := range payload.Education {
			entry := &payload.Education[i]
			entry.Location = parser.NormalizeLocation(entry.Location)
			entry.Date = parser.NormalizeWorkPeriod(entry.Date)
		}
		// 不依赖模型遵守排序指令，这里再强制一遍学位标准化和升序
		parser.SortEducation(payload.Education)

	case types.AgentSkills:
		for i := range payload.SkillCategories {
			category := &payload.SkillCategories[i]
			if category.Skills == nil {
				category.Skills = []string{}
			}
			if category.SubCategories == nil {
				category.SubCategories = []types.SkillSubCategory{}
			}
		}

	case types.AgentCertifications:
		for i := range payload.Certifications {
			cert := &payload.Certifications[i]
			cert.DateObtained = parser.NormalizeWorkPeriod(cert.DateObtained)
			cert.ExpirationDate = parser.NormalizeWorkPeriod(cert.ExpirationDate)
		}
	}
}

func stripBullets(items []string) []string {
	for i := range items {
		items[i] = parser.StripBulletPrefix(items[i])
	}
	return items
}

// extractJSONObject 返回文本中第一个大括号配平的JSON对象
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeJSON 把字符串字面量内部未转义的双引号改写为 \"。
// 通过看引号后的下一个非空白字符是否为 : , ] } 判断它是不是真正的结束引号。
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
			} else {
				j := i + 1
				for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
					j++
				}
				if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
					inStr = false
					b.WriteByte(c)
				} else {
					b.WriteString("\\\"")
				}
			}
			escaped = false
		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)
		default:
			b.WriteByte(c)
			escaped = false
		}
	}

	return b.String()
}
