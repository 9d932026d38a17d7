package extractor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/parser"
	"resume-agent-go/internal/types"
)

// ExtractionOutcome 一次完整抽取的结果：合并后的记录加各角色的执行情况
type ExtractionOutcome struct {
	Record       *types.ResumeRecord
	AgentResults []types.AgentResult
	FailedAgents []string
}

// Orchestrator 把简历切块后并发分发给六个角色agent，再合并结果
type Orchestrator struct {
	chunker       *parser.SectionChunker
	agents        map[types.AgentType]*SectionAgent
	headerContext int // header角色附带的文档起始字符数
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// OrchestratorOption 编排器的配置选项
type OrchestratorOption func(*Orchestrator)

// WithChunker 使用指定的章节分块器
func WithChunker(c *parser.SectionChunker) OrchestratorOption {
	return func(o *Orchestrator) {
		o.chunker = c
	}
}

// WithHeaderContextLength 设置header角色附带的起始字符数
func WithHeaderContextLength(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.headerContext = n
		}
	}
}

// WithOrchestratorLogger 设置编排器日志
func WithOrchestratorLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator 创建编排器并初始化六个角色agent
func NewOrchestrator(llmModel model.ToolCallingChatModel, opts ...OrchestratorOption) (*Orchestrator, error) {
	o := &Orchestrator{
		chunker:       parser.NewSectionChunker(),
		agents:        make(map[types.AgentType]*SectionAgent, 6),
		headerContext: constants.DefaultHeaderContextLength,
		logger:        logger.Logger,
		tracer:        otel.Tracer("resume-agent-go/extractor"),
	}
	for _, opt := range opts {
		opt(o)
	}

	for _, agentType := range types.AllAgentTypes() {
		agent, err := NewSectionAgent(llmModel, agentType)
		if err != nil {
			return nil, fmt.Errorf("创建%s agent失败: %w", agentType, err)
		}
		o.agents[agentType] = agent
	}
	return o, nil
}

// ProcessResume 对原始简历文本执行完整抽取。
// 单个角色失败只记录不中断，整体失败仅来自编排层本身。
func (o *Orchestrator) ProcessResume(ctx context.Context, rawText string) (*ExtractionOutcome, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.ProcessResume")
	defer span.End()
	span.SetAttributes(attribute.Int("resume.raw_chars", len(rawText)))

	sections, err := o.chunker.ChunkSections(rawText)
	if err != nil {
		if !errors.Is(err, parser.ErrNoSections) {
			return nil, fmt.Errorf("章节切块失败: %w", err)
		}
		// 没有识别出任何章节时全部角色回退到全文
		o.logger.Warn().Msg("未找到章节标题，所有角色使用全文")
		sections = nil
	}

	inputs := o.prepareInputs(sections, rawText)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]types.AgentResult, 0, len(o.agents))
	)
	for _, agentType := range types.AllAgentTypes() {
		agent := o.agents[agentType]
		input := inputs[agentType]
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := agent.Process(ctx, input)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return agentOrder(results[i].AgentType) < agentOrder(results[j].AgentType)
	})

	var succeeded []types.AgentResult
	var failed []string
	for _, result := range results {
		if result.Success {
			succeeded = append(succeeded, result)
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", result.AgentType, result.ErrorMessage))
	}
	if len(failed) > 0 {
		o.logger.Warn().Strs("failed_agents", failed).Msg("部分角色抽取失败")
	}
	span.SetAttributes(
		attribute.Int("resume.agents_succeeded", len(succeeded)),
		attribute.Int("resume.agents_failed", len(failed)),
	)

	record := mergeAgentResults(succeeded)

	return &ExtractionOutcome{
		Record:       record,
		AgentResults: results,
		FailedAgents: failed,
	}, nil
}

// prepareInputs 决定每个角色看到的文本：
// certifications 永远用全文；header 用文档开头加header块；
// 其余角色有对应章节块就用块，否则回退全文。
func (o *Orchestrator) prepareInputs(sections types.SectionMap, rawText string) map[types.AgentType]string {
	sectionByAgent := map[types.AgentType]types.SectionKey{
		types.AgentHeader:     types.SectionHeader,
		types.AgentSummary:    types.SectionSummary,
		types.AgentExperience: types.SectionExperience,
		types.AgentEducation:  types.SectionEducation,
		types.AgentSkills:     types.SectionSkills,
	}

	inputs := make(map[types.AgentType]string, 6)
	for _, agentType := range types.AllAgentTypes() {
		if agentType == types.AgentCertifications {
			inputs[agentType] = rawText
			continue
		}

		chunk := strings.TrimSpace(sections[sectionByAgent[agentType]])
		if chunk == "" {
			inputs[agentType] = rawText
			o.logger.Debug().Str("agent", string(agentType)).Msg("章节缺失，回退全文")
			continue
		}

		if agentType == types.AgentHeader {
			contextText := rawText
			if len(contextText) > o.headerContext {
				contextText = contextText[:o.headerContext]
			}
			inputs[agentType] = fmt.Sprintf("%s\n\n--- HEADER SECTION ---\n%s", contextText, chunk)
			continue
		}

		inputs[agentType] = chunk
	}
	return inputs
}

// mergeAgentResults 按角色的字段归属合并成最终记录。
// 失败角色的字段保持默认值。
func mergeAgentResults(results []types.AgentResult) *types.ResumeRecord {
	record := types.NewResumeRecord()

	for _, result := range results {
		payload := result.Payload
		if payload == nil {
			continue
		}

		switch result.AgentType {
		case types.AgentHeader:
			record.Name = payload.Name
			record.Title = payload.Title
			record.RequisitionNumber = payload.RequisitionNumber

		case types.AgentSummary:
			record.ProfessionalSummary = payload.ProfessionalSummary
			record.SummarySections = payload.SummarySections
			// 兼容字段与summarySections保持一致
			record.Subsections = payload.SummarySections

		case types.AgentExperience:
			record.EmploymentHistory = payload.EmploymentHistory

		case types.AgentEducation:
			record.Education = payload.Education

		case types.AgentSkills:
			record.TechnicalSkills = payload.TechnicalSkills
			record.SkillCategories = payload.SkillCategories

		case types.AgentCertifications:
			record.Certifications = payload.Certifications
		}
	}

	record.EnsureDefaults()
	return record
}

func agentOrder(agentType types.AgentType) int {
	for i, t := range types.AllAgentTypes() {
		if t == agentType {
			return i
		}
	}
	return len(types.AllAgentTypes())
}
