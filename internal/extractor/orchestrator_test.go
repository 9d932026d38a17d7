package extractor

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 并发安全的模拟模型：每次WithTools返回一个记住工具名的副本，
// 按工具名返回预设参数并记录各角色收到的输入。
type orchestratorMockModel struct {
	mu         sync.Mutex
	argsByTool map[string]string
	errByTool  map[string]error
	inputs     map[string]string // 工具名 -> 用户消息
	boundTool  string
	parent     *orchestratorMockModel
}

func newOrchestratorMock(argsByTool map[string]string, errByTool map[string]error) *orchestratorMockModel {
	return &orchestratorMockModel{
		argsByTool: argsByTool,
		errByTool:  errByTool,
		inputs:     make(map[string]string),
	}
}

func (m *orchestratorMockModel) root() *orchestratorMockModel {
	if m.parent != nil {
		return m.parent
	}
	return m
}

func (m *orchestratorMockModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return &orchestratorMockModel{boundTool: tools[0].Name, parent: m.root()}, nil
}

func (m *orchestratorMockModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	root := m.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	for _, msg := range messages {
		if msg.Role == schema.User {
			root.inputs[m.boundTool] = msg.Content
		}
	}

	if err, ok := root.errByTool[m.boundTool]; ok {
		return nil, err
	}
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:       "call-1",
			Function: schema.FunctionCall{Name: m.boundTool, Arguments: root.argsByTool[m.boundTool]},
		}},
	}, nil
}

func (m *orchestratorMockModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

var fullAgentArgs = map[string]string{
	"extract_header_info":          `{"name": "John Smith", "title": "Senior Engineer"}`,
	"extract_professional_summary": `{"professionalSummary": ["Ten years of Go."], "summarySections": [{"title": "Highlights", "content": ["Shipped things"]}]}`,
	"extract_employment_history":   `{"employmentHistory": [{"companyName": "Acme", "roleName": "Engineer", "workPeriod": "Jan 2020 - Present"}]}`,
	"extract_education_history":    `{"education": [{"degree": "BS", "school": "State University", "date": "2012"}]}`,
	"extract_technical_skills":     `{"technicalSkills": {"Languages": "Go, Python"}, "skillCategories": [{"categoryName": "Languages", "skills": ["Go", "Python"]}]}`,
	"extract_certifications":       `{"certifications": [{"name": "AWS SA", "issuedBy": "Amazon"}]}`,
}

func TestOrchestratorProcessResume(t *testing.T) {
	mock := newOrchestratorMock(fullAgentArgs, nil)

	orchestrator, err := NewOrchestrator(mock)
	require.NoError(t, err)

	outcome, err := orchestrator.ProcessResume(context.Background(), sampleOrchestratorResume)
	require.NoError(t, err)
	require.NotNil(t, outcome.Record)
	assert.Empty(t, outcome.FailedAgents)
	assert.Len(t, outcome.AgentResults, 6)

	record := outcome.Record
	assert.Equal(t, "John Smith", record.Name)
	assert.Equal(t, "Senior Engineer", record.Title)
	assert.Equal(t, []string{"Ten years of Go."}, record.ProfessionalSummary)
	// 兼容字段跟随summarySections
	assert.Equal(t, record.SummarySections, record.Subsections)
	require.Len(t, record.EmploymentHistory, 1)
	assert.Equal(t, "Jan 2020 - Till Date", record.EmploymentHistory[0].WorkPeriod)
	require.Len(t, record.Education, 1)
	require.Len(t, record.Certifications, 1)
	assert.Equal(t, "AWS SA", record.Certifications[0].Name)
}

func TestOrchestratorInputPolicy(t *testing.T) {
	mock := newOrchestratorMock(fullAgentArgs, nil)

	orchestrator, err := NewOrchestrator(mock)
	require.NoError(t, err)

	_, err = orchestrator.ProcessResume(context.Background(), sampleOrchestratorResume)
	require.NoError(t, err)

	// certifications角色永远看到全文
	assert.Contains(t, mock.inputs["extract_certifications"], "PROFESSIONAL SUMMARY")
	assert.Contains(t, mock.inputs["extract_certifications"], "State University")

	// header角色是文档开头加header块
	assert.Contains(t, mock.inputs["extract_header_info"], "--- HEADER SECTION ---")

	// 其他角色只看到自己的章节块
	assert.Contains(t, mock.inputs["extract_professional_summary"], "Seasoned engineer")
	assert.NotContains(t, mock.inputs["extract_professional_summary"], "State University")
}

func TestOrchestratorFullTextFallback(t *testing.T) {
	mock := newOrchestratorMock(fullAgentArgs, nil)

	orchestrator, err := NewOrchestrator(mock)
	require.NoError(t, err)

	// 没有任何章节标题的文档：不报错，所有角色用全文
	raw := "just one paragraph of text that mentions nothing that would look like any heading at all"
	outcome, err := orchestrator.ProcessResume(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, outcome.FailedAgents)

	assert.Contains(t, mock.inputs["extract_professional_summary"], "just one paragraph")
	assert.Contains(t, mock.inputs["extract_employment_history"], "just one paragraph")
}

func TestOrchestratorPartialFailure(t *testing.T) {
	mock := newOrchestratorMock(fullAgentArgs, map[string]error{
		"extract_employment_history": assert.AnError,
	})

	orchestrator, err := NewOrchestrator(mock)
	require.NoError(t, err)

	outcome, err := orchestrator.ProcessResume(context.Background(), sampleOrchestratorResume)
	require.NoError(t, err)

	// 失败角色被记录
	require.Len(t, outcome.FailedAgents, 1)
	assert.True(t, strings.HasPrefix(outcome.FailedAgents[0], "experience:"))

	// 失败角色的字段保持默认，其他角色不受影响
	record := outcome.Record
	assert.Empty(t, record.EmploymentHistory)
	assert.NotNil(t, record.EmploymentHistory)
	assert.Equal(t, "John Smith", record.Name)
	require.Len(t, record.Certifications, 1)
}

func TestMergeAgentResultsDefaults(t *testing.T) {
	record := mergeAgentResults(nil)

	// 空结果也要有完整的形状，序列化后集合不为null
	assert.NotNil(t, record.ProfessionalSummary)
	assert.NotNil(t, record.EmploymentHistory)
	assert.NotNil(t, record.Education)
	assert.NotNil(t, record.Certifications)
	assert.NotNil(t, record.TechnicalSkills)
	assert.NotNil(t, record.SkillCategories)
	assert.Equal(t, "", record.Name)
}

const sampleOrchestratorResume = `John Smith
Senior Software Engineer

PROFESSIONAL SUMMARY
Seasoned engineer with a decade of platform work.

WORK EXPERIENCE
Acme Corp
Built distributed systems.

EDUCATION
BS Computer Science, State University
`
