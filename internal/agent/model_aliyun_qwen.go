package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"resume-agent-go/internal/logger"
)

const (
	// DashScope的OpenAI兼容端点
	openAICompatibleQwenAPIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultQwenModelName       = "qwen-plus"

	defaultRequestTimeout = 120 * time.Second
)

// --- OpenAI兼容的请求/响应结构 ---

type OpenAIFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type OpenAITool struct {
	Type     string         `json:"type"` // 固定为 "function"
	Function OpenAIFunction `json:"function"`
}

// OpenAIToolChoice 强制模型调用指定函数
type OpenAIToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

type OpenAIChatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	Tools       []OpenAITool      `json:"tools,omitempty"`
	ToolChoice  *OpenAIToolChoice `json:"tool_choice,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature *float32          `json:"temperature,omitempty"`
}

type OpenAIMessage struct {
	Role      string               `json:"role"`
	Content   *string              `json:"content"`
	ToolCalls []OpenAIToolCallData `json:"tool_calls,omitempty"`
}

type OpenAIToolCallData struct {
	Id       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type OpenAIChatChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type OpenAICompletionResponse struct {
	Id      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []OpenAIChatChoice `json:"choices"`
}

// AliyunQwenChatModel 通过OpenAI兼容API访问通义千问，
// 实现 model.ToolCallingChatModel 接口。
// 绑定恰好一个工具时会强制模型走该函数调用，保证输出符合schema。
type AliyunQwenChatModel struct {
	apiKey      string
	modelName   string
	apiURL      string
	maxTokens   int
	temperature *float32
	httpClient  *http.Client
	boundTools  []OpenAITool
	forcedTool  string
}

// NewAliyunQwenChatModel 创建通义千问模型客户端
func NewAliyunQwenChatModel(apiKey string, modelName string, apiURL string) (*AliyunQwenChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultQwenModelName
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = openAICompatibleQwenAPIURL
	}

	logger.Info().Str("api_url", apiURL).Str("model", modelName).Msg("初始化通义千问客户端")

	return &AliyunQwenChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

// SetMaxTokens 设置最大输出token数
func (aq *AliyunQwenChatModel) SetMaxTokens(n int) {
	aq.maxTokens = n
}

// SetTemperature 设置采样温度
func (aq *AliyunQwenChatModel) SetTemperature(t float32) {
	aq.temperature = &t
}

// WithTools 返回绑定了工具的新实例。原实例不变，
// 多个goroutine可以安全地基于同一个基础模型各自绑定。
func (aq *AliyunQwenChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	openAITools, err := convertToolInfos(tools)
	if err != nil {
		return nil, err
	}

	bound := *aq
	bound.boundTools = openAITools
	bound.forcedTool = ""
	if len(openAITools) == 1 {
		bound.forcedTool = openAITools[0].Function.Name
	}
	return &bound, nil
}

// convertToolInfos 把eino的工具描述转成OpenAI兼容格式。
// 参数schema通过ParamsOneOf导出为OpenAPI v3再序列化，支持任意嵌套。
func convertToolInfos(tools []*schema.ToolInfo) ([]OpenAITool, error) {
	openAITools := make([]OpenAITool, 0, len(tools))
	for _, toolInfo := range tools {
		if toolInfo == nil {
			continue
		}

		params := json.RawMessage(`{"type":"object","properties":{}}`)
		if toolInfo.ParamsOneOf != nil {
			openAPISchema, err := toolInfo.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return nil, fmt.Errorf("导出工具%s的参数schema失败: %w", toolInfo.Name, err)
			}
			raw, err := json.Marshal(openAPISchema)
			if err != nil {
				return nil, fmt.Errorf("序列化工具%s的参数schema失败: %w", toolInfo.Name, err)
			}
			params = raw
		}

		openAITools = append(openAITools, OpenAITool{
			Type: "function",
			Function: OpenAIFunction{
				Name:        toolInfo.Name,
				Description: toolInfo.Desc,
				Parameters:  params,
			},
		})
	}
	return openAITools, nil
}

// Generate 实现 model.BaseChatModel 接口
func (aq *AliyunQwenChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	reqPayload := OpenAIChatCompletionRequest{
		Model:       aq.modelName,
		Messages:    messages,
		MaxTokens:   aq.maxTokens,
		Temperature: aq.temperature,
	}

	if len(aq.boundTools) > 0 {
		reqPayload.Tools = aq.boundTools
		if aq.forcedTool != "" {
			choice := &OpenAIToolChoice{Type: "function"}
			choice.Function.Name = aq.forcedTool
			reqPayload.ToolChoice = choice
		}
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, aq.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+aq.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Ctx(ctx).Debug().
		Str("model", aq.modelName).
		Int("messages", len(messages)).
		Str("forced_tool", aq.forcedTool).
		Msg("调用通义千问")

	httpResp, err := aq.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var openAIResp OpenAICompletionResponse
	if err := json.Unmarshal(bodyBytes, &openAIResp); err != nil {
		return nil, fmt.Errorf("反序列化API响应失败: %w", err)
	}
	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("API返回空choices: %s", string(bodyBytes))
	}

	apiMessage := openAIResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	resultMessage := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: responseContent,
	}
	if resultMessage.Role == "" {
		resultMessage.Role = schema.Assistant
	}

	if len(apiMessage.ToolCalls) > 0 {
		resultMessage.ToolCalls = make([]schema.ToolCall, len(apiMessage.ToolCalls))
		for i, tc := range apiMessage.ToolCalls {
			resultMessage.ToolCalls[i] = schema.ToolCall{
				ID: tc.Id,
				Function: schema.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
	}

	return resultMessage, nil
}

// Stream 实现 model.BaseChatModel 接口。
// 抽取流程只消费终态结果，流式暂不支持。
func (aq *AliyunQwenChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("AliyunQwenChatModel的Stream方法未实现")
}

var _ model.ToolCallingChatModel = (*AliyunQwenChatModel)(nil)
