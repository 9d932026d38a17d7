package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	einoschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAliyunQwenChatModel(t *testing.T) {
	_, err := NewAliyunQwenChatModel("", "qwen-plus", "")
	assert.Error(t, err)

	m, err := NewAliyunQwenChatModel("test-key", "", "")
	require.NoError(t, err)
	assert.Equal(t, defaultQwenModelName, m.modelName)
	assert.Equal(t, openAICompatibleQwenAPIURL, m.apiURL)
}

func TestWithToolsForcesSingleTool(t *testing.T) {
	base, err := NewAliyunQwenChatModel("test-key", "qwen-plus", "")
	require.NoError(t, err)

	toolInfo := &einoschema.ToolInfo{
		Name: "extract_header_info",
		Desc: "Extract header fields",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"name": {Type: einoschema.String, Desc: "Candidate name"},
		}),
	}

	bound, err := base.WithTools([]*einoschema.ToolInfo{toolInfo})
	require.NoError(t, err)

	boundQwen, ok := bound.(*AliyunQwenChatModel)
	require.True(t, ok)
	require.Len(t, boundQwen.boundTools, 1)
	assert.Equal(t, "extract_header_info", boundQwen.forcedTool)

	// 原实例不受绑定影响
	assert.Empty(t, base.boundTools)
	assert.Empty(t, base.forcedTool)

	// 参数schema序列化后包含字段定义
	var params map[string]any
	require.NoError(t, json.Unmarshal(boundQwen.boundTools[0].Function.Parameters, &params))
	assert.Equal(t, "object", params["type"])
}

func TestGenerateSendsToolChoiceAndParsesToolCall(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp-1",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [{
						"id": "call-1",
						"type": "function",
						"function": {"name": "extract_header_info", "arguments": "{\"name\": \"Jane\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}]
		}`))
	}))
	defer server.Close()

	base, err := NewAliyunQwenChatModel("test-key", "qwen-plus", server.URL)
	require.NoError(t, err)

	toolInfo := &einoschema.ToolInfo{
		Name: "extract_header_info",
		Desc: "Extract header fields",
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"name": {Type: einoschema.String},
		}),
	}
	bound, err := base.WithTools([]*einoschema.ToolInfo{toolInfo})
	require.NoError(t, err)

	resp, err := bound.Generate(context.Background(), []*einoschema.Message{
		einoschema.SystemMessage("system"),
		einoschema.UserMessage("John Smith"),
	})
	require.NoError(t, err)

	// 请求里带了工具定义和强制tool_choice
	var req OpenAIChatCompletionRequest
	require.NoError(t, json.Unmarshal(gotBody, &req))
	require.Len(t, req.Tools, 1)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, "function", req.ToolChoice.Type)
	assert.Equal(t, "extract_header_info", req.ToolChoice.Function.Name)

	// 响应里的工具调用被转换
	assert.Equal(t, einoschema.Assistant, resp.Role)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "extract_header_info", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"name": "Jane"}`, resp.ToolCalls[0].Function.Arguments)
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	m, err := NewAliyunQwenChatModel("test-key", "qwen-plus", server.URL)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*einoschema.Message{einoschema.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
