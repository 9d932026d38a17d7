package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/processor"
	"resume-agent-go/internal/storage"
	"resume-agent-go/internal/storage/models"
	"resume-agent-go/internal/types"
)

// mockExtractionService 记录入参并返回预设结果
type mockExtractionService struct {
	lastText    string
	lastChannel string
	result      *processor.ExtractionResult
	extractErr  error
	extraction  *models.ResumeExtraction
	getErr      error
}

func (m *mockExtractionService) ExtractResume(ctx context.Context, rawText string, sourceChannel string) (*processor.ExtractionResult, error) {
	m.lastText = rawText
	m.lastChannel = sourceChannel
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.result, nil
}

func (m *mockExtractionService) GetExtraction(ctx context.Context, extractionUUID string) (*models.ResumeExtraction, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.extraction, nil
}

func newTestEngine(service processor.ExtractionService) *route.Engine {
	h := NewResumeHandler(nil, service)
	engine := route.NewEngine(hertzconfig.NewOptions([]hertzconfig.Option{}))
	engine.POST("/api/v1/resume/extract", h.HandleExtract)
	engine.GET("/api/v1/resume/:uuid", h.HandleGetExtraction)
	return engine
}

func defaultResult() *processor.ExtractionResult {
	record := &types.ResumeRecord{}
	record.EnsureDefaults()
	record.Name = "李四"
	return &processor.ExtractionResult{
		ExtractionUUID: "11111111-2222-3333-4444-555555555555",
		Record:         record,
		FailedAgents:   []string{},
		Status:         constants.StatusCompleted,
	}
}

func TestHandleExtractJSONBody(t *testing.T) {
	mock := &mockExtractionService{result: defaultResult()}
	engine := newTestEngine(mock)

	body := `{"text":"李四\n工作经历\n...","source_channel":"crawler"}`
	w := ut.PerformRequest(engine, "POST", "/api/v1/resume/extract",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()

	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, "李四\n工作经历\n...", mock.lastText)
	assert.Equal(t, "crawler", mock.lastChannel)

	var result processor.ExtractionResult
	require.NoError(t, json.Unmarshal(resp.Body(), &result))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", result.ExtractionUUID)
	assert.Equal(t, constants.StatusCompleted, result.Status)
	assert.Equal(t, "李四", result.Record.Name)
}

func TestHandleExtractPlainTextBody(t *testing.T) {
	mock := &mockExtractionService{result: defaultResult()}
	engine := newTestEngine(mock)

	body := "李四\n教育经历\n..."
	w := ut.PerformRequest(engine, "POST", "/api/v1/resume/extract",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "text/plain"})
	resp := w.Result()

	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, body, mock.lastText)
	// 未提供来源渠道时使用默认值
	assert.Equal(t, "api", mock.lastChannel)
}

func TestHandleExtractEmptyText(t *testing.T) {
	mock := &mockExtractionService{extractErr: processor.ErrEmptyResumeText}
	engine := newTestEngine(mock)

	body := `{"text":""}`
	w := ut.PerformRequest(engine, "POST", "/api/v1/resume/extract",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})

	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestHandleExtractBadJSON(t *testing.T) {
	mock := &mockExtractionService{result: defaultResult()}
	engine := newTestEngine(mock)

	body := `{"text": not-json`
	w := ut.PerformRequest(engine, "POST", "/api/v1/resume/extract",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})

	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestHandleGetExtraction(t *testing.T) {
	record := &types.ResumeRecord{}
	record.EnsureDefaults()
	record.Name = "王五"
	recordJSON, err := json.Marshal(record)
	require.NoError(t, err)
	failedJSON, err := models.StringsToJSON([]string{"skills"})
	require.NoError(t, err)

	mock := &mockExtractionService{
		extraction: &models.ResumeExtraction{
			ExtractionUUID:   "aaaa-bbbb",
			SourceChannel:    "api",
			RecordJSON:       recordJSON,
			FailedAgentsJSON: failedJSON,
			Status:           constants.StatusPartial,
			ElapsedMs:        1234,
			CreatedAt:        time.Now(),
		},
	}
	engine := newTestEngine(mock)

	w := ut.PerformRequest(engine, "GET", "/api/v1/resume/aaaa-bbbb", nil)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var detail ExtractionDetailResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &detail))
	assert.Equal(t, "aaaa-bbbb", detail.ExtractionUUID)
	assert.Equal(t, constants.StatusPartial, detail.Status)
	assert.Equal(t, []string{"skills"}, detail.FailedAgents)
	require.NotNil(t, detail.Record)
	assert.Equal(t, "王五", detail.Record.Name)
}

func TestHandleGetExtractionNotFound(t *testing.T) {
	mock := &mockExtractionService{getErr: storage.ErrExtractionNotFound}
	engine := newTestEngine(mock)

	w := ut.PerformRequest(engine, "GET", "/api/v1/resume/missing-uuid", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestHandleGetExtractionNoStorage(t *testing.T) {
	mock := &mockExtractionService{getErr: processor.ErrStorageNotInit}
	engine := newTestEngine(mock)

	w := ut.PerformRequest(engine, "GET", "/api/v1/resume/any-uuid", nil)
	assert.Equal(t, 503, w.Result().StatusCode())
}
