package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-agent-go/internal/config"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/processor"
	"resume-agent-go/internal/storage"
	"resume-agent-go/internal/types"
)

// ResumeHandler 简历抽取API处理器
type ResumeHandler struct {
	cfg     *config.Config
	service processor.ExtractionService
}

// NewResumeHandler 创建简历抽取API处理器
func NewResumeHandler(cfg *config.Config, service processor.ExtractionService) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		service: service,
	}
}

// ExtractRequest JSON请求体
type ExtractRequest struct {
	Text          string `json:"text"`
	SourceChannel string `json:"source_channel"`
}

// ExtractionDetailResponse 按UUID查询的响应
type ExtractionDetailResponse struct {
	ExtractionUUID string              `json:"extractionUuid"`
	SourceChannel  string              `json:"sourceChannel"`
	Status         string              `json:"status"`
	FailedAgents   []string            `json:"failedAgents"`
	ElapsedMs      int64               `json:"elapsedMs"`
	Record         *types.ResumeRecord `json:"record"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// HandleExtract 处理简历文本抽取请求。
// 依次尝试三种输入形式：multipart文本文件、表单text字段、JSON或纯文本body。
func (h *ResumeHandler) HandleExtract(c context.Context, ctx *app.RequestContext) {
	text, sourceChannel, err := h.readExtractInput(ctx)
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}
	if sourceChannel == "" {
		sourceChannel = "api"
	}

	result, err := h.service.ExtractResume(c, text, sourceChannel)
	if err != nil {
		if errors.Is(err, processor.ErrEmptyResumeText) {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "简历文本不能为空"})
			return
		}
		logger.Error().Err(err).Msg("简历抽取失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "简历抽取失败"})
		return
	}

	ctx.JSON(consts.StatusOK, result)
}

// HandleGetExtraction 按UUID查询抽取记录
func (h *ResumeHandler) HandleGetExtraction(c context.Context, ctx *app.RequestContext) {
	extractionUUID := ctx.Param("uuid")
	if extractionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少uuid参数"})
		return
	}

	extraction, err := h.service.GetExtraction(c, extractionUUID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrExtractionNotFound):
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "抽取记录不存在"})
		case errors.Is(err, processor.ErrStorageNotInit):
			ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "存储未配置，无法查询历史记录"})
		default:
			logger.Error().Err(err).Str("uuid", extractionUUID).Msg("查询抽取记录失败")
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询抽取记录失败"})
		}
		return
	}

	resp := &ExtractionDetailResponse{
		ExtractionUUID: extraction.ExtractionUUID,
		SourceChannel:  extraction.SourceChannel,
		Status:         extraction.Status,
		FailedAgents:   []string{},
		ElapsedMs:      extraction.ElapsedMs,
		CreatedAt:      extraction.CreatedAt,
	}
	if record, err := storage.DecodeRecord(extraction); err == nil {
		resp.Record = record
	} else {
		logger.Warn().Err(err).Str("uuid", extractionUUID).Msg("解析落库记录失败")
	}
	if len(extraction.FailedAgentsJSON) > 0 {
		var failed []string
		if err := json.Unmarshal(extraction.FailedAgentsJSON, &failed); err == nil && failed != nil {
			resp.FailedAgents = failed
		}
	}

	ctx.JSON(consts.StatusOK, resp)
}

// readExtractInput 从请求中取出简历文本和来源渠道
func (h *ResumeHandler) readExtractInput(ctx *app.RequestContext) (string, string, error) {
	// multipart文本文件
	if fileHeader, err := ctx.FormFile("file"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return "", "", errors.New("打开上传文件失败")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", "", errors.New("读取上传文件失败")
		}
		return string(data), ctx.PostForm("source_channel"), nil
	}

	// 表单字段
	if text := ctx.PostForm("text"); text != "" {
		return text, ctx.PostForm("source_channel"), nil
	}

	body := ctx.Request.Body()
	contentType := string(ctx.ContentType())

	// JSON请求体
	if strings.Contains(contentType, "application/json") {
		var req ExtractRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", "", errors.New("解析JSON请求体失败")
		}
		return req.Text, req.SourceChannel, nil
	}

	// 纯文本body
	return string(body), "", nil
}
