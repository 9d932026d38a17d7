package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-agent-go/internal/config"
	"resume-agent-go/internal/constants"
	"resume-agent-go/internal/extractor"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/storage"
	"resume-agent-go/internal/storage/models"
	"resume-agent-go/internal/tracing"
	"resume-agent-go/internal/types"
	"resume-agent-go/pkg/utils"
)

var (
	// ErrEmptyResumeText 输入文本为空
	ErrEmptyResumeText = errors.New("resume text is empty")
	// ErrStorageNotInit 需要存储的操作在无存储时被调用
	ErrStorageNotInit = errors.New("storage is not initialized")
)

var tracer = otel.Tracer("resume-agent-go/processor")

// ResumeOrchestrator 抽取编排器的最小接口，便于测试替换
type ResumeOrchestrator interface {
	ProcessResume(ctx context.Context, rawText string) (*extractor.ExtractionOutcome, error)
}

// ExtractionResult 一次抽取请求的服务层结果
type ExtractionResult struct {
	ExtractionUUID string              `json:"extractionUuid"`
	Record         *types.ResumeRecord `json:"record"`
	FailedAgents   []string            `json:"failedAgents"`
	Status         string              `json:"status"`
	FromCache      bool                `json:"fromCache"`
	ElapsedMs      int64               `json:"elapsedMs"`
}

// ExtractionService 简历抽取服务接口
type ExtractionService interface {
	// ExtractResume 对原始文本执行抽取，带缓存、落库、归档和事件发布
	ExtractResume(ctx context.Context, rawText string, sourceChannel string) (*ExtractionResult, error)

	// GetExtraction 按UUID查询落库的抽取记录
	GetExtraction(ctx context.Context, extractionUUID string) (*models.ResumeExtraction, error)
}

// extractionServiceImpl 持有编排器和可选的存储依赖。
// 存储组件缺失时抽取仍然工作，只是结果不持久化。
type extractionServiceImpl struct {
	orchestrator ResumeOrchestrator
	storage      *storage.Storage
	config       *config.Config
	logger       zerolog.Logger
}

// NewExtractionService 创建抽取服务
func NewExtractionService(orchestrator ResumeOrchestrator, storageManager *storage.Storage, cfg *config.Config) (ExtractionService, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator不能为空")
	}
	return &extractionServiceImpl{
		orchestrator: orchestrator,
		storage:      storageManager,
		config:       cfg,
		logger:       logger.Logger.With().Str("component", "extraction_service").Logger(),
	}, nil
}

// ExtractResume 实现ExtractionService接口
func (s *extractionServiceImpl) ExtractResume(ctx context.Context, rawText string, sourceChannel string) (*ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "ExtractResume", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		tracing.RecordError(span, ErrEmptyResumeText, tracing.ErrorTypeValidation)
		return nil, ErrEmptyResumeText
	}

	textMD5 := utils.CalculateMD5([]byte(rawText))
	span.SetAttributes(
		attribute.String("resume.text_md5", textMD5),
		attribute.Int("resume.raw_chars", len(rawText)),
		attribute.String("resume.preview", tracing.SafeResumeContent(rawText)),
		attribute.String("source_channel", sourceChannel),
	)

	log := s.logger.With().Str("text_md5", textMD5).Logger()

	// 缓存命中直接返回，不再打模型
	if cached := s.lookupCache(ctx, textMD5); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "cache hit")
		log.Info().Msg("命中抽取结果缓存")
		return cached, nil
	}

	seen := s.markTextSeen(ctx, textMD5)
	if seen {
		// 指纹已存在但缓存过期，照常重新抽取
		log.Debug().Msg("文本指纹已存在，缓存已过期，重新抽取")
	}

	start := time.Now()
	outcome, err := s.orchestrator.ProcessResume(ctx, rawText)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, fmt.Errorf("抽取失败: %w", err)
	}
	elapsed := time.Since(start).Milliseconds()

	extractionUUID := newExtractionUUID()
	status := extractionStatus(outcome)
	span.SetAttributes(
		attribute.String("extraction.uuid", extractionUUID),
		attribute.String("extraction.status", status),
		attribute.Int("extraction.failed_agents", len(outcome.FailedAgents)),
	)

	result := &ExtractionResult{
		ExtractionUUID: extractionUUID,
		Record:         outcome.Record,
		FailedAgents:   outcome.FailedAgents,
		Status:         status,
		ElapsedMs:      elapsed,
	}
	if result.FailedAgents == nil {
		result.FailedAgents = []string{}
	}

	// 持久化与事件发布都是尽力而为，失败只告警不影响返回
	s.persistResult(ctx, span, rawText, textMD5, sourceChannel, result)

	log.Info().
		Str("extraction_uuid", extractionUUID).
		Str("status", status).
		Int64("elapsed_ms", elapsed).
		Msg("抽取完成")
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// GetExtraction 实现ExtractionService接口
func (s *extractionServiceImpl) GetExtraction(ctx context.Context, extractionUUID string) (*models.ResumeExtraction, error) {
	if s.storage == nil || s.storage.MySQL == nil {
		return nil, ErrStorageNotInit
	}
	return s.storage.MySQL.GetExtractionByUUID(ctx, extractionUUID)
}

// lookupCache 按原文MD5查缓存，命中时带回历史UUID
func (s *extractionServiceImpl) lookupCache(ctx context.Context, textMD5 string) *ExtractionResult {
	if s.storage == nil || s.storage.Redis == nil {
		return nil
	}

	record, err := s.storage.Redis.GetCachedRecord(ctx, textMD5)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("查询结果缓存失败")
		}
		return nil
	}

	result := &ExtractionResult{
		Record:       record,
		FailedAgents: []string{},
		Status:       constants.StatusCompleted,
		FromCache:    true,
	}
	if uuidStr, err := s.storage.Redis.GetUUIDByTextMD5(ctx, textMD5); err == nil {
		result.ExtractionUUID = uuidStr
	}
	return result
}

// markTextSeen 把文本指纹写入去重集合，返回此前是否已存在
func (s *extractionServiceImpl) markTextSeen(ctx context.Context, textMD5 string) bool {
	if s.storage == nil || s.storage.Redis == nil {
		return false
	}
	seen, err := s.storage.Redis.CheckAndAddTextMD5(ctx, textMD5)
	if err != nil {
		s.logger.Warn().Err(err).Msg("写入去重指纹失败")
		return false
	}
	return seen
}

// persistResult 归档原文、落库记录、写缓存并发布事件
func (s *extractionServiceImpl) persistResult(ctx context.Context, span trace.Span, rawText, textMD5, sourceChannel string, result *ExtractionResult) {
	if s.storage == nil {
		return
	}

	var rawObjectKey string
	if s.storage.MinIO != nil {
		key, err := s.storage.MinIO.UploadRawText(ctx, result.ExtractionUUID, rawText)
		if err != nil {
			s.logger.Warn().Err(err).Msg("归档原始文本失败")
			tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		} else {
			rawObjectKey = key
		}

		if _, err := s.storage.MinIO.UploadRecordJSON(ctx, result.ExtractionUUID, result.Record); err != nil {
			s.logger.Warn().Err(err).Msg("归档结构化记录失败")
		}
	}

	if s.storage.MySQL != nil {
		if err := s.saveToMySQL(ctx, textMD5, rawObjectKey, sourceChannel, result); err != nil {
			s.logger.Warn().Err(err).Msg("抽取记录落库失败")
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
		}
	}

	if s.storage.Redis != nil {
		ttl := constants.DefaultRecordCacheTTL
		if s.config != nil {
			ttl = s.config.RecordCacheTTL()
		}
		if err := s.storage.Redis.CacheRecord(ctx, textMD5, result.ExtractionUUID, result.Record, ttl); err != nil {
			s.logger.Warn().Err(err).Msg("写结果缓存失败")
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		}
	}

	if s.storage.RabbitMQ != nil {
		event := &storage.ExtractionCompletedEvent{
			ExtractionUUID: result.ExtractionUUID,
			RawTextMD5:     textMD5,
			Status:         result.Status,
			FailedAgents:   result.FailedAgents,
		}
		if err := s.storage.RabbitMQ.PublishExtractionCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("发布抽取完成事件失败")
			tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		}
	}
}

// saveToMySQL 把抽取结果写入关系库
func (s *extractionServiceImpl) saveToMySQL(ctx context.Context, textMD5, rawObjectKey, sourceChannel string, result *ExtractionResult) error {
	recordJSON, err := json.Marshal(result.Record)
	if err != nil {
		return fmt.Errorf("序列化记录失败: %w", err)
	}
	failedJSON, err := models.StringsToJSON(result.FailedAgents)
	if err != nil {
		return fmt.Errorf("序列化失败角色列表失败: %w", err)
	}

	extraction := &models.ResumeExtraction{
		ExtractionUUID:   result.ExtractionUUID,
		SourceChannel:    sourceChannel,
		RawTextMD5:       textMD5,
		RawTextObjectKey: rawObjectKey,
		RecordJSON:       recordJSON,
		FailedAgentsJSON: failedJSON,
		Status:           result.Status,
		ElapsedMs:        result.ElapsedMs,
	}
	return s.storage.MySQL.SaveExtraction(ctx, extraction)
}

// extractionStatus 按失败角色数量判定整体状态
func extractionStatus(outcome *extractor.ExtractionOutcome) string {
	switch {
	case len(outcome.FailedAgents) == 0:
		return constants.StatusCompleted
	case len(outcome.FailedAgents) >= len(types.AllAgentTypes()):
		return constants.StatusFailed
	default:
		return constants.StatusPartial
	}
}

func newExtractionUUID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// NewV4只在系统随机源不可用时失败
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return id.String()
}
