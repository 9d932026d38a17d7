package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"resume-agent-go/internal/agent"
	"resume-agent-go/internal/api/handler"
	"resume-agent-go/internal/api/router"
	"resume-agent-go/internal/config"
	"resume-agent-go/internal/extractor"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/parser"
	"resume-agent-go/internal/processor"
	"resume-agent-go/internal/storage"
	"resume-agent-go/internal/tracing"
	"resume-agent-go/pkg/ratelimit"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径")
	pflag.Parse()

	// 1. 加载配置文件
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置文件失败")
	}

	initLogger(cfg)

	// 2. 初始化链路追踪
	ctx := context.Background()
	shutdownTracer, err := tracing.InitTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	// 3. 初始化存储管理器
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	// 4. 初始化抽取服务
	extractionService, err := initializeService(cfg, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化抽取服务失败")
	}
	logger.Info().Msg("抽取服务初始化成功")

	// 5. 创建HTTP服务器，接入服务端追踪中间件
	serverTracer, serverTracerCfg := hertztracing.NewServerTracer()
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		serverTracer,
	)
	h.Use(hertztracing.ServerMiddleware(serverTracerCfg))

	// 6. 注册路由
	resumeHandler := handler.NewResumeHandler(cfg, extractionService)
	router.RegisterRoutes(h, resumeHandler, cfg.Server.APIKey)

	// 7. 启动HTTP服务器
	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	// 8. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("优雅退出完成")
}

// initLogger 按配置初始化日志，并把hertz自身的日志接到同一套zerolog上
func initLogger(cfg *config.Config) {
	logConfig := logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	}
	if logConfig.Level == "" {
		logConfig.Level = "info"
	}
	if logConfig.TimeFormat == "" {
		logConfig.TimeFormat = time.RFC3339
	}
	logger.Init(logConfig)

	logger.Logger = logger.Logger.With().
		Str("app", "resume-agent-go").
		Logger()

	hlog.SetLogger(hertzzerolog.From(logger.Logger))
}

// initializeService 组装模型、限流代理、编排器和抽取服务
func initializeService(cfg *config.Config, storageManager *storage.Storage) (processor.ExtractionService, error) {
	modelName := cfg.GetModelForTask("resume_extraction")
	chatModel, err := agent.NewAliyunQwenChatModel(
		cfg.Aliyun.APIKey,
		modelName,
		cfg.Aliyun.APIURL,
	)
	if err != nil {
		return nil, err
	}

	// 六个角色agent共享同一个限流桶
	limitedModel := ratelimit.NewLLMWithRateLimit(
		chatModel,
		modelName,
		cfg.ModelQPMLimits,
		cfg.Extractor.QPM,
		cfg.Extractor.MaxRetries,
		time.Duration(cfg.Extractor.RetryWaitSeconds)*time.Second,
	)

	detector := parser.NewSectionDetector(
		parser.WithMaxHeadingLength(cfg.Extractor.MaxHeadingLength),
		parser.WithDedupeWindow(cfg.Extractor.DedupeWindow),
		parser.WithSearchWindow(cfg.Extractor.SearchWindow),
	)
	chunker := parser.NewSectionChunker(parser.WithDetector(detector))

	orchestrator, err := extractor.NewOrchestrator(
		limitedModel,
		extractor.WithChunker(chunker),
		extractor.WithHeaderContextLength(cfg.Extractor.HeaderContextLength),
	)
	if err != nil {
		return nil, err
	}

	return processor.NewExtractionService(orchestrator, storageManager, cfg)
}
