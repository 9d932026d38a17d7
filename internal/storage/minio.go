package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"resume-agent-go/internal/config"
	"resume-agent-go/internal/logger"
	"resume-agent-go/internal/types"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadRawText 归档原始简历文本，返回对象key
	UploadRawText(ctx context.Context, extractionUUID string, text string) (string, error)

	// UploadRecordJSON 归档合并后的结构化记录，返回对象key
	UploadRecordJSON(ctx context.Context, extractionUUID string, record *types.ResumeRecord) (string, error)

	// GetRawText 读取归档的原始文本
	GetRawText(ctx context.Context, objectKey string) (string, error)

	// GetPresignedURL 获取对象的预签名URL
	GetPresignedURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error)
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 原始文本与抽取结果的对象归档
type MinIO struct {
	client        *minio.Client
	cfg           *config.MinIOConfig
	rawBucket     string
	recordsBucket string
	logger        zerolog.Logger
}

// NewMinIO 创建MinIO客户端并确保存储桶存在
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	rawBucket := cfg.RawTextBucket
	if rawBucket == "" {
		rawBucket = "resume-raw-text"
	}
	recordsBucket := cfg.RecordsBucket
	if recordsBucket == "" {
		recordsBucket = "resume-records"
	}

	m := &MinIO{
		client:        client,
		cfg:           cfg,
		rawBucket:     rawBucket,
		recordsBucket: recordsBucket,
		logger:        logger.Logger.With().Str("component", "minio").Logger(),
	}

	if err := m.ensureBucketExists(rawBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始文本存储桶 %s 存在失败: %w", rawBucket, err)
	}
	if err := m.ensureBucketExists(recordsBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保结果存储桶 %s 存在失败: %w", recordsBucket, err)
	}

	m.logger.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO客户端初始化完成")
	return m, nil
}

func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	return nil
}

// UploadRawText 归档原始简历文本
func (m *MinIO) UploadRawText(ctx context.Context, extractionUUID string, text string) (string, error) {
	objectKey := fmt.Sprintf("%s/raw.txt", extractionUUID)
	data := []byte(text)

	_, err := m.client.PutObject(ctx, m.rawBucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("上传原始文本失败: %w", err)
	}

	m.logger.Debug().Str("object_key", objectKey).Int("bytes", len(data)).Msg("原始文本已归档")
	return objectKey, nil
}

// UploadRecordJSON 归档合并后的结构化记录
func (m *MinIO) UploadRecordJSON(ctx context.Context, extractionUUID string, record *types.ResumeRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("记录不能为空")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("序列化记录失败: %w", err)
	}

	objectKey := fmt.Sprintf("%s/record.json", extractionUUID)
	_, err = m.client.PutObject(ctx, m.recordsBucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("上传记录JSON失败: %w", err)
	}

	m.logger.Debug().Str("object_key", objectKey).Msg("结构化记录已归档")
	return objectKey, nil
}

// GetRawText 读取归档的原始文本
func (m *MinIO) GetRawText(ctx context.Context, objectKey string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.rawBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("获取对象 %s 失败: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("读取对象 %s 失败: %w", objectKey, err)
	}
	return string(data), nil
}

// GetPresignedURL 获取对象的预签名URL
func (m *MinIO) GetPresignedURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return u.String(), nil
}

// RawBucket 原始文本存储桶名称
func (m *MinIO) RawBucket() string {
	return m.rawBucket
}

// RecordsBucket 结构化记录存储桶名称
func (m *MinIO) RecordsBucket() string {
	return m.recordsBucket
}
