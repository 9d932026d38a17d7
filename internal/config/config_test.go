package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证YAML文件能被正确加载并补齐默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "yaml_key"
  model: "qwen-max"
  task_models:
    resume_extraction: "qwen-plus"
server:
  address: ":9090"
extractor:
  max_heading_length: 60
  qpm: 120
model_qpm_limits:
  qwen-plus: 15000
  qwen-max: 1200
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "qwen-max", config.Aliyun.Model)
	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, 60, config.Extractor.MaxHeadingLength)
	assert.Equal(t, 120, config.Extractor.QPM)
	assert.Equal(t, 15000, config.ModelQPMLimits["qwen-plus"])

	// 未配置的字段拿到默认值
	assert.Equal(t, "resume.events.exchange", config.RabbitMQ.ResumeEventsExchange)
	assert.Equal(t, "resume.extracted", config.RabbitMQ.ExtractedRoutingKey)
	assert.Equal(t, 3, config.Extractor.MaxRetries)
	assert.Equal(t, 24*time.Hour, config.RecordCacheTTL())
}

// TestLoadConfigEnvOverride 验证环境变量覆盖文件中的密钥
func TestLoadConfigEnvOverride(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "yaml_key"
`
	tmpDir, err := os.MkdirTemp("", "config-test-env")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	t.Setenv("ALIYUN_API_KEY", "env_key")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "env_key", config.Aliyun.APIKey)
}

func TestGetModelForTask(t *testing.T) {
	config := createDefaultConfig()
	config.Aliyun.Model = "qwen-plus"
	config.Aliyun.TaskModels = map[string]string{
		"resume_extraction": "qwen-max",
	}

	assert.Equal(t, "qwen-max", config.GetModelForTask("resume_extraction"))
	assert.Equal(t, "qwen-plus", config.GetModelForTask("unknown_task"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("5s", time.Second))
	assert.Equal(t, time.Second, GetDuration("", time.Second))
	assert.Equal(t, time.Second, GetDuration("not-a-duration", time.Second))
}
