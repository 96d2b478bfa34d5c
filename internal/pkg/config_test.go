package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitCommon 测试 InitCommon 函数
func TestInitCommon(t *testing.T) {
	// 创建一个临时的配置文件目录
	tempDir := t.TempDir()

	// 在临时目录中创建一个测试用的配置文件
	configFilePath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
version: "1.0.0"
log:
  log_path: ./logs
  # MaxSize：在进行切割之前，日志文件的最大大小（以MB为单位）
  max_size: 512
  max_backups: 1000
  max_age: 365
  compress: true
  level: debug
device:
  instance: 1234
transport:
  url: 10.0.0.5:47808
  timeout: 20ms
engine:
  type: plugin
  path: ./engine.so
mutator:
  expression: "value * 2"
sink:
  - type: mqtt
    enable: true
    url: tcp://127.0.0.1:1883
    topic: bacgate
  - type: kafka
    enable: false
`
	err := os.WriteFile(configFilePath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("创建配置文件失败: %v", err)
	}

	// 调用 InitCommon 进行初始化
	config, err := InitCommon(tempDir)
	if err != nil {
		t.Fatalf("InitCommon 函数调用失败: %v", err)
	}

	// 验证配置项是否正确解析
	if config.Version != "1.0.0" {
		t.Errorf("期望版本为 '1.0.0'，但得到的是 %s", config.Version)
	}
	if config.Log.LogPath != "./logs" {
		t.Errorf("期望日志路径为 './logs'，但得到的是 %s", config.Log.LogPath)
	}
	if config.Log.MaxSize != 512 {
		t.Errorf("期望日志文件大小为 512 MB，但得到的是 %d", config.Log.MaxSize)
	}
	if config.Device.Instance != 1234 {
		t.Errorf("期望设备实例为 1234，但得到的是 %d", config.Device.Instance)
	}
	// key 分隔符为 ::, 地址中的 . 不会被拆开
	if config.Transport.Url != "10.0.0.5:47808" {
		t.Errorf("期望绑定地址为 '10.0.0.5:47808'，但得到的是 %s", config.Transport.Url)
	}
	if config.Transport.Timeout != 20*time.Millisecond {
		t.Errorf("期望接收超时为 20ms，但得到的是 %s", config.Transport.Timeout)
	}
	if config.Engine.Type != "plugin" || config.Engine.Path != "./engine.so" {
		t.Errorf("期望引擎为 plugin ./engine.so，但得到的是 %s %s", config.Engine.Type, config.Engine.Path)
	}
	if config.Mutator.Expression != "value * 2" {
		t.Errorf("期望表达式为 'value * 2'，但得到的是 %s", config.Mutator.Expression)
	}
	// 未覆盖的项保留默认值
	if config.Mutator.Interval != 5*time.Second {
		t.Errorf("期望修改周期默认为 5s，但得到的是 %s", config.Mutator.Interval)
	}
	if len(config.Sink) != 2 {
		t.Fatalf("期望 2 个 sink，但得到的是 %d", len(config.Sink))
	}
	if config.Sink[0].Para["topic"] != "bacgate" {
		t.Errorf("期望 sink 自定义配置项 topic 为 'bacgate'，但得到的是 %v", config.Sink[0].Para["topic"])
	}
}

// TestInitCommonDefaults 测试配置目录不存在时使用默认值
func TestInitCommonDefaults(t *testing.T) {
	config, err := InitCommon(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("InitCommon 函数调用失败: %v", err)
	}
	if config.Version != "0.0.1" {
		t.Errorf("期望默认版本为 '0.0.1'，但得到的是 %s", config.Version)
	}
	if config.Device.Instance != 389001 {
		t.Errorf("期望默认设备实例为 389001，但得到的是 %d", config.Device.Instance)
	}
	if config.Transport.Url != "192.168.68.109:47808" {
		t.Errorf("期望默认绑定地址为 '192.168.68.109:47808'，但得到的是 %s", config.Transport.Url)
	}
	if config.Transport.NetworkPort != 56 {
		t.Errorf("期望默认 NetworkPort 为 56，但得到的是 %d", config.Transport.NetworkPort)
	}
	if config.Mutator.ObjectType != "analog_input" || config.Mutator.Increment != 1.001 {
		t.Errorf("修改器默认值不正确: %+v", config.Mutator)
	}
	if config.Loop.Yield != time.Millisecond {
		t.Errorf("期望默认让出时间为 1ms，但得到的是 %s", config.Loop.Yield)
	}
}

// TestWithConfigAndConfigFromContext 测试 WithConfig 和 ConfigFromContext 函数
func TestWithConfigAndConfigFromContext(t *testing.T) {
	// 创建一个测试配置
	testConfig := &Config{
		Version: "1.0.0",
		Engine: EngineConfig{
			Type: "nop",
		},
	}

	// 将配置存入上下文
	ctxWithConfig := WithConfig(context.Background(), testConfig)

	// 从上下文中提取配置
	extractedConfig := ConfigFromContext(ctxWithConfig)

	if extractedConfig != testConfig {
		t.Errorf("期望提取到同一个配置指针")
	}
	if extractedConfig.Engine.Type != "nop" {
		t.Errorf("期望引擎类型为 'nop'，但得到的是 %s", extractedConfig.Engine.Type)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	tempDir := t.TempDir()

	// 在临时目录中创建一个与config不匹配的配置文件
	configFilePath := filepath.Join(tempDir, "invalid_config.yaml")
	invalidConfigContent := `
log:
  log_path: "/var/log/test.log"
  max_age: "not_a_number"
` // 无效的数据类型
	err := os.WriteFile(configFilePath, []byte(invalidConfigContent), 0644)
	if err != nil {
		t.Fatalf("创建配置文件失败: %v", err)
	}

	// 调用 InitCommon 进行初始化，预期会出错
	_, err = InitCommon(tempDir)
	if err == nil {
		t.Fatal("期望出现错误，但未得到错误")
	}

	expectedErr := "反序列化配置失败"
	if !strings.HasPrefix(err.Error(), expectedErr) {
		t.Errorf("期望错误信息为 '%s'，但得到的是 '%s'", expectedErr, err.Error())
	}
}

// TestInitCommonInvalidConfigFormat 测试 InitCommon 函数当配置文件格式错误时的处理
func TestInitCommonInvalidConfigFormat(t *testing.T) {
	tempDir := t.TempDir()

	// 在临时目录中创建一个格式错误的配置文件
	configFilePath := filepath.Join(tempDir, "invalid_config.yaml")
	invalidConfigContent := `
engine 
  type: "nop"
transport:
  url: "127.0.0.1:47808"
` // 缺少冒号
	err := os.WriteFile(configFilePath, []byte(invalidConfigContent), 0644)
	if err != nil {
		t.Fatalf("创建配置文件失败: %v", err)
	}

	// 调用 InitCommon 进行初始化，预期会出错
	_, err = InitCommon(tempDir)
	if err == nil {
		t.Fatal("期望出现错误，但未得到错误")
	}

	expectedErr := "读取配置文件失败"
	if !strings.HasPrefix(err.Error(), expectedErr) {
		t.Errorf("期望错误信息为 '%s'，但得到的是 '%s'", expectedErr, err.Error())
	}
}

// TestConfigFromContextWithoutConfig 测试在上下文中没有配置时的情况
func TestConfigFromContextWithoutConfig(t *testing.T) {
	extractedConfig := ConfigFromContext(context.Background())

	// 检查提取到的配置是否为默认值（空配置）
	if extractedConfig.Version != "" {
		t.Errorf("期望提取到的版本为空字符串，但得到的是 %s", extractedConfig.Version)
	}
	if extractedConfig.Engine.Type != "" {
		t.Errorf("期望引擎类型为空字符串，但得到的是 %s", extractedConfig.Engine.Type)
	}
}
