package pkg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// LogConfig 日志相关配置
type LogConfig struct {
	LogPath    string `mapstructure:"log_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level"`
}

// DeviceConfig 本机 BACnet 设备
type DeviceConfig struct {
	Instance uint32 `mapstructure:"instance"` // 设备实例号, 同时是所有对象的根标识
}

// TransportConfig BACnet/IP 传输层配置
type TransportConfig struct {
	Url         string        `mapstructure:"url"`         // 本地绑定地址, 例如 192.168.68.109:47808
	Timeout     time.Duration `mapstructure:"timeout"`     // 单次接收的等待上限
	NetworkPort uint32        `mapstructure:"networkPort"` // 提供子网掩码的 NetworkPort 对象实例
}

// EngineConfig 协议引擎配置
type EngineConfig struct {
	Type string `mapstructure:"type"` // nop|plugin
	Path string `mapstructure:"path"` // plugin 类型时的 .so 路径
}

// MutatorConfig 周期性修改器配置, 用于模拟传感器读数
type MutatorConfig struct {
	ObjectType string        `mapstructure:"objectType"` // 例如 analog_input
	Instance   uint32        `mapstructure:"instance"`
	Interval   time.Duration `mapstructure:"interval"`
	Increment  float32       `mapstructure:"increment"`
	Expression string        `mapstructure:"expression"` // 可选, expr 表达式, 变量 value 为当前值
}

// LoopConfig 主循环配置
type LoopConfig struct {
	Yield time.Duration `mapstructure:"yield"` // 每轮结束时让出的时间
}

// AdminConfig 管理接口配置
type AdminConfig struct {
	Enable bool   `mapstructure:"enable"`
	Url    string `mapstructure:"url"`
}

// SinkConfig 变更事件的下游配置
type SinkConfig struct {
	Type   string                 `mapstructure:"type"`    // 类型
	Enable bool                   `mapstructure:"enable"`  // 是否启用
	Para   map[string]interface{} `mapstructure:",remain"` // 自定义配置项
}

type Config struct {
	Version   string          `mapstructure:"version"`
	Log       LogConfig       `mapstructure:"log"`
	Device    DeviceConfig    `mapstructure:"device"`
	Transport TransportConfig `mapstructure:"transport"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Mutator   MutatorConfig   `mapstructure:"mutator"`
	Loop      LoopConfig      `mapstructure:"loop"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Sink      []SinkConfig    `mapstructure:"sink"`
}

// setDefaults 与原示例程序的编译期常量保持一致
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "0.0.1")
	v.SetDefault("log::log_path", "./logs/bacgate.log")
	v.SetDefault("log::max_size", 64)
	v.SetDefault("log::max_backups", 10)
	v.SetDefault("log::max_age", 30)
	v.SetDefault("log::compress", false)
	v.SetDefault("log::level", "info")
	v.SetDefault("device::instance", 389001)
	v.SetDefault("transport::url", "192.168.68.109:47808")
	v.SetDefault("transport::timeout", "50ms")
	v.SetDefault("transport::networkPort", 56)
	v.SetDefault("engine::type", "nop")
	v.SetDefault("mutator::objectType", "analog_input")
	v.SetDefault("mutator::instance", 0)
	v.SetDefault("mutator::interval", "5s")
	v.SetDefault("mutator::increment", 1.001)
	v.SetDefault("loop::yield", "1ms")
	v.SetDefault("admin::enable", false)
	v.SetDefault("admin::url", "127.0.0.1:8089")
}

// InitCommon 用于初始化全局配置
// 目录不存在时仅使用默认值
func InitCommon(configDir string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::")) // 设置 key 分隔符为 ::，因为默认的 . 会和 IP 地址冲突
	setDefaults(v)
	v.AddConfigPath(configDir)
	v.AutomaticEnv() // 读取环境变量
	// 遍历配置目录及其子目录中的所有文件
	err := filepath.WalkDir(configDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("访问路径 %s 失败: %w", filePath, err)
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(filePath)
		// 只处理 .yaml 或 .yml 文件
		if ext == ".yaml" || ext == ".yml" {
			v.SetConfigFile(filePath)
			// 读取并合并配置文件 (会覆盖之前的配置)
			if err := v.MergeInConfig(); err != nil {
				return fmt.Errorf("读取配置文件失败 %s: %w", filePath, err)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var common Config
	// 反序列化到结构体
	if err := v.Unmarshal(&common); err != nil {
		return nil, fmt.Errorf("反序列化配置失败: %w", err)
	}
	return &common, nil
}

type configKey struct{}

// WithConfig 将配置挂载到 context 上
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// ConfigFromContext 从 context 中提取配置指针, 不存在时返回空配置
func ConfigFromContext(ctx context.Context) *Config {
	if config, ok := ctx.Value(configKey{}).(*Config); ok {
		return config
	}
	return &Config{}
}
