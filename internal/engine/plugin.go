package engine

import (
	"context"
	"errors"
	"fmt"
	"plugin"

	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

func init() {
	Register("plugin", NewPluginEngine)
}

// PluginSymbol 协议栈插件必须导出的构造函数名
const PluginSymbol = "NewEngine"

var ErrEngineSymbol = errors.New("engine plugin symbol")

// NewPluginEngine 从 engine::path 加载 Go 插件形式的协议栈
// 插件需导出 func NewEngine(context.Context) (engine.Engine, error)
func NewPluginEngine(ctx context.Context) (Engine, error) {
	log := pkg.LoggerFromContext(ctx)
	path := pkg.ConfigFromContext(ctx).Engine.Path
	if path == "" {
		return nil, fmt.Errorf("plugin 引擎需要配置 engine::path")
	}
	p, err := plugin.Open(path)
	if err != nil {
		log.Error("加载协议栈插件失败", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("加载协议栈插件 %s 失败: %w", path, err)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s 未导出 %s: %v", ErrEngineSymbol, path, PluginSymbol, err)
	}
	factory, ok := sym.(func(context.Context) (Engine, error))
	if !ok {
		return nil, fmt.Errorf("%w: %s 的类型为 %T", ErrEngineSymbol, PluginSymbol, sym)
	}
	log.Info("协议栈插件已加载", zap.String("path", path))
	return factory(ctx)
}
