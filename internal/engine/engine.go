package engine

import (
	"context"
	"fmt"
	"sort"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

// Engine 是外部 BACnet 协议栈的边界
// 协议栈负责 APDU/NPDU 编解码与服务处理, 通过 Callbacks 访问传输层与对象库
type Engine interface {
	Version() string
	AddDevice(instance uint32) bool
	AddObject(device uint32, objectType object.ObjectType, instance uint32) bool
	SetPropertyEnabled(device uint32, objectType object.ObjectType, instance uint32, property object.PropertyID, enabled bool) bool
	SetPropertyByObjectTypeEnabled(device uint32, objectType object.ObjectType, property object.PropertyID, enabled bool) bool
	SetServiceEnabled(device uint32, service object.Service, enabled bool) bool
	RegisterCallbacks(callbacks *Callbacks) error
	ValueUpdated(device uint32, objectType object.ObjectType, instance uint32, property object.PropertyID)
	// Loop 执行一次协议栈处理, 由主循环每轮调用一次, 不得阻塞
	Loop()
}

// FactoryFunc 代表一个协议引擎的工厂函数
type FactoryFunc func(ctx context.Context) (Engine, error)

// Factories 全局工厂映射，用于注册不同引擎类型的构造函数
var Factories = make(map[string]FactoryFunc)

// Register 注册一个协议引擎
func Register(engineType string, factory FactoryFunc) {
	Factories[engineType] = factory
}

// New 按配置中的 engine::type 创建协议引擎
var New = func(ctx context.Context) (Engine, error) {
	config := pkg.ConfigFromContext(ctx)
	// 记录可用的工厂类型
	factoryTypes := make([]string, 0, len(Factories))
	for key := range Factories {
		factoryTypes = append(factoryTypes, key)
	}
	sort.Strings(factoryTypes)
	pkg.LoggerFromContext(ctx).Debug("Engine Factory:", zap.Strings("Factories", factoryTypes))

	factory, ok := Factories[config.Engine.Type]
	if !ok {
		return nil, fmt.Errorf("未找到协议引擎类型: %q", config.Engine.Type)
	}
	e, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化协议引擎 %s 失败: %w", config.Engine.Type, err)
	}
	pkg.LoggerFromContext(ctx).Info(fmt.Sprintf("===协议引擎已创建: %s===", config.Engine.Type), zap.String("version", e.Version()))
	return e, nil
}
