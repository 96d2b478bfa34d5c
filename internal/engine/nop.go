package engine

import (
	"context"
	"fmt"
	"sync"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

func init() {
	Register("nop", NewNopEngine)
}

const nopVersion = "nop-1.0.0"

// PropertyToggle 一次属性启用登记
type PropertyToggle struct {
	ObjectType object.ObjectType
	Instance   uint32 // 按类型登记时无意义
	ByType     bool
	Property   object.PropertyID
	Enabled    bool
}

// Registration 记录启动期向引擎登记的全部内容
type Registration struct {
	Devices    []uint32
	Objects    []object.Key
	Properties []PropertyToggle
	Services   map[object.Service]bool
}

// NopEngine 内置的空协议栈: 只登记启动信息, 每轮从传输层取出一个数据报并丢弃
// 用于在没有外部协议栈时验证传输层、对象库与主循环
type NopEngine struct {
	mu           sync.Mutex
	registration Registration
	updates      []object.Key
	callbacks    *Callbacks
	message      []byte
	connection   []byte
	received     uint64
	logger       *zap.Logger
}

// NewNopEngine 创建内置空协议栈
func NewNopEngine(ctx context.Context) (Engine, error) {
	return &NopEngine{
		registration: Registration{Services: make(map[object.Service]bool)},
		message:      make([]byte, pkg.MaxRenderBufferLength),
		connection:   make([]byte, 6),
		logger:       pkg.LoggerFromContext(ctx),
	}, nil
}

func (e *NopEngine) Version() string {
	return nopVersion
}

func (e *NopEngine) AddDevice(instance uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.registration.Devices {
		if d == instance {
			return false
		}
	}
	e.registration.Devices = append(e.registration.Devices, instance)
	return true
}

func (e *NopEngine) AddObject(device uint32, objectType object.ObjectType, instance uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDevice(device) {
		return false
	}
	e.registration.Objects = append(e.registration.Objects, object.Key{Type: objectType, Instance: instance})
	return true
}

func (e *NopEngine) SetPropertyEnabled(device uint32, objectType object.ObjectType, instance uint32, property object.PropertyID, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDevice(device) {
		return false
	}
	e.registration.Properties = append(e.registration.Properties, PropertyToggle{
		ObjectType: objectType, Instance: instance, Property: property, Enabled: enabled,
	})
	return true
}

func (e *NopEngine) SetPropertyByObjectTypeEnabled(device uint32, objectType object.ObjectType, property object.PropertyID, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDevice(device) {
		return false
	}
	e.registration.Properties = append(e.registration.Properties, PropertyToggle{
		ObjectType: objectType, ByType: true, Property: property, Enabled: enabled,
	})
	return true
}

func (e *NopEngine) SetServiceEnabled(device uint32, service object.Service, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasDevice(device) {
		return false
	}
	e.registration.Services[service] = enabled
	return true
}

func (e *NopEngine) RegisterCallbacks(callbacks *Callbacks) error {
	if err := callbacks.Validate(); err != nil {
		return fmt.Errorf("注册回调失败: %w", err)
	}
	e.mu.Lock()
	e.callbacks = callbacks
	e.mu.Unlock()
	return nil
}

func (e *NopEngine) ValueUpdated(device uint32, objectType object.ObjectType, instance uint32, property object.PropertyID) {
	e.mu.Lock()
	e.updates = append(e.updates, object.Key{Type: objectType, Instance: instance})
	e.mu.Unlock()
	e.logger.Debug("属性值已更新",
		zap.Uint32("device", device),
		zap.Stringer("objectType", objectType),
		zap.Uint32("instance", instance),
		zap.Stringer("property", property))
}

// Loop 取出并丢弃至多一个数据报
func (e *NopEngine) Loop() {
	e.mu.Lock()
	callbacks := e.callbacks
	e.mu.Unlock()
	if callbacks == nil {
		return
	}
	n, connLen, networkType := callbacks.ReceiveMessage(e.message, e.connection)
	if n == 0 {
		return
	}
	e.mu.Lock()
	e.received++
	e.mu.Unlock()
	e.logger.Debug("nop 引擎丢弃数据报",
		zap.Uint16("length", n),
		zap.Binary("from", e.connection[:connLen]),
		zap.Uint8("networkType", networkType))
}

// Registration 返回登记内容的副本
func (e *NopEngine) Registration() Registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	services := make(map[object.Service]bool, len(e.registration.Services))
	for k, v := range e.registration.Services {
		services[k] = v
	}
	return Registration{
		Devices:    append([]uint32(nil), e.registration.Devices...),
		Objects:    append([]object.Key(nil), e.registration.Objects...),
		Properties: append([]PropertyToggle(nil), e.registration.Properties...),
		Services:   services,
	}
}

// Updates 返回收到的 ValueUpdated 通知
func (e *NopEngine) Updates() []object.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]object.Key(nil), e.updates...)
}

// Received 返回已丢弃的数据报数量
func (e *NopEngine) Received() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.received
}

func (e *NopEngine) hasDevice(device uint32) bool {
	for _, d := range e.registration.Devices {
		if d == device {
			return true
		}
	}
	return false
}
