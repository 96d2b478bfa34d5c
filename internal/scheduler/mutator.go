package scheduler

import (
	"context"
	"fmt"
	"time"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
)

// Notifier 接收属性变化通知, engine.Engine 实现了它
type Notifier interface {
	ValueUpdated(device uint32, objectType object.ObjectType, instance uint32, property object.PropertyID)
}

// Publisher 接收变更事件, sink.Collection 实现了它
type Publisher interface {
	Publish(change *pkg.ValueChange)
}

// Mutator 周期性地修改一个对象的 Present_Value, 模拟传感器读数
type Mutator struct {
	store     *object.Store
	key       object.Key
	interval  time.Duration
	increment float32
	program   *vm.Program
	notifier  Notifier
	publisher Publisher
	last      time.Time
	logger    *zap.Logger
	metrics   *pkg.Metrics
}

// NewMutator 按 mutator 配置创建修改器, 目标必须存在且具有数值型 Present_Value
func NewMutator(ctx context.Context, store *object.Store, notifier Notifier, publisher Publisher) (*Mutator, error) {
	config := pkg.ConfigFromContext(ctx).Mutator
	objectType, ok := object.ParseObjectType(config.ObjectType)
	if !ok {
		return nil, fmt.Errorf("未知的对象类型: %q", config.ObjectType)
	}
	key := object.Key{Type: objectType, Instance: config.Instance}

	supported := false
	if !store.Get(key, func(r object.Record) {
		switch r.(type) {
		case *object.AnalogInput, *object.AnalogValue, *object.LargeAnalogValue:
			supported = true
		}
	}) {
		return nil, fmt.Errorf("修改目标 %s 不存在", key)
	}
	if !supported {
		return nil, fmt.Errorf("修改目标 %s 没有数值型 Present_Value", key)
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("mutator::interval 必须大于 0, 当前为 %s", config.Interval)
	}

	m := &Mutator{
		store:     store,
		key:       key,
		interval:  config.Interval,
		increment: config.Increment,
		notifier:  notifier,
		publisher: publisher,
		logger:    pkg.LoggerFromContext(ctx),
		metrics:   pkg.MetricsFromContext(ctx),
	}
	if config.Expression != "" {
		program, err := expr.Compile(config.Expression, expr.Env(map[string]any{"value": float64(0)}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("编译 mutator 表达式失败: %w", err)
		}
		m.program = program
	}
	return m, nil
}

// Tick 距上次触发满一个周期时修改一次目标, 返回是否触发
// 第一次调用只记录起点
func (m *Mutator) Tick(now time.Time) bool {
	if m.last.IsZero() {
		m.last = now
		return false
	}
	if now.Sub(m.last) < m.interval {
		return false
	}
	m.last = now

	var (
		name  string
		value interface{}
		err   error
	)
	m.store.GetMut(m.key, func(r object.Record) {
		name = r.Name()
		switch o := r.(type) {
		case *object.AnalogInput:
			var next float64
			next, err = m.next(float64(o.PresentValue))
			if err == nil {
				o.PresentValue = float32(next)
				value = o.PresentValue
			}
		case *object.AnalogValue:
			var next float64
			next, err = m.next(float64(o.PresentValue))
			if err == nil {
				o.PresentValue = float32(next)
				value = o.PresentValue
			}
		case *object.LargeAnalogValue:
			o.PresentValue, err = m.next(o.PresentValue)
			value = o.PresentValue
		}
	})
	if err != nil {
		m.logger.Warn("mutator 表达式执行失败", zap.Stringer("key", m.key), zap.Error(err))
		return false
	}

	m.metrics.MutatorFirings.Inc()
	m.logger.Info("mutator 已更新", zap.Stringer("key", m.key), zap.Any("presentValue", value))
	device := m.store.DeviceInstance()
	if m.notifier != nil {
		m.notifier.ValueUpdated(device, m.key.Type, m.key.Instance, object.PROP_PRESENT_VALUE)
	}
	if m.publisher != nil {
		m.publisher.Publish(pkg.NewValueChange(device, m.key.String(), name, object.PROP_PRESENT_VALUE.String(), value))
	}
	return true
}

// next 计算新值, 没有表达式时累加 increment
func (m *Mutator) next(current float64) (float64, error) {
	if m.program == nil {
		if m.key.Type == object.OBJECT_LARGE_ANALOG_VALUE {
			return current + float64(m.increment), nil
		}
		// 以 float32 累加, 与属性的存储精度一致
		return float64(float32(current) + m.increment), nil
	}
	out, err := expr.Run(m.program, map[string]any{"value": current})
	if err != nil {
		return current, err
	}
	f, ok := out.(float64)
	if !ok {
		return current, fmt.Errorf("表达式结果类型为 %T", out)
	}
	return f, nil
}
