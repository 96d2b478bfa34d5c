package internal

import (
	"context"
	"errors"
	"fmt"

	"bacgate/internal/accessor"
	"bacgate/internal/admin"
	"bacgate/internal/connector"
	"bacgate/internal/engine"
	"bacgate/internal/object"
	"bacgate/internal/pkg"
	"bacgate/internal/scheduler"
	"bacgate/internal/sink"

	"go.uber.org/zap"
)

// Runtime 持有一个设备实例运行所需的全部组件
type Runtime struct {
	Config    *pkg.Config
	Metrics   *pkg.Metrics
	Store     *object.Store
	Accessor  *accessor.Accessor
	Transport *connector.UdpTransport
	Engine    engine.Engine
	Sinks     *sink.Collection
	Mutator   *scheduler.Mutator
	Admin     *admin.Server // admin::enable 为 false 时为 nil
	logger    *zap.Logger
}

// NewRuntime 按 ctx 中的配置组装组件并向协议栈登记设备
// 任何一步失败都属于启动期致命错误, 已创建的资源会被释放
func NewRuntime(ctx context.Context) (_ *Runtime, err error) {
	config := pkg.ConfigFromContext(ctx)
	log := pkg.LoggerFromContext(ctx)
	// 所有组件共用同一组指标
	metrics := pkg.MetricsFromContext(ctx)
	ctx = pkg.WithMetrics(ctx, metrics)
	r := &Runtime{Config: config, Metrics: metrics, logger: log}
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()

	// 1. 对象库
	r.Store, err = object.NewDefaultStore(config.Device.Instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	// 2. 下游 sink
	r.Sinks, err = sink.New(pkg.WithLoggerAndModule(ctx, log, "Sink"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sinks: %w", err)
	}

	// 3. 属性访问, 写入成功后通知 sink
	r.Accessor = accessor.New(pkg.WithLoggerAndModule(ctx, log, "Accessor"), r.Store, config.Version)
	r.Accessor.OnChange(func(addr accessor.Address, objectName string, value interface{}) {
		key := object.Key{Type: addr.ObjectType, Instance: addr.ObjectInstance}
		r.Sinks.Publish(pkg.NewValueChange(addr.DeviceInstance, key.String(), objectName, addr.Property.String(), value))
	})

	// 4. 传输层
	r.Transport, err = connector.NewUdpTransport(pkg.WithLoggerAndModule(ctx, log, "Transport"), &config.Transport, r.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	// 5. 协议栈
	r.Engine, err = engine.New(pkg.WithLoggerAndModule(ctx, log, "Engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	log.Info("BACnet 协议栈版本", zap.String("engine", r.Engine.Version()), zap.String("application", config.Version))
	if err = r.Engine.RegisterCallbacks(engine.NewCallbacks(r.Transport, r.Accessor, nil)); err != nil {
		return nil, err
	}
	if err = r.register(); err != nil {
		return nil, err
	}

	// 6. 周期修改器
	r.Mutator, err = scheduler.NewMutator(pkg.WithLoggerAndModule(ctx, log, "Mutator"), r.Store, r.Engine, r.Sinks)
	if err != nil {
		return nil, fmt.Errorf("failed to create mutator: %w", err)
	}

	// 7. 管理接口
	if config.Admin.Enable {
		r.Admin, err = admin.NewServer(pkg.WithLoggerAndModule(ctx, log, "Admin"), r.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create admin server: %w", err)
		}
	}
	return r, nil
}

// register 向协议栈登记设备、服务与对象
func (r *Runtime) register() error {
	device := r.Store.DeviceInstance()
	steps := []struct {
		name string
		ok   func() bool
	}{
		{"add device", func() bool { return r.Engine.AddDevice(device) }},
		{"enable device description", func() bool {
			return r.Engine.SetPropertyEnabled(device, object.OBJECT_DEVICE, device, object.PROP_DESCRIPTION, true)
		}},
		{"enable I-Am", func() bool { return r.Engine.SetServiceEnabled(device, object.SERVICE_I_AM, true) }},
		{"enable ReadPropertyMultiple", func() bool {
			return r.Engine.SetServiceEnabled(device, object.SERVICE_READ_PROPERTY_MULTIPLE, true)
		}},
		{"add analog input", func() bool { return r.Engine.AddObject(device, object.OBJECT_ANALOG_INPUT, 0) }},
		{"enable analog input description", func() bool {
			return r.Engine.SetPropertyByObjectTypeEnabled(device, object.OBJECT_ANALOG_INPUT, object.PROP_DESCRIPTION, true)
		}},
		{"enable analog input reliability", func() bool {
			return r.Engine.SetPropertyByObjectTypeEnabled(device, object.OBJECT_ANALOG_INPUT, object.PROP_RELIABILITY, true)
		}},
		{"add character string value", func() bool {
			return r.Engine.AddObject(device, object.OBJECT_CHARACTERSTRING_VALUE, 40)
		}},
	}
	for _, step := range steps {
		if !step.ok() {
			return fmt.Errorf("engine registration failed: %s", step.name)
		}
		r.logger.Debug("engine registration", zap.String("step", step.name))
	}
	r.logger.Info("设备已登记", zap.Uint32("device", device))
	return nil
}

// Run 启动后台服务并运行主循环, 直到控制台输入 q 或 ctx 被取消
func (r *Runtime) Run(ctx context.Context, console <-chan string) {
	r.Sinks.Start()
	if r.Admin != nil {
		r.Admin.Start(ctx)
	}
	scheduler.NewLoop(pkg.WithLoggerAndModule(ctx, r.logger, "Loop"), r.Engine, r.Mutator, console).Run(ctx)
}

// Close 释放传输层与管理接口, 并等待 sink 发送完剩余的变更事件
func (r *Runtime) Close() error {
	var errs []error
	if r.Transport != nil {
		errs = append(errs, r.Transport.Close())
	}
	if r.Admin != nil {
		errs = append(errs, r.Admin.Shutdown())
	}
	if r.Sinks != nil {
		r.Sinks.Close()
	}
	return errors.Join(errs...)
}
