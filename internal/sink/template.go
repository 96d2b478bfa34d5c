package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

// queueSize 每个 sink 的待发送事件上限, 超出后丢弃
const queueSize = 64

// closeTimeout Close 等待 sink 收尾的上限
var closeTimeout = 5 * time.Second

// Template 定义了所有变更事件下游的通用接口
type Template interface {
	GetType() string             // Step:1 返回类型名
	Start(chan *pkg.ValueChange) // Step:2 消费通道直到 ctx 取消或通道关闭
}

// FactoryFunc 代表一个 sink 的工厂函数
type FactoryFunc func(context.Context) (Template, error)

// Factories 全局工厂映射，这里面可能包含了没有启用的 sink
var Factories = make(map[string]FactoryFunc)

// Register 注册一个 sink
func Register(sinkType string, factory FactoryFunc) {
	Factories[sinkType] = factory
}

// Collection 代表已启用的 sink 集合
type Collection struct {
	sinks   map[string]Template
	queues  map[string]chan *pkg.ValueChange
	logger  *zap.Logger
	metrics *pkg.Metrics

	mu      sync.RWMutex // 保护 started/closed 与队列的关闭
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// New 按配置初始化所有启用的 sink, 未启用任何 sink 时返回空集合
var New = func(ctx context.Context) (*Collection, error) {
	log := pkg.LoggerFromContext(ctx)
	// 记录可用的工厂类型
	factoryTypes := make([]string, 0, len(Factories))
	for key := range Factories {
		factoryTypes = append(factoryTypes, key)
	}
	sort.Strings(factoryTypes)
	log.Debug("Sink Factory:", zap.Strings("Factories", factoryTypes))

	c := NewCollection(ctx)
	for _, sinkConfig := range pkg.ConfigFromContext(ctx).Sink {
		if !sinkConfig.Enable {
			continue
		}
		factory, exists := Factories[sinkConfig.Type]
		if !exists {
			c.Close()
			return nil, fmt.Errorf("未找到 sink 类型: %s", sinkConfig.Type)
		}
		// 同一类型只能启用一个, 指标与队列都以类型区分
		if _, dup := c.sinks[sinkConfig.Type]; dup {
			c.Close()
			return nil, fmt.Errorf("sink 类型 %s 重复启用", sinkConfig.Type)
		}
		log.Info(fmt.Sprintf("===正在启动Sink: %s===", sinkConfig.Type))
		s, err := factory(ctx)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("初始化 sink %s 失败: %w", sinkConfig.Type, err)
		}
		c.Add(s)
	}
	return c, nil
}

// NewCollection 创建空集合
func NewCollection(ctx context.Context) *Collection {
	return &Collection{
		sinks:   make(map[string]Template),
		queues:  make(map[string]chan *pkg.ValueChange),
		logger:  pkg.LoggerFromContext(ctx),
		metrics: pkg.MetricsFromContext(ctx),
	}
}

// Add 加入一个 sink, 必须在 Start 之前调用
func (c *Collection) Add(s Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks[s.GetType()] = s
	c.queues[s.GetType()] = make(chan *pkg.ValueChange, queueSize)
}

// Len 返回已启用 sink 的数量
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sinks)
}

// Start 为每个 sink 启动一个消费 goroutine, 重复调用无效果
func (c *Collection) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

func (c *Collection) startLocked() {
	if c.started || c.closed {
		return
	}
	c.started = true
	for key, s := range c.sinks {
		c.wg.Add(1)
		go func(s Template, queue chan *pkg.ValueChange) {
			defer c.wg.Done()
			s.Start(queue)
		}(s, c.queues[key])
	}
}

// Close 关闭所有队列并等待每个 sink 处理完剩余事件后返回
// 未启动的 sink 会先被启动, 以便执行各自的收尾
func (c *Collection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.startLocked()
	c.closed = true
	for _, queue := range c.queues {
		close(queue)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.logger.Info("所有 sink 已关闭")
	case <-time.After(closeTimeout):
		c.logger.Warn("等待 sink 关闭超时", zap.Duration("timeout", closeTimeout))
	}
}

// Publish 把事件非阻塞地投递给每个 sink, 队列已满时丢弃并计数
// Close 之后的事件直接丢弃
func (c *Collection) Publish(change *pkg.ValueChange) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	for key, queue := range c.queues {
		select {
		case queue <- change:
		default:
			c.metrics.SinkDropped.WithLabelValues(key).Inc()
			c.logger.Warn("sink 队列已满, 丢弃变更事件", zap.String("sink", key), zap.String("key", change.Key))
		}
	}
}

// decodePara 查找指定类型的启用配置并解码到 out
func decodePara(ctx context.Context, sinkType string, out interface{}) error {
	for _, sinkConfig := range pkg.ConfigFromContext(ctx).Sink {
		if sinkConfig.Enable && sinkConfig.Type == sinkType {
			if err := decode(sinkConfig.Para, out); err != nil {
				return fmt.Errorf("解析 %s 配置失败: %w", sinkType, err)
			}
			return nil
		}
	}
	return fmt.Errorf("no enabled %s sink configuration found", sinkType)
}
