package scheduler

import (
	"context"
	"time"

	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

// Ticker 是主循环每轮驱动一次的协议栈, engine.Engine 实现了它
type Ticker interface {
	Loop()
}

// Loop 单线程协作式主循环
// 每轮依次执行: 协议栈处理一次, mutator 检查, 非阻塞读取控制台, 让出 yield
type Loop struct {
	engine  Ticker
	mutator *Mutator
	console <-chan string
	yield   time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *pkg.Metrics
}

// NewLoop 创建主循环, mutator 与 console 可以为 nil
func NewLoop(ctx context.Context, engine Ticker, mutator *Mutator, console <-chan string) *Loop {
	return &Loop{
		engine:  engine,
		mutator: mutator,
		console: console,
		yield:   pkg.ConfigFromContext(ctx).Loop.Yield,
		now:     time.Now,
		logger:  pkg.LoggerFromContext(ctx),
		metrics: pkg.MetricsFromContext(ctx),
	}
}

// Run 运行直到控制台输入 q 或 ctx 被取消
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("主循环已启动, 输入 Q 退出", zap.Duration("yield", l.yield))
	for {
		l.engine.Loop()

		if l.mutator != nil {
			l.mutator.Tick(l.now())
		}

		select {
		case line, ok := <-l.console:
			if !ok {
				// 控制台已关闭, 之后只能通过信号退出
				l.console = nil
				break
			}
			if IsQuit(line) {
				l.logger.Info("收到退出命令, 主循环结束")
				return
			}
			l.logger.Warn("Invalid input, enter Q to quit.", zap.String("input", line))
		case <-ctx.Done():
			l.logger.Info("上下文已取消, 主循环结束")
			return
		default:
		}

		l.metrics.LoopIterations.Inc()
		time.Sleep(l.yield)
	}
}
