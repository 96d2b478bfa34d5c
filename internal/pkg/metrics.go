package pkg

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 汇总运行时指标, 每个 Runtime 持有独立的 Registry, 避免重复注册
type Metrics struct {
	Registry *prometheus.Registry

	TransportMessages *prometheus.CounterVec // direction, result
	TransportBytes    *prometheus.CounterVec // direction
	AccessorCalls     *prometheus.CounterVec // op, result
	MutatorFirings    prometheus.Counter
	LoopIterations    prometheus.Counter
	SinkDropped       *prometheus.CounterVec // sink
}

// NewMetrics 创建并注册所有指标
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		TransportMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "transport_messages_total",
			Help:      "BACnet/IP datagrams handled by the transport adapter.",
		}, []string{"direction", "result"}),
		TransportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "transport_bytes_total",
			Help:      "Payload bytes moved by the transport adapter.",
		}, []string{"direction"}),
		AccessorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "accessor_calls_total",
			Help:      "Property accessor calls by operation and result.",
		}, []string{"op", "result"}),
		MutatorFirings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "mutator_firings_total",
			Help:      "Periodic mutator firings.",
		}),
		LoopIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "loop_iterations_total",
			Help:      "Poll loop iterations.",
		}),
		SinkDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bacgate",
			Name:      "sink_dropped_total",
			Help:      "Value change events dropped because a sink queue was full.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.TransportMessages, m.TransportBytes, m.AccessorCalls, m.MutatorFirings, m.LoopIterations, m.SinkDropped)
	return m
}

// Result 将布尔结果转换为标签值
func Result(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

type metricsKey struct{}

// WithMetrics 将指标集合挂载到 context 上
func WithMetrics(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, metricsKey{}, m)
}

// MetricsFromContext 从 context 中提取指标集合, 不存在时创建一个未对外暴露的集合
func MetricsFromContext(ctx context.Context) *Metrics {
	if m, ok := ctx.Value(metricsKey{}).(*Metrics); ok {
		return m
	}
	return NewMetrics()
}
