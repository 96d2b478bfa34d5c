package sink

import (
	"context"
	"fmt"
	"strconv"

	"bacgate/internal/pkg"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func init() {
	Register("prometheus", NewPrometheusSink)
}

// PrometheusInfo Prometheus 的专属配置
type PrometheusInfo struct {
	Name string `mapstructure:"name"` // 指标名, 默认 bacgate_object_value
}

// PrometheusSink 把数值型变更写成 gauge, 通过管理接口的 /metrics 暴露
type PrometheusSink struct {
	gauge  *prometheus.GaugeVec
	ctx    context.Context
	logger *zap.Logger
}

// NewPrometheusSink 在运行时的 Registry 上注册 gauge
func NewPrometheusSink(ctx context.Context) (Template, error) {
	var info PrometheusInfo
	if err := decodePara(ctx, "prometheus", &info); err != nil {
		return nil, err
	}
	if info.Name == "" {
		info.Name = "bacgate_object_value"
	}
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: info.Name,
		Help: "Latest numeric value of a BACnet object property.",
	}, []string{"device", "key", "property"})
	if err := pkg.MetricsFromContext(ctx).Registry.Register(gauge); err != nil {
		return nil, fmt.Errorf("注册 Prometheus 指标失败: %w", err)
	}
	return &PrometheusSink{
		gauge:  gauge,
		ctx:    ctx,
		logger: pkg.LoggerFromContext(ctx).With(zap.String("sink_type", "prometheus")),
	}, nil
}

func (p *PrometheusSink) GetType() string {
	return "prometheus"
}

func (p *PrometheusSink) Start(changes chan *pkg.ValueChange) {
	p.logger.Info("===PrometheusSink Started===")
	defer p.logger.Info("===PrometheusSink Finished===")
	for {
		select {
		case <-p.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			p.set(change)
		}
	}
}

// set 只处理数值与布尔, 其他类型跳过
func (p *PrometheusSink) set(change *pkg.ValueChange) {
	var v float64
	switch value := change.Value.(type) {
	case float32:
		v = float64(value)
	case float64:
		v = value
	case int32:
		v = float64(value)
	case uint32:
		v = float64(value)
	case bool:
		if value {
			v = 1
		}
	default:
		p.logger.Debug("Unsupported data type for Prometheus metrics", zap.String("key", change.Key), zap.Any("value", value))
		return
	}
	p.gauge.WithLabelValues(strconv.FormatUint(uint64(change.Device), 10), change.Key, change.Property).Set(v)
}
