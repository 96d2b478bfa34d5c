package sink

import (
	"context"
	"fmt"

	"bacgate/internal/pkg"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

func init() {
	Register("influxdb", NewInfluxDbSink)
}

// InfluxDbInfo InfluxDB 的专属配置
type InfluxDbInfo struct {
	URL         string `mapstructure:"url"`
	Org         string `mapstructure:"org"`
	Token       string `mapstructure:"token"`
	Bucket      string `mapstructure:"bucket"`
	BatchSize   uint   `mapstructure:"batch_size"`
	Measurement string `mapstructure:"measurement"`
}

// InfluxDbSink 将数值型变更写入 InfluxDB 时序库
type InfluxDbSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	info     InfluxDbInfo
	ctx      context.Context
	logger   *zap.Logger
}

// NewInfluxDbSink 构造函数, 写入为异步批量方式, 不在此处连接
func NewInfluxDbSink(ctx context.Context) (Template, error) {
	var info InfluxDbInfo
	if err := decodePara(ctx, "influxdb", &info); err != nil {
		return nil, err
	}
	if info.URL == "" || info.Bucket == "" {
		return nil, fmt.Errorf("influxdb config validation failed: 'url' and 'bucket' are required")
	}
	// 检查 BatchSize 是否为零或未设置，如果是，使用默认值 否则会出现 /0 的panic
	if info.BatchSize == 0 {
		info.BatchSize = 100
	}
	if info.Measurement == "" {
		info.Measurement = "bacnet"
	}
	client := influxdb2.NewClientWithOptions(info.URL, info.Token, influxdb2.DefaultOptions().SetBatchSize(info.BatchSize))
	return newInfluxDbSink(ctx, info, client), nil
}

func newInfluxDbSink(ctx context.Context, info InfluxDbInfo, client influxdb2.Client) *InfluxDbSink {
	logger := pkg.LoggerFromContext(ctx).With(zap.String("sink_type", "influxdb"))
	writeAPI := client.WriteAPI(info.Org, info.Bucket)
	if errorsCh := writeAPI.Errors(); errorsCh != nil {
		go func() {
			for err := range errorsCh {
				logger.Error("InfluxDB write error", zap.Error(err))
			}
		}()
	}
	return &InfluxDbSink{
		client:   client,
		writeAPI: writeAPI,
		info:     info,
		ctx:      ctx,
		logger:   logger,
	}
}

func (b *InfluxDbSink) GetType() string {
	return "influxdb"
}

func (b *InfluxDbSink) Start(changes chan *pkg.ValueChange) {
	b.logger.Debug("===InfluxDbSink started===")
	defer b.Stop()
	for {
		select {
		case <-b.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			p, err := b.toPoint(change)
			if err != nil {
				b.logger.Warn("跳过无法写入的变更", zap.String("key", change.Key), zap.Error(err))
				continue
			}
			b.writeAPI.WritePoint(p)
		}
	}
}

// toPoint 将变更事件转换为数据点, tags 为设备与对象, field 为属性名
func (b *InfluxDbSink) toPoint(change *pkg.ValueChange) (*write.Point, error) {
	var value interface{}
	switch v := change.Value.(type) {
	case float32:
		value = float64(v)
	case float64, int32, uint32, bool, string:
		value = v
	default:
		return nil, fmt.Errorf("unsupported value type %T", change.Value)
	}
	return influxdb2.NewPoint(
		b.info.Measurement,
		map[string]string{
			"device":      fmt.Sprint(change.Device),
			"key":         change.Key,
			"object_name": change.ObjectName,
		},
		map[string]interface{}{change.Property: value},
		change.Ts,
	), nil
}

// Stop 刷新缓冲区并关闭客户端
func (b *InfluxDbSink) Stop() {
	b.writeAPI.Flush()
	b.client.Close()
	b.logger.Debug("===InfluxDbSink stopped===")
}
