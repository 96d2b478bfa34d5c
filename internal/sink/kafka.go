package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bacgate/internal/pkg"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func init() {
	Register("kafka", NewKafkaSink)
}

// KafkaSinkConfig 包含 Kafka Sink 特定的配置
type KafkaSinkConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	Async           bool     `mapstructure:"async"`
	WriteTimeoutSec int      `mapstructure:"writeTimeoutSec"`
	RequiredAcks    int      `mapstructure:"requiredAcks"`
}

// messageWriter 是 kafka.Writer 中用到的方法
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink 将变更事件写入 Kafka, 消息 key 为对象 key, 同一对象的事件落在同一分区
type KafkaSink struct {
	writer messageWriter
	config KafkaSinkConfig
	ctx    context.Context
	logger *zap.Logger
}

// NewKafkaSink 是创建 KafkaSink 的工厂函数, writer 在首次写入时才建立连接
func NewKafkaSink(ctx context.Context) (Template, error) {
	var cfg KafkaSinkConfig
	if err := decodePara(ctx, "kafka", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka config validation failed: 'brokers' is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka config validation failed: 'topic' is required")
	}
	if cfg.WriteTimeoutSec == 0 {
		cfg.WriteTimeoutSec = 10
	}
	// 如果未指定或值无效，默认为 RequireOne
	acks := kafka.RequireOne
	if cfg.RequiredAcks == -1 {
		acks = kafka.RequireAll
	} else if cfg.RequiredAcks == 0 {
		acks = kafka.RequireNone
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		RequiredAcks: acks,
		Async:        cfg.Async,
	}
	return newKafkaSink(ctx, cfg, writer), nil
}

func newKafkaSink(ctx context.Context, cfg KafkaSinkConfig, writer messageWriter) *KafkaSink {
	return &KafkaSink{
		writer: writer,
		config: cfg,
		ctx:    ctx,
		logger: pkg.LoggerFromContext(ctx).With(zap.String("sink_type", "kafka"), zap.String("topic", cfg.Topic)),
	}
}

func (ks *KafkaSink) GetType() string {
	return "kafka"
}

func (ks *KafkaSink) Start(changes chan *pkg.ValueChange) {
	ks.logger.Info("===KafkaSink Started===")
	defer func() {
		if err := ks.writer.Close(); err != nil {
			ks.logger.Error("Failed to close Kafka writer cleanly", zap.Error(err))
		}
		ks.logger.Info("===KafkaSink Finished===")
	}()
	for {
		select {
		case <-ks.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			msg, err := toKafkaMessage(change)
			if err != nil {
				ks.logger.Error("Failed to marshal value change", zap.Error(err), zap.String("key", change.Key))
				continue
			}
			if err := ks.writer.WriteMessages(ks.ctx, msg); err != nil {
				if ks.ctx.Err() != nil {
					return
				}
				ks.logger.Error("Failed to write message to Kafka", zap.Error(err), zap.String("key", change.Key))
			}
		}
	}
}

func toKafkaMessage(change *pkg.ValueChange) (kafka.Message, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(change.Key),
		Value: payload,
		Time:  change.Ts,
	}, nil
}
