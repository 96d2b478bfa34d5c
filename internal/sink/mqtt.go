package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bacgate/internal/pkg"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

func init() {
	Register("mqtt", NewMqttSink)
}

// MQTTClientInterface 定义了我们需要的 MQTT 客户端方法
type MQTTClientInterface interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MqttInfo MQTT 的专属配置
type MqttInfo struct {
	Broker         string        `mapstructure:"broker"`
	Port           int           `mapstructure:"port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	ClientID       string        `mapstructure:"clientID"`
	Topic          string        `mapstructure:"topic"` // 基础主题, 实际主题为 {topic}/{device}/{key}
	QoS            byte          `mapstructure:"qos"`
	Retained       bool          `mapstructure:"retained"`
	KeepAliveSec   uint          `mapstructure:"keepAliveSec"`
	PublishTimeout time.Duration `mapstructure:"publishTimeout"`
}

// MqttSink 将变更事件发布到 MQTT
type MqttSink struct {
	client MQTTClientInterface
	info   MqttInfo
	ctx    context.Context
	logger *zap.Logger
}

// NewMqttSink 解析配置并连接 broker
func NewMqttSink(ctx context.Context) (Template, error) {
	log := pkg.LoggerFromContext(ctx)
	var info MqttInfo
	if err := decodePara(ctx, "mqtt", &info); err != nil {
		return nil, err
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", info.Broker, info.Port))
	opts.SetClientID(info.ClientID)
	opts.SetUsername(info.Username)
	opts.SetPassword(info.Password)
	opts.SetKeepAlive(time.Duration(info.KeepAliveSec) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info("MQTT connected", zap.String("broker", info.Broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Error("MQTT connection lost", zap.Error(err), zap.String("broker", info.Broker))
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Error("MQTT connection failed", zap.Error(token.Error()), zap.String("broker", info.Broker))
		return nil, fmt.Errorf("mqtt connection failed for %s: %w", info.Broker, token.Error())
	}
	return newMqttSink(ctx, info, client), nil
}

func newMqttSink(ctx context.Context, info MqttInfo, client MQTTClientInterface) *MqttSink {
	return &MqttSink{
		client: client,
		info:   info,
		ctx:    ctx,
		logger: pkg.LoggerFromContext(ctx).With(zap.String("sink_type", "mqtt"), zap.String("base_topic", info.Topic)),
	}
}

// validate 校验必填项并补全默认值
func (i *MqttInfo) validate() error {
	if i.Broker == "" {
		return fmt.Errorf("mqtt config validation failed: 'broker' is required")
	}
	if i.Topic == "" {
		return fmt.Errorf("mqtt config validation failed: 'topic' is required")
	}
	if i.QoS > 2 {
		return fmt.Errorf("mqtt config validation failed: qos %d out of range", i.QoS)
	}
	if i.Port == 0 {
		i.Port = 1883
	}
	if i.ClientID == "" {
		i.ClientID = fmt.Sprintf("bacgate-%d", time.Now().UnixNano())
	}
	if i.KeepAliveSec == 0 {
		i.KeepAliveSec = 60
	}
	if i.PublishTimeout == 0 {
		i.PublishTimeout = 2 * time.Second
	}
	return nil
}

func (m *MqttSink) GetType() string {
	return "mqtt"
}

// Topic 返回事件的发布主题
func (m *MqttSink) Topic(change *pkg.ValueChange) string {
	return fmt.Sprintf("%s/%d/%s", strings.TrimSuffix(m.info.Topic, "/"), change.Device, change.Key)
}

func (m *MqttSink) Start(changes chan *pkg.ValueChange) {
	m.logger.Info("===MqttSink Started===")
	defer func() {
		if m.client.IsConnected() {
			m.client.Disconnect(250)
		}
		m.logger.Info("===MqttSink Finished===")
	}()
	for {
		select {
		case <-m.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			m.publish(change)
		}
	}
}

func (m *MqttSink) publish(change *pkg.ValueChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		m.logger.Error("Failed to marshal value change", zap.Error(err), zap.String("key", change.Key))
		return
	}
	topic := m.Topic(change)
	token := m.client.Publish(topic, m.info.QoS, m.info.Retained, payload)
	if !token.WaitTimeout(m.info.PublishTimeout) {
		m.logger.Warn("MQTT publish timeout", zap.String("topic", topic))
		return
	}
	if err := token.Error(); err != nil {
		m.logger.Error("MQTT publish failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	m.logger.Debug("MQTT published", zap.String("topic", topic), zap.Int("payload_size", len(payload)))
}
