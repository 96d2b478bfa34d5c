package connector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

// SubnetMasks 提供 NetworkPort 对象的子网掩码, 由对象库实现
type SubnetMasks interface {
	SubnetMask(instance uint32) ([4]byte, bool)
}

// UdpTransport BACnet/IP 的 UDP 传输适配器
// 只在主循环 goroutine 中调用, 不需要额外加锁
type UdpTransport struct {
	config  *pkg.TransportConfig
	conn    *net.UDPConn
	masks   SubnetMasks
	pool    *pkg.BytesPool
	logger  *zap.Logger
	metrics *pkg.Metrics
}

// NewUdpTransport 绑定 udp4 套接字, 绑定失败属于启动期致命错误
func NewUdpTransport(ctx context.Context, config *pkg.TransportConfig, masks SubnetMasks) (*UdpTransport, error) {
	log := pkg.LoggerFromContext(ctx)
	addr, err := net.ResolveUDPAddr("udp4", config.Url)
	if err != nil {
		log.Error("解析 UDP 地址失败", zap.String("url", config.Url), zap.Error(err))
		return nil, fmt.Errorf("解析 UDP 地址失败: %w", err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		log.Error("UDP 监听失败", zap.String("url", config.Url), zap.Error(err))
		return nil, fmt.Errorf("UDP 监听失败: %w", err)
	}
	log.Info("UDP 传输已启动", zap.Stringer("addr", conn.LocalAddr()), zap.Duration("timeout", config.Timeout))
	return &UdpTransport{
		config:  config,
		conn:    conn,
		masks:   masks,
		pool:    pkg.RenderBufferPool,
		logger:  log,
		metrics: pkg.MetricsFromContext(ctx),
	}, nil
}

// LocalAddr 返回实际绑定的地址
func (u *UdpTransport) LocalAddr() netip.AddrPort {
	if addr, ok := u.conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.AddrPort()
	}
	return netip.AddrPort{}
}

// ReceiveMessage 等待至多 timeout 接收一个数据报
// 成功时把数据写入 message, 把发送方写入 connectionString; 超时或任何失败都返回 0 且不写入
func (u *UdpTransport) ReceiveMessage(message, connectionString []byte) (uint16, uint8, uint8) {
	// 缓冲区非法时不读取套接字, 数据报留给下一次调用
	if len(message) == 0 || len(connectionString) < ConnectionStringLength {
		u.logger.Warn("接收缓冲区非法",
			zap.Int("messageLength", len(message)),
			zap.Int("connectionStringLength", len(connectionString)))
		return 0, 0, 0
	}
	if err := u.conn.SetReadDeadline(time.Now().Add(u.config.Timeout)); err != nil {
		u.logger.Error("设置读取超时失败", zap.Error(err))
		return 0, 0, 0
	}

	// 缓冲区比允许的最大长度多 1 字节, 用于识别超长数据报
	bufp := u.pool.Get()
	defer u.pool.Put(bufp)
	buffer := *bufp

	n, from, err := u.conn.ReadFromUDPAddrPort(buffer)
	if err != nil {
		// 检查是否为超时错误
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Timeout() {
			return 0, 0, 0
		}
		if errors.Is(err, net.ErrClosed) {
			return 0, 0, 0
		}
		u.logger.Error("从 UDP 接收数据失败", zap.Error(err))
		u.metrics.TransportMessages.WithLabelValues("in", pkg.Result(false)).Inc()
		return 0, 0, 0
	}

	if n > pkg.MaxRenderBufferLength || n > len(message) {
		u.logger.Warn("数据报超出缓冲区容量, 已丢弃",
			zap.Stringer("from", from),
			zap.Int("length", n),
			zap.Int("capacity", min(len(message), pkg.MaxRenderBufferLength)))
		u.metrics.TransportMessages.WithLabelValues("in", pkg.Result(false)).Inc()
		return 0, 0, 0
	}

	connLen, err := EncodeConnectionString(from, connectionString)
	if err != nil {
		u.logger.Warn("无法编码发送方地址, 已丢弃", zap.Stringer("from", from), zap.Error(err))
		u.metrics.TransportMessages.WithLabelValues("in", pkg.Result(false)).Inc()
		return 0, 0, 0
	}
	copy(message, buffer[:n])

	u.logger.Debug("收到数据报", zap.Stringer("from", from), zap.Int("length", n))
	u.metrics.TransportMessages.WithLabelValues("in", pkg.Result(true)).Inc()
	u.metrics.TransportBytes.WithLabelValues("in").Add(float64(n))
	return uint16(n), uint8(connLen), object.NETWORK_TYPE_IP
}

// SendMessage 发送一个数据报, 返回发送的字节数, 失败返回 0
// broadcast 为 true 时发送到 addr | ^mask, 没有 NetworkPort 记录时保持原地址
func (u *UdpTransport) SendMessage(message, connectionString []byte, networkType uint8, broadcast bool) uint16 {
	if len(message) == 0 || len(message) > pkg.MaxRenderBufferLength {
		u.logger.Warn("待发送数据长度非法", zap.Int("length", len(message)))
		u.metrics.TransportMessages.WithLabelValues("out", pkg.Result(false)).Inc()
		return 0
	}
	if networkType != object.NETWORK_TYPE_IP {
		u.logger.Warn("不支持的网络类型", zap.Uint8("networkType", networkType))
		u.metrics.TransportMessages.WithLabelValues("out", pkg.Result(false)).Inc()
		return 0
	}
	dest, err := DecodeConnectionString(connectionString)
	if err != nil {
		u.logger.Warn("连接串解析失败", zap.Error(err))
		u.metrics.TransportMessages.WithLabelValues("out", pkg.Result(false)).Inc()
		return 0
	}

	if broadcast {
		dest = u.broadcastDestination(dest)
	}

	n, err := u.conn.WriteToUDPAddrPort(message, dest)
	if err != nil {
		u.logger.Error("UDP 发送失败", zap.Stringer("to", dest), zap.Error(err))
		u.metrics.TransportMessages.WithLabelValues("out", pkg.Result(false)).Inc()
		return 0
	}
	u.logger.Debug("发送数据报", zap.Stringer("to", dest), zap.Int("length", n), zap.Bool("broadcast", broadcast))
	u.metrics.TransportMessages.WithLabelValues("out", pkg.Result(true)).Inc()
	u.metrics.TransportBytes.WithLabelValues("out").Add(float64(n))
	return uint16(n)
}

func (u *UdpTransport) broadcastDestination(dest netip.AddrPort) netip.AddrPort {
	if u.masks == nil {
		return dest
	}
	mask, ok := u.masks.SubnetMask(u.config.NetworkPort)
	if !ok {
		u.logger.Debug("未找到 NetworkPort 对象, 广播使用原地址", zap.Uint32("networkPort", u.config.NetworkPort))
		return dest
	}
	return netip.AddrPortFrom(DirectedBroadcast(dest.Addr(), mask), dest.Port())
}

// Close 关闭套接字
func (u *UdpTransport) Close() error {
	if err := u.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("关闭 UDP 连接失败: %w", err)
	}
	u.logger.Info("UDP 传输已关闭")
	return nil
}
