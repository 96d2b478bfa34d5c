package connector

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedMasks 模拟对象库中的 NetworkPort 记录
type fixedMasks map[uint32][4]byte

func (m fixedMasks) SubnetMask(instance uint32) ([4]byte, bool) {
	mask, ok := m[instance]
	return mask, ok
}

func newTestTransport(t *testing.T, masks SubnetMasks) (*UdpTransport, *pkg.Metrics) {
	t.Helper()
	metrics := pkg.NewMetrics()
	ctx := pkg.WithMetrics(context.Background(), metrics)
	transport, err := NewUdpTransport(ctx, &pkg.TransportConfig{
		Url:         "127.0.0.1:0",
		Timeout:     50 * time.Millisecond,
		NetworkPort: 56,
	}, masks)
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })
	return transport, metrics
}

func dialTransport(t *testing.T, transport *UdpTransport) *net.UDPConn {
	t.Helper()
	peer, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(transport.LocalAddr()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })
	return peer
}

func TestConnectionString(t *testing.T) {
	Convey("连接串编解码", t, func() {
		buf := make([]byte, ConnectionStringLength)

		Convey("IPv4 往返一致", func() {
			addr := netip.MustParseAddrPort("198.168.68.105:47808")
			n, err := EncodeConnectionString(addr, buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 6)
			So(buf, ShouldResemble, []byte{198, 168, 68, 105, 0xBA, 0xC0})

			decoded, err := DecodeConnectionString(buf)
			So(err, ShouldBeNil)
			So(decoded, ShouldEqual, addr)
		})

		Convey("IPv4 映射地址被还原", func() {
			addr := netip.MustParseAddrPort("[::ffff:10.0.0.1]:47808")
			n, err := EncodeConnectionString(addr, buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 6)
			So(buf[:4], ShouldResemble, []byte{10, 0, 0, 1})
		})

		Convey("IPv6 地址被拒绝", func() {
			_, err := EncodeConnectionString(netip.MustParseAddrPort("[2001:db8::1]:47808"), buf)
			So(errors.Is(err, ErrUnsupportedAddress), ShouldBeTrue)
		})

		Convey("过短的连接串被拒绝", func() {
			_, err := EncodeConnectionString(netip.MustParseAddrPort("10.0.0.1:1"), buf[:5])
			So(errors.Is(err, ErrShortConnectionString), ShouldBeTrue)
			_, err = DecodeConnectionString(buf[:3])
			So(errors.Is(err, ErrShortConnectionString), ShouldBeTrue)
		})
	})
}

func TestDirectedBroadcast(t *testing.T) {
	addr := netip.MustParseAddr("198.168.68.105")
	assert.Equal(t, netip.MustParseAddr("198.168.68.255"), DirectedBroadcast(addr, [4]byte{255, 255, 255, 0}))
	assert.Equal(t, netip.MustParseAddr("198.168.255.255"), DirectedBroadcast(addr, [4]byte{255, 255, 0, 0}))
	assert.Equal(t, addr, DirectedBroadcast(addr, [4]byte{255, 255, 255, 255}))
}

func TestReceiveMessage(t *testing.T) {
	Convey("接收数据报", t, func() {
		transport, metrics := newTestTransport(t, nil)
		message := make([]byte, pkg.MaxRenderBufferLength)
		connectionString := make([]byte, ConnectionStringLength)

		Convey("超时返回 0", func() {
			start := time.Now()
			n, connLen, _ := transport.ReceiveMessage(message, connectionString)
			So(n, ShouldEqual, 0)
			So(connLen, ShouldEqual, 0)
			So(time.Since(start), ShouldBeLessThan, time.Second)
		})

		Convey("收到的数据与发送方地址", func() {
			peer := dialTransport(t, transport)
			_, err := peer.Write([]byte{0x81, 0x0b, 0x00, 0x0c})
			So(err, ShouldBeNil)

			var n uint16
			var connLen, networkType uint8
			for i := 0; i < 20 && n == 0; i++ {
				n, connLen, networkType = transport.ReceiveMessage(message, connectionString)
			}
			So(n, ShouldEqual, 4)
			So(message[:n], ShouldResemble, []byte{0x81, 0x0b, 0x00, 0x0c})
			So(connLen, ShouldEqual, ConnectionStringLength)
			So(networkType, ShouldEqual, object.NETWORK_TYPE_IP)

			from, err := DecodeConnectionString(connectionString)
			So(err, ShouldBeNil)
			So(from, ShouldEqual, peer.LocalAddr().(*net.UDPAddr).AddrPort())
			So(testutil.ToFloat64(metrics.TransportBytes.WithLabelValues("in")), ShouldEqual, 4)
		})

		Convey("超过调用方缓冲区的数据报被丢弃且不写入", func() {
			peer := dialTransport(t, transport)
			_, err := peer.Write(make([]byte, 100))
			So(err, ShouldBeNil)

			small := []byte{0xAA, 0xAA, 0xAA, 0xAA}
			var n uint16
			for i := 0; i < 20 && testutil.ToFloat64(metrics.TransportMessages.WithLabelValues("in", "fail")) == 0; i++ {
				n, _, _ = transport.ReceiveMessage(small, connectionString)
			}
			So(n, ShouldEqual, 0)
			So(small, ShouldResemble, []byte{0xAA, 0xAA, 0xAA, 0xAA})
		})

		Convey("缓冲区非法时不读取套接字, 数据报留给下一次调用", func() {
			peer := dialTransport(t, transport)
			_, err := peer.Write([]byte("hello"))
			So(err, ShouldBeNil)
			time.Sleep(20 * time.Millisecond)

			n, connLen, _ := transport.ReceiveMessage(message, nil)
			So(n, ShouldEqual, 0)
			So(connLen, ShouldEqual, 0)
			n, _, _ = transport.ReceiveMessage(nil, connectionString)
			So(n, ShouldEqual, 0)
			n, _, _ = transport.ReceiveMessage(message, connectionString[:5])
			So(n, ShouldEqual, 0)

			for i := 0; i < 20 && n == 0; i++ {
				n, connLen, _ = transport.ReceiveMessage(message, connectionString)
			}
			So(n, ShouldEqual, 5)
			So(connLen, ShouldEqual, ConnectionStringLength)
			So(string(message[:n]), ShouldEqual, "hello")
		})
	})
}

func TestSendMessage(t *testing.T) {
	Convey("发送数据报", t, func() {
		listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		So(err, ShouldBeNil)
		defer listener.Close()
		target := listener.LocalAddr().(*net.UDPAddr).AddrPort()

		connectionString := make([]byte, ConnectionStringLength)
		_, err = EncodeConnectionString(target, connectionString)
		So(err, ShouldBeNil)

		read := func() []byte {
			buf := make([]byte, 2048)
			_ = listener.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, _, err := listener.ReadFromUDP(buf)
			So(err, ShouldBeNil)
			return buf[:n]
		}

		Convey("单播", func() {
			transport, _ := newTestTransport(t, nil)
			n := transport.SendMessage([]byte("who-is"), connectionString, object.NETWORK_TYPE_IP, false)
			So(n, ShouldEqual, 6)
			So(string(read()), ShouldEqual, "who-is")
		})

		Convey("没有 NetworkPort 记录时广播保持原地址", func() {
			transport, _ := newTestTransport(t, fixedMasks{})
			n := transport.SendMessage([]byte("i-am"), connectionString, object.NETWORK_TYPE_IP, true)
			So(n, ShouldEqual, 4)
			So(string(read()), ShouldEqual, "i-am")
		})

		Convey("全 1 掩码的定向广播等于原地址", func() {
			transport, _ := newTestTransport(t, fixedMasks{56: {255, 255, 255, 255}})
			n := transport.SendMessage([]byte("i-am"), connectionString, object.NETWORK_TYPE_IP, true)
			So(n, ShouldEqual, 4)
			So(string(read()), ShouldEqual, "i-am")
		})

		Convey("非 IP 网络类型不发生任何套接字操作", func() {
			transport, metrics := newTestTransport(t, nil)
			n := transport.SendMessage([]byte("x"), connectionString, object.NETWORK_TYPE_MSTP, false)
			So(n, ShouldEqual, 0)
			So(testutil.ToFloat64(metrics.TransportBytes.WithLabelValues("out")), ShouldEqual, 0)
			So(testutil.ToFloat64(metrics.TransportMessages.WithLabelValues("out", "fail")), ShouldEqual, 1)
		})

		Convey("空消息、超长消息与短连接串被拒绝", func() {
			transport, _ := newTestTransport(t, nil)
			So(transport.SendMessage(nil, connectionString, object.NETWORK_TYPE_IP, false), ShouldEqual, 0)
			So(transport.SendMessage(make([]byte, pkg.MaxRenderBufferLength+1), connectionString, object.NETWORK_TYPE_IP, false), ShouldEqual, 0)
			So(transport.SendMessage([]byte("x"), connectionString[:4], object.NETWORK_TYPE_IP, false), ShouldEqual, 0)
		})
	})
}

func TestBindFailureIsFatal(t *testing.T) {
	_, err := NewUdpTransport(context.Background(), &pkg.TransportConfig{Url: "not-an-address"}, nil)
	assert.Error(t, err)
}
