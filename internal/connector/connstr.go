package connector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

// ConnectionStringLength BACnet/IP 连接串: 4 字节 IPv4 地址 + 2 字节大端端口
const ConnectionStringLength = 6

var (
	ErrUnsupportedAddress    = errors.New("unsupported address family")
	ErrShortConnectionString = errors.New("connection string too short")
)

// EncodeConnectionString 将地址编码进 dst, 返回写入的字节数
// IPv4 映射的 IPv6 地址会先还原为 IPv4, 真正的 IPv6 地址返回 ErrUnsupportedAddress
func EncodeConnectionString(addr netip.AddrPort, dst []byte) (int, error) {
	ip := addr.Addr().Unmap()
	if !ip.Is4() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedAddress, addr)
	}
	if len(dst) < ConnectionStringLength {
		return 0, fmt.Errorf("%w: need %d bytes, got %d", ErrShortConnectionString, ConnectionStringLength, len(dst))
	}
	v4 := ip.As4()
	copy(dst, v4[:])
	binary.BigEndian.PutUint16(dst[4:], addr.Port())
	return ConnectionStringLength, nil
}

// DecodeConnectionString 解析连接串的前 6 个字节
func DecodeConnectionString(src []byte) (netip.AddrPort, error) {
	if len(src) < ConnectionStringLength {
		return netip.AddrPort{}, fmt.Errorf("%w: need %d bytes, got %d", ErrShortConnectionString, ConnectionStringLength, len(src))
	}
	ip := netip.AddrFrom4([4]byte(src[:4]))
	return netip.AddrPortFrom(ip, binary.BigEndian.Uint16(src[4:ConnectionStringLength])), nil
}

// DirectedBroadcast 计算定向广播地址 addr | ^mask
func DirectedBroadcast(addr netip.Addr, mask [4]byte) netip.Addr {
	if !addr.Unmap().Is4() {
		return addr
	}
	v4 := addr.Unmap().As4()
	for i := range v4 {
		v4[i] |= ^mask[i]
	}
	return netip.AddrFrom4(v4)
}
