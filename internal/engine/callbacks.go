package engine

import (
	"errors"
	"fmt"
	"time"

	"bacgate/internal/accessor"
	"bacgate/internal/object"
)

var ErrMissingCallback = errors.New("required callback not set")

// Transport 是协议栈收发数据报所需的最小接口, connector.UdpTransport 实现了它
type Transport interface {
	ReceiveMessage(message, connectionString []byte) (uint16, uint8, uint8)
	SendMessage(message, connectionString []byte, networkType uint8, broadcast bool) uint16
}

// Callbacks 协议栈回调表
// ReceiveMessage、SendMessage、GetSystemTime 以及文本、枚举、实数、有符号整数四个读取回调为必需
type Callbacks struct {
	ReceiveMessage func(message, connectionString []byte) (uint16, uint8, uint8)
	SendMessage    func(message, connectionString []byte, networkType uint8, broadcast bool) uint16
	GetSystemTime  func() uint64

	GetPropertyCharacterString func(addr accessor.Address, value []byte, maxElementCount uint32) (uint32, uint8, bool)
	GetPropertyEnumerated      func(addr accessor.Address, value *uint32) bool
	GetPropertyReal            func(addr accessor.Address, value *float32) bool
	GetPropertySignedInteger   func(addr accessor.Address, value *int32) bool
	GetPropertyUnsignedInteger func(addr accessor.Address, value *uint32) bool
	GetPropertyDouble          func(addr accessor.Address, value *float64) bool
	GetPropertyBool            func(addr accessor.Address, value *bool) bool
	GetPropertyBitString       func(addr accessor.Address, value []bool, maxElementCount uint32) (uint32, bool)
	GetPropertyOctetString     func(addr accessor.Address, value []byte, maxElementCount uint32) (uint32, bool)
	GetPropertyDate            func(addr accessor.Address, value *object.Date) bool
	GetPropertyTime            func(addr accessor.Address, value *object.Time) bool

	SetPropertyCharacterString func(addr accessor.Address, value string, encoding uint8) (accessor.ErrorCode, bool)
	SetPropertyEnumerated      func(addr accessor.Address, value uint32) (accessor.ErrorCode, bool)
	SetPropertyReal            func(addr accessor.Address, value float32, priority uint8) (accessor.ErrorCode, bool)
	SetPropertySignedInteger   func(addr accessor.Address, value int32) (accessor.ErrorCode, bool)
	SetPropertyUnsignedInteger func(addr accessor.Address, value uint32) (accessor.ErrorCode, bool)
	SetPropertyDouble          func(addr accessor.Address, value float64) (accessor.ErrorCode, bool)
	SetPropertyBool            func(addr accessor.Address, value bool) (accessor.ErrorCode, bool)
	SetPropertyBitString       func(addr accessor.Address, value []bool) (accessor.ErrorCode, bool)
	SetPropertyOctetString     func(addr accessor.Address, value []byte) (accessor.ErrorCode, bool)
	SetPropertyDate            func(addr accessor.Address, value object.Date) (accessor.ErrorCode, bool)
	SetPropertyTime            func(addr accessor.Address, value object.Time) (accessor.ErrorCode, bool)
	SetPropertyNull            func(addr accessor.Address, priority uint8) (accessor.ErrorCode, bool)
}

// NewCallbacks 把传输层与 Accessor 绑定为完整的回调表, now 为 nil 时使用 time.Now
func NewCallbacks(transport Transport, acc *accessor.Accessor, now func() time.Time) *Callbacks {
	if now == nil {
		now = time.Now
	}
	return &Callbacks{
		ReceiveMessage: transport.ReceiveMessage,
		SendMessage:    transport.SendMessage,
		GetSystemTime:  func() uint64 { return uint64(now().Unix()) },

		GetPropertyCharacterString: acc.GetCharacterString,
		GetPropertyEnumerated:      acc.GetEnumerated,
		GetPropertyReal:            acc.GetReal,
		GetPropertySignedInteger:   acc.GetSignedInteger,
		GetPropertyUnsignedInteger: acc.GetUnsignedInteger,
		GetPropertyDouble:          acc.GetDouble,
		GetPropertyBool:            acc.GetBool,
		GetPropertyBitString:       acc.GetBitString,
		GetPropertyOctetString:     acc.GetOctetString,
		GetPropertyDate:            acc.GetDate,
		GetPropertyTime:            acc.GetTime,

		SetPropertyCharacterString: acc.SetCharacterString,
		SetPropertyEnumerated:      acc.SetEnumerated,
		SetPropertyReal:            acc.SetReal,
		SetPropertySignedInteger:   acc.SetSignedInteger,
		SetPropertyUnsignedInteger: acc.SetUnsignedInteger,
		SetPropertyDouble:          acc.SetDouble,
		SetPropertyBool:            acc.SetBool,
		SetPropertyBitString:       acc.SetBitString,
		SetPropertyOctetString:     acc.SetOctetString,
		SetPropertyDate:            acc.SetDate,
		SetPropertyTime:            acc.SetTime,
		SetPropertyNull:            acc.SetNull,
	}
}

// Validate 检查必需回调是否齐全
func (c *Callbacks) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: callbacks is nil", ErrMissingCallback)
	}
	required := []struct {
		name string
		set  bool
	}{
		{"ReceiveMessage", c.ReceiveMessage != nil},
		{"SendMessage", c.SendMessage != nil},
		{"GetSystemTime", c.GetSystemTime != nil},
		{"GetPropertyCharacterString", c.GetPropertyCharacterString != nil},
		{"GetPropertyEnumerated", c.GetPropertyEnumerated != nil},
		{"GetPropertyReal", c.GetPropertyReal != nil},
		{"GetPropertySignedInteger", c.GetPropertySignedInteger != nil},
	}
	for _, r := range required {
		if !r.set {
			return fmt.Errorf("%w: %s", ErrMissingCallback, r.name)
		}
	}
	return nil
}
