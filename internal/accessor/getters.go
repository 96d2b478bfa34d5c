package accessor

import (
	"bacgate/internal/object"

	"go.uber.org/zap"
)

// GetCharacterString 读取文本属性到调用方的缓冲区
// 文本长度必须严格小于 maxElementCount, 且 value 能容纳结尾的 0, 否则不写入任何内容并返回 false
func (a *Accessor) GetCharacterString(addr Address, value []byte, maxElementCount uint32) (uint32, uint8, bool) {
	var (
		text  string
		found bool
		n     uint32
	)
	ok := a.view("get_character_string", addr, func(r object.Record) bool {
		if !textOf(a.version, addr, r, &text) {
			return false
		}
		found = true
		var fits bool
		n, fits = copyText(text, value, maxElementCount)
		return fits
	})
	if found && !ok {
		a.logger.Warn("文本超出缓冲区容量",
			zap.Stringer("property", addr.Property),
			zap.Int("length", len(text)),
			zap.Uint32("maxElementCount", maxElementCount),
			zap.Int("bufferLength", len(value)))
	}
	return n, ENCODING_UTF8, ok
}

// textOf 按 (属性, 对象类型) 取出文本
func textOf(version string, addr Address, r object.Record, text *string) bool {
	switch addr.Property {
	case object.PROP_OBJECT_NAME:
		*text = r.Name()
		return true
	case object.PROP_DESCRIPTION:
		switch o := r.(type) {
		case *object.Device:
			*text = o.Description
			return true
		case *object.AnalogInput:
			*text = o.Description
			return true
		case *object.BinaryInput:
			*text = o.Description
			return true
		}
	case object.PROP_PRESENT_VALUE:
		if o, ok := r.(*object.CharacterStringValue); ok {
			*text = o.PresentValue
			return true
		}
	case object.PROP_APPLICATION_SOFTWARE_VERSION:
		if _, ok := r.(*object.Device); ok {
			*text = version
			return true
		}
	case object.PROP_STATE_TEXT:
		if o, ok := r.(*object.MultiStateInput); ok {
			if i, ok := arrayIndex(addr, len(o.StateText)); ok {
				*text = o.StateText[i]
				return true
			}
		}
	case object.PROP_BIT_TEXT:
		if o, ok := r.(*object.BitstringValue); ok {
			if i, ok := arrayIndex(addr, len(o.BitText)); ok {
				*text = o.BitText[i]
				return true
			}
		}
	}
	return false
}

// copyText 边界检查通过后才写入, 绝不截断
func copyText(text string, value []byte, maxElementCount uint32) (uint32, bool) {
	n := len(text)
	if uint64(n) >= uint64(maxElementCount) || n+1 > len(value) {
		return 0, false
	}
	copy(value, text)
	value[n] = 0
	return uint32(n), true
}

// GetEnumerated 读取枚举属性
func (a *Accessor) GetEnumerated(addr Address, value *uint32) bool {
	return a.view("get_enumerated", addr, func(r object.Record) bool {
		switch addr.Property {
		case object.PROP_RELIABILITY:
			if o, ok := r.(*object.AnalogInput); ok {
				*value = o.Reliability
				return true
			}
		case object.PROP_SYSTEM_STATUS:
			if o, ok := r.(*object.Device); ok {
				*value = o.SystemStatus
				return true
			}
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.BinaryInput); ok {
				*value = 0
				if o.PresentValue {
					*value = 1
				}
				return true
			}
		}
		return false
	})
}

// GetUnsignedInteger 读取无符号整数属性, 数组属性下标为 0 时返回数组长度
func (a *Accessor) GetUnsignedInteger(addr Address, value *uint32) bool {
	return a.view("get_unsigned_integer", addr, func(r object.Record) bool {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			switch o := r.(type) {
			case *object.MultiStateInput:
				*value = o.PresentValue
				return true
			case *object.PositiveIntegerValue:
				*value = o.PresentValue
				return true
			}
		case object.PROP_NUMBER_OF_STATES:
			if o, ok := r.(*object.MultiStateInput); ok {
				*value = uint32(len(o.StateText))
				return true
			}
		case object.PROP_STATE_TEXT:
			if o, ok := r.(*object.MultiStateInput); ok && arrayLength(addr) {
				*value = uint32(len(o.StateText))
				return true
			}
		case object.PROP_BIT_TEXT:
			if o, ok := r.(*object.BitstringValue); ok && arrayLength(addr) {
				*value = uint32(len(o.BitText))
				return true
			}
		case object.PROP_PRIORITY_ARRAY:
			if _, ok := r.(*object.AnalogOutput); ok && arrayLength(addr) {
				*value = object.PriorityArrayLength
				return true
			}
		case object.PROP_BACNET_IP_UDP_PORT:
			if o, ok := r.(*object.NetworkPort); ok {
				*value = uint32(o.BacnetIpUdpPort)
				return true
			}
		case object.PROP_FD_SUBSCRIPTION_LIFETIME:
			if o, ok := r.(*object.NetworkPort); ok {
				*value = uint32(o.FdSubscriptionLifetime)
				return true
			}
		}
		return false
	})
}

// GetSignedInteger 读取有符号整数属性
func (a *Accessor) GetSignedInteger(addr Address, value *int32) bool {
	return a.view("get_signed_integer", addr, func(r object.Record) bool {
		switch addr.Property {
		case object.PROP_UTC_OFFSET:
			if o, ok := r.(*object.Device); ok {
				*value = o.UtcOffset
				return true
			}
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.IntegerValue); ok {
				*value = o.PresentValue
				return true
			}
		}
		return false
	})
}

// GetReal 读取单精度浮点属性
func (a *Accessor) GetReal(addr Address, value *float32) bool {
	return a.view("get_real", addr, func(r object.Record) bool {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			switch o := r.(type) {
			case *object.AnalogInput:
				*value = o.PresentValue
				return true
			case *object.AnalogValue:
				*value = o.PresentValue
				return true
			case *object.AnalogOutput:
				*value = o.PresentValue()
				return true
			}
		case object.PROP_COV_INCREMENT:
			if o, ok := r.(*object.AnalogInput); ok {
				*value = o.CovIncrement
				return true
			}
		case object.PROP_MAX_PRES_VALUE:
			if o, ok := r.(*object.AnalogValue); ok {
				*value = o.MaxPresValue
				return true
			}
		case object.PROP_MIN_PRES_VALUE:
			if o, ok := r.(*object.AnalogValue); ok {
				*value = o.MinPresValue
				return true
			}
		case object.PROP_RELINQUISH_DEFAULT:
			if o, ok := r.(*object.AnalogOutput); ok {
				*value = o.RelinquishDefault
				return true
			}
		case object.PROP_PRIORITY_ARRAY:
			if o, ok := r.(*object.AnalogOutput); ok {
				// 空槽位没有值可读
				if i, ok := arrayIndex(addr, object.PriorityArrayLength); ok && !o.PriorityArray[i].Null {
					*value = o.PriorityArray[i].Value
					return true
				}
			}
		}
		return false
	})
}

// GetDouble 读取双精度浮点属性
func (a *Accessor) GetDouble(addr Address, value *float64) bool {
	return a.view("get_double", addr, func(r object.Record) bool {
		if o, ok := r.(*object.LargeAnalogValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			*value = o.PresentValue
			return true
		}
		return false
	})
}

// GetBool 读取布尔属性
func (a *Accessor) GetBool(addr Address, value *bool) bool {
	return a.view("get_bool", addr, func(r object.Record) bool {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.BinaryInput); ok {
				*value = o.PresentValue
				return true
			}
		case object.PROP_OUT_OF_SERVICE:
			if o, ok := r.(*object.AnalogInput); ok {
				*value = o.OutOfService
				return true
			}
		case object.PROP_CHANGES_PENDING:
			if o, ok := r.(*object.NetworkPort); ok {
				*value = o.ChangesPending
				return true
			}
		case object.PROP_PRIORITY_ARRAY:
			// 引擎以布尔方式询问槽位是否为空
			if o, ok := r.(*object.AnalogOutput); ok {
				if i, ok := arrayIndex(addr, object.PriorityArrayLength); ok {
					*value = o.PriorityArray[i].Null
					return true
				}
			}
		}
		return false
	})
}

// GetBitString 读取位串, 位数必须不超过 maxElementCount 与 len(value)
func (a *Accessor) GetBitString(addr Address, value []bool, maxElementCount uint32) (uint32, bool) {
	var n uint32
	ok := a.view("get_bit_string", addr, func(r object.Record) bool {
		o, ok := r.(*object.BitstringValue)
		if !ok || addr.Property != object.PROP_PRESENT_VALUE {
			return false
		}
		if uint64(len(o.PresentValue)) > uint64(maxElementCount) || len(o.PresentValue) > len(value) {
			return false
		}
		n = uint32(copy(value, o.PresentValue))
		return true
	})
	return n, ok
}

// GetOctetString 读取字节串, 长度必须不超过 maxElementCount 与 len(value)
func (a *Accessor) GetOctetString(addr Address, value []byte, maxElementCount uint32) (uint32, bool) {
	var n uint32
	ok := a.view("get_octet_string", addr, func(r object.Record) bool {
		var src []byte
		switch o := r.(type) {
		case *object.OctetStringValue:
			if addr.Property == object.PROP_PRESENT_VALUE {
				src = o.PresentValue
			}
		case *object.NetworkPort:
			switch addr.Property {
			case object.PROP_IP_ADDRESS:
				src = o.IpAddress[:]
			case object.PROP_IP_SUBNET_MASK:
				src = o.IpSubnetMask[:]
			case object.PROP_IP_DEFAULT_GATEWAY:
				src = o.IpDefaultGateway[:]
			}
		}
		if src == nil || uint64(len(src)) > uint64(maxElementCount) || len(src) > len(value) {
			return false
		}
		n = uint32(copy(value, src))
		return true
	})
	return n, ok
}

// GetDate 读取日期属性
func (a *Accessor) GetDate(addr Address, value *object.Date) bool {
	return a.view("get_date", addr, func(r object.Record) bool {
		if o, ok := r.(*object.DateTimeValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			*value = o.PresentValue.Date
			return true
		}
		return false
	})
}

// GetTime 读取时间属性
func (a *Accessor) GetTime(addr Address, value *object.Time) bool {
	return a.view("get_time", addr, func(r object.Record) bool {
		if o, ok := r.(*object.DateTimeValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			*value = o.PresentValue.Time
			return true
		}
		return false
	})
}
