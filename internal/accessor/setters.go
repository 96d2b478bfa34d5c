package accessor

import (
	"math"
	"unicode/utf8"

	"bacgate/internal/object"
)

// SetCharacterString 写入文本属性
func (a *Accessor) SetCharacterString(addr Address, value string, encoding uint8) (ErrorCode, bool) {
	return a.update("set_character_string", addr, value, func(r object.Record) (ErrorCode, bool) {
		if encoding != ENCODING_UTF8 || !utf8.ValidString(value) {
			return ERROR_CODE_CHARACTER_SET_NOT_SUPPORTED, false
		}
		switch addr.Property {
		case object.PROP_OBJECT_NAME:
			if value == "" {
				return ERROR_CODE_VALUE_OUT_OF_RANGE, false
			}
			return setObjectName(r, value)
		case object.PROP_DESCRIPTION:
			switch o := r.(type) {
			case *object.Device:
				o.Description = value
				return ERROR_CODE_NONE, true
			case *object.AnalogInput:
				o.Description = value
				return ERROR_CODE_NONE, true
			case *object.BinaryInput:
				o.Description = value
				return ERROR_CODE_NONE, true
			}
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.CharacterStringValue); ok {
				o.PresentValue = value
				return ERROR_CODE_NONE, true
			}
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

func setObjectName(r object.Record, name string) (ErrorCode, bool) {
	switch o := r.(type) {
	case *object.Device:
		o.ObjectName = name
	case *object.AnalogInput:
		o.ObjectName = name
	case *object.AnalogOutput:
		o.ObjectName = name
	case *object.AnalogValue:
		o.ObjectName = name
	case *object.BinaryInput:
		o.ObjectName = name
	case *object.MultiStateInput:
		o.ObjectName = name
	case *object.BitstringValue:
		o.ObjectName = name
	case *object.CharacterStringValue:
		o.ObjectName = name
	case *object.DateTimeValue:
		o.ObjectName = name
	case *object.IntegerValue:
		o.ObjectName = name
	case *object.LargeAnalogValue:
		o.ObjectName = name
	case *object.OctetStringValue:
		o.ObjectName = name
	case *object.PositiveIntegerValue:
		o.ObjectName = name
	case *object.NetworkPort:
		o.ObjectName = name
	default:
		return ERROR_CODE_WRITE_ACCESS_DENIED, false
	}
	return ERROR_CODE_NONE, true
}

// SetEnumerated 写入枚举属性
func (a *Accessor) SetEnumerated(addr Address, value uint32) (ErrorCode, bool) {
	return a.update("set_enumerated", addr, value, func(r object.Record) (ErrorCode, bool) {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.BinaryInput); ok {
				if value > 1 {
					return ERROR_CODE_VALUE_OUT_OF_RANGE, false
				}
				o.PresentValue = value == 1
				return ERROR_CODE_NONE, true
			}
		case object.PROP_RELIABILITY:
			if o, ok := r.(*object.AnalogInput); ok {
				o.Reliability = value
				return ERROR_CODE_NONE, true
			}
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetUnsignedInteger 写入无符号整数属性
func (a *Accessor) SetUnsignedInteger(addr Address, value uint32) (ErrorCode, bool) {
	return a.update("set_unsigned_integer", addr, value, func(r object.Record) (ErrorCode, bool) {
		if addr.Property != object.PROP_PRESENT_VALUE {
			return ERROR_CODE_UNKNOWN_PROPERTY, false
		}
		switch o := r.(type) {
		case *object.MultiStateInput:
			// 状态值从 1 开始
			if value == 0 || uint64(value) > uint64(len(o.StateText)) {
				return ERROR_CODE_VALUE_OUT_OF_RANGE, false
			}
			o.PresentValue = value
			return ERROR_CODE_NONE, true
		case *object.PositiveIntegerValue:
			o.PresentValue = value
			return ERROR_CODE_NONE, true
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetSignedInteger 写入有符号整数属性
func (a *Accessor) SetSignedInteger(addr Address, value int32) (ErrorCode, bool) {
	return a.update("set_signed_integer", addr, value, func(r object.Record) (ErrorCode, bool) {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.IntegerValue); ok {
				o.PresentValue = value
				return ERROR_CODE_NONE, true
			}
		case object.PROP_UTC_OFFSET:
			if o, ok := r.(*object.Device); ok {
				// 单位为分钟
				if value < -1440 || value > 1440 {
					return ERROR_CODE_VALUE_OUT_OF_RANGE, false
				}
				o.UtcOffset = value
				return ERROR_CODE_NONE, true
			}
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetReal 写入单精度浮点属性, priority 仅对 AnalogOutput 的 Present_Value 有效
func (a *Accessor) SetReal(addr Address, value float32, priority uint8) (ErrorCode, bool) {
	return a.update("set_real", addr, value, func(r object.Record) (ErrorCode, bool) {
		// NaN 会绕过所有范围比较
		if !finite(float64(value)) {
			return ERROR_CODE_VALUE_OUT_OF_RANGE, false
		}
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			switch o := r.(type) {
			case *object.AnalogInput:
				if !o.OutOfService {
					return ERROR_CODE_WRITE_ACCESS_DENIED, false
				}
				o.PresentValue = value
				return ERROR_CODE_NONE, true
			case *object.AnalogValue:
				if value < o.MinPresValue || value > o.MaxPresValue {
					return ERROR_CODE_VALUE_OUT_OF_RANGE, false
				}
				o.PresentValue = value
				return ERROR_CODE_NONE, true
			case *object.AnalogOutput:
				if !o.Command(priority, value) {
					return ERROR_CODE_VALUE_OUT_OF_RANGE, false
				}
				return ERROR_CODE_NONE, true
			}
		case object.PROP_COV_INCREMENT:
			if o, ok := r.(*object.AnalogInput); ok {
				if value < 0 {
					return ERROR_CODE_VALUE_OUT_OF_RANGE, false
				}
				o.CovIncrement = value
				return ERROR_CODE_NONE, true
			}
		case object.PROP_RELINQUISH_DEFAULT:
			if o, ok := r.(*object.AnalogOutput); ok {
				o.RelinquishDefault = value
				return ERROR_CODE_NONE, true
			}
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SetNull 写入空值, 释放 AnalogOutput 指定优先级的命令
func (a *Accessor) SetNull(addr Address, priority uint8) (ErrorCode, bool) {
	return a.update("set_null", addr, nil, func(r object.Record) (ErrorCode, bool) {
		o, ok := r.(*object.AnalogOutput)
		if !ok || addr.Property != object.PROP_PRESENT_VALUE {
			return ERROR_CODE_INVALID_DATA_TYPE, false
		}
		if !o.Relinquish(priority) {
			return ERROR_CODE_VALUE_OUT_OF_RANGE, false
		}
		return ERROR_CODE_NONE, true
	})
}

// SetDouble 写入双精度浮点属性
func (a *Accessor) SetDouble(addr Address, value float64) (ErrorCode, bool) {
	return a.update("set_double", addr, value, func(r object.Record) (ErrorCode, bool) {
		if !finite(value) {
			return ERROR_CODE_VALUE_OUT_OF_RANGE, false
		}
		if o, ok := r.(*object.LargeAnalogValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			o.PresentValue = value
			return ERROR_CODE_NONE, true
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetBool 写入布尔属性
func (a *Accessor) SetBool(addr Address, value bool) (ErrorCode, bool) {
	return a.update("set_bool", addr, value, func(r object.Record) (ErrorCode, bool) {
		switch addr.Property {
		case object.PROP_PRESENT_VALUE:
			if o, ok := r.(*object.BinaryInput); ok {
				o.PresentValue = value
				return ERROR_CODE_NONE, true
			}
		case object.PROP_OUT_OF_SERVICE:
			if o, ok := r.(*object.AnalogInput); ok {
				o.OutOfService = value
				return ERROR_CODE_NONE, true
			}
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetBitString 写入位串, 位数必须与 Bit_Text 一致
func (a *Accessor) SetBitString(addr Address, value []bool) (ErrorCode, bool) {
	bits := append([]bool(nil), value...)
	return a.update("set_bit_string", addr, bits, func(r object.Record) (ErrorCode, bool) {
		o, ok := r.(*object.BitstringValue)
		if !ok || addr.Property != object.PROP_PRESENT_VALUE {
			return ERROR_CODE_UNKNOWN_PROPERTY, false
		}
		if len(bits) != len(o.BitText) {
			return ERROR_CODE_VALUE_OUT_OF_RANGE, false
		}
		o.PresentValue = bits
		return ERROR_CODE_NONE, true
	})
}

// SetOctetString 写入字节串, 记录持有副本
func (a *Accessor) SetOctetString(addr Address, value []byte) (ErrorCode, bool) {
	octets := append([]byte(nil), value...)
	return a.update("set_octet_string", addr, octets, func(r object.Record) (ErrorCode, bool) {
		if o, ok := r.(*object.OctetStringValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			o.PresentValue = octets
			return ERROR_CODE_NONE, true
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetDate 写入日期部分
func (a *Accessor) SetDate(addr Address, value object.Date) (ErrorCode, bool) {
	return a.update("set_date", addr, value, func(r object.Record) (ErrorCode, bool) {
		if o, ok := r.(*object.DateTimeValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			o.PresentValue.Date = value
			return ERROR_CODE_NONE, true
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}

// SetTime 写入时间部分
func (a *Accessor) SetTime(addr Address, value object.Time) (ErrorCode, bool) {
	return a.update("set_time", addr, value, func(r object.Record) (ErrorCode, bool) {
		if o, ok := r.(*object.DateTimeValue); ok && addr.Property == object.PROP_PRESENT_VALUE {
			o.PresentValue.Time = value
			return ERROR_CODE_NONE, true
		}
		return ERROR_CODE_UNKNOWN_PROPERTY, false
	})
}
