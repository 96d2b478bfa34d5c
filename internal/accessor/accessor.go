package accessor

import (
	"context"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"go.uber.org/zap"
)

// ErrorCode BACnet 错误码, 写操作失败时返回给引擎
type ErrorCode uint32

const (
	ERROR_CODE_NONE                        ErrorCode = 0
	ERROR_CODE_INVALID_DATA_TYPE           ErrorCode = 9
	ERROR_CODE_UNKNOWN_OBJECT              ErrorCode = 31
	ERROR_CODE_UNKNOWN_PROPERTY            ErrorCode = 32
	ERROR_CODE_VALUE_OUT_OF_RANGE          ErrorCode = 37
	ERROR_CODE_WRITE_ACCESS_DENIED         ErrorCode = 40
	ERROR_CODE_CHARACTER_SET_NOT_SUPPORTED ErrorCode = 41
	ERROR_CODE_INVALID_ARRAY_INDEX         ErrorCode = 42
)

// 字符集编码, 仅支持 UTF-8
const ENCODING_UTF8 uint8 = 0

// Address 定位一个属性: (设备, 对象类型, 对象实例, 属性, [数组下标])
type Address struct {
	DeviceInstance uint32
	ObjectType     object.ObjectType
	ObjectInstance uint32
	Property       object.PropertyID
	UseArrayIndex  bool
	ArrayIndex     uint32
}

func (a Address) key() object.Key {
	return object.Key{Type: a.ObjectType, Instance: a.ObjectInstance}
}

// ChangeFunc 写操作成功后的通知, 在释放锁之后调用
type ChangeFunc func(addr Address, objectName string, value interface{})

// Accessor 按 (属性, 对象类型) 把引擎的类型化读写请求分派到对象库
// 每次调用最多加锁查找一次, 不做任何网络 I/O
type Accessor struct {
	store    *object.Store
	version  string
	logger   *zap.Logger
	metrics  *pkg.Metrics
	onChange ChangeFunc
}

// New 创建 Accessor, version 作为设备的 Application_Software_Version
func New(ctx context.Context, store *object.Store, version string) *Accessor {
	return &Accessor{
		store:   store,
		version: version,
		logger:  pkg.LoggerFromContext(ctx),
		metrics: pkg.MetricsFromContext(ctx),
	}
}

// OnChange 设置写操作成功后的通知函数
func (a *Accessor) OnChange(fn ChangeFunc) {
	a.onChange = fn
}

// view 在读锁内执行 fn, 设备实例不匹配或对象不存在时返回 false
func (a *Accessor) view(op string, addr Address, fn func(object.Record) bool) bool {
	ok := false
	if addr.DeviceInstance == a.store.DeviceInstance() {
		a.store.Get(addr.key(), func(r object.Record) { ok = fn(r) })
	}
	a.metrics.AccessorCalls.WithLabelValues(op, pkg.Result(ok)).Inc()
	if !ok {
		a.logger.Debug("属性读取失败",
			zap.String("op", op),
			zap.Uint32("device", addr.DeviceInstance),
			zap.Stringer("objectType", addr.ObjectType),
			zap.Uint32("instance", addr.ObjectInstance),
			zap.Stringer("property", addr.Property))
	}
	return ok
}

// update 在写锁内执行 fn
func (a *Accessor) update(op string, addr Address, value interface{}, fn func(object.Record) (ErrorCode, bool)) (ErrorCode, bool) {
	code, ok := ERROR_CODE_UNKNOWN_OBJECT, false
	var name string
	if addr.DeviceInstance == a.store.DeviceInstance() {
		a.store.GetMut(addr.key(), func(r object.Record) {
			// 可写属性都不是数组
			if addr.UseArrayIndex {
				code = ERROR_CODE_INVALID_ARRAY_INDEX
				return
			}
			code, ok = fn(r)
			name = r.Name()
		})
	}
	a.metrics.AccessorCalls.WithLabelValues(op, pkg.Result(ok)).Inc()
	if !ok {
		a.logger.Warn("属性写入失败",
			zap.String("op", op),
			zap.Stringer("objectType", addr.ObjectType),
			zap.Uint32("instance", addr.ObjectInstance),
			zap.Stringer("property", addr.Property),
			zap.Uint32("errorCode", uint32(code)))
		return code, false
	}
	if a.onChange != nil {
		a.onChange(addr, name, value)
	}
	return ERROR_CODE_NONE, true
}

// arrayIndex 将 1 起始的 BACnet 数组下标转换为切片下标
func arrayIndex(addr Address, length int) (int, bool) {
	if !addr.UseArrayIndex || addr.ArrayIndex == 0 || uint64(addr.ArrayIndex) > uint64(length) {
		return 0, false
	}
	return int(addr.ArrayIndex) - 1, true
}

// arrayLength 下标为 0 时返回数组长度
func arrayLength(addr Address) bool {
	return addr.UseArrayIndex && addr.ArrayIndex == 0
}
