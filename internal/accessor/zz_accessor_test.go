package accessor

import (
	"context"
	"math"
	"testing"

	"bacgate/internal/object"
	"bacgate/internal/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testDevice = 389001

func newTestAccessor(t *testing.T) (*Accessor, *object.Store, *pkg.Metrics) {
	t.Helper()
	store, err := object.NewDefaultStore(testDevice)
	require.NoError(t, err)
	metrics := pkg.NewMetrics()
	ctx := pkg.WithMetrics(context.Background(), metrics)
	return New(ctx, store, "0.0.1"), store, metrics
}

func addr(t object.ObjectType, instance uint32, property object.PropertyID) Address {
	return Address{DeviceInstance: testDevice, ObjectType: t, ObjectInstance: instance, Property: property}
}

func TestGetCharacterString(t *testing.T) {
	Convey("读取文本属性", t, func() {
		a, store, metrics := newTestAccessor(t)
		key := object.Key{Type: object.OBJECT_ANALOG_INPUT, Instance: 0}
		// 名称长度正好为 20
		store.GetMut(key, func(r object.Record) { r.(*object.AnalogInput).ObjectName = "ABCDEFGHIJKLMNOPQRST" })
		name := addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_OBJECT_NAME)

		Convey("容量等于长度时失败且不写入", func() {
			buf := make([]byte, 20)
			for i := range buf {
				buf[i] = 0xFF
			}
			n, _, ok := a.GetCharacterString(name, buf, 20)
			So(ok, ShouldBeFalse)
			So(n, ShouldEqual, 0)
			So(buf[0], ShouldEqual, byte(0xFF))
			So(testutil.ToFloat64(metrics.AccessorCalls.WithLabelValues("get_character_string", "fail")), ShouldEqual, 1)
			So(testutil.ToFloat64(metrics.AccessorCalls.WithLabelValues("get_character_string", "ok")), ShouldEqual, 0)
		})

		Convey("容量大于长度时成功并写入结尾 0", func() {
			buf := make([]byte, 21)
			n, encoding, ok := a.GetCharacterString(name, buf, 21)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 20)
			So(encoding, ShouldEqual, ENCODING_UTF8)
			So(string(buf[:n]), ShouldEqual, "ABCDEFGHIJKLMNOPQRST")
			So(buf[20], ShouldEqual, byte(0))
		})

		Convey("缓冲区短于声明容量时失败", func() {
			buf := make([]byte, 10)
			_, _, ok := a.GetCharacterString(name, buf, 64)
			So(ok, ShouldBeFalse)
		})

		Convey("设备的软件版本", func() {
			buf := make([]byte, 32)
			n, _, ok := a.GetCharacterString(addr(object.OBJECT_DEVICE, testDevice, object.PROP_APPLICATION_SOFTWARE_VERSION), buf, 32)
			So(ok, ShouldBeTrue)
			So(string(buf[:n]), ShouldEqual, "0.0.1")
		})

		Convey("状态文本按 1 起始下标读取", func() {
			buf := make([]byte, 32)
			at := addr(object.OBJECT_MULTI_STATE_INPUT, 13, object.PROP_STATE_TEXT)
			at.UseArrayIndex, at.ArrayIndex = true, 2
			n, _, ok := a.GetCharacterString(at, buf, 32)
			So(ok, ShouldBeTrue)
			So(string(buf[:n]), ShouldEqual, "two")

			at.ArrayIndex = 4
			_, _, ok = a.GetCharacterString(at, buf, 32)
			So(ok, ShouldBeFalse)
		})

		Convey("不支持的 (类型, 属性) 失败", func() {
			buf := make([]byte, 32)
			_, _, ok := a.GetCharacterString(addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_DESCRIPTION), buf, 32)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestGetEnumeratedReliability(t *testing.T) {
	a, _, metrics := newTestAccessor(t)

	value := uint32(99)
	assert.True(t, a.GetEnumerated(addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_RELIABILITY), &value))
	assert.Equal(t, uint32(0), value)

	assert.False(t, a.GetEnumerated(addr(object.OBJECT_ANALOG_INPUT, 999, object.PROP_RELIABILITY), &value))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AccessorCalls.WithLabelValues("get_enumerated", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AccessorCalls.WithLabelValues("get_enumerated", "fail")))
}

func TestWrongDeviceInstanceFails(t *testing.T) {
	a, _, _ := newTestAccessor(t)
	at := addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_PRESENT_VALUE)
	at.DeviceInstance = testDevice + 1
	var pv float32
	assert.False(t, a.GetReal(at, &pv))
}

func TestNumericGetters(t *testing.T) {
	a, _, _ := newTestAccessor(t)

	var real float32
	require.True(t, a.GetReal(addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_PRESENT_VALUE), &real))
	assert.InDelta(t, 1.001, real, 1e-6)
	require.True(t, a.GetReal(addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_MAX_PRES_VALUE), &real))
	assert.Equal(t, float32(1000), real)

	var double float64
	require.True(t, a.GetDouble(addr(object.OBJECT_LARGE_ANALOG_VALUE, 46, object.PROP_PRESENT_VALUE), &double))
	assert.InDelta(t, 123456789.85, double, 1e-6)

	var signed int32
	require.True(t, a.GetSignedInteger(addr(object.OBJECT_INTEGER_VALUE, 45, object.PROP_PRESENT_VALUE), &signed))
	assert.Equal(t, int32(42), signed)

	var unsigned uint32
	require.True(t, a.GetUnsignedInteger(addr(object.OBJECT_POSITIVE_INTEGER_VALUE, 48, object.PROP_PRESENT_VALUE), &unsigned))
	assert.Equal(t, uint32(12345), unsigned)
	require.True(t, a.GetUnsignedInteger(addr(object.OBJECT_NETWORK_PORT, 56, object.PROP_BACNET_IP_UDP_PORT), &unsigned))
	assert.Equal(t, uint32(47808), unsigned)

	at := addr(object.OBJECT_ANALOG_OUTPUT, 1, object.PROP_PRIORITY_ARRAY)
	at.UseArrayIndex = true
	require.True(t, a.GetUnsignedInteger(at, &unsigned))
	assert.Equal(t, uint32(object.PriorityArrayLength), unsigned)

	var b bool
	require.True(t, a.GetBool(addr(object.OBJECT_BINARY_INPUT, 3, object.PROP_PRESENT_VALUE), &b))
	assert.True(t, b)

	var date object.Date
	require.True(t, a.GetDate(addr(object.OBJECT_DATETIME_VALUE, 44, object.PROP_PRESENT_VALUE), &date))
	assert.Equal(t, object.Date{Year: 122, Month: 1, Day: 28, Weekday: 5}, date)
	var tm object.Time
	require.True(t, a.GetTime(addr(object.OBJECT_DATETIME_VALUE, 44, object.PROP_PRESENT_VALUE), &tm))
	assert.Equal(t, uint8(55), tm.Hundredths)
}

func TestOctetAndBitStrings(t *testing.T) {
	a, _, _ := newTestAccessor(t)

	octets := make([]byte, 16)
	n, ok := a.GetOctetString(addr(object.OBJECT_OCTETSTRING_VALUE, 47, object.PROP_PRESENT_VALUE), octets, 16)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7}, octets[:n])

	_, ok = a.GetOctetString(addr(object.OBJECT_OCTETSTRING_VALUE, 47, object.PROP_PRESENT_VALUE), octets, 6)
	assert.False(t, ok)

	n, ok = a.GetOctetString(addr(object.OBJECT_NETWORK_PORT, 56, object.PROP_IP_SUBNET_MASK), octets, 16)
	require.True(t, ok)
	assert.Equal(t, []byte{255, 255, 255, 0}, octets[:n])

	bits := make([]bool, 8)
	n, ok = a.GetBitString(addr(object.OBJECT_BITSTRING_VALUE, 39, object.PROP_PRESENT_VALUE), bits, 8)
	require.True(t, ok)
	assert.Equal(t, []bool{true, false, false, false}, bits[:n])
}

func TestSetters(t *testing.T) {
	Convey("写入属性", t, func() {
		a, _, _ := newTestAccessor(t)
		var changed []string
		a.OnChange(func(at Address, name string, value interface{}) {
			changed = append(changed, name)
		})

		Convey("AnalogValue 在范围内写入成功并通知", func() {
			code, ok := a.SetReal(addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_PRESENT_VALUE), 12.5, 16)
			So(ok, ShouldBeTrue)
			So(code, ShouldEqual, ERROR_CODE_NONE)
			So(changed, ShouldResemble, []string{"Flower AnalogValue"})

			var v float32
			So(a.GetReal(addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_PRESENT_VALUE), &v), ShouldBeTrue)
			So(v, ShouldEqual, float32(12.5))
		})

		Convey("AnalogValue 超出范围被拒绝", func() {
			code, ok := a.SetReal(addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_PRESENT_VALUE), 5000, 16)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)
			So(changed, ShouldBeEmpty)
		})

		Convey("NaN 与无穷大被拒绝且不写入", func() {
			pv := addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_PRESENT_VALUE)
			for _, v := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
				code, ok := a.SetReal(pv, v, 16)
				So(ok, ShouldBeFalse)
				So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)
			}
			var stored float32
			So(a.GetReal(pv, &stored), ShouldBeTrue)
			So(math.IsNaN(float64(stored)), ShouldBeFalse)

			_, ok := a.SetReal(addr(object.OBJECT_ANALOG_OUTPUT, 1, object.PROP_PRESENT_VALUE), float32(math.NaN()), 8)
			So(ok, ShouldBeFalse)
			code, ok := a.SetDouble(addr(object.OBJECT_LARGE_ANALOG_VALUE, 46, object.PROP_PRESENT_VALUE), math.NaN())
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)
			So(changed, ShouldBeEmpty)
		})

		Convey("带数组下标的写入被拒绝", func() {
			pv := addr(object.OBJECT_ANALOG_VALUE, 2, object.PROP_PRESENT_VALUE)
			pv.UseArrayIndex, pv.ArrayIndex = true, 1
			code, ok := a.SetReal(pv, 12.5, 16)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_INVALID_ARRAY_INDEX)

			text := addr(object.OBJECT_MULTI_STATE_INPUT, 13, object.PROP_STATE_TEXT)
			text.UseArrayIndex, text.ArrayIndex = true, 2
			code, ok = a.SetCharacterString(text, "deux", ENCODING_UTF8)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_INVALID_ARRAY_INDEX)
			So(changed, ShouldBeEmpty)
		})

		Convey("AnalogInput 未停用时拒绝写入", func() {
			code, ok := a.SetReal(addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_PRESENT_VALUE), 3, 16)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_WRITE_ACCESS_DENIED)

			_, ok = a.SetBool(addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_OUT_OF_SERVICE), true)
			So(ok, ShouldBeTrue)
			_, ok = a.SetReal(addr(object.OBJECT_ANALOG_INPUT, 0, object.PROP_PRESENT_VALUE), 3, 16)
			So(ok, ShouldBeTrue)
		})

		Convey("AnalogOutput 优先级命令与释放", func() {
			pv := addr(object.OBJECT_ANALOG_OUTPUT, 1, object.PROP_PRESENT_VALUE)
			_, ok := a.SetReal(pv, 40, 10)
			So(ok, ShouldBeTrue)
			_, ok = a.SetReal(pv, 70, 3)
			So(ok, ShouldBeTrue)

			var v float32
			a.GetReal(pv, &v)
			So(v, ShouldEqual, float32(70))

			_, ok = a.SetNull(pv, 3)
			So(ok, ShouldBeTrue)
			a.GetReal(pv, &v)
			So(v, ShouldEqual, float32(40))

			slot := addr(object.OBJECT_ANALOG_OUTPUT, 1, object.PROP_PRIORITY_ARRAY)
			slot.UseArrayIndex, slot.ArrayIndex = true, 3
			var null bool
			So(a.GetBool(slot, &null), ShouldBeTrue)
			So(null, ShouldBeTrue)

			code, ok := a.SetReal(pv, 1, 0)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)
		})

		Convey("对象名不能为空", func() {
			code, ok := a.SetCharacterString(addr(object.OBJECT_DEVICE, testDevice, object.PROP_OBJECT_NAME), "", ENCODING_UTF8)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)

			_, ok = a.SetCharacterString(addr(object.OBJECT_DEVICE, testDevice, object.PROP_OBJECT_NAME), "Blue King Device", ENCODING_UTF8)
			So(ok, ShouldBeTrue)
			So(changed, ShouldResemble, []string{"Blue King Device"})
		})

		Convey("MultiStateInput 状态值受状态数约束", func() {
			_, ok := a.SetUnsignedInteger(addr(object.OBJECT_MULTI_STATE_INPUT, 13, object.PROP_PRESENT_VALUE), 3)
			So(ok, ShouldBeTrue)
			code, ok := a.SetUnsignedInteger(addr(object.OBJECT_MULTI_STATE_INPUT, 13, object.PROP_PRESENT_VALUE), 4)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_VALUE_OUT_OF_RANGE)
		})

		Convey("写入的字节串不与调用方共享", func() {
			in := []byte{9, 9}
			_, ok := a.SetOctetString(addr(object.OBJECT_OCTETSTRING_VALUE, 47, object.PROP_PRESENT_VALUE), in)
			So(ok, ShouldBeTrue)
			in[0] = 0

			out := make([]byte, 4)
			n, _ := a.GetOctetString(addr(object.OBJECT_OCTETSTRING_VALUE, 47, object.PROP_PRESENT_VALUE), out, 4)
			So(out[:n], ShouldResemble, []byte{9, 9})
		})

		Convey("不存在的对象返回 UNKNOWN_OBJECT", func() {
			code, ok := a.SetDouble(addr(object.OBJECT_LARGE_ANALOG_VALUE, 999, object.PROP_PRESENT_VALUE), 1)
			So(ok, ShouldBeFalse)
			So(code, ShouldEqual, ERROR_CODE_UNKNOWN_OBJECT)
		})
	})
}

func TestWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store, err := object.NewDefaultStore(testDevice)
	require.NoError(t, err)
	ctx := pkg.WithLogger(context.Background(), zap.New(core))
	a := New(ctx, store, "0.0.1")

	_, ok := a.SetEnumerated(addr(object.OBJECT_BINARY_INPUT, 3, object.PROP_PRESENT_VALUE), 7)
	assert.False(t, ok)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "属性写入失败", logs.All()[0].Message)
}
