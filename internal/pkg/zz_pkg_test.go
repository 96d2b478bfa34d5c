package pkg

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesPool(t *testing.T) {
	Convey("字节池", t, func() {
		pool := NewBytesPool(8)
		So(pool.Size(), ShouldEqual, 8)

		b := pool.Get()
		So(len(*b), ShouldEqual, 8)
		pool.Put(b)

		Convey("长度不符的数组不会放回", func() {
			short := make([]byte, 4)
			pool.Put(&short)
			pool.Put(nil)
			So(len(*pool.Get()), ShouldEqual, 8)
		})

		Convey("接收缓冲区比最大报文多一个字节", func() {
			So(RenderBufferPool.Size(), ShouldEqual, MaxRenderBufferLength+1)
		})
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.AccessorCalls.WithLabelValues("get_real", Result(true)).Inc()
	m.AccessorCalls.WithLabelValues("get_real", Result(false)).Add(2)
	m.LoopIterations.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessorCalls.WithLabelValues("get_real", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessorCalls.WithLabelValues("get_real", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoopIterations))

	// 每个集合使用独立的 Registry, 重复创建不会冲突
	assert.NotPanics(t, func() { NewMetrics() })
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestValueChange(t *testing.T) {
	a := NewValueChange(389001, "analog_input-0", "Dungeness", "PresentValue", float32(1.5))
	b := NewValueChange(389001, "analog_input-0", "Dungeness", "PresentValue", float32(2.5))
	assert.NotEqual(t, a.Id, b.Id)
	assert.False(t, a.Ts.IsZero())
	assert.Contains(t, a.String(), "Key=analog_input-0")

	out, err := json.Marshal(a)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "Dungeness", fields["object_name"])
	assert.Equal(t, 1.5, fields["value"])
}
