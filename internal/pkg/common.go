package pkg

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValueChange 是对象属性变化后传递给 sink 的数据结构
type ValueChange struct {
	Id         uuid.UUID   `json:"id"`
	Device     uint32      `json:"device"`
	Key        string      `json:"key"` // 例如 analog_input-0
	ObjectName string      `json:"object_name"`
	Property   string      `json:"property"`
	Value      interface{} `json:"value"`
	Ts         time.Time   `json:"ts"`
}

// NewValueChange 创建一个带有新 id 的变更事件
func NewValueChange(device uint32, key, objectName, property string, value interface{}) *ValueChange {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}
	return &ValueChange{
		Id:         id,
		Device:     device,
		Key:        key,
		ObjectName: objectName,
		Property:   property,
		Value:      value,
		Ts:         time.Now(),
	}
}

func (v *ValueChange) String() string {
	return fmt.Sprintf("ValueChange(Device=%d, Key=%s, Property=%s, Value=%v, Ts=%s)",
		v.Device, v.Key, v.Property, v.Value, v.Ts.Format(time.RFC3339))
}
