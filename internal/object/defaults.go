package object

// DefaultSet 返回启动时的示例对象集, 对象名取自各种螃蟹
func DefaultSet(deviceInstance uint32) []Record {
	analogOutput := &AnalogOutput{
		ObjectName: "Snow AnalogOutput",
		Instance:   1,
	}
	for i := range analogOutput.PriorityArray {
		analogOutput.PriorityArray[i] = PrioritySlot{Null: true}
	}

	return []Record{
		&Device{
			ObjectName:  "Red King Device",
			Instance:    deviceInstance,
			Description: "CAS BACnet Go Server Device",
		},
		&AnalogInput{
			ObjectName:   "Dungeness AnalogInput",
			Instance:     0,
			PresentValue: 1.001,
			CovIncrement: 2.0,
			Reliability:  RELIABILITY_NO_FAULT_DETECTED,
			Description:  "Increments once every 5 seconds",
		},
		analogOutput,
		&AnalogValue{
			ObjectName:   "Flower AnalogValue",
			Instance:     2,
			PresentValue: 5.43,
			MaxPresValue: 1000,
			MinPresValue: -1000,
		},
		&BinaryInput{
			ObjectName:   "Chesapeake Blue BinaryInput",
			Instance:     3,
			PresentValue: true,
			Description:  "I am an optional property!",
		},
		&MultiStateInput{
			ObjectName:   "Pea MultiStateInput",
			Instance:     13,
			PresentValue: 1,
			StateText:    []string{"one", "two", "three"},
		},
		&BitstringValue{
			ObjectName:   "Yeti BitstringValue",
			Instance:     39,
			PresentValue: []bool{true, false, false, false},
			BitText:      []string{"A", "B", "C", "D"},
		},
		&CharacterStringValue{
			ObjectName:   "Coconut CharacterStringValue",
			Instance:     40,
			PresentValue: "Hello World!",
		},
		&DateTimeValue{
			ObjectName: "Atlantic Rock DateTimeValue",
			Instance:   44,
			PresentValue: DateTime{
				Date: Date{Year: 122, Month: 1, Day: 28, Weekday: 5},
				Time: Time{Hour: 16, Minute: 54, Second: 47, Hundredths: 55},
			},
		},
		&IntegerValue{
			ObjectName:   "Spider IntegerValue",
			Instance:     45,
			PresentValue: 42,
		},
		&LargeAnalogValue{
			ObjectName:   "Tanner LargeAnalogValue",
			Instance:     46,
			PresentValue: 123456789.85,
		},
		&OctetStringValue{
			ObjectName:   "Brown Box OctetStringValue",
			Instance:     47,
			PresentValue: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
		},
		&PositiveIntegerValue{
			ObjectName:   "Strawberry PositiveIntegerValue",
			Instance:     48,
			PresentValue: 12345,
		},
		&NetworkPort{
			ObjectName:             "Mitten NetworkPort",
			Instance:               56,
			BacnetIpUdpPort:        47808,
			IpAddress:              [4]byte{198, 168, 68, 105},
			IpDefaultGateway:       [4]byte{198, 168, 68, 126},
			IpSubnetMask:           [4]byte{255, 255, 255, 0},
			BroadcastIpAddress:     [4]byte{198, 168, 68, 255},
			FdBbmdAddressHostType:  1,
			FdBbmdAddressHostIp:    [4]byte{198, 168, 68, 105},
			FdBbmdAddressPort:      47809,
			FdSubscriptionLifetime: 3600,
		},
	}
}

// NewDefaultStore 使用示例对象集创建对象库
func NewDefaultStore(deviceInstance uint32) (*Store, error) {
	return NewStore(DefaultSet(deviceInstance)...)
}
