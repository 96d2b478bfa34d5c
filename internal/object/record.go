package object

// Record 是对象库中的记录, 取值只能是本包定义的各个对象类型
type Record interface {
	Type() ObjectType
	Name() string
	InstanceNumber() uint32
	isRecord()
}

// Date BACnet 日期, Year 为自 1900 年起的年数, Weekday 1 = 周一
type Date struct {
	Year    uint8 `yaml:"year" json:"year"`
	Month   uint8 `yaml:"month" json:"month"`
	Day     uint8 `yaml:"day" json:"day"`
	Weekday uint8 `yaml:"weekday" json:"weekday"`
}

// Time BACnet 时间
type Time struct {
	Hour       uint8 `yaml:"hour" json:"hour"`
	Minute     uint8 `yaml:"minute" json:"minute"`
	Second     uint8 `yaml:"second" json:"second"`
	Hundredths uint8 `yaml:"hundredths" json:"hundredths"`
}

type DateTime struct {
	Date Date `yaml:"date" json:"date"`
	Time Time `yaml:"time" json:"time"`
}

// PrioritySlot 优先级数组中的一个槽位, Null 为 true 时表示未被写入
type PrioritySlot struct {
	Null  bool    `yaml:"null" json:"null"`
	Value float32 `yaml:"value" json:"value"`
}

type Device struct {
	ObjectName        string `yaml:"object_name" json:"object_name"`
	Instance          uint32 `yaml:"instance" json:"instance"`
	UtcOffset         int32  `yaml:"utc_offset" json:"utc_offset"` // 分钟
	CurrentTimeOffset int32  `yaml:"current_time_offset" json:"current_time_offset"`
	Description       string `yaml:"description" json:"description"`
	SystemStatus      uint32 `yaml:"system_status" json:"system_status"`
}

type AnalogInput struct {
	ObjectName   string  `yaml:"object_name" json:"object_name"`
	Instance     uint32  `yaml:"instance" json:"instance"`
	PresentValue float32 `yaml:"present_value" json:"present_value"`
	CovIncrement float32 `yaml:"cov_increment" json:"cov_increment"`
	Reliability  uint32  `yaml:"reliability" json:"reliability"`
	Description  string  `yaml:"description" json:"description"`
	OutOfService bool    `yaml:"out_of_service" json:"out_of_service"`
}

type AnalogOutput struct {
	ObjectName        string                            `yaml:"object_name" json:"object_name"`
	Instance          uint32                            `yaml:"instance" json:"instance"`
	PriorityArray     [PriorityArrayLength]PrioritySlot `yaml:"priority_array" json:"priority_array"`
	RelinquishDefault float32                           `yaml:"relinquish_default" json:"relinquish_default"`
}

// PresentValue 返回优先级最高的非空槽位的值, 全部为空时返回 RelinquishDefault
func (o *AnalogOutput) PresentValue() float32 {
	for _, slot := range o.PriorityArray {
		if !slot.Null {
			return slot.Value
		}
	}
	return o.RelinquishDefault
}

// Command 按优先级 (1-16) 写入槽位
func (o *AnalogOutput) Command(priority uint8, value float32) bool {
	if priority < 1 || priority > PriorityArrayLength {
		return false
	}
	o.PriorityArray[priority-1] = PrioritySlot{Value: value}
	return true
}

// Relinquish 按优先级 (1-16) 清空槽位
func (o *AnalogOutput) Relinquish(priority uint8) bool {
	if priority < 1 || priority > PriorityArrayLength {
		return false
	}
	o.PriorityArray[priority-1] = PrioritySlot{Null: true}
	return true
}

type AnalogValue struct {
	ObjectName   string  `yaml:"object_name" json:"object_name"`
	Instance     uint32  `yaml:"instance" json:"instance"`
	PresentValue float32 `yaml:"present_value" json:"present_value"`
	MaxPresValue float32 `yaml:"max_pres_value" json:"max_pres_value"`
	MinPresValue float32 `yaml:"min_pres_value" json:"min_pres_value"`
}

type BinaryInput struct {
	ObjectName   string `yaml:"object_name" json:"object_name"`
	Instance     uint32 `yaml:"instance" json:"instance"`
	PresentValue bool   `yaml:"present_value" json:"present_value"`
	Description  string `yaml:"description" json:"description"`
}

type MultiStateInput struct {
	ObjectName   string   `yaml:"object_name" json:"object_name"`
	Instance     uint32   `yaml:"instance" json:"instance"`
	PresentValue uint32   `yaml:"present_value" json:"present_value"` // 1 起始
	StateText    []string `yaml:"state_text" json:"state_text"`
}

type BitstringValue struct {
	ObjectName   string   `yaml:"object_name" json:"object_name"`
	Instance     uint32   `yaml:"instance" json:"instance"`
	PresentValue []bool   `yaml:"present_value" json:"present_value"`
	BitText      []string `yaml:"bit_text" json:"bit_text"`
}

type CharacterStringValue struct {
	ObjectName   string `yaml:"object_name" json:"object_name"`
	Instance     uint32 `yaml:"instance" json:"instance"`
	PresentValue string `yaml:"present_value" json:"present_value"`
}

type IntegerValue struct {
	ObjectName   string `yaml:"object_name" json:"object_name"`
	Instance     uint32 `yaml:"instance" json:"instance"`
	PresentValue int32  `yaml:"present_value" json:"present_value"`
}

type LargeAnalogValue struct {
	ObjectName   string  `yaml:"object_name" json:"object_name"`
	Instance     uint32  `yaml:"instance" json:"instance"`
	PresentValue float64 `yaml:"present_value" json:"present_value"`
}

type OctetStringValue struct {
	ObjectName   string `yaml:"object_name" json:"object_name"`
	Instance     uint32 `yaml:"instance" json:"instance"`
	PresentValue []byte `yaml:"present_value" json:"present_value"`
}

type PositiveIntegerValue struct {
	ObjectName   string `yaml:"object_name" json:"object_name"`
	Instance     uint32 `yaml:"instance" json:"instance"`
	PresentValue uint32 `yaml:"present_value" json:"present_value"`
}

type NetworkPort struct {
	ObjectName             string  `yaml:"object_name" json:"object_name"`
	Instance               uint32  `yaml:"instance" json:"instance"`
	BacnetIpUdpPort        uint16  `yaml:"bacnet_ip_udp_port" json:"bacnet_ip_udp_port"`
	IpAddress              [4]byte `yaml:"ip_address" json:"ip_address"`
	IpDefaultGateway       [4]byte `yaml:"ip_default_gateway" json:"ip_default_gateway"`
	IpSubnetMask           [4]byte `yaml:"ip_subnet_mask" json:"ip_subnet_mask"`
	IpDnsServers           []byte  `yaml:"ip_dns_servers" json:"ip_dns_servers"`
	BroadcastIpAddress     [4]byte `yaml:"broadcast_ip_address" json:"broadcast_ip_address"`
	ChangesPending         bool    `yaml:"changes_pending" json:"changes_pending"`
	FdBbmdAddressHostType  uint8   `yaml:"fd_bbmd_address_host_type" json:"fd_bbmd_address_host_type"`
	FdBbmdAddressHostIp    [4]byte `yaml:"fd_bbmd_address_host_ip" json:"fd_bbmd_address_host_ip"`
	FdBbmdAddressPort      uint16  `yaml:"fd_bbmd_address_port" json:"fd_bbmd_address_port"`
	FdSubscriptionLifetime uint16  `yaml:"fd_subscription_lifetime" json:"fd_subscription_lifetime"`
}

type DateTimeValue struct {
	ObjectName   string   `yaml:"object_name" json:"object_name"`
	Instance     uint32   `yaml:"instance" json:"instance"`
	PresentValue DateTime `yaml:"present_value" json:"present_value"`
}

func (o *Device) Type() ObjectType               { return OBJECT_DEVICE }
func (o *AnalogInput) Type() ObjectType          { return OBJECT_ANALOG_INPUT }
func (o *AnalogOutput) Type() ObjectType         { return OBJECT_ANALOG_OUTPUT }
func (o *AnalogValue) Type() ObjectType          { return OBJECT_ANALOG_VALUE }
func (o *BinaryInput) Type() ObjectType          { return OBJECT_BINARY_INPUT }
func (o *MultiStateInput) Type() ObjectType      { return OBJECT_MULTI_STATE_INPUT }
func (o *BitstringValue) Type() ObjectType       { return OBJECT_BITSTRING_VALUE }
func (o *CharacterStringValue) Type() ObjectType { return OBJECT_CHARACTERSTRING_VALUE }
func (o *IntegerValue) Type() ObjectType         { return OBJECT_INTEGER_VALUE }
func (o *LargeAnalogValue) Type() ObjectType     { return OBJECT_LARGE_ANALOG_VALUE }
func (o *OctetStringValue) Type() ObjectType     { return OBJECT_OCTETSTRING_VALUE }
func (o *PositiveIntegerValue) Type() ObjectType { return OBJECT_POSITIVE_INTEGER_VALUE }
func (o *NetworkPort) Type() ObjectType          { return OBJECT_NETWORK_PORT }
func (o *DateTimeValue) Type() ObjectType        { return OBJECT_DATETIME_VALUE }

func (o *Device) Name() string               { return o.ObjectName }
func (o *AnalogInput) Name() string          { return o.ObjectName }
func (o *AnalogOutput) Name() string         { return o.ObjectName }
func (o *AnalogValue) Name() string          { return o.ObjectName }
func (o *BinaryInput) Name() string          { return o.ObjectName }
func (o *MultiStateInput) Name() string      { return o.ObjectName }
func (o *BitstringValue) Name() string       { return o.ObjectName }
func (o *CharacterStringValue) Name() string { return o.ObjectName }
func (o *IntegerValue) Name() string         { return o.ObjectName }
func (o *LargeAnalogValue) Name() string     { return o.ObjectName }
func (o *OctetStringValue) Name() string     { return o.ObjectName }
func (o *PositiveIntegerValue) Name() string { return o.ObjectName }
func (o *NetworkPort) Name() string          { return o.ObjectName }
func (o *DateTimeValue) Name() string        { return o.ObjectName }

func (o *Device) InstanceNumber() uint32               { return o.Instance }
func (o *AnalogInput) InstanceNumber() uint32          { return o.Instance }
func (o *AnalogOutput) InstanceNumber() uint32         { return o.Instance }
func (o *AnalogValue) InstanceNumber() uint32          { return o.Instance }
func (o *BinaryInput) InstanceNumber() uint32          { return o.Instance }
func (o *MultiStateInput) InstanceNumber() uint32      { return o.Instance }
func (o *BitstringValue) InstanceNumber() uint32       { return o.Instance }
func (o *CharacterStringValue) InstanceNumber() uint32 { return o.Instance }
func (o *IntegerValue) InstanceNumber() uint32         { return o.Instance }
func (o *LargeAnalogValue) InstanceNumber() uint32     { return o.Instance }
func (o *OctetStringValue) InstanceNumber() uint32     { return o.Instance }
func (o *PositiveIntegerValue) InstanceNumber() uint32 { return o.Instance }
func (o *NetworkPort) InstanceNumber() uint32          { return o.Instance }
func (o *DateTimeValue) InstanceNumber() uint32        { return o.Instance }

func (*Device) isRecord()               {}
func (*AnalogInput) isRecord()          {}
func (*AnalogOutput) isRecord()         {}
func (*AnalogValue) isRecord()          {}
func (*BinaryInput) isRecord()          {}
func (*MultiStateInput) isRecord()      {}
func (*BitstringValue) isRecord()       {}
func (*CharacterStringValue) isRecord() {}
func (*IntegerValue) isRecord()         {}
func (*LargeAnalogValue) isRecord()     {}
func (*OctetStringValue) isRecord()     {}
func (*PositiveIntegerValue) isRecord() {}
func (*NetworkPort) isRecord()          {}
func (*DateTimeValue) isRecord()        {}
