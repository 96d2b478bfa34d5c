package object

import "fmt"

// ObjectType BACnet 对象类型
type ObjectType uint16

const (
	OBJECT_ANALOG_INPUT           ObjectType = 0
	OBJECT_ANALOG_OUTPUT          ObjectType = 1
	OBJECT_ANALOG_VALUE           ObjectType = 2
	OBJECT_BINARY_INPUT           ObjectType = 3
	OBJECT_DEVICE                 ObjectType = 8
	OBJECT_MULTI_STATE_INPUT      ObjectType = 13
	OBJECT_BITSTRING_VALUE        ObjectType = 39
	OBJECT_CHARACTERSTRING_VALUE  ObjectType = 40
	OBJECT_DATETIME_VALUE         ObjectType = 44
	OBJECT_INTEGER_VALUE          ObjectType = 45
	OBJECT_LARGE_ANALOG_VALUE     ObjectType = 46
	OBJECT_OCTETSTRING_VALUE      ObjectType = 47
	OBJECT_POSITIVE_INTEGER_VALUE ObjectType = 48
	OBJECT_NETWORK_PORT           ObjectType = 56
)

// ObjectTypeNames 用于合成存储 key, 每个类型的名字必须唯一
var ObjectTypeNames = map[ObjectType]string{
	OBJECT_ANALOG_INPUT:           "analog_input",
	OBJECT_ANALOG_OUTPUT:          "analog_output",
	OBJECT_ANALOG_VALUE:           "analog_value",
	OBJECT_BINARY_INPUT:           "binary_input",
	OBJECT_DEVICE:                 "device",
	OBJECT_MULTI_STATE_INPUT:      "multistate_input",
	OBJECT_BITSTRING_VALUE:        "bitstring_value",
	OBJECT_CHARACTERSTRING_VALUE:  "character_string_value",
	OBJECT_DATETIME_VALUE:         "date_time_value",
	OBJECT_INTEGER_VALUE:          "integer_value",
	OBJECT_LARGE_ANALOG_VALUE:     "large_analog_value",
	OBJECT_OCTETSTRING_VALUE:      "octet_string_value",
	OBJECT_POSITIVE_INTEGER_VALUE: "positive_integer_value",
	OBJECT_NETWORK_PORT:           "network_port",
}

func (t ObjectType) String() string {
	if name, ok := ObjectTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("object_type_%d", uint16(t))
}

// ParseObjectType 根据名字查找对象类型
func ParseObjectType(name string) (ObjectType, bool) {
	for t, n := range ObjectTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// PropertyID BACnet 属性标识
type PropertyID uint32

const (
	PROP_APPLICATION_SOFTWARE_VERSION PropertyID = 12
	PROP_COV_INCREMENT                PropertyID = 22
	PROP_DESCRIPTION                  PropertyID = 28
	PROP_MAX_PRES_VALUE               PropertyID = 65
	PROP_MIN_PRES_VALUE               PropertyID = 69
	PROP_NUMBER_OF_STATES             PropertyID = 74
	PROP_OBJECT_NAME                  PropertyID = 77
	PROP_OUT_OF_SERVICE               PropertyID = 81
	PROP_PRESENT_VALUE                PropertyID = 85
	PROP_PRIORITY_ARRAY               PropertyID = 87
	PROP_RELIABILITY                  PropertyID = 103
	PROP_RELINQUISH_DEFAULT           PropertyID = 104
	PROP_STATE_TEXT                   PropertyID = 110
	PROP_SYSTEM_STATUS                PropertyID = 112
	PROP_UTC_OFFSET                   PropertyID = 119
	PROP_BIT_TEXT                     PropertyID = 343
	PROP_IP_ADDRESS                   PropertyID = 400
	PROP_IP_DEFAULT_GATEWAY           PropertyID = 401
	PROP_IP_SUBNET_MASK               PropertyID = 411
	PROP_BACNET_IP_UDP_PORT           PropertyID = 412
	PROP_CHANGES_PENDING              PropertyID = 416
	PROP_FD_SUBSCRIPTION_LIFETIME     PropertyID = 419
)

var PropertyNames = map[PropertyID]string{
	PROP_APPLICATION_SOFTWARE_VERSION: "ApplicationSoftwareVersion",
	PROP_COV_INCREMENT:                "CovIncrement",
	PROP_DESCRIPTION:                  "Description",
	PROP_MAX_PRES_VALUE:               "MaxPresValue",
	PROP_MIN_PRES_VALUE:               "MinPresValue",
	PROP_NUMBER_OF_STATES:             "NumberOfStates",
	PROP_OBJECT_NAME:                  "ObjectName",
	PROP_OUT_OF_SERVICE:               "OutOfService",
	PROP_PRESENT_VALUE:                "PresentValue",
	PROP_PRIORITY_ARRAY:               "PriorityArray",
	PROP_RELIABILITY:                  "Reliability",
	PROP_RELINQUISH_DEFAULT:           "RelinquishDefault",
	PROP_STATE_TEXT:                   "StateText",
	PROP_SYSTEM_STATUS:                "SystemStatus",
	PROP_UTC_OFFSET:                   "UtcOffset",
	PROP_BIT_TEXT:                     "BitText",
	PROP_IP_ADDRESS:                   "IpAddress",
	PROP_IP_DEFAULT_GATEWAY:           "IpDefaultGateway",
	PROP_IP_SUBNET_MASK:               "IpSubnetMask",
	PROP_BACNET_IP_UDP_PORT:           "BacnetIpUdpPort",
	PROP_CHANGES_PENDING:              "ChangesPending",
	PROP_FD_SUBSCRIPTION_LIFETIME:     "FdSubscriptionLifetime",
}

func (p PropertyID) String() string {
	if name, ok := PropertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Property%d", uint32(p))
}

// Service BACnet 服务, 取值为 Protocol_Services_Supported 中的位序号
type Service uint32

const (
	SERVICE_SUBSCRIBE_COV          Service = 5
	SERVICE_READ_PROPERTY          Service = 12
	SERVICE_READ_PROPERTY_MULTIPLE Service = 14
	SERVICE_WRITE_PROPERTY         Service = 15
	SERVICE_I_AM                   Service = 26
	SERVICE_WHO_IS                 Service = 34
)

// 网络类型, 仅实现了 IP
const (
	NETWORK_TYPE_IP   uint8 = 0
	NETWORK_TYPE_MSTP uint8 = 1
)

// Reliability 取值
const (
	RELIABILITY_NO_FAULT_DETECTED uint32 = 0
)

// PriorityArrayLength 优先级数组的槽位数
const PriorityArrayLength = 16
