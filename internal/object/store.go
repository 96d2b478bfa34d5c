package object

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateKey = errors.New("duplicate object key")
	ErrDeviceCount  = errors.New("object store requires exactly one device")
	ErrInvalidKey   = errors.New("invalid object key")
)

// Key 定位对象库中的一条记录, 类型名已包含在 key 中, 不同类型的同号实例不会冲突
type Key struct {
	Type     ObjectType
	Instance uint32
}

// String 渲染为 "{type_name}-{instance}"
func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Type, k.Instance)
}

// KeyOf 返回记录对应的 key
func KeyOf(r Record) Key {
	return Key{Type: r.Type(), Instance: r.InstanceNumber()}
}

// ParseKey 解析 "{type_name}-{instance}" 形式的 key
func ParseKey(s string) (Key, error) {
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	t, ok := ParseObjectType(s[:idx])
	if !ok {
		return Key{}, fmt.Errorf("%w: unknown object type %q", ErrInvalidKey, s[:idx])
	}
	instance, err := strconv.ParseUint(s[idx+1:], 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	return Key{Type: t, Instance: uint32(instance)}, nil
}

// Store 是进程内的对象库, 记录集合在创建后固定不变
// 所有访问都通过锁进行, 回调函数内不得再次访问 Store, 也不得把记录带出回调
type Store struct {
	mu      sync.RWMutex
	records map[Key]Record
	device  uint32
}

// NewStore 使用给定记录创建对象库
func NewStore(records ...Record) (*Store, error) {
	s := &Store{records: make(map[Key]Record, len(records))}
	devices := 0
	for _, r := range records {
		key := KeyOf(r)
		if _, exists := s.records[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		if r.Type() == OBJECT_DEVICE {
			devices++
			s.device = r.InstanceNumber()
		}
		s.records[key] = r
	}
	if devices != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrDeviceCount, devices)
	}
	return s, nil
}

// DeviceInstance 返回唯一设备的实例号
func (s *Store) DeviceInstance() uint32 {
	return s.device
}

// Get 在读锁内把记录交给 fn, 记录不存在时返回 false
func (s *Store) Get(key Key, fn func(Record)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// GetMut 在写锁内把记录交给 fn, 记录不存在时返回 false
func (s *Store) GetMut(key Key, fn func(Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// Len 返回记录数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Keys 返回按类型、实例排序的全部 key
func (s *Store) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Instance < keys[j].Instance
	})
	return keys
}

// Marshal 以 YAML 序列化单条记录
func (s *Store) Marshal(key Key) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if !s.Get(key, func(r Record) { out, err = yaml.Marshal(r) }) {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return out, err
}

// Snapshot 以 YAML 序列化整个对象库, 顶层 key 为记录的字符串 key
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := make(map[string]Record, len(s.records))
	for k, r := range s.records {
		view[k.String()] = r
	}
	return yaml.Marshal(view)
}

// SubnetMask 返回指定 NetworkPort 对象的子网掩码
func (s *Store) SubnetMask(instance uint32) ([4]byte, bool) {
	var mask [4]byte
	found := s.Get(Key{Type: OBJECT_NETWORK_PORT, Instance: instance}, func(r Record) {
		if np, ok := r.(*NetworkPort); ok {
			mask = np.IpSubnetMask
		}
	})
	return mask, found
}
