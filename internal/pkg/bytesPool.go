package pkg

import "sync"

// MaxRenderBufferLength 是以太网 MTU 下 BACnet/IP 报文的最大长度
const MaxRenderBufferLength = 1497

// BytesPool 是一个字节池，用于缓存字节数组
// 减少gc， 减少内存分配
type BytesPool struct {
	size int
	pool *sync.Pool
}

// NewBytesPool 创建一个字节池
// size 是每个字节数组的长度
func NewBytesPool(size int) *BytesPool {
	return &BytesPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Get 从字节池中获取一个字节数组
func (p *BytesPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put 将一个字节数组放回字节池, 长度不符的数组直接丢弃
func (p *BytesPool) Put(b *[]byte) {
	if b == nil || len(*b) != p.size {
		return
	}
	p.pool.Put(b)
}

// Size 返回每个字节数组的长度
func (p *BytesPool) Size() int {
	return p.size
}

// RenderBufferPool 多留一个字节，用于识别超出上限的报文
var RenderBufferPool = NewBytesPool(MaxRenderBufferLength + 1)
