/*
Package engine 定义了与外部 BACnet 协议栈之间的边界。

协议栈负责报文编解码与服务处理，本程序只向它提供回调：

- 传输：ReceiveMessage / SendMessage

- 时间：GetSystemTime，返回 Unix 秒

- 属性读写：由 accessor.Accessor 提供的类型化 Get/Set

可以选择的协议栈包括：

- nop：内置空实现，只登记启动信息并丢弃收到的数据报

- plugin：通过 Go plugin 加载，插件需导出 NewEngine

使用示例：

	func init() {
		Register("MyEngine", NewMyEngine)
	}
*/
package engine
