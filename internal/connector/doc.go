/*
Package connector 提供 BACnet/IP 的传输层适配。

UdpTransport 绑定 udp4 套接字，为协议引擎提供两个回调：

- ReceiveMessage：带超时的单次非阻塞接收，超时返回 0。

- SendMessage：单播或定向广播发送。

对端地址以 6 字节连接串表示（4 字节 IPv4 + 2 字节大端端口），
由 EncodeConnectionString 与 DecodeConnectionString 负责转换。

使用示例：

	transport, err := connector.NewUdpTransport(ctx, &config.Transport, store)
	if err != nil {
		return err
	}
	defer transport.Close()

	n, connLen, networkType := transport.ReceiveMessage(message, connectionString)
*/
package connector
