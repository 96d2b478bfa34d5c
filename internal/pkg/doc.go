/*
Package pkg 包含了项目的公共类部分。具体地：

config.go -- 统一定义了所有配置的加载项，便于使用

logger.go -- 配置logger项, 以及通过 context 传递 logger

metrics.go -- prometheus 指标

以下项因为在多个模块共用，故放置在此包中

common.go -- 对象变更事件定义

bytesPool.go -- 收发报文使用的缓冲区池
*/
package pkg
