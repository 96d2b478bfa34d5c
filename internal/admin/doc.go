// Package admin 提供只读的 HTTP 管理接口：健康检查、Prometheus 指标与对象库查询。
package admin
