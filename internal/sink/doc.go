// Package sink 定义了对象属性变更事件的下游。
//
// mutator 或属性写入产生的 pkg.ValueChange 由 Collection 非阻塞地投递给每个启用的 sink，
// 队列已满时丢弃并计数。可以选择的 sink 包括：
//   - mqtt：发布到 {topic}/{device}/{key}
//   - influxdb：按属性名写入时序数据
//   - kafka：以对象 key 作为消息 key 写入主题
//   - prometheus：数值写成 gauge，经管理接口的 /metrics 暴露
package sink
