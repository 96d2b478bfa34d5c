package sink

import (
	"github.com/mitchellh/mapstructure"
)

// decode 使用 mapstructure 解码自定义配置项, 支持 "10s" 形式的时间间隔
func decode(para map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(para)
}
