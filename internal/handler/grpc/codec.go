package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName 客户端通过 grpc.CallContentSubtype(CodecName) 选择该编码
const CodecName = "json"

// jsonCodec 服务没有生成 protobuf 桩代码, 消息体直接用 JSON 编码
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
