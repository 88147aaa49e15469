package transport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as a grpc content-subtype (§6 "Transport":
// the wire schema is the dppb message set, not a .proto-generated
// gogoproto codec, since this pack carries no generated tempopb-style
// sources for it). The hand-authored dppb types satisfy the legacy
// golang/protobuf Message shape for API compatibility, but have none of
// the generated Marshal/Unmarshal methods gogocodec.NewCodec() needs;
// JSON is the honest wire format for them.
const codecName = "dpquery-json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)       { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error  { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                        { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
