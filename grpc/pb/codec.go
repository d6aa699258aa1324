package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const CODEC_NAME = "json"

// Codec encodes messages as JSON. Messages are plain Go structs, so the
// service is served with this codec instead of protobuf.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CODEC_NAME
}

func init() {
	encoding.RegisterCodec(Codec{})
}
