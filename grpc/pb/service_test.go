package pb

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type echoServer struct {
	PdfTranslatorServer
}

func (echoServer) GetLayout(_ context.Context, request *GetLayoutRequest) (*GetLayoutResponse, error) {
	return &GetLayoutResponse{DocumentId: request.DocumentId}, nil
}

func decoder(t *testing.T, message any) func(any) error {
	data, err := Codec{}.Marshal(message)
	require.NoError(t, err)
	return func(v any) error {
		return Codec{}.Unmarshal(data, v)
	}
}

func TestUnaryHandler(t *testing.T) {
	handler := PdfTranslator_ServiceDesc.Methods[1].Handler
	require.Equal(t, "GetLayout", PdfTranslator_ServiceDesc.Methods[1].MethodName)

	response, err := handler(echoServer{}, context.Background(), decoder(t, &GetLayoutRequest{DocumentId: "doc-1"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", response.(*GetLayoutResponse).DocumentId)

	var method string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		method = info.FullMethod
		return next(ctx, req)
	}
	response, err = handler(echoServer{}, context.Background(), decoder(t, &GetLayoutRequest{DocumentId: "doc-2"}), interceptor)
	require.NoError(t, err)
	assert.Equal(t, PdfTranslator_GetLayout_FullMethodName, method)
	assert.Equal(t, "doc-2", response.(*GetLayoutResponse).DocumentId)
}

func TestCodec(t *testing.T) {
	assert.Equal(t, "json", Codec{}.Name())

	data, err := Codec{}.Marshal(&TranslateDocumentRequest{Pdf: []byte("%PDF"), TargetLanguage: "ko"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "JVBERg==", fields["pdf"])
	assert.Equal(t, "ko", fields["target_language"])
	assert.NotContains(t, fields, "mode")
}
