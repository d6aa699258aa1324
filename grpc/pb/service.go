package pb

import (
	"context"

	"google.golang.org/grpc"
)

const SERVICE_NAME = "pdftrans.PdfTranslator"

const (
	PdfTranslator_TranslateDocument_FullMethodName = "/" + SERVICE_NAME + "/TranslateDocument"
	PdfTranslator_GetLayout_FullMethodName         = "/" + SERVICE_NAME + "/GetLayout"
	PdfTranslator_EditBlock_FullMethodName         = "/" + SERVICE_NAME + "/EditBlock"
	PdfTranslator_ReviewTranslation_FullMethodName = "/" + SERVICE_NAME + "/ReviewTranslation"
)

type PdfTranslatorServer interface {
	TranslateDocument(context.Context, *TranslateDocumentRequest) (*TranslateDocumentResponse, error)
	GetLayout(context.Context, *GetLayoutRequest) (*GetLayoutResponse, error)
	EditBlock(context.Context, *EditBlockRequest) (*EditBlockResponse, error)
	ReviewTranslation(context.Context, *ReviewTranslationRequest) (*ReviewTranslationResponse, error)
}

func RegisterPdfTranslatorServer(s grpc.ServiceRegistrar, srv PdfTranslatorServer) {
	s.RegisterService(&PdfTranslator_ServiceDesc, srv)
}

// unaryHandler decodes the request into Req and dispatches it to call, through the interceptor when one is set.
func unaryHandler[Req any, Resp any](fullMethod string, call func(PdfTranslatorServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PdfTranslatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PdfTranslatorServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PdfTranslator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: SERVICE_NAME,
	HandlerType: (*PdfTranslatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "TranslateDocument",
			Handler:    unaryHandler(PdfTranslator_TranslateDocument_FullMethodName, PdfTranslatorServer.TranslateDocument),
		},
		{
			MethodName: "GetLayout",
			Handler:    unaryHandler(PdfTranslator_GetLayout_FullMethodName, PdfTranslatorServer.GetLayout),
		},
		{
			MethodName: "EditBlock",
			Handler:    unaryHandler(PdfTranslator_EditBlock_FullMethodName, PdfTranslatorServer.EditBlock),
		},
		{
			MethodName: "ReviewTranslation",
			Handler:    unaryHandler(PdfTranslator_ReviewTranslation_FullMethodName, PdfTranslatorServer.ReviewTranslation),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pdftrans.proto",
}

type PdfTranslatorClient interface {
	TranslateDocument(ctx context.Context, in *TranslateDocumentRequest, opts ...grpc.CallOption) (*TranslateDocumentResponse, error)
	GetLayout(ctx context.Context, in *GetLayoutRequest, opts ...grpc.CallOption) (*GetLayoutResponse, error)
	EditBlock(ctx context.Context, in *EditBlockRequest, opts ...grpc.CallOption) (*EditBlockResponse, error)
	ReviewTranslation(ctx context.Context, in *ReviewTranslationRequest, opts ...grpc.CallOption) (*ReviewTranslationResponse, error)
}

type pdfTranslatorClient struct {
	cc grpc.ClientConnInterface
}

// NewPdfTranslatorClient returns a client that always encodes with the JSON codec.
func NewPdfTranslatorClient(cc grpc.ClientConnInterface) PdfTranslatorClient {
	return &pdfTranslatorClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pdfTranslatorClient) TranslateDocument(ctx context.Context, in *TranslateDocumentRequest, opts ...grpc.CallOption) (*TranslateDocumentResponse, error) {
	return invoke[TranslateDocumentResponse](ctx, c.cc, PdfTranslator_TranslateDocument_FullMethodName, in, opts)
}

func (c *pdfTranslatorClient) GetLayout(ctx context.Context, in *GetLayoutRequest, opts ...grpc.CallOption) (*GetLayoutResponse, error) {
	return invoke[GetLayoutResponse](ctx, c.cc, PdfTranslator_GetLayout_FullMethodName, in, opts)
}

func (c *pdfTranslatorClient) EditBlock(ctx context.Context, in *EditBlockRequest, opts ...grpc.CallOption) (*EditBlockResponse, error) {
	return invoke[EditBlockResponse](ctx, c.cc, PdfTranslator_EditBlock_FullMethodName, in, opts)
}

func (c *pdfTranslatorClient) ReviewTranslation(ctx context.Context, in *ReviewTranslationRequest, opts ...grpc.CallOption) (*ReviewTranslationResponse, error) {
	return invoke[ReviewTranslationResponse](ctx, c.cc, PdfTranslator_ReviewTranslation_FullMethodName, in, opts)
}
