package pb

import (
	"context"

	"google.golang.org/grpc"
)

// Full method names of the sidecar.LLMService service.
const (
	LLMServiceInitModelMethod = "/sidecar.LLMService/InitModel"
	LLMServiceEmbedMethod     = "/sidecar.LLMService/Embed"
	LLMServiceGenerateMethod  = "/sidecar.LLMService/Generate"
	LLMServiceModelInfoMethod = "/sidecar.LLMService/ModelInfo"
	LLMServiceHealthMethod    = "/sidecar.LLMService/Health"
)

// LLMServiceClient is the client API for the sidecar.LLMService service.
type LLMServiceClient interface {
	InitModel(ctx context.Context, in *InitRequest, opts ...grpc.CallOption) (*InitResponse, error)
	Embed(ctx context.Context, in *EmbedRequest, opts ...grpc.CallOption) (*EmbedResponse, error)
	Generate(ctx context.Context, in *GenerateRequest, opts ...grpc.CallOption) (LLMService_GenerateClient, error)
	ModelInfo(ctx context.Context, in *ModelInfoRequest, opts ...grpc.CallOption) (*ModelInfoResponse, error)
	Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error)
}

type llmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLLMServiceClient returns a client for the sidecar.LLMService service.
func NewLLMServiceClient(cc grpc.ClientConnInterface) LLMServiceClient {
	return &llmServiceClient{cc}
}

func (c *llmServiceClient) InitModel(ctx context.Context, in *InitRequest, opts ...grpc.CallOption) (*InitResponse, error) {
	out := new(InitResponse)
	if err := c.cc.Invoke(ctx, LLMServiceInitModelMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *llmServiceClient) Embed(ctx context.Context, in *EmbedRequest, opts ...grpc.CallOption) (*EmbedResponse, error) {
	out := new(EmbedResponse)
	if err := c.cc.Invoke(ctx, LLMServiceEmbedMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *llmServiceClient) Generate(ctx context.Context, in *GenerateRequest, opts ...grpc.CallOption) (LLMService_GenerateClient, error) {
	stream, err := c.cc.NewStream(ctx, &LLMServiceDesc.Streams[0], LLMServiceGenerateMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &llmServiceGenerateClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// LLMService_GenerateClient receives the chunks of a Generate stream.
type LLMService_GenerateClient interface {
	Recv() (*GenerateResponse, error)
	grpc.ClientStream
}

type llmServiceGenerateClient struct {
	grpc.ClientStream
}

func (x *llmServiceGenerateClient) Recv() (*GenerateResponse, error) {
	m := new(GenerateResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *llmServiceClient) ModelInfo(ctx context.Context, in *ModelInfoRequest, opts ...grpc.CallOption) (*ModelInfoResponse, error) {
	out := new(ModelInfoResponse)
	if err := c.cc.Invoke(ctx, LLMServiceModelInfoMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *llmServiceClient) Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error) {
	out := new(HealthResponse)
	if err := c.cc.Invoke(ctx, LLMServiceHealthMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LLMServiceServer is the server API for the sidecar.LLMService service.
type LLMServiceServer interface {
	InitModel(context.Context, *InitRequest) (*InitResponse, error)
	Embed(context.Context, *EmbedRequest) (*EmbedResponse, error)
	Generate(*GenerateRequest, LLMService_GenerateServer) error
	ModelInfo(context.Context, *ModelInfoRequest) (*ModelInfoResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
}

// LLMService_GenerateServer sends the chunks of a Generate stream.
type LLMService_GenerateServer interface {
	Send(*GenerateResponse) error
	grpc.ServerStream
}

type llmServiceGenerateServer struct {
	grpc.ServerStream
}

func (x *llmServiceGenerateServer) Send(m *GenerateResponse) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterLLMServiceServer registers srv on s.
func RegisterLLMServiceServer(s grpc.ServiceRegistrar, srv LLMServiceServer) {
	s.RegisterService(&LLMServiceDesc, srv)
}

func initModelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LLMServiceServer).InitModel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LLMServiceInitModelMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LLMServiceServer).InitModel(ctx, req.(*InitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func embedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EmbedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LLMServiceServer).Embed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LLMServiceEmbedMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LLMServiceServer).Embed(ctx, req.(*EmbedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func generateHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(GenerateRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LLMServiceServer).Generate(m, &llmServiceGenerateServer{stream})
}

func modelInfoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ModelInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LLMServiceServer).ModelInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LLMServiceModelInfoMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LLMServiceServer).ModelInfo(ctx, req.(*ModelInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LLMServiceServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LLMServiceHealthMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LLMServiceServer).Health(ctx, req.(*HealthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LLMServiceDesc is the grpc.ServiceDesc for the sidecar.LLMService service.
var LLMServiceDesc = grpc.ServiceDesc{
	ServiceName: "sidecar.LLMService",
	HandlerType: (*LLMServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitModel", Handler: initModelHandler},
		{MethodName: "Embed", Handler: embedHandler},
		{MethodName: "ModelInfo", Handler: modelInfoHandler},
		{MethodName: "Health", Handler: healthHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Generate", Handler: generateHandler, ServerStreams: true},
	},
	Metadata: "sidecar.proto",
}
