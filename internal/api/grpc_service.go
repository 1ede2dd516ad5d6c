package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CatalogServiceName is the fully-qualified gRPC service name.
const CatalogServiceName = "catalog.v1.CatalogService"

// CatalogServiceServer is the server API for catalog.v1.CatalogService.
// Messages are protobuf well-known types; product payloads travel as structpb.Struct
// using the same field names as the JSON API.
type CatalogServiceServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListProducts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListCategories(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	AddProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteProduct(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	SetSearchQuery(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	FilterProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCatalogServiceServer registers srv on s.
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", newEmpty, CatalogServiceServer.GetStatus),
		unary("ListProducts", newEmpty, CatalogServiceServer.ListProducts),
		unary("ListCategories", newEmpty, CatalogServiceServer.ListCategories),
		unary("AddProduct", newStruct, CatalogServiceServer.AddProduct),
		unary("UpdateProduct", newStruct, CatalogServiceServer.UpdateProduct),
		unary("DeleteProduct", func() *wrapperspb.Int64Value { return &wrapperspb.Int64Value{} }, CatalogServiceServer.DeleteProduct),
		unary("SetSearchQuery", func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }, CatalogServiceServer.SetSearchQuery),
		unary("FilterProducts", newStruct, CatalogServiceServer.FilterProducts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func newEmpty() *emptypb.Empty    { return &emptypb.Empty{} }
func newStruct() *structpb.Struct { return &structpb.Struct{} }

func unary[Req, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(CatalogServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	fullMethod := "/" + CatalogServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CatalogServiceServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CatalogServiceClient calls catalog.v1.CatalogService.
type CatalogServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogServiceClient wraps a client connection.
func NewCatalogServiceClient(cc grpc.ClientConnInterface) *CatalogServiceClient {
	return &CatalogServiceClient{cc: cc}
}

func invoke[Resp proto.Message](ctx context.Context, c *CatalogServiceClient, method string, in proto.Message, out Resp, opts ...grpc.CallOption) (Resp, error) {
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/"+method, in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}

func (c *CatalogServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c, "GetStatus", &emptypb.Empty{}, &structpb.Struct{}, opts...)
}

func (c *CatalogServiceClient) ListProducts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c, "ListProducts", &emptypb.Empty{}, &structpb.Struct{}, opts...)
}

func (c *CatalogServiceClient) ListCategories(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke(ctx, c, "ListCategories", &emptypb.Empty{}, &structpb.ListValue{}, opts...)
}

func (c *CatalogServiceClient) AddProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c, "AddProduct", in, &structpb.Struct{}, opts...)
}

func (c *CatalogServiceClient) UpdateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c, "UpdateProduct", in, &structpb.Struct{}, opts...)
}

func (c *CatalogServiceClient) DeleteProduct(ctx context.Context, id int64, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke(ctx, c, "DeleteProduct", wrapperspb.Int64(id), &emptypb.Empty{}, opts...)
}

func (c *CatalogServiceClient) SetSearchQuery(ctx context.Context, q string, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke(ctx, c, "SetSearchQuery", wrapperspb.String(q), &emptypb.Empty{}, opts...)
}

func (c *CatalogServiceClient) FilterProducts(ctx context.Context, criteria *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c, "FilterProducts", criteria, &structpb.Struct{}, opts...)
}
