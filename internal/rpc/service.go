// Package rpc exposes the usage log over gRPC. Messages are protobuf
// well-known types shaped like the JSON contract, so no generated code is
// needed; the service descriptor is declared by hand.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "permwatch.v1.UsageLog"

const (
	methodSubmit         = "/" + ServiceName + "/Submit"
	methodFetch          = "/" + ServiceName + "/Fetch"
	methodClear          = "/" + ServiceName + "/Clear"
	methodGetSettings    = "/" + ServiceName + "/GetSettings"
	methodUpdateSettings = "/" + ServiceName + "/UpdateSettings"
)

// UsageLogServer is the server API for permwatch.v1.UsageLog.
type UsageLogServer interface {
	Submit(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Fetch(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Clear(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetSettings(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdateSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterUsageLogServer(s grpc.ServiceRegistrar, srv UsageLogServer) {
	s.RegisterService(&usageLogServiceDesc, srv)
}

var usageLogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsageLogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
		{MethodName: "Fetch", Handler: fetchHandler},
		{MethodName: "Clear", Handler: clearHandler},
		{MethodName: "GetSettings", Handler: getSettingsHandler},
		{MethodName: "UpdateSettings", Handler: updateSettingsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "permwatch/v1/usage_log.proto",
}

func submitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UsageLogServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSubmit}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UsageLogServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func fetchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UsageLogServer).Fetch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodFetch}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UsageLogServer).Fetch(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func clearHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UsageLogServer).Clear(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodClear}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UsageLogServer).Clear(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getSettingsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UsageLogServer).GetSettings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetSettings}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UsageLogServer).GetSettings(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func updateSettingsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UsageLogServer).UpdateSettings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpdateSettings}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UsageLogServer).UpdateSettings(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
