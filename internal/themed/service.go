// Package themed serves the theme facade over gRPC.
package themed

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "themekit.v1.ThemeService"

// Full method names.
const (
	MethodPing                = "/" + ServiceName + "/Ping"
	MethodGetState            = "/" + ServiceName + "/GetState"
	MethodListThemes          = "/" + ServiceName + "/ListThemes"
	MethodSetTheme            = "/" + ServiceName + "/SetTheme"
	MethodToggleDarkMode      = "/" + ServiceName + "/ToggleDarkMode"
	MethodUpdateCustomization = "/" + ServiceName + "/UpdateCustomization"
	MethodResetCustomization  = "/" + ServiceName + "/ResetCustomization"
	MethodGetCSS              = "/" + ServiceName + "/GetCSS"
)

// ThemeServiceServer is the server API for the theme service. Every reply is
// a JSON-shaped Struct so the wire contract needs no generated code.
type ThemeServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListThemes(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetTheme(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleDarkMode(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdateCustomization(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetCustomization(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCSS(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterThemeServiceServer registers srv on s.
func RegisterThemeServiceServer(s grpc.ServiceRegistrar, srv ThemeServiceServer) {
	s.RegisterService(&ThemeServiceDesc, srv)
}

// ThemeServiceDesc describes the theme service for grpc.Server.
var ThemeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ThemeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: emptyHandler(MethodPing, ThemeServiceServer.Ping)},
		{MethodName: "GetState", Handler: emptyHandler(MethodGetState, ThemeServiceServer.GetState)},
		{MethodName: "ListThemes", Handler: emptyHandler(MethodListThemes, ThemeServiceServer.ListThemes)},
		{MethodName: "SetTheme", Handler: structHandler(MethodSetTheme, ThemeServiceServer.SetTheme)},
		{MethodName: "ToggleDarkMode", Handler: emptyHandler(MethodToggleDarkMode, ThemeServiceServer.ToggleDarkMode)},
		{MethodName: "UpdateCustomization", Handler: structHandler(MethodUpdateCustomization, ThemeServiceServer.UpdateCustomization)},
		{MethodName: "ResetCustomization", Handler: emptyHandler(MethodResetCustomization, ThemeServiceServer.ResetCustomization)},
		{MethodName: "GetCSS", Handler: emptyHandler(MethodGetCSS, ThemeServiceServer.GetCSS)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "themekit/v1/theme.proto",
}

func emptyHandler(method string, call func(ThemeServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ThemeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ThemeServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func structHandler(method string, call func(ThemeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ThemeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ThemeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
