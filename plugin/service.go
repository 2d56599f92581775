package plugin

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lintscope.DirectiveSource"

const (
	methodConfigFile = "/" + ServiceName + "/ConfigFile"
	methodSecondary  = "/" + ServiceName + "/Secondary"
	methodLoad       = "/" + ServiceName + "/Load"
)

// directiveSourceServer is the server API of the DirectiveSource service.
// Requests and responses are protobuf well-known types, so the service
// needs no generated code.
type directiveSourceServer interface {
	ConfigFile(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Secondary(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Load(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var directiveSourceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*directiveSourceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ConfigFile", Handler: configFileHandler},
		{MethodName: "Secondary", Handler: secondaryHandler},
		{MethodName: "Load", Handler: loadHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lintscope/directive_source.proto",
}

func registerDirectiveSourceServer(s grpc.ServiceRegistrar, srv directiveSourceServer) {
	s.RegisterService(&directiveSourceServiceDesc, srv)
}

func configFileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(directiveSourceServer).ConfigFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodConfigFile}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(directiveSourceServer).ConfigFile(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func secondaryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(directiveSourceServer).Secondary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSecondary}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(directiveSourceServer).Secondary(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func loadHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(directiveSourceServer).Load(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodLoad}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(directiveSourceServer).Load(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
