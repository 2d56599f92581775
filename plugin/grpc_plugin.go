// Package plugin provides gRPC-based plugin communication for lintscope.
//
// This file implements the go-plugin GRPCPlugin interface, which bridges
// the native scope.DirectiveSource interface with gRPC.

package plugin

import (
	"context"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/scope"
)

// Ensure DirectiveSourcePlugin implements plugin.GRPCPlugin.
var _ plugin.GRPCPlugin = (*DirectiveSourcePlugin)(nil)

// DirectiveSourcePlugin is the implementation of plugin.GRPCPlugin for the
// DirectiveSource service. This is used by both the host (to create a
// client) and the plugin (to create a server).
type DirectiveSourcePlugin struct {
	plugin.Plugin
	// Impl is the concrete directive source.
	// Only used when serving (plugin side).
	Impl scope.DirectiveSource
}

// GRPCServer is called by the plugin to register the gRPC server.
func (p *DirectiveSourcePlugin) GRPCServer(_ *plugin.GRPCBroker, s *grpc.Server) error {
	registerDirectiveSourceServer(s, &GRPCDirectiveSourceServer{impl: p.Impl})
	return nil
}

// GRPCClient is called by the host to create a gRPC client.
func (p *DirectiveSourcePlugin) GRPCClient(ctx context.Context, _ *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return &GRPCDirectiveSourceClient{conn: c}, nil
}

// =============================================================================
// GRPCDirectiveSourceServer - Plugin side
// =============================================================================

// GRPCDirectiveSourceServer wraps a scope.DirectiveSource to implement the
// gRPC server. This runs in the plugin process and handles requests from
// the host.
type GRPCDirectiveSourceServer struct {
	impl scope.DirectiveSource
}

// ConfigFile returns the configuration file of the requested directory.
func (s *GRPCDirectiveSourceServer) ConfigFile(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.impl.ConfigFile(req.GetValue())), nil
}

// Secondary returns the secondary file of the requested file.
func (s *GRPCDirectiveSourceServer) Secondary(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.impl.Secondary(req.GetValue())), nil
}

// Load reads the directives of the requested file.
func (s *GRPCDirectiveSourceServer) Load(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ds, err := s.impl.Load(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	out, err := toProtoDirectives(ds.Directives())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// =============================================================================
// GRPCDirectiveSourceClient - Host side (implements scope.DirectiveSource)
// =============================================================================

// Ensure GRPCDirectiveSourceClient implements scope.DirectiveSource.
var _ scope.DirectiveSource = (*GRPCDirectiveSourceClient)(nil)

// GRPCDirectiveSourceClient calls a plugin's DirectiveSource over gRPC.
// This runs in the host process.
type GRPCDirectiveSourceClient struct {
	conn grpc.ClientConnInterface
}

// NewGRPCDirectiveSourceClient returns a client using conn.
func NewGRPCDirectiveSourceClient(conn grpc.ClientConnInterface) *GRPCDirectiveSourceClient {
	return &GRPCDirectiveSourceClient{conn: conn}
}

// ConfigFile asks the plugin for dir's configuration file. Transport
// errors read as "no configuration".
func (c *GRPCDirectiveSourceClient) ConfigFile(dir string) string {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(context.Background(), methodConfigFile, wrapperspb.String(dir), out); err != nil {
		return ""
	}
	return out.GetValue()
}

// Secondary asks the plugin for file's secondary file. Transport errors
// read as "no secondary file".
func (c *GRPCDirectiveSourceClient) Secondary(file string) string {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(context.Background(), methodSecondary, wrapperspb.String(file), out); err != nil {
		return ""
	}
	return out.GetValue()
}

// Load asks the plugin for file's directives.
func (c *GRPCDirectiveSourceClient) Load(file string) (*lint.DirectiveSet, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(context.Background(), methodLoad, wrapperspb.String(file), out); err != nil {
		return nil, fromGRPCError(err)
	}
	d, err := fromProtoDirectives(out)
	if err != nil {
		return nil, err
	}
	return lint.NewDirectiveSet(d), nil
}

// fromGRPCError strips the gRPC status wrapper so callers see the plugin's
// own message.
func fromGRPCError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.FailedPrecondition {
		return &PluginError{Message: st.Message()}
	}
	return err
}

// PluginError is an error reported by the plugin's directive source.
type PluginError struct {
	Message string
}

func (e *PluginError) Error() string {
	return e.Message
}
