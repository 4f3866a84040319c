package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ============================================================================
// gRPC Service Definition (declared by hand; messages are well-known types)
// ============================================================================

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "wraith.shell.v1.Shell"

// ShellServer is the server interface for the Shell service.
type ShellServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSystemInfo(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CheckForUpdates(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	InstallUpdate(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetUpdateState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ShowNotification(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	OpenLink(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SetVisibility(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
	Attach(*wrapperspb.StringValue, AttachStream) error
}

// AttachStream is the server side of the Attach stream.
type AttachStream interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

// ShellServiceDesc describes the Shell service for grpc.Server.
var ShellServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShellServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", ShellServer.GetStatus),
		unary("GetSystemInfo", ShellServer.GetSystemInfo),
		unary("CheckForUpdates", ShellServer.CheckForUpdates),
		unary("InstallUpdate", ShellServer.InstallUpdate),
		unary("GetUpdateState", ShellServer.GetUpdateState),
		unary("ShowNotification", ShellServer.ShowNotification),
		unary("OpenLink", ShellServer.OpenLink),
		unary("SetVisibility", ShellServer.SetVisibility),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Attach",
			Handler:       attachHandler,
			ServerStreams: true,
		},
	},
	Metadata: "wraith/shell/v1/shell.proto",
}

// RegisterShellServer registers srv with the gRPC server.
func RegisterShellServer(s grpc.ServiceRegistrar, srv ShellServer) {
	s.RegisterService(&ShellServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method descriptor for one request/response RPC.
func unary[Req, Resp any](name string, call func(ShellServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ShellServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ShellServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func attachHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ShellServer).Attach(in, &attachServerStream{stream})
}

type attachServerStream struct {
	grpc.ServerStream
}

func (x *attachServerStream) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// ============================================================================
// Client
// ============================================================================

// ShellClient calls the Shell service of a running instance.
type ShellClient struct {
	cc grpc.ClientConnInterface
}

// NewShellClient creates a client on an established connection.
func NewShellClient(cc grpc.ClientConnInterface) *ShellClient {
	return &ShellClient{cc: cc}
}

func (c *ShellClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetStatus"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShellClient) GetSystemInfo(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetSystemInfo"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShellClient) CheckForUpdates(ctx context.Context, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, fullMethod("CheckForUpdates"), &emptypb.Empty{}, out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *ShellClient) InstallUpdate(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("InstallUpdate"), &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *ShellClient) GetUpdateState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetUpdateState"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShellClient) ShowNotification(ctx context.Context, title, body string, opts ...grpc.CallOption) error {
	in, err := structpb.NewStruct(map[string]any{"title": title, "body": body})
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, fullMethod("ShowNotification"), in, new(emptypb.Empty), opts...)
}

func (c *ShellClient) OpenLink(ctx context.Context, uri string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("OpenLink"), wrapperspb.String(uri), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShellClient) SetVisibility(ctx context.Context, visible bool, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("SetVisibility"), wrapperspb.Bool(visible), new(emptypb.Empty), opts...)
}

// AttachClient receives the events of an attached window.
type AttachClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

// Attach attaches as the front-end of the named window and streams its events.
func (c *ShellClient) Attach(ctx context.Context, window string, opts ...grpc.CallOption) (AttachClient, error) {
	stream, err := c.cc.NewStream(ctx, &ShellServiceDesc.Streams[0], fullMethod("Attach"), opts...)
	if err != nil {
		return nil, err
	}
	x := &attachClientStream{stream}
	if err := x.ClientStream.SendMsg(wrapperspb.String(window)); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type attachClientStream struct {
	grpc.ClientStream
}

func (x *attachClientStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
