package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "triagedash.v1.Dashboard"

// DashboardServer is the server API for the Dashboard service. Every
// message is a google.protobuf.Struct carrying the JSON form of the
// request or response.
type DashboardServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetFilters(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPatientResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRegionMap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGenderDistribution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportRegionStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes the Dashboard service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Login", DashboardServer.Login),
		method("Logout", DashboardServer.Logout),
		method("Refresh", DashboardServer.Refresh),
		method("SetFilters", DashboardServer.SetFilters),
		method("GetDashboard", DashboardServer.GetDashboard),
		method("GetPatientResults", DashboardServer.GetPatientResults),
		method("GetRegionMap", DashboardServer.GetRegionMap),
		method("GetGenderDistribution", DashboardServer.GetGenderDistribution),
		method("ImportRegionStats", DashboardServer.ImportRegionStats),
		method("SubmitContact", DashboardServer.SubmitContact),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "triagedash/v1/dashboard.proto",
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func method(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// DashboardClient calls the Dashboard service by short method name.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

// Call invokes name with in, which may be nil.
func (c *DashboardClient) Call(ctx context.Context, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+name, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
