package grpc

import (
	"context"

	ggrpc "google.golang.org/grpc"
)

// RegisterEscrowServer 注册 EscrowService, 描述符手写以配合 JSON 编码
func RegisterEscrowServer(s ggrpc.ServiceRegistrar, srv EscrowServer) {
	s.RegisterService(&EscrowServiceDesc, srv)
}

var EscrowServiceDesc = ggrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EscrowServer)(nil),
	Methods: []ggrpc.MethodDesc{
		{MethodName: "Deposit", Handler: depositHandler},
		{MethodName: "SubmitEvidence", Handler: submitEvidenceHandler},
		{MethodName: "ApproveAndRelease", Handler: approveAndReleaseHandler},
		{MethodName: "IsLocked", Handler: isLockedHandler},
	},
	Streams:  []ggrpc.StreamDesc{},
	Metadata: "escrow/v1/escrow.proto",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func depositHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor ggrpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(DepositRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EscrowServer).Deposit(ctx, req)
	}
	info := &ggrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Deposit")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EscrowServer).Deposit(ctx, req.(*DepositRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func submitEvidenceHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor ggrpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(SubmitEvidenceRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EscrowServer).SubmitEvidence(ctx, req)
	}
	info := &ggrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("SubmitEvidence")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EscrowServer).SubmitEvidence(ctx, req.(*SubmitEvidenceRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func approveAndReleaseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor ggrpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ApproveAndReleaseRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EscrowServer).ApproveAndRelease(ctx, req)
	}
	info := &ggrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ApproveAndRelease")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EscrowServer).ApproveAndRelease(ctx, req.(*ApproveAndReleaseRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func isLockedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor ggrpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(IsLockedRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EscrowServer).IsLocked(ctx, req)
	}
	info := &ggrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("IsLocked")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EscrowServer).IsLocked(ctx, req.(*IsLockedRequest))
	}
	return interceptor(ctx, req, info, handler)
}
