package grpc

import (
	"context"
	"errors"
	"strconv"

	"escrow-core/internal/service/escrow"
	"escrow-core/pkg/errno"
	"escrow-core/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ServiceName gRPC 全限定服务名
const ServiceName = "escrow.v1.EscrowService"

// TrailerErrnoCode 业务错误码通过 trailer 返回, 与 HTTP 信封中的 code 一致
const TrailerErrnoCode = "x-errno-code"

// EscrowServer 托管服务的 gRPC 接口
type EscrowServer interface {
	Deposit(context.Context, *DepositRequest) (*MilestoneResponse, error)
	SubmitEvidence(context.Context, *SubmitEvidenceRequest) (*MilestoneResponse, error)
	ApproveAndRelease(context.Context, *ApproveAndReleaseRequest) (*escrow.ReleaseReceipt, error)
	IsLocked(context.Context, *IsLockedRequest) (*IsLockedResponse, error)
}

// EscrowHandler implements EscrowServer
type EscrowHandler struct {
	service *escrow.Service
}

// NewEscrowHandler creates a new gRPC handler
func NewEscrowHandler(svc *escrow.Service) *EscrowHandler {
	return &EscrowHandler{service: svc}
}

func (h *EscrowHandler) Deposit(ctx context.Context, req *DepositRequest) (*MilestoneResponse, error) {
	if req.ActorID == 0 {
		return nil, toStatus(ctx, errno.ErrUnauthorized)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, toStatus(ctx, errno.ErrInvalidAmount)
	}
	m, err := h.service.Deposit(ctx, req.MilestoneID, req.ActorID, amount, req.Note)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &MilestoneResponse{Milestone: m}, nil
}

func (h *EscrowHandler) SubmitEvidence(ctx context.Context, req *SubmitEvidenceRequest) (*MilestoneResponse, error) {
	if req.ActorID == 0 {
		return nil, toStatus(ctx, errno.ErrUnauthorized)
	}
	if req.ProofURL == "" {
		return nil, toStatus(ctx, errno.ErrBind.WithMessage("proof_url is required"))
	}
	m, err := h.service.SubmitEvidence(ctx, req.MilestoneID, req.ActorID, req.ProofURL, req.Notes)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &MilestoneResponse{Milestone: m}, nil
}

func (h *EscrowHandler) ApproveAndRelease(ctx context.Context, req *ApproveAndReleaseRequest) (*escrow.ReleaseReceipt, error) {
	if req.ActorID == 0 {
		return nil, toStatus(ctx, errno.ErrUnauthorized)
	}
	var opts []escrow.ReleaseOption
	if req.ExpectedVersion != nil {
		opts = append(opts, escrow.WithExpectedVersion(*req.ExpectedVersion))
	}
	receipt, err := h.service.ApproveAndRelease(ctx, req.MilestoneID, req.ActorID, opts...)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return receipt, nil
}

func (h *EscrowHandler) IsLocked(ctx context.Context, req *IsLockedRequest) (*IsLockedResponse, error) {
	locked, err := h.service.IsLocked(ctx, req.MilestoneID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &IsLockedResponse{MilestoneID: req.MilestoneID, Locked: locked}, nil
}

// toStatus 把 errno 映射为 gRPC 状态码, 原始业务码写入 trailer
func toStatus(ctx context.Context, err error) error {
	code, msg := errno.Decode(err)
	_ = ggrpc.SetTrailer(ctx, metadata.Pairs(TrailerErrnoCode, strconv.Itoa(code)))

	var c codes.Code
	switch {
	case errors.Is(err, errno.ErrNotFound):
		c = codes.NotFound
	case errors.Is(err, errno.ErrForbidden):
		c = codes.PermissionDenied
	case errors.Is(err, errno.ErrUnauthorized):
		c = codes.Unauthenticated
	case errors.Is(err, errno.ErrInvalidState),
		errors.Is(err, errno.ErrAlreadyReleased),
		errors.Is(err, errno.ErrLocked):
		c = codes.FailedPrecondition
	case errors.Is(err, errno.ErrAmountMismatch),
		errors.Is(err, errno.ErrInvalidAmount),
		errors.Is(err, errno.ErrBind):
		c = codes.InvalidArgument
	case errors.Is(err, errno.ErrPersistence):
		c = codes.Aborted
	default:
		logger.Error("gRPC call failed", zap.Error(err))
		c = codes.Internal
	}
	return status.Error(c, msg)
}
