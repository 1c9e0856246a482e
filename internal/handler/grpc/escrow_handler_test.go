package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"escrow-core/internal/model"
	"escrow-core/internal/service/escrow"
	"escrow-core/internal/service/fee"
	"escrow-core/internal/service/ledger"
	"escrow-core/internal/service/wallet"
	"escrow-core/internal/testutil"
	"escrow-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

type harness struct {
	conn      *ggrpc.ClientConn
	milestone model.Milestone
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := ledger.NewStore(db)
	wallets := wallet.NewService(store, decimal.NewFromInt(50000))
	svc := escrow.NewService(store, wallets, fee.Static{Calculator: fee.FlatRate{Rate: fee.DefaultRate}})

	c := &model.Contract{OwnerID: 100, ContractorID: 200, TotalAmount: decimal.NewFromInt(1000000)}
	require.NoError(t, store.CreateContract(context.Background(), c, []model.Milestone{
		{Name: "Foundation", Amount: decimal.NewFromInt(1000000)},
	}))

	listener := bufconn.Listen(bufSize)
	server := ggrpc.NewServer(ggrpc.ChainUnaryInterceptor(LoggingInterceptor()))
	RegisterEscrowServer(server, NewEscrowHandler(svc))
	reflection.Register(server)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := ggrpc.NewClient("passthrough:///bufnet",
		ggrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		ggrpc.WithTransportCredentials(insecure.NewCredentials()),
		ggrpc.WithDefaultCallOptions(ggrpc.CallContentSubtype(CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{conn: conn, milestone: c.Milestones[0]}
}

func (h *harness) invoke(t *testing.T, method string, req, resp interface{}, opts ...ggrpc.CallOption) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.conn.Invoke(ctx, fullMethod(method), req, resp, opts...)
}

func TestEscrowServiceHappyPath(t *testing.T) {
	h := newHarness(t)
	id := h.milestone.ID

	var deposited MilestoneResponse
	require.NoError(t, h.invoke(t, "Deposit", &DepositRequest{MilestoneID: id, ActorID: 100, Amount: "1000000"}, &deposited))
	assert.Equal(t, model.StateDeposited, deposited.Milestone.State)

	var completed MilestoneResponse
	require.NoError(t, h.invoke(t, "SubmitEvidence", &SubmitEvidenceRequest{
		MilestoneID: id, ActorID: 200, ProofURL: "https://cdn.example.com/proof.jpg",
	}, &completed))
	assert.Equal(t, model.StateCompleted, completed.Milestone.State)

	var locked IsLockedResponse
	require.NoError(t, h.invoke(t, "IsLocked", &IsLockedRequest{MilestoneID: id}, &locked))
	assert.False(t, locked.Locked)

	version := completed.Milestone.Version
	var receipt escrow.ReleaseReceipt
	require.NoError(t, h.invoke(t, "ApproveAndRelease", &ApproveAndReleaseRequest{
		MilestoneID: id, ActorID: 100, ExpectedVersion: &version,
	}, &receipt))
	assert.True(t, receipt.Payout.Equal(decimal.NewFromInt(970000)))
	assert.True(t, receipt.Fee.Equal(decimal.NewFromInt(30000)))
}

func TestEscrowServiceErrorMapping(t *testing.T) {
	h := newHarness(t)
	id := h.milestone.ID

	tests := []struct {
		name   string
		method string
		req    interface{}
		code   codes.Code
		errno  string
	}{
		{"missing actor", "Deposit", &DepositRequest{MilestoneID: id, Amount: "1000000"}, codes.Unauthenticated, "10003"},
		{"bad amount", "Deposit", &DepositRequest{MilestoneID: id, ActorID: 100, Amount: "abc"}, codes.InvalidArgument, "30102"},
		{"amount mismatch", "Deposit", &DepositRequest{MilestoneID: id, ActorID: 100, Amount: "5"}, codes.InvalidArgument, "30004"},
		{"stranger", "Deposit", &DepositRequest{MilestoneID: id, ActorID: 999, Amount: "1000000"}, codes.PermissionDenied, "30007"},
		{"not found", "IsLocked", &IsLockedRequest{MilestoneID: 424242}, codes.NotFound, "30001"},
		{"release pending", "ApproveAndRelease", &ApproveAndReleaseRequest{MilestoneID: id, ActorID: 100}, codes.FailedPrecondition, "30002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trailer metadata.MD
			var resp map[string]interface{}
			err := h.invoke(t, tt.method, tt.req, &resp, ggrpc.Trailer(&trailer))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
			assert.Equal(t, []string{tt.errno}, trailer.Get(TrailerErrnoCode))
		})
	}
}

func TestToStatusPersistenceIsAborted(t *testing.T) {
	err := toStatus(context.Background(), errno.ErrPersistence.Wrap(assert.AnError))
	assert.Equal(t, codes.Aborted, status.Code(err))
}
