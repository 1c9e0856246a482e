package trust

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"escrow-core/internal/event"
	"escrow-core/internal/model"
	"escrow-core/internal/service/mq"
	"escrow-core/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	events []event.MilestoneReleasedEvent
	err    error
}

func (n *fakeNotifier) EnqueueMilestoneReleased(_ context.Context, evt event.MilestoneReleasedEvent) error {
	n.events = append(n.events, evt)
	return n.err
}

func releasedMsg(t *testing.T, eventID string, contractorID uint64) *mq.Message {
	t.Helper()
	b, err := json.Marshal(event.MilestoneReleasedEvent{
		EventID:      eventID,
		MilestoneID:  1,
		ContractID:   1,
		ContractorID: contractorID,
		Payout:       "485000",
	})
	require.NoError(t, err)
	return &mq.Message{ID: "1-0", Topic: event.TopicMilestoneReleased, Payload: b}
}

func TestHandleReleasedIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	n := &fakeNotifier{}
	svc := NewService(db, n)
	ctx := context.Background()

	msg := releasedMsg(t, "evt-1", 200)
	require.NoError(t, svc.HandleReleased(ctx, msg))
	require.NoError(t, svc.HandleReleased(ctx, msg))

	p, err := svc.Profile(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTrustScore+ReleaseBonus, p.TrustScore)
	assert.Equal(t, 1, p.MilestonesReleased)
	assert.Len(t, n.events, 1)
}

func TestTrustScoreIsCapped(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.ContractorProfile{CustomerID: 7, TrustScore: 99}).Error)

	require.NoError(t, svc.HandleReleased(ctx, releasedMsg(t, "a", 7)))
	require.NoError(t, svc.HandleReleased(ctx, releasedMsg(t, "b", 7)))

	p, err := svc.Profile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, MaxTrustScore, p.TrustScore)
	assert.Equal(t, 2, p.MilestonesReleased)
}

func TestHandleReleasedToleratesBadInput(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewService(db, &fakeNotifier{err: errors.New("redis down")})
	ctx := context.Background()

	assert.NoError(t, svc.HandleReleased(ctx, &mq.Message{Payload: []byte("not json")}))
	assert.NoError(t, svc.HandleReleased(ctx, releasedMsg(t, "", 1)))

	// 通知入队失败不影响信用分更新
	assert.NoError(t, svc.HandleReleased(ctx, releasedMsg(t, "evt-9", 1)))
	p, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTrustScore+ReleaseBonus, p.TrustScore)
}

func TestProfileDefaults(t *testing.T) {
	svc := NewService(testutil.NewTestDB(t), nil)
	p, err := svc.Profile(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, uint64(555), p.CustomerID)
	assert.Equal(t, model.DefaultTrustScore, p.TrustScore)
	assert.Zero(t, p.MilestonesReleased)
}
