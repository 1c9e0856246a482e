package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escrow-core/internal/model"
	"escrow-core/pkg/errno"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store 托管账本的事务边界
// 数据库是唯一的事实来源和协调点, 进程内不持有任何共享状态
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 返回底层连接, 供只读查询使用
func (s *Store) DB() *gorm.DB {
	return s.db
}

// InTx 在单个数据库事务中执行 fn
// fn 返回错误时整体回滚; 非业务错误统一转为 ErrPersistence (可安全重试)
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Queries{db: tx})
	})
	return translate(err)
}

// Read 不开启事务的只读查询
func (s *Store) Read(ctx context.Context) *Queries {
	return &Queries{db: s.db.WithContext(ctx)}
}

func (s *Store) GetContract(ctx context.Context, id uint64) (*model.Contract, error) {
	c, err := s.Read(ctx).Contract(id)
	return c, translate(err)
}

func (s *Store) GetMilestone(ctx context.Context, id uint64) (*model.Milestone, error) {
	m, err := s.Read(ctx).Milestone(id)
	return m, translate(err)
}

func (s *Store) ListMilestones(ctx context.Context, contractID uint64) ([]model.Milestone, error) {
	ms, err := s.Read(ctx).Milestones(contractID)
	return ms, translate(err)
}

// CreateContract 报价被接受时创建合同及其里程碑
func (s *Store) CreateContract(ctx context.Context, c *model.Contract, milestones []model.Milestone) error {
	return s.InTx(ctx, func(q *Queries) error {
		return q.CreateContract(c, milestones)
	})
}

// EscrowInvariant 返回 (账面托管余额, 按里程碑重新计算的托管余额)
func (s *Store) EscrowInvariant(ctx context.Context, contractID uint64) (stored, expected decimal.Decimal, err error) {
	stored, expected, err = s.Read(ctx).EscrowInvariant(contractID)
	return stored, expected, translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var e errno.Errno
	if errors.As(err, &e) {
		return err
	}
	return errno.ErrPersistence.Wrap(err)
}

// Queries 绑定在某个 *gorm.DB (事务或普通连接) 上的账本操作
type Queries struct {
	db *gorm.DB
}

// DB 返回当前事务, 供同一事务内的其他服务使用 (例如钱包入账)
func (q *Queries) DB() *gorm.DB {
	return q.db
}

func (q *Queries) Contract(id uint64) (*model.Contract, error) {
	var c model.Contract
	if err := q.db.Take(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrNotFound.WithMessage(fmt.Sprintf("contract %d not found", id))
		}
		return nil, err
	}
	return &c, nil
}

func (q *Queries) Milestone(id uint64) (*model.Milestone, error) {
	var m model.Milestone
	if err := q.db.Take(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrNotFound.WithMessage(fmt.Sprintf("milestone %d not found", id))
		}
		return nil, err
	}
	return &m, nil
}

func (q *Queries) Milestones(contractID uint64) ([]model.Milestone, error) {
	var ms []model.Milestone
	err := q.db.Where("contract_id = ?", contractID).Order("seq ASC").Find(&ms).Error
	return ms, err
}

func (q *Queries) CreateContract(c *model.Contract, milestones []model.Milestone) error {
	if len(milestones) == 0 {
		return errno.ErrInvalidAmount.WithMessage("contract needs at least one milestone")
	}
	if !WholePositive(c.TotalAmount) {
		return errno.ErrInvalidAmount.WithMessage("total amount must be a positive whole number")
	}

	sum := decimal.Zero
	for i := range milestones {
		if !WholePositive(milestones[i].Amount) {
			return errno.ErrInvalidAmount.WithMessage(fmt.Sprintf("milestone %q amount must be a positive whole number", milestones[i].Name))
		}
		sum = sum.Add(milestones[i].Amount)
	}
	if !sum.Equal(c.TotalAmount) {
		return errno.ErrAmountMismatch.WithMessage(fmt.Sprintf("milestones sum to %s, contract total is %s", sum, c.TotalAmount))
	}

	c.EscrowBalance = decimal.Zero
	c.PlatformFeeAccrued = decimal.Zero
	c.RefundedTotal = decimal.Zero
	if err := q.db.Omit("Milestones").Create(c).Error; err != nil {
		return err
	}

	for i := range milestones {
		milestones[i].ID = 0
		milestones[i].ContractID = c.ID
		milestones[i].State = model.StatePending
		milestones[i].Version = 0
		if milestones[i].Seq == 0 {
			milestones[i].Seq = i + 1
		}
	}
	if err := q.db.Create(&milestones).Error; err != nil {
		return err
	}
	c.Milestones = milestones
	return nil
}

// TransitionMilestone 乐观锁条件更新:
// UPDATE milestones SET state=?, version=version+1 ... WHERE id=? AND state=? AND version=?
// 影响行数为 0 说明有并发写入抢先, 重新读取后返回 AlreadyReleased 或 InvalidState
func (q *Queries) TransitionMilestone(m *model.Milestone, to model.MilestoneState, fields map[string]interface{}) (*model.Milestone, error) {
	updates := map[string]interface{}{
		"state":      to,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	res := q.db.Model(&model.Milestone{}).
		Where("id = ? AND state = ? AND version = ?", m.ID, m.State, m.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		current, err := q.Milestone(m.ID)
		if err != nil {
			return nil, err
		}
		if current.State == model.StateReleased {
			return nil, errno.ErrAlreadyReleased
		}
		return nil, errno.ErrInvalidState.WithMessage(
			fmt.Sprintf("milestone %d changed concurrently (now %s, version %d)", m.ID, current.State, current.Version))
	}

	return q.Milestone(m.ID)
}

// EscrowDelta 合同聚合字段的增量
type EscrowDelta struct {
	Escrow   decimal.Decimal
	Fee      decimal.Decimal
	Refunded decimal.Decimal
}

// AdjustEscrow 在 SQL 中做增量更新, 同一合同不同里程碑的操作互不冲突
func (q *Queries) AdjustEscrow(contractID uint64, d EscrowDelta) error {
	res := q.db.Model(&model.Contract{}).Where("id = ?", contractID).Updates(map[string]interface{}{
		"escrow_balance":       gorm.Expr("escrow_balance + ?", d.Escrow),
		"platform_fee_accrued": gorm.Expr("platform_fee_accrued + ?", d.Fee),
		"refunded_total":       gorm.Expr("refunded_total + ?", d.Refunded),
		"updated_at":           time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errno.ErrNotFound.WithMessage(fmt.Sprintf("contract %d not found", contractID))
	}
	return nil
}

// MarkTerminatedIfDone 所有里程碑到达 RELEASED/CANCELLED 时逻辑终止合同
func (q *Queries) MarkTerminatedIfDone(contractID uint64, now time.Time) (bool, error) {
	var open int64
	err := q.db.Model(&model.Milestone{}).
		Where("contract_id = ? AND state NOT IN ?", contractID, []model.MilestoneState{model.StateReleased, model.StateCancelled}).
		Count(&open).Error
	if err != nil || open > 0 {
		return false, err
	}

	res := q.db.Model(&model.Contract{}).
		Where("id = ? AND terminated_at IS NULL", contractID).
		Update("terminated_at", now)
	return res.RowsAffected > 0, res.Error
}

// EscrowInvariant 重新计算托管余额: Σ(持有资金状态的里程碑金额)
func (q *Queries) EscrowInvariant(contractID uint64) (stored, expected decimal.Decimal, err error) {
	c, err := q.Contract(contractID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	var held []model.MilestoneState
	for _, st := range model.AllStates() {
		if st.HoldsFunds() {
			held = append(held, st)
		}
	}

	var amounts []decimal.Decimal
	if err := q.db.Model(&model.Milestone{}).
		Where("contract_id = ? AND state IN ?", contractID, held).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	expected = decimal.Zero
	for _, a := range amounts {
		expected = expected.Add(a)
	}
	return c.EscrowBalance, expected, nil
}

// Outbox 与业务写入同一事务的消息
func (q *Queries) Outbox(topic, key string, payload interface{}) error {
	return model.CreateOutboxMessage(q.db, topic, key, payload)
}

// WholePositive 金额为正整数 (最小货币单位)
func WholePositive(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(0))
}
