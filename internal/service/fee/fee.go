package fee

import (
	"errors"
	"fmt"

	"escrow-core/internal/model"
	"escrow-core/pkg/config"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultRate 默认平台费率 3%
var DefaultRate = decimal.RequireFromString("0.03")

// Calculator 放款金额 -> 平台费, 纯函数
type Calculator interface {
	Compute(amount decimal.Decimal) decimal.Decimal
}

// Policy 为某个承包商选择费率策略
// db 由调用方传入, 放款时传入的是放款事务本身
type Policy interface {
	For(db *gorm.DB, contractorID uint64) (Calculator, error)
}

// FlatRate 固定费率, 向下取整到最小货币单位
type FlatRate struct {
	Rate decimal.Decimal
}

func NewFlatRate(rate string) (FlatRate, error) {
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return FlatRate{}, fmt.Errorf("invalid fee rate %q: %w", rate, err)
	}
	if r.IsNegative() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return FlatRate{}, fmt.Errorf("fee rate %s out of range [0, 1)", r)
	}
	return FlatRate{Rate: r}, nil
}

func (f FlatRate) Compute(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.Rate).Floor()
}

// Static 所有承包商使用同一个 Calculator
type Static struct {
	Calculator Calculator
}

func (s Static) For(_ *gorm.DB, _ uint64) (Calculator, error) {
	return s.Calculator, nil
}

// Tier 承包商信用等级
type Tier string

const (
	TierStandard Tier = "standard"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
)

// TierForScore 信用分 -> 等级
func TierForScore(score int) Tier {
	switch {
	case score >= 95:
		return TierGold
	case score >= 85:
		return TierSilver
	default:
		return TierStandard
	}
}

// TrustTiered 按承包商信用等级选择费率, 没有配置的等级使用 Fallback
type TrustTiered struct {
	Rates    map[Tier]FlatRate
	Fallback FlatRate
}

func (t TrustTiered) For(db *gorm.DB, contractorID uint64) (Calculator, error) {
	score := model.DefaultTrustScore

	var profile model.ContractorProfile
	err := db.Where("customer_id = ?", contractorID).Take(&profile).Error
	switch {
	case err == nil:
		score = profile.TrustScore
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	if rate, ok := t.Rates[TierForScore(score)]; ok {
		return rate, nil
	}
	return t.Fallback, nil
}

// NewFromConfig 根据 escrow.fee_rate / escrow.fee_tiers 构造策略
func NewFromConfig(cfg config.EscrowConfig) (Policy, error) {
	rate := cfg.FeeRate
	if rate == "" {
		rate = DefaultRate.String()
	}
	flat, err := NewFlatRate(rate)
	if err != nil {
		return nil, err
	}
	if len(cfg.FeeTiers) == 0 {
		return Static{Calculator: flat}, nil
	}

	tiered := TrustTiered{Rates: make(map[Tier]FlatRate, len(cfg.FeeTiers)), Fallback: flat}
	for name, r := range cfg.FeeTiers {
		tr, err := NewFlatRate(r)
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", name, err)
		}
		tiered.Rates[Tier(name)] = tr
	}
	return tiered, nil
}
