package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvestmentNotFound    = errors.New("investment not found")
	ErrInvestmentNameMissing = errors.New("investment name is required")
	ErrInvestmentTypeMissing = errors.New("investment type is required")
	ErrRiskProfileInvalid    = errors.New("risk tolerance must be conservative, moderate, or aggressive")
)

type InvestmentType string

const (
	InvestmentTypeSIP        InvestmentType = "sip"
	InvestmentTypeLumpsum    InvestmentType = "lumpsum"
	InvestmentTypeStock      InvestmentType = "stock"
	InvestmentTypeGold       InvestmentType = "gold"
	InvestmentTypeFD         InvestmentType = "fd"
	InvestmentTypeRealEstate InvestmentType = "real_estate"
)

type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusSold    InvestmentStatus = "sold"
	InvestmentStatusPending InvestmentStatus = "pending"
)

// Investment is a holding the user tracks. CurrentValue and CurrentPrice are
// updated from market data or by the user; InvestedAmount only grows with
// transactions. Sold and pending holdings stay on record but are excluded
// from the portfolio summary.
type Investment struct {
	ID             int32            `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	Name           string           `json:"name"`
	Type           InvestmentType   `json:"type"`
	Symbol         string           `json:"symbol"`
	InvestedAmount decimal.Decimal  `json:"investedAmount"`
	CurrentValue   decimal.Decimal  `json:"currentValue"`
	Units          decimal.Decimal  `json:"units"`
	PurchasePrice  decimal.Decimal  `json:"purchasePrice"`
	CurrentPrice   decimal.Decimal  `json:"currentPrice"`
	PurchaseDate   time.Time        `json:"purchaseDate"`
	Status         InvestmentStatus `json:"status"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (i *Investment) Validate() error {
	if i.Name == "" {
		return ErrInvestmentNameMissing
	}
	if i.Type == "" {
		return ErrInvestmentTypeMissing
	}
	if i.InvestedAmount.IsNegative() {
		return ErrInvalidAmount
	}
	switch i.Status {
	case InvestmentStatusActive, InvestmentStatusSold, InvestmentStatusPending:
	default:
		return ErrInvalidInput
	}
	return nil
}

// AbsoluteReturn is current value minus invested amount.
func (i *Investment) AbsoluteReturn() decimal.Decimal {
	return i.CurrentValue.Sub(i.InvestedAmount)
}

// ReturnPct is the absolute return as a percentage of invested amount,
// zero when nothing has been invested.
func (i *Investment) ReturnPct() decimal.Decimal {
	if i.InvestedAmount.IsZero() {
		return decimal.Zero
	}
	return i.AbsoluteReturn().Div(i.InvestedAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// InvestmentTransaction records a buy or sell against a holding.
type InvestmentTransaction struct {
	ID           int32           `json:"id"`
	InvestmentID int32           `json:"investmentId"`
	UserID       uuid.UUID       `json:"userId"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Units        decimal.Decimal `json:"units"`
	Action       string          `json:"action"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RiskProfile captures the user's stated appetite, used to weight the
// suggested allocation across asset classes.
type RiskProfile struct {
	UserID        uuid.UUID       `json:"userId"`
	Tolerance     RiskTolerance   `json:"tolerance"`
	Experience    string          `json:"investmentExperience"`
	HorizonYears  int             `json:"horizonYears"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	EmergencyFund bool            `json:"emergencyFundAvailable"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (r *RiskProfile) Validate() error {
	switch r.Tolerance {
	case RiskConservative, RiskModerate, RiskAggressive:
	default:
		return ErrRiskProfileInvalid
	}
	if r.HorizonYears < 0 {
		return ErrInvalidInput
	}
	if r.MonthlyBudget.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// PortfolioSummary aggregates the user's active holdings. AssetAllocation
// breaks the invested amount down by instrument type.
type PortfolioSummary struct {
	TotalInvested   decimal.Decimal                    `json:"totalInvested"`
	TotalValue      decimal.Decimal                    `json:"totalValue"`
	TotalReturn     decimal.Decimal                    `json:"totalReturn"`
	ReturnPct       decimal.Decimal                    `json:"returnPct"`
	AssetAllocation map[InvestmentType]decimal.Decimal `json:"assetAllocation"`
}

type InvestmentRepository interface {
	Create(inv *Investment) (*Investment, error)
	GetByID(userID uuid.UUID, id int32) (*Investment, error)
	GetAllByUser(userID uuid.UUID) ([]*Investment, error)
	Update(inv *Investment) (*Investment, error)
	Delete(userID uuid.UUID, id int32) error
}

type InvestmentTransactionRepository interface {
	Create(txn *InvestmentTransaction) (*InvestmentTransaction, error)
	GetByInvestmentID(investmentID int32) ([]*InvestmentTransaction, error)
}

type RiskProfileRepository interface {
	Get(userID uuid.UUID) (*RiskProfile, error)
	Upsert(profile *RiskProfile) (*RiskProfile, error)
}
