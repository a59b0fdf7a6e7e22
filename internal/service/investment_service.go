package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/finance"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/market"
)

// MarketDataSource names where a quote came from: the live feed or the
// canned fallback when the feed is unavailable.
type MarketDataSource string

const (
	MarketSourceLive     MarketDataSource = "live"
	MarketSourceDegraded MarketDataSource = "degraded"
)

// QuoteResult carries a quote and its provenance
type QuoteResult struct {
	Quote  *market.Quote    `json:"quote"`
	Source MarketDataSource `json:"source"`
}

// InvestmentService handles holdings, projections, and risk profiles
type InvestmentService struct {
	invRepo      domain.InvestmentRepository
	txnRepo      domain.InvestmentTransactionRepository
	riskRepo     domain.RiskProfileRepository
	marketClient *market.Client
}

// NewInvestmentService creates a new InvestmentService
func NewInvestmentService(invRepo domain.InvestmentRepository, txnRepo domain.InvestmentTransactionRepository, riskRepo domain.RiskProfileRepository, marketClient *market.Client) *InvestmentService {
	return &InvestmentService{
		invRepo:      invRepo,
		txnRepo:      txnRepo,
		riskRepo:     riskRepo,
		marketClient: marketClient,
	}
}

// CreateInvestmentInput contains input for adding a holding
type CreateInvestmentInput struct {
	Name           string
	Type           domain.InvestmentType
	Symbol         string
	InvestedAmount decimal.Decimal
	CurrentValue   decimal.Decimal
	Units          decimal.Decimal
	PurchasePrice  decimal.Decimal
	CurrentPrice   decimal.Decimal
	PurchaseDate   time.Time
	Status         domain.InvestmentStatus
	Notes          string
}

// CreateInvestment adds a holding. A zero current value defaults to the
// invested amount, a zero current price to the purchase price, and an
// empty status to active.
func (s *InvestmentService) CreateInvestment(userID uuid.UUID, input CreateInvestmentInput) (*domain.Investment, error) {
	inv := &domain.Investment{
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Symbol:         strings.ToUpper(strings.TrimSpace(input.Symbol)),
		InvestedAmount: input.InvestedAmount,
		CurrentValue:   input.CurrentValue,
		Units:          input.Units,
		PurchasePrice:  input.PurchasePrice,
		CurrentPrice:   input.CurrentPrice,
		PurchaseDate:   input.PurchaseDate,
		Status:         input.Status,
		Notes:          input.Notes,
	}
	if inv.CurrentValue.IsZero() {
		inv.CurrentValue = inv.InvestedAmount
	}
	if inv.CurrentPrice.IsZero() {
		inv.CurrentPrice = inv.PurchasePrice
	}
	if inv.Status == "" {
		inv.Status = domain.InvestmentStatusActive
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return s.invRepo.Create(inv)
}

// ListInvestments returns all holdings for a user
func (s *InvestmentService) ListInvestments(userID uuid.UUID) ([]*domain.Investment, error) {
	return s.invRepo.GetAllByUser(userID)
}

// RecordTransaction applies a buy or sell against a holding and adjusts the
// invested amount and units.
func (s *InvestmentService) RecordTransaction(userID uuid.UUID, investmentID int32, amount, units decimal.Decimal, action string, date time.Time) (*domain.InvestmentTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	inv, err := s.invRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = time.Now()
	}
	switch action {
	case "buy":
		inv.InvestedAmount = inv.InvestedAmount.Add(amount)
		inv.CurrentValue = inv.CurrentValue.Add(amount)
		inv.Units = inv.Units.Add(units)
	case "sell":
		inv.InvestedAmount = decimal.Max(decimal.Zero, inv.InvestedAmount.Sub(amount))
		inv.CurrentValue = decimal.Max(decimal.Zero, inv.CurrentValue.Sub(amount))
		inv.Units = decimal.Max(decimal.Zero, inv.Units.Sub(units))
	default:
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.invRepo.Update(inv); err != nil {
		return nil, err
	}
	return s.txnRepo.Create(&domain.InvestmentTransaction{
		InvestmentID: investmentID,
		UserID:       userID,
		Date:         date,
		Amount:       amount,
		Units:        units,
		Action:       action,
	})
}

// UpdateValue marks a holding to its latest value
func (s *InvestmentService) UpdateValue(userID uuid.UUID, investmentID int32, currentValue decimal.Decimal) (*domain.Investment, error) {
	if currentValue.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	inv, err := s.invRepo.GetByID(userID, investmentID)
	if err != nil {
		return nil, err
	}
	inv.CurrentValue = currentValue
	return s.invRepo.Update(inv)
}

// DeleteInvestment removes a holding
func (s *InvestmentService) DeleteInvestment(userID uuid.UUID, id int32) error {
	return s.invRepo.Delete(userID, id)
}

// Portfolio aggregates the user's active holdings. Sold and pending
// positions are skipped.
func (s *InvestmentService) Portfolio(userID uuid.UUID) (*domain.PortfolioSummary, error) {
	investments, err := s.invRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	summary := &domain.PortfolioSummary{
		TotalInvested:   decimal.Zero,
		TotalValue:      decimal.Zero,
		TotalReturn:     decimal.Zero,
		ReturnPct:       decimal.Zero,
		AssetAllocation: map[domain.InvestmentType]decimal.Decimal{},
	}
	for _, inv := range investments {
		if inv.Status != domain.InvestmentStatusActive {
			continue
		}
		summary.TotalInvested = summary.TotalInvested.Add(inv.InvestedAmount)
		summary.TotalValue = summary.TotalValue.Add(inv.CurrentValue)
		summary.AssetAllocation[inv.Type] = summary.AssetAllocation[inv.Type].Add(inv.InvestedAmount)
	}
	summary.TotalReturn = summary.TotalValue.Sub(summary.TotalInvested)
	if summary.TotalInvested.IsPositive() {
		summary.ReturnPct = summary.TotalReturn.Div(summary.TotalInvested).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return summary, nil
}

// ProjectSIP returns the projected future value of a monthly contribution
func (s *InvestmentService) ProjectSIP(monthly, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	if monthly.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return finance.SIPFutureValue(monthly, annualRatePct, months)
}

// ProjectLumpsum returns the projected future value of a one-time investment
func (s *InvestmentService) ProjectLumpsum(principal, annualRatePct decimal.Decimal, years int) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return finance.LumpsumFutureValue(principal, annualRatePct, years)
}

// SetRiskProfileInput contains input for storing the user's risk appetite
type SetRiskProfileInput struct {
	Tolerance     domain.RiskTolerance
	Experience    string
	HorizonYears  int
	MonthlyBudget decimal.Decimal
	EmergencyFund bool
}

// SetRiskProfile stores the user's risk appetite
func (s *InvestmentService) SetRiskProfile(userID uuid.UUID, input SetRiskProfileInput) (*domain.RiskProfile, error) {
	profile := &domain.RiskProfile{
		UserID:        userID,
		Tolerance:     input.Tolerance,
		Experience:    strings.TrimSpace(input.Experience),
		HorizonYears:  input.HorizonYears,
		MonthlyBudget: input.MonthlyBudget,
		EmergencyFund: input.EmergencyFund,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return s.riskRepo.Upsert(profile)
}

// GetRiskProfile loads the user's risk profile
func (s *InvestmentService) GetRiskProfile(userID uuid.UUID) (*domain.RiskProfile, error) {
	return s.riskRepo.Get(userID)
}

// AllocationSuggestion is the suggested percentage mix across asset classes
type AllocationSuggestion struct {
	EquityPct decimal.Decimal `json:"equityPct"`
	DebtPct   decimal.Decimal `json:"debtPct"`
	GoldPct   decimal.Decimal `json:"goldPct"`
}

// SuggestAllocation maps a risk tolerance to a simple asset-class mix
func (s *InvestmentService) SuggestAllocation(tolerance domain.RiskTolerance) (*AllocationSuggestion, error) {
	switch tolerance {
	case domain.RiskConservative:
		return &AllocationSuggestion{
			EquityPct: decimal.NewFromInt(20),
			DebtPct:   decimal.NewFromInt(65),
			GoldPct:   decimal.NewFromInt(15),
		}, nil
	case domain.RiskModerate:
		return &AllocationSuggestion{
			EquityPct: decimal.NewFromInt(50),
			DebtPct:   decimal.NewFromInt(40),
			GoldPct:   decimal.NewFromInt(10),
		}, nil
	case domain.RiskAggressive:
		return &AllocationSuggestion{
			EquityPct: decimal.NewFromInt(75),
			DebtPct:   decimal.NewFromInt(15),
			GoldPct:   decimal.NewFromInt(10),
		}, nil
	default:
		return nil, domain.ErrRiskProfileInvalid
	}
}

// GetQuote fetches a symbol's latest quote, falling back to a canned quote
// when the feed is unavailable so the UI keeps working in degraded mode.
func (s *InvestmentService) GetQuote(ctx context.Context, symbol string) (*QuoteResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrInvalidInput
	}

	if s.marketClient != nil {
		quote, err := s.marketClient.GetQuote(ctx, symbol)
		if err == nil {
			return &QuoteResult{Quote: quote, Source: MarketSourceLive}, nil
		}
		log.Warn().Err(err).Str("symbol", symbol).Msg("market feed unavailable, serving canned quote")
	}

	return &QuoteResult{
		Quote: &market.Quote{
			Symbol:    symbol,
			Price:     decimal.NewFromInt(100),
			ChangePct: decimal.Zero,
		},
		Source: MarketSourceDegraded,
	}, nil
}
