package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/config"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/market"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

func testMarketClient(baseURL string) *market.Client {
	return market.NewClient(config.MarketConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func newInvestmentService(marketClient *market.Client) (*InvestmentService, *testutil.MockInvestmentRepository) {
	invRepo := testutil.NewMockInvestmentRepository()
	svc := NewInvestmentService(invRepo, testutil.NewMockInvestmentTransactionRepository(),
		testutil.NewMockRiskProfileRepository(), marketClient)
	return svc, invRepo
}

func TestCreateInvestment(t *testing.T) {
	svc, _ := newInvestmentService(nil)
	userID := uuid.New()

	t.Run("zero current value defaults to invested", func(t *testing.T) {
		inv, err := svc.CreateInvestment(userID, CreateInvestmentInput{
			Name:           "Index fund SIP",
			Type:           domain.InvestmentTypeSIP,
			InvestedAmount: dec("24000"),
		})
		require.NoError(t, err)
		assert.True(t, inv.CurrentValue.Equal(dec("24000")))
		assert.Equal(t, domain.InvestmentStatusActive, inv.Status)
	})

	t.Run("symbol is normalized and current price defaults to purchase price", func(t *testing.T) {
		inv, err := svc.CreateInvestment(userID, CreateInvestmentInput{
			Name:           "Infosys",
			Type:           domain.InvestmentTypeStock,
			Symbol:         " infy ",
			InvestedAmount: dec("15200"),
			Units:          dec("10"),
			PurchasePrice:  dec("1520"),
			PurchaseDate:   time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "INFY", inv.Symbol)
		assert.True(t, inv.CurrentPrice.Equal(dec("1520")))
		assert.Equal(t, 2026, inv.PurchaseDate.Year())
	})

	t.Run("requires name and type", func(t *testing.T) {
		_, err := svc.CreateInvestment(userID, CreateInvestmentInput{Type: domain.InvestmentTypeStock})
		assert.ErrorIs(t, err, domain.ErrInvestmentNameMissing)

		_, err = svc.CreateInvestment(userID, CreateInvestmentInput{Name: "Gold"})
		assert.ErrorIs(t, err, domain.ErrInvestmentTypeMissing)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.CreateInvestment(userID, CreateInvestmentInput{
			Name: "Gold", Type: domain.InvestmentTypeGold, Status: "archived",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRecordTransaction(t *testing.T) {
	svc, invRepo := newInvestmentService(nil)
	userID := uuid.New()

	inv, err := svc.CreateInvestment(userID, CreateInvestmentInput{
		Name:           "Blue chip",
		Type:           domain.InvestmentTypeStock,
		InvestedAmount: dec("10000"),
		Units:          dec("40"),
	})
	require.NoError(t, err)

	t.Run("buy grows the holding", func(t *testing.T) {
		txn, err := svc.RecordTransaction(userID, inv.ID, dec("5000"), dec("20"), "buy", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, "buy", txn.Action)
		assert.False(t, txn.Date.IsZero())

		stored, err := invRepo.GetByID(userID, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.InvestedAmount.Equal(dec("15000")))
		assert.True(t, stored.Units.Equal(dec("60")))
	})

	t.Run("sell clamps at zero", func(t *testing.T) {
		_, err := svc.RecordTransaction(userID, inv.ID, dec("99999"), dec("500"), "sell", time.Time{})
		require.NoError(t, err)

		stored, err := invRepo.GetByID(userID, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.InvestedAmount.IsZero())
		assert.True(t, stored.Units.IsZero())
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := svc.RecordTransaction(userID, inv.ID, dec("100"), dec("1"), "hold", time.Time{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPortfolio(t *testing.T) {
	svc, _ := newInvestmentService(nil)
	userID := uuid.New()

	_, err := svc.CreateInvestment(userID, CreateInvestmentInput{
		Name: "Fund A", Type: domain.InvestmentTypeSIP,
		InvestedAmount: dec("10000"), CurrentValue: dec("11000"),
	})
	require.NoError(t, err)
	_, err = svc.CreateInvestment(userID, CreateInvestmentInput{
		Name: "Fund B", Type: domain.InvestmentTypeLumpsum,
		InvestedAmount: dec("30000"), CurrentValue: dec("33000"),
	})
	require.NoError(t, err)
	_, err = svc.CreateInvestment(userID, CreateInvestmentInput{
		Name: "Fund C", Type: domain.InvestmentTypeSIP,
		InvestedAmount: dec("6000"), CurrentValue: dec("6500"),
	})
	require.NoError(t, err)

	// Sold and pending holdings stay on record but out of the summary.
	_, err = svc.CreateInvestment(userID, CreateInvestmentInput{
		Name: "Old stock", Type: domain.InvestmentTypeStock,
		InvestedAmount: dec("50000"), CurrentValue: dec("70000"),
		Status: domain.InvestmentStatusSold,
	})
	require.NoError(t, err)
	_, err = svc.CreateInvestment(userID, CreateInvestmentInput{
		Name: "Pending FD", Type: domain.InvestmentTypeFD,
		InvestedAmount: dec("20000"),
		Status:         domain.InvestmentStatusPending,
	})
	require.NoError(t, err)

	summary, err := svc.Portfolio(userID)
	require.NoError(t, err)
	assert.True(t, summary.TotalInvested.Equal(dec("46000")))
	assert.True(t, summary.TotalValue.Equal(dec("50500")))
	assert.True(t, summary.TotalReturn.Equal(dec("4500")))
	assert.True(t, summary.ReturnPct.Equal(dec("9.78")), "pct %s", summary.ReturnPct)

	require.Len(t, summary.AssetAllocation, 2)
	assert.True(t, summary.AssetAllocation[domain.InvestmentTypeSIP].Equal(dec("16000")))
	assert.True(t, summary.AssetAllocation[domain.InvestmentTypeLumpsum].Equal(dec("30000")))
	_, ok := summary.AssetAllocation[domain.InvestmentTypeStock]
	assert.False(t, ok, "sold holdings must not appear in the allocation")
}

func TestProjections(t *testing.T) {
	svc, _ := newInvestmentService(nil)

	fv, err := svc.ProjectSIP(dec("5000"), dec("12"), 12)
	require.NoError(t, err)
	assert.True(t, fv.GreaterThan(dec("60000")))

	fv, err = svc.ProjectLumpsum(dec("10000"), dec("10"), 2)
	require.NoError(t, err)
	assert.True(t, fv.Equal(dec("12100")))

	_, err = svc.ProjectSIP(dec("0"), dec("12"), 12)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRiskProfileAndAllocation(t *testing.T) {
	svc, _ := newInvestmentService(nil)
	userID := uuid.New()

	profile, err := svc.SetRiskProfile(userID, SetRiskProfileInput{
		Tolerance:     domain.RiskAggressive,
		Experience:    "intermediate",
		HorizonYears:  10,
		MonthlyBudget: dec("8000"),
		EmergencyFund: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskAggressive, profile.Tolerance)
	assert.Equal(t, "intermediate", profile.Experience)
	assert.True(t, profile.EmergencyFund)

	loaded, err := svc.GetRiskProfile(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.HorizonYears)

	_, err = svc.SetRiskProfile(userID, SetRiskProfileInput{Tolerance: "reckless", HorizonYears: 5, MonthlyBudget: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrRiskProfileInvalid)

	_, err = svc.SetRiskProfile(userID, SetRiskProfileInput{Tolerance: "high", HorizonYears: 5, MonthlyBudget: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrRiskProfileInvalid)

	alloc, err := svc.SuggestAllocation(domain.RiskConservative)
	require.NoError(t, err)
	total := alloc.EquityPct.Add(alloc.DebtPct).Add(alloc.GoldPct)
	assert.True(t, total.Equal(dec("100")))
	assert.True(t, alloc.DebtPct.GreaterThan(alloc.EquityPct))

	alloc, err = svc.SuggestAllocation(domain.RiskAggressive)
	require.NoError(t, err)
	assert.True(t, alloc.EquityPct.GreaterThan(alloc.DebtPct))
}

func TestGetQuote(t *testing.T) {
	t.Run("live feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Global Quote":{"01. symbol":"INFY","05. price":"1520.50","10. change percent":"1.25%"}}`)
		}))
		defer server.Close()

		svc, _ := newInvestmentService(testMarketClient(server.URL))
		result, err := svc.GetQuote(context.Background(), "infy")
		require.NoError(t, err)
		assert.Equal(t, MarketSourceLive, result.Source)
		assert.Equal(t, "INFY", result.Quote.Symbol)
		assert.True(t, result.Quote.Price.Equal(dec("1520.50")))
		assert.True(t, result.Quote.ChangePct.Equal(dec("1.25")))
	})

	t.Run("degraded fallback on feed error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc, _ := newInvestmentService(testMarketClient(server.URL))
		result, err := svc.GetQuote(context.Background(), "INFY")
		require.NoError(t, err)
		assert.Equal(t, MarketSourceDegraded, result.Source)
		assert.True(t, result.Quote.Price.Equal(dec("100")))
	})

	t.Run("no client configured", func(t *testing.T) {
		svc, _ := newInvestmentService(nil)
		result, err := svc.GetQuote(context.Background(), "INFY")
		require.NoError(t, err)
		assert.Equal(t, MarketSourceDegraded, result.Source)
	})

	t.Run("blank symbol", func(t *testing.T) {
		svc, _ := newInvestmentService(nil)
		_, err := svc.GetQuote(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
