package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/weather"
)

// WeatherDataSource names where conditions came from: the live feed or the
// canned fallback.
type WeatherDataSource string

const (
	WeatherSourceLive     WeatherDataSource = "live"
	WeatherSourceDegraded WeatherDataSource = "degraded"
)

// HistoryDays is the length of the mock weather history window.
const HistoryDays = 7

// WeatherReport carries conditions, provenance, and clothing advice
type WeatherReport struct {
	Conditions  *weather.Conditions `json:"conditions"`
	Source      WeatherDataSource   `json:"source"`
	Suggestion  string              `json:"suggestion"`
	Accessories []string            `json:"accessories,omitempty"`
}

// WeatherDay is one day of (synthesized) historical conditions
type WeatherDay struct {
	Date       string  `json:"date"`
	TempC      float64 `json:"tempC"`
	Humidity   int     `json:"humidity"`
	RainfallMM float64 `json:"rainfallMm"`
	Condition  string  `json:"condition"`
}

// WeatherTrends summarizes a run of daily history
type WeatherTrends struct {
	AvgTempC        float64 `json:"avgTempC"`
	AvgHumidity     float64 `json:"avgHumidity"`
	TotalRainfallMM float64 `json:"totalRainfallMm"`
	TempTrend       string  `json:"tempTrend"`
	RainyDays       int     `json:"rainyDays"`
}

// WeatherService wraps the weather feed with a degraded-mode fallback,
// clothing advice, and a synthesized daily history.
type WeatherService struct {
	client      *weather.Client
	defaultCity string
	now         func() time.Time
}

// NewWeatherService creates a new WeatherService
func NewWeatherService(client *weather.Client, defaultCity string) *WeatherService {
	return &WeatherService{client: client, defaultCity: defaultCity, now: time.Now}
}

// SetClock overrides the service clock, for tests
func (s *WeatherService) SetClock(now func() time.Time) {
	s.now = now
}

// Current returns conditions for the city, or canned mild conditions when
// the feed is unconfigured or down.
func (s *WeatherService) Current(ctx context.Context, city string) (*WeatherReport, error) {
	if city == "" {
		city = s.defaultCity
	}

	if s.client != nil {
		cond, err := s.client.Current(ctx, city)
		if err == nil {
			return &WeatherReport{
				Conditions:  cond,
				Source:      WeatherSourceLive,
				Suggestion:  ClothingSuggestion(cond.TempC, cond.Description),
				Accessories: ClothingAccessories(cond.TempC, cond.Description),
			}, nil
		}
		log.Warn().Err(err).Str("city", city).Msg("weather feed unavailable, serving canned conditions")
	}

	cond := &weather.Conditions{
		City:        city,
		TempC:       24,
		FeelsLikeC:  24,
		Humidity:    60,
		Description: "clear sky",
	}
	return &WeatherReport{
		Conditions:  cond,
		Source:      WeatherSourceDegraded,
		Suggestion:  ClothingSuggestion(cond.TempC, cond.Description),
		Accessories: ClothingAccessories(cond.TempC, cond.Description),
	}, nil
}

// History returns a daily history for the past days, newest first. There is
// no free historical feed, so values are synthesized deterministically from
// each date; repeated calls for the same day agree.
func (s *WeatherService) History(city string, days int) []WeatherDay {
	if days <= 0 {
		days = HistoryDays
	}
	if city == "" {
		city = s.defaultCity
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	conditions := []string{"Clear", "Clouds", "Rain", "Thunderstorm"}

	history := make([]WeatherDay, 0, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, -i)
		rng := rand.New(rand.NewSource(day.Unix()))

		rainfall := 0.0
		if rng.Float64() > 0.7 {
			rainfall = float64(rng.Intn(51))
		}
		history = append(history, WeatherDay{
			Date:       domain.DateStamp(day),
			TempC:      float64(15 + rng.Intn(21)),
			Humidity:   40 + rng.Intn(51),
			RainfallMM: rainfall,
			Condition:  conditions[rng.Intn(len(conditions))],
		})
	}
	return history
}

// Trends aggregates a daily history into averages, rainfall totals, and a
// temperature direction. The history is newest first, so the trend compares
// the most recent day against the oldest.
func Trends(history []WeatherDay) *WeatherTrends {
	if len(history) == 0 {
		return nil
	}

	trends := &WeatherTrends{}
	tempSum, humiditySum := 0.0, 0.0
	for _, day := range history {
		tempSum += day.TempC
		humiditySum += float64(day.Humidity)
		trends.TotalRainfallMM += day.RainfallMM
		if day.RainfallMM > 0 {
			trends.RainyDays++
		}
	}
	n := float64(len(history))
	trends.AvgTempC = round1(tempSum / n)
	trends.AvgHumidity = round1(humiditySum / n)

	newest, oldest := history[0].TempC, history[len(history)-1].TempC
	switch {
	case newest > oldest:
		trends.TempTrend = "increasing"
	case newest < oldest:
		trends.TempTrend = "decreasing"
	default:
		trends.TempTrend = "stable"
	}
	return trends
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// ClothingSuggestion maps temperature and conditions to what to wear
func ClothingSuggestion(tempC float64, description string) string {
	var base string
	switch {
	case tempC >= 30:
		base = "It's hot. Light cotton clothes and stay hydrated."
	case tempC >= 20:
		base = "Pleasant weather. Regular casuals are fine."
	case tempC >= 10:
		base = "A bit chilly. Carry a light jacket or sweater."
	default:
		base = "It's cold. Wear warm layers and a heavy jacket."
	}

	condition := strings.ToLower(description)
	switch {
	case strings.Contains(condition, "rain") || strings.Contains(condition, "drizzle"):
		base += " It's raining, don't forget an umbrella."
	case strings.Contains(condition, "thunderstorm"):
		base += " Thunderstorms expected, stay indoors if possible and wear waterproof clothing."
	case strings.Contains(condition, "clear") && tempC > 25:
		base += " Apply sunscreen before heading out."
	}
	return base
}

// ClothingAccessories lists extra items worth carrying for the conditions
func ClothingAccessories(tempC float64, description string) []string {
	condition := strings.ToLower(description)
	switch {
	case strings.Contains(condition, "rain") || strings.Contains(condition, "drizzle"):
		return []string{"Umbrella"}
	case strings.Contains(condition, "thunderstorm"):
		return []string{"Raincoat"}
	case strings.Contains(condition, "clear") && tempC > 25:
		return []string{"Sunscreen"}
	}
	return nil
}
