package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/config"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/weather"
)

func testWeatherClient(baseURL string) *weather.Client {
	return weather.NewClient(config.WeatherConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func TestWeatherCurrent(t *testing.T) {
	t.Run("live feed with suggestion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Chennai", r.URL.Query().Get("q"))
			fmt.Fprint(w, `{"name":"Chennai","main":{"temp":34.5,"feels_like":39.1,"humidity":78},"weather":[{"description":"haze"}]}`)
		}))
		defer server.Close()

		svc := NewWeatherService(testWeatherClient(server.URL), "Chennai")
		report, err := svc.Current(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, WeatherSourceLive, report.Source)
		assert.Equal(t, "Chennai", report.Conditions.City)
		assert.Equal(t, 34.5, report.Conditions.TempC)
		assert.Equal(t, "haze", report.Conditions.Description)
		assert.Equal(t, ClothingSuggestion(34.5, "haze"), report.Suggestion)
	})

	t.Run("rainy feed adds umbrella advice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"name":"Chennai","main":{"temp":26.0,"feels_like":28.0,"humidity":90},"weather":[{"description":"light rain"}]}`)
		}))
		defer server.Close()

		svc := NewWeatherService(testWeatherClient(server.URL), "Chennai")
		report, err := svc.Current(context.Background(), "")
		require.NoError(t, err)
		assert.Contains(t, report.Suggestion, "umbrella")
		assert.Equal(t, []string{"Umbrella"}, report.Accessories)
	})

	t.Run("degraded fallback on feed error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc := NewWeatherService(testWeatherClient(server.URL), "Chennai")
		report, err := svc.Current(context.Background(), "Mumbai")
		require.NoError(t, err)
		assert.Equal(t, WeatherSourceDegraded, report.Source)
		assert.Equal(t, "Mumbai", report.Conditions.City)
		assert.Equal(t, 24.0, report.Conditions.TempC)
	})

	t.Run("no client configured", func(t *testing.T) {
		svc := NewWeatherService(nil, "Chennai")
		report, err := svc.Current(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, WeatherSourceDegraded, report.Source)
		assert.Equal(t, "Chennai", report.Conditions.City)
	})
}

func TestClothingSuggestion(t *testing.T) {
	t.Run("temperature bands", func(t *testing.T) {
		tests := []struct {
			tempC float64
			want  string
		}{
			{35, "It's hot. Light cotton clothes and stay hydrated."},
			{30, "It's hot. Light cotton clothes and stay hydrated."},
			{25, "Pleasant weather. Regular casuals are fine."},
			{20, "Pleasant weather. Regular casuals are fine."},
			{15, "A bit chilly. Carry a light jacket or sweater."},
			{10, "A bit chilly. Carry a light jacket or sweater."},
			{5, "It's cold. Wear warm layers and a heavy jacket."},
			{-2, "It's cold. Wear warm layers and a heavy jacket."},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, ClothingSuggestion(tt.tempC, "haze"), "temp %.1f", tt.tempC)
		}
	})

	t.Run("condition additions", func(t *testing.T) {
		tests := []struct {
			name      string
			tempC     float64
			condition string
			wantPart  string
		}{
			{"rain", 22, "light rain", "umbrella"},
			{"drizzle", 18, "drizzle", "umbrella"},
			{"thunderstorm", 24, "thunderstorm", "stay indoors"},
			{"hot and clear", 32, "clear sky", "sunscreen"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Contains(t, ClothingSuggestion(tt.tempC, tt.condition), tt.wantPart)
			})
		}
	})

	t.Run("mild clear day gets no addition", func(t *testing.T) {
		got := ClothingSuggestion(22, "clear sky")
		assert.Equal(t, "Pleasant weather. Regular casuals are fine.", got)
	})
}

func TestClothingAccessories(t *testing.T) {
	assert.Equal(t, []string{"Umbrella"}, ClothingAccessories(20, "moderate rain"))
	assert.Equal(t, []string{"Raincoat"}, ClothingAccessories(20, "thunderstorm"))
	assert.Equal(t, []string{"Sunscreen"}, ClothingAccessories(31, "clear sky"))
	assert.Nil(t, ClothingAccessories(20, "clear sky"))
	assert.Nil(t, ClothingAccessories(20, "haze"))
}

func TestWeatherHistory(t *testing.T) {
	svc := NewWeatherService(nil, "Chennai")
	svc.SetClock(fixedClock(2026, time.August, 29))

	history := svc.History("", HistoryDays)
	require.Len(t, history, HistoryDays)

	assert.Equal(t, "2026-08-29", history[0].Date)
	assert.Equal(t, "2026-08-23", history[len(history)-1].Date)

	for _, day := range history {
		assert.GreaterOrEqual(t, day.TempC, 15.0, "day %s", day.Date)
		assert.LessOrEqual(t, day.TempC, 35.0, "day %s", day.Date)
		assert.GreaterOrEqual(t, day.Humidity, 40, "day %s", day.Date)
		assert.LessOrEqual(t, day.Humidity, 90, "day %s", day.Date)
		assert.GreaterOrEqual(t, day.RainfallMM, 0.0, "day %s", day.Date)
		assert.Contains(t, []string{"Clear", "Clouds", "Rain", "Thunderstorm"}, day.Condition)
	}

	// same clock, same history
	again := svc.History("", HistoryDays)
	assert.Equal(t, history, again)
}

func TestWeatherTrends(t *testing.T) {
	t.Run("aggregates fixed history", func(t *testing.T) {
		history := []WeatherDay{
			{Date: "2026-08-29", TempC: 30, Humidity: 80, RainfallMM: 12},
			{Date: "2026-08-28", TempC: 28, Humidity: 70, RainfallMM: 0},
			{Date: "2026-08-27", TempC: 26, Humidity: 60, RainfallMM: 5},
		}
		trends := Trends(history)
		require.NotNil(t, trends)
		assert.Equal(t, 28.0, trends.AvgTempC)
		assert.Equal(t, 70.0, trends.AvgHumidity)
		assert.Equal(t, 17.0, trends.TotalRainfallMM)
		assert.Equal(t, "increasing", trends.TempTrend)
		assert.Equal(t, 2, trends.RainyDays)
	})

	t.Run("trend directions", func(t *testing.T) {
		cooling := []WeatherDay{{TempC: 20}, {TempC: 25}}
		assert.Equal(t, "decreasing", Trends(cooling).TempTrend)

		steady := []WeatherDay{{TempC: 22}, {TempC: 22}}
		assert.Equal(t, "stable", Trends(steady).TempTrend)
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Nil(t, Trends(nil))
	})
}
