package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"PT1H30M", 90 * time.Minute},
		{"PT45M", 45 * time.Minute},
		{"PT30S", 30 * time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"PT2700.5S", 2700*time.Second + 500*time.Millisecond},
		{"", 0},
		{"garbage", 0},
		{"PT5X", 0},
	}

	for _, tc := range cases {
		if got := parseISODuration(tc.in); got != tc.want {
			t.Errorf("parseISODuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeActivityType(t *testing.T) {
	cases := map[string]string{
		"Run":                 "running",
		"trail_running":       "running",
		"VirtualRide":         "cycling",
		"open_water_swimming": "swimming",
		"Hike":                "walking",
		"WeightTraining":      "strength",
		"YOGA":                "yoga",
		"curling":             "other",
	}

	for in, want := range cases {
		if got := normalizeActivityType(in); got != want {
			t.Errorf("normalizeActivityType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStravaClientFetchActivities(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/athlete/activities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("after") == "" {
			t.Errorf("expected after query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 987, "name": "Morning Run", "type": "Run", "start_date": "2026-08-20T06:30:00Z",
			 "moving_time": 1800, "distance": 5000, "average_heartrate": 152.4}
		]`))
	}))
	defer server.Close()

	client := &StravaClient{baseURL: server.URL, httpClient: server.Client()}
	account := &models.IntegrationAccount{AccessToken: "strava-token"}

	activities, err := client.FetchActivities(context.Background(), account, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchActivities: %v", err)
	}

	if gotAuth != "Bearer strava-token" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}

	activity := activities[0]
	if activity.Type != "running" {
		t.Errorf("expected type running, got %s", activity.Type)
	}
	if activity.DurationMinutes != 30 {
		t.Errorf("expected 30 minutes, got %d", activity.DurationMinutes)
	}
	if activity.DistanceKM == nil || *activity.DistanceKM != 5 {
		t.Errorf("expected 5 km, got %v", activity.DistanceKM)
	}
	if activity.ExternalID == nil || *activity.ExternalID != "987" {
		t.Errorf("expected external id 987, got %v", activity.ExternalID)
	}
	if activity.AvgHeartRate == nil || *activity.AvgHeartRate != 152 {
		t.Errorf("expected avg heart rate 152, got %v", activity.AvgHeartRate)
	}
}

func TestPolarClientSkipsOldExercises(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "old", "sport": "RUNNING", "start_time": "2026-08-01T07:00:00Z", "duration": "PT30M"},
			{"id": "new", "sport": "RUNNING", "start_time": "2026-08-22T07:00:00Z", "duration": "PT45M"}
		]`))
	}))
	defer server.Close()

	client := &PolarClient{baseURL: server.URL, httpClient: server.Client()}
	since := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	activities, err := client.FetchActivities(context.Background(), &models.IntegrationAccount{AccessToken: "t"}, since)
	if err != nil {
		t.Fatalf("FetchActivities: %v", err)
	}

	if len(activities) != 1 {
		t.Fatalf("expected 1 activity after the since cutoff, got %d", len(activities))
	}
	if *activities[0].ExternalID != "new" {
		t.Fatalf("expected exercise new, got %s", *activities[0].ExternalID)
	}
	if activities[0].DurationMinutes != 45 {
		t.Fatalf("expected 45 minutes, got %d", activities[0].DurationMinutes)
	}
}

func TestFetchPlatformJSONSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer server.Close()

	client := &GarminClient{baseURL: server.URL, httpClient: server.Client()}
	_, err := client.FetchActivities(context.Background(), &models.IntegrationAccount{AccessToken: "bad"}, time.Now())
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
}
