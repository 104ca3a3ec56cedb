package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

// fetchPlatformJSON issues an authenticated GET against a platform API and
// decodes the JSON body into out.
func fetchPlatformJSON(ctx context.Context, httpClient *http.Client, endpoint, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type StravaClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewStravaClient() *StravaClient {
	return &StravaClient{
		baseURL:    "https://www.strava.com/api/v3",
		httpClient: http.DefaultClient,
	}
}

func (c *StravaClient) Platform() string { return models.PlatformStrava }

type stravaActivity struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	StartDate        time.Time `json:"start_date"`
	MovingTime       int       `json:"moving_time"`
	Distance         float64   `json:"distance"`
	Calories         float64   `json:"calories"`
	AverageHeartrate float64   `json:"average_heartrate"`
}

func (c *StravaClient) FetchActivities(ctx context.Context, account *models.IntegrationAccount, since time.Time) ([]models.Activity, error) {
	endpoint := fmt.Sprintf("%s/athlete/activities?after=%d&per_page=100",
		c.baseURL, since.Unix())

	var fetched []stravaActivity
	if err := fetchPlatformJSON(ctx, c.httpClient, endpoint, account.AccessToken, &fetched); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(fetched))
	for _, item := range fetched {
		externalID := strconv.FormatInt(item.ID, 10)
		activity := models.Activity{
			Type:            normalizeActivityType(item.Type),
			StartedAt:       item.StartDate,
			DurationMinutes: item.MovingTime / 60,
			ExternalID:      &externalID,
		}
		if item.Name != "" {
			title := item.Name
			activity.Title = &title
		}
		if item.Distance > 0 {
			km := item.Distance / 1000
			activity.DistanceKM = &km
		}
		if item.Calories > 0 {
			calories := int(item.Calories)
			activity.Calories = &calories
		}
		if item.AverageHeartrate > 0 {
			hr := int(item.AverageHeartrate)
			activity.AvgHeartRate = &hr
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

type GarminClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGarminClient() *GarminClient {
	return &GarminClient{
		baseURL:    "https://apis.garmin.com/wellness-api/rest",
		httpClient: http.DefaultClient,
	}
}

func (c *GarminClient) Platform() string { return models.PlatformGarmin }

type garminActivity struct {
	SummaryID             string  `json:"summaryId"`
	ActivityType          string  `json:"activityType"`
	StartTimeInSeconds    int64   `json:"startTimeInSeconds"`
	DurationInSeconds     int     `json:"durationInSeconds"`
	DistanceInMeters      float64 `json:"distanceInMeters"`
	ActiveKilocalories    int     `json:"activeKilocalories"`
	AverageHeartRateInBPM int     `json:"averageHeartRateInBeatsPerMinute"`
}

func (c *GarminClient) FetchActivities(ctx context.Context, account *models.IntegrationAccount, since time.Time) ([]models.Activity, error) {
	endpoint := fmt.Sprintf("%s/activities?uploadStartTimeInSeconds=%d&uploadEndTimeInSeconds=%d",
		c.baseURL, since.Unix(), time.Now().Unix())

	var fetched []garminActivity
	if err := fetchPlatformJSON(ctx, c.httpClient, endpoint, account.AccessToken, &fetched); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(fetched))
	for _, item := range fetched {
		if item.SummaryID == "" {
			continue
		}
		externalID := item.SummaryID
		activity := models.Activity{
			Type:            normalizeActivityType(item.ActivityType),
			StartedAt:       time.Unix(item.StartTimeInSeconds, 0).UTC(),
			DurationMinutes: item.DurationInSeconds / 60,
			ExternalID:      &externalID,
		}
		if item.DistanceInMeters > 0 {
			km := item.DistanceInMeters / 1000
			activity.DistanceKM = &km
		}
		if item.ActiveKilocalories > 0 {
			calories := item.ActiveKilocalories
			activity.Calories = &calories
		}
		if item.AverageHeartRateInBPM > 0 {
			hr := item.AverageHeartRateInBPM
			activity.AvgHeartRate = &hr
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

type PolarClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPolarClient() *PolarClient {
	return &PolarClient{
		baseURL:    "https://www.polaraccesslink.com/v3",
		httpClient: http.DefaultClient,
	}
}

func (c *PolarClient) Platform() string { return models.PlatformPolar }

type polarExercise struct {
	ID        string    `json:"id"`
	Sport     string    `json:"sport"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	Distance  float64   `json:"distance"`
	Calories  int       `json:"calories"`
	HeartRate struct {
		Average int `json:"average"`
	} `json:"heart_rate"`
}

func (c *PolarClient) FetchActivities(ctx context.Context, account *models.IntegrationAccount, since time.Time) ([]models.Activity, error) {
	endpoint := c.baseURL + "/exercises"

	var fetched []polarExercise
	if err := fetchPlatformJSON(ctx, c.httpClient, endpoint, account.AccessToken, &fetched); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(fetched))
	for _, item := range fetched {
		if item.ID == "" || item.StartTime.Before(since) {
			continue
		}
		externalID := item.ID
		activity := models.Activity{
			Type:            normalizeActivityType(item.Sport),
			StartedAt:       item.StartTime,
			DurationMinutes: int(parseISODuration(item.Duration).Minutes()),
			ExternalID:      &externalID,
		}
		if item.Distance > 0 {
			km := item.Distance / 1000
			activity.DistanceKM = &km
		}
		if item.Calories > 0 {
			calories := item.Calories
			activity.Calories = &calories
		}
		if item.HeartRate.Average > 0 {
			hr := item.HeartRate.Average
			activity.AvgHeartRate = &hr
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

// parseISODuration handles the PT#H#M#S durations Polar reports. Anything
// unparseable comes back as zero.
func parseISODuration(value string) time.Duration {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "PT")
	if value == "" {
		return 0
	}

	var total time.Duration
	number := ""
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			number += string(r)
		case r == 'H' || r == 'M' || r == 'S':
			parsed, err := strconv.ParseFloat(number, 64)
			if err != nil {
				return 0
			}
			switch r {
			case 'H':
				total += time.Duration(parsed * float64(time.Hour))
			case 'M':
				total += time.Duration(parsed * float64(time.Minute))
			case 'S':
				total += time.Duration(parsed * float64(time.Second))
			}
			number = ""
		default:
			return 0
		}
	}
	return total
}

// normalizeActivityType maps platform sport names onto the app's activity
// types.
func normalizeActivityType(platformType string) string {
	switch strings.ToLower(strings.TrimSpace(platformType)) {
	case "run", "running", "trailrun", "trail_running", "virtualrun", "treadmill_running":
		return "running"
	case "ride", "cycling", "virtualride", "biking", "indoor_cycling":
		return "cycling"
	case "swim", "swimming", "open_water_swimming", "lap_swimming":
		return "swimming"
	case "walk", "walking", "hike", "hiking":
		return "walking"
	case "weighttraining", "strength_training", "workout", "functional_strength_training":
		return "strength"
	case "yoga":
		return "yoga"
	default:
		return "other"
	}
}
