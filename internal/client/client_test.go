package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "ftp://appliance"})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://appliance:8000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://appliance:8000", c.BaseURL())
}

func TestFetchLatestSensors(t *testing.T) {
	var gotPath, gotRequestID, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		respond(`{"temperature": 22.4, "humidity": 48.0}`)(w, r)
	})

	snap, err := c.FetchLatestSensors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SensorSnapshot{Temperature: 22.4, Humidity: 48.0}, snap)
	assert.Equal(t, constants.PathLatestSensors, gotPath)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, constants.UserAgent, gotUA)
}

func TestFetchDailyRecord(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		respond(`{"temperature": 21.5, "humidity": 55.0, "sleep_rating": 0, "wake_time": 187000}`)(w, r)
	})

	rec, err := c.FetchDailyRecord(context.Background(), models.Date{Year: 2024, Month: 3, Day: 9})
	require.NoError(t, err)
	assert.Equal(t, "day=9&month=3&year=2024", query)
	assert.Equal(t, 21.5, rec.Temperature)
	assert.False(t, rec.IsRated(), "rating 0 means unrated")
	wake, ok := rec.WakeTime()
	assert.True(t, ok)
	assert.Equal(t, 187*time.Second, wake)
}

func TestFetchDailyRecordNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no data"}`, http.StatusNotFound)
	})

	rec, err := c.FetchDailyRecord(context.Background(), models.Date{Year: 2024, Month: 3, Day: 9})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcknowledgements(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		call    func(*Client) error
		wantErr error
	}{
		{
			name: "rating recorded",
			body: `{"message": "Sleep quality recorded successfully"}`,
			call: func(c *Client) error { return c.SubmitRating(context.Background(), 7) },
		},
		{
			name:    "rating with other message",
			body:    `{"message": "Sleep quality recorded"}`,
			call:    func(c *Client) error { return c.SubmitRating(context.Background(), 7) },
			wantErr: ErrUnexpectedAck,
		},
		{
			name: "alarm set",
			body: `{"message": "Alarm time set", "time": 82800}`,
			call: func(c *Client) error { return c.SetAlarm(context.Background(), 82800) },
		},
		{
			name:    "alarm set with empty message",
			body:    `{}`,
			call:    func(c *Client) error { return c.SetAlarm(context.Background(), 60) },
			wantErr: ErrUnexpectedAck,
		},
		{
			name: "alarm canceled",
			body: `{"message": "Alarm canceled"}`,
			call: func(c *Client) error { return c.CancelAlarm(context.Background()) },
		},
		{
			name:    "cancel is case sensitive",
			body:    `{"message": "alarm canceled"}`,
			call:    func(c *Client) error { return c.CancelAlarm(context.Background()) },
			wantErr: ErrUnexpectedAck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				respond(tt.body)(w, r)
			})
			err := tt.call(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSubmitRatingSendsValueUnchanged(t *testing.T) {
	var rating string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rating = r.URL.Query().Get("rating")
		respond(`{"message": "Sleep quality recorded successfully"}`)(w, r)
	})

	require.NoError(t, c.SubmitRating(context.Background(), 0))
	assert.Equal(t, "0", rating)
}

func TestSetAlarmRejectsNegativeOffset(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := c.SetAlarm(context.Background(), -5)
	assert.ErrorIs(t, err, ErrNegativeOffset)
	assert.False(t, called, "no request should be sent")
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Rating must be between 1 and 10", http.StatusBadRequest)
	})

	err := c.SubmitRating(context.Background(), 11)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "Rating must be between 1 and 10", se.Body)
}

func TestFailSafeDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	status, err := c.FetchAlarmStatus(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.AlarmStatus{}, status)

	canRate, err := c.FetchRatingEligibility(context.Background())
	assert.Error(t, err)
	assert.False(t, canRate)
}

func TestMalformedJSON(t *testing.T) {
	c := newTestClient(t, respond(`{"canRate": "yes"`))

	canRate, err := c.FetchRatingEligibility(context.Background())
	assert.Error(t, err)
	assert.False(t, canRate)
}

func TestFetchAlarmStatus(t *testing.T) {
	c := newTestClient(t, respond(`{"active": false, "triggered": true}`))

	status, err := c.FetchAlarmStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Triggered)
	assert.False(t, status.Active)
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchLatestSensors(context.Background())
	assert.Error(t, err)
}
