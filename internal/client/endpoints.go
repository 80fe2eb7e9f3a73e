package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
)

type messageResponse struct {
	Message string `json:"message"`
	Time    *int   `json:"time,omitempty"`
}

type ratingStatusResponse struct {
	CanRate bool `json:"canRate"`
}

// FetchLatestSensors returns the most recent temperature and humidity.
func (c *Client) FetchLatestSensors(ctx context.Context) (models.SensorSnapshot, error) {
	var snap models.SensorSnapshot
	if err := c.do(ctx, "FetchLatestSensors", http.MethodGet, constants.PathLatestSensors, nil, &snap); err != nil {
		return models.SensorSnapshot{}, err
	}
	return snap, nil
}

// FetchDailyRecord returns the aggregated record for one calendar day.
// ErrNotFound means the gateway has nothing for that day.
func (c *Client) FetchDailyRecord(ctx context.Context, day models.Date) (*models.DailyRecord, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(day.Year))
	q.Set("month", strconv.Itoa(day.Month))
	q.Set("day", strconv.Itoa(day.Day))

	var rec models.DailyRecord
	if err := c.do(ctx, "FetchDailyRecord", http.MethodGet, constants.PathDaily, q, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SubmitRating records today's sleep quality. The rating is sent as given.
func (c *Client) SubmitRating(ctx context.Context, rating int) error {
	q := url.Values{}
	q.Set("rating", strconv.Itoa(rating))

	var resp messageResponse
	if err := c.do(ctx, "SubmitRating", http.MethodPost, constants.PathSleepQuality, q, &resp); err != nil {
		return err
	}
	return expectAck("SubmitRating", resp.Message, constants.AckRatingRecorded)
}

// SetAlarm schedules the alarm offsetSeconds from now.
func (c *Client) SetAlarm(ctx context.Context, offsetSeconds int) error {
	if offsetSeconds < 0 {
		return ErrNegativeOffset
	}
	q := url.Values{}
	q.Set("time", strconv.Itoa(offsetSeconds))

	var resp messageResponse
	if err := c.do(ctx, "SetAlarm", http.MethodPost, constants.PathSetAlarm, q, &resp); err != nil {
		return err
	}
	return expectAck("SetAlarm", resp.Message, constants.AckAlarmSet)
}

// CancelAlarm cancels the scheduled alarm.
func (c *Client) CancelAlarm(ctx context.Context) error {
	var resp messageResponse
	if err := c.do(ctx, "CancelAlarm", http.MethodPost, constants.PathCancelAlarm, nil, &resp); err != nil {
		return err
	}
	return expectAck("CancelAlarm", resp.Message, constants.AckAlarmCanceled)
}

// FetchAlarmStatus reports whether the alarm is active or has fired.
// On error the zero status is returned alongside it.
func (c *Client) FetchAlarmStatus(ctx context.Context) (models.AlarmStatus, error) {
	var status models.AlarmStatus
	if err := c.do(ctx, "FetchAlarmStatus", http.MethodGet, constants.PathAlarmStatus, nil, &status); err != nil {
		return models.AlarmStatus{}, err
	}
	return status, nil
}

// FetchRatingEligibility reports whether the gateway accepts a rating now.
// On error it returns false alongside the error.
func (c *Client) FetchRatingEligibility(ctx context.Context) (bool, error) {
	var resp ratingStatusResponse
	if err := c.do(ctx, "FetchRatingEligibility", http.MethodGet, constants.PathRatingStatus, nil, &resp); err != nil {
		return false, err
	}
	return resp.CanRate, nil
}
