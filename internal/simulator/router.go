package simulator

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/models"
	"github.com/julianstephens/sleepwatch/internal/simulator/middleware"
)

type dailyResponse struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	SleepRating int     `json:"sleep_rating"`
	WakeTime    *int64  `json:"wake_time,omitempty"`
}

// Handler returns the gateway's HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Tracing)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get(constants.PathLatestSensors, s.handleLatest)
	r.Get(constants.PathDaily, s.handleDaily)
	r.Post(constants.PathSleepQuality, s.handleSleepQuality)
	r.Post(constants.PathSetAlarm, s.handleSetAlarm)
	r.Post(constants.PathCancelAlarm, s.handleCancelAlarm)
	r.Get(constants.PathRatingStatus, s.handleRatingStatus)
	r.Get(constants.PathAlarmStatus, s.handleAlarmStatus)

	// Test hook: ring the pending alarm immediately.
	r.Post("/sim/alarm/fire", func(w http.ResponseWriter, r *http.Request) {
		s.Fire()
		writeJSON(w, http.StatusOK, s.AlarmStatus())
	})

	return r
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Latest())
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	var day models.Date
	var err error
	if day.Year, err = queryInt(r, "year"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if day.Month, err = queryInt(r, "month"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if day.Day, err = queryInt(r, "day"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if day.Month < 1 || day.Month > 12 {
		writeError(w, http.StatusBadRequest, "Month must be between 1 and 12")
		return
	}

	rec, ok := s.Daily(day)
	if !ok {
		writeError(w, http.StatusNotFound, "No data for "+day.String())
		return
	}
	writeJSON(w, http.StatusOK, dailyResponse{
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		SleepRating: rec.Rating(),
		WakeTime:    rec.WakeTimeMillis,
	})
}

func (s *Server) handleSleepQuality(w http.ResponseWriter, r *http.Request) {
	rating, err := queryInt(r, "rating")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if rating < 1 || rating > constants.RatingMax {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 10")
		return
	}
	s.Rate(rating)
	writeJSON(w, http.StatusOK, map[string]string{"message": constants.AckRatingRecorded})
}

func (s *Server) handleSetAlarm(w http.ResponseWriter, r *http.Request) {
	secs, err := queryInt(r, "time")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if secs < 0 {
		writeError(w, http.StatusBadRequest, "time must not be negative")
		return
	}
	s.SetAlarm(time.Duration(secs) * time.Second)
	writeJSON(w, http.StatusOK, map[string]any{"message": constants.AckAlarmSet, "time": secs})
}

func (s *Server) handleCancelAlarm(w http.ResponseWriter, r *http.Request) {
	s.CancelAlarm()
	writeJSON(w, http.StatusOK, map[string]string{"message": constants.AckAlarmCanceled})
}

func (s *Server) handleRatingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"canRate": s.CanRate()})
}

func (s *Server) handleAlarmStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.AlarmStatus())
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &queryError{name: name, msg: "field required"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &queryError{name: name, msg: "value is not a valid integer"}
	}
	return v, nil
}

type queryError struct {
	name string
	msg  string
}

func (e *queryError) Error() string {
	return e.name + ": " + e.msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
