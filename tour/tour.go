// Package tour holds the tour and tour-log records the report engine
// consumes, together with the aggregates shown in reports.
package tour

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Tour is a planned route with its recorded logs. Optional numeric fields
// are nil when unknown. An empty ImagePath means the tour has no image.
type Tour struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	ImagePath        string    `json:"imagePath,omitempty"`
	RouteInformation string    `json:"routeInformation,omitempty"`
	Distance         *float64  `json:"distance,omitempty"`
	EstimatedTime    *float64  `json:"estimatedTime,omitempty"`
	TransportType    string    `json:"transportType"`
	Logs             []Log     `json:"tourLogs"`
}

// Log is a single recorded run of a tour.
type Log struct {
	ID            uuid.UUID `json:"id"`
	TourID        uuid.UUID `json:"tourId"`
	DateTime      time.Time `json:"dateTime"`
	Comment       *string   `json:"comment,omitempty"`
	Difficulty    *float64  `json:"difficulty,omitempty"`
	TotalDistance *float64  `json:"totalDistance,omitempty"`
	TotalTime     *float64  `json:"totalTime,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
}

// Popularity classifies a tour by how many logs it has.
func (t *Tour) Popularity() string {
	switch n := len(t.Logs); {
	case n == 0:
		return "Not popular"
	case n < 2:
		return "Less popular"
	case n < 3:
		return "Moderately popular"
	case n < 4:
		return "Popular"
	default:
		return "Very popular"
	}
}

// AverageRating averages the logs that carry a rating; 0 when none do.
func (t *Tour) AverageRating() float64 {
	return mean(lo.FilterMap(t.Logs, func(l Log, _ int) (float64, bool) {
		return deref(l.Rating)
	}))
}

// IsChildFriendly reports whether the tour has logs and every one of them is
// easy (difficulty <= 2) and well rated (rating >= 3).
func (t *Tour) IsChildFriendly() bool {
	return len(t.Logs) > 0 && lo.EveryBy(t.Logs, func(l Log) bool {
		return l.Difficulty != nil && *l.Difficulty <= 2 && l.Rating != nil && *l.Rating >= 3
	})
}

// AverageLogDistance averages the logged distances. ok is false when no
// log records a distance.
func (t *Tour) AverageLogDistance() (avg float64, ok bool) {
	vals := lo.FilterMap(t.Logs, func(l Log, _ int) (float64, bool) { return deref(l.TotalDistance) })
	return mean(vals), len(vals) > 0
}

// AverageLogTime averages the logged durations. ok is false when no log
// records a time.
func (t *Tour) AverageLogTime() (avg float64, ok bool) {
	vals := lo.FilterMap(t.Logs, func(l Log, _ int) (float64, bool) { return deref(l.TotalTime) })
	return mean(vals), len(vals) > 0
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return lo.Sum(vals) / float64(len(vals))
}

// Decode reads a JSON document holding either a single tour or an array of
// tours, using the camelCase field names of the tour planner export format.
func Decode(r io.Reader) ([]*Tour, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	var list []*Tour
	if err := json.Unmarshal(raw, &list); err == nil {
		return lo.Compact(list), nil
	}
	var single Tour
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode tour: %w", err)
	}
	return []*Tour{&single}, nil
}

// Encode writes t as indented JSON.
func Encode(w io.Writer, t *Tour) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode tour: %w", err)
	}
	return nil
}
