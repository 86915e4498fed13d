package tour

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

func TestTour_Popularity(t *testing.T) {
	cases := []struct {
		logs int
		want string
	}{
		{0, "Not popular"},
		{1, "Less popular"},
		{2, "Moderately popular"},
		{3, "Popular"},
		{4, "Very popular"},
		{10, "Very popular"},
	}
	for _, tc := range cases {
		tr := &Tour{Logs: make([]Log, tc.logs)}
		if got := tr.Popularity(); got != tc.want {
			t.Errorf("Popularity(%d logs) = %q, want %q", tc.logs, got, tc.want)
		}
	}
}

func TestTour_AverageRating(t *testing.T) {
	cases := []struct {
		name    string
		ratings []*float64
		want    float64
	}{
		{"three", []*float64{lo.ToPtr(3.0), lo.ToPtr(4.0), lo.ToPtr(5.0)}, 4},
		{"two", []*float64{lo.ToPtr(2.0), lo.ToPtr(4.0)}, 3},
		{"mixed nil", []*float64{lo.ToPtr(2.0), nil, lo.ToPtr(4.0), nil}, 3},
		{"only nil", []*float64{nil, nil}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		tr := &Tour{}
		for _, r := range tc.ratings {
			tr.Logs = append(tr.Logs, Log{Rating: r})
		}
		if got := tr.AverageRating(); got != tc.want {
			t.Errorf("%s: AverageRating = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTour_IsChildFriendly(t *testing.T) {
	log := func(d float64, r *float64) Log { return Log{Difficulty: &d, Rating: r} }
	cases := []struct {
		name string
		logs []Log
		want bool
	}{
		{"all good", []Log{log(1, lo.ToPtr(3.0)), log(2, lo.ToPtr(4.0)), log(1, lo.ToPtr(5.0))}, true},
		{"high difficulty", []Log{log(1, lo.ToPtr(4.0)), log(3, lo.ToPtr(5.0))}, false},
		{"low rating", []Log{log(1, lo.ToPtr(2.0)), log(2, lo.ToPtr(4.0))}, false},
		{"nil rating", []Log{log(1, nil)}, false},
		{"no logs", nil, false},
	}
	for _, tc := range cases {
		tr := &Tour{Logs: tc.logs}
		if got := tr.IsChildFriendly(); got != tc.want {
			t.Errorf("%s: IsChildFriendly = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTour_AverageLogDistanceAndTime(t *testing.T) {
	tr := &Tour{Logs: []Log{
		{TotalDistance: lo.ToPtr(10.0), TotalTime: lo.ToPtr(60.0)},
		{TotalDistance: lo.ToPtr(20.0)},
		{},
	}}
	if avg, ok := tr.AverageLogDistance(); !ok || avg != 15 {
		t.Fatalf("AverageLogDistance = %v, %v", avg, ok)
	}
	if avg, ok := tr.AverageLogTime(); !ok || avg != 60 {
		t.Fatalf("AverageLogTime = %v, %v", avg, ok)
	}
	if _, ok := (&Tour{}).AverageLogTime(); ok {
		t.Fatalf("expected no average for a tour without logs")
	}
}

func TestDecode_ArrayAndSingle(t *testing.T) {
	const doc = `[{"id":"11111111-1111-1111-1111-111111111111","name":"Sample Tour","from":"City1","to":"City2",
		"distance":100.5,"estimatedTime":60,"transportType":"Car","imagePath":"/images/sample.png",
		"tourLogs":[{"dateTime":"2024-01-01T12:00:00Z","comment":"ok","difficulty":3,"rating":4}]}]`
	tours, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(tours) != 1 {
		t.Fatalf("expected one tour, got %d", len(tours))
	}
	got := tours[0]
	if got.ID != uuid.MustParse("11111111-1111-1111-1111-111111111111") || got.Name != "Sample Tour" {
		t.Fatalf("unexpected tour: %+v", got)
	}
	if got.Distance == nil || *got.Distance != 100.5 {
		t.Fatalf("distance not decoded: %v", got.Distance)
	}
	if len(got.Logs) != 1 || got.Logs[0].Comment == nil || *got.Logs[0].Comment != "ok" {
		t.Fatalf("logs not decoded: %+v", got.Logs)
	}
	if got.Logs[0].TotalDistance != nil {
		t.Fatalf("missing totalDistance should stay nil")
	}

	single, err := Decode(strings.NewReader(`{"name":"Solo","transportType":"Bike"}`))
	if err != nil || len(single) != 1 || single[0].Name != "Solo" {
		t.Fatalf("single decode failed: %v %+v", err, single)
	}

	if _, err := Decode(strings.NewReader(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	in := &Tour{ID: uuid.New(), Name: "Áéíóú ñ", Distance: lo.ToPtr(10.123456789), Logs: []Log{}}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"distance": 10.123456789`) {
		t.Fatalf("unexpected encoding: %s", buf.String())
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out[0].ID != in.ID || out[0].Name != in.Name || *out[0].Distance != *in.Distance {
		t.Fatalf("round trip mismatch: %+v", out[0])
	}
}
