package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"indiflow-dashboard-api/models"
)

type memWriter struct {
	items []models.TrainingSubmission
	err   error
}

func (m *memWriter) Insert(_ context.Context, items []models.TrainingSubmission) error {
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, items...)
	return nil
}

func TestPayloadSubmission(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		payload Payload
		wantErr bool
		check   func(t *testing.T, s models.TrainingSubmission)
	}{
		{
			name: "full payload",
			payload: Payload{UserID: "u-1", RouteName: "Ring Rd", PredictedTimeMinutes: 10, ActualTimeMinutes: 12,
				TrafficLevel: "HIGH", TransportMode: "transit", SubmittedAt: "2025-06-14T08:00:00Z"},
			check: func(t *testing.T, s models.TrainingSubmission) {
				if s.TrafficLevel != models.TrafficHigh || s.TransportMode != models.TransportTransit {
					t.Errorf("levels = %q/%q", s.TrafficLevel, s.TransportMode)
				}
				if !s.SubmittedAt.Equal(time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)) {
					t.Errorf("SubmittedAt = %v", s.SubmittedAt)
				}
			},
		},
		{
			name:    "defaults",
			payload: Payload{UserID: "u-1", RouteName: "R", TrafficLevel: "gridlock", SubmittedAt: "yesterday"},
			check: func(t *testing.T, s models.TrainingSubmission) {
				if s.TrafficLevel != models.TrafficModerate || s.TransportMode != models.TransportDriving {
					t.Errorf("levels = %q/%q", s.TrafficLevel, s.TransportMode)
				}
				if !s.SubmittedAt.Equal(now) {
					t.Errorf("SubmittedAt = %v, want now", s.SubmittedAt)
				}
			},
		},
		{name: "missing user", payload: Payload{RouteName: "R"}, wantErr: true},
		{name: "blank route", payload: Payload{UserID: "u", RouteName: "  "}, wantErr: true},
		{name: "negative time", payload: Payload{UserID: "u", RouteName: "R", ActualTimeMinutes: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.payload.Submission(now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("err = %v, want ErrInvalidPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestProcess(t *testing.T) {
	w := &memWriter{}
	c := New(w, nil)
	ctx := context.Background()

	if err := c.Process(ctx, []byte(`{"user_id":"u-9","route_name":"MG Rd","predicted_time_minutes":7,"actual_time_minutes":9}`)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(w.items) != 1 || w.items[0].UserID != "u-9" {
		t.Fatalf("stored = %+v", w.items)
	}

	if err := c.Process(ctx, []byte(`{not json}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("invalid json err = %v", err)
	}
	if err := c.Process(ctx, []byte(`{"route_name":"x"}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("missing user err = %v", err)
	}
	if len(w.items) != 1 {
		t.Errorf("rejected messages were stored: %d items", len(w.items))
	}

	boom := errors.New("db down")
	w.err = boom
	if err := c.Process(ctx, []byte(`{"user_id":"u","route_name":"r"}`)); !errors.Is(err, boom) {
		t.Errorf("store failure err = %v, want wrapped db error", err)
	}
}
