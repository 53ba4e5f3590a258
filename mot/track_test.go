package mot

import (
	"math"
	"testing"

	"github.com/LdDl/jugglefx/geom"
	"github.com/google/uuid"
)

func TestNewTrack(t *testing.T) {
	position := geom.NewPoint(0.3, 0.4)
	track := newTrack(position, 5, defaultKalmanParams())

	if track == nil {
		t.Fatal("newTrack returned nil")
	}
	if track.GetID() == uuid.Nil {
		t.Error("Track ID should not be nil")
	}
	if len(track.GetHistory()) != 1 {
		t.Errorf("Expected history length 1, got %d", len(track.GetHistory()))
	}
	if track.Latest() != position {
		t.Errorf("Expected latest %v, got %v", position, track.Latest())
	}
	if track.GetPredicted() != position || track.GetSmoothed() != position {
		t.Errorf("Expected predicted and smoothed %v, got %v and %v", position, track.GetPredicted(), track.GetSmoothed())
	}
	if track.Velocity() != (geom.Point{}) {
		t.Errorf("Expected zero velocity, got %v", track.Velocity())
	}
	if track.GetNoMatchTimes() != 0 {
		t.Errorf("Expected no match times 0, got %d", track.GetNoMatchTimes())
	}
	if track.GetMaxHistory() != 5 {
		t.Errorf("Expected max history 5, got %d", track.GetMaxHistory())
	}
}

func TestTrackUniqueIDs(t *testing.T) {
	first := newTrack(geom.NewPoint(0, 0), 5, defaultKalmanParams())
	second := newTrack(geom.NewPoint(0, 0), 5, defaultKalmanParams())
	if first.GetID() == second.GetID() {
		t.Errorf("Expected different IDs, got %s twice", first.GetID())
	}
}

func TestTrackUpdate(t *testing.T) {
	track := newTrack(geom.NewPoint(0.1, 0.1), 3, defaultKalmanParams())
	track.noMatchTimes = 2

	for i := 1; i <= 4; i++ {
		track.predictNextPosition()
		err := track.update(geom.NewPoint(0.1+0.05*float64(i), 0.1))
		if err != nil {
			t.Fatalf("Unexpected error on update %d: %v", i, err)
		}
	}

	if track.GetNoMatchTimes() != 0 {
		t.Errorf("Expected no match times reset to 0, got %d", track.GetNoMatchTimes())
	}
	history := track.GetHistory()
	if len(history) != 3 {
		t.Fatalf("Expected history length 3, got %d", len(history))
	}
	// Oldest observations are evicted first
	if math.Abs(history[0].X-0.2) > 1e-9 || math.Abs(history[2].X-0.3) > 1e-9 {
		t.Errorf("Expected history from 0.2 to 0.3, got %v", history)
	}
	velocity := track.Velocity()
	if math.Abs(velocity.X-0.05) > 1e-9 || math.Abs(velocity.Y) > 1e-9 {
		t.Errorf("Expected velocity (0.05, 0), got %v", velocity)
	}
	// Filter follows observations
	smoothed := track.GetSmoothed()
	if smoothed.X <= 0.1 || smoothed.X >= 0.35 {
		t.Errorf("Expected smoothed X within (0.1, 0.35), got %f", smoothed.X)
	}
}
