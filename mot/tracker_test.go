package mot

import (
	"math"
	"testing"

	"github.com/LdDl/jugglefx/geom"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

func TestTrackerContinuity(t *testing.T) {
	tracker := NewTracker(HungarianSolver{MaxDistance: 0.1})

	frame1 := []geom.Point{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.8}}
	tracks1, err := tracker.Track(frame1)
	if err != nil {
		t.Fatalf("Frame 1 failed: %v", err)
	}
	if tracker.Len() != 2 {
		t.Errorf("Expected 2 tracks after frame 1, got %d", tracker.Len())
	}

	// Same objects, slightly moved and reported in swapped order
	frame2 := []geom.Point{{X: 0.81, Y: 0.79}, {X: 0.21, Y: 0.2}}
	tracks2, err := tracker.Track(frame2)
	if err != nil {
		t.Fatalf("Frame 2 failed: %v", err)
	}
	if tracker.Len() != 2 {
		t.Errorf("Expected 2 tracks after frame 2, got %d", tracker.Len())
	}
	if tracks2[0].GetID() != tracks1[1].GetID() || tracks2[1].GetID() != tracks1[0].GetID() {
		t.Errorf("Identities were not preserved across frames")
	}
	for _, track := range tracker.Tracks() {
		if len(track.GetHistory()) != 2 {
			t.Errorf("Track should have 2 points, got %d", len(track.GetHistory()))
		}
	}
	velocity := tracks2[1].Velocity()
	if math.Abs(velocity.X-0.01) > 1e-9 || velocity.Y != 0 {
		t.Errorf("Expected velocity (0.01, 0), got %v", velocity)
	}
}

func TestTrackerNewTrackForFarPoint(t *testing.T) {
	tracker := NewTracker(GreedySolver{MaxDistance: 0.05})
	first, err := tracker.Track([]geom.Point{{X: 0.1, Y: 0.1}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := tracker.Track([]geom.Point{{X: 0.9, Y: 0.9}})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].GetID() == second[0].GetID() {
		t.Error("Far point should not continue existing track")
	}
	if tracker.Len() != 2 {
		t.Errorf("Expected 2 tracks, got %d", tracker.Len())
	}
	if first[0].GetNoMatchTimes() != 1 {
		t.Errorf("Expected unmatched track to have 1 skip, got %d", first[0].GetNoMatchTimes())
	}
}

func TestTrackerRetirement(t *testing.T) {
	tracker := NewTracker(GreedySolver{MaxDistance: 0.1}, WithMaxSkip(2))
	if _, err := tracker.Track([]geom.Point{{X: 0.5, Y: 0.5}}); err != nil {
		t.Fatal(err)
	}
	for frame := 1; frame <= 2; frame++ {
		if _, err := tracker.Track(nil); err != nil {
			t.Fatal(err)
		}
		if tracker.Len() != 1 {
			t.Errorf("Track should survive %d empty frames, got %d tracks", frame, tracker.Len())
		}
	}
	if _, err := tracker.Track(nil); err != nil {
		t.Fatal(err)
	}
	if tracker.Len() != 0 {
		t.Errorf("Track should be retired after 3 empty frames, got %d tracks", tracker.Len())
	}
}

func TestTrackerSkipResetsOnMatch(t *testing.T) {
	tracker := NewTracker(GreedySolver{MaxDistance: 0.1}, WithMaxSkip(1))
	tracks, err := tracker.Track([]geom.Point{{X: 0.5, Y: 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	id := tracks[0].GetID()
	for i := 0; i < 5; i++ {
		if _, err := tracker.Track(nil); err != nil {
			t.Fatal(err)
		}
		tracks, err = tracker.Track([]geom.Point{{X: 0.5, Y: 0.5}})
		if err != nil {
			t.Fatal(err)
		}
		if tracks[0].GetID() != id {
			t.Fatalf("Iteration %d: track was lost after single skipped frame", i)
		}
		if tracks[0].GetNoMatchTimes() != 0 {
			t.Errorf("Expected skip count reset to 0, got %d", tracks[0].GetNoMatchTimes())
		}
	}
}

func TestTrackerHistoryBounded(t *testing.T) {
	maxHistory := 7
	tracker := NewTracker(HungarianSolver{MaxDistance: 0.1}, WithMaxHistory(maxHistory))
	var last *Track
	for i := 0; i < 50; i++ {
		x := 0.1 + float64(i)*0.01
		tracks, err := tracker.Track([]geom.Point{{X: x, Y: 0.5}})
		if err != nil {
			t.Fatalf("Frame %d failed: %v", i, err)
		}
		for _, track := range tracker.Tracks() {
			if len(track.GetHistory()) > maxHistory {
				t.Fatalf("Frame %d: history length %d exceeds %d", i, len(track.GetHistory()), maxHistory)
			}
		}
		last = tracks[0]
	}
	if tracker.Len() != 1 {
		t.Errorf("Expected single track, got %d", tracker.Len())
	}
	history := last.GetHistory()
	if len(history) != maxHistory {
		t.Errorf("Expected history of %d points, got %d", maxHistory, len(history))
	}
	// Oldest points are evicted first
	if history[len(history)-1] != last.Latest() || history[0].X >= history[1].X {
		t.Errorf("History is not ordered oldest first: %v", history)
	}
}

func TestTrackerWithPrediction(t *testing.T) {
	tracker := NewTracker(HungarianSolver{MaxDistance: 0.05}, WithPrediction(true))
	var id uuid.UUID
	for i := 0; i < 10; i++ {
		tracks, err := tracker.Track([]geom.Point{{X: 0.3, Y: 0.6}})
		if err != nil {
			t.Fatalf("Frame %d failed: %v", i, err)
		}
		if i == 0 {
			id = tracks[0].GetID()
			continue
		}
		if tracks[0].GetID() != id {
			t.Fatalf("Frame %d: stationary object changed identity", i)
		}
	}
	if tracker.Len() != 1 {
		t.Errorf("Expected single track, got %d", tracker.Len())
	}
}

func TestTrackerSpread(t *testing.T) {
	// Each nested slice represents set of relative centers on a single frame
	iterations := [][]geom.Point{
		{{X: 0.10, Y: 0.10}, {X: 0.50, Y: 0.50}},
		{{X: 0.11, Y: 0.10}, {X: 0.50, Y: 0.52}},
		{{X: 0.12, Y: 0.11}, {X: 0.51, Y: 0.54}, {X: 0.90, Y: 0.20}},
		{{X: 0.13, Y: 0.11}, {X: 0.90, Y: 0.21}},
		{{X: 0.14, Y: 0.12}, {X: 0.89, Y: 0.22}},
		{{X: 0.15, Y: 0.12}, {X: 0.89, Y: 0.23}},
		{{X: 0.16, Y: 0.13}, {X: 0.88, Y: 0.24}},
	}
	tracker := NewTracker(HungarianSolver{MaxDistance: 0.05}, WithMaxSkip(2))
	for i, iteration := range iterations {
		if _, err := tracker.Track(iteration); err != nil {
			t.Fatalf("Frame %d failed: %v", i, err)
		}
	}
	// Middle object disappeared after frame 3 and must be retired by now
	correctNumOfTracks := 2
	if tracker.Len() != correctNumOfTracks {
		t.Errorf("incorrect number of tracks: %d, expected: %d", tracker.Len(), correctNumOfTracks)
	}
	latest := tracker.Latest()
	expected := []geom.Point{{X: 0.16, Y: 0.13}, {X: 0.88, Y: 0.24}}
	for i := range expected {
		if latest[i] != expected[i] {
			t.Errorf("Expected latest %v, got %v", expected[i], latest[i])
		}
	}
	tracker.Reset()
	if tracker.Len() != 0 {
		t.Errorf("Expected no tracks after reset, got %d", tracker.Len())
	}
}

var errSingularFilter = errors.New("singular innovation covariance")

// failingFilter predicts a fixed state and rejects every update
type failingFilter struct {
	x, y float64
}

func (f *failingFilter) Predict()                     {}
func (f *failingFilter) Update(x, y float64) error    { return errSingularFilter }
func (f *failingFilter) GetState() (float64, float64) { return f.x, f.y }

func TestTrackerFilterFailureFinishesFrame(t *testing.T) {
	tracker := NewTracker(GreedySolver{MaxDistance: 0.1})
	_, err := tracker.Track([]geom.Point{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.8}})
	if err != nil {
		t.Fatalf("Frame 1 failed: %v", err)
	}
	broken := tracker.Tracks()[0]
	healthy := tracker.Tracks()[1]
	broken.tracker = &failingFilter{x: 0.2, y: 0.2}
	healthy.noMatchTimes = 3

	tracks, err := tracker.Track([]geom.Point{{X: 0.21, Y: 0.2}, {X: 0.81, Y: 0.8}, {X: 0.5, Y: 0.5}})
	if err == nil {
		t.Fatal("Expected filter error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 1 || !errors.Is(errs[0], errSingularFilter) {
		t.Errorf("Expected single wrapped filter error, got %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("Expected 3 tracks in result, got %d", len(tracks))
	}
	if tracks[0] != broken || tracks[1] != healthy {
		t.Errorf("Expected existing tracks to be continued despite the failure")
	}
	// Frame is fully processed: both tracks advanced and the new one registered
	if tracker.Len() != 3 {
		t.Errorf("Expected 3 live tracks, got %d", tracker.Len())
	}
	if len(broken.GetHistory()) != 2 || len(healthy.GetHistory()) != 2 {
		t.Errorf("Expected both histories to grow to 2, got %d and %d", len(broken.GetHistory()), len(healthy.GetHistory()))
	}
	if healthy.GetNoMatchTimes() != 0 || broken.GetNoMatchTimes() != 0 {
		t.Errorf("Expected skip counts reset, got %d and %d", broken.GetNoMatchTimes(), healthy.GetNoMatchTimes())
	}
	if broken.GetSmoothed() != (geom.Point{X: 0.2, Y: 0.2}) {
		t.Errorf("Expected smoothed state kept at (0.2, 0.2), got %v", broken.GetSmoothed())
	}
}
