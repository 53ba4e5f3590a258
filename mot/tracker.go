package mot

import (
	"github.com/LdDl/jugglefx/geom"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Tracker keeps identities of points across frames.
// It extends matched tracks, starts new tracks for unmatched points and retires tracks
// which were not matched for more than maxSkip consecutive frames.
type Tracker struct {
	solver AssignmentSolver
	// Live tracks in creation order
	tracks []*Track
	// Max no match (max number of frames when track could not be found again). Default is 5
	maxSkip int
	// Max number of positions in track's history. Default is 30
	maxHistory int
	// Match against Kalman-predicted positions instead of last observed ones
	usePrediction bool
	kalman        kalmanParams
}

// TrackerOption configures Tracker
type TrackerOption func(*Tracker)

// WithMaxSkip sets number of consecutive unmatched frames after which track is retired
func WithMaxSkip(maxSkip int) TrackerOption {
	return func(tracker *Tracker) {
		if maxSkip < 0 {
			maxSkip = 0
		}
		tracker.maxSkip = maxSkip
	}
}

// WithMaxHistory sets bound of track's history. Values below 1 are treated as 1
func WithMaxHistory(maxHistory int) TrackerOption {
	return func(tracker *Tracker) {
		if maxHistory < 1 {
			maxHistory = 1
		}
		tracker.maxHistory = maxHistory
	}
}

// WithPrediction makes solver compare current points with Kalman-predicted positions of tracks
func WithPrediction(enabled bool) TrackerOption {
	return func(tracker *Tracker) {
		tracker.usePrediction = enabled
	}
}

// WithKalman sets time step, acceleration noise and measurement noise of tracks' Kalman filters
func WithKalman(dt, stdDevA, stdDevM float64) TrackerOption {
	return func(tracker *Tracker) {
		tracker.kalman = kalmanParams{
			dt:       dt,
			stdDevA:  stdDevA,
			stdDevMx: stdDevM,
			stdDevMy: stdDevM,
		}
	}
}

// NewTrackerDefault creates default instance of Tracker: Hungarian matching with gate of 0.1 (relative units)
func NewTrackerDefault() *Tracker {
	return NewTracker(HungarianSolver{MaxDistance: 0.1})
}

// NewTracker creates new instance of Tracker
func NewTracker(solver AssignmentSolver, options ...TrackerOption) *Tracker {
	tracker := &Tracker{
		solver:     solver,
		tracks:     make([]*Track, 0),
		maxSkip:    5,
		maxHistory: 30,
		kalman:     defaultKalmanParams(),
	}
	for _, option := range options {
		option(tracker)
	}
	return tracker
}

// Track feeds positions of the current frame into tracker.
// Returned slice has the same length as positions: i-th element is the track positions[i] belongs to now.
// Filter failures do not interrupt the frame: every track is still advanced and the failures are returned combined
// together with the full result.
func (tracker *Tracker) Track(positions []geom.Point) ([]*Track, error) {
	for _, track := range tracker.tracks {
		track.predictNextPosition()
	}
	previous := make([]geom.Point, len(tracker.tracks))
	for j, track := range tracker.tracks {
		if tracker.usePrediction {
			previous[j] = track.GetPredicted()
		} else {
			previous[j] = track.Latest()
		}
	}

	assignment := tracker.solver.Assign(previous, positions)
	if len(assignment) != len(positions) {
		return nil, errors.Errorf("solver returned %d assignments for %d positions", len(assignment), len(positions))
	}

	var updateErrs error
	result := make([]*Track, len(positions))
	matched := make([]bool, len(tracker.tracks))
	newTracks := make([]*Track, 0)
	for i, position := range positions {
		j := assignment[i]
		// Register as a new track when there is no match or previous track is already taken
		if j < 0 || j >= len(tracker.tracks) || matched[j] {
			track := newTrack(position, tracker.maxHistory, tracker.kalman)
			newTracks = append(newTracks, track)
			result[i] = track
			continue
		}
		track := tracker.tracks[j]
		err := track.update(position)
		if err != nil {
			updateErrs = multierr.Append(updateErrs, errors.Wrapf(err, "Can't update track with id %s", track.GetID().String()))
		}
		matched[j] = true
		result[i] = track
	}

	// Clean up existing data
	survivors := tracker.tracks[:0]
	for j, track := range tracker.tracks {
		if !matched[j] {
			track.noMatchTimes++
		}
		// Remove track if it was not found for a long time
		if track.noMatchTimes > tracker.maxSkip {
			continue
		}
		survivors = append(survivors, track)
	}
	for j := len(survivors); j < len(tracker.tracks); j++ {
		tracker.tracks[j] = nil
	}
	tracker.tracks = append(survivors, newTracks...)
	return result, updateErrs
}

// Latest returns the most recent observed position of every live track
func (tracker *Tracker) Latest() []geom.Point {
	result := make([]geom.Point, len(tracker.tracks))
	for j, track := range tracker.tracks {
		result[j] = track.Latest()
	}
	return result
}

// Tracks returns live tracks in creation order. Be careful: this is not copy of tracks, but reference to them
func (tracker *Tracker) Tracks() []*Track {
	return tracker.tracks
}

// Len returns number of live tracks
func (tracker *Tracker) Len() int {
	return len(tracker.tracks)
}

// Reset drops all tracks
func (tracker *Tracker) Reset() {
	tracker.tracks = tracker.tracks[:0]
}
