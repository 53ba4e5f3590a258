package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/LdDl/jugglefx/geom"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// kalmanParams are parameters of 2D Kalman filter attached to every track
type kalmanParams struct {
	dt       float64
	stdDevA  float64
	stdDevMx float64
	stdDevMy float64
}

func defaultKalmanParams() kalmanParams {
	return kalmanParams{
		dt:       1.0,
		stdDevA:  0.05,
		stdDevMx: 0.01,
		stdDevMy: 0.01,
	}
}

// positionFilter smooths observed positions and predicts the next one. Satisfied by *kalman_filter.Kalman2D
type positionFilter interface {
	Predict()
	Update(x, y float64) error
	GetState() (float64, float64)
}

// Track is hypothesized continuous identity of one physical object across frames.
type Track struct {
	id uuid.UUID
	// Observed positions, oldest first
	history    []geom.Point
	maxHistory int
	// Frames since last successful assignment
	noMatchTimes int
	predicted    geom.Point
	smoothed     geom.Point
	tracker      positionFilter
}

func newTrack(position geom.Point, maxHistory int, params kalmanParams) *Track {
	/* Kalman filter props */
	ux := 0.0
	uy := 0.0
	kf := kalman_filter.NewKalman2D(params.dt, ux, uy, params.stdDevA, params.stdDevMx, params.stdDevMy, kalman_filter.WithState2D(position.X, position.Y))
	track := Track{
		id:           uuid.New(),
		history:      make([]geom.Point, 0, maxHistory),
		maxHistory:   maxHistory,
		noMatchTimes: 0,
		predicted:    position,
		smoothed:     position,
		tracker:      kf,
	}
	track.history = append(track.history, position)
	return &track
}

// GetID returns track's identifier
func (track *Track) GetID() uuid.UUID {
	return track.id
}

// GetHistory returns track's history. Be careful: this is not copy of history, but reference to it
func (track *Track) GetHistory() []geom.Point {
	return track.history
}

// GetMaxHistory returns track's max history length
func (track *Track) GetMaxHistory() int {
	return track.maxHistory
}

// Latest returns the most recent observed position
func (track *Track) Latest() geom.Point {
	return track.history[len(track.history)-1]
}

// GetPredicted returns position predicted by Kalman filter for the next frame
func (track *Track) GetPredicted() geom.Point {
	return track.predicted
}

// GetSmoothed returns Kalman filter's state after the last update
func (track *Track) GetSmoothed() geom.Point {
	return track.smoothed
}

// Velocity returns displacement between two most recent observations.
// Zero when there is only one observation.
func (track *Track) Velocity() geom.Point {
	n := len(track.history)
	if n < 2 {
		return geom.Point{}
	}
	return track.history[n-1].Sub(track.history[n-2])
}

// GetNoMatchTimes returns number of consecutive frames without a match
func (track *Track) GetNoMatchTimes() int {
	return track.noMatchTimes
}

// predictNextPosition executes Kalman filter's first step
func (track *Track) predictNextPosition() {
	track.tracker.Predict()
	stateX, stateY := track.tracker.GetState()
	track.predicted.X = stateX
	track.predicted.Y = stateY
}

// update appends observation to track's history and executes Kalman filter's second step.
// Observation is recorded even when the filter fails: smoothed state then stays at its previous value
func (track *Track) update(position geom.Point) error {
	track.noMatchTimes = 0
	track.history = append(track.history, position)
	if len(track.history) > track.maxHistory {
		track.history = track.history[1:]
	}
	err := track.tracker.Update(position.X, position.Y)
	if err != nil {
		return errors.Wrap(err, "Can't update track's filter")
	}
	stateX, stateY := track.tracker.GetState()
	track.smoothed = geom.Point{X: stateX, Y: stateY}
	return nil
}
