// Package locator finds bright blobs in thresholded single channel frames.
//
// Every non-zero pixel of the input is a detection sample. Samples are clustered with k-means
// into a fixed number of objects and centers are returned in frame-relative [0,1] coordinates,
// so the caller can map them onto an output buffer of any resolution.
//
// Order of returned centers is not stable between calls: use mot.Tracker on top of it when identity matters.
package locator

import (
	"image"
	"math/rand/v2"

	"github.com/LdDl/jugglefx/geom"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidObjectCount is returned when requested number of objects is less than one
	ErrInvalidObjectCount = errors.New("number of objects must be at least 1")
)

// Result is outcome of a single Locate call.
type Result struct {
	// Cluster centers in frame-relative [0,1] coordinates
	Centers []geom.Point
	// Number of samples per cluster (integer division). Zero for empty result
	MeanClusterSize int
	// Total number of non-zero samples in the frame
	Samples int
}

// Empty reports whether there were not enough detections to cluster.
func (r Result) Empty() bool {
	return len(r.Centers) == 0
}

// KMeansLocator is k-means based blob locator.
type KMeansLocator struct {
	nObjects int
	criteria termCriteria
	attempts int
	rnd      *rand.Rand

	centers         []geom.Point
	meanClusterSize int
}

// Option configures KMeansLocator
type Option func(*KMeansLocator)

// WithMaxIter sets maximum number of Lloyd iterations per attempt. Default is 100
func WithMaxIter(maxIter int) Option {
	return func(loc *KMeansLocator) {
		if maxIter < 1 {
			maxIter = 1
		}
		loc.criteria.maxIter = maxIter
	}
}

// WithEpsilon sets centroid movement (in pixels) below which iterations stop. Default is 2
func WithEpsilon(epsilon float64) Option {
	return func(loc *KMeansLocator) {
		loc.criteria.epsilon = epsilon
	}
}

// WithAttempts sets number of restarts from fresh k-means++ seeds. Default is 5
func WithAttempts(attempts int) Option {
	return func(loc *KMeansLocator) {
		if attempts < 1 {
			attempts = 1
		}
		loc.attempts = attempts
	}
}

// WithSeed fixes random generator seed used for k-means++ seeding
func WithSeed(seed uint64) Option {
	return func(loc *KMeansLocator) {
		loc.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewKMeansLocator creates new instance of KMeansLocator
func NewKMeansLocator(nObjects int, options ...Option) (*KMeansLocator, error) {
	if nObjects < 1 {
		return nil, errors.Wrapf(ErrInvalidObjectCount, "got %d", nObjects)
	}
	loc := &KMeansLocator{
		nObjects: nObjects,
		criteria: termCriteria{
			maxIter: 100,
			epsilon: 2,
		},
		attempts: 5,
	}
	WithSeed(1)(loc)
	for _, option := range options {
		option(loc)
	}
	return loc, nil
}

// Locate clusters all non-zero pixels of img.
// When there are fewer samples than objects the result is empty: this is a normal state (dark scene, occlusion), not an error.
func (loc *KMeansLocator) Locate(img *image.Gray) Result {
	points := ExtractPoints(img)
	if len(points) < loc.nObjects {
		return Result{Samples: len(points)}
	}
	samples := make([]r2.Vec, len(points))
	for i, pt := range points {
		samples[i] = r2.Vec{X: pt.X, Y: pt.Y}
	}
	best := kmeans(samples, loc.nObjects, loc.criteria, loc.attempts, loc.rnd)

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	centers := make([]geom.Point, loc.nObjects)
	for i, center := range best.centers {
		centers[i] = geom.NewPoint(center.X, center.Y).Normalize(width, height)
	}
	loc.centers = centers
	loc.meanClusterSize = len(points) / loc.nObjects
	return Result{
		Centers:         centers,
		MeanClusterSize: loc.meanClusterSize,
		Samples:         len(points),
	}
}

// LastCenters returns relative centers from the most recent successful Locate call.
// Be careful: this is not copy of centers, but reference to them
func (loc *KMeansLocator) LastCenters() []geom.Point {
	return loc.centers
}

// MeanClusterSize returns mean cluster size from the most recent successful Locate call
func (loc *KMeansLocator) MeanClusterSize() int {
	return loc.meanClusterSize
}

// SetNObjects changes number of objects to look for.
// Previous centers carry no correspondence to the ones produced after the change.
func (loc *KMeansLocator) SetNObjects(n int) error {
	if n < 1 {
		return errors.Wrapf(ErrInvalidObjectCount, "got %d", n)
	}
	loc.nObjects = n
	return nil
}

// NObjects returns number of objects to look for
func (loc *KMeansLocator) NObjects() int {
	return loc.nObjects
}
