// Package pipeline glues detection, tracking and particle effects together: one call per video frame.
package pipeline

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/LdDl/jugglefx/config"
	"github.com/LdDl/jugglefx/geom"
	"github.com/LdDl/jugglefx/locator"
	"github.com/LdDl/jugglefx/mot"
	"github.com/LdDl/jugglefx/particles"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNilFrame is returned when frame to process is nil
var ErrNilFrame = errors.New("frame is nil")

// defaultSparkleRadius is radius of the white disc used when no sparkle image is given
const defaultSparkleRadius = 32

// Frame reports what happened during processing of a single frame.
type Frame struct {
	// Sequential number of processed frame, starting from 0
	Index int
	// Detected centers in relative coordinates
	Centers []geom.Point
	// Number of foreground samples found after thresholding
	Samples int
	// Mean number of samples per cluster
	MeanClusterSize int
	// Track identifiers, one per center. Empty when tracking is disabled
	TrackIDs []uuid.UUID
	// Particles alive after the frame has been rendered
	Particles int
}

// Pipeline owns every per-run component: locator, tracker, particle system and textures.
// It is not safe for concurrent use.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger

	locator *locator.KMeansLocator
	tracker *mot.Tracker
	system  *particles.System

	interpolator draw.Interpolator
	sparkle      particles.TextureProvider
	circle       particles.TextureProvider
	dot          particles.TextureProvider
	intensity    particles.IntensityProgression

	sizeDist  distuv.Normal
	angleDist distuv.Uniform

	frames int
}

// Option configures Pipeline
type Option func(*Pipeline)

// WithLogger sets logger. Default is no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSparkleTexture sets texture of sparkle particles. Default is white disc
func WithSparkleTexture(texture particles.TextureProvider) Option {
	return func(p *Pipeline) {
		if texture != nil {
			p.sparkle = texture
		}
	}
}

// New creates pipeline from configuration
func New(cfg *config.Config, options ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	loc, err := locator.NewKMeansLocator(
		cfg.Locator.NObjects,
		locator.WithMaxIter(cfg.Locator.MaxIter),
		locator.WithEpsilon(cfg.Locator.Epsilon),
		locator.WithAttempts(cfg.Locator.Attempts),
		locator.WithSeed(cfg.Locator.Seed),
	)
	if err != nil {
		return nil, errors.Wrap(err, "can't create locator")
	}

	interpolator, err := particles.ParseInterpolator(cfg.Particles.Interpolator)
	if err != nil {
		return nil, errors.Wrap(err, "can't create particle system")
	}
	blend, err := particles.ParseBlendMode(cfg.Particles.Blend)
	if err != nil {
		return nil, errors.Wrap(err, "can't create particle system")
	}

	var tracker *mot.Tracker
	if cfg.Tracker.Enabled {
		algorithm, err := mot.ParseMatchingAlgorithm(cfg.Tracker.Solver)
		if err != nil {
			return nil, errors.Wrap(err, "can't create tracker")
		}
		tracker = mot.NewTracker(
			mot.NewSolver(algorithm, cfg.Tracker.MaxDistance),
			mot.WithMaxSkip(cfg.Tracker.MaxSkip),
			mot.WithMaxHistory(cfg.Tracker.MaxHistory),
			mot.WithPrediction(cfg.Tracker.Prediction),
		)
	}

	src := rand.NewPCG(cfg.Particles.Seed, cfg.Particles.Seed^0x9e3779b97f4a7c15)
	p := &Pipeline{
		cfg:     cfg,
		logger:  zap.NewNop(),
		locator: loc,
		tracker: tracker,
		system: particles.NewSystem(
			particles.WithMaxAge(cfg.Particles.MaxAge),
			particles.WithInterpolator(interpolator),
			particles.WithBlendMode(blend),
		),
		interpolator: interpolator,
		sparkle:      particles.NewCircleTexture(defaultSparkleRadius, color.White),
		circle:       particles.NewCircleTexture(cfg.Circle.Radius, cfg.Circle.Color.RGBA()),
		dot:          particles.NewCircleTexture(cfg.Debug.DotRadius, cfg.Debug.Color.RGBA()),
		intensity: particles.IntensityProgression{
			SizeRate:  cfg.Sparkle.SizeRate,
			AlphaRate: cfg.Sparkle.AlphaRate,
		},
		sizeDist:  distuv.Normal{Mu: cfg.Sparkle.SizeMean, Sigma: cfg.Sparkle.SizeStdDev, Src: src},
		angleDist: distuv.Uniform{Min: 0, Max: 360, Src: src},
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// InitialState returns state matching pipeline's configuration with given effects enabled
func (p *Pipeline) InitialState(mode Mode) State {
	return State{
		Mode:      mode,
		Threshold: p.cfg.Detection.Threshold,
		NObjects:  p.cfg.Locator.NObjects,
	}
}

// ProcessFrame detects bright objects on frame, spawns particles at their centers according to state,
// advances particle system by one tick and renders everything onto a copy of the frame.
// Returned buffer is frame scaled by output scale.
func (p *Pipeline) ProcessFrame(frame image.Image, st State) (*image.RGBA, Frame, error) {
	report := Frame{Index: p.frames}
	if frame == nil {
		return nil, report, ErrNilFrame
	}
	p.frames++

	if st.NObjects != p.locator.NObjects() {
		if err := p.locator.SetNObjects(st.NObjects); err != nil {
			return nil, report, errors.Wrapf(err, "frame %d", report.Index)
		}
		p.logger.Info("Number of objects changed", zap.Int("n_objects", st.NObjects))
	}

	out := scaleFrame(frame, p.cfg.Output.Scale, p.interpolator)
	small := Preprocess(frame, p.cfg.Detection.Downscale, uint8(clampThreshold(st.Threshold)))
	result := p.locator.Locate(small)
	report.Centers = result.Centers
	report.Samples = result.Samples
	report.MeanClusterSize = result.MeanClusterSize

	var tracks []*mot.Track
	if p.tracker != nil {
		var err error
		tracks, err = p.tracker.Track(result.Centers)
		if err != nil {
			// Tracker still advanced every track: smoothing of some of them is just stale for this frame
			p.logger.Warn("Track filter update failed", zap.Int("frame", report.Index), zap.Error(err))
		}
		report.TrackIDs = make([]uuid.UUID, len(tracks))
		for i, track := range tracks {
			report.TrackIDs[i] = track.GetID()
		}
	}

	width, height := out.Bounds().Dx(), out.Bounds().Dy()
	for i, center := range result.Centers {
		location := center.Denormalize(width, height)
		if st.Has(ModeDebug) {
			p.drawDot(out, location)
		}
		if st.Has(ModeSparkle) {
			if err := p.spawnSparkle(location, trackVelocity(tracks, i, width, height)); err != nil {
				return nil, report, errors.Wrapf(err, "frame %d", report.Index)
			}
		}
		if st.Has(ModeCircle) {
			diameter := p.cfg.Circle.Diameter
			err := p.system.Spawn(location, geom.NewPoint(diameter, diameter), 0, p.cfg.Circle.Opacity, p.circle, p.intensity)
			if err != nil {
				return nil, report, errors.Wrapf(err, "frame %d", report.Index)
			}
		}
	}

	p.system.Tick()
	p.system.Render(out)
	report.Particles = p.system.Len()

	p.logger.Debug("Frame processed",
		zap.Int("frame", report.Index),
		zap.Int("samples", report.Samples),
		zap.Int("centers", len(report.Centers)),
		zap.Int("particles", report.Particles),
		zap.Stringer("mode", st.Mode),
	)
	return out, report, nil
}

func (p *Pipeline) spawnSparkle(location, velocity geom.Point) error {
	size := geom.MaxFloat64(p.sizeDist.Rand(), 0)
	var updater particles.Updater = p.intensity
	if p.cfg.Sparkle.TrailVelocity && (velocity.X != 0 || velocity.Y != 0) {
		updater = particles.Composite{
			p.intensity,
			particles.Velocity{Vector: velocity, Decay: p.cfg.Sparkle.VelocityDecay},
		}
	}
	return p.system.Spawn(location, geom.NewPoint(size, size), p.angleDist.Rand(), p.cfg.Sparkle.Opacity, p.sparkle, updater)
}

// drawDot paints debug dot centered at given location directly onto the buffer
func (p *Pipeline) drawDot(dst *image.RGBA, location geom.Point) {
	texture := p.dot.Texture()
	size := texture.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return
	}
	rect := geom.CenteredRect(location, geom.NewPoint(float64(size.X), float64(size.Y)))
	draw.Draw(dst, rect, texture, texture.Bounds().Min, draw.Over)
}

// trackVelocity returns per-frame displacement of i-th track in pixels, or zero vector when unknown
func trackVelocity(tracks []*mot.Track, i, width, height int) geom.Point {
	if i >= len(tracks) || tracks[i] == nil {
		return geom.Point{}
	}
	return tracks[i].Velocity().Denormalize(width, height)
}

// Locator exposes clustering component
func (p *Pipeline) Locator() *locator.KMeansLocator {
	return p.locator
}

// Tracker exposes track continuity component. Nil when tracking is disabled
func (p *Pipeline) Tracker() *mot.Tracker {
	return p.tracker
}

// System exposes particle system
func (p *Pipeline) System() *particles.System {
	return p.system
}
