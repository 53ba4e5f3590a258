package main

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LdDl/jugglefx/config"
	"github.com/LdDl/jugglefx/particles"
	"github.com/LdDl/jugglefx/pipeline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	inputDir     string
	outputDir    string
	particlePath string
	modeFlag     string
)

// runCmd processes directory of frames
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process directory of frames and write composited frames",
	Long: `Reads PNG/JPEG frames from the input directory in lexical order, detects bright objects,
spawns particles for the enabled effects and writes PNG frames with the same base names
into the output directory.

Example:
  jugglefx run --input ./frames --output ./out --particle spark.png --mode sparkle,circle`,
	RunE: runFrames,
}

func init() {
	runCmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory with input frames (required)")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for output frames (required)")
	runCmd.Flags().StringVarP(&particlePath, "particle", "p", "", "Image used as sparkle texture (white disc if empty)")
	runCmd.Flags().StringVarP(&modeFlag, "mode", "m", "sparkle", "Comma separated effects: debug, sparkle, circle")
	_ = runCmd.MarkFlagRequired("input")
	_ = runCmd.MarkFlagRequired("output")
}

func runFrames(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "can't load configuration")
	}
	mode, err := pipeline.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	options := []pipeline.Option{pipeline.WithLogger(logger)}
	if particlePath != "" {
		img, err := readImage(particlePath)
		if err != nil {
			return errors.Wrap(err, "can't load particle image")
		}
		options = append(options, pipeline.WithSparkleTexture(particles.NewImageTexture(img)))
	}
	fx, err := pipeline.New(cfg, options...)
	if err != nil {
		return err
	}

	frames, err := listFrames(inputDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "can't create output directory")
	}
	logger.Info("Processing frames",
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Int("frames", len(frames)),
		zap.Stringer("mode", mode),
	)

	st := fx.InitialState(mode)
	failed := 0
	for _, path := range frames {
		frame, err := readImage(path)
		if err != nil {
			logger.Warn("Skipping unreadable frame", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		out, report, err := fx.ProcessFrame(frame, st)
		if err != nil {
			logger.Error("Frame processing failed", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
		if err := writePNG(filepath.Join(outputDir, name), out); err != nil {
			logger.Error("Can't write frame", zap.String("path", name), zap.Error(err))
			failed++
			continue
		}
		logger.Debug("Frame written",
			zap.String("path", name),
			zap.Int("centers", len(report.Centers)),
			zap.Int("particles", report.Particles),
		)
	}
	logger.Info("Done", zap.Int("frames", len(frames)), zap.Int("failed", failed))
	return nil
}

// listFrames returns PNG and JPEG files of directory sorted by name
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "can't read input directory")
	}
	frames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			frames = append(frames, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode %s", path)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
