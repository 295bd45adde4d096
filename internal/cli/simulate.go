// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/config"
	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/internal/sim"
	"github.com/gogpu/cinema/scene"
	"github.com/gogpu/cinema/transform"
)

// SimulateResult summarizes a headless run.
type SimulateResult struct {
	Frames       int     `json:"frames"`
	Items        int     `json:"items"`
	Layers       int     `json:"layers"`
	Decodes      uint64  `json:"decodes"`
	Uploads      uint64  `json:"uploads"`
	Reclaimed    uint64  `json:"reclaimed"`
	Evictions    uint64  `json:"evictions"`
	Failures     uint64  `json:"failures"`
	Prefetched   uint64  `json:"prefetched"`
	Deferred     int     `json:"deferred"`
	TextureReady int     `json:"texture_ready"`
	PeakTextures int     `json:"peak_textures"`
	Pixels       float64 `json:"pixels"`
	Reloads      int     `json:"reloads"`
}

func (r *SimulateResult) String() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "frames        %d\n", r.Frames)
	p.Fprintf(&b, "items         %d (%d layers)\n", r.Items, r.Layers)
	p.Fprintf(&b, "decodes       %d (%d deferred)\n", r.Decodes, r.Deferred)
	p.Fprintf(&b, "uploads       %d (%d reclaimed)\n", r.Uploads, r.Reclaimed)
	p.Fprintf(&b, "evictions     %d\n", r.Evictions)
	p.Fprintf(&b, "failures      %d\n", r.Failures)
	p.Fprintf(&b, "prefetched    %d\n", r.Prefetched)
	p.Fprintf(&b, "resident      %d (peak %d)\n", r.TextureReady, r.PeakTextures)
	p.Fprintf(&b, "pixels        %.0f\n", r.Pixels)
	if r.Reloads > 0 {
		p.Fprintf(&b, "reloads       %d\n", r.Reloads)
	}
	return b.String()
}

type simulateOptions struct {
	frames int
	watch  bool
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate [database]",
		Short: "Replay a database through the streaming cache",
		Long: `Load a database into a scene and orbit a camera around it without a
GPU. Items are laid out on a grid, one axis per non-time dimension, and
the time dimension is played back in a loop.

With --watch the index file is watched and the ensemble is reloaded
whenever it changes.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, opts, args, cmd)
		},
	}
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "frames to render (default from config)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload when the index changes")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func runSimulate(opts *RootOptions, s *simulateOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "load config", err)
	}
	root := cfg.Database
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return out.Fail(ExitCommandError, ErrCodeUsage, "no database given", nil)
	}
	frames := cfg.Simulation.Frames
	if s.frames > 0 {
		frames = s.frames
	}
	if s.watch && s.frames == 0 {
		frames = math.MaxInt
	}

	ix, err := database.Open(root)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, "open database", err)
	}
	sc := scene.New(cfg.Options()...)
	defer sc.Close()

	pb, err := arrange(sc, ix)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeDatabase, "load ensemble", err)
	}
	sc.Play(cfg.Playback.Speed)
	out.VerboseLog("Loaded %d items from %s", len(sc.Items()), ix.Root)

	var events <-chan fsnotify.Event
	var indexPath string
	if s.watch {
		if indexPath, err = database.IndexPath(ix.Root); err != nil {
			return out.Fail(ExitCommandError, ErrCodeDatabase, "watch", err)
		}
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeGeneric, "watch", err)
		}
		defer w.Close()
		// Editors often replace the file, so watch its directory.
		if err := w.Add(filepath.Dir(indexPath)); err != nil {
			return out.Fail(ExitCommandError, ErrCodeGeneric, "watch", err)
		}
		events = w.Events
		out.VerboseLog("Watching %s", indexPath)
	}

	r := sim.New(sc, sim.Options{
		FPS:      cfg.Simulation.FPS,
		Orbit:    cfg.Simulation.Orbit,
		Distance: cfg.Simulation.Distance,
	})
	res := &SimulateResult{}
	viewport := float64(cfg.Simulation.Viewport)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	err = r.Run(ctx, frames, func(f sim.Frame) {
		res.Frames++
		res.Deferred += f.Stats.Deferred
		res.Pixels += f.Coverage * viewport * viewport
		res.PeakTextures = max(res.PeakTextures, f.Stats.Textures.Outstanding)
		out.VerboseLog("frame %d t=%.3f visible=%d drawn=%d loaded=%d marked=%d",
			f.Index, f.Time, f.Visible, f.Drawn, f.Loaded, f.Marked)

		if pb.span > 0 && sc.Now() >= pb.end {
			sc.SetTime(sc.Now() - pb.span)
		}
		if changed(events, indexPath) {
			if err := reload(sc, r, ix.Root); err != nil {
				cinema.Logger().Warn("cli: reload failed", "root", ix.Root, "err", err)
				return
			}
			res.Reloads++
			out.VerboseLog("Reloaded %d items", len(sc.Items()))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return out.Fail(ExitFailure, ErrCodeGeneric, "simulate", err)
	}

	st := sc.Stats()
	res.Items = st.Items
	res.Layers = st.Layers
	res.Decodes = st.Decodes
	res.Uploads = st.Uploads
	res.Reclaimed = st.Reclaimed
	res.Evictions = st.Evictions
	res.Failures = st.Failures
	res.Prefetched = st.Prefetched
	res.TextureReady = st.TextureReady
	return out.Success(res)
}

// changed drains pending watcher events and reports whether any of them
// touched path.
func changed(events <-chan fsnotify.Event, path string) bool {
	hit := false
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return hit
			}
			if filepath.Clean(ev.Name) == path && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				hit = true
			}
		default:
			return hit
		}
	}
}

func reload(sc *scene.Scene, r *sim.Renderer, root string) error {
	ix, err := database.Open(root)
	if err != nil {
		return err
	}
	if _, err := arrange(sc, ix); err != nil {
		return err
	}
	r.Recenter()
	return nil
}

// playback is the looped span of the time dimension.
type playback struct {
	end  float64
	span float64
}

// arrange loads ix into sc and lays the items out: the first three
// non-time dimensions become the X, Y and Z grid axes and the time
// dimension selects one slice at a time.
func arrange(sc *scene.Scene, ix *database.Index) (playback, error) {
	if _, err := sc.LoadEnsemble(ix); err != nil {
		return playback{}, err
	}
	axes := []cinema.Vec3{cinema.V3(1.2, 0, 0), cinema.V3(0, 1.2, 0), cinema.V3(0, 0, 1.2)}
	var pb playback
	for d, dim := range ix.Dimensions {
		if dim.Name == "time" && dim.Len() > 0 {
			step := timeStep(dim.Values)
			sc.AddTransformAll(transform.TimeWindow(d, step))
			start := dim.Values[0]
			pb.end = dim.Values[dim.Len()-1] + step
			pb.span = pb.end - start
			continue
		}
		if len(axes) == 0 {
			continue
		}
		sc.AddTransformAll(transform.Grid(d, axes[0]))
		axes = axes[1:]
	}
	if pb.span > 0 && (sc.Now() < pb.end-pb.span || sc.Now() >= pb.end) {
		sc.SetTime(pb.end - pb.span)
	}
	return pb, nil
}

// timeStep returns the smallest positive gap between consecutive values,
// or 1 when there is none.
func timeStep(values []float64) float64 {
	step := math.Inf(1)
	for i := 1; i < len(values); i++ {
		if d := values[i] - values[i-1]; d > 0 && d < step {
			step = d
		}
	}
	if math.IsInf(step, 1) {
		return 1
	}
	return step
}

