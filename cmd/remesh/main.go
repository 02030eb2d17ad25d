// remesh simplifies STL models by quadric error edge collapse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/soypat/remesh"
	"github.com/soypat/remesh/constraint"
	"github.com/soypat/remesh/dmesh"
	"github.com/soypat/remesh/internal/logger"
	"github.com/soypat/remesh/meshio"
	"github.com/soypat/remesh/project"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	cfg, err := Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *flagDump != "" {
		if err := cfg.SaveTo(*flagDump); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	log := logger.NewWithFileConfig(cfg.Logging.Level, cfg.Logging.File, os.Stderr)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	input := flag.Arg(0)
	output := *flagOutput
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "_remesh.stl"
	}
	if err := run(ctx, log, cfg, input, output); err != nil {
		log.Error("remesh failed", zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `remesh - quadric error mesh simplification

Usage:
  remesh [options] <input.stl>

Examples:
  remesh -ratio 0.25 part.stl
  remesh -mode edge_length -value 2 -o coarse.stl part.stl
  remesh -mode planar -value 0.5 cad.stl
  remesh -config run.yaml -dump-config effective.yaml

Options:`)
	flag.PrintDefaults()
}

func run(ctx context.Context, log *zap.Logger, cfg *Config, input, output string) error {
	fp, err := os.Open(input)
	if err != nil {
		return err
	}
	model, err := meshio.ReadSTL(fp)
	fp.Close()
	if errors.Is(err, meshio.ErrNormalMismatch) {
		log.Warn("stored normals disagree with winding", zap.String("file", input), zap.Error(err))
	} else if err != nil {
		return err
	}
	m, dropped, err := meshio.Weld(model, cfg.Run.WeldTolerance)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Warn("dropped degenerate or non-manifold triangles", zap.Int("dropped", dropped))
	}
	log.Info("loaded model",
		zap.String("file", input),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("vertices", m.VertexCount()),
		zap.Bool("closed", m.IsClosed()),
	)

	var target constraint.Target
	if cfg.Constraints.ProjectToInput {
		pm, err := project.NewMesh(m.Clone())
		if err != nil {
			return err
		}
		target = pm
	}
	var cs *constraint.Set
	if cfg.Constraints.Boundaries {
		policy := constraint.DefaultPolicy()
		cs = constraint.ConstrainBoundaries(m, policy)
		log.Debug("constrained boundaries", zap.Int("edges", cs.EdgeCount()), zap.Int("vertices", cs.VertexCount()))
	}

	start := time.Now()
	var st remesh.Stats
	if cfg.Run.NormalAware {
		s := remesh.NewAttribute(m, cfg.Simplify)
		s.Constraints, s.Target, s.Log = cs, target, log
		st, err = simplify(ctx, s, cfg.Run)
	} else {
		s := remesh.New(m, cfg.Simplify)
		s.Constraints, s.Target, s.Log = cs, target, log
		st, err = simplify(ctx, s, cfg.Run)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn("interrupted, writing partial result")
	} else if err != nil {
		return err
	}
	log.Info("simplified",
		zap.String("mode", cfg.Run.Mode),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("collapses", st.Collapses),
		zap.Int("iterations", st.Iterations),
		zap.Duration("elapsed", time.Since(start)),
	)
	for o, n := range st.Outcomes {
		if n > 0 && remesh.Outcome(o) != remesh.Collapsed {
			log.Debug("outcome", zap.Stringer("outcome", remesh.Outcome(o)), zap.Int("count", n))
		}
	}
	return writeModel(m, output)
}

func simplify[Q remesh.Quadric[Q]](ctx context.Context, s *remesh.Simplifier[Q], rc RunConfig) (remesh.Stats, error) {
	count := func(n int) int {
		if rc.Count > 0 {
			return rc.Count
		}
		return max(1, int(float64(n)*rc.Ratio))
	}
	switch rc.Mode {
	case modeVertices:
		return s.SimplifyToVertexCount(ctx, count(s.Mesh.VertexCount()))
	case modeEdgeLength:
		return s.SimplifyToEdgeLength(ctx, rc.Value)
	case modeMaxError:
		return s.SimplifyToMaxError(ctx, rc.Value)
	case modePlanar:
		return s.SimplifyToMinimalPlanar(ctx, rc.Value, nil)
	case modeFast:
		return s.FastCollapsePass(ctx, rc.Value, rc.Rounds, s.Mesh.IsClosed())
	}
	return s.SimplifyToTriangleCount(ctx, count(s.Mesh.TriangleCount()))
}

func writeModel(m *dmesh.Mesh, path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	tris := m.Triangles()
	if *flagASCII {
		err = meshio.WriteASCIISTL(fp, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), tris)
	} else {
		err = meshio.WriteSTL(fp, tris)
	}
	if err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
