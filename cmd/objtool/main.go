// objtool is a CLI utility for turning OBJ meshes into indexed render buffers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/pkg/mesh"
)

const packedExt = ".omsh"

var errStrict = errors.New("load produced warnings in strict mode")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, args[0], args[1:], os.Stdout); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(cfg, args, out)
	case "convert", "c":
		return cmdConvert(cfg, args, out)
	case "stats":
		return cmdStats(cfg, args, out)
	case "init":
		return cmdInit(cfg, args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objtool - OBJ to indexed vertex buffer converter

Usage:
  objtool [flags] <command> [args]

Commands:
  info <file.obj|file.omsh>   Show buffer sizes, layout and bounds
  convert <file.obj>...       Write deduplicated buffers as .omsh files
  stats <file.obj>            Show vertex deduplication statistics
  init [path]                 Write the effective config (default: user config dir)

Flags:
  -config <path>       Config file (default ./objtool.yaml)
  -index-width <bits>  Index width: 8, 16 or 32
  -texcoord-dim <n>    Texcoord components, 0 disables
  -no-normals          Skip the normal buffer
  -out <dir>           Output directory for convert
  -workers <n>         Concurrent conversions
  -strict              Fail when records are ignored
  -normalize           Center and scale positions into [-0.5, 0.5]
  -flip-v              Flip the v texture coordinate
  -debug               Enable debug logging

Examples:
  objtool info bunny.obj
  objtool -index-width 16 -out build/ convert *.obj
  objtool stats dragon.obj`)
}

// loadOBJ loads one file with the configured options and post-processing.
func loadOBJ(cfg *config.Config, path string) (mesh.Loader, []mesh.Warning, error) {
	opts := cfg.MeshOptions()
	opts.Logger = logger.Named("mesh").With(zap.String("file", path))

	l, err := mesh.NewLoader(mesh.IndexWidth(cfg.Mesh.IndexWidth), opts)
	if err != nil {
		return nil, nil, err
	}

	warnings, err := l.LoadFile(path)
	for _, w := range warnings {
		logger.Warn("ignored record",
			zap.String("file", path),
			zap.Int("line", w.Line),
			zap.Stringer("kind", w.Kind),
			zap.String("detail", w.Message))
	}
	if err != nil {
		return nil, warnings, fmt.Errorf("loading %s: %w", path, err)
	}
	if cfg.Mesh.Strict && len(warnings) > 0 {
		return nil, warnings, fmt.Errorf("%s: %w (%d)", path, errStrict, len(warnings))
	}

	if cfg.Mesh.Normalize {
		mesh.NormalizeCenter(l.Positions())
	}
	if cfg.Mesh.FlipV {
		mesh.FlipV(l.TexCoords())
	}
	return l, warnings, nil
}

func cmdInfo(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: objtool info <file.obj|file.omsh>")
	}
	path := args[0]

	if strings.EqualFold(filepath.Ext(path), packedExt) {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		p, err := mesh.ReadBinary(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fmt.Fprintf(out, "File:      %s (packed)\n", path)
		printMesh(out, p)
		return nil
	}

	l, warnings, err := loadOBJ(cfg, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "File:      %s\n", path)
	printMesh(out, l)
	fmt.Fprintf(out, "Warnings:  %d\n", len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(out, "  %s\n", w)
	}
	return nil
}

func printMesh(out io.Writer, m mesh.Mesh) {
	fmt.Fprintf(out, "Vertices:  %d\n", m.VertexCount())
	fmt.Fprintf(out, "Indices:   %d (%d triangles, %d-bit)\n", m.IndexCount(), m.IndexCount()/3, m.IndexWidth())
	fmt.Fprintf(out, "Positions: %s\n", describeStream(m.Positions()))
	fmt.Fprintf(out, "Normals:   %s\n", describeStream(m.Normals()))
	fmt.Fprintf(out, "TexCoords: %s\n", describeStream(m.TexCoords()))

	if b, ok := mesh.ComputeBounds(m.Positions()); ok {
		fmt.Fprintf(out, "Bounds:    min (%.4g, %.4g, %.4g) max (%.4g, %.4g, %.4g)\n",
			b.Min.X(), b.Min.Y(), b.Min.Z(), b.Max.X(), b.Max.Y(), b.Max.Z())
	}
}

func describeStream(s *mesh.AttributeStore) string {
	if s == nil {
		return "none"
	}
	return fmt.Sprintf("%d x %d floats", s.Len(), s.Dim())
}

// convertResult is the outcome of one file in a batch.
type convertResult struct {
	src, dst string
	vertices int
	indices  int
	warnings int
}

func cmdConvert(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: objtool convert <file.obj>...")
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	dsts := make([]string, len(args))
	seen := make(map[string]string, len(args))
	for i, src := range args {
		dst := outputPath(cfg, src)
		if prev, ok := seen[dst]; ok {
			return fmt.Errorf("%s and %s both convert to %s", prev, src, dst)
		}
		seen[dst] = src
		dsts[i] = dst
	}

	results := make([]convertResult, len(args))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.Output.Workers)

	for i, src := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := convertOne(cfg, src, dsts[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		fmt.Fprintf(out, "Converted: %s -> %s (%d vertices, %d indices, %d warnings)\n",
			r.src, r.dst, r.vertices, r.indices, r.warnings)
	}
	logger.Info("conversion finished", zap.Int("files", len(results)))
	return nil
}

// outputPath names the packed file for src inside the output directory.
func outputPath(cfg *config.Config, src string) string {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + packedExt
	return filepath.Clean(filepath.Join(cfg.Output.Dir, name))
}

func convertOne(cfg *config.Config, src, dst string) (convertResult, error) {
	l, warnings, err := loadOBJ(cfg, src)
	if err != nil {
		return convertResult{}, err
	}

	f, err := os.Create(dst)
	if err != nil {
		return convertResult{}, fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := mesh.WriteBinary(f, l); err != nil {
		f.Close()
		return convertResult{}, fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return convertResult{}, fmt.Errorf("closing %s: %w", dst, err)
	}

	logger.Debug("converted", zap.String("src", src), zap.String("dst", dst))
	return convertResult{
		src:      src,
		dst:      dst,
		vertices: l.VertexCount(),
		indices:  l.IndexCount(),
		warnings: len(warnings),
	}, nil
}

func cmdStats(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: objtool stats <file.obj>")
	}

	l, _, err := loadOBJ(cfg, args[0])
	if err != nil {
		return err
	}
	s := l.Stats()

	fmt.Fprintf(out, "File:        %s\n", args[0])
	fmt.Fprintf(out, "Raw streams: %d positions, %d normals, %d texcoords\n", s.Positions, s.Normals, s.TexCoords)
	fmt.Fprintf(out, "Triangles:   %d\n", s.Triangles)
	fmt.Fprintf(out, "Corners:     %d\n", s.Corners)
	fmt.Fprintf(out, "Vertices:    %d\n", s.Vertices)
	fmt.Fprintf(out, "Reuse:       %.2f corners per vertex\n", s.ReuseRatio())
	fmt.Fprintf(out, "Warnings:    %d\n", s.Warnings)
	return nil
}

func cmdInit(cfg *config.Config, args []string, out io.Writer) error {
	var path string
	var err error
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
