// softras - CPU rasterizer
// Render OBJ and GLB meshes with per-pixel BRDF shading to image files or
// straight into the terminal.
//
// Commands:
//
//	render     - Render one frame to a PNG, BMP, WebP or JPEG file
//	turntable  - Render a spinning frame sequence
//	view       - Interactive terminal viewer
//	config     - Print the effective configuration as YAML
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/softras/pkg/config"
	"github.com/taigrr/softras/pkg/render"
)

var version = "dev"

// options are the flags shared by every command. Flags that the user sets
// override the matching config file values.
type options struct {
	configPath string
	verbose    bool

	width     int
	height    int
	mode      string
	specular  string
	normalMap bool
	tiles     int
	wireframe bool
	bounds    bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "softras",
		Short: "Software rasterizer for OBJ and GLB meshes",
		Long: `softras renders triangle meshes on the CPU with perspective-correct
interpolation, a depth buffer and per-pixel Lambert plus Phong or
Cook-Torrance shading. Scenes are described in YAML; run "softras config"
to see every setting and its default.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.level()})))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "scene config file (YAML)")
	pf.BoolVar(&opts.verbose, "verbose", false, "log per-frame statistics")
	pf.IntVar(&opts.width, "width", 0, "output width in pixels")
	pf.IntVar(&opts.height, "height", 0, "output height in pixels")
	pf.StringVarP(&opts.mode, "mode", "m", "", "display mode: observed-area, diffuse, specular, combined")
	pf.StringVar(&opts.specular, "specular", "", "specular model: phong, cook-torrance")
	pf.BoolVarP(&opts.normalMap, "normal-map", "n", false, "perturb normals with the normal map")
	pf.IntVar(&opts.tiles, "tiles", 0, "band height for the parallel driver (0 renders serially)")
	pf.BoolVar(&opts.wireframe, "wireframe", false, "overlay triangle edges")
	pf.BoolVar(&opts.bounds, "bounds", false, "overlay mesh bounding boxes")

	root.AddCommand(
		newRenderCmd(opts),
		newTurntableCmd(opts),
		newViewCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (o *options) level() slog.Level {
	if o.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// loadConfig reads the config file, or the defaults when none is given,
// and applies any flags set on cmd.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Height = o.height
	}
	if flags.Changed("mode") {
		cfg.Shading.Mode = o.mode
	}
	if flags.Changed("specular") {
		cfg.Shading.SpecularModel = o.specular
	}
	if flags.Changed("normal-map") {
		cfg.Shading.NormalMap = o.normalMap
	}
	if flags.Changed("tiles") {
		cfg.Render.Tiles = o.tiles
	}
	if flags.Changed("wireframe") {
		cfg.Render.Wireframe = o.wireframe
	}
	if flags.Changed("bounds") {
		cfg.Render.Bounds = o.bounds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

// logFrame reports frame statistics at debug level.
func logFrame(frame int, stats render.FrameStats) {
	slog.Debug("frame",
		"n", frame,
		"meshes", stats.MeshesDrawn,
		"culled", stats.MeshesCulled,
		"inside", stats.MeshesInside,
		"triangles", stats.Triangles,
		"clipRejected", stats.ClipRejected,
		"degenerate", stats.Degenerate,
		"backFacing", stats.BackFacing,
		"pixelsTested", stats.PixelsTested,
		"pixelsShaded", stats.PixelsShaded,
	)
}

func describe(stats render.FrameStats) string {
	return fmt.Sprintf("%d triangles, %d pixels shaded", stats.Triangles, stats.PixelsShaded)
}
