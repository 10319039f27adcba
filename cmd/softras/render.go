package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/taigrr/softras/pkg/imageio"
	"github.com/taigrr/softras/pkg/scene"
)

func newRenderCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single frame to an image file",
		Example: `  softras render -c head.yaml -o head.png
  softras render --mode diffuse --normal-map -o head.bmp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := scene.Build(cfg)
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}

			stats, err := s.Render(cmd.Context())
			if err != nil {
				return err
			}
			logFrame(0, stats)

			if err := imageio.Save(output, s.Image()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%dx%d, %s)\n", output, cfg.Width, cfg.Height, describe(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "out.png", "output image (.png, .bmp, .webp, .jpg)")
	return cmd
}

func newTurntableCmd(opts *options) *cobra.Command {
	var (
		frames int
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "turntable",
		Short: "Render a spinning frame sequence",
		Long: `Render frames of the scene spinning about the world Y axis. The spin
eases in from rest on a spring, as configured in the turntable section.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				cfg.Turntable.Frames = frames
			}
			if _, err := imageio.FormatFromPath("frame." + format); err != nil {
				return err
			}

			s, err := scene.Build(cfg)
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}

			n := cfg.Turntable.Frames
			bar := progressbar.NewOptions(n,
				progressbar.OptionSetDescription("rendering"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
			)

			for i := range n {
				s.Step()
				stats, err := s.Render(cmd.Context())
				if err != nil {
					return err
				}
				logFrame(i, stats)

				path := filepath.Join(outDir, fmt.Sprintf("frame_%04d.%s", i, format))
				if err := imageio.Save(path, s.Image()); err != nil {
					return err
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %d frames to %s\n", n, outDir)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&frames, "frames", "f", 36, "number of frames")
	f.StringVarP(&outDir, "output", "o", "frames", "output directory")
	f.StringVar(&format, "format", "png", "frame image format: png, bmp, webp, jpg")
	return cmd
}
