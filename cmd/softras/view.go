package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/softras/pkg/imageio"
	"github.com/taigrr/softras/pkg/scene"
)

const viewHelp = `Controls:
  M           - Cycle display mode (observed area, diffuse, specular, combined)
  N           - Toggle normal map
  R           - Toggle rotation
  0           - Reset rotation
  X           - Toggle wireframe overlay
  B           - Toggle bounds overlay
  W/S         - Move camera forward/back
  A/D         - Move camera left/right
  Q/E         - Turn camera left/right
  P           - Save a screenshot
  Esc         - Quit`

// moveStep and turnStep are the camera increments per key press.
const (
	moveStep = 0.1
	turnStep = 0.05
)

func newViewCmd(opts *options) *cobra.Command {
	var (
		fps     int
		logPath string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Interactive terminal viewer",
		Long:  "Render the scene live in the terminal using half-block cells.\n\n" + viewHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fps") {
				fps = cfg.Turntable.FPS
			}
			s, err := scene.Build(cfg)
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}
			restore, err := redirectLogs(logPath, opts.level())
			if err != nil {
				return err
			}
			defer restore()
			return runView(cmd.Context(), s, fps)
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	cmd.Flags().StringVar(&logPath, "log", "", "write logs to this file while the viewer runs (discarded otherwise)")
	return cmd
}

// redirectLogs points the default logger at path, or discards log output
// when path is empty, because the alt screen owns the terminal while the
// viewer runs. restore reinstates the previous logger and closes the file.
func redirectLogs(path string, level slog.Level) (restore func(), err error) {
	prev := slog.Default()

	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() { slog.SetDefault(prev) }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() {
		slog.SetDefault(prev)
		if err := f.Close(); err != nil {
			prev.Error("close log file", "error", err)
		}
	}, nil
}

// viewer owns the scene while the terminal loop runs. Input is applied
// between frames on the loop goroutine.
type viewer struct {
	scene  *scene.Scene
	term   *uv.Terminal
	width  int
	height int
	frame  int
}

func runView(ctx context.Context, s *scene.Scene, fps int) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}()

	v := &viewer{scene: s, term: term}
	v.resize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if v.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if err := v.draw(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (v *viewer) resize(width, height int) {
	v.width, v.height = width, height
	v.scene.Resize(width, height*2)
}

// handle applies one input event and reports whether the viewer should
// quit.
func (v *viewer) handle(ev uv.Event) bool {
	s := v.scene
	cam := s.Camera

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		v.term.Resize(ev.Width, ev.Height)
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("m"):
			s.Shader.Mode = s.Shader.Mode.Next()
			slog.Debug("display mode", "mode", s.Shader.Mode)
		case ev.MatchString("n"):
			s.Shader.UseNormalMap = !s.Shader.UseNormalMap
		case ev.MatchString("r"):
			s.Turntable.Toggle()
		case ev.MatchString("0"):
			s.Turntable.Reset()
		case ev.MatchString("x"):
			s.Wireframe = !s.Wireframe
		case ev.MatchString("b"):
			s.Bounds = !s.Bounds
		case ev.MatchString("w", "up"):
			cam.MoveForward(moveStep)
		case ev.MatchString("s", "down"):
			cam.MoveForward(-moveStep)
		case ev.MatchString("a", "left"):
			cam.MoveRight(-moveStep)
		case ev.MatchString("d", "right"):
			cam.MoveRight(moveStep)
		case ev.MatchString("q"):
			cam.Rotate(0, -turnStep)
		case ev.MatchString("e"):
			cam.Rotate(0, turnStep)
		case ev.MatchString("p"):
			path := fmt.Sprintf("softras-%s.png", time.Now().Format("20060102-150405"))
			if err := imageio.Save(path, s.Image()); err != nil {
				slog.Error("save screenshot", "error", err)
			}
		}
	}
	return false
}

// draw renders and presents one frame.
func (v *viewer) draw(ctx context.Context) error {
	v.scene.Step()
	stats, err := v.scene.Render(ctx)
	if err != nil {
		return err
	}
	logFrame(v.frame, stats)
	v.frame++

	v.scene.Renderer.Color.Draw(v.term, uv.Rect(0, 0, v.width, v.height))
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
