package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sparks-pathtracer/pkg/config"
	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/renderer"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
	"github.com/df07/go-sparks-pathtracer/web/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sparks"
	app.Usage = "render built-in scenes with a CPU path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML render configuration file",
		},
	}
	sceneFlag := cli.StringFlag{
		Name:  "scene, s",
		Usage: "built-in scene name (see the scenes command)",
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Render a built-in scene progressively and write the final pass to
<output_dir>/<scene>/render_<job id>.png. Flags override the config file.

With --watch the scene is rendered again every time the config file changes,
until interrupted.`,
			Flags: []cli.Flag{
				sceneFlag,
				cli.IntFlag{Name: "width", Usage: "image width"},
				cli.IntFlag{Name: "height", Usage: "image height"},
				cli.IntFlag{Name: "spp", Usage: "samples per pixel"},
				cli.IntFlag{Name: "passes", Usage: "progressive passes"},
				cli.IntFlag{Name: "seed", Usage: "random seed"},
				cli.IntFlag{Name: "workers", Usage: "render workers, 0 for one per CPU"},
				cli.StringFlag{Name: "out, o", Usage: "output directory"},
				cli.BoolFlag{Name: "watch, w", Usage: "re-render when the config file changes"},
			},
			Action: renderAction,
		},
		{
			Name:  "pick",
			Usage: "trace the camera ray through a pixel and print the hit",
			Flags: []cli.Flag{
				sceneFlag,
				cli.IntFlag{Name: "x", Usage: "pixel column"},
				cli.IntFlag{Name: "y", Usage: "pixel row"},
				cli.Float64Flag{Name: "time", Usage: "ray time within the shutter"},
			},
			Action: pickAction,
		},
		{
			Name:  "serve",
			Usage: "serve progressive renders and pixel inspection over HTTP",
			Description: `
Start a web server with these endpoints:

  /api/render   progressive render streamed as server-sent events
  /api/inspect  pixel picking as JSON
  /api/scenes   the built-in scenes
  /api/health   liveness check

Render and inspect requests start from the config file and accept
scene, width and height query parameters.`,
			Flags: []cli.Flag{
				cli.IntFlag{Name: "port, p", Value: 8080, Usage: "port to listen on"},
			},
			Action: serveAction,
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: scenesAction,
		},
	}
	return app
}

// loadConfig reads the global --config file, if any, and applies command flags
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	applyFlags(c, &cfg)
	return cfg, cfg.Validate()
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("scene") {
		cfg.Scene = c.String("scene")
	}
	if c.IsSet("width") {
		cfg.Render.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Render.Height = c.Int("height")
	}
	if c.IsSet("spp") {
		cfg.Render.Samples = c.Int("spp")
	}
	if c.IsSet("passes") {
		cfg.Render.Passes = c.Int("passes")
	}
	if c.IsSet("seed") {
		cfg.Render.Seed = uint64(c.Int("seed"))
	}
	if c.IsSet("workers") {
		cfg.Render.Workers = c.Int("workers")
	}
	if c.IsSet("out") {
		cfg.Render.OutputDir = c.String("out")
	}
}

// newLogger writes to stderr at the config level, raised by -v and -vv
func newLogger(c *cli.Context, cfg config.Config) *log.Logger {
	level := core.ParseLevel(cfg.LogLevel)
	if c.GlobalBool("v") && level > log.InfoLevel {
		level = log.InfoLevel
	}
	if c.GlobalBool("vv") {
		level = log.DebugLevel
	}
	return core.NewLogger(os.Stderr, level)
}

func renderAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := renderOnce(ctx, cfg, logger, c.App.Writer); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}

	path := c.GlobalString("config")
	if path == "" {
		return fmt.Errorf("%w: --watch needs --config", core.ErrInvalidConfig)
	}
	logger.Infof("watching %s for changes", path)
	return config.Watch(ctx, path, func(next config.Config) {
		applyFlags(c, &next)
		if err := next.Validate(); err != nil {
			logger.Errorf("config rejected: %v", err)
			return
		}
		if _, err := renderOnce(ctx, next, logger, c.App.Writer); err != nil {
			logger.Errorf("render failed: %v", err)
		}
	}, func(err error) {
		logger.Errorf("config reload failed: %v", err)
	})
}

// renderOnce renders cfg and prints where the image went
func renderOnce(ctx context.Context, cfg config.Config, logger core.Logger, out io.Writer) (renderer.Report, error) {
	s, err := cfg.BuildScene()
	if err != nil {
		return renderer.Report{}, err
	}
	s.LogSummary(logger)

	report, err := renderer.Render(ctx, renderer.Job{
		Scene:       s,
		Width:       cfg.Render.Width,
		Height:      cfg.Render.Height,
		Progressive: cfg.ProgressiveConfig(),
		Integrator:  cfg.IntegratorSettings(),
		OutputDir:   cfg.Render.OutputDir,
	}, logger, nil)
	if err != nil {
		return report, err
	}
	logger.Infof("render statistics\n%s", report.Table())
	fmt.Fprintf(out, "Render saved as %s\n", report.Output)
	return report, nil
}

func pickAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := cfg.BuildScene()
	if err != nil {
		return err
	}
	hit, ok, err := pick(s, cfg, c.Int("x"), c.Int("y"), c.Float64("time"))
	if err != nil {
		return err
	}
	out := c.App.Writer
	if !ok {
		fmt.Fprintf(out, "pixel (%d, %d): no hit\n", c.Int("x"), c.Int("y"))
		return nil
	}
	e := s.Entity(hit.EntityID)
	fmt.Fprintf(out, "pixel (%d, %d) hits entity %d %q (%s)\n", c.Int("x"), c.Int("y"), hit.EntityID, e.Name, e.ID)
	fmt.Fprintf(out, "  material  %s\n", e.Material.Type)
	fmt.Fprintf(out, "  distance  %.6g\n", hit.T)
	fmt.Fprintf(out, "  position  %v\n", hit.Position)
	fmt.Fprintf(out, "  normal    %v\n", hit.Normal)
	fmt.Fprintf(out, "  uv        (%.4f, %.4f)\n", hit.TexCoord.X, hit.TexCoord.Y)
	fmt.Fprintf(out, "  front     %t\n", hit.FrontFace)
	return nil
}

// pick traces the ray through the center of pixel (x, y) at the given time
func pick(s *scene.Scene, cfg config.Config, x, y int, time float64) (core.HitRecord, bool, error) {
	return renderer.Pick(s, cfg.IntegratorSettings(), cfg.Render.Width, cfg.Render.Height, x, y, time)
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := server.NewServer(c.Int("port"), cfg, logger)
	logger.Infof("visit http://localhost:%d/api/scenes", c.Int("port"))
	return srv.Start(ctx)
}

func scenesAction(c *cli.Context) error {
	table, err := scenesTable()
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, table)
	return nil
}

// scenesTable builds every built-in scene and tabulates its size
func scenesTable() (string, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Scene", "Description", "Entities", "Faces", "BVH nodes", "Lights"})
	for _, b := range scene.Builtins() {
		s, err := scene.Build(b.Name)
		if err != nil {
			return "", err
		}
		st := s.Stats()
		table.Append([]string{
			b.Name,
			b.Description,
			fmt.Sprintf("%d", st.Entities),
			fmt.Sprintf("%d", st.Faces),
			fmt.Sprintf("%d", st.BVHNodes),
			fmt.Sprintf("%d", st.Lights),
		})
	}
	table.Render()
	return buf.String(), nil
}
