package main

import (
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"colorbook/internal/config"
	"colorbook/internal/export"
	cbnet "colorbook/internal/net"
	"colorbook/internal/state"
	"colorbook/internal/ui"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "colorbook [image]",
		Short:         "Color line art with fill, brush and eraser",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDesktop,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $UserConfigDir/colorbook/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine diagnostics")

	root.AddCommand(
		&cobra.Command{
			Use:   "desktop [image]",
			Short: "Open the desktop coloring window",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runDesktop,
		},
		serveCmd(),
		discoverCmd(),
		flattenCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) { return config.Load(configPath) }

// engineLogger is nil unless --verbose is set, which keeps sessions silent.
func engineLogger() *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func engineOptions(cfg config.Config) []state.Option {
	opts := cfg.EngineOptions()
	if l := engineLogger(); l != nil {
		opts = append(opts, state.WithLogger(l))
	}
	return opts
}

func runDesktop(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	log.Println("Starting desktop app")
	return ui.RunApp(cfg, path)
}

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve coloring sessions over WebSocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			ln, err := net.Listen("tcp", cfg.Server.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
			}
			port := ln.Addr().(*net.TCPAddr).Port

			if cfg.Server.MDNS {
				server, err := cbnet.Advertise(port)
				if err != nil {
					log.Printf("[MDNS] advertise failed: %v", err)
				} else {
					defer server.Shutdown()
					log.Printf("[MDNS] advertising on port %d", port)
				}
			}
			log.Printf("[BRIDGE] share link: %s", cbnet.ShareURL(port))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bridge := cbnet.NewBridge(cbnet.BridgeConfig{
				Engine:    cfg.EngineOptions(),
				Frames:    cfg.Server.Frames,
				FrameRate: cfg.Engine.FrameRate,
				Loader:    cbnet.NewLoader(cfg.Server.FetchTimeout, cfg.Server.MaxSourceBytes),
				Logger:    engineLogger(),
			})
			return bridge.Serve(ctx, ln)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	return cmd
}

func discoverCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List coloring bridges on the local network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			found := 0
			err := cbnet.Browse(cmd.Context(), timeout, func(p cbnet.Peer) {
				found++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.URL())
			})
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			if found == 0 {
				log.Println("[MDNS] no bridges found")
			}
			return nil
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "how long to listen for answers")
	return cmd
}

// fillSpec is one --fill argument: "x,y,#RRGGBB".
type fillSpec struct {
	x, y  int
	color string
}

func parseFill(s string) (fillSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fillSpec{}, fmt.Errorf("bad --fill %q: want x,y,#RRGGBB", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return fillSpec{}, fmt.Errorf("bad --fill %q: coordinates must be integers", s)
	}
	return fillSpec{x: x, y: y, color: strings.TrimSpace(parts[2])}, nil
}

func flattenCmd() *cobra.Command {
	var fills []string
	var restore bool
	cmd := &cobra.Command{
		Use:   "flatten <in> <out.png|out.pdf>",
		Short: "Apply fills to an image without a window and export it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			specs := make([]fillSpec, 0, len(fills))
			for _, f := range fills {
				spec, err := parseFill(f)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}
			return flatten(cfg, args[0], args[1], specs, restore)
		},
	}
	cmd.Flags().StringArrayVar(&fills, "fill", nil, "flood fill at x,y with a color, e.g. 120,80,#FF6B6B (repeatable)")
	cmd.Flags().BoolVar(&restore, "saved", false, "treat the input as previously saved work")
	return cmd
}

func flatten(cfg config.Config, in, out string, fills []fillSpec, restore bool) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	sess := state.New(engineOptions(cfg)...)
	if err := sess.LoadImageData(f, restore); err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	for _, fs := range fills {
		if err := sess.SetColorHex(fs.color); err != nil {
			return err
		}
		if !sess.Fill(fs.x, fs.y) {
			log.Printf("fill at %d,%d changed nothing", fs.x, fs.y)
		}
	}
	img, err := sess.Export()
	if err != nil {
		return err
	}
	if err := export.WriteFile(out, img); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Printf("Wrote %s (%dx%d)", out, img.Rect.Dx(), img.Rect.Dy())
	return nil
}
