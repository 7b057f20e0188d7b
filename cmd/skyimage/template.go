package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/skyimage/core"
	"github.com/signalsfoundry/skyimage/internal/logging"
	"github.com/signalsfoundry/skyimage/internal/observability"
	"github.com/signalsfoundry/skyimage/internal/rpcerr"
	"github.com/signalsfoundry/skyimage/model"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type templateFlags struct {
	visPath      string
	npixel       int
	nchan        int
	bandwidth    float64
	cellsize     float64
	noClamp      bool
	polarisation string
	frame        string
	equinox      float64
	format       string
	metrics      bool
}

func newTemplateCmd() *cobra.Command {
	var f templateFlags

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Build an empty image template for a visibility dataset and print its WCS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.visPath, "vis", "", "path to a visibility dataset (JSON)")
	flags.IntVar(&f.npixel, "npixel", core.DefaultNPixel, "pixels on each spatial axis")
	flags.IntVar(&f.nchan, "nchan", 0, "image channels (default: unique observed channels)")
	flags.Float64Var(&f.bandwidth, "channel-bandwidth", 0, "channel width in Hz (default: from dataset)")
	flags.Float64Var(&f.cellsize, "cellsize", 0, "cellsize in radians (default: half critical)")
	flags.BoolVar(&f.noClamp, "no-clamp", false, "keep cellsizes above the critical cellsize")
	flags.StringVar(&f.polarisation, "polarisation", "", "polarisation frame name or comma-separated components")
	flags.StringVar(&f.frame, "frame", "ICRS", "celestial reference frame")
	flags.Float64Var(&f.equinox, "equinox", 2000.0, "equinox of the celestial frame")
	flags.StringVar(&f.format, "format", "json", "output format: json or fits")
	flags.BoolVar(&f.metrics, "metrics", false, "write build metrics to stderr")
	_ = cmd.MarkFlagRequired("vis")

	return cmd
}

func runTemplate(cmd *cobra.Command, f templateFlags) error {
	ctx := cmd.Context()
	log := logging.NewFromEnv()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	reg := prometheus.NewRegistry()
	collector, err := observability.NewTemplateCollector(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if f.metrics {
		defer func() {
			if err := collector.WriteText(cmd.ErrOrStderr()); err != nil {
				log.Warn(ctx, "failed to write metrics", logging.Error(err))
			}
		}()
	}

	vis, err := loadVisibility(f.visPath)
	if err != nil {
		return err
	}

	opts, err := templateOptions(cmd, f)
	if err != nil {
		return err
	}

	builder := core.NewTemplateBuilder(core.WithLogger(log), core.WithMetrics(collector))
	im, err := builder.Build(ctx, vis, opts)
	if err != nil {
		log.Error(ctx, "template build failed",
			logging.String("code", rpcerr.Code(err).String()),
			logging.String("reason", core.FailureReason(err)),
			logging.Error(err),
		)
		return err
	}

	return writeTemplate(cmd.OutOrStdout(), im, f.format)
}

func loadVisibility(path string) (*model.BlockVisibility, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open visibility %q: %w", path, err)
	}
	defer fh.Close()

	var vis model.BlockVisibility
	if err := json.NewDecoder(fh).Decode(&vis); err != nil {
		return nil, fmt.Errorf("decode visibility %q: %w", path, err)
	}
	return &vis, nil
}

// templateOptions only sets overrides for flags given on the command line, so
// dataset-derived defaults apply otherwise.
func templateOptions(cmd *cobra.Command, f templateFlags) (core.TemplateOptions, error) {
	flags := cmd.Flags()
	opts := core.TemplateOptions{
		NPixel:  f.npixel,
		Frame:   f.frame,
		Equinox: f.equinox,
	}
	if flags.Changed("nchan") {
		opts.NChan = core.Int(f.nchan)
	}
	if flags.Changed("channel-bandwidth") {
		opts.ChannelBandwidth = core.Float64(f.bandwidth)
	}
	if flags.Changed("cellsize") {
		opts.Cellsize = core.Float64(f.cellsize)
	}
	if f.noClamp {
		opts.ClampCellsize = core.Bool(false)
	}
	if f.polarisation != "" {
		var names any = f.polarisation
		if strings.Contains(f.polarisation, ",") {
			parts := strings.Split(f.polarisation, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			names = parts
		}
		pol, err := model.PolarisationFrameFromNames(names)
		if err != nil {
			return opts, err
		}
		opts.PolarisationFrame = &pol
	}
	return opts, nil
}

func writeTemplate(w io.Writer, im *model.Image, format string) error {
	header := im.WCS.Header(im.Shape)

	switch strings.ToLower(format) {
	case "fits":
		for _, card := range header.Cards() {
			if _, err := fmt.Fprintln(w, card); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%-80s\n", "END")
		return err
	case "json", "":
		hs, err := header.Struct()
		if err != nil {
			return err
		}
		shape := make([]any, len(im.Shape))
		for i, s := range im.Shape {
			shape[i] = s
		}
		summary, err := structpb.NewStruct(map[string]any{
			"shape":              shape,
			"polarisation_frame": im.PolarisationFrame.String(),
			"polarisations":      toAnySlice(im.PolarisationFrame.Names()),
		})
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		summary.Fields["header"] = structpb.NewStructValue(hs)

		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshal template: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
