package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/openfluke/rsqrt/gpu"
	"github.com/openfluke/rsqrt/pods"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

var (
	appName = "rsqrt"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

// The fixed computation performed by the demo.
var defaultInput = []float32{4.0, 25.0, 100.0}

// verifyTolerance bounds the relative error accepted by --verify.
const verifyTolerance = 1e-3

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetOutput(os.Stderr)
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp(os.Stdout).Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "compute 1/sqrt(x) of [4, 25, 100] with a GPU compute kernel"
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "power-preference",
			EnvVar: "RSQRT_POWER_PREFERENCE",
			Usage:  "Adapter power preference: 'high-performance', 'low-power' or empty to try both",
		},
		cli.BoolFlag{
			Name:   "force-fallback-adapter",
			EnvVar: "RSQRT_FORCE_FALLBACK_ADAPTER",
			Usage:  "Request a software fallback adapter",
		},
		cli.StringFlag{
			Name:   "prefer-vendor",
			EnvVar: "RSQRT_PREFER_VENDOR",
			Usage:  "Pick the first adapter whose name or vendor contains this string",
		},
		cli.UintFlag{
			Name:   "workgroup-size",
			EnvVar: "RSQRT_WORKGROUP_SIZE",
			Usage:  "Kernel workgroup size (power of two); 0 uses the adapter recommendation",
		},
		cli.DurationFlag{
			Name:   "readback-timeout",
			EnvVar: "RSQRT_READBACK_TIMEOUT",
			Usage:  "Bound the wait for result readback; 0 waits until the device is done",
		},
		cli.BoolFlag{
			Name:   "cpu",
			EnvVar: "RSQRT_CPU",
			Usage:  "Compute on the CPU reference path instead of the GPU",
		},
		cli.BoolFlag{
			Name:   "verify",
			EnvVar: "RSQRT_VERIFY",
			Usage:  "Check the results against the CPU reference",
		},
		cli.BoolFlag{
			Name:   "info",
			EnvVar: "RSQRT_INFO",
			Usage:  "Print the selected adapter report as JSON on stderr",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  "warning",
			EnvVar: "RSQRT_LOG_LEVEL",
			Usage:  "The log level (debug, info, warning, error)",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	level, err := logrus.ParseLevel(appCtx.String("log-level"))
	if err != nil {
		return xerrors.Errorf("parse log level: %w", err)
	}
	logger.Logger.SetLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ec := pods.NewContext(ctx)
	if !appCtx.Bool("cpu") {
		gctx, err := gpu.NewContext(gpu.Config{
			PowerPreference:      appCtx.String("power-preference"),
			ForceFallbackAdapter: appCtx.Bool("force-fallback-adapter"),
			PreferVendor:         appCtx.String("prefer-vendor"),
			WorkgroupSize:        uint32(appCtx.Uint("workgroup-size")),
			ReadbackTimeout:      appCtx.Duration("readback-timeout"),
			Logger:               logger,
		})
		if err != nil {
			return err
		}
		defer gctx.Release()

		if appCtx.Bool("info") {
			js, err := gctx.Report.JSON()
			if err != nil {
				return xerrors.Errorf("render adapter report: %w", err)
			}
			_, _ = io.WriteString(os.Stderr, js+"\n")
		}
		ec = ec.WithGPU(gpu.Runner{Ctx: gctx})
	}

	input := append([]float32(nil), defaultInput...)
	output, err := compute(ec, input)
	if err != nil {
		return err
	}

	if appCtx.Bool("verify") {
		if i := pods.Mismatch(output, pods.InverseSqrtCPU(input), verifyTolerance); i >= 0 {
			return xerrors.Errorf("verification failed at element %d: got %v for input %v", i, output[i], input[i])
		}
		logger.Info("results match the CPU reference")
	}

	if err = writeVector(appCtx.App.Writer, "input", input); err != nil {
		return err
	}
	return writeVector(appCtx.App.Writer, "output", output)
}

func compute(ec *pods.ExecContext, input []float32) ([]float32, error) {
	pod := pods.InverseSqrtPod{}
	res, err := pod.Run(ec, pods.InverseSqrtIn{X: input})
	if err != nil {
		return nil, err
	}
	return res.(pods.InverseSqrtOut).Y, nil
}
