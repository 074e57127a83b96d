package main

import (
	"context"
	"log"
	"os"

	"github.com/delaneyj/framesignal/config"
	"github.com/urfave/cli/v3"
)

const (
	configKey = "config"
	widthKey  = "width"
	heightKey = "height"
	framesKey = "frames"
	writesKey = "writes"
)

func main() {
	cmd := &cli.Command{
		Name:  "framebench",
		Usage: "Drive the frame scheduler with a synthetic computed graph",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run frames on a manual host and print frame latency percentiles",
				Flags:  workloadFlags(),
				Action: runCommand,
			},
			{
				Name:   "report",
				Usage:  "Run frames with the Prometheus collector attached and print what it gathered",
				Flags:  workloadFlags(),
				Action: reportCommand,
			},
			{
				Name:   "live",
				Usage:  "Run frames on a real frame loop at the configured refresh interval",
				Flags:  workloadFlags(),
				Action: liveCommand,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func workloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  configKey,
			Usage: "YAML scheduler config; defaults apply when empty",
		},
		&cli.UintFlag{
			Name:  widthKey,
			Usage: "Number of computed chains, each ending in an effect",
			Value: 100,
		},
		&cli.UintFlag{
			Name:  heightKey,
			Usage: "Computeds per chain",
			Value: 10,
		},
		&cli.UintFlag{
			Name:  framesKey,
			Usage: "Frames to drive",
			Value: 600,
		},
		&cli.UintFlag{
			Name:  writesKey,
			Usage: "Source writes batched before each frame, at least one",
			Value: 1,
		},
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := cmd.String(configKey)
	if path == "" {
		return config.Default(), nil
	}
	c, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Printf("loaded scheduler config from %s", path)
	return c, nil
}

func workloadFrom(cmd *cli.Command) workload {
	return workload{
		width:  int(cmd.Uint(widthKey)),
		height: int(cmd.Uint(heightKey)),
		frames: int(cmd.Uint(framesKey)),
		writes: max(1, int(cmd.Uint(writesKey))),
	}
}
