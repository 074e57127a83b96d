package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/delaneyj/framesignal/frameloop"
	"github.com/delaneyj/framesignal/reactive"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func liveCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := workloadFrom(cmd)
	log.Printf("running %s live at %v per frame", w, cfg.FrameInterval())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	loop := frameloop.New(frameloop.WithInterval(cfg.FrameInterval()), frameloop.WithLogger(logger))
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var (
		rs      *reactive.ReactiveSystem
		g       *graph
		summary = &frameSummary{}
	)
	err = loop.Do(ctx, func() error {
		opts := append(cfg.Options(),
			reactive.WithFrameHost(loop),
			reactive.WithTelemetry(summary),
			reactive.WithLogger(logger),
		)
		rs = reactive.CreateReactiveSystem(opts...)
		g = w.build(rs)
		return nil
	})
	if err != nil {
		return err
	}

	start := time.Now()
	for range w.frames {
		before := loop.Frames()
		if err := loop.Do(ctx, func() error {
			g.write(rs, w.writes)
			return nil
		}); err != nil {
			return err
		}
		for loop.Frames() == before {
			time.Sleep(cfg.FrameInterval() / 4)
		}
	}
	elapsed := time.Since(start)

	var st reactive.Stats
	if err := loop.Do(ctx, func() error {
		st = rs.Stats()
		return nil
	}); err != nil {
		return err
	}
	cancel()
	<-done

	tbl := table.NewWriter()
	tbl.SetTitle("Live frames")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"workload", "frames", "elapsed", "fps", "forced low", "queued"})
	tbl.AppendRow(table.Row{
		w.String(),
		loop.Frames(),
		elapsed.Round(time.Millisecond),
		fmt.Sprintf("%.1f", float64(loop.Frames())/elapsed.Seconds()),
		summary.forcedLow,
		st.Queues.Total(),
	})
	tbl.Render()
	return nil
}
