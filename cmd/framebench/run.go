package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/framesignal/config"
	"github.com/delaneyj/framesignal/reactive"
	"github.com/delaneyj/framesignal/telemetry"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func runCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := workloadFrom(cmd)

	start := time.Now()
	log.Printf("running %s for %d frames", w, w.frames)
	defer func() {
		log.Printf("finished in %v", time.Since(start))
	}()

	tach, summary, g := drive(cfg, w, nil)
	calc := tach.Calc()

	tbl := table.NewWriter()
	tbl.SetTitle("Frame latency")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"workload", "frames", "avg", "min", "p50", "p75", "p99", "max"})
	tbl.AppendRow(table.Row{
		w.String(),
		summary.frames,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P50,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
	tbl.Render()

	last := summary.last
	sched := table.NewWriter()
	sched.SetTitle("Scheduler")
	sched.SetOutputMirror(os.Stdout)
	sched.AppendHeader(table.Row{"stat", "value"})
	sched.AppendRows([]table.Row{
		{"high runs", g.runs[reactive.PriorityHigh]},
		{"normal runs", g.runs[reactive.PriorityNormal]},
		{"low runs", g.runs[reactive.PriorityLow]},
		{"forced low frames", summary.forcedLow},
		{"high bursts", summary.highBursts},
		{"normal budget", fmt.Sprintf("%.2fms", last.NormalBudgetMs)},
		{"low budget", fmt.Sprintf("%.2fms", last.LowBudgetMs)},
		{"frame ewma", fmt.Sprintf("%.2fms", last.EWMAFrameMs)},
	})
	sched.Render()
	return nil
}

// drive writes, then runs one frame, w.frames times, and finally lets any
// leftover work drain. Only the driven frames are timed.
func drive(cfg config.Config, w workload, sink reactive.Telemetry) (*tachymeter.Tachymeter, *frameSummary, *graph) {
	summary := &frameSummary{}

	host := reactive.NewManualFrameHost()
	opts := append(cfg.Options(),
		reactive.WithFrameHost(host),
		reactive.WithTelemetry(telemetry.Multi{summary, sink}),
		reactive.WithErrorHook(func(err error, where reactive.ErrorWhere) error {
			log.Panic(err)
			return err
		}),
	)
	rs := reactive.CreateReactiveSystem(opts...)
	g := w.build(rs)

	tach := tachymeter.New(&tachymeter.Config{Size: max(w.frames, 1)})
	for range w.frames {
		g.write(rs, w.writes)
		start := time.Now()
		host.Advance()
		tach.AddTime(time.Since(start))
	}
	if n := host.AdvanceUntilIdle(w.frames + 100); n > 0 {
		log.Printf("drained leftover work in %d frames", n)
	}
	return tach, summary, g
}
