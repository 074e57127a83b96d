package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/delaneyj/framesignal/telemetry"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli/v3"
)

func reportCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := workloadFrom(cmd)
	log.Printf("collecting metrics for %s over %d frames", w, w.frames)

	reg := prometheus.NewRegistry()
	drive(cfg, w, telemetry.NewMetrics(telemetry.WithRegistry(reg)))

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"metric", "labels", "value"})
	for _, f := range families {
		for _, m := range f.GetMetric() {
			table.Append([]string{f.GetName(), labels(m), value(f.GetType(), m)})
		}
	}
	table.Render()
	return nil
}

func labels(m *dto.Metric) string {
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	return strings.Join(parts, ",")
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return humanize.Comma(int64(m.GetCounter().GetValue()))
	case dto.MetricType_GAUGE:
		return humanize.FtoaWithDigits(m.GetGauge().GetValue(), 6)
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		if h.GetSampleCount() == 0 {
			return "no samples"
		}
		mean := time.Duration(h.GetSampleSum() / float64(h.GetSampleCount()) * float64(time.Second))
		return fmt.Sprintf("%s samples, mean %v", humanize.Comma(int64(h.GetSampleCount())), mean)
	default:
		return "-"
	}
}
