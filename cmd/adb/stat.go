package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/vfs"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <file...>",
	Short: "map each container and graph Map call latency",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	m := adb.NewMetrics(nil)
	for _, path := range args {
		db, err := adb.Map(vfs.Default, path, nil, 0, nil, m)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		db.Free()
	}

	hist := m.MapLatencyHistogram()
	if hist == nil || hist.TotalCount() == 0 {
		fmt.Println("no samples")
		return nil
	}
	var series []float64
	for _, b := range hist.Distribution() {
		if b.Count > 0 {
			series = append(series, float64(b.To))
		}
	}
	fmt.Println(asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Caption("map latency (us)")))
	fmt.Printf("p50=%dus p99=%dus max=%dus\n",
		hist.ValueAtQuantile(50), hist.ValueAtQuantile(99), hist.Max())
	return nil
}
