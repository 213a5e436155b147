// Package stats periodically logs runtime figures of the daemon process and
// dumps the default Prometheus registry when profiling ends.
package stats

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1 << 20

	dumpFile = "metrics"
)

// EnableMemoryStatistics logs a runtime snapshot every interval until ctx is
// done, then appends the registered metrics to dir. The returned channel is
// closed once the metrics are dumped.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dir string,
) <-chan struct{} {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				LogRuntime()
			case <-ctx.Done():
				if err := DumpMetrics(dir); err != nil {
					log.WithError(err).Warn("failed to dump metrics")
				}
				return
			}
		}
	}()
	return done
}

// LogRuntime logs memory usage and the number of running goroutines.
func LogRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	log.WithFields(log.Fields{
		"total_alloc_mb": float64(m.TotalAlloc) / megabyte,
		"heap_alloc_mb":  float64(m.HeapAlloc) / megabyte,
		"mallocs":        m.Mallocs,
		"frees":          m.Frees,
		"goroutines":     runtime.NumGoroutine(),
	}).Info("runtime stats")
}

// DumpMetrics appends a timestamped snapshot of the default Prometheus
// registry to dir/metrics.
func DumpMetrics(dir string) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(
		filepath.Join(dir, dumpFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %s\n", time.Now().UTC().Format(time.RFC3339))
	for _, family := range families {
		fmt.Fprintln(w, family.String())
	}
	return w.Flush()
}
