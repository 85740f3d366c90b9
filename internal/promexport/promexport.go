// Package promexport exposes a progress tree's state as Prometheus metrics.
//
// The exporter is a read-only adapter over the core's snapshot surface: a
// custom collector reads the tree on every scrape rather than mirroring state
// into registered gauges, so it can never drift from the tree.
package promexport

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/worktally/worktally/internal/progress"
)

// Collector reads a progress tree on scrape and exports root and per-task
// gauges. Task keys become the "task" label via their default string form.
type Collector[K comparable] struct {
	tree *progress.Tree[K]

	rootFraction  *prometheus.Desc
	rootCompleted *prometheus.Desc
	rootTotal     *prometheus.Desc

	taskFraction  *prometheus.Desc
	taskCompleted *prometheus.Desc
	taskTotal     *prometheus.Desc
}

// NewCollector creates a Collector over the given tree.
func NewCollector[K comparable](tree *progress.Tree[K]) *Collector[K] {
	taskLabels := []string{"task"}
	return &Collector[K]{
		tree: tree,
		rootFraction: prometheus.NewDesc(
			"worktally_fraction_completed",
			"Fraction of the overall operation completed.",
			nil, nil,
		),
		rootCompleted: prometheus.NewDesc(
			"worktally_completed_units",
			"Completed unit count of the root aggregate.",
			nil, nil,
		),
		rootTotal: prometheus.NewDesc(
			"worktally_total_units",
			"Total unit count of the root aggregate.",
			nil, nil,
		),
		taskFraction: prometheus.NewDesc(
			"worktally_task_fraction_completed",
			"Fraction of one task completed.",
			taskLabels, nil,
		),
		taskCompleted: prometheus.NewDesc(
			"worktally_task_completed_units",
			"Completed unit count of one task.",
			taskLabels, nil,
		),
		taskTotal: prometheus.NewDesc(
			"worktally_task_total_units",
			"Total unit count of one task.",
			taskLabels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[K]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rootFraction
	ch <- c.rootCompleted
	ch <- c.rootTotal
	ch <- c.taskFraction
	ch <- c.taskCompleted
	ch <- c.taskTotal
}

// Collect implements prometheus.Collector. Fractions are exported raw, the
// same unclamped values the core computes.
func (c *Collector[K]) Collect(ch chan<- prometheus.Metric) {
	root := c.tree.Root()
	ch <- prometheus.MustNewConstMetric(c.rootFraction, prometheus.GaugeValue, root.Fraction)
	ch <- prometheus.MustNewConstMetric(c.rootCompleted, prometheus.GaugeValue, float64(root.Completed))
	ch <- prometheus.MustNewConstMetric(c.rootTotal, prometheus.GaugeValue, float64(root.Total))

	for _, key := range c.tree.Keys() {
		snap, ok := c.tree.Child(key)
		if !ok {
			continue
		}
		label := fmt.Sprint(key)
		ch <- prometheus.MustNewConstMetric(c.taskFraction, prometheus.GaugeValue, snap.Fraction, label)
		ch <- prometheus.MustNewConstMetric(c.taskCompleted, prometheus.GaugeValue, float64(snap.Completed), label)
		ch <- prometheus.MustNewConstMetric(c.taskTotal, prometheus.GaugeValue, float64(snap.Total), label)
	}
}

// Handler returns an HTTP handler serving the exporter on its own registry.
func Handler[K comparable](tree *progress.Tree[K]) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(tree))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve blocks serving /metrics for the tree on addr.
func Serve[K comparable](addr string, tree *progress.Tree[K]) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(tree))
	return http.ListenAndServe(addr, mux)
}
