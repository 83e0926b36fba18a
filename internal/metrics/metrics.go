// Package metrics exports store selection activity as Prometheus counters.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/viewdb/internal/store"
)

const namespace = "viewdb"

// Collector implements store.Observer with Prometheus counters.
type Collector struct {
	selections *prometheus.CounterVec
	scanned    *prometheus.CounterVec
	selected   *prometheus.CounterVec
	conflicts  *prometheus.CounterVec
}

var _ store.Observer = (*Collector)(nil)

// NewCollector creates the counters and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Selections and narrowings that produced a view.",
		}, []string{"op"}),
		scanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_scanned_total",
			Help:      "Records passed to a predicate.",
		}, []string{"op"}),
		selected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_selected_total",
			Help:      "Records kept by a predicate.",
		}, []string{"op"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrow_conflicts_total",
			Help:      "Selections rejected by the aliasing rules.",
		}, []string{"code"}),
	}

	for _, cv := range []prometheus.Collector{c.selections, c.scanned, c.selected, c.conflicts} {
		if err := reg.Register(cv); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveSelect implements store.Observer.
func (c *Collector) ObserveSelect(op store.Op, scanned, selected int) {
	label := string(op)
	c.selections.WithLabelValues(label).Inc()
	c.scanned.WithLabelValues(label).Add(float64(scanned))
	c.selected.WithLabelValues(label).Add(float64(selected))
}

// ObserveConflict implements store.Observer.
func (c *Collector) ObserveConflict(err *store.BorrowError) {
	c.conflicts.WithLabelValues(string(err.Code)).Inc()
}

// Snapshot flattens every counter and gauge in g into a map keyed by
// `name{label="value",...}`. Labels are sorted by name.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(pairs)

			key := mf.GetName()
			if len(pairs) > 0 {
				key += "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetUntyped() != nil:
				out[key] = m.GetUntyped().GetValue()
			}
		}
	}
	return out, nil
}
