// Package metrics is a small Prometheus-compatible registry of counters and
// histograms, rendered in the text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuckets are histogram upper bounds in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Counter only goes up.
type Counter struct{ val atomic.Int64 }

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

// Histogram counts observations into fixed cumulative buckets.
type Histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

// Observe records v.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	if i := sort.SearchFloat64s(h.bounds, v); i < len(h.bounds) {
		h.counts[i]++
	}
}

// Since observes the seconds elapsed since t.
func (h *Histogram) Since(t time.Time) { h.Observe(time.Since(t).Seconds()) }

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

type family struct {
	help    string
	typ     string
	buckets []float64
	series  map[string]any // label set -> *Counter or *Histogram
}

// Registry holds metric families keyed by name. Series within a family are
// told apart by their label set.
type Registry struct {
	mu       sync.Mutex
	families map[string]*family
	order    []string
}

func New() *Registry {
	return &Registry{families: make(map[string]*family)}
}

func (r *Registry) family(name, typ, help string, buckets []float64) *family {
	f, ok := r.families[name]
	if !ok {
		f = &family{help: help, typ: typ, buckets: buckets, series: make(map[string]any)}
		r.families[name] = f
		r.order = append(r.order, name)
	}
	if f.typ != typ {
		panic(fmt.Sprintf("metrics: %s registered as %s, requested as %s", name, f.typ, typ))
	}
	return f
}

// Counter returns the counter for name and the label pairs kv, creating it
// on first use.
func (r *Registry) Counter(name, help string, kv ...string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.family(name, "counter", help, nil)
	key := labels(kv)
	if c, ok := f.series[key].(*Counter); ok {
		return c
	}
	c := &Counter{}
	f.series[key] = c
	return c
}

// Histogram returns the histogram for name and kv. Buckets are fixed by the
// first call for a name; nil means DefaultBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64, kv ...string) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.family(name, "histogram", help, buckets)
	key := labels(kv)
	if h, ok := f.series[key].(*Histogram); ok {
		return h
	}
	bounds := append([]float64(nil), f.buckets...)
	sort.Float64s(bounds)
	h := &Histogram{bounds: bounds, counts: make([]uint64, len(bounds))}
	f.series[key] = h
	return h
}

// labels renders k="v" pairs without braces. An odd trailing key is dropped.
func labels(kv []string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", kv[i], kv[i+1])
	}
	return b.String()
}

func braced(ls string) string {
	if ls == "" {
		return ""
	}
	return "{" + ls + "}"
}

// Render returns every family in registration order, series sorted by labels.
func (r *Registry) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, name := range r.order {
		f := r.families[name]
		if f.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", name, f.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, f.typ)

		keys := make([]string, 0, len(f.series))
		for k := range f.series {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch m := f.series[k].(type) {
			case *Counter:
				fmt.Fprintf(&b, "%s%s %d\n", name, braced(k), m.Value())
			case *Histogram:
				writeHistogram(&b, name, k, m)
			}
		}
	}
	return b.String()
}

func writeHistogram(b *strings.Builder, name, ls string, h *Histogram) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sep := ""
	if ls != "" {
		sep = ","
	}
	var cumulative uint64
	for i, bound := range h.bounds {
		cumulative += h.counts[i]
		fmt.Fprintf(b, "%s_bucket{%s%sle=\"%g\"} %d\n", name, ls, sep, bound, cumulative)
	}
	fmt.Fprintf(b, "%s_bucket{%s%sle=\"+Inf\"} %d\n", name, ls, sep, h.count)
	fmt.Fprintf(b, "%s_sum%s %g\n", name, braced(ls), h.sum)
	fmt.Fprintf(b, "%s_count%s %d\n", name, braced(ls), h.count)
}

// Handler serves Render as a Prometheus scrape target.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}
