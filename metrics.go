// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package alloccnt

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intuitivelabs/alloccnt/mem"
)

var (
	scopesDesc = prometheus.NewDesc(
		"alloccnt_scopes_total",
		"Number of allocation scopes entered",
		[]string{"scope"}, nil)
	violationsDesc = prometheus.NewDesc(
		"alloccnt_violations_total",
		"Number of allocation scopes that failed",
		[]string{"scope"}, nil)
	stepsDesc = prometheus.NewDesc(
		"alloccnt_async_steps_total",
		"Number of resumption steps of guarded futures",
		nil, nil)
	completedDesc = prometheus.NewDesc(
		"alloccnt_async_completed_total",
		"Number of guarded futures run to completion",
		nil, nil)
	poolBytesDesc = prometheus.NewDesc(
		"alloccnt_pool_bytes",
		"Bytes currently handed out by the backing pool",
		nil, nil)
	poolCallsDesc = prometheus.NewDesc(
		"alloccnt_pool_calls_total",
		"Calls made to the backing pool",
		[]string{"op"}, nil)
)

// Collector exports Stats and, optionally, a backing mem.Pool's
// statistics as prometheus metrics.
type Collector struct {
	pool *mem.Pool
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector for Stats. pool can be nil.
func NewCollector(pool *mem.Pool) *Collector {
	return &Collector{pool: pool}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- scopesDesc
	ch <- violationsDesc
	ch <- stepsDesc
	ch <- completedDesc
	if c.pool != nil {
		ch <- poolBytesDesc
		ch <- poolCallsDesc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for m := Ignore; m < ModeBad; m++ {
		ch <- prometheus.MustNewConstMetric(scopesDesc,
			prometheus.CounterValue, float64(Stats.Entered[m].Get()), m.Scope())
		ch <- prometheus.MustNewConstMetric(violationsDesc,
			prometheus.CounterValue, float64(Stats.Violations[m].Get()), m.Scope())
	}
	ch <- prometheus.MustNewConstMetric(stepsDesc,
		prometheus.CounterValue, float64(Stats.Steps.Get()))
	ch <- prometheus.MustNewConstMetric(completedDesc,
		prometheus.CounterValue, float64(Stats.Completed.Get()))
	if c.pool == nil {
		return
	}
	s := &c.pool.Stats
	ch <- prometheus.MustNewConstMetric(poolBytesDesc,
		prometheus.GaugeValue, float64(s.TotalSize.Get()))
	for _, v := range [...]struct {
		op string
		c  *mem.StatCounter
	}{
		{"alloc", &s.NewCalls},
		{"realloc", &s.ReallocCalls},
		{"free", &s.FreeCalls},
		{"failure", &s.Failures},
	} {
		ch <- prometheus.MustNewConstMetric(poolCallsDesc,
			prometheus.CounterValue, float64(v.c.Get()), v.op)
	}
}
