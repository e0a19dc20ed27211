package monitor_api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	PackagesEnqueued  *prometheus.Desc
	ProcessTriggers   *prometheus.Desc
	PreimagesStored   *prometheus.Desc
	PreimagesServed   *prometheus.Desc
	DbError           *prometheus.Desc
	ValidationErrors  *prometheus.Desc
	AuthFailures      *prometheus.Desc
	RateLimitedPeers  *prometheus.Desc
	QueueLimitReached *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "api",
	}

	return &Collector{
		PackagesEnqueued:  prometheus.NewDesc("packages_enqueued", "", nil, labels),
		ProcessTriggers:   prometheus.NewDesc("process_triggers", "", nil, labels),
		PreimagesStored:   prometheus.NewDesc("preimages_stored", "", nil, labels),
		PreimagesServed:   prometheus.NewDesc("preimages_served", "", nil, labels),
		DbError:           prometheus.NewDesc("error_db", "", nil, labels),
		ValidationErrors:  prometheus.NewDesc("error_validation", "", nil, labels),
		AuthFailures:      prometheus.NewDesc("error_auth", "", nil, labels),
		RateLimitedPeers:  prometheus.NewDesc("error_rate_limited", "", nil, labels),
		QueueLimitReached: prometheus.NewDesc("error_queue_limit_reached", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.PackagesEnqueued
	ch <- self.ProcessTriggers
	ch <- self.PreimagesStored
	ch <- self.PreimagesServed
	ch <- self.DbError
	ch <- self.ValidationErrors
	ch <- self.AuthFailures
	ch <- self.RateLimitedPeers
	ch <- self.QueueLimitReached
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.PackagesEnqueued, prometheus.CounterValue, float64(self.monitor.Report.Api.State.PackagesEnqueued.Load()))
	ch <- prometheus.MustNewConstMetric(self.ProcessTriggers, prometheus.CounterValue, float64(self.monitor.Report.Api.State.ProcessTriggers.Load()))
	ch <- prometheus.MustNewConstMetric(self.PreimagesStored, prometheus.CounterValue, float64(self.monitor.Report.Api.State.PreimagesStored.Load()))
	ch <- prometheus.MustNewConstMetric(self.PreimagesServed, prometheus.CounterValue, float64(self.monitor.Report.Api.State.PreimagesServed.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(self.monitor.Report.Api.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.ValidationErrors, prometheus.CounterValue, float64(self.monitor.Report.Api.Errors.ValidationErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.AuthFailures, prometheus.CounterValue, float64(self.monitor.Report.Api.Errors.AuthFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RateLimitedPeers, prometheus.CounterValue, float64(self.monitor.Report.Api.Errors.RateLimitedPeers.Load()))
	ch <- prometheus.MustNewConstMetric(self.QueueLimitReached, prometheus.CounterValue, float64(self.monitor.Report.Api.Errors.QueueLimitReached.Load()))
}
