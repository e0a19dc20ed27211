package monitor_processor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	PendingPackages   *prometheus.Desc
	PackagesClaimed   *prometheus.Desc
	PackagesCompleted *prometheus.Desc
	PackagesFailed    *prometheus.Desc
	ReportsSaved      *prometheus.Desc
	ReceiptsAppended  *prometheus.Desc
	ClaimErrors       *prometheus.Desc
	ProcessingErrors  *prometheus.Desc
	QuorumFailures    *prometheus.Desc
	SaveErrors        *prometheus.Desc
	PersistentFailure *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "processor",
	}

	return &Collector{
		PendingPackages:   prometheus.NewDesc("pending_packages", "", nil, labels),
		PackagesClaimed:   prometheus.NewDesc("packages_claimed", "", nil, labels),
		PackagesCompleted: prometheus.NewDesc("packages_completed", "", nil, labels),
		PackagesFailed:    prometheus.NewDesc("packages_failed", "", nil, labels),
		ReportsSaved:      prometheus.NewDesc("reports_saved", "", nil, labels),
		ReceiptsAppended:  prometheus.NewDesc("receipts_appended", "", nil, labels),
		ClaimErrors:       prometheus.NewDesc("error_claim", "", nil, labels),
		ProcessingErrors:  prometheus.NewDesc("error_processing", "", nil, labels),
		QuorumFailures:    prometheus.NewDesc("error_quorum", "", nil, labels),
		SaveErrors:        prometheus.NewDesc("error_save", "", nil, labels),
		PersistentFailure: prometheus.NewDesc("error_persistent", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.PendingPackages
	ch <- self.PackagesClaimed
	ch <- self.PackagesCompleted
	ch <- self.PackagesFailed
	ch <- self.ReportsSaved
	ch <- self.ReceiptsAppended
	ch <- self.ClaimErrors
	ch <- self.ProcessingErrors
	ch <- self.QuorumFailures
	ch <- self.SaveErrors
	ch <- self.PersistentFailure
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.PendingPackages, prometheus.GaugeValue, float64(self.monitor.Report.Processor.State.PendingPackages.Load()))
	ch <- prometheus.MustNewConstMetric(self.PackagesClaimed, prometheus.CounterValue, float64(self.monitor.Report.Processor.State.PackagesClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PackagesCompleted, prometheus.CounterValue, float64(self.monitor.Report.Processor.State.PackagesCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.PackagesFailed, prometheus.CounterValue, float64(self.monitor.Report.Processor.State.PackagesFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReportsSaved, prometheus.CounterValue, float64(self.monitor.Report.Processor.State.ReportsSaved.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReceiptsAppended, prometheus.CounterValue, float64(self.monitor.Report.Processor.State.ReceiptsAppended.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClaimErrors, prometheus.CounterValue, float64(self.monitor.Report.Processor.Errors.ClaimErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.ProcessingErrors, prometheus.CounterValue, float64(self.monitor.Report.Processor.Errors.ProcessingErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.QuorumFailures, prometheus.CounterValue, float64(self.monitor.Report.Processor.Errors.QuorumFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SaveErrors, prometheus.CounterValue, float64(self.monitor.Report.Processor.Errors.SaveErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.PersistentFailure, prometheus.CounterValue, float64(self.monitor.Report.Processor.Errors.PersistentFailure.Load()))
}
