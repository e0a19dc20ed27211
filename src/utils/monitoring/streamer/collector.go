package monitor_streamer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	NotificationsReceived *prometheus.Desc
	NumWatchdogRestarts   *prometheus.Desc
	ListenErrors          *prometheus.Desc
	ParseErrors           *prometheus.Desc
	MessagesPublished     *prometheus.Desc
	LastSuccessfulMessage *prometheus.Desc
	LastFailure           *prometheus.Desc
	PublishErrors         *prometheus.Desc
	PersistentFailure     *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "streamer",
	}

	return &Collector{
		NotificationsReceived: prometheus.NewDesc("notifications_received", "", nil, labels),
		NumWatchdogRestarts:   prometheus.NewDesc("num_watchdog_restarts", "", nil, labels),
		ListenErrors:          prometheus.NewDesc("error_listen", "", nil, labels),
		ParseErrors:           prometheus.NewDesc("error_parse", "", nil, labels),
		MessagesPublished:     prometheus.NewDesc("messages_published", "", nil, labels),
		LastSuccessfulMessage: prometheus.NewDesc("last_successful_message_timestamp", "", nil, labels),
		LastFailure:           prometheus.NewDesc("last_failure_timestamp", "", nil, labels),
		PublishErrors:         prometheus.NewDesc("error_publish", "", nil, labels),
		PersistentFailure:     prometheus.NewDesc("error_persistent", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.NotificationsReceived
	ch <- self.NumWatchdogRestarts
	ch <- self.ListenErrors
	ch <- self.ParseErrors
	ch <- self.MessagesPublished
	ch <- self.LastSuccessfulMessage
	ch <- self.LastFailure
	ch <- self.PublishErrors
	ch <- self.PersistentFailure
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.NotificationsReceived, prometheus.CounterValue, float64(self.monitor.Report.Streamer.State.NotificationsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.NumWatchdogRestarts, prometheus.CounterValue, float64(self.monitor.Report.Streamer.State.NumWatchdogRestarts.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListenErrors, prometheus.CounterValue, float64(self.monitor.Report.Streamer.Errors.ListenErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.ParseErrors, prometheus.CounterValue, float64(self.monitor.Report.Streamer.Errors.ParseErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.State.MessagesPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastSuccessfulMessage, prometheus.GaugeValue, float64(self.monitor.Report.RedisPublisher.State.LastSuccessfulMessageTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastFailure, prometheus.GaugeValue, float64(self.monitor.Report.RedisPublisher.State.LastFailureTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishErrors, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.PersistentFailure, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.PersistentFailure.Load()))
}
