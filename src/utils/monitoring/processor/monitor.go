package monitor_processor

import (
	"math"
	"net/http"
	"time"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/workmesh/ledger/src/utils/monitoring/report"
	"github.com/workmesh/ledger/src/utils/task"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Package processing speed
	PackagesProcessed *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:       &report.RunReport{},
		Processor: &report.ProcessorReport{},
	}

	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorPackages)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize

	self.PackagesProcessed = deque.New[uint64](self.historySize)

	return self
}

func (self *Monitor) Clear() {
	self.PackagesProcessed.Clear()
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure package processing speed
func (self *Monitor) monitorPackages() (err error) {
	loaded := self.Report.Processor.State.PackagesCompleted.Load() + self.Report.Processor.State.PackagesFailed.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.PackagesProcessed.PushBack(loaded)
	if self.PackagesProcessed.Len() > self.historySize {
		self.PackagesProcessed.PopFront()
	}
	value := float64(self.PackagesProcessed.Back()-self.PackagesProcessed.Front()) / float64(self.PackagesProcessed.Len())

	self.Report.Processor.State.AveragePackagesProcessedPerMinute.Store(round(value))
	return
}

func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}

	// Operational long enough to judge, an idle queue is fine but a stuck one is not
	if self.Report.Processor.State.PendingPackages.Load() == 0 {
		return true
	}

	return self.Report.Processor.State.AveragePackagesProcessedPerMinute.Load() > 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
