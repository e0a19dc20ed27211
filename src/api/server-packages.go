package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workmesh/ledger/src/api/request"
	"github.com/workmesh/ledger/src/api/response"
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/binder"
	. "github.com/workmesh/ledger/src/utils/logger"
	"github.com/workmesh/ledger/src/utils/model"
)

func (self *Server) onEnqueuePackage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var pkg model.WorkPackage
		err := c.ShouldBindWith(&pkg, binder.JSON)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse package")
			return
		}

		// Defaults
		if pkg.ID == "" {
			pkg.ID = uuid.NewString()
		}
		if pkg.Status == "" {
			pkg.Status = model.PackageStatusPending
		}
		if pkg.CreatedAt.IsZero() {
			pkg.CreatedAt = time.Now().UTC()
		}
		for i := range pkg.Items {
			if pkg.Items[i].ID == "" {
				pkg.Items[i].ID = uuid.NewString()
			}
			pkg.Items[i].PackageID = pkg.ID
		}

		if !pkg.Status.Valid() {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, errors.New("unknown package status")).
				WithField("status", pkg.Status).
				Error("Rejected package")
			return
		}

		// Queue quota. A failed count doesn't block submissions.
		if limit := self.Config.Ledger.MaxPendingPackages; limit > 0 {
			count, err := self.store.PendingCount(c)
			if err == nil && count >= limit {
				self.monitor.GetReport().Api.Errors.QueueLimitReached.Inc()
				self.abort(c, http.StatusConflict, errors.New("pending package limit reached")).
					WithField("pending", count).
					Warn("Submission rejected, queue is full")
				return
			}
		}

		err = self.store.EnqueuePackage(c, pkg)
		if err != nil {
			var validationErr ledger.ValidationError
			if errors.As(err, &validationErr) {
				self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
				self.abort(c, http.StatusBadRequest, err).Error("Rejected package")
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to enqueue package")
			return
		}

		// Update monitoring
		self.monitor.GetReport().Api.State.PackagesEnqueued.Inc()

		LOG(c).WithField("id", pkg.ID).Debug("Package enqueued")

		if includeReceipt(c) {
			// The receipt is best effort, the package itself is already queued
			receipt, err := self.packageReceipt(c, pkg, true)
			if err != nil {
				LOG(c).WithError(err).WithField("id", pkg.ID).Warn("Failed to append package receipt")
				receipt = model.Receipt{}
			}
			c.JSON(http.StatusCreated, response.PackageToResponse(pkg, receipt))
			return
		}

		c.JSON(http.StatusCreated, &pkg)
	}
}

func (self *Server) onListPackages() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in = new(request.ListPackages)
		err := c.ShouldBindQuery(in)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse query")
			return
		}

		filter := in.ToFilter()
		if filter.Status != "" && !filter.Status.Valid() {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, errors.New("unknown package status")).
				WithField("status", filter.Status).
				Error("Rejected package filter")
			return
		}

		pkgs, err := self.store.ListPackages(c, filter)
		if err != nil {
			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to list packages")
			return
		}

		// Pre-pagination clients get the bare array
		if self.Config.Api.LegacyListResponse {
			c.JSON(http.StatusOK, pkgs)
			return
		}

		out := &response.Packages{
			Items:      pkgs,
			NextOffset: filter.Offset + len(pkgs),
		}

		if includeReceipt(c) {
			for i := range pkgs {
				receipt, err := self.packageReceipt(c, pkgs[i], false)
				if err != nil {
					self.monitor.GetReport().Api.Errors.DbError.Inc()
					self.abort(c, http.StatusInternalServerError, err).Error("Failed to look up package receipts")
					return
				}
				if receipt.Hash != "" {
					out.Receipts = append(out.Receipts, receipt)
				}
			}
		}

		c.JSON(http.StatusOK, out)
	}
}

func (self *Server) onGetPackage() gin.HandlerFunc {
	return func(c *gin.Context) {
		pkg, err := self.store.GetPackage(c, c.Param("id"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to get package")
			return
		}

		if includeReceipt(c) {
			receipt, err := self.packageReceipt(c, pkg, false)
			if err != nil {
				receipt = model.Receipt{}
			}
			c.JSON(http.StatusOK, response.PackageToResponse(pkg, receipt))
			return
		}

		c.JSON(http.StatusOK, &pkg)
	}
}

func (self *Server) onGetPackageReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, attestations, err := self.store.GetReportByPackage(c, c.Param("id"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to get report")
			return
		}

		receipt := model.Receipt{}
		if includeReceipt(c) {
			receipt, err = self.reportReceipt(c, report, false)
			if err != nil {
				receipt = model.Receipt{}
			}
		}

		c.JSON(http.StatusOK, response.ReportToResponse(report, attestations, receipt))
	}
}

func (self *Server) onUpdatePackageStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in = new(request.UpdatePackageStatus)
		err := c.ShouldBindWith(in, binder.JSON)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse status update")
			return
		}

		// Only terminal transitions are accepted, reopening a package would
		// break the one report per package rule
		status := model.PackageStatus(in.Status)
		if !status.IsTerminal() {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, errors.New("status must be completed or failed")).
				WithField("status", in.Status).
				Error("Rejected status update")
			return
		}

		id := c.Param("id")
		err = self.store.UpdatePackageStatus(c, id, status)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to update package status")
			return
		}

		LOG(c).WithField("id", id).WithField("status", status).Info("Package status updated")

		pkg, err := self.store.GetPackage(c, id)
		if err != nil {
			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to get package")
			return
		}

		c.JSON(http.StatusOK, &pkg)
	}
}
