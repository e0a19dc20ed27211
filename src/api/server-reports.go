package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workmesh/ledger/src/api/request"
	"github.com/workmesh/ledger/src/api/response"
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/binder"
	. "github.com/workmesh/ledger/src/utils/logger"
	"github.com/workmesh/ledger/src/utils/model"
)

func (self *Server) onSaveReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in = new(request.SaveReport)
		err := c.ShouldBindWith(in, binder.JSON)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse report")
			return
		}

		if in.Report.ID == "" {
			in.Report.ID = uuid.NewString()
		}

		err = self.store.SaveReport(c, in.Report, in.Attestations)
		if err != nil {
			var validationErr ledger.ValidationError
			switch {
			case errors.Is(err, ledger.ErrNotFound):
				self.abort(c, http.StatusNotFound, err).Error("Report for an unknown package")
			case errors.As(err, &validationErr):
				self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
				self.abort(c, http.StatusBadRequest, err).Error("Rejected report")
			default:
				self.monitor.GetReport().Api.Errors.DbError.Inc()
				self.abort(c, http.StatusInternalServerError, err).Error("Failed to save report")
			}
			return
		}

		LOG(c).WithField("id", in.Report.ID).WithField("package_id", in.Report.PackageID).Debug("Report saved")

		c.JSON(http.StatusCreated, response.ReportToResponse(in.Report, in.Attestations, model.Receipt{}))
	}
}

func (self *Server) onListReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in = new(request.ListReports)
		err := c.ShouldBindQuery(in)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse query")
			return
		}

		filter := in.ToFilter()
		reports, err := self.store.ListReports(c, filter)
		if err != nil {
			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to list reports")
			return
		}

		// Pre-pagination clients get the bare array
		if self.Config.Api.LegacyListResponse {
			c.JSON(http.StatusOK, reports)
			return
		}

		out := &response.Reports{
			Items:      reports,
			NextOffset: filter.Offset + len(reports),
		}

		if includeReceipt(c) {
			for _, report := range reports {
				receipt, err := self.reportReceipt(c, report, false)
				if err != nil {
					self.monitor.GetReport().Api.Errors.DbError.Inc()
					self.abort(c, http.StatusInternalServerError, err).Error("Failed to look up report receipts")
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
