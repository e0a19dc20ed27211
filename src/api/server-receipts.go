package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workmesh/ledger/src/api/request"
	"github.com/workmesh/ledger/src/api/response"
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/binder"
	"github.com/workmesh/ledger/src/utils/hasher"
	. "github.com/workmesh/ledger/src/utils/logger"
	"github.com/workmesh/ledger/src/utils/model"
)

var errReceiptsDisabled = errors.New("receipts not available")

func (self *Server) onAppendReceipt() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !self.Config.Ledger.AccumulatorsEnabled {
			self.abort(c, http.StatusNotFound, errReceiptsDisabled)
			return
		}

		var in = new(request.AppendReceipt)
		err := c.ShouldBindWith(in, binder.JSON)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse receipt")
			return
		}

		receipt, err := self.store.AppendReceipt(c, in.ToInput())
		if err != nil {
			var validationErr ledger.ValidationError
			if errors.As(err, &validationErr) {
				self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
				self.abort(c, http.StatusBadRequest, err).Error("Rejected receipt")
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to append receipt")
			return
		}

		LOG(c).WithField("hash", receipt.Hash).
			WithField("service_id", receipt.ServiceID).
			WithField("seq", receipt.Seq).
			Debug("Receipt appended")

		c.JSON(http.StatusCreated, &receipt)
	}
}

func (self *Server) onListReceipts() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !self.Config.Ledger.AccumulatorsEnabled {
			self.abort(c, http.StatusNotFound, errReceiptsDisabled)
			return
		}

		var in = new(request.ListReceipts)
		err := c.ShouldBindQuery(in)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to parse query")
			return
		}

		filter := in.ToFilter()
		receipts, err := self.store.ListReceipts(c, filter)
		if err != nil {
			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to list receipts")
			return
		}

		c.JSON(http.StatusOK, &response.Receipts{
			Items:      receipts,
			NextOffset: filter.Offset + len(receipts),
		})
	}
}

func (self *Server) onGetReceipt() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !self.Config.Ledger.AccumulatorsEnabled {
			self.abort(c, http.StatusNotFound, errReceiptsDisabled)
			return
		}

		receipt, err := self.store.Receipt(c, c.Param("hash"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to get receipt")
			return
		}

		c.JSON(http.StatusOK, &receipt)
	}
}

// packageReceipt looks up the accumulator entry recorded for the package,
// appending one first when allowCreate is set. With accumulators off it
// returns an empty receipt.
func (self *Server) packageReceipt(ctx context.Context, pkg model.WorkPackage, allowCreate bool) (receipt model.Receipt, err error) {
	if !self.Config.Ledger.AccumulatorsEnabled {
		return
	}

	existing, lookupErr := self.store.Receipt(ctx, pkg.ID)
	if lookupErr == nil && existing.Hash != "" {
		return existing, nil
	}
	if !allowCreate {
		return
	}

	h := hasher.Get(self.store.HashAlgorithm())
	return self.store.AppendReceipt(ctx, ledger.ReceiptInput{
		Hash:         pkg.ID,
		ServiceID:    pkg.ServiceID,
		EntryType:    model.ReceiptTypePackage,
		Status:       string(pkg.Status),
		ProcessedAt:  time.Now().UTC(),
		MetadataHash: ledger.PackageMetadataHash(pkg, h),
	})
}

// reportReceipt is the report flavor, keyed by the refine output hash
func (self *Server) reportReceipt(ctx context.Context, report model.WorkReport, allowCreate bool) (receipt model.Receipt, err error) {
	if !self.Config.Ledger.AccumulatorsEnabled {
		return
	}

	existing, lookupErr := self.store.Receipt(ctx, report.RefineOutputHash)
	if lookupErr == nil && existing.Hash != "" {
		return existing, nil
	}
	if !allowCreate {
		return
	}

	h := hasher.Get(self.store.HashAlgorithm())
	return self.store.AppendReceipt(ctx, ledger.ReceiptInput{
		Hash:         report.RefineOutputHash,
		ServiceID:    report.ServiceID,
		EntryType:    model.ReceiptTypeReport,
		Status:       string(model.PackageStatusCompleted),
		ProcessedAt:  report.CreatedAt,
		MetadataHash: ledger.ReportMetadataHash(report, h),
	})
}
