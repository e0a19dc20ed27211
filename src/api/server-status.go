package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workmesh/ledger/src/api/response"
	. "github.com/workmesh/ledger/src/utils/logger"
)

func (self *Server) onGetStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := self.store.PendingCount(c)
		if err != nil {
			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to count pending packages")
			return
		}

		out := response.StatusToResponse(self.Config, self.store.HashAlgorithm(), pending)

		if serviceID := strings.TrimSpace(c.Query("service_id")); serviceID != "" {
			root, err := self.store.AccumulatorRoot(c, serviceID)
			if err != nil {
				self.monitor.GetReport().Api.Errors.DbError.Inc()
				self.abort(c, http.StatusInternalServerError, err).Error("Failed to get accumulator root")
				return
			}
			// Zero-valued for services that never appended
			out.AccumulatorRoot = &root
		} else if self.Config.Ledger.AccumulatorsEnabled {
			roots, err := self.store.AccumulatorRoots(c)
			if err != nil {
				self.monitor.GetReport().Api.Errors.DbError.Inc()
				self.abort(c, http.StatusInternalServerError, err).Error("Failed to list accumulator roots")
				return
			}
			if len(roots) > 0 {
				out.AccumulatorRoots = roots
			}
		}

		c.JSON(http.StatusOK, out)
	}
}

func (self *Server) onProcess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Update monitoring
		self.monitor.GetReport().Api.State.ProcessTriggers.Inc()

		processed, err := self.coordinator.ProcessNext(c)
		if err != nil {
			self.abort(c, http.StatusBadRequest, err).Error("Failed to process package")
			return
		}

		if !processed {
			// Empty queue
			c.Status(http.StatusNoContent)
			return
		}

		LOG(c).Debug("Processed one package")

		c.JSON(http.StatusOK, &response.Process{Processed: true})
	}
}
