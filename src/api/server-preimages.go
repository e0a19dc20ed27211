package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workmesh/ledger/src/ledger"
	. "github.com/workmesh/ledger/src/utils/logger"
)

func (self *Server) onPutPreimage() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := c.Param("hash")

		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusBadRequest, err).Error("Failed to read preimage body")
			return
		}

		if max := self.Config.Ledger.MaxPreimageBytes; max > 0 && len(data) > max {
			self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
			self.abort(c, http.StatusRequestEntityTooLarge, errors.New("preimage too large")).
				WithField("size", len(data)).
				Error("Rejected preimage")
			return
		}

		mediaType := c.ContentType()
		meta, err := self.preimages.Put(c, hash, mediaType, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			var validationErr ledger.ValidationError
			if errors.As(err, &validationErr) {
				self.monitor.GetReport().Api.Errors.ValidationErrors.Inc()
				self.abort(c, http.StatusBadRequest, err).Error("Rejected preimage")
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to store preimage")
			return
		}

		// Update monitoring
		self.monitor.GetReport().Api.State.PreimagesStored.Inc()

		LOG(c).WithField("hash", meta.Hash).WithField("size", meta.Size).Debug("Preimage stored")

		c.JSON(http.StatusCreated, &meta)
	}
}

func (self *Server) onHeadPreimage() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta, err := self.preimages.Stat(c, c.Param("hash"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to stat preimage")
			return
		}

		c.Header("Content-Type", meta.MediaType)
		if meta.Size > 0 {
			c.Header("Content-Length", strconv.FormatInt(meta.Size, 10))
		}
		c.Header("X-Preimage-Hash", meta.Hash)
		c.Header("X-Preimage-Size", strconv.FormatInt(meta.Size, 10))
		c.Header("X-Preimage-Media-Type", meta.MediaType)
		c.Status(http.StatusOK)
	}
}

func (self *Server) onGetPreimage() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := c.Param("hash")

		meta, err := self.preimages.Stat(c, hash)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to stat preimage")
			return
		}

		reader, err := self.preimages.Get(c, hash)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to open preimage")
			return
		}
		defer reader.Close()

		// Update monitoring
		self.monitor.GetReport().Api.State.PreimagesServed.Inc()

		c.DataFromReader(http.StatusOK, meta.Size, meta.MediaType, reader, nil)
	}
}

func (self *Server) onGetPreimageMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta, err := self.preimages.Stat(c, c.Param("hash"))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				self.abort(c, http.StatusNotFound, err)
				return
			}

			self.monitor.GetReport().Api.Errors.DbError.Inc()
			self.abort(c, http.StatusInternalServerError, err).Error("Failed to stat preimage")
			return
		}

		c.JSON(http.StatusOK, &meta)
	}
}
