package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/workmesh/ledger/src/api/response"
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	. "github.com/workmesh/ledger/src/utils/logger"
	"github.com/workmesh/ledger/src/utils/monitoring"
	"github.com/workmesh/ledger/src/utils/task"
)

// Public REST API, serves the ledger over HTTP
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	store       ledger.Store
	preimages   ledger.PreimageStore
	coordinator *ledger.Coordinator
	monitor     monitoring.Monitor

	// Bearer tokens accepted when auth is on
	allowed map[string]struct{}

	// Rate limiter per bearer token, idle ones expire
	limiters *cache.Cache
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "rest-server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())
	self.Router.HandleMethodNotAllowed = true

	self.httpServer = &http.Server{
		Addr:    config.Api.ListenAddress,
		Handler: self.Router,
	}

	self.allowed = make(map[string]struct{}, len(config.Api.Tokens))
	for _, token := range config.Api.Tokens {
		self.allowed[token] = struct{}{}
	}

	self.limiters = cache.New(config.Api.RateLimiterTtl, 2*config.Api.RateLimiterTtl)

	return
}

func (self *Server) WithStore(store ledger.Store, preimages ledger.PreimageStore) *Server {
	self.store = store
	self.preimages = preimages
	return self
}

func (self *Server) WithCoordinator(coordinator *ledger.Coordinator) *Server {
	self.coordinator = coordinator
	return self
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) run() (err error) {
	self.registerRoutes()

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) registerRoutes() {
	v1 := self.Router.Group("v1")
	v1.Use(self.authorize(), self.checkRate())
	{
		v1.GET("status", self.onGetStatus())
		v1.POST("process", self.onProcess())

		v1.POST("packages", self.onEnqueuePackage())
		v1.GET("packages", self.onListPackages())
		v1.GET("packages/:id", self.onGetPackage())
		v1.GET("packages/:id/report", self.onGetPackageReport())
		v1.POST("packages/:id/status", self.onUpdatePackageStatus())

		v1.POST("reports", self.onSaveReport())
		v1.GET("reports", self.onListReports())

		v1.POST("receipts", self.onAppendReceipt())
		v1.GET("receipts", self.onListReceipts())
		v1.GET("receipts/:hash", self.onGetReceipt())

		v1.PUT("preimages/:hash", self.onPutPreimage())
		v1.HEAD("preimages/:hash", self.onHeadPreimage())
		v1.GET("preimages/:hash", self.onGetPreimage())
		v1.GET("preimages/:hash/meta", self.onGetPreimageMeta())
	}
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

// Like logger.LOGE, but answers with the ledger error envelope instead of a
// bare status. Returns the logger so the caller can still attach a message.
func (self *Server) abort(c *gin.Context, status int, err error) (entry *logrus.Entry) {
	entry = LOG(c)
	if err != nil {
		entry = entry.WithError(err)
		// Stored for gin middlewares
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, response.NewError(status, err))
	return
}

// Receipts are attached to responses only upon an explicit ask
func includeReceipt(c *gin.Context) bool {
	return strings.EqualFold(c.Query("include_receipt"), "true")
}
