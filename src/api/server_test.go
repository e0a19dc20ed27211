package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/workmesh/ledger/src/api/response"
	"github.com/workmesh/ledger/src/ledger"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/model"
	monitor_api "github.com/workmesh/ledger/src/utils/monitoring/api"

	"testing"
)

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
}

func (s *ServerTestSuite) newServer(mutate func(conf *config.Config)) *Server {
	conf := config.Default()
	conf.Ledger.Store = "memory"
	if mutate != nil {
		mutate(conf)
	}

	store, preimages, err := ledger.NewStore(context.Background(), conf, "test")
	require.Nil(s.T(), err)

	coordinator := &ledger.Coordinator{
		Store:               store,
		Engine:              ledger.NewEngine(conf, store, preimages),
		AccumulatorsEnabled: conf.Ledger.AccumulatorsEnabled,
	}

	server := NewServer(conf).
		WithStore(store, preimages).
		WithCoordinator(coordinator).
		WithMonitor(monitor_api.NewMonitor())
	server.registerRoutes()
	return server
}

func (s *ServerTestSuite) do(server *Server, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	server.Router.ServeHTTP(recorder, req)
	return recorder
}

func (s *ServerTestSuite) doJSON(server *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.Nil(s.T(), err)
	return s.do(server, method, target, bytes.NewReader(data), nil)
}

func (s *ServerTestSuite) decode(recorder *httptest.ResponseRecorder, out interface{}) {
	err := json.Unmarshal(recorder.Body.Bytes(), out)
	require.Nil(s.T(), err)
}

func (s *ServerTestSuite) errorCode(recorder *httptest.ResponseRecorder) string {
	var out response.Error
	s.decode(recorder, &out)
	return out.Code
}

func packageBody(id, serviceID string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"service_id": serviceID,
		"items": []map[string]interface{}{
			{"kind": "transfer", "params_hash": "params-1"},
		},
	}
}

func (s *ServerTestSuite) TestEnqueueAndGetPackage() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages", map[string]interface{}{
		"service_id": "svc-1",
		"items": []map[string]interface{}{
			{"kind": "transfer", "params_hash": "params-1"},
		},
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var pkg model.WorkPackage
	s.decode(recorder, &pkg)
	require.NotEmpty(s.T(), pkg.ID)
	require.Equal(s.T(), model.PackageStatusPending, pkg.Status)
	require.False(s.T(), pkg.CreatedAt.IsZero())
	require.Len(s.T(), pkg.Items, 1)
	require.NotEmpty(s.T(), pkg.Items[0].ID)
	require.Equal(s.T(), pkg.ID, pkg.Items[0].PackageID)

	recorder = s.do(server, "GET", "/v1/packages/"+pkg.ID, nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var fetched model.WorkPackage
	s.decode(recorder, &fetched)
	require.Equal(s.T(), pkg.ID, fetched.ID)

	recorder = s.do(server, "GET", "/v1/packages/missing", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)
	require.Equal(s.T(), "ledger_not_found", s.errorCode(recorder))
}

func (s *ServerTestSuite) TestEnqueueValidation() {
	server := s.newServer(nil)

	// Not JSON at all
	recorder := s.do(server, "POST", "/v1/packages", strings.NewReader("not-json"), nil)
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)
	require.Equal(s.T(), "ledger_bad_request", s.errorCode(recorder))

	// Unknown fields are rejected
	recorder = s.do(server, "POST", "/v1/packages", strings.NewReader(`{"service_id":"svc-1","bogus":true}`), nil)
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)

	// Store validation, a package needs items
	recorder = s.doJSON(server, "POST", "/v1/packages", map[string]interface{}{
		"service_id": "svc-1",
	})
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)

	// Unknown status value
	body := packageBody("pkg-bad-status", "svc-1")
	body["status"] = "sideways"
	recorder = s.doJSON(server, "POST", "/v1/packages", body)
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)
}

func (s *ServerTestSuite) TestEnqueueQuota() {
	server := s.newServer(func(conf *config.Config) {
		conf.Ledger.MaxPendingPackages = 1
	})

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-2", "svc-1"))
	require.Equal(s.T(), http.StatusConflict, recorder.Code)
	require.Equal(s.T(), "ledger_pending_limit", s.errorCode(recorder))

	// Completing the pending package frees the queue
	recorder = s.doJSON(server, "POST", "/v1/packages/pkg-1/status", map[string]interface{}{
		"status": "completed",
	})
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	recorder = s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-2", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)
}

func (s *ServerTestSuite) TestEnqueueWithReceipt() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages?include_receipt=true", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var out response.Package
	s.decode(recorder, &out)
	require.Equal(s.T(), "pkg-1", out.Package.ID)
	require.NotNil(s.T(), out.Receipt)
	require.Equal(s.T(), "pkg-1", out.Receipt.Hash)
	require.Equal(s.T(), model.ReceiptTypePackage, out.Receipt.EntryType)
	require.Equal(s.T(), int64(1), out.Receipt.Seq)
	require.NotEmpty(s.T(), out.Receipt.NewRoot)

	// The lookup path hands back the same receipt instead of appending again
	recorder = s.do(server, "GET", "/v1/packages/pkg-1?include_receipt=true", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var fetched response.Package
	s.decode(recorder, &fetched)
	require.NotNil(s.T(), fetched.Receipt)
	require.Equal(s.T(), out.Receipt.NewRoot, fetched.Receipt.NewRoot)
	require.Equal(s.T(), int64(1), fetched.Receipt.Seq)
}

func (s *ServerTestSuite) TestEnqueueWithReceiptDisabled() {
	server := s.newServer(func(conf *config.Config) {
		conf.Ledger.AccumulatorsEnabled = false
	})

	recorder := s.doJSON(server, "POST", "/v1/packages?include_receipt=true", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var out response.Package
	s.decode(recorder, &out)
	require.Equal(s.T(), "pkg-1", out.Package.ID)
	require.Nil(s.T(), out.Receipt)
}

func (s *ServerTestSuite) TestListPackages() {
	server := s.newServer(nil)

	for _, body := range []map[string]interface{}{
		packageBody("pkg-1", "svc-1"),
		packageBody("pkg-2", "svc-1"),
		packageBody("pkg-3", "svc-2"),
	} {
		recorder := s.doJSON(server, "POST", "/v1/packages", body)
		require.Equal(s.T(), http.StatusCreated, recorder.Code)
	}

	recorder := s.do(server, "GET", "/v1/packages?service_id=svc-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var out response.Packages
	s.decode(recorder, &out)
	require.Len(s.T(), out.Items, 2)
	require.Equal(s.T(), 2, out.NextOffset)

	// Pagination
	recorder = s.do(server, "GET", "/v1/packages?service_id=svc-1&limit=1&offset=1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	s.decode(recorder, &out)
	require.Len(s.T(), out.Items, 1)
	require.Equal(s.T(), 2, out.NextOffset)

	// Numbers that don't parse are ignored, not rejected
	recorder = s.do(server, "GET", "/v1/packages?limit=many", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	s.decode(recorder, &out)
	require.Len(s.T(), out.Items, 3)

	// Unknown status filters are rejected
	recorder = s.do(server, "GET", "/v1/packages?status=sideways", nil, nil)
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)
}

func (s *ServerTestSuite) TestListPackagesLegacy() {
	server := s.newServer(func(conf *config.Config) {
		conf.Api.LegacyListResponse = true
	})

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.do(server, "GET", "/v1/packages", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	// Bare array, no envelope
	var pkgs []model.WorkPackage
	s.decode(recorder, &pkgs)
	require.Len(s.T(), pkgs, 1)

	// Receipt listing keeps the envelope even in legacy mode
	recorder = s.do(server, "GET", "/v1/receipts", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var receipts response.Receipts
	s.decode(recorder, &receipts)
	require.NotNil(s.T(), receipts.Items)
}

func (s *ServerTestSuite) TestUpdatePackageStatus() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	// Only terminal statuses are accepted
	recorder = s.doJSON(server, "POST", "/v1/packages/pkg-1/status", map[string]interface{}{
		"status": "processing",
	})
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)

	recorder = s.doJSON(server, "POST", "/v1/packages/pkg-1/status", map[string]interface{}{
		"status": "failed",
	})
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var pkg model.WorkPackage
	s.decode(recorder, &pkg)
	require.Equal(s.T(), model.PackageStatusFailed, pkg.Status)

	recorder = s.doJSON(server, "POST", "/v1/packages/missing/status", map[string]interface{}{
		"status": "completed",
	})
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)
}

func (s *ServerTestSuite) TestSaveAndGetReport() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.doJSON(server, "POST", "/v1/reports", map[string]interface{}{
		"report": map[string]interface{}{
			"package_id":         "pkg-1",
			"service_id":         "svc-1",
			"refine_output_hash": "refine-1",
		},
		"attestations": []map[string]interface{}{
			{"worker_id": "worker-1", "signature": "sig-1", "weight": 3},
		},
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var saved response.Report
	s.decode(recorder, &saved)
	require.NotEmpty(s.T(), saved.Report.ID)
	require.Nil(s.T(), saved.Receipt)

	recorder = s.do(server, "GET", "/v1/packages/pkg-1/report", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var out response.Report
	s.decode(recorder, &out)
	require.Equal(s.T(), saved.Report.ID, out.Report.ID)
	require.Len(s.T(), out.Attestations, 1)
	require.Equal(s.T(), "worker-1", out.Attestations[0].WorkerID)
	require.Equal(s.T(), int64(3), out.Attestations[0].Weight)

	// A report for a package that doesn't exist
	recorder = s.doJSON(server, "POST", "/v1/reports", map[string]interface{}{
		"report": map[string]interface{}{
			"package_id":         "missing",
			"service_id":         "svc-1",
			"refine_output_hash": "refine-2",
		},
	})
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "GET", "/v1/packages/pkg-2/report", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "GET", "/v1/reports", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var listed response.Reports
	s.decode(recorder, &listed)
	require.Len(s.T(), listed.Items, 1)
	require.Equal(s.T(), 1, listed.NextOffset)
}

func (s *ServerTestSuite) TestReceipts() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/receipts", map[string]interface{}{
		"hash":       "entry-1",
		"service_id": "svc-1",
		"entry_type": "custom",
		"status":     "completed",
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var receipt model.Receipt
	s.decode(recorder, &receipt)
	require.Equal(s.T(), int64(1), receipt.Seq)
	require.Empty(s.T(), receipt.PrevRoot)
	require.NotEmpty(s.T(), receipt.NewRoot)
	require.NotEmpty(s.T(), receipt.MetadataHash)

	// Replays hand back the sealed receipt without advancing the chain
	recorder = s.doJSON(server, "POST", "/v1/receipts", map[string]interface{}{
		"hash":       "entry-1",
		"service_id": "svc-1",
		"entry_type": "custom",
		"status":     "completed",
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var replayed model.Receipt
	s.decode(recorder, &replayed)
	require.Equal(s.T(), receipt.Seq, replayed.Seq)
	require.Equal(s.T(), receipt.NewRoot, replayed.NewRoot)

	// A second entry chains onto the first
	recorder = s.doJSON(server, "POST", "/v1/receipts", map[string]interface{}{
		"hash":       "entry-2",
		"service_id": "svc-1",
		"entry_type": "custom",
		"status":     "completed",
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var second model.Receipt
	s.decode(recorder, &second)
	require.Equal(s.T(), int64(2), second.Seq)
	require.Equal(s.T(), receipt.NewRoot, second.PrevRoot)

	recorder = s.do(server, "GET", "/v1/receipts/entry-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	recorder = s.do(server, "GET", "/v1/receipts/missing", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "GET", "/v1/receipts?service_id=svc-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var listed response.Receipts
	s.decode(recorder, &listed)
	require.Len(s.T(), listed.Items, 2)

	// Missing fields are rejected
	recorder = s.doJSON(server, "POST", "/v1/receipts", map[string]interface{}{
		"hash": "entry-3",
	})
	require.Equal(s.T(), http.StatusBadRequest, recorder.Code)
}

func (s *ServerTestSuite) TestReceiptsDisabled() {
	server := s.newServer(func(conf *config.Config) {
		conf.Ledger.AccumulatorsEnabled = false
	})

	recorder := s.doJSON(server, "POST", "/v1/receipts", map[string]interface{}{
		"hash":       "entry-1",
		"service_id": "svc-1",
		"entry_type": "custom",
	})
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "GET", "/v1/receipts", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "GET", "/v1/receipts/entry-1", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)
}

func (s *ServerTestSuite) TestPreimages() {
	server := s.newServer(nil)

	recorder := s.do(server, "PUT", "/v1/preimages/hash-1", strings.NewReader("hello"), map[string]string{
		"Content-Type": "text/plain",
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	var meta ledger.PreimageMeta
	s.decode(recorder, &meta)
	require.Equal(s.T(), "hash-1", meta.Hash)
	require.Equal(s.T(), int64(5), meta.Size)
	require.Equal(s.T(), "text/plain", meta.MediaType)

	recorder = s.do(server, "HEAD", "/v1/preimages/hash-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	require.Equal(s.T(), "hash-1", recorder.Header().Get("X-Preimage-Hash"))
	require.Equal(s.T(), "5", recorder.Header().Get("X-Preimage-Size"))
	require.Equal(s.T(), "text/plain", recorder.Header().Get("X-Preimage-Media-Type"))

	recorder = s.do(server, "GET", "/v1/preimages/hash-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	require.Equal(s.T(), "hello", recorder.Body.String())

	recorder = s.do(server, "GET", "/v1/preimages/hash-1/meta", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	s.decode(recorder, &meta)
	require.Equal(s.T(), "hash-1", meta.Hash)

	recorder = s.do(server, "GET", "/v1/preimages/missing", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)

	recorder = s.do(server, "HEAD", "/v1/preimages/missing", nil, nil)
	require.Equal(s.T(), http.StatusNotFound, recorder.Code)
}

func (s *ServerTestSuite) TestPreimageTooLarge() {
	server := s.newServer(func(conf *config.Config) {
		conf.Ledger.MaxPreimageBytes = 4
	})

	recorder := s.do(server, "PUT", "/v1/preimages/hash-1", strings.NewReader("hello"), nil)
	require.Equal(s.T(), http.StatusRequestEntityTooLarge, recorder.Code)
	require.Equal(s.T(), "ledger_preimage_too_large", s.errorCode(recorder))
}

func (s *ServerTestSuite) TestAuth() {
	server := s.newServer(func(conf *config.Config) {
		conf.Api.AuthRequired = true
		conf.Api.Tokens = []string{"secret"}
	})

	recorder := s.do(server, "GET", "/v1/status", nil, nil)
	require.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
	require.Equal(s.T(), "ledger_auth_missing", s.errorCode(recorder))

	recorder = s.do(server, "GET", "/v1/status", nil, map[string]string{
		"Authorization": "Bearer other",
	})
	require.Equal(s.T(), http.StatusForbidden, recorder.Code)
	require.Equal(s.T(), "ledger_auth_forbidden", s.errorCode(recorder))

	// Scheme matching is case insensitive
	recorder = s.do(server, "GET", "/v1/status", nil, map[string]string{
		"Authorization": "BEARER secret",
	})
	require.Equal(s.T(), http.StatusOK, recorder.Code)
}

func (s *ServerTestSuite) TestAuthAnyToken() {
	// With no token list any bearer token passes
	server := s.newServer(func(conf *config.Config) {
		conf.Api.AuthRequired = true
	})

	recorder := s.do(server, "GET", "/v1/status", nil, map[string]string{
		"Authorization": "Bearer whatever",
	})
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	recorder = s.do(server, "GET", "/v1/status", nil, nil)
	require.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
}

func (s *ServerTestSuite) TestRateLimit() {
	server := s.newServer(func(conf *config.Config) {
		conf.Api.RateLimitPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		recorder := s.do(server, "GET", "/v1/status", nil, nil)
		require.Equal(s.T(), http.StatusOK, recorder.Code)
	}

	recorder := s.do(server, "GET", "/v1/status", nil, nil)
	require.Equal(s.T(), http.StatusTooManyRequests, recorder.Code)
	require.Equal(s.T(), "ledger_rate_limit", s.errorCode(recorder))
	require.NotEmpty(s.T(), recorder.Header().Get("Retry-After"))
}

func (s *ServerTestSuite) TestStatus() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.do(server, "GET", "/v1/status", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var out response.Status
	s.decode(recorder, &out)
	require.Equal(s.T(), "memory", out.Store)
	require.True(s.T(), out.AccumulatorsEnabled)
	require.Equal(s.T(), "blake3-256", out.AccumulatorHash)
	require.Equal(s.T(), 1, out.PendingPackages)
	require.Nil(s.T(), out.AccumulatorRoot)
	require.Empty(s.T(), out.AccumulatorRoots)

	// Per service roots are always reported, zero-valued when untouched
	recorder = s.do(server, "GET", "/v1/status?service_id=svc-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)
	s.decode(recorder, &out)
	require.NotNil(s.T(), out.AccumulatorRoot)
	require.Equal(s.T(), "svc-1", out.AccumulatorRoot.ServiceID)
	require.Equal(s.T(), int64(0), out.AccumulatorRoot.Seq)
}

func (s *ServerTestSuite) TestProcess() {
	server := s.newServer(nil)

	recorder := s.doJSON(server, "POST", "/v1/packages", packageBody("pkg-1", "svc-1"))
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.do(server, "POST", "/v1/process", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var out response.Process
	s.decode(recorder, &out)
	require.True(s.T(), out.Processed)

	// The package went through the whole pipeline
	recorder = s.do(server, "GET", "/v1/packages/pkg-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var pkg model.WorkPackage
	s.decode(recorder, &pkg)
	require.Equal(s.T(), model.PackageStatusCompleted, pkg.Status)

	recorder = s.do(server, "GET", "/v1/packages/pkg-1/report?include_receipt=true", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var report response.Report
	s.decode(recorder, &report)
	require.NotEmpty(s.T(), report.Report.RefineOutputHash)
	require.Len(s.T(), report.Attestations, 1)
	require.NotNil(s.T(), report.Receipt)
	require.Equal(s.T(), model.ReceiptTypeReport, report.Receipt.EntryType)

	// The accumulator advanced once
	recorder = s.do(server, "GET", "/v1/status?service_id=svc-1", nil, nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var status response.Status
	s.decode(recorder, &status)
	require.NotNil(s.T(), status.AccumulatorRoot)
	require.Equal(s.T(), int64(1), status.AccumulatorRoot.Seq)

	// Empty queue
	recorder = s.do(server, "POST", "/v1/process", nil, nil)
	require.Equal(s.T(), http.StatusNoContent, recorder.Code)
}

func (s *ServerTestSuite) TestMethodNotAllowed() {
	server := s.newServer(nil)

	recorder := s.do(server, "DELETE", "/v1/packages", nil, nil)
	require.Equal(s.T(), http.StatusMethodNotAllowed, recorder.Code)
}
