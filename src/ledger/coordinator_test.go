package ledger

import (
	"context"
	"errors"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/workmesh/ledger/src/utils/model"

	"testing"
)

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

type CoordinatorTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.ctx = context.Background()
}

type stubRefiner struct {
	err error
}

func (self stubRefiner) Refine(_ context.Context, pkg model.WorkPackage, _ PreimageStore) (model.WorkReport, []Message, error) {
	if self.err != nil {
		return model.WorkReport{}, nil, self.err
	}
	report := model.WorkReport{
		ServiceID:        pkg.ServiceID,
		RefineOutputHash: "refined-" + pkg.ID,
	}
	return report, []Message{{Kind: "test"}}, nil
}

type stubAttestor struct {
	workerID string
	err      error
}

func (self stubAttestor) Attest(_ context.Context, _ model.WorkReport) (model.Attestation, error) {
	if self.err != nil {
		return model.Attestation{}, self.err
	}
	return model.Attestation{WorkerID: self.workerID, Weight: 1}, nil
}

type countingAccumulator struct {
	count    int
	messages int
}

func (self *countingAccumulator) Accumulate(_ context.Context, _ model.WorkReport, messages []Message) error {
	self.count++
	self.messages += len(messages)
	return nil
}

func testEngine(accumulator Accumulator) Engine {
	return Engine{
		Preimages:   NewMemoryPreimageStore(),
		Refiner:     stubRefiner{},
		Attestors:   []Attestor{stubAttestor{workerID: "worker-1"}},
		Accumulator: accumulator,
		Threshold:   1,
	}
}

func (s *CoordinatorTestSuite) TestNilStore() {
	coordinator := Coordinator{Engine: testEngine(&countingAccumulator{})}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.False(s.T(), processed)
	require.ErrorIs(s.T(), err, ErrInvalidCoordinator)
}

func (s *CoordinatorTestSuite) TestEmptyQueue() {
	coordinator := Coordinator{Store: NewMemoryStore(), Engine: testEngine(&countingAccumulator{})}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.False(s.T(), processed)
	require.Nil(s.T(), err)
}

func (s *CoordinatorTestSuite) TestEngineValidationFailureMarksPackageFailed() {
	store := NewMemoryStore()
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	coordinator := Coordinator{Store: store, Engine: Engine{}}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.NotNil(s.T(), err)

	pkg, err := store.GetPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.PackageStatusFailed, pkg.Status)
}

func (s *CoordinatorTestSuite) TestRefineFailureMarksPackageFailed() {
	store := NewMemoryStore()
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	engine := testEngine(&countingAccumulator{})
	engine.Refiner = stubRefiner{err: errors.New("refine blew up")}
	coordinator := Coordinator{Store: store, Engine: engine}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.NotNil(s.T(), err)

	pkg, err := store.GetPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.PackageStatusFailed, pkg.Status)
}

func (s *CoordinatorTestSuite) TestQuorumNotReached() {
	store := NewMemoryStore()
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	engine := testEngine(&countingAccumulator{})
	engine.Attestors = []Attestor{stubAttestor{err: errors.New("attestor down")}}
	coordinator := Coordinator{Store: store, Engine: engine}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.ErrorIs(s.T(), err, ErrQuorumNotReached)

	pkg, err := store.GetPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.PackageStatusFailed, pkg.Status)
}

func (s *CoordinatorTestSuite) TestFailingAttestorToleratedWithinQuorum() {
	store := NewMemoryStore()
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	engine := testEngine(&countingAccumulator{})
	engine.Attestors = []Attestor{
		stubAttestor{err: errors.New("attestor down")},
		stubAttestor{workerID: "worker-2"},
	}
	coordinator := Coordinator{Store: store, Engine: engine}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.Nil(s.T(), err)

	_, attns, err := store.GetReportByPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.Len(s.T(), attns, 1)
	require.Equal(s.T(), "worker-2", attns[0].WorkerID)
}

func (s *CoordinatorTestSuite) TestHappyPathAppendsReceipt() {
	store := NewMemoryStore()
	store.SetAccumulatorsEnabled(true)
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	accumulator := &countingAccumulator{}
	coordinator := Coordinator{
		Store:               store,
		Engine:              testEngine(accumulator),
		AccumulatorsEnabled: true,
	}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.Nil(s.T(), err)

	pkg, err := store.GetPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), model.PackageStatusCompleted, pkg.Status)

	report, attns, err := store.GetReportByPackage(s.ctx, "pkg-1")
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), report.ID)
	require.Equal(s.T(), "refined-pkg-1", report.RefineOutputHash)
	require.Len(s.T(), attns, 1)

	require.Equal(s.T(), 1, accumulator.count)
	require.Equal(s.T(), 1, accumulator.messages)

	receipt, err := store.Receipt(s.ctx, "refined-pkg-1")
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), receipt.Seq)
	require.Equal(s.T(), model.ReceiptTypeReport, receipt.EntryType)
	require.Equal(s.T(), string(model.PackageStatusCompleted), receipt.Status)
	require.Equal(s.T(), report.CreatedAt, receipt.ProcessedAt)
}

func (s *CoordinatorTestSuite) TestReceiptSkippedWhenDisabled() {
	store := NewMemoryStore()
	store.SetAccumulatorsEnabled(true)
	require.Nil(s.T(), store.EnqueuePackage(s.ctx, testPackage("pkg-1", "svc-1")))

	coordinator := Coordinator{Store: store, Engine: testEngine(&countingAccumulator{})}

	processed, err := coordinator.ProcessNext(s.ctx)
	require.True(s.T(), processed)
	require.Nil(s.T(), err)

	_, err = store.Receipt(s.ctx, "refined-pkg-1")
	require.ErrorIs(s.T(), err, ErrNotFound)
}
