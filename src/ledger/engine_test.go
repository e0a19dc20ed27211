package ledger

import (
	"bytes"
	"context"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/workmesh/ledger/src/utils/model"

	"testing"
)

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

type EngineTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *EngineTestSuite) TestValidate() {
	var verr ValidationError

	engine := Engine{}
	require.ErrorAs(s.T(), engine.Validate(), &verr)

	engine = Engine{
		Refiner:     HashRefiner{},
		Accumulator: NoopAccumulator{},
		Attestors:   []Attestor{StaticAttestor{WorkerID: "w"}},
		Threshold:   1,
	}
	require.Nil(s.T(), engine.Validate())

	missingAccumulator := engine
	missingAccumulator.Accumulator = nil
	require.ErrorAs(s.T(), missingAccumulator.Validate(), &verr)

	noAttestors := engine
	noAttestors.Attestors = nil
	require.ErrorAs(s.T(), noAttestors.Validate(), &verr)

	zeroThreshold := engine
	zeroThreshold.Threshold = 0
	require.ErrorAs(s.T(), zeroThreshold.Validate(), &verr)

	unreachableThreshold := engine
	unreachableThreshold.Threshold = 2
	require.ErrorAs(s.T(), unreachableThreshold.Validate(), &verr)
}

func (s *EngineTestSuite) TestHashRefinerIsDeterministic() {
	refiner := HashRefiner{}
	pkg := model.WorkPackage{
		ID:        "pkg-1",
		ServiceID: "svc-1",
		Nonce:     7,
		Items: []model.WorkItem{
			{ID: "item-1", Kind: "transfer", ParamsHash: "params", MaxFee: 10},
			{ID: "item-2", Kind: "mint", ParamsHash: "params-2"},
		},
	}

	first, messages, err := refiner.Refine(s.ctx, pkg, nil)
	require.Nil(s.T(), err)
	second, _, err := refiner.Refine(s.ctx, pkg, nil)
	require.Nil(s.T(), err)

	require.Equal(s.T(), first.RefineOutputHash, second.RefineOutputHash)
	require.Len(s.T(), first.RefineOutputHash, 64)
	require.Equal(s.T(), first.RefineOutputHash[:refineCompactLen], first.RefineOutputCompact)
	require.Equal(s.T(), "svc-1", first.ServiceID)
	require.NotEmpty(s.T(), first.Traces)

	// One message per item, kinds carried over
	require.Len(s.T(), messages, 2)
	require.Equal(s.T(), "transfer", messages[0].Kind)
	require.Equal(s.T(), "mint", messages[1].Kind)
	require.NotEmpty(s.T(), messages[0].Payload)

	changed := pkg
	changed.Nonce = 8
	third, _, err := refiner.Refine(s.ctx, changed, nil)
	require.Nil(s.T(), err)
	require.NotEqual(s.T(), first.RefineOutputHash, third.RefineOutputHash)
}

func (s *EngineTestSuite) TestHashRefinerChecksPreimages() {
	refiner := HashRefiner{}
	pkg := model.WorkPackage{
		ID:             "pkg-1",
		ServiceID:      "svc-1",
		PreimageHashes: []string{"preimage-1"},
		Items:          []model.WorkItem{{ID: "item-1", Kind: "transfer"}},
	}

	// Referenced preimage without a store
	_, _, err := refiner.Refine(s.ctx, pkg, nil)
	require.NotNil(s.T(), err)

	// Referenced preimage missing from the store
	preimages := NewMemoryPreimageStore()
	_, _, err = refiner.Refine(s.ctx, pkg, preimages)
	require.ErrorIs(s.T(), err, ErrNotFound)

	_, err = preimages.Put(s.ctx, "preimage-1", "text/plain", bytes.NewReader([]byte("payload")), 7)
	require.Nil(s.T(), err)

	_, _, err = refiner.Refine(s.ctx, pkg, preimages)
	require.Nil(s.T(), err)
}

func (s *EngineTestSuite) TestStaticAttestor() {
	attestor := StaticAttestor{
		WorkerID:      "worker-1",
		Weight:        3,
		Engine:        "hash",
		EngineVersion: "1",
	}
	report := model.WorkReport{ID: "report-1", RefineOutputHash: "hash-1"}

	first, err := attestor.Attest(s.ctx, report)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "report-1", first.ReportID)
	require.Equal(s.T(), "worker-1", first.WorkerID)
	require.Equal(s.T(), int64(3), first.Weight)
	require.Equal(s.T(), "hash", first.Engine)
	require.NotEmpty(s.T(), first.Signature)

	second, err := attestor.Attest(s.ctx, report)
	require.Nil(s.T(), err)
	require.Equal(s.T(), first.Signature, second.Signature)

	other, err := attestor.Attest(s.ctx, model.WorkReport{ID: "report-2", RefineOutputHash: "hash-2"})
	require.Nil(s.T(), err)
	require.NotEqual(s.T(), first.Signature, other.Signature)
}
