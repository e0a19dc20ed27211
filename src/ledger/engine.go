package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hamba/avro"

	"github.com/workmesh/ledger/src/utils/build_info"
	"github.com/workmesh/ledger/src/utils/config"
	"github.com/workmesh/ledger/src/utils/hasher"
	"github.com/workmesh/ledger/src/utils/model"
)

// Message is a side effect emitted during refinement and folded in by the
// accumulate stage
type Message struct {
	Kind    string `json:"kind"`
	Payload []byte `json:"payload,omitempty"`
}

// Refiner turns a claimed package into a report, reading referenced
// preimages from the store
type Refiner interface {
	Refine(ctx context.Context, pkg model.WorkPackage, preimages PreimageStore) (model.WorkReport, []Message, error)
}

// Attestor votes on a refined report
type Attestor interface {
	Attest(ctx context.Context, report model.WorkReport) (model.Attestation, error)
}

// Accumulator applies the messages of an attested report
type Accumulator interface {
	Accumulate(ctx context.Context, report model.WorkReport, messages []Message) error
}

// Engine bundles the processing stages of one worker
type Engine struct {
	Preimages   PreimageStore
	Refiner     Refiner
	Attestors   []Attestor
	Accumulator Accumulator

	// Minimum number of votes a report needs before it is saved
	Threshold int
}

func (self *Engine) Validate() error {
	if self.Refiner == nil {
		return ValidationError("engine needs a refiner")
	}
	if self.Accumulator == nil {
		return ValidationError("engine needs an accumulator")
	}
	if len(self.Attestors) == 0 {
		return ValidationError("engine needs at least one attestor")
	}
	if self.Threshold < 1 || self.Threshold > len(self.Attestors) {
		return ValidationError("engine threshold out of range")
	}
	return nil
}

// NewEngine assembles the engine from the configuration. The builtin refiner
// and attestor share the store's hashing strategy, so reports stay consistent
// with receipt roots.
func NewEngine(config *config.Config, store Store, preimages PreimageStore) (engine Engine) {
	attestors := []Attestor{
		StaticAttestor{
			WorkerID:      config.Engine.AttestorWorkerId,
			Weight:        config.Engine.AttestorWeight,
			Engine:        "builtin",
			EngineVersion: build_info.Version,
			Algorithm:     store.HashAlgorithm(),
		},
	}
	if config.Engine.RemoteAttestorEnabled {
		attestors = append(attestors, NewRemoteAttestor(config))
	}

	return Engine{
		Preimages:   preimages,
		Refiner:     HashRefiner{Algorithm: store.HashAlgorithm()},
		Attestors:   attestors,
		Accumulator: NoopAccumulator{},
		Threshold:   config.Engine.Threshold,
	}
}

type refineItemRecord struct {
	ID         string `avro:"id"`
	Kind       string `avro:"kind"`
	ParamsHash string `avro:"params_hash"`
	MaxFee     int64  `avro:"max_fee"`
}

type refineRecord struct {
	PackageID string             `avro:"package_id"`
	ServiceID string             `avro:"service_id"`
	Nonce     int64              `avro:"nonce"`
	Items     []refineItemRecord `avro:"items"`
}

var refineItemSchema = avro.MustParse(`{"type": "record", "name": "refine_item", "fields": [{"name": "id", "type": "string"}, {"name": "kind", "type": "string"}, {"name": "params_hash", "type": "string"}, {"name": "max_fee", "type": "long"}]}`)

var refineSchema = avro.MustParse(`{"type": "record", "name": "refine_input", "fields": [{"name": "package_id", "type": "string"}, {"name": "service_id", "type": "string"}, {"name": "nonce", "type": "long"}, {"name": "items", "type": {"type": "array", "items": {"type": "record", "name": "refine_input_item", "fields": [{"name": "id", "type": "string"}, {"name": "kind", "type": "string"}, {"name": "params_hash", "type": "string"}, {"name": "max_fee", "type": "long"}]}}}]}`)

// Length of the compact form kept alongside the full refine output hash
const refineCompactLen = 16

// HashRefiner derives the refine output from the package content alone, the
// same package always yields the same report hash. Referenced preimages have
// to be present in the store before refinement.
type HashRefiner struct {
	Algorithm string
}

func (self HashRefiner) Refine(ctx context.Context, pkg model.WorkPackage, preimages PreimageStore) (report model.WorkReport, messages []Message, err error) {
	h := hasher.Get(self.Algorithm)

	err = self.checkPreimages(ctx, &pkg, preimages)
	if err != nil {
		return
	}

	record := refineRecord{
		PackageID: pkg.ID,
		ServiceID: pkg.ServiceID,
		Nonce:     pkg.Nonce,
		Items:     make([]refineItemRecord, 0, len(pkg.Items)),
	}
	messages = make([]Message, 0, len(pkg.Items))
	for _, item := range pkg.Items {
		itemRecord := refineItemRecord{
			ID:         item.ID,
			Kind:       item.Kind,
			ParamsHash: item.ParamsHash,
			MaxFee:     item.MaxFee,
		}
		record.Items = append(record.Items, itemRecord)

		itemData, _ := avro.Marshal(refineItemSchema, itemRecord)
		messages = append(messages, Message{
			Kind:    item.Kind,
			Payload: h.Sum(itemData),
		})
	}

	data, _ := avro.Marshal(refineSchema, record)
	outputHash := hex.EncodeToString(h.Sum(data))

	report = model.WorkReport{
		ServiceID:           pkg.ServiceID,
		RefineOutputHash:    outputHash,
		RefineOutputCompact: outputHash[:refineCompactLen],
		Traces:              fmt.Sprintf("refined %d items with %s", len(pkg.Items), h.Name()),
	}
	return
}

func (self HashRefiner) checkPreimages(ctx context.Context, pkg *model.WorkPackage, preimages PreimageStore) (err error) {
	hashes := append([]string{}, pkg.PreimageHashes...)
	for _, item := range pkg.Items {
		hashes = append(hashes, item.PreimageHashes...)
	}
	if len(hashes) == 0 {
		return
	}
	if preimages == nil {
		return ValidationError("package references preimages but no store is wired")
	}

	for _, hash := range hashes {
		_, err = preimages.Stat(ctx, hash)
		if err != nil {
			return fmt.Errorf("preimage %s: %w", hash, err)
		}
	}
	return
}

// StaticAttestor votes with a fixed worker identity. The signature binds the
// worker to the report hash, verification is out of scope.
type StaticAttestor struct {
	WorkerID      string
	Weight        int64
	Engine        string
	EngineVersion string
	Algorithm     string
}

func (self StaticAttestor) Attest(_ context.Context, report model.WorkReport) (attestation model.Attestation, err error) {
	h := hasher.Get(self.Algorithm)
	attestation = model.Attestation{
		ReportID:      report.ID,
		WorkerID:      self.WorkerID,
		Signature:     hex.EncodeToString(h.Sum([]byte(self.WorkerID + ":" + report.RefineOutputHash))),
		Weight:        self.Weight,
		Engine:        self.Engine,
		EngineVersion: self.EngineVersion,
		CreatedAt:     time.Now().UTC(),
	}
	return
}

// NoopAccumulator accepts every report without side effects
type NoopAccumulator struct{}

func (NoopAccumulator) Accumulate(context.Context, model.WorkReport, []Message) error {
	return nil
}
