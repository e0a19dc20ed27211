package ledger

import (
	"encoding/hex"

	"github.com/hamba/avro"

	"github.com/workmesh/ledger/src/utils/hasher"
	"github.com/workmesh/ledger/src/utils/model"
)

// Canonical form of one accumulator step. Field order is frozen by the
// schema. Volatile fields (processed_at, extra) stay out so a replay of the
// same receipts derives the same root.
type sealRecord struct {
	PrevRoot     string `avro:"prev_root"`
	Hash         string `avro:"hash"`
	ServiceID    string `avro:"service_id"`
	EntryType    string `avro:"entry_type"`
	Status       string `avro:"status"`
	MetadataHash string `avro:"metadata_hash"`
	Seq          int64  `avro:"seq"`
}

var sealSchema = avro.MustParse(`{"type": "record", "name": "receipt_seal", "fields": [{"name": "prev_root", "type": "string"}, {"name": "hash", "type": "string"}, {"name": "service_id", "type": "string"}, {"name": "entry_type", "type": "string"}, {"name": "status", "type": "string"}, {"name": "metadata_hash", "type": "string"}, {"name": "seq", "type": "long"}]}`)

// deriveRoot chains the previous root with the sealed entry
func deriveRoot(prevRoot string, input ReceiptInput, seq int64, h hasher.Hasher) string {
	record := sealRecord{
		PrevRoot:     prevRoot,
		Hash:         input.Hash,
		ServiceID:    input.ServiceID,
		EntryType:    input.EntryType,
		Status:       input.Status,
		MetadataHash: input.MetadataHash,
		Seq:          seq,
	}

	// Fixed schema over plain fields, marshalling cannot fail
	data, _ := avro.Marshal(sealSchema, record)
	return hex.EncodeToString(h.Sum(data))
}

type metadataRecord struct {
	Kind        string `avro:"kind"`
	ServiceID   string `avro:"service_id"`
	ContentHash string `avro:"content_hash"`
}

var metadataSchema = avro.MustParse(`{"type": "record", "name": "entry_metadata", "fields": [{"name": "kind", "type": "string"}, {"name": "service_id", "type": "string"}, {"name": "content_hash", "type": "string"}]}`)

func metadataHash(kind, serviceID, contentHash string, h hasher.Hasher) string {
	data, _ := avro.Marshal(metadataSchema, metadataRecord{
		Kind:        kind,
		ServiceID:   serviceID,
		ContentHash: contentHash,
	})
	return hex.EncodeToString(h.Sum(data))
}

// PackageMetadataHash digests the identifying fields of a package receipt
func PackageMetadataHash(pkg model.WorkPackage, h hasher.Hasher) string {
	return metadataHash("package", pkg.ServiceID, pkg.ID, h)
}

// ReportMetadataHash digests the identifying fields of a report receipt
func ReportMetadataHash(report model.WorkReport, h hasher.Hasher) string {
	return metadataHash("report", report.ServiceID, report.RefineOutputHash, h)
}
