package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgtype"
	"github.com/lib/pq"

	"github.com/workmesh/ledger/src/utils/hasher"
	"github.com/workmesh/ledger/src/utils/model"
)

// MemoryStore keeps the whole ledger in process memory. Used by tests and
// the memory storage mode, observable behavior matches PostgresStore.
type MemoryStore struct {
	mtx sync.RWMutex

	packages     map[string]*model.WorkPackage
	reports      map[string]*model.WorkReport
	reportByPkg  map[string]string
	attestations map[string]map[string]model.Attestation
	receipts     map[string]*model.Receipt
	accumulators map[string]*model.AccumulatorRoot

	hashAlg      string
	accumEnabled bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		packages:     make(map[string]*model.WorkPackage),
		reports:      make(map[string]*model.WorkReport),
		reportByPkg:  make(map[string]string),
		attestations: make(map[string]map[string]model.Attestation),
		receipts:     make(map[string]*model.Receipt),
		accumulators: make(map[string]*model.AccumulatorRoot),
	}
}

func (self *MemoryStore) EnqueuePackage(_ context.Context, pkg model.WorkPackage) (err error) {
	err = validatePackage(&pkg)
	if err != nil {
		return
	}

	if pkg.Status == "" {
		pkg.Status = model.PackageStatusPending
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now().UTC()
	}

	items := make([]model.WorkItem, len(pkg.Items))
	copy(items, pkg.Items)
	for i := range items {
		items[i].PackageID = pkg.ID
	}
	pkg.Items = items

	self.mtx.Lock()
	defer self.mtx.Unlock()

	if _, ok := self.packages[pkg.ID]; ok {
		return ValidationError("package already exists")
	}

	self.packages[pkg.ID] = &pkg
	return
}

func (self *MemoryStore) ClaimNextPending(_ context.Context) (pkg model.WorkPackage, found bool, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	var oldest *model.WorkPackage
	for _, candidate := range self.packages {
		if candidate.Status != model.PackageStatusPending {
			continue
		}
		if oldest == nil ||
			candidate.CreatedAt.Before(oldest.CreatedAt) ||
			(candidate.CreatedAt.Equal(oldest.CreatedAt) && candidate.ID < oldest.ID) {
			oldest = candidate
		}
	}
	if oldest == nil {
		return
	}

	oldest.Status = model.PackageStatusProcessing
	pkg = copyPackage(oldest)
	found = true
	return
}

func (self *MemoryStore) GetPackage(_ context.Context, id string) (pkg model.WorkPackage, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	stored, ok := self.packages[id]
	if !ok {
		err = ErrNotFound
		return
	}

	pkg = copyPackage(stored)
	return
}

func (self *MemoryStore) UpdatePackageStatus(_ context.Context, id string, status model.PackageStatus) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	pkg, ok := self.packages[id]
	if !ok {
		return ErrNotFound
	}

	pkg.Status = status
	return
}

func (self *MemoryStore) SaveReport(_ context.Context, report model.WorkReport, attestations []model.Attestation) (err error) {
	err = validateReport(&report)
	if err != nil {
		return
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	now := time.Now().UTC()
	attns := make([]model.Attestation, len(attestations))
	copy(attns, attestations)
	for i := range attns {
		attns[i].ReportID = report.ID
		if attns[i].CreatedAt.IsZero() {
			attns[i].CreatedAt = now
		}
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	if _, ok := self.packages[report.PackageID]; !ok {
		return ErrNotFound
	}
	if existing, ok := self.reportByPkg[report.PackageID]; ok && existing != report.ID {
		return ValidationError("package already has a report")
	}

	self.reports[report.ID] = &report
	self.reportByPkg[report.PackageID] = report.ID

	votes := self.attestations[report.ID]
	if votes == nil {
		votes = make(map[string]model.Attestation, len(attns))
		self.attestations[report.ID] = votes
	}
	for _, attn := range attns {
		votes[attn.WorkerID] = attn
	}
	return
}

func (self *MemoryStore) GetReportByPackage(_ context.Context, packageID string) (report model.WorkReport, attestations []model.Attestation, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	id, ok := self.reportByPkg[packageID]
	if !ok {
		err = ErrNotFound
		return
	}
	report = *self.reports[id]

	votes := self.attestations[id]
	attestations = make([]model.Attestation, 0, len(votes))
	for _, attn := range votes {
		attestations = append(attestations, attn)
	}
	sort.Slice(attestations, func(i, j int) bool {
		return attestations[i].WorkerID < attestations[j].WorkerID
	})
	return
}

func (self *MemoryStore) AppendReceipt(_ context.Context, input ReceiptInput) (receipt model.Receipt, err error) {
	if !self.accumulatorsEnabled() {
		return
	}

	err = validateReceiptInput(&input)
	if err != nil {
		return
	}

	if input.ProcessedAt.IsZero() {
		input.ProcessedAt = time.Now().UTC()
	}
	h := hasher.Get(self.HashAlgorithm())
	if input.MetadataHash == "" {
		input.MetadataHash = ReportMetadataHash(model.WorkReport{
			RefineOutputHash: input.Hash,
			ServiceID:        input.ServiceID,
		}, h)
	}

	extra := pgtype.JSONB{Status: pgtype.Null}
	if input.Extra != nil {
		err = extra.Set(input.Extra)
		if err != nil {
			return
		}
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()

	// Replayed hash, hand back the sealed receipt and leave the
	// accumulator where it is
	if existing, ok := self.receipts[input.Hash]; ok {
		receipt = *existing
		return
	}

	acc := self.accumulators[input.ServiceID]
	if acc == nil {
		acc = &model.AccumulatorRoot{ServiceID: input.ServiceID}
		self.accumulators[input.ServiceID] = acc
	}

	seq := acc.Seq + 1
	receipt = model.Receipt{
		Hash:         input.Hash,
		ServiceID:    input.ServiceID,
		EntryType:    input.EntryType,
		Seq:          seq,
		PrevRoot:     acc.Root,
		NewRoot:      deriveRoot(acc.Root, input, seq, h),
		Status:       input.Status,
		ProcessedAt:  input.ProcessedAt,
		MetadataHash: input.MetadataHash,
		Extra:        extra,
	}

	stored := receipt
	self.receipts[input.Hash] = &stored

	acc.Seq = seq
	acc.Root = receipt.NewRoot
	acc.UpdatedAt = input.ProcessedAt
	return
}

func (self *MemoryStore) Receipt(_ context.Context, hash string) (receipt model.Receipt, err error) {
	if !self.accumulatorsEnabled() {
		err = ErrNotFound
		return
	}

	self.mtx.RLock()
	defer self.mtx.RUnlock()

	stored, ok := self.receipts[hash]
	if !ok {
		err = ErrNotFound
		return
	}

	receipt = *stored
	return
}

func (self *MemoryStore) AccumulatorRoot(_ context.Context, serviceID string) (root model.AccumulatorRoot, err error) {
	root.ServiceID = serviceID
	if !self.accumulatorsEnabled() {
		return
	}

	self.mtx.RLock()
	defer self.mtx.RUnlock()

	stored, ok := self.accumulators[serviceID]
	if !ok {
		return
	}

	root = *stored
	return
}

func (self *MemoryStore) AccumulatorRoots(_ context.Context) (roots []model.AccumulatorRoot, err error) {
	if !self.accumulatorsEnabled() {
		return
	}

	self.mtx.RLock()
	defer self.mtx.RUnlock()

	roots = make([]model.AccumulatorRoot, 0, len(self.accumulators))
	for _, acc := range self.accumulators {
		roots = append(roots, *acc)
	}
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].ServiceID < roots[j].ServiceID
	})
	return
}

func (self *MemoryStore) ListPackages(_ context.Context, filter PackageFilter) (packages []model.WorkPackage, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	matching := make([]*model.WorkPackage, 0, len(self.packages))
	for _, pkg := range self.packages {
		if filter.Status != "" && pkg.Status != filter.Status {
			continue
		}
		if filter.ServiceID != "" && pkg.ServiceID != filter.ServiceID {
			continue
		}
		matching = append(matching, pkg)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.After(matching[j].CreatedAt)
		}
		return matching[i].ID > matching[j].ID
	})

	start, end := pageBounds(len(matching), filter.Offset, filter.Limit)
	packages = make([]model.WorkPackage, 0, end-start)
	for _, pkg := range matching[start:end] {
		packages = append(packages, copyPackage(pkg))
	}
	return
}

func (self *MemoryStore) ListReports(_ context.Context, filter ReportFilter) (reports []model.WorkReport, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	matching := make([]*model.WorkReport, 0, len(self.reports))
	for _, report := range self.reports {
		if filter.ServiceID != "" && report.ServiceID != filter.ServiceID {
			continue
		}
		matching = append(matching, report)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.After(matching[j].CreatedAt)
		}
		return matching[i].ID > matching[j].ID
	})

	start, end := pageBounds(len(matching), filter.Offset, filter.Limit)
	reports = make([]model.WorkReport, 0, end-start)
	for _, report := range matching[start:end] {
		reports = append(reports, *report)
	}
	return
}

func (self *MemoryStore) ListReceipts(_ context.Context, filter ReceiptFilter) (receipts []model.Receipt, err error) {
	if !self.accumulatorsEnabled() {
		return
	}

	self.mtx.RLock()
	defer self.mtx.RUnlock()

	matching := make([]*model.Receipt, 0, len(self.receipts))
	for _, receipt := range self.receipts {
		if filter.ServiceID != "" && receipt.ServiceID != filter.ServiceID {
			continue
		}
		if filter.EntryType != "" && receipt.EntryType != filter.EntryType {
			continue
		}
		matching = append(matching, receipt)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].ProcessedAt.Equal(matching[j].ProcessedAt) {
			return matching[i].ProcessedAt.After(matching[j].ProcessedAt)
		}
		if matching[i].Seq != matching[j].Seq {
			return matching[i].Seq > matching[j].Seq
		}
		return matching[i].Hash < matching[j].Hash
	})

	start, end := pageBounds(len(matching), filter.Offset, filter.Limit)
	receipts = make([]model.Receipt, 0, end-start)
	for _, receipt := range matching[start:end] {
		receipts = append(receipts, *receipt)
	}
	return
}

func (self *MemoryStore) PendingCount(_ context.Context) (count int, err error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	for _, pkg := range self.packages {
		if pkg.Status == model.PackageStatusPending {
			count++
		}
	}
	return
}

func (self *MemoryStore) SetAccumulatorHash(algo string) {
	algo = strings.TrimSpace(algo)
	if algo == "" {
		return
	}
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.hashAlg = hasher.Normalize(algo)
}

func (self *MemoryStore) SetAccumulatorsEnabled(enabled bool) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.accumEnabled = enabled
}

func (self *MemoryStore) HashAlgorithm() string {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	if self.hashAlg == "" {
		return hasher.DefaultAlgorithm
	}
	return self.hashAlg
}

func (self *MemoryStore) accumulatorsEnabled() bool {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.accumEnabled
}

func copyPackage(pkg *model.WorkPackage) (out model.WorkPackage) {
	out = *pkg
	out.PreimageHashes = append(pq.StringArray(nil), pkg.PreimageHashes...)
	out.Items = append([]model.WorkItem(nil), pkg.Items...)
	return
}
