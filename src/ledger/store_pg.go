package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgtype"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmesh/ledger/src/utils/hasher"
	"github.com/workmesh/ledger/src/utils/model"
)

// PostgresStore keeps the ledger in Postgres through the shared gorm
// connection. The claim and append paths rely on row locks, so many api and
// processor instances can share one database.
type PostgresStore struct {
	db *gorm.DB

	mtx          sync.RWMutex
	hashAlg      string
	accumEnabled bool
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (self *PostgresStore) EnqueuePackage(ctx context.Context, pkg model.WorkPackage) (err error) {
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

	return self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			err = tx.Create(&pkg).Error
			if err != nil {
				return err
			}
			return tx.CreateInBatches(items, 100).Error
		})
}

func (self *PostgresStore) ClaimNextPending(ctx context.Context) (pkg model.WorkPackage, found bool, err error) {
	err = self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			var claimed []model.WorkPackage

			// Lock skips packages already taken by a concurrent claimer
			err = tx.Raw(`UPDATE work_packages
					SET status = 'processing'
					WHERE id IN (
						SELECT id
						FROM work_packages
						WHERE status = 'pending'
						ORDER BY created_at ASC, id ASC
						LIMIT 1
						FOR UPDATE SKIP LOCKED)
					RETURNING *`).
				Scan(&claimed).
				Error
			if err != nil {
				return err
			}

			if len(claimed) == 0 {
				return nil
			}

			pkg = claimed[0]
			found = true
			return attachItems(tx, []*model.WorkPackage{&pkg})
		})
	return
}

func (self *PostgresStore) GetPackage(ctx context.Context, id string) (pkg model.WorkPackage, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableWorkPackage).
		Where("id = ?", id).
		First(&pkg).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	if err != nil {
		return
	}

	err = attachItems(self.db.WithContext(ctx), []*model.WorkPackage{&pkg})
	return
}

func (self *PostgresStore) UpdatePackageStatus(ctx context.Context, id string, status model.PackageStatus) (err error) {
	result := self.db.WithContext(ctx).
		Table(model.TableWorkPackage).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return
}

func (self *PostgresStore) SaveReport(ctx context.Context, report model.WorkReport, attestations []model.Attestation) (err error) {
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

	return self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			var count int64
			err = tx.Table(model.TableWorkPackage).
				Where("id = ?", report.PackageID).
				Count(&count).
				Error
			if err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}

			err = tx.Create(&report).Error
			if err != nil {
				return err
			}

			if len(attns) == 0 {
				return nil
			}

			// Re-votes replace the previous attestation of the same worker
			return tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "report_id"}, {Name: "worker_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"signature", "weight", "created_at", "engine", "engine_version",
				}),
			}).
				CreateInBatches(attns, 100).
				Error
		})
}

func (self *PostgresStore) GetReportByPackage(ctx context.Context, packageID string) (report model.WorkReport, attestations []model.Attestation, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableWorkReport).
		Where("package_id = ?", packageID).
		First(&report).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	if err != nil {
		return
	}

	err = self.db.WithContext(ctx).
		Table(model.TableAttestation).
		Where("report_id = ?", report.ID).
		Order("worker_id ASC").
		Find(&attestations).
		Error
	return
}

func (self *PostgresStore) AppendReceipt(ctx context.Context, input ReceiptInput) (receipt model.Receipt, err error) {
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

	err = self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			// Make sure the accumulator row exists, the lock below needs
			// something to hold on first contact with a service
			err = tx.Table(model.TableAccumulator).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "service_id"}},
					DoNothing: true,
				}).
				Create(&model.AccumulatorRoot{
					ServiceID: input.ServiceID,
					UpdatedAt: input.ProcessedAt,
				}).
				Error
			if err != nil {
				return err
			}

			var acc model.AccumulatorRoot
			err = tx.Table(model.TableAccumulator).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("service_id = ?", input.ServiceID).
				First(&acc).
				Error
			if err != nil {
				return err
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

			result := tx.Table(model.TableReceipt).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "hash"}},
					DoNothing: true,
				}).
				Create(&receipt)
			if result.Error != nil {
				return result.Error
			}

			// Replayed hash, hand back the sealed receipt and leave the
			// accumulator where it is
			if result.RowsAffected == 0 {
				return tx.Table(model.TableReceipt).
					Where("hash = ?", input.Hash).
					First(&receipt).
					Error
			}

			return tx.Table(model.TableAccumulator).
				Where("service_id = ?", input.ServiceID).
				Updates(map[string]interface{}{
					"seq":        seq,
					"root":       receipt.NewRoot,
					"updated_at": input.ProcessedAt,
				}).
				Error
		})
	return
}

func (self *PostgresStore) Receipt(ctx context.Context, hash string) (receipt model.Receipt, err error) {
	if !self.accumulatorsEnabled() {
		err = ErrNotFound
		return
	}

	err = self.db.WithContext(ctx).
		Table(model.TableReceipt).
		Where("hash = ?", hash).
		First(&receipt).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func (self *PostgresStore) AccumulatorRoot(ctx context.Context, serviceID string) (root model.AccumulatorRoot, err error) {
	root.ServiceID = serviceID
	if !self.accumulatorsEnabled() {
		return
	}

	err = self.db.WithContext(ctx).
		Table(model.TableAccumulator).
		Where("service_id = ?", serviceID).
		First(&root).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Unknown services read as the zero accumulator
		err = nil
		root = model.AccumulatorRoot{ServiceID: serviceID}
	}
	return
}

func (self *PostgresStore) AccumulatorRoots(ctx context.Context) (roots []model.AccumulatorRoot, err error) {
	if !self.accumulatorsEnabled() {
		return
	}

	err = self.db.WithContext(ctx).
		Table(model.TableAccumulator).
		Order("service_id ASC").
		Find(&roots).
		Error
	return
}

func (self *PostgresStore) ListPackages(ctx context.Context, filter PackageFilter) (packages []model.WorkPackage, err error) {
	query := self.db.WithContext(ctx).
		Table(model.TableWorkPackage).
		Order("created_at DESC, id DESC").
		Limit(limitOrDefault(filter.Limit)).
		Offset(filter.Offset)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ServiceID != "" {
		query = query.Where("service_id = ?", filter.ServiceID)
	}

	err = query.Find(&packages).Error
	if err != nil {
		return
	}

	pointers := make([]*model.WorkPackage, len(packages))
	for i := range packages {
		pointers[i] = &packages[i]
	}
	err = attachItems(self.db.WithContext(ctx), pointers)
	return
}

func (self *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) (reports []model.WorkReport, err error) {
	query := self.db.WithContext(ctx).
		Table(model.TableWorkReport).
		Order("created_at DESC, id DESC").
		Limit(limitOrDefault(filter.Limit)).
		Offset(filter.Offset)
	if filter.ServiceID != "" {
		query = query.Where("service_id = ?", filter.ServiceID)
	}

	err = query.Find(&reports).Error
	return
}

func (self *PostgresStore) ListReceipts(ctx context.Context, filter ReceiptFilter) (receipts []model.Receipt, err error) {
	if !self.accumulatorsEnabled() {
		return
	}

	query := self.db.WithContext(ctx).
		Table(model.TableReceipt).
		Order("processed_at DESC, seq DESC, hash ASC").
		Limit(limitOrDefault(filter.Limit)).
		Offset(filter.Offset)
	if filter.ServiceID != "" {
		query = query.Where("service_id = ?", filter.ServiceID)
	}
	if filter.EntryType != "" {
		query = query.Where("entry_type = ?", filter.EntryType)
	}

	err = query.Find(&receipts).Error
	return
}

func (self *PostgresStore) PendingCount(ctx context.Context) (count int, err error) {
	var n int64
	err = self.db.WithContext(ctx).
		Table(model.TableWorkPackage).
		Where("status = ?", model.PackageStatusPending).
		Count(&n).
		Error
	count = int(n)
	return
}

func (self *PostgresStore) SetAccumulatorHash(algo string) {
	algo = strings.TrimSpace(algo)
	if algo == "" {
		return
	}
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.hashAlg = hasher.Normalize(algo)
}

func (self *PostgresStore) SetAccumulatorsEnabled(enabled bool) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.accumEnabled = enabled
}

func (self *PostgresStore) HashAlgorithm() string {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	if self.hashAlg == "" {
		return hasher.DefaultAlgorithm
	}
	return self.hashAlg
}

func (self *PostgresStore) accumulatorsEnabled() bool {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.accumEnabled
}

// attachItems loads work items for the given packages in one query
func attachItems(db *gorm.DB, packages []*model.WorkPackage) (err error) {
	if len(packages) == 0 {
		return
	}

	ids := make([]string, len(packages))
	byID := make(map[string]*model.WorkPackage, len(packages))
	for i, pkg := range packages {
		ids[i] = pkg.ID
		byID[pkg.ID] = pkg
	}

	var items []model.WorkItem
	err = db.Table(model.TableWorkItem).
		Where("package_id IN ?", ids).
		Order("id ASC").
		Find(&items).
		Error
	if err != nil {
		return
	}

	for _, item := range items {
		pkg, ok := byID[item.PackageID]
		if !ok {
			continue
		}
		pkg.Items = append(pkg.Items, item)
	}
	return
}
