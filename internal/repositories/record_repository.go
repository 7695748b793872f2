package repositories

import (
	"context"
	"fmt"

	"intake-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordRepository struct {
	DB *pgxpool.Pool
}

func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{DB: db}
}

const recordColumns = `id, sku, total_quantity, total_boxes, box_type, mix_box_group_key,
       country, operator, COALESCE(packer, '') as packer, COALESCE(remark, '') as remark,
       status, created_at, updated_at`

func scanRecord(row pgx.Row) (*models.InventoryRecord, error) {
	var r models.InventoryRecord
	err := row.Scan(&r.ID, &r.SKU, &r.TotalQuantity, &r.TotalBoxes, &r.BoxType, &r.MixBoxGroupKey,
		&r.Country, &r.Operator, &r.Packer, &r.Remark, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateBatch inserts all records in one transaction: either the whole
// intake lands or none of it does. IDs and timestamps are assigned by the
// database; NOW() is the transaction timestamp, so every record of a batch
// shares created_at and consecutive seq values keep mixed-box group members
// contiguous in the ordered list.
func (r *RecordRepository) CreateBatch(ctx context.Context, records []*models.InventoryRecord) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		err := tx.QueryRow(ctx,
			`INSERT INTO inventory_records(sku, total_quantity, total_boxes, box_type, mix_box_group_key,
			                               country, operator, packer, remark, status)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at, updated_at`,
			rec.SKU, rec.TotalQuantity, rec.TotalBoxes, rec.BoxType, rec.MixBoxGroupKey,
			rec.Country, rec.Operator, rec.Packer, rec.Remark, rec.Status,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert record for sku %s: %w", rec.SKU, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *RecordRepository) Get(ctx context.Context, id string) (*models.InventoryRecord, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM inventory_records WHERE id=$1`, id)
	return scanRecord(row)
}

// List returns all records newest intake first. Within one intake batch
// records keep insertion order, so mixed-box group members stay contiguous -
// the ordering contract the row-span projector depends on.
func (r *RecordRepository) List(ctx context.Context) ([]*models.InventoryRecord, error) {
	return r.list(ctx,
		`SELECT `+recordColumns+` FROM inventory_records
	     ORDER BY created_at DESC, seq ASC`)
}

// ListByStatus returns records in one lifecycle status, same ordering as List.
func (r *RecordRepository) ListByStatus(ctx context.Context, status string) ([]*models.InventoryRecord, error) {
	if status != models.StatusPending && status != models.StatusShipped && status != models.StatusCancelled {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	return r.list(ctx,
		`SELECT `+recordColumns+` FROM inventory_records
	     WHERE status=$1
	     ORDER BY created_at DESC, seq ASC`, status)
}

// ListByGroupKey returns every member of one mixed-box group in insertion order.
func (r *RecordRepository) ListByGroupKey(ctx context.Context, groupKey string) ([]*models.InventoryRecord, error) {
	return r.list(ctx,
		`SELECT `+recordColumns+` FROM inventory_records
	     WHERE mix_box_group_key=$1
	     ORDER BY seq ASC`, groupKey)
}

func (r *RecordRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.InventoryRecord, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *RecordRepository) Update(ctx context.Context, id string, req *models.UpdateRecordRequest) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE inventory_records
	     SET sku=$1, total_quantity=$2, total_boxes=$3, country=$4, packer=$5, remark=$6, status=$7, updated_at=NOW()
	     WHERE id=$8`,
		req.SKU, req.TotalQuantity, req.TotalBoxes, req.Country, req.Packer, req.Remark, req.Status, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

// ApplyGroupPatch applies the group-level metadata patch to one member
// record. The cascade layer fans this out across the group.
func (r *RecordRepository) ApplyGroupPatch(ctx context.Context, id string, patch *models.GroupPatch) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE inventory_records
	     SET country=$1, packer=$2, remark=$3, status=$4, updated_at=NOW()
	     WHERE id=$5`,
		patch.Country, patch.Packer, patch.Remark, patch.Status, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM inventory_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

// CountByBoxType returns how many records exist per box type, for the
// monitoring dashboard.
func (r *RecordRepository) CountByBoxType(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT box_type, COUNT(*) FROM inventory_records GROUP BY box_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var boxType string
		var n int
		if err := rows.Scan(&boxType, &n); err != nil {
			return nil, err
		}
		counts[boxType] = n
	}
	return counts, rows.Err()
}
