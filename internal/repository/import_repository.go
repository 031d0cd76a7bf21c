package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ErrUndoExpired is returned when the undo window has elapsed. No writes are
// performed in that case.
var ErrUndoExpired = errors.New("undo window expired")

// UndoWindow is how long an import batch stays revertable. Evaluated by
// wall-clock comparison at undo time; stale batches are never purged, they
// just become un-revertable.
const UndoWindow = 5 * time.Minute

type ImportRepository struct {
	DB *db.Postgres
}

// ImportRow carries only the fields present in the source spreadsheet row.
// A nil field means the column was absent (or, for Due, unparsable) and must
// not overwrite the existing value.
type ImportRow struct {
	Name    string
	Address *string
	Mobile  *string
	Due     *float64
}

// ImportShops creates or partially updates the owner's shops from parsed
// rows inside a single transaction, snapshotting pre-update state so the
// whole batch can be undone.
func (r ImportRepository) ImportShops(ctx context.Context, ownerID int64, rows []ImportRow) (*domain.ImportBatch, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := loadShopIndex(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	batch := domain.ImportBatch{OwnerID: ownerID, Kind: domain.ImportKindShops}
	snapshotted := make(map[int64]bool)

	for _, row := range rows {
		key := matchKey(row.Name)
		if key == "" {
			continue
		}
		if snap, ok := existing[key]; ok {
			if !snapshotted[snap.ShopID] {
				batch.Revert.Updated = append(batch.Revert.Updated, snap)
				snapshotted[snap.ShopID] = true
			}
			_, err := tx.Exec(ctx, `
				UPDATE shops SET
					address    = COALESCE($3, address),
					mobile     = COALESCE($4, mobile),
					due_amount = COALESCE($5, due_amount),
					updated_at = now()
				WHERE id=$1 AND owner_id=$2
			`, snap.ShopID, ownerID, row.Address, row.Mobile, row.Due)
			if err != nil {
				return nil, err
			}
			batch.UpdatedCount++
		} else {
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO shops (owner_id, name, address, mobile, due_amount, created_at, updated_at)
				VALUES ($1,$2, COALESCE($3,''), COALESCE($4,''), COALESCE($5,0), now(), now())
				RETURNING id
			`, ownerID, row.Name, row.Address, row.Mobile, row.Due).Scan(&id)
			if err != nil {
				return nil, err
			}
			batch.Revert.CreatedShopIDs = append(batch.Revert.CreatedShopIDs, id)
			existing[key] = domain.ShopSnapshot{ShopID: id, Name: row.Name}
			batch.CreatedCount++
		}
	}

	if err := insertBatch(ctx, tx, &batch); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &batch, nil
}

// DueRow is one parsed row of a dues-only bulk update.
type DueRow struct {
	Name string
	Due  float64
}

// BulkUpdateDues updates due_amount for name-matched shops. Unmatched names
// are returned as a warning report, not an error. Same snapshot/undo
// mechanism as ImportShops.
func (r ImportRepository) BulkUpdateDues(ctx context.Context, ownerID int64, rows []DueRow) (*domain.ImportBatch, []string, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := loadShopIndex(ctx, tx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	batch := domain.ImportBatch{OwnerID: ownerID, Kind: domain.ImportKindDues}
	snapshotted := make(map[int64]bool)
	var missing []string

	for _, row := range rows {
		key := matchKey(row.Name)
		if key == "" {
			continue
		}
		snap, ok := existing[key]
		if !ok {
			missing = append(missing, row.Name)
			continue
		}
		if !snapshotted[snap.ShopID] {
			batch.Revert.Updated = append(batch.Revert.Updated, snap)
			snapshotted[snap.ShopID] = true
		}
		_, err := tx.Exec(ctx, `
			UPDATE shops SET due_amount=$3, updated_at=now()
			WHERE id=$1 AND owner_id=$2
		`, snap.ShopID, ownerID, row.Due)
		if err != nil {
			return nil, nil, err
		}
		batch.UpdatedCount++
	}

	if err := insertBatch(ctx, tx, &batch); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &batch, missing, nil
}

// Undo reverts a batch: created shops are soft-deleted (collections recorded
// against them inside the window keep a valid shop_id), updated shops get
// their snapshot fields restored verbatim (intervening edits are clobbered),
// then the batch row is removed. Rejected with zero writes once the undo
// window has elapsed.
func (r ImportRepository) Undo(ctx context.Context, ownerID, batchID int64, now time.Time) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var (
		createdAt  time.Time
		revertJSON []byte
	)
	err = tx.QueryRow(ctx, `
		SELECT created_at, revert_data
		FROM import_batches
		WHERE id=$1 AND owner_id=$2
		FOR UPDATE
	`, batchID, ownerID).Scan(&createdAt, &revertJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if now.Sub(createdAt) > UndoWindow {
		return ErrUndoExpired
	}

	var revert domain.ImportRevert
	if err := json.Unmarshal(revertJSON, &revert); err != nil {
		return err
	}

	for _, id := range revert.CreatedShopIDs {
		if _, err := tx.Exec(ctx, `
			UPDATE shops SET deleted_at=now(), updated_at=now()
			WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
		`, id, ownerID); err != nil {
			return err
		}
	}
	for _, snap := range revert.Updated {
		_, err := tx.Exec(ctx, `
			UPDATE shops SET name=$3, address=$4, mobile=$5, due_amount=$6, latitude=$7, longitude=$8, updated_at=now()
			WHERE id=$1 AND owner_id=$2
		`, snap.ShopID, ownerID, snap.Name, snap.Address, snap.Mobile, snap.DueAmount, snap.Latitude, snap.Longitude)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM import_batches WHERE id=$1`, batchID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func loadShopIndex(ctx context.Context, tx pgx.Tx, ownerID int64) (map[string]domain.ShopSnapshot, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, address, mobile, due_amount, latitude, longitude
		FROM shops
		WHERE owner_id=$1 AND deleted_at IS NULL
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]domain.ShopSnapshot)
	for rows.Next() {
		var snap domain.ShopSnapshot
		if err := rows.Scan(&snap.ShopID, &snap.Name, &snap.Address, &snap.Mobile, &snap.DueAmount, &snap.Latitude, &snap.Longitude); err != nil {
			return nil, err
		}
		index[matchKey(snap.Name)] = snap
	}
	return index, rows.Err()
}

func insertBatch(ctx context.Context, tx pgx.Tx, batch *domain.ImportBatch) error {
	revertJSON, err := json.Marshal(batch.Revert)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO import_batches (owner_id, kind, created_count, updated_count, revert_data, created_at)
		VALUES ($1,$2,$3,$4,$5, now())
		RETURNING id, created_at
	`, batch.OwnerID, string(batch.Kind), batch.CreatedCount, batch.UpdatedCount, revertJSON).Scan(&batch.ID, &batch.CreatedAt)
}

// matchKey normalizes a shop name for case-insensitive matching.
func matchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
