package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Accepted column-header aliases per field, matched after lowercase+trim.
var (
	nameAliases    = []string{"name", "shop name"}
	addressAliases = []string{"address", "location"}
	mobileAliases  = []string{"mobile", "phone"}
	dueAliases     = []string{"due amount", "due"}
)

type ImportService struct {
	Imports repository.ImportRepository
	Audit   repository.AuditLogRepository
	Logger  *slog.Logger
}

// ImportShops parses an uploaded xlsx and applies it as one reversible batch.
func (s ImportService) ImportShops(ctx context.Context, ownerID int64, actor string, data []byte) (*domain.ImportBatch, error) {
	rows, err := readSheet(data)
	if err != nil {
		return nil, err
	}
	parsed := ParseShopRows(rows)
	batch, err := s.Imports.ImportShops(ctx, ownerID, parsed)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, ownerID, actor, domain.AuditImport,
		fmt.Sprintf("shop import batch %d: %d created, %d updated", batch.ID, batch.CreatedCount, batch.UpdatedCount))
	return batch, nil
}

// BulkUpdateDues parses an uploaded xlsx and updates only due amounts.
// Unmatched shop names come back as a warning report.
func (s ImportService) BulkUpdateDues(ctx context.Context, ownerID int64, actor string, data []byte) (*domain.ImportBatch, []string, error) {
	rows, err := readSheet(data)
	if err != nil {
		return nil, nil, err
	}
	parsed := ParseDueRows(rows)
	batch, missing, err := s.Imports.BulkUpdateDues(ctx, ownerID, parsed)
	if err != nil {
		return nil, nil, err
	}
	s.audit(ctx, ownerID, actor, domain.AuditImport,
		fmt.Sprintf("due update batch %d: %d updated, %d missing", batch.ID, batch.UpdatedCount, len(missing)))
	return batch, missing, nil
}

func (s ImportService) Undo(ctx context.Context, ownerID, batchID int64, actor string) error {
	if err := s.Imports.Undo(ctx, ownerID, batchID, time.Now()); err != nil {
		return err
	}
	s.audit(ctx, ownerID, actor, domain.AuditUndo, fmt.Sprintf("import batch %d reverted", batchID))
	return nil
}

func (s ImportService) audit(ctx context.Context, ownerID int64, actor string, typ domain.AuditLogType, message string) {
	if _, err := s.Audit.Create(ctx, repository.CreateAuditLogInput{
		OwnerID: &ownerID,
		Title:   string(typ),
		Message: message,
		Actor:   actor,
		Type:    typ,
	}); err != nil {
		s.Logger.Warn("audit log write failed", "err", err)
	}
}

func readSheet(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}
	return rows, nil
}

// columnIndex maps each field to the header columns that may carry it.
type columnIndex struct {
	name    []int
	address []int
	mobile  []int
	due     []int
}

func resolveHeaders(header []string) columnIndex {
	var idx columnIndex
	for i, h := range header {
		switch key := normalizeHeader(h); {
		case contains(nameAliases, key):
			idx.name = append(idx.name, i)
		case contains(addressAliases, key):
			idx.address = append(idx.address, i)
		case contains(mobileAliases, key):
			idx.mobile = append(idx.mobile, i)
		case contains(dueAliases, key):
			idx.due = append(idx.due, i)
		}
	}
	return idx
}

// ParseShopRows turns raw sheet rows (header first) into import rows with
// "smart update" semantics: a field is carried only when its cell holds a
// value, so absent columns and blank cells never overwrite existing values.
// Rows without a resolvable name are skipped.
func ParseShopRows(rows [][]string) []repository.ImportRow {
	if len(rows) < 2 {
		return nil
	}
	idx := resolveHeaders(rows[0])

	var out []repository.ImportRow
	for _, row := range rows[1:] {
		name := firstNonEmpty(row, idx.name)
		if name == "" {
			continue
		}
		parsed := repository.ImportRow{Name: name}
		if v := firstNonEmpty(row, idx.address); v != "" {
			parsed.Address = &v
		}
		if v := firstNonEmpty(row, idx.mobile); v != "" {
			parsed.Mobile = &v
		}
		// Due is applied only when it parses; a blank or garbled cell
		// leaves the stored value alone.
		if due, ok := parseAmount(firstNonEmpty(row, idx.due)); ok {
			parsed.Due = &due
		}
		out = append(out, parsed)
	}
	return out
}

// ParseDueRows extracts (name, due) pairs; rows lacking a name or a parsable
// due are skipped.
func ParseDueRows(rows [][]string) []repository.DueRow {
	if len(rows) < 2 {
		return nil
	}
	idx := resolveHeaders(rows[0])

	var out []repository.DueRow
	for _, row := range rows[1:] {
		name := firstNonEmpty(row, idx.name)
		if name == "" {
			continue
		}
		due, ok := parseAmount(firstNonEmpty(row, idx.due))
		if !ok {
			continue
		}
		out = append(out, repository.DueRow{Name: name, Due: due})
	}
	return out
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func contains(list []string, key string) bool {
	for _, v := range list {
		if v == key {
			return true
		}
	}
	return false
}

func firstNonEmpty(row []string, cols []int) string {
	for _, c := range cols {
		if v := cellValue(row, c); v != "" {
			return v
		}
	}
	return ""
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
