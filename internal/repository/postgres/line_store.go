package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"facturo/internal/domain"
)

// replaceLines swaps the full line set of a document. Callers only do this
// while the document is DRAFT.
func replaceLines(ctx context.Context, db sqlx.ExtContext, kind domain.DocType, documentID uuid.UUID, lines []domain.Line) error {
	if _, err := db.ExecContext(ctx,
		"DELETE FROM document_lines WHERE document_kind = $1 AND document_id = $2",
		kind, documentID); err != nil {
		return fmt.Errorf("replaceLines delete: %w", err)
	}
	for i := range lines {
		l := &lines[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.DocumentKind = kind
		l.DocumentID = documentID
		l.Position = i + 1
		_, err := db.ExecContext(ctx,
			`INSERT INTO document_lines (
				id, document_kind, document_id, position, description, quantity,
				unit_price_cents, tax_rate_id, tax_rate_percent, subtotal_cents, tax_cents, total_cents
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			l.ID, l.DocumentKind, l.DocumentID, l.Position, l.Description, l.Quantity,
			l.UnitPriceCents, l.TaxRateID, l.TaxRatePercent, l.SubtotalCents, l.TaxCents, l.TotalCents)
		if err != nil {
			return fmt.Errorf("replaceLines insert: %w", err)
		}
	}
	return nil
}

func listLines(ctx context.Context, db sqlx.ExtContext, kind domain.DocType, documentID uuid.UUID) ([]domain.Line, error) {
	var lines []domain.Line
	err := sqlx.SelectContext(ctx, db, &lines,
		"SELECT * FROM document_lines WHERE document_kind = $1 AND document_id = $2 ORDER BY position",
		kind, documentID)
	if err != nil {
		return nil, fmt.Errorf("listLines: %w", err)
	}
	return lines, nil
}

// pageQuery appends the optional status/kind filter shared by document listings.
func pageQuery(table string, tenantID uuid.UUID, filter statusKindFilter) (where string, args []any) {
	where = fmt.Sprintf("FROM %s WHERE tenant_id = $1 AND deleted_at IS NULL", table)
	args = []any{tenantID}
	if filter.status != "" {
		args = append(args, filter.status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.kind != "" {
		args = append(args, filter.kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	return where, args
}

type statusKindFilter struct {
	status string
	kind   string
}

// listPage runs the count and page queries for a document table.
func listPage(ctx context.Context, db sqlx.ExtContext, dest any, table string, tenantID uuid.UUID, filter statusKindFilter, offset, limit int) (int, error) {
	where, args := pageQuery(table, tenantID, filter)

	var total int
	if err := sqlx.GetContext(ctx, db, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	if err := sqlx.SelectContext(ctx, db, dest, query, append(args, limit, offset)...); err != nil {
		return 0, err
	}
	return total, nil
}
