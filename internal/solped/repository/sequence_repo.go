package repository

import (
	"context"
	"fmt"

	"github.com/bitforja/solped/internal/solped/engine"
	"gorm.io/gorm"
)

// SequenceRepository allocates requisition identifiers. Each calendar year
// has its own counter row; the counter is advanced with a single atomic
// upsert so concurrent callers can never receive the same number. Gaps from
// aborted enclosing transactions are acceptable, duplicates are not.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextID returns the next identifier for the year, formatted
// SP-<year>-<6-digit zero-padded number>. The first call for a new year
// yields ...-000001.
func (r *SequenceRepository) NextID(ctx context.Context, year int) (string, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO requisition_sequences (year, last_number) VALUES (?, 1)
		 ON CONFLICT (year) DO UPDATE SET last_number = requisition_sequences.last_number + 1
		 RETURNING last_number`,
		year,
	).Scan(&next).Error
	if err != nil {
		return "", fmt.Errorf("%w: sequence allocation for year %d: %v", engine.ErrTransient, year, err)
	}
	return fmt.Sprintf("SP-%d-%06d", year, next), nil
}
