package repository

import (
	"fmt"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = fmt.Errorf("repository: not found: %w", domain.ErrNotFound)
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = fmt.Errorf("repository: duplicate: %w", domain.ErrDuplicateEntity)
	// ErrInvalidReference indicates a foreign key points at a missing row.
	ErrInvalidReference = fmt.Errorf("repository: invalid reference: %w", domain.ErrValidation)
	// ErrValueTooLong indicates a value exceeds its column width.
	ErrValueTooLong = fmt.Errorf("repository: value too long: %w", domain.ErrValidation)
)
