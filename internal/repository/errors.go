package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"philabid/internal/biddingerrors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var classified = []error{
	biddingerrors.ErrNotFound,
	biddingerrors.ErrNoBids,
	biddingerrors.ErrConstraintViolation,
	biddingerrors.ErrStorageUnavailable,
	biddingerrors.ErrConflict,
	biddingerrors.ErrSchemaNotReady,
}

// isClassified reports whether err already carries a repository sentinel
func isClassified(err error) bool {
	for _, target := range classified {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify maps driver and ORM failures onto the repository error taxonomy
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, biddingerrors.ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.Is(err, sql.ErrTxDone), errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrStorageUnavailable, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique && strings.Contains(sqliteErr.Error(), "bids.lot_id") {
				// a second accepted bid raced onto the same lot
				return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrConflict, err)
			}
			return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrConstraintViolation, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrCantOpen,
			sqlite3.ErrFull, sqlite3.ErrProtocol, sqlite3.ErrInterrupt, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrStorageUnavailable, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
