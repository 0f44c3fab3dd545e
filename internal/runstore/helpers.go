package runstore

import (
	"database/sql"
	"errors"
	"os"
	"time"
)

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func scanErrNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
