package repository

import (
	"fmt"
	"strings"

	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/workflow"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func parsePeriod(start, end string) (entity.DateRange, error) {
	period, err := entity.ParseDateRange(start, end)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("corrupt stored period: %w", err)
	}
	return period, nil
}

// statusPlaceholders expands to "?, ?, ?" and the matching arguments
func statusPlaceholders(states []workflow.State) (string, []interface{}) {
	marks := make([]string, len(states))
	args := make([]interface{}, len(states))
	for i, s := range states {
		marks[i] = "?"
		args[i] = string(s)
	}
	return strings.Join(marks, ", "), args
}
