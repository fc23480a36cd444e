package export

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
)

// Backup is a full snapshot of one user's data, suitable for re-import.
type Backup struct {
	ExportedAt  time.Time         `json:"exported_at"`
	Username    string            `json:"username"`
	Expenses    []core.Expense    `json:"expenses"`
	Income      []core.Income     `json:"income"`
	BudgetPlans []core.BudgetPlan `json:"budget_plans"`
}

// BackupJSON renders the snapshot as indented JSON.
func BackupJSON(username string, expenses []core.Expense, income []core.Income, plans []core.BudgetPlan, now time.Time) ([]byte, error) {
	b := Backup{
		ExportedAt:  now.UTC(),
		Username:    username,
		Expenses:    expenses,
		Income:      income,
		BudgetPlans: plans,
	}
	if b.Expenses == nil {
		b.Expenses = []core.Expense{}
	}
	if b.Income == nil {
		b.Income = []core.Income{}
	}
	if b.BudgetPlans == nil {
		b.BudgetPlans = []core.BudgetPlan{}
	}

	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return out, nil
}

// ParseBackup reads a snapshot produced by BackupJSON.
func ParseBackup(data []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("parse backup: %w", err)
	}
	return b, nil
}
