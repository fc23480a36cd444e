package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already taken")
)

const dateLayout = "2006-01-02"

// User is a stored account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Preferences are per-user display settings.
type Preferences struct {
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser stores a new account and returns it with its ID set.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("create user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var (
		u         User
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, last_login FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

func (r *SQLiteRepository) GetUsername(ctx context.Context, userID int64) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, userID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get username: %w", err)
	}
	return username, nil
}

func (r *SQLiteRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// AddExpense stores an expense and enqueues it for the sheets mirror.
func (r *SQLiteRepository) AddExpense(ctx context.Context, userID int64, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (user_id, date, description, amount_cents, category, subcategory, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, e.Date.Format(dateLayout), e.Description, e.Amount.Cents,
		e.Category, e.Subcategory, core.JoinTags(e.Tags))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_queue (expense_id) VALUES (?)`, id); err != nil {
		return 0, fmt.Errorf("enqueue expense sync: %w", err)
	}

	if err := r.invalidatePredictionsTx(ctx, tx, userID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", userID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return id, nil
}

// ListExpenses returns a user's expenses ordered by date. Zero from/to
// leave that side of the range unbounded.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, from, to time.Time) ([]core.Expense, error) {
	query := `SELECT id, date, description, amount_cents, category, subcategory, tags
	          FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			rawDate string
			rawTags string
		)
		if err := rows.Scan(&e.ID, &rawDate, &e.Description, &e.Amount.Cents,
			&e.Category, &e.Subcategory, &rawTags); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", rawDate, err)
		}
		e.Date = core.Date{Time: d}
		e.Tags = core.ParseTags(rawTags)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListExpensesForMonth is a convenience wrapper over ListExpenses.
func (r *SQLiteRepository) ListExpensesForMonth(ctx context.Context, userID int64, month, year int) ([]core.Expense, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return r.ListExpenses(ctx, userID, from, to)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	var (
		e       core.Expense
		rawDate string
		rawTags string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, description, amount_cents, category, subcategory, tags
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&e.ID, &rawDate, &e.Description, &e.Amount.Cents, &e.Category, &e.Subcategory, &rawTags)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	d, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", rawDate, err)
	}
	e.Date = core.Date{Time: d}
	e.Tags = core.ParseTags(rawTags)
	return e, nil
}

// GetExpenseByID loads an expense without a user scope. The sync worker
// uses it to resolve queue messages that carry only the row ID.
func (r *SQLiteRepository) GetExpenseByID(ctx context.Context, id int64) (core.Expense, int64, error) {
	var (
		e       core.Expense
		userID  int64
		rawDate string
		rawTags string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, description, amount_cents, category, subcategory, tags
		 FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &userID, &rawDate, &e.Description, &e.Amount.Cents, &e.Category, &e.Subcategory, &rawTags)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, 0, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, 0, fmt.Errorf("get expense by id: %w", err)
	}
	d, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return core.Expense{}, 0, fmt.Errorf("parse expense date %q: %w", rawDate, err)
	}
	e.Date = core.Date{Time: d}
	e.Tags = core.ParseTags(rawTags)
	return e, userID, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := r.invalidatePredictions(ctx, userID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, userID int64, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO income (user_id, date, source, amount_cents, description)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, in.Date.Format(dateLayout), in.Source, in.Amount.Cents, in.Description)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income id: %w", err)
	}
	slog.InfoContext(ctx, "Income saved",
		"id", id, "user_id", userID, "source", in.Source, "amount_cents", in.Amount.Cents)
	return id, nil
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, userID int64, from, to time.Time) ([]core.Income, error) {
	query := `SELECT id, date, source, amount_cents, description FROM income WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in      core.Income
			rawDate string
		)
		if err := rows.Scan(&in.ID, &rawDate, &in.Source, &in.Amount.Cents, &in.Description); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		d, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse income date %q: %w", rawDate, err)
		}
		in.Date = core.Date{Time: d}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM income WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete income rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertBudgetPlan inserts or replaces the plan line for one
// category/subcategory/month/year.
func (r *SQLiteRepository) UpsertBudgetPlan(ctx context.Context, userID int64, p core.BudgetPlan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_plans (user_id, category, subcategory, planned_cents, month, year)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category, subcategory, month, year)
		 DO UPDATE SET planned_cents = excluded.planned_cents`,
		userID, p.Category, p.Subcategory, p.Planned.Cents, p.Month, p.Year)
	if err != nil {
		return fmt.Errorf("upsert budget plan: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgetPlans(ctx context.Context, userID int64, month, year int) ([]core.BudgetPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, subcategory, planned_cents, month, year
		 FROM budget_plans WHERE user_id = ? AND month = ? AND year = ?
		 ORDER BY category, subcategory`,
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budget plans: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetPlan
	for rows.Next() {
		var p core.BudgetPlan
		if err := rows.Scan(&p.Category, &p.Subcategory, &p.Planned.Cents, &p.Month, &p.Year); err != nil {
			return nil, fmt.Errorf("scan budget plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAllBudgetPlans returns every plan the user has, across all months.
func (r *SQLiteRepository) ListAllBudgetPlans(ctx context.Context, userID int64) ([]core.BudgetPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, subcategory, planned_cents, month, year
		 FROM budget_plans WHERE user_id = ?
		 ORDER BY year, month, category, subcategory`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list all budget plans: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetPlan
	for rows.Next() {
		var p core.BudgetPlan
		if err := rows.Scan(&p.Category, &p.Subcategory, &p.Planned.Cents, &p.Month, &p.Year); err != nil {
			return nil, fmt.Errorf("scan budget plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudgetPlan(ctx context.Context, userID int64, category, subcategory string, month, year int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budget_plans
		 WHERE user_id = ? AND category = ? AND subcategory = ? AND month = ? AND year = ?`,
		userID, category, subcategory, month, year)
	if err != nil {
		return fmt.Errorf("delete budget plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget plan rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CopyBudgetPlans copies one month's plan into another, skipping lines
// the target month already has. Returns the number of lines copied.
func (r *SQLiteRepository) CopyBudgetPlans(ctx context.Context, userID int64, fromMonth, fromYear, toMonth, toYear int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_plans (user_id, category, subcategory, planned_cents, month, year)
		 SELECT user_id, category, subcategory, planned_cents, ?, ?
		 FROM budget_plans WHERE user_id = ? AND month = ? AND year = ?
		 ON CONFLICT(user_id, category, subcategory, month, year) DO NOTHING`,
		toMonth, toYear, userID, fromMonth, fromYear)
	if err != nil {
		return 0, fmt.Errorf("copy budget plans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("copy budget plans rows: %w", err)
	}
	slog.InfoContext(ctx, "Budget plans copied",
		"user_id", userID,
		"from", fmt.Sprintf("%04d-%02d", fromYear, fromMonth),
		"to", fmt.Sprintf("%04d-%02d", toYear, toMonth),
		"copied", n)
	return n, nil
}

// MonthlyBalance sums one month's income and expenses.
func (r *SQLiteRepository) MonthlyBalance(ctx context.Context, userID int64, month, year int) (core.MonthlyBalance, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format(dateLayout)
	to := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Format(dateLayout)

	var incomeCents, expenseCents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM income
		 WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, from, to).Scan(&incomeCents)
	if err != nil {
		return core.MonthlyBalance{}, fmt.Errorf("sum income: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, from, to).Scan(&expenseCents)
	if err != nil {
		return core.MonthlyBalance{}, fmt.Errorf("sum expenses: %w", err)
	}

	return core.NewMonthlyBalance(core.Money{Cents: incomeCents}, core.Money{Cents: expenseCents}), nil
}

func (r *SQLiteRepository) GetPreferences(ctx context.Context, userID int64) (Preferences, error) {
	p := Preferences{Currency: "USD", Theme: "light"}
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, theme FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&p.Currency, &p.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, userID int64, p Preferences) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, currency, theme, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id)
		 DO UPDATE SET currency = excluded.currency, theme = excluded.theme, updated_at = CURRENT_TIMESTAMP`,
		userID, p.Currency, p.Theme)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// GetCachedPrediction returns the cached payload for one result kind, or
// ErrNotFound when nothing is cached.
func (r *SQLiteRepository) GetCachedPrediction(ctx context.Context, userID int64, kind string) ([]byte, time.Time, error) {
	var (
		payload    string
		computedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, computed_at FROM prediction_cache WHERE user_id = ? AND kind = ?`,
		userID, kind).Scan(&payload, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cached prediction: %w", err)
	}
	return []byte(payload), computedAt, nil
}

func (r *SQLiteRepository) PutCachedPrediction(ctx context.Context, userID int64, kind string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prediction_cache (user_id, kind, payload, computed_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id, kind)
		 DO UPDATE SET payload = excluded.payload, computed_at = CURRENT_TIMESTAMP`,
		userID, kind, string(payload))
	if err != nil {
		return fmt.Errorf("put cached prediction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) invalidatePredictions(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM prediction_cache WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("invalidate predictions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) invalidatePredictionsTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prediction_cache WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("invalidate predictions: %w", err)
	}
	return nil
}

// PendingSyncExpense is the minimal row the sync queue message carries.
type PendingSyncExpense struct {
	ExpenseID int64
	Attempts  int64
	UpdatedAt time.Time
}

// GetPendingSyncExpenses returns expenses waiting for the sheets mirror.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, attempts, updated_at FROM sync_queue
		 WHERE status = 'pending' ORDER BY expense_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncExpense
	for rows.Next() {
		var p PendingSyncExpense
		if err := rows.Scan(&p.ExpenseID, &p.Attempts, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync expense: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful mirror append.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, expenseID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET status = 'synced', updated_at = CURRENT_TIMESTAMP WHERE expense_id = ?`,
		expenseID); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "expense_id", expenseID)
	return nil
}

// MarkSyncError bumps the attempt counter so the mirror can retry.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, expenseID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE expense_id = ?`,
		expenseID); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "expense_id", expenseID)
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
