package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/piwi3910/LoadPlan/internal/model"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no shared plan has the requested id.
var ErrNotFound = errors.New("plan not found")

// SharedPlan is a stored plan.
type SharedPlan struct {
	ID        string             `json:"id"`
	Source    string             `json:"source,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Settings  model.PlanSettings `json:"settings"`
	Result    model.PlanResult   `json:"result"`
}

// PlanInfo is the listing entry of a stored plan.
type PlanInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Clients     int       `json:"clients"`
	Products    int       `json:"products"`
	Unallocated int       `json:"unallocated"`
}

// SQLiteStore stores shared plans in SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance. Call Init and Migrate
// before use, or use Open.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: cfg.Path, now: time.Now}, nil
}

// Open creates, initializes and migrates a store.
func Open(ctx context.Context, cfg Config) (*SQLiteStore, error) {
	s, err := NewSQLiteStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Init opens the database connection. File databases use WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := s.path
	memory := s.path == ":memory:"
	if !memory {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", s.path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// SavePlan stores a plan and returns its id. A new random id is assigned
// when the plan has none.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan SharedPlan) (string, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = s.now().UTC()
	}

	settings, err := json.Marshal(plan.Settings)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings: %w", err)
	}
	result, err := json.Marshal(plan.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO shared_plans (id, source, created_at, clients, products, unallocated, settings, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	sum := plan.Result.Summary
	_, err = s.db.ExecContext(ctx, query,
		plan.ID,
		plan.Source,
		plan.CreatedAt.UTC().Format(timeLayout),
		sum.Clients,
		sum.TotalProducts,
		sum.UnallocatedProducts,
		string(settings),
		string(result),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save plan: %w", err)
	}
	return plan.ID, nil
}

// GetPlan retrieves a plan by id. It returns ErrNotFound when there is none.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*SharedPlan, error) {
	query := `
		SELECT id, source, created_at, settings, result
		FROM shared_plans
		WHERE id = ?
	`

	var (
		plan               SharedPlan
		createdAt          string
		settings, resultJS string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&plan.ID, &plan.Source, &createdAt, &settings, &resultJS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if plan.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of plan %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(settings), &plan.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings of plan %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultJS), &plan.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result of plan %s: %w", id, err)
	}
	return &plan, nil
}

// ListPlans returns the most recent plans first, at most limit of them.
func (s *SQLiteStore) ListPlans(ctx context.Context, limit int) ([]PlanInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, source, created_at, clients, products, unallocated
		FROM shared_plans
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanInfo
	for rows.Next() {
		var info PlanInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Source, &createdAt, &info.Clients, &info.Products, &info.Unallocated); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if info.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of plan %s: %w", info.ID, err)
		}
		plans = append(plans, info)
	}
	return plans, rows.Err()
}

// DeletePlan removes a plan. It returns ErrNotFound when there is none.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shared_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
