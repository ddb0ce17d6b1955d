// Package history persists completed calculations for signed-in users.
// Persistence is best-effort: the calculator works identically with no
// store at all, and a failed write is logged and dropped by callers.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Record is one saved calculation: the campaign inputs, the six slider
// values, and the derived frequency at the time of saving.
type Record struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	BrandName         string    `db:"brand_name" json:"brand_name"`
	Budget            float64   `db:"budget" json:"budget"`
	CampaignGoal      string    `db:"campaign_goal" json:"campaign_goal"`
	BrandAwareness    float64   `db:"brand_awareness" json:"brand_awareness"`
	MarketSaturation  float64   `db:"market_saturation" json:"market_saturation"`
	GoalParam         float64   `db:"goal_param" json:"goal_param"`
	TargetAudience    float64   `db:"target_audience" json:"target_audience"`
	ProductComplexity float64   `db:"product_complexity" json:"product_complexity"`
	MessageComplexity float64   `db:"message_complexity" json:"message_complexity"`
	Frequency         float64   `db:"frequency" json:"frequency"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS calculations (
	id                 TEXT PRIMARY KEY,
	user_id            TEXT NOT NULL,
	brand_name         TEXT NOT NULL DEFAULT '',
	budget             REAL NOT NULL DEFAULT 0,
	campaign_goal      TEXT NOT NULL DEFAULT '',
	brand_awareness    REAL NOT NULL DEFAULT 0,
	market_saturation  REAL NOT NULL DEFAULT 0,
	goal_param         REAL NOT NULL DEFAULT 0,
	target_audience    REAL NOT NULL DEFAULT 0,
	product_complexity REAL NOT NULL DEFAULT 0,
	message_complexity REAL NOT NULL DEFAULT 0,
	frequency          REAL NOT NULL DEFAULT 0,
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculations_user ON calculations (user_id, created_at);
`

// Store is a SQLite-backed calculation log with a single writer.
type Store struct {
	db *sqlx.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts one record, assigning an ID and timestamp when unset,
// and returns the record ID.
func (s *Store) Save(rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO calculations (id, user_id, brand_name, budget, campaign_goal,
		brand_awareness, market_saturation, goal_param, target_audience, product_complexity, message_complexity,
		frequency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.BrandName,
		rec.Budget,
		rec.CampaignGoal,
		rec.BrandAwareness,
		rec.MarketSaturation,
		rec.GoalParam,
		rec.TargetAudience,
		rec.ProductComplexity,
		rec.MessageComplexity,
		rec.Frequency,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert calculation: %w", err)
	}
	return rec.ID, nil
}

// ListByUser returns the user's calculations, newest first.
func (s *Store) ListByUser(userID string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, user_id, brand_name, budget, campaign_goal,
		brand_awareness, market_saturation, goal_param, target_audience, product_complexity, message_complexity,
		frequency, created_at
		FROM calculations WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.BrandName, &rec.Budget, &rec.CampaignGoal,
			&rec.BrandAwareness, &rec.MarketSaturation, &rec.GoalParam, &rec.TargetAudience,
			&rec.ProductComplexity, &rec.MessageComplexity, &rec.Frequency, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
