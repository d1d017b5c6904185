// Package corpus persists the comment candidate pool and generation history
// in sqlite. Candidates are loaded once per request path and never mutated at
// generation time; only the usage counter changes, after selection.
package corpus

import (
	"database/sql"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ayane-k/soracast/internal/models"
)

//go:embed seed/candidates.csv
var seedFS embed.FS

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// New creates a store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SeedDefault imports the embedded candidate corpus. Existing rows are kept;
// the seed only fills gaps, so usage counters survive reseeding.
func (s *Store) SeedDefault() (int, error) {
	f, err := seedFS.Open("seed/candidates.csv")
	if err != nil {
		return 0, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return s.SeedFromCSV(f)
}

// SeedFromCSV imports candidates from CSV with columns
// text,category,patterns,season,usage_count. Returns rows inserted.
func (s *Store) SeedFromCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	if _, err := cr.Read(); err != nil { // header
		return 0, fmt.Errorf("read seed header: %w", err)
	}

	inserted := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("read seed record: %w", err)
		}
		if len(rec) != 5 {
			return inserted, fmt.Errorf("seed record has %d fields, want 5", len(rec))
		}
		usage, err := strconv.Atoi(rec[4])
		if err != nil {
			return inserted, fmt.Errorf("parse usage_count for %q: %w", rec[0], err)
		}

		res, err := s.db.Exec(`
			INSERT INTO candidates (text, category, patterns, season, usage_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(text, category) DO NOTHING
		`, rec[0], rec[1], rec[2], rec[3], usage)
		if err != nil {
			return inserted, fmt.Errorf("insert candidate %q: %w", rec[0], err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// Candidates returns all active candidates for both categories.
func (s *Store) Candidates() ([]models.Candidate, error) {
	rows, err := s.db.Query(`
		SELECT id, text, category, patterns, season, usage_count
		FROM candidates
		WHERE active = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var patterns, season, category string
		if err := rows.Scan(&c.ID, &c.Text, &category, &patterns, &season, &c.UsageCount); err != nil {
			return nil, err
		}
		c.Category = models.Category(category)
		c.Season = models.Season(season)
		c.Patterns = parsePatterns(patterns)
		out = append(out, c)
	}
	return out, rows.Err()
}

// IncrementUsage bumps the usage counter of a selected candidate, feeding the
// popularity bonus on later selections.
func (s *Store) IncrementUsage(id int64) error {
	if id == 0 {
		return nil // fallback comments are not corpus rows
	}
	_, err := s.db.Exec(`UPDATE candidates SET usage_count = usage_count + 1 WHERE id = ?`, id)
	return err
}

// GenerationRecord is one persisted generation outcome.
type GenerationRecord struct {
	ID            int64                  `json:"id"`
	Location      string                 `json:"location"`
	Success       bool                   `json:"success"`
	WeatherText   string                 `json:"comment,omitempty"`
	AdviceText    string                 `json:"advice_comment,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      *models.ResultMetadata `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// InsertGeneration records a generation result.
func (s *Store) InsertGeneration(res models.GenerationResult) error {
	var metaJSON sql.NullString
	if res.Metadata != nil {
		b, err := json.Marshal(res.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = sql.NullString{String: string(b), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO generations (location, success, weather_comment, advice_comment, error, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, res.Location, res.Success, res.Comment, res.AdviceComment, res.Error, metaJSON)
	return err
}

// RecentGenerations returns the newest records, bounded at 50 regardless of
// the requested limit.
func (s *Store) RecentGenerations(limit int) ([]GenerationRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, location, success, weather_comment, advice_comment, error, metadata_json, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var weather, advice, errText, metaJSON sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Location, &rec.Success, &weather, &advice, &errText, &metaJSON, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.WeatherText = weather.String
		rec.AdviceText = advice.String
		rec.Error = errText.String
		if metaJSON.Valid && metaJSON.String != "" {
			var meta models.ResultMetadata
			if err := json.Unmarshal([]byte(metaJSON.String), &meta); err == nil {
				rec.Metadata = &meta
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parsePatterns(s string) []models.Condition {
	if s == "" {
		return nil
	}
	var out []models.Condition
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c := models.Condition(part)
		if !c.Valid() {
			c = models.ConditionUnknown
		}
		out = append(out, c)
	}
	return out
}
