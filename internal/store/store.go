// Package store persists the analysis dataset in a single SQLite file:
// episodes, their extracted snippets, human coder labels and automated
// labels. The auto-label table doubles as the checkpoint record for batch
// labeling runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/framescope/framescope/internal/model"
)

// Store manages the dataset SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the dataset store at path, creating the schema if
// it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			program TEXT,
			host TEXT,
			title TEXT,
			air_date TEXT,
			word_count INTEGER NOT NULL DEFAULT 0,
			relevant INTEGER NOT NULL DEFAULT 0,
			text TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS snippets (
			episode_id TEXT PRIMARY KEY REFERENCES episodes(id),
			text TEXT NOT NULL,
			start_word INTEGER NOT NULL,
			end_word INTEGER NOT NULL,
			match_count INTEGER NOT NULL,
			sentiment REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS coder_labels (
			episode_id TEXT NOT NULL,
			coder TEXT NOT NULL,
			frame TEXT NOT NULL,
			PRIMARY KEY (episode_id, coder)
		)`,
		`CREATE TABLE IF NOT EXISTS auto_labels (
			episode_id TEXT PRIMARY KEY,
			frame TEXT NOT NULL DEFAULT '',
			provider TEXT,
			model TEXT,
			labeled_at TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_relevant ON episodes(relevant)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}

// SaveEpisodes upserts episode documents in one transaction.
func (s *Store) SaveEpisodes(ctx context.Context, docs []model.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO episodes (id, program, host, title, air_date, word_count, relevant, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			program=excluded.program, host=excluded.host, title=excluded.title,
			air_date=excluded.air_date, word_count=excluded.word_count,
			relevant=excluded.relevant, text=excluded.text`)
	if err != nil {
		return fmt.Errorf("prepare episode upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range docs {
		_, err := stmt.ExecContext(ctx,
			doc.EpisodeID, doc.Program, doc.Host, doc.Title,
			formatDate(doc.AirDate), doc.WordCount, doc.Relevant, doc.Text,
		)
		if err != nil {
			return fmt.Errorf("upsert episode %s: %w", doc.EpisodeID, err)
		}
	}

	return tx.Commit()
}

// Episodes returns every stored episode document.
func (s *Store) Episodes(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program, host, title, air_date, word_count, relevant, text
		 FROM episodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var airDate string
		var relevant int
		if err := rows.Scan(&doc.EpisodeID, &doc.Program, &doc.Host, &doc.Title,
			&airDate, &doc.WordCount, &relevant, &doc.Text); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		doc.AirDate = parseDate(airDate)
		doc.Relevant = relevant != 0
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// SaveSnippets upserts extracted snippets in one transaction.
func (s *Store) SaveSnippets(ctx context.Context, snips []model.Snippet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snippets (episode_id, text, start_word, end_word, match_count, sentiment)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(episode_id) DO UPDATE SET
			text=excluded.text, start_word=excluded.start_word, end_word=excluded.end_word,
			match_count=excluded.match_count, sentiment=excluded.sentiment`)
	if err != nil {
		return fmt.Errorf("prepare snippet upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, snip := range snips {
		_, err := stmt.ExecContext(ctx,
			snip.EpisodeID, snip.Text, snip.Window.Start, snip.Window.End,
			snip.MatchCount, snip.Sentiment,
		)
		if err != nil {
			return fmt.Errorf("upsert snippet %s: %w", snip.EpisodeID, err)
		}
	}

	return tx.Commit()
}

// Snippets returns every stored snippet.
func (s *Store) Snippets(ctx context.Context) ([]model.Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT episode_id, text, start_word, end_word, match_count, sentiment
		 FROM snippets ORDER BY episode_id`)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSnippets(rows)
}

// PendingSnippets returns snippets whose episodes still lack a usable
// automated label: no auto-label row, an empty frame from a failed call, or
// an unknown frame from an unparseable reply. This is the resume query for
// batch labeling.
func (s *Store) PendingSnippets(ctx context.Context) ([]model.Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sn.episode_id, sn.text, sn.start_word, sn.end_word, sn.match_count, sn.sentiment
		 FROM snippets sn
		 LEFT JOIN auto_labels a ON a.episode_id = sn.episode_id
		 WHERE a.episode_id IS NULL OR a.frame = '' OR a.frame = ?
		 ORDER BY sn.episode_id`,
		string(model.FrameUnknown))
	if err != nil {
		return nil, fmt.Errorf("query pending snippets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSnippets(rows)
}

func scanSnippets(rows *sql.Rows) ([]model.Snippet, error) {
	var snips []model.Snippet
	for rows.Next() {
		var snip model.Snippet
		if err := rows.Scan(&snip.EpisodeID, &snip.Text, &snip.Window.Start,
			&snip.Window.End, &snip.MatchCount, &snip.Sentiment); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		snips = append(snips, snip)
	}
	return snips, rows.Err()
}

// SaveCoderLabels upserts reconciled human labels in one transaction.
func (s *Store) SaveCoderLabels(ctx context.Context, labels []model.CoderLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO coder_labels (episode_id, coder, frame)
		 VALUES (?, ?, ?)
		 ON CONFLICT(episode_id, coder) DO UPDATE SET frame=excluded.frame`)
	if err != nil {
		return fmt.Errorf("prepare coder label upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, label := range labels {
		_, err := stmt.ExecContext(ctx, label.EpisodeID, label.Coder, string(label.Frame))
		if err != nil {
			return fmt.Errorf("upsert coder label %s/%s: %w", label.EpisodeID, label.Coder, err)
		}
	}

	return tx.Commit()
}

// CoderLabels returns every stored human label.
func (s *Store) CoderLabels(ctx context.Context) ([]model.CoderLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT episode_id, coder, frame FROM coder_labels ORDER BY episode_id, coder`)
	if err != nil {
		return nil, fmt.Errorf("query coder labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []model.CoderLabel
	for rows.Next() {
		var label model.CoderLabel
		var frame string
		if err := rows.Scan(&label.EpisodeID, &label.Coder, &frame); err != nil {
			return nil, fmt.Errorf("scan coder label: %w", err)
		}
		label.Frame = model.Frame(frame)
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// SaveAutoLabels upserts automated labels in one transaction. Failed
// attempts are stored too, with an empty frame, so the episode shows up in
// PendingSnippets again while the error stays visible.
func (s *Store) SaveAutoLabels(ctx context.Context, labels []model.AutoLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO auto_labels (episode_id, frame, provider, model, labeled_at, error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(episode_id) DO UPDATE SET
			frame=excluded.frame, provider=excluded.provider, model=excluded.model,
			labeled_at=excluded.labeled_at, error=excluded.error`)
	if err != nil {
		return fmt.Errorf("prepare auto label upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, label := range labels {
		_, err := stmt.ExecContext(ctx,
			label.EpisodeID, string(label.Frame), label.Provider, label.Model,
			formatDate(label.LabeledAt), label.Err,
		)
		if err != nil {
			return fmt.Errorf("upsert auto label %s: %w", label.EpisodeID, err)
		}
	}

	return tx.Commit()
}

// AutoLabels returns every stored automated label.
func (s *Store) AutoLabels(ctx context.Context) ([]model.AutoLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT episode_id, frame, provider, model, labeled_at, error
		 FROM auto_labels ORDER BY episode_id`)
	if err != nil {
		return nil, fmt.Errorf("query auto labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []model.AutoLabel
	for rows.Next() {
		var label model.AutoLabel
		var frame, labeledAt string
		if err := rows.Scan(&label.EpisodeID, &frame, &label.Provider,
			&label.Model, &labeledAt, &label.Err); err != nil {
			return nil, fmt.Errorf("scan auto label: %w", err)
		}
		label.Frame = model.Frame(frame)
		label.LabeledAt = parseDate(labeledAt)
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// Dataset joins episodes with their snippet, coder labels and automated
// label into export rows. Episodes without a snippet are excluded.
func (s *Store) Dataset(ctx context.Context) ([]model.DatasetRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.program, e.host, e.air_date,
		        sn.text, sn.match_count, sn.sentiment,
		        COALESCE(a.frame, '')
		 FROM episodes e
		 JOIN snippets sn ON sn.episode_id = e.id
		 LEFT JOIN auto_labels a ON a.episode_id = e.id
		 ORDER BY e.id`)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dataset []model.DatasetRow
	index := make(map[string]int)
	for rows.Next() {
		var row model.DatasetRow
		var airDate, autoFrame string
		if err := rows.Scan(&row.EpisodeID, &row.Program, &row.Host, &airDate,
			&row.Snippet, &row.MatchCount, &row.Sentiment, &autoFrame); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		row.AirDate = parseDate(airDate)
		row.AutoFrame = model.Frame(autoFrame)
		index[row.EpisodeID] = len(dataset)
		dataset = append(dataset, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	coderLabels, err := s.CoderLabels(ctx)
	if err != nil {
		return nil, err
	}
	for _, label := range coderLabels {
		if i, ok := index[label.EpisodeID]; ok {
			dataset[i].CoderFrames = append(dataset[i].CoderFrames, label.Frame)
		}
	}

	return dataset, nil
}

// formatDate stores times as RFC3339 strings, empty for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseDate is the inverse of formatDate; unparseable input yields the zero
// time rather than an error.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
