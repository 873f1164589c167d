// Command backfill-embeddings embeds catalog rows whose embedding column is
// NULL. It enriches each row into its canonical document text, embeds in
// batches, and writes the vectors back with raw SQL.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings/genai"
	"github.com/stagedoor-labs/stagedoor/pkg/pgutils"
)

type monologueRow struct {
	ID            string
	CharacterName string
	Text          string
	WorkTitle     string
	Author        string
	Emotion       *string
	Tone          *string
	Gender        string
	AgeRange      string
	Themes        []string
	Difficulty    *string
}

type filmTVRow struct {
	ID       string
	Title    string
	Year     *int
	Type     string
	Genres   []string
	Plot     *string
	Director *string
	Actors   []string
}

func main() {
	var (
		batchSize int
		delayMs   int
		dryRun    bool
		target    string
	)

	flag.IntVar(&batchSize, "batch-size", genai.DefaultBatchSize, "Rows to embed per API call")
	flag.IntVar(&delayMs, "delay", 200, "Milliseconds to sleep between batches")
	flag.BoolVar(&dryRun, "dry-run", false, "Print what would be embedded without writing")
	flag.StringVar(&target, "target", "all", "Which table to backfill: monologues, film-tv, or all")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if dryRun {
		log.Info("DRY RUN mode enabled, no database writes will occur")
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GOOGLE_API_KEY must be set")
		os.Exit(1)
	}
	client, err := genai.NewClient(ctx, genai.Config{
		APIKey: apiKey,
		Model:  getEnvDefault("EMBEDDING_MODEL", genai.DefaultModel),
	}, genai.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating embedding client: %v\n", err)
		os.Exit(1)
	}

	delay := time.Duration(delayMs) * time.Millisecond

	if target == "monologues" || target == "all" {
		if err := backfillMonologues(ctx, db, client, log, batchSize, delay, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Error backfilling monologues: %v\n", err)
			os.Exit(1)
		}
	}
	if target == "film-tv" || target == "all" {
		if err := backfillFilmTV(ctx, db, client, log, batchSize, delay, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Error backfilling film/tv references: %v\n", err)
			os.Exit(1)
		}
	}
}

func backfillMonologues(ctx context.Context, db *sql.DB, client embeddings.Client, log *slog.Logger, batchSize int, delay time.Duration, dryRun bool) error {
	var embedded int64

	for {
		rows, err := fetchMonologueBatch(ctx, db, batchSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			break
		}

		docs := make([]string, 0, len(rows))
		for _, r := range rows {
			docs = append(docs, embeddings.EnrichMonologue(embeddings.MonologueDoc{
				Character:  r.CharacterName,
				WorkTitle:  r.WorkTitle,
				Author:     r.Author,
				Emotion:    deref(r.Emotion),
				Tone:       deref(r.Tone),
				Gender:     r.Gender,
				AgeRange:   r.AgeRange,
				Themes:     r.Themes,
				Difficulty: deref(r.Difficulty),
				Text:       r.Text,
			}))
		}

		if dryRun {
			for i, r := range rows {
				log.Info("would embed monologue", slog.String("id", r.ID), slog.String("doc", docs[i]))
			}
			return nil
		}

		vecs, err := client.EmbedDocuments(ctx, docs)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}

		for i, r := range rows {
			if err := updateEmbedding(ctx, db, "stage.monologues", r.ID, vecs[i]); err != nil {
				return err
			}
			embedded++
		}

		log.Info("progress", slog.String("table", "monologues"), slog.Int64("embedded", embedded))
		time.Sleep(delay)
	}

	log.Info("monologue backfill complete", slog.Int64("embedded", embedded))
	return nil
}

func backfillFilmTV(ctx context.Context, db *sql.DB, client embeddings.Client, log *slog.Logger, batchSize int, delay time.Duration, dryRun bool) error {
	var embedded int64

	for {
		rows, err := fetchFilmTVBatch(ctx, db, batchSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			break
		}

		docs := make([]string, 0, len(rows))
		for _, r := range rows {
			year := 0
			if r.Year != nil {
				year = *r.Year
			}
			docs = append(docs, embeddings.EnrichFilmTV(embeddings.FilmTVDoc{
				Title:    r.Title,
				Year:     year,
				Type:     r.Type,
				Genres:   r.Genres,
				Director: deref(r.Director),
				Actors:   r.Actors,
				Plot:     deref(r.Plot),
			}))
		}

		if dryRun {
			for i, r := range rows {
				log.Info("would embed reference", slog.String("id", r.ID), slog.String("doc", docs[i]))
			}
			return nil
		}

		vecs, err := client.EmbedDocuments(ctx, docs)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}

		for i, r := range rows {
			if err := updateEmbedding(ctx, db, "stage.film_tv_references", r.ID, vecs[i]); err != nil {
				return err
			}
			embedded++
		}

		log.Info("progress", slog.String("table", "film_tv_references"), slog.Int64("embedded", embedded))
		time.Sleep(delay)
	}

	log.Info("film/tv backfill complete", slog.Int64("embedded", embedded))
	return nil
}

// fetchMonologueBatch reads the next rows with NULL embeddings. Updated rows
// leave the result set, so no offset bookkeeping is needed.
func fetchMonologueBatch(ctx context.Context, db *sql.DB, limit int) ([]monologueRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT m.id, m.character_name, m.text, w.title, w.author,
		       m.primary_emotion, m.tone, m.character_gender,
		       m.character_age_range, m.themes, m.difficulty_level
		FROM stage.monologues m
		JOIN stage.works w ON w.id = m.work_id
		WHERE m.embedding IS NULL
		ORDER BY m.created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}
	defer rows.Close()

	var out []monologueRow
	for rows.Next() {
		var r monologueRow
		var themes []byte
		if err := rows.Scan(&r.ID, &r.CharacterName, &r.Text, &r.WorkTitle, &r.Author,
			&r.Emotion, &r.Tone, &r.Gender, &r.AgeRange, &themes, &r.Difficulty); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Themes = pgutils.ParseTextArray(string(themes))
		out = append(out, r)
	}
	return out, rows.Err()
}

func fetchFilmTVBatch(ctx context.Context, db *sql.DB, limit int) ([]filmTVRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.title, f.year, f.type, f.genres, f.plot, f.director, f.actors
		FROM stage.film_tv_references f
		WHERE f.embedding IS NULL
		ORDER BY f.created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}
	defer rows.Close()

	var out []filmTVRow
	for rows.Next() {
		var r filmTVRow
		var genres, actors []byte
		if err := rows.Scan(&r.ID, &r.Title, &r.Year, &r.Type, &genres, &r.Plot, &r.Director, &actors); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Genres = pgutils.ParseTextArray(string(genres))
		r.Actors = pgutils.ParseTextArray(string(actors))
		out = append(out, r)
	}
	return out, rows.Err()
}

func updateEmbedding(ctx context.Context, db *sql.DB, table, id string, vec []float32) error {
	query := fmt.Sprintf("UPDATE %s SET embedding = $1::vector, updated_at = now() WHERE id = $2", table)
	if _, err := db.ExecContext(ctx, query, pgutils.FormatVector(vec), id); err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return nil
}

func openDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		host := getEnvDefault("POSTGRES_HOST", "localhost")
		port := getEnvDefault("POSTGRES_PORT", "5432")
		user := getEnvDefault("POSTGRES_USER", "stagedoor")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := getEnvDefault("POSTGRES_DB", "stagedoor")
		sslMode := getEnvDefault("POSTGRES_SSL_MODE", "disable")

		if pass == "" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD or DATABASE_URL must be set")
		}
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, pass, host, port, name, sslMode)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
