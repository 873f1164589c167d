// Command seed-imdb loads film and TV titles from the public IMDb datasets
// into stage.film_tv_references. Downloads are cached under /tmp/imdb_data so
// reruns skip the fetch; rows upsert on imdb_id so the seeder is idempotent.
package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/stagedoor-labs/stagedoor/pkg/pgutils"
)

const (
	datasetBase = "https://datasets.imdbws.com"
	cacheDir    = "/tmp/imdb_data"
	maxActors   = 5
)

type title struct {
	ID     string
	Name   string
	Type   string
	Year   int
	Genres []string
	Rating float64
}

func main() {
	var (
		minVotes int
		limit    int
		dryRun   bool
	)

	flag.IntVar(&minVotes, "min-votes", 5000, "Minimum IMDb vote count for a title to be seeded")
	flag.IntVar(&limit, "limit", 0, "Maximum titles to seed (0 = no limit)")
	flag.BoolVar(&dryRun, "dry-run", false, "Parse and report without writing to the database")
	flag.Parse()

	ctx := context.Background()

	ratings := getRatedTitleIDs(minVotes, limit)
	titles := getTitleMetadata(ratings)
	log.Printf("Filtered to %d film/tv titles", len(titles))

	actors, directorIDs := getPrincipals(titles)

	wantedDirectors := make(map[string]bool)
	for _, ids := range directorIDs {
		for _, id := range ids {
			wantedDirectors[id] = true
		}
	}
	names := getPeopleNames(wantedDirectors)

	if dryRun {
		log.Printf("DRY RUN: would upsert %d titles (%d with directors)", len(titles), len(names))
		return
	}

	db, err := openDB()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	upserted := 0
	for _, t := range titles {
		var director *string
		if ids := directorIDs[t.ID]; len(ids) > 0 {
			if name, ok := names[ids[0]]; ok {
				director = &name
			}
		}

		if err := upsertReference(ctx, db, t, director, actors[t.ID]); err != nil {
			log.Printf("upsert %s (%s): %v", t.Name, t.ID, err)
			continue
		}
		upserted++
		if upserted%1000 == 0 {
			log.Printf("  ...%d/%d titles upserted", upserted, len(titles))
		}
	}

	log.Printf("Seeding complete: %d titles upserted", upserted)
}

func upsertReference(ctx context.Context, db *sql.DB, t title, director *string, actors []string) error {
	var year *int
	if t.Year > 0 {
		year = &t.Year
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO stage.film_tv_references
			(title, year, type, genres, director, actors, imdb_rating, imdb_id)
		VALUES ($1, $2, $3, $4::text[], $5, $6::text[], $7, $8)
		ON CONFLICT (imdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			type = EXCLUDED.type,
			genres = EXCLUDED.genres,
			director = EXCLUDED.director,
			actors = EXCLUDED.actors,
			imdb_rating = EXCLUDED.imdb_rating,
			updated_at = now()`,
		t.Name, year, t.Type, pgutils.FormatTextArray(t.Genres), director,
		pgutils.FormatTextArray(actors), t.Rating, t.ID,
	)
	return err
}

// streamDataset downloads (or reuses a cached copy of) one IMDb dataset and
// returns a line scanner over the decompressed content.
func streamDataset(name string) (*bufio.Scanner, func()) {
	os.MkdirAll(cacheDir, 0755)
	localPath := filepath.Join(cacheDir, name)

	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		url := datasetBase + "/" + name
		log.Printf("Downloading %s...", url)
		resp, err := http.Get(url)
		if err != nil {
			log.Fatalf("download %s: %v", name, err)
		}
		defer resp.Body.Close()

		outFile, err := os.Create(localPath)
		if err != nil {
			log.Fatalf("cache %s: %v", name, err)
		}
		if _, err := io.Copy(outFile, resp.Body); err != nil {
			outFile.Close()
			log.Fatalf("cache %s: %v", name, err)
		}
		outFile.Close()
	}

	f, err := os.Open(localPath)
	if err != nil {
		log.Fatalf("open %s: %v", localPath, err)
	}
	reader, err := gzip.NewReader(f)
	if err != nil {
		log.Fatalf("decompress %s: %v", localPath, err)
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	scanner.Scan() // skip header row

	return scanner, func() {
		reader.Close()
		f.Close()
	}
}

func getRatedTitleIDs(minVotes, limit int) map[string]float64 {
	scanner, closeFn := streamDataset("title.ratings.tsv.gz")
	defer closeFn()

	ratings := make(map[string]float64)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) != 3 {
			continue
		}
		if v, _ := strconv.Atoi(parts[2]); v >= minVotes {
			r, _ := strconv.ParseFloat(parts[1], 64)
			ratings[parts[0]] = r

			if limit > 0 && len(ratings) >= limit {
				break
			}
		}
	}
	return ratings
}

func getTitleMetadata(ratings map[string]float64) map[string]title {
	scanner, closeFn := streamDataset("title.basics.tsv.gz")
	defer closeFn()

	titles := make(map[string]title)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 9 {
			continue
		}
		// Only the two types the reference table models
		if parts[1] != "movie" && parts[1] != "tvSeries" {
			continue
		}
		rating, ok := ratings[parts[0]]
		if !ok {
			continue
		}
		if parts[4] == "1" { // adult titles stay out of an actor-facing catalog
			continue
		}

		year, _ := strconv.Atoi(parts[5])
		var genres []string
		if parts[8] != `\N` {
			genres = strings.Split(parts[8], ",")
		}

		titles[parts[0]] = title{
			ID:     parts[0],
			Name:   parts[2],
			Type:   parts[1],
			Year:   year,
			Genres: genres,
			Rating: rating,
		}
	}
	return titles
}

// getPrincipals collects the top-billed actor IDs and director IDs per title.
func getPrincipals(titles map[string]title) (map[string][]string, map[string][]string) {
	scanner, closeFn := streamDataset("title.principals.tsv.gz")
	defer closeFn()

	actorIDs := make(map[string][]string)
	directorIDs := make(map[string][]string)

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 4 {
			continue
		}
		if _, ok := titles[parts[0]]; !ok {
			continue
		}

		switch parts[3] {
		case "actor", "actress":
			if len(actorIDs[parts[0]]) < maxActors {
				actorIDs[parts[0]] = append(actorIDs[parts[0]], parts[2])
			}
		case "director":
			directorIDs[parts[0]] = append(directorIDs[parts[0]], parts[2])
		}
	}

	// Resolve actor IDs to names in one pass over name.basics
	wanted := make(map[string]bool)
	for _, ids := range actorIDs {
		for _, id := range ids {
			wanted[id] = true
		}
	}
	names := getPeopleNames(wanted)

	actors := make(map[string][]string, len(actorIDs))
	for titleID, ids := range actorIDs {
		for _, id := range ids {
			if name, ok := names[id]; ok {
				actors[titleID] = append(actors[titleID], name)
			}
		}
	}
	return actors, directorIDs
}

func getPeopleNames(targetIDs map[string]bool) map[string]string {
	if len(targetIDs) == 0 {
		return nil
	}

	scanner, closeFn := streamDataset("name.basics.tsv.gz")
	defer closeFn()

	names := make(map[string]string)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 2 || !targetIDs[parts[0]] {
			continue
		}
		names[parts[0]] = parts[1]
	}
	return names
}

func openDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		host := envDefault("POSTGRES_HOST", "localhost")
		port := envDefault("POSTGRES_PORT", "5432")
		user := envDefault("POSTGRES_USER", "stagedoor")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := envDefault("POSTGRES_DB", "stagedoor")
		sslMode := envDefault("POSTGRES_SSL_MODE", "disable")

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

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
