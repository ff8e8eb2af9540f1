package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bookhub/pkg/database"
)

func main() {
	var (
		librariesIn = flag.String("libraries", "data/libraries.csv", "input CSV path for libraries")
		mediaIn     = flag.String("media", "data/media.csv", "input CSV path for media + metadata")
		seriesIn    = flag.String("series", "data/series_metadata.csv", "input CSV path for series metadata")
		schemaPath  = flag.String("schema", "docs/schema.sql", "schema file to apply before importing")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.MigrateFrom(db, *schemaPath); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importLibraries(ctx, db, *librariesIn); err != nil {
		log.Fatalf("import libraries failed: %v", err)
	}
	if err := importMedia(ctx, db, *mediaIn); err != nil {
		log.Fatalf("import media failed: %v", err)
	}
	if err := importSeriesMetadata(ctx, db, *seriesIn); err != nil {
		log.Fatalf("import series metadata failed: %v", err)
	}

	log.Printf("imported libraries from %s, media from %s, series metadata from %s",
		*librariesIn, *mediaIn, *seriesIn)
}

func importLibraries(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO libraries (id, name, path)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if id == "" || name == "" {
			continue
		}

		if _, err := stmt.ExecContext(ctx, id, name, valueAt(header, row, "path")); err != nil {
			return err
		}
	}
	return nil
}

func importMedia(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	mediaStmt, err := db.PrepareContext(ctx, `
		INSERT INTO media (id, library_id, name, path, pages)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			library_id = excluded.library_id,
			name = excluded.name,
			path = excluded.path,
			pages = excluded.pages,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer mediaStmt.Close()

	metaStmt, err := db.PrepareContext(ctx, `
		INSERT INTO media_metadata (media_id, title, series, writers, publisher, genre, summary, age_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			title = excluded.title,
			series = excluded.series,
			writers = excluded.writers,
			publisher = excluded.publisher,
			genre = excluded.genre,
			summary = excluded.summary,
			age_rating = excluded.age_rating
	`)
	if err != nil {
		return err
	}
	defer metaStmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		libraryID := valueAt(header, row, "library_id")
		name := valueAt(header, row, "name")
		if id == "" || libraryID == "" || name == "" {
			continue
		}

		pages, err := parseNullInt(valueAt(header, row, "pages"))
		if err != nil {
			return fmt.Errorf("parse pages for %s: %w", id, err)
		}

		if _, err := mediaStmt.ExecContext(
			ctx, id, libraryID, name, valueAt(header, row, "path"), pages,
		); err != nil {
			return err
		}

		ageRating, err := parseNullInt(valueAt(header, row, "age_rating"))
		if err != nil {
			return fmt.Errorf("parse age_rating for %s: %w", id, err)
		}

		if _, err := metaStmt.ExecContext(
			ctx,
			id,
			nullString(valueAt(header, row, "title")),
			nullString(valueAt(header, row, "series")),
			nullString(valueAt(header, row, "writers")),
			nullString(valueAt(header, row, "publisher")),
			nullString(valueAt(header, row, "genre")),
			nullString(valueAt(header, row, "summary")),
			ageRating,
		); err != nil {
			return err
		}
	}
	return nil
}

func importSeriesMetadata(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO series_metadata
			(id, meta_type, title, summary, publisher, imprint, external_id, volume, booktype, age_rating, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			meta_type = excluded.meta_type,
			title = excluded.title,
			summary = excluded.summary,
			publisher = excluded.publisher,
			imprint = excluded.imprint,
			external_id = excluded.external_id,
			volume = excluded.volume,
			booktype = excluded.booktype,
			age_rating = excluded.age_rating,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		if id == "" {
			continue
		}

		externalID, err := parseNullInt(valueAt(header, row, "external_id"))
		if err != nil {
			return fmt.Errorf("parse external_id for %s: %w", id, err)
		}
		volume, err := parseNullInt(valueAt(header, row, "volume"))
		if err != nil {
			return fmt.Errorf("parse volume for %s: %w", id, err)
		}
		ageRating, err := parseNullInt(valueAt(header, row, "age_rating"))
		if err != nil {
			return fmt.Errorf("parse age_rating for %s: %w", id, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			nullString(valueAt(header, row, "meta_type")),
			nullString(valueAt(header, row, "title")),
			nullString(valueAt(header, row, "summary")),
			nullString(valueAt(header, row, "publisher")),
			nullString(valueAt(header, row, "imprint")),
			externalID,
			volume,
			nullString(valueAt(header, row, "booktype")),
			ageRating,
			nullString(valueAt(header, row, "status")),
		); err != nil {
			return err
		}
	}
	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseNullInt(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return n, nil
}
