// Package importer loads the movie catalog from a CSV export. Each data row
// is one movie with its genres, its director, and up to four billed actors.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/logger"
	"github.com/mantonx/cinelog/internal/modules/moviemodule/core"
	"gorm.io/gorm"
)

// Expected CSV columns. Extra columns are ignored.
const (
	colTitle    = "Series_Title"
	colYear     = "Released_Year"
	colGenre    = "Genre"
	colDirector = "Director"
	colOverview = "Overview"
)

var starColumns = []string{"Star1", "Star2", "Star3", "Star4"}

// Summary reports what an import run did.
type Summary struct {
	Movies  int
	Skipped int
}

// Reset deletes every movie. Ratings cascade with their movies; artists and
// genres are shared reference data and survive a reset.
func Reset(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var movies []database.Movie
		if err := tx.Find(&movies).Error; err != nil {
			return err
		}
		for i := range movies {
			if err := tx.Model(&movies[i]).Association("Genres").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&movies[i]).Association("Directors").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&movies[i]).Association("Actors").Clear(); err != nil {
				return err
			}
		}
		if err := tx.Where("1 = 1").Delete(&database.Rating{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&database.Movie{}).Error
	})
}

// Import reads CSV rows and creates one movie per row inside its own
// transaction, so a bad row rolls back completely without losing the rest of
// the file. Artists and genres are deduplicated by natural key across rows
// and across runs.
func Import(db *gorm.DB, r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colTitle, colYear, colGenre, colDirector} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	summary := &Summary{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("failed to read CSV row %d: %w", line+1, err)
		}
		line++

		if err := importRow(db, columns, record); err != nil {
			logger.Warn("Skipping row %d: %v", line, err)
			summary.Skipped++
			continue
		}
		summary.Movies++
	}

	return summary, nil
}

func field(columns map[string]int, record []string, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// splitName breaks a display name into the (first, last) natural key. A
// single-word name acts as both parts, matching how mononymous artists are
// stored.
func splitName(name string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first := parts[0]
	last := parts[len(parts)-1]
	return first, last
}

func importRow(db *gorm.DB, columns map[string]int, record []string) error {
	title := field(columns, record, colTitle)
	if title == "" {
		return fmt.Errorf("empty title")
	}
	if len(title) > 45 {
		title = title[:45]
	}

	// Unparseable years are stored as 0 rather than dropping the movie.
	year, err := strconv.Atoi(field(columns, record, colYear))
	if err != nil {
		year = 0
	}

	return db.Transaction(func(tx *gorm.DB) error {
		resolver := core.NewResolver(tx)

		movie := &database.Movie{
			Title:    title,
			Year:     year,
			Overview: field(columns, record, colOverview),
		}
		if err := tx.Create(movie).Error; err != nil {
			return err
		}

		for _, name := range strings.Split(field(columns, record, colGenre), ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			genre, _, err := resolver.ResolveGenre(name)
			if err != nil {
				return err
			}
			if err := tx.Model(movie).Association("Genres").Append(genre); err != nil {
				return err
			}
		}

		if director := field(columns, record, colDirector); director != "" {
			if err := attachArtist(tx, resolver, movie, "Directors", director); err != nil {
				return err
			}
		}
		for _, col := range starColumns {
			star := field(columns, record, col)
			if star == "" {
				continue
			}
			if err := attachArtist(tx, resolver, movie, "Actors", star); err != nil {
				return err
			}
		}

		// Slug last, as in the API flow.
		slug := core.MakeSlug(movie.Title, movie.ID)
		return tx.Model(movie).Update("slug", slug).Error
	})
}

func attachArtist(tx *gorm.DB, resolver *core.Resolver, movie *database.Movie, association, name string) error {
	first, last := splitName(name)
	artist, created, err := resolver.ResolveArtist(first, last)
	if err != nil {
		return err
	}
	if created {
		slug := core.MakeSlug(artist.FirstName+" "+artist.LastName, artist.ID)
		if err := tx.Model(artist).Update("slug", slug).Error; err != nil {
			return err
		}
	}
	return tx.Model(movie).Association(association).Append(artist)
}
