package importer

import (
	"strings"
	"testing"

	"github.com/mantonx/cinelog/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.User{},
		&database.Artist{},
		&database.Genre{},
		&database.Movie{},
		&database.Rating{},
	))
	return db
}

const sampleCSV = `Series_Title,Released_Year,Genre,Director,Star1,Star2,Star3,Star4,Overview
The Shawshank Redemption,1994,Drama,Frank Darabont,Tim Robbins,Morgan Freeman,Bob Gunton,William Sadler,Two imprisoned men bond over a number of years.
The Godfather,1972,"Crime, Drama",Francis Ford Coppola,Marlon Brando,Al Pacino,James Caan,Diane Keaton,An aging patriarch transfers control to his son.
Apollo 13,PG,"Adventure, Drama",Ron Howard,Tom Hanks,Bill Paxton,Kevin Bacon,Gary Sinise,NASA must devise a strategy to return Apollo 13.
`

func TestImport(t *testing.T) {
	db := setupTestDB(t)

	summary, err := Import(db, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Movies)
	assert.Equal(t, 0, summary.Skipped)

	var movies []database.Movie
	require.NoError(t, db.Preload("Genres").Preload("Directors").Preload("Actors").
		Order("id").Find(&movies).Error)
	require.Len(t, movies, 3)

	shawshank := movies[0]
	assert.Equal(t, 1994, shawshank.Year)
	require.NotNil(t, shawshank.Slug)
	assert.Contains(t, *shawshank.Slug, "the-shawshank-redemption-")
	assert.Len(t, shawshank.Directors, 1)
	assert.Len(t, shawshank.Actors, 4)

	// Multi-word surnames keep everything after the first word.
	godfather := movies[1]
	require.Len(t, godfather.Directors, 1)
	assert.Equal(t, "Francis", godfather.Directors[0].FirstName)
	assert.Equal(t, "Ford Coppola", godfather.Directors[0].LastName)
	assert.Len(t, godfather.Genres, 2)

	// A year that does not parse is stored as zero, not dropped.
	assert.Equal(t, 0, movies[2].Year)
}

func TestImportDeduplicatesAcrossRows(t *testing.T) {
	db := setupTestDB(t)

	csv := `Series_Title,Released_Year,Genre,Director,Star1,Overview
Movie One,2000,Drama,Jane Doe,Sam Lee,first
Movie Two,2001,Drama,Jane Doe,Sam Lee,second
`
	summary, err := Import(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Movies)

	var artistCount, genreCount int64
	require.NoError(t, db.Model(&database.Artist{}).Count(&artistCount).Error)
	require.NoError(t, db.Model(&database.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(2), artistCount)
	assert.Equal(t, int64(1), genreCount)
}

func TestImportIsIdempotentForReferenceData(t *testing.T) {
	db := setupTestDB(t)

	_, err := Import(db, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	_, err = Import(db, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Movies duplicate across runs; artists and genres do not.
	var movieCount, artistCount int64
	require.NoError(t, db.Model(&database.Movie{}).Count(&movieCount).Error)
	require.NoError(t, db.Model(&database.Artist{}).Count(&artistCount).Error)
	assert.Equal(t, int64(6), movieCount)
	assert.Equal(t, int64(15), artistCount)
}

func TestImportSkipsBadRows(t *testing.T) {
	db := setupTestDB(t)

	csv := `Series_Title,Released_Year,Genre,Director,Star1,Overview
,2000,Drama,Jane Doe,Sam Lee,missing a title
Good Movie,2001,Drama,Jane Doe,Sam Lee,fine
`
	summary, err := Import(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Movies)
	assert.Equal(t, 1, summary.Skipped)
}

func TestImportRejectsMissingColumns(t *testing.T) {
	db := setupTestDB(t)

	_, err := Import(db, strings.NewReader("Title,Year\nFoo,2000\n"))
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	db := setupTestDB(t)

	_, err := Import(db, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.NoError(t, Reset(db))

	var movieCount, artistCount, genreCount int64
	require.NoError(t, db.Model(&database.Movie{}).Count(&movieCount).Error)
	require.NoError(t, db.Model(&database.Artist{}).Count(&artistCount).Error)
	require.NoError(t, db.Model(&database.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(0), movieCount)
	assert.NotZero(t, artistCount)
	assert.NotZero(t, genreCount)
}
