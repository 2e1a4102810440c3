package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inmobiliaria/server/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// driverName is go-sqlite3 with a unicode_lower SQL function, since the
// builtin LOWER only folds ASCII
const driverName = "sqlite3_inmobiliaria"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type Database struct {
	db     *sql.DB
	orm    *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite serializes writers, and ":memory:" databases live per connection
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	orm, err := gorm.Open(&sqlite.Dialector{Conn: db}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Database{
		db:     db,
		orm:    orm,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

const propertyColumns = `
	id, title, slug, location, price, price_type, property_type, area, beds, baths,
	description, estimated_roi, rental_potential, featured, video_url,
	latitude, longitude, images, amenities, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	var description, videoURL sql.NullString
	var estimatedROI, rentalPotential, latitude, longitude sql.NullFloat64
	var images, amenities string

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Location,
		&p.Price,
		&p.PriceType,
		&p.PropertyType,
		&p.Area,
		&p.Beds,
		&p.Baths,
		&description,
		&estimatedROI,
		&rentalPotential,
		&p.Featured,
		&videoURL,
		&latitude,
		&longitude,
		&images,
		&amenities,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Handle nullable fields
	if description.Valid {
		p.Description = &description.String
	}
	if videoURL.Valid {
		p.VideoURL = &videoURL.String
	}
	if estimatedROI.Valid {
		p.EstimatedROI = &estimatedROI.Float64
	}
	if rentalPotential.Valid {
		p.RentalPotential = &rentalPotential.Float64
	}
	if latitude.Valid {
		p.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		p.Longitude = &longitude.Float64
	}

	p.Images = decodeList(images)
	p.Amenities = decodeList(amenities)

	return &p, nil
}

func decodeList(raw string) models.StringList {
	var items []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return models.StringList{}
		}
	}
	return models.ParseStringList(items)
}

func encodeList(list models.StringList) string {
	if list == nil {
		list = models.StringList{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// ListProperties returns the listings matching filter, newest first
func (d *Database) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE (? = '' OR price_type = ?)
		AND (? = '' OR property_type = ?)
		AND (? = '' OR unicode_lower(title) LIKE ? ESCAPE '\' OR unicode_lower(location) LIKE ? ESCAPE '\')
		AND (? = 0 OR featured = 1)
		ORDER BY created_at DESC`

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	pattern := "%" + likeEscaper.Replace(search) + "%"

	rows, err := d.db.QueryContext(ctx, query,
		filter.PriceType, filter.PriceType,
		filter.PropertyType, filter.PropertyType,
		search, pattern, pattern,
		filter.FeaturedOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	return properties, nil
}

// ListGeolocatedProperties returns the listings that have coordinates
func (d *Database) ListGeolocatedProperties(ctx context.Context) ([]models.Property, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+propertyColumns+`
		FROM properties
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query geolocated properties: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func (d *Database) GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE slug = ?`, slug)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	return p, nil
}

func (d *Database) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	return p, nil
}

// CreateProperty inserts a listing, assigning its ID and timestamps
func (d *Database) CreateProperty(ctx context.Context, p *models.Property) error {
	now := d.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO properties (`+propertyColumns+`, geocoding_attempted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Location, p.Price, p.PriceType, p.PropertyType,
		p.Area, p.Beds, p.Baths, p.Description, p.EstimatedROI, p.RentalPotential,
		p.Featured, p.VideoURL, p.Latitude, p.Longitude,
		encodeList(p.Images), encodeList(p.Amenities), p.CreatedAt, p.UpdatedAt,
		p.HasCoordinates(),
	)
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// UpdateProperty replaces every editable field of the listing with p.ID.
// Listings left without coordinates become eligible for geocoding again.
func (d *Database) UpdateProperty(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = d.now()

	result, err := d.db.ExecContext(ctx, `
		UPDATE properties SET
			title = ?, slug = ?, location = ?, price = ?, price_type = ?, property_type = ?,
			area = ?, beds = ?, baths = ?, description = ?, estimated_roi = ?,
			rental_potential = ?, featured = ?, video_url = ?, latitude = ?, longitude = ?,
			images = ?, amenities = ?, updated_at = ?, geocoding_attempted = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Location, p.Price, p.PriceType, p.PropertyType,
		p.Area, p.Beds, p.Baths, p.Description, p.EstimatedROI,
		p.RentalPotential, p.Featured, p.VideoURL, p.Latitude, p.Longitude,
		encodeList(p.Images), encodeList(p.Amenities), p.UpdatedAt, p.HasCoordinates(),
		p.ID,
	)
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	created := d.db.QueryRowContext(ctx, "SELECT created_at FROM properties WHERE id = ?", p.ID)
	if err := created.Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("failed to read property creation time: %w", err)
	}
	return nil
}

// DeleteProperty removes a listing. Leads captured from it are kept and detached.
func (d *Database) DeleteProperty(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE leads SET property_id = NULL WHERE property_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach leads: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountProperties returns the number of listings and how many are featured
func (d *Database) CountProperties(ctx context.Context) (total int, featured int, err error) {
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN featured = 1 THEN 1 ELSE 0 END), 0)
		FROM properties
	`).Scan(&total, &featured)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return total, featured, nil
}
