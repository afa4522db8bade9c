package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nmurthy/natalscope/pkg/chart"
)

// ErrChartNotFound is returned when a chart cannot be found
var ErrChartNotFound = errors.New("chart not found")

// SavedChart is a persisted natal chart: the birth inputs, the headline
// results, and the full computed chart as JSON.
type SavedChart struct {
	ID                 int          `json:"id"`
	UserID             int          `json:"user_id"`
	Name               string       `json:"name"`
	BirthDate          string       `json:"birth_date"`
	BirthTime          string       `json:"birth_time"`
	Latitude           float64      `json:"latitude"`
	Longitude          float64      `json:"longitude"`
	Timezone           string       `json:"timezone"`
	City               string       `json:"city,omitempty"`
	Country            string       `json:"country,omitempty"`
	HouseSystem        string       `json:"house_system"`
	Ayanamsa           string       `json:"ayanamsa"`
	AyanamsaValue      float64      `json:"ayanamsa_value"`
	JulianDay          float64      `json:"julian_day"`
	AscendantLongitude float64      `json:"ascendant_longitude"`
	AscendantSign      string       `json:"ascendant_sign"`
	Chart              *chart.Chart `json:"chart,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

// BodyRow is one planet's placement within a saved chart.
type BodyRow struct {
	Body       string  `json:"body"`
	Longitude  float64 `json:"longitude"`
	Sign       string  `json:"sign"`
	House      int     `json:"house"`
	Retrograde bool    `json:"retrograde"`
	Nakshatra  string  `json:"nakshatra"`
}

// ChartRepository handles database operations for saved charts.
type ChartRepository struct {
	db *DB
}

// NewChartRepository creates a new chart repository.
func NewChartRepository(db *DB) *ChartRepository {
	return &ChartRepository{db: db}
}

// newSavedChart maps a computed chart onto its persisted row.
func newSavedChart(userID int, city, country string, c *chart.Chart) *SavedChart {
	return &SavedChart{
		UserID:             userID,
		Name:               c.BirthDetails.Name,
		BirthDate:          c.BirthDetails.Date,
		BirthTime:          c.BirthDetails.Time,
		Latitude:           c.BirthDetails.Latitude,
		Longitude:          c.BirthDetails.Longitude,
		Timezone:           c.BirthDetails.Timezone,
		City:               city,
		Country:            country,
		HouseSystem:        c.HouseSystem,
		Ayanamsa:           c.Ayanamsa.Type,
		AyanamsaValue:      c.Ayanamsa.Value,
		JulianDay:          c.JulianDay,
		AscendantLongitude: c.Ascendant.Longitude,
		AscendantSign:      c.Ascendant.Sign,
	}
}

// Create stores a computed chart for a user. The chart row and its body
// rows are written in one transaction.
func (r *ChartRepository) Create(ctx context.Context, userID int, city, country string, c *chart.Chart) (*SavedChart, error) {
	chartJSON, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	saved := newSavedChart(userID, city, country, c)

	err = tx.QueryRowContext(ctx,
		`INSERT INTO charts (
			user_id, name, birth_date, birth_time, latitude, longitude,
			timezone, city, country, house_system, ayanamsa, ayanamsa_value,
			julian_day, ascendant_longitude, ascendant_sign, chart_json
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at`,
		saved.UserID, saved.Name, saved.BirthDate, saved.BirthTime,
		saved.Latitude, saved.Longitude, saved.Timezone,
		saved.City, saved.Country,
		saved.HouseSystem, saved.Ayanamsa, saved.AyanamsaValue,
		saved.JulianDay, saved.AscendantLongitude, saved.AscendantSign,
		chartJSON,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chart: %w", err)
	}

	for _, p := range c.Planets {
		if p.Failed {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chart_bodies (chart_id, body, longitude, sign, house, retrograde, nakshatra)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			saved.ID, p.Name, p.Longitude, p.Sign, p.House, p.Retrograde, p.Nakshatra.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert body %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit chart: %w", err)
	}

	saved.Chart = c
	return saved, nil
}

// GetByID retrieves a saved chart including the full computed chart JSON.
func (r *ChartRepository) GetByID(ctx context.Context, id int) (*SavedChart, error) {
	saved := &SavedChart{}
	var chartJSON []byte
	var city, country sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, birth_date, birth_time, latitude, longitude,
		        timezone, city, country, house_system, ayanamsa, ayanamsa_value,
		        julian_day, ascendant_longitude, ascendant_sign, chart_json, created_at
		 FROM charts WHERE id = $1`,
		id,
	).Scan(
		&saved.ID, &saved.UserID, &saved.Name, &saved.BirthDate, &saved.BirthTime,
		&saved.Latitude, &saved.Longitude, &saved.Timezone, &city, &country,
		&saved.HouseSystem, &saved.Ayanamsa, &saved.AyanamsaValue,
		&saved.JulianDay, &saved.AscendantLongitude, &saved.AscendantSign,
		&chartJSON, &saved.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrChartNotFound
	}
	if err != nil {
		return nil, err
	}

	saved.City = city.String
	saved.Country = country.String

	var c chart.Chart
	if err := json.Unmarshal(chartJSON, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart %d: %w", id, err)
	}
	saved.Chart = &c

	return saved, nil
}

// ListByUser returns a user's saved charts, newest first, without the
// full chart JSON.
func (r *ChartRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*SavedChart, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, birth_date, birth_time, latitude, longitude,
		        timezone, city, country, house_system, ayanamsa, ayanamsa_value,
		        julian_day, ascendant_longitude, ascendant_sign, created_at
		 FROM charts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charts []*SavedChart
	for rows.Next() {
		saved := &SavedChart{}
		var city, country sql.NullString
		err := rows.Scan(
			&saved.ID, &saved.UserID, &saved.Name, &saved.BirthDate, &saved.BirthTime,
			&saved.Latitude, &saved.Longitude, &saved.Timezone, &city, &country,
			&saved.HouseSystem, &saved.Ayanamsa, &saved.AyanamsaValue,
			&saved.JulianDay, &saved.AscendantLongitude, &saved.AscendantSign,
			&saved.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		saved.City = city.String
		saved.Country = country.String
		charts = append(charts, saved)
	}

	return charts, rows.Err()
}

// GetBodies returns the per-planet placement rows for a saved chart.
func (r *ChartRepository) GetBodies(ctx context.Context, chartID int) ([]BodyRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT body, longitude, sign, house, retrograde, nakshatra
		 FROM chart_bodies
		 WHERE chart_id = $1
		 ORDER BY id ASC`,
		chartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []BodyRow
	for rows.Next() {
		var b BodyRow
		if err := rows.Scan(&b.Body, &b.Longitude, &b.Sign, &b.House, &b.Retrograde, &b.Nakshatra); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}

	return bodies, rows.Err()
}

// Delete removes a chart owned by the given user. Ownership is enforced
// in the query so a user cannot delete another user's chart by ID.
func (r *ChartRepository) Delete(ctx context.Context, chartID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM charts WHERE id = $1 AND user_id = $2`,
		chartID, userID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChartNotFound
	}

	return nil
}
