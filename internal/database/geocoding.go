package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/geocoding"
)

// LocationGeocoder resolves a free-form listing location to coordinates
type LocationGeocoder interface {
	GeocodeLocation(ctx context.Context, location string) (lat, lon float64, err error)
}

// UpdateMissingCoordinates geocodes every listing without coordinates that was
// not attempted yet. A listing is marked as attempted once it is placed or the
// geocoder finds no match; transient failures leave it for the next run.
func (d *Database) UpdateMissingCoordinates(ctx context.Context, geocoder LocationGeocoder) (processed int, failed int, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, location
		FROM properties
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND location != ''
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query properties: %w", err)
	}

	type pending struct{ id, location string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.location); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("error iterating properties: %w", err)
	}

	if len(todo) == 0 {
		d.logger.Debug("No properties need geocoding")
		return 0, 0, nil
	}

	d.logger.Infof("Found %d properties that need geocoding", len(todo))

	for _, p := range todo {
		if err := ctx.Err(); err != nil {
			return processed, failed, err
		}

		lat, lon, geoErr := geocoder.GeocodeLocation(ctx, p.location)
		if geoErr != nil {
			d.logger.WithError(geoErr).WithField("location", p.location).Warn("Failed to geocode property")
			failed++
			if !errors.Is(geoErr, geocoding.ErrNoResults) {
				continue
			}
			if _, err := d.db.ExecContext(ctx, "UPDATE properties SET geocoding_attempted = 1 WHERE id = ?", p.id); err != nil {
				return processed, failed, fmt.Errorf("failed to mark geocoding attempt: %w", err)
			}
			continue
		}

		_, err := d.db.ExecContext(ctx, `
			UPDATE properties
			SET latitude = ?, longitude = ?, geocoding_attempted = 1
			WHERE id = ?
		`, lat, lon, p.id)
		if err != nil {
			return processed, failed, fmt.Errorf("failed to update coordinates: %w", err)
		}
		processed++
	}

	d.logger.WithFields(logrus.Fields{
		"processed": processed,
		"failed":    failed,
		"total":     len(todo),
	}).Info("Geocoding completed")

	return processed, failed, nil
}
