package repositories

import (
	"errors"
	"fmt"

	"fishlog/internal/models"
	"fishlog/internal/query"

	"gorm.io/gorm"
)

// GORMObservationRepository is a GORM implementation of ObservationRepository.
type GORMObservationRepository struct {
	db *gorm.DB
}

// NewGORMObservationRepository creates a new instance of GORMObservationRepository.
func NewGORMObservationRepository(db *gorm.DB) *GORMObservationRepository {
	return &GORMObservationRepository{
		db: db,
	}
}

// Find runs a query assembled by the query builder.
func (r *GORMObservationRepository) Find(q query.Query) ([]models.Observation, error) {
	observations := []models.Observation{}
	if err := r.db.Raw(q.SQL(), q.Args()...).Scan(&observations).Error; err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	return observations, nil
}

// GetByID retrieves a single observation by its ID.
func (r *GORMObservationRepository) GetByID(id uint) (*models.Observation, error) {
	var o models.Observation
	if err := r.db.First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("observation with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get observation by ID %d: %w", id, err)
	}
	return &o, nil
}

// Create inserts a new observation and returns its assigned ID.
func (r *GORMObservationRepository) Create(o *models.Observation) (uint, error) {
	o.ID = 0
	if err := r.db.Create(o).Error; err != nil {
		return 0, fmt.Errorf("failed to create observation: %w", err)
	}
	return o.ID, nil
}

// Update overwrites every mutable field of an existing observation in one statement.
func (r *GORMObservationRepository) Update(o *models.Observation) error {
	res := r.db.Model(&models.Observation{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"date":     o.Date,
		"location": o.Location,
		"species":  o.Species,
		"count":    o.Count,
		"bait":     o.Bait,
		"size":     o.Size,
		"water":    o.Water,
		"platform": o.Platform,
		"comments": o.Comments,
		"image":    o.Image,
		"lat":      o.Lat,
		"lng":      o.Lng,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update observation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("observation with ID %d: %w", o.ID, ErrNotFound)
	}
	return nil
}

// Delete permanently removes an observation.
func (r *GORMObservationRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Observation{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete observation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("observation with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// DistinctSpecies lists every recorded species in ascending order.
func (r *GORMObservationRepository) DistinctSpecies() ([]string, error) {
	species := []string{}
	if err := r.db.Model(&models.Observation{}).Distinct("species").Order("species ASC").Pluck("species", &species).Error; err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	return species, nil
}
