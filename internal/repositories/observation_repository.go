package repositories

import (
	"fishlog/internal/models"
	"fishlog/internal/query"
)

// ObservationRepository defines the interface for observation data access.
type ObservationRepository interface {
	Find(q query.Query) ([]models.Observation, error)
	GetByID(id uint) (*models.Observation, error)
	Create(o *models.Observation) (uint, error)
	Update(o *models.Observation) error
	Delete(id uint) error
	DistinctSpecies() ([]string, error)
}
