package services

import (
	"errors"
	"fmt"
	"time"

	"fishlog/internal/logging"
	"fishlog/internal/metrics"
	"fishlog/internal/models"
	"fishlog/internal/query"
	"fishlog/internal/repositories"
	"fishlog/internal/stats"
)

// Event types published when observations change.
const (
	EventObservationCreated = "observation.created"
	EventObservationUpdated = "observation.updated"
	EventObservationDeleted = "observation.deleted"
)

// EventPublisher delivers change events to a broker.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// ObservationEvent is the payload of every observation change event.
type ObservationEvent struct {
	ID          uint                `json:"id"`
	Observation *models.Observation `json:"observation,omitempty"`
	At          time.Time           `json:"at"`
}

// ListResult is everything the list page shows.
type ListResult struct {
	Data        []models.Observation `json:"data"`
	SpeciesList []string             `json:"species_list"`
	stats.Summary
}

// ObservationService handles business logic related to observations.
type ObservationService struct {
	repo      repositories.ObservationRepository
	builder   *query.Builder
	publisher EventPublisher // nil disables events
}

// NewObservationService creates a new ObservationService.
func NewObservationService(repo repositories.ObservationRepository, builder *query.Builder, publisher EventPublisher) *ObservationService {
	return &ObservationService{
		repo:      repo,
		builder:   builder,
		publisher: publisher,
	}
}

// List returns the filtered rows, the species dropdown and the quick stats.
func (s *ObservationService) List(c query.ListCriteria) (*ListResult, error) {
	species, err := s.repo.DistinctSpecies()
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Find(s.builder.List(c))
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Data:        rows,
		SpeciesList: species,
		Summary:     stats.Summarize(rows),
	}, nil
}

// Report returns the rows matching the report page filters.
func (s *ObservationService) Report(c query.ReportCriteria) ([]models.Observation, error) {
	return s.repo.Find(s.builder.Report(c))
}

// Get retrieves a single observation by its ID.
func (s *ObservationService) Get(id uint) (*models.Observation, error) {
	return s.repo.GetByID(id)
}

// Create stores a new observation and returns its ID.
func (s *ObservationService) Create(o *models.Observation) (uint, error) {
	id, err := s.repo.Create(o)
	if err != nil {
		return 0, err
	}
	metrics.RecordMutation("create")
	logging.Info().Uint("id", id).Str("observation", describe(o)).Msg("observation created")
	s.publish(EventObservationCreated, ObservationEvent{ID: id, Observation: o, At: time.Now()})
	return id, nil
}

// Update overwrites every field of observation id with o. When newImage is nil the
// stored image reference is kept.
func (s *ObservationService) Update(id uint, o *models.Observation, newImage *string) error {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	o.ID = id
	o.Image = current.Image
	if newImage != nil {
		o.Image = newImage
	}
	if err := s.repo.Update(o); err != nil {
		return err
	}
	metrics.RecordMutation("update")
	logging.Info().Uint("id", id).Str("observation", describe(o)).Msg("observation updated")
	s.publish(EventObservationUpdated, ObservationEvent{ID: id, Observation: o, At: time.Now()})
	return nil
}

// Delete permanently removes observation id.
func (s *ObservationService) Delete(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	metrics.RecordMutation("delete")
	logging.Info().Uint("id", id).Msg("observation deleted")
	s.publish(EventObservationDeleted, ObservationEvent{ID: id, At: time.Now()})
	return nil
}

// IsNotFound reports whether err means the observation does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

func (s *ObservationService) publish(eventType string, event ObservationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		logging.Warn().Err(err).Str("event", eventType).Uint("id", event.ID).Msg("failed to publish observation event")
		return
	}
	logging.Debug().Str("event", eventType).Uint("id", event.ID).Msg("published observation event")
}

func describe(o *models.Observation) string {
	return fmt.Sprintf("%s %s @ %s", o.Date, o.Species, o.Location)
}
