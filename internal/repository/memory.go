package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
)

// MemoryStore хранит артефакты и результаты в памяти, если база данных не настроена
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]models.RunArtifact
	results   []models.TaskResult
}

func NewMemoryStore() service.ArtifactStore {
	return &MemoryStore{artifacts: make(map[string]models.RunArtifact)}
}

func (m *MemoryStore) SaveArtifact(_ context.Context, a *models.RunArtifact) error {
	c := *a
	c.ActionList = append([]models.ActionRecord(nil), a.ActionList...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[a.InputHash] = c
	return nil
}

func (m *MemoryStore) GetArtifact(_ context.Context, inputHash string) (*models.RunArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[inputHash]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", inputHash, models.ErrArtifactNotFound)
	}
	a.ActionList = append([]models.ActionRecord(nil), a.ActionList...)
	return &a, nil
}

func (m *MemoryStore) SaveTaskResult(_ context.Context, r *models.TaskResult) error {
	c := *r
	c.Units = append([]string(nil), r.Units...)
	c.Summary = append([]string(nil), r.Summary...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, c)
	return nil
}

// ListTaskResults повторяет поведение ArtifactRepository
func (m *MemoryStore) ListTaskResults(_ context.Context, runID uuid.UUID) ([]*models.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.TaskResult, 0)
	if runID == uuid.Nil {
		for i := len(m.results) - 1; i >= 0 && len(out) < resultListLimit; i-- {
			r := m.results[i]
			out = append(out, &r)
		}
		return out, nil
	}
	for _, r := range m.results {
		if r.RunID == runID {
			r := r
			out = append(out, &r)
		}
	}
	return out, nil
}
