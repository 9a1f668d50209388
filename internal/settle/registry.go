package settle

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/storage"
)

// CreateEvent writes the event and returns its derived id. Re-creating an
// existing id overwrites the metadata only; its members and expenses stay.
func (s *Service) CreateEvent(ctx context.Context, title, start, end string) (string, error) {
	event := models.Event{
		ID:        models.EventID(start, end, title),
		Title:     title,
		Start:     start,
		End:       end,
		CreatedAt: s.today(),
	}
	if err := s.store.CreateEvent(ctx, event, s.roster); err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("Created event", "event_id", event.ID, "title", title)
	return event.ID, nil
}

// ListEvents returns all events, newest first, ties by id.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt != events[j].CreatedAt {
			return events[i].CreatedAt > events[j].CreatedAt
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// GetEvent returns the metadata of one event.
func (s *Service) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	if err := storage.CheckID(eventID); err != nil {
		return models.Event{}, err
	}
	return s.store.GetEvent(ctx, eventID)
}

// DeleteEvent removes the event with all its members, expenses and
// receipts. It reports false when there was nothing to remove.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	removed, err := s.store.DeleteEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("Deleted event", "event_id", eventID)
	}
	return removed, nil
}

// requireEvent fails with ErrNotFound for an unknown event.
func (s *Service) requireEvent(ctx context.Context, eventID string) error {
	_, err := s.GetEvent(ctx, eventID)
	return err
}
