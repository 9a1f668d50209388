package settle

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/eventsplit/internal/models"
)

// Members returns the roster of an event in stored order.
func (s *Service) Members(ctx context.Context, eventID string) ([]models.Member, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.LoadMembers(ctx, eventID)
}

// CleanMembers trims both fields, drops rows with a blank name and keeps
// only the first row for each name.
func CleanMembers(members []models.Member) []models.Member {
	cleaned := make([]models.Member, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		name := strings.TrimSpace(m.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, models.Member{Name: name, PayTo: strings.TrimSpace(m.PayTo)})
	}
	return cleaned
}

// SaveMembers replaces the roster with the cleaned list and returns it.
func (s *Service) SaveMembers(ctx context.Context, eventID string, members []models.Member) ([]models.Member, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	cleaned := CleanMembers(members)
	if err := s.store.SaveMembers(ctx, eventID, cleaned); err != nil {
		return nil, err
	}
	s.logger.Info("Saved members", "event_id", eventID, "count", len(cleaned))
	return cleaned, nil
}

// AddMember appends a member to the roster.
func (s *Service) AddMember(ctx context.Context, eventID string, member models.Member) (models.Member, error) {
	member = models.Member{Name: strings.TrimSpace(member.Name), PayTo: strings.TrimSpace(member.PayTo)}
	if member.Name == "" {
		return models.Member{}, invalid("name", "member name is required")
	}

	members, err := s.Members(ctx, eventID)
	if err != nil {
		return models.Member{}, err
	}
	if indexOfMember(members, member.Name) >= 0 {
		return models.Member{}, invalid("name", fmt.Sprintf("member %q already exists", member.Name))
	}

	if err := s.store.SaveMembers(ctx, eventID, append(members, member)); err != nil {
		return models.Member{}, err
	}
	s.logger.Info("Added member", "event_id", eventID, "name", member.Name)
	return member, nil
}

// UpdateMember renames a member and replaces its payment destination.
// Expenses keep referring to the old name.
func (s *Service) UpdateMember(ctx context.Context, eventID, name string, updated models.Member) (models.Member, error) {
	updated = models.Member{Name: strings.TrimSpace(updated.Name), PayTo: strings.TrimSpace(updated.PayTo)}
	if updated.Name == "" {
		return models.Member{}, invalid("name", "member name is required")
	}

	members, err := s.Members(ctx, eventID)
	if err != nil {
		return models.Member{}, err
	}
	i := indexOfMember(members, strings.TrimSpace(name))
	if i < 0 {
		return models.Member{}, fmt.Errorf("member %q: %w", name, ErrNotFound)
	}
	if j := indexOfMember(members, updated.Name); j >= 0 && j != i {
		return models.Member{}, invalid("name", fmt.Sprintf("member %q already exists", updated.Name))
	}

	members[i] = updated
	if err := s.store.SaveMembers(ctx, eventID, members); err != nil {
		return models.Member{}, err
	}
	s.logger.Info("Updated member", "event_id", eventID, "name", name, "new_name", updated.Name)
	return updated, nil
}

// RemoveMember drops a member from the roster. Expenses are not touched.
func (s *Service) RemoveMember(ctx context.Context, eventID, name string) error {
	members, err := s.Members(ctx, eventID)
	if err != nil {
		return err
	}
	i := indexOfMember(members, strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("member %q: %w", name, ErrNotFound)
	}

	members = append(members[:i], members[i+1:]...)
	if err := s.store.SaveMembers(ctx, eventID, members); err != nil {
		return err
	}
	s.logger.Info("Removed member", "event_id", eventID, "name", name)
	return nil
}

func indexOfMember(members []models.Member, name string) int {
	for i, m := range members {
		if m.Name == name {
			return i
		}
	}
	return -1
}
