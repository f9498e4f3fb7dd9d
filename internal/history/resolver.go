package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve turns a user reference into a conversation.
//
// Supported references:
//   - "@last" for the most recent conversation
//   - "1", "2", ... by position in List (1-based)
//   - a full ID or a unique ID prefix
//   - a title substring, case-insensitive, when it matches exactly one
func (s *Store) Resolve(ref string) (*Conversation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty reference")
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no saved conversations")
	}

	if strings.EqualFold(ref, "@last") {
		return all[0], nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(all) {
			return nil, fmt.Errorf("index %d out of range (1-%d)", index, len(all))
		}
		return all[index-1], nil
	}

	var byID []*Conversation
	for _, c := range all {
		if c.ID == ref {
			return c, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			byID = append(byID, c)
		}
	}
	if len(byID) == 1 {
		return byID[0], nil
	}

	lower := strings.ToLower(ref)
	var matches []*Conversation
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Title), lower) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no conversation matching '%s'", ref)
	case 1:
		return matches[0], nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = fmt.Sprintf("'%s'", m.Title)
		}
		return nil, fmt.Errorf("multiple conversations match '%s': %s. Use the ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}
