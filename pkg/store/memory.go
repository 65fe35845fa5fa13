package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/listing"
)

// Status values for inventory items.
const (
	StatusAvailable = "AVAILABLE"
	StatusSold      = "SOLD"
)

// User is a stored account.
type User struct {
	ID              string
	Role            access.Role
	CaptionTemplate string
}

// Phone is a stored inventory item.
type Phone struct {
	OwnerID      string
	Name         string
	Condition    string
	Status       string
	SellingPrice float64
	SoldAt       time.Time
}

// Memory is an in-process Users and Sales implementation.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]User
	phones []Phone
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]User)}
}

// PutUser inserts or replaces a user.
func (m *Memory) PutUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddPhone records an inventory item.
func (m *Memory) AddPhone(p Phone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phones = append(m.phones, p)
}

// Role returns the user's subscription tier.
func (m *Memory) Role(_ context.Context, userID string) (access.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.Role, nil
}

// CaptionTemplate returns the user's saved caption template, or "".
func (m *Memory) CaptionTemplate(_ context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.CaptionTemplate, nil
}

// RecentSold returns the owner's most recent sales of the model.
func (m *Memory) RecentSold(_ context.Context, ownerID, model string, limit int) ([]listing.Sale, error) {
	m.mu.RLock()
	var matched []Phone
	needle := strings.ToLower(model)
	for _, p := range m.phones {
		if p.OwnerID != ownerID || p.Status != StatusSold {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SoldAt.After(matched[j].SoldAt)
	})
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	sales := make([]listing.Sale, 0, len(matched))
	for _, p := range matched {
		sales = append(sales, listing.Sale{Price: p.SellingPrice, Condition: p.Condition})
	}
	return sales, nil
}
