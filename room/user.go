// room/user.go
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/message"
)

// User is the handle for one connected identity. A single instance is shared
// by reference between the broker's registry and whichever room currently
// holds it, so status changes are visible to both.
type User struct {
	ID   uuid.UUID
	Name string

	mu     sync.RWMutex
	status message.Status
}

// NewUser creates a handle in the waiting status.
func NewUser(id uuid.UUID, name string) *User {
	return &User{ID: id, Name: name, status: message.StatusWaiting}
}

// Status returns the user's current lifecycle status.
func (u *User) Status() message.Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.status
}

// SetStatus moves the user to a new lifecycle status.
func (u *User) SetStatus(s message.Status) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = s
}
