package bot

import (
	"sync"

	"github.com/google/uuid"
)

// ActionRegistry keeps the callbacks behind inline notice buttons. Telegram
// callback data is limited to 64 bytes, so buttons carry a token instead.
type ActionRegistry struct {
	mu      sync.Mutex
	actions map[string]func()
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]func())}
}

// Register stores run and returns its token.
func (r *ActionRegistry) Register(run func()) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions[token] = run
	return token
}

// Take removes and returns the action. Each action runs at most once.
func (r *ActionRegistry) Take(token string) (func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.actions[token]
	delete(r.actions, token)
	return run, ok
}

// Drop forgets the action, e.g. when its button expires.
func (r *ActionRegistry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.actions, token)
}

// Len returns the number of live actions.
func (r *ActionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.actions)
}
