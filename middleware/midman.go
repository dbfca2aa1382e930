package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// global singleton + once
var (
	globalMgr *MiddlewareManager
	once      sync.Once
)

// MiddlewareManager allows middlewares to be registered and cleared at runtime.
type MiddlewareManager struct {
	mu   sync.RWMutex
	mids []gin.HandlerFunc
}

// Config initializes the global manager explicitly at program startup (optional).
func Config() {
	once.Do(func() {
		globalMgr = NewManager()
	})
}

// NewManager creates a fresh instance.
func NewManager() *MiddlewareManager {
	return &MiddlewareManager{}
}

// Manager returns the global instance (lazy init, thread safe).
func Manager() *MiddlewareManager {
	once.Do(func() {
		if globalMgr == nil {
			globalMgr = NewManager()
		}
	})
	return globalMgr
}

// Add registers a middleware.
func (m *MiddlewareManager) Add(h gin.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mids = append(m.mids, h)
}

// Clear removes all middlewares.
func (m *MiddlewareManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mids = nil
}

// Use returns a single gin.HandlerFunc that runs the registered chain.
func (m *MiddlewareManager) Use() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.mu.RLock()
		handlers := append([]gin.HandlerFunc{}, m.mids...) // snapshot copy
		m.mu.RUnlock()

		for _, h := range handlers {
			h(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}
