package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/profilesync/internal/application/profilesync"
)

// SyncHandler handles on-demand profile synchronization endpoints
type SyncHandler struct {
	BaseHandler
	syncService *profilesync.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *profilesync.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// TriggerSync runs an enrichment cycle for a single customer. Subscriber
// failures surface as errors so the caller learns the sync did not complete.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	synced, err := h.syncService.TriggerSync(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, synced)
}
