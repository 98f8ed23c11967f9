package api

import (
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/store"
)

// RewardHandler serves /api/rewards and /api/notifications.
type RewardHandler struct {
	rewards       service.RewardService
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewRewardHandler creates a RewardHandler.
func NewRewardHandler(rewards service.RewardService, notifications store.NotificationStore, logger *slog.Logger) *RewardHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for RewardHandler")
	}
	return &RewardHandler{
		rewards:       rewards,
		notifications: notifications,
		logger:        logger.With(slog.String("component", "reward_handler")),
	}
}

// ListRewards handles GET /api/rewards.
func (h *RewardHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.rewards.ListRewards(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list rewards")
		return
	}
	if summary.Rewards == nil {
		summary.Rewards = []*domain.Reward{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Redeem handles POST /api/rewards/{id}/redeem. A second redemption
// answers 409.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	reward, err := h.rewards.Redeem(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to redeem reward")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("reward redeemed",
		slog.String("reward_id", reward.ID.String()),
		slog.Int("points", reward.Points))
	shared.RespondWithJSON(w, r, http.StatusOK, reward)
}

// ListNotifications handles GET /api/notifications?unread=true&limit=&offset=.
func (h *RewardHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.notifications.ListByUser(r.Context(), userID, unreadOnly, pageFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// MarkNotificationRead handles POST /api/notifications/{id}/read.
func (h *RewardHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notification")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, n)
}
