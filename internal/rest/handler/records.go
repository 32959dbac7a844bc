package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database"
	"github.com/wardenhq/warden/internal/database/types"
	"github.com/wardenhq/warden/internal/rest/convert"
	restTypes "github.com/wardenhq/warden/internal/rest/types"
)

// RecordHandler serves read-only sanction record endpoints.
type RecordHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(db database.Client, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		db:     db,
		logger: logger,
	}
}

// GetWarnings handles GET /v1/moderation/warnings/:guildID. An optional
// userId query parameter narrows the list to a single member.
func (h *RecordHandler) GetWarnings(w http.ResponseWriter, req bunrouter.Request) error {
	guildID, err := strconv.ParseUint(req.Param("guildID"), 10, 64)
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid guild ID", "")
	}

	var warnings []*types.Warning

	if userParam := req.URL.Query().Get("userId"); userParam != "" {
		userID, err := strconv.ParseUint(userParam, 10, 64)
		if err != nil {
			return writeError(w, http.StatusBadRequest, "invalid user ID", "")
		}

		warnings, err = h.db.Model().Warning().GetWarnings(req.Context(), userID, guildID)
		if err != nil {
			h.logger.Error("Failed to get warnings", zap.Error(err))
			return writeError(w, http.StatusInternalServerError, "internal server error", "")
		}
	} else {
		warnings, err = h.db.Model().Warning().GetGuildWarnings(req.Context(), guildID)
		if err != nil {
			h.logger.Error("Failed to get guild warnings", zap.Error(err))
			return writeError(w, http.StatusInternalServerError, "internal server error", "")
		}
	}

	return writeJSON(w, http.StatusOK, restTypes.GetWarningsResponse{
		Warnings: convert.Warnings(warnings),
		Total:    len(warnings),
	})
}

// GetActiveBan handles GET /v1/moderation/bans/:guildID/:userID.
func (h *RecordHandler) GetActiveBan(w http.ResponseWriter, req bunrouter.Request) error {
	guildID, err := strconv.ParseUint(req.Param("guildID"), 10, 64)
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid guild ID", "")
	}

	userID, err := strconv.ParseUint(req.Param("userID"), 10, 64)
	if err != nil {
		return writeError(w, http.StatusBadRequest, "invalid user ID", "")
	}

	ban, err := h.db.Model().Ban().GetActiveBan(req.Context(), userID, guildID)
	if err != nil {
		if errors.Is(err, types.ErrBanNotFound) {
			return writeError(w, http.StatusNotFound, "no active ban", "")
		}

		h.logger.Error("Failed to get active ban", zap.Error(err))

		return writeError(w, http.StatusInternalServerError, "internal server error", "")
	}

	return writeJSON(w, http.StatusOK, convert.Ban(ban))
}
