package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/moderation"
	restTypes "github.com/wardenhq/warden/internal/rest/types"
)

// validActions is the set of action names accepted on the path.
var validActions = map[moderation.Action]struct{}{
	moderation.ActionBan:          {},
	moderation.ActionUnban:        {},
	moderation.ActionKick:         {},
	moderation.ActionMute:         {},
	moderation.ActionUnmute:       {},
	moderation.ActionServerMute:   {},
	moderation.ActionServerUnmute: {},
	moderation.ActionWarn:         {},
	moderation.ActionUnwarn:       {},
	moderation.ActionJail:         {},
	moderation.ActionUnjail:       {},
	moderation.ActionPurge:        {},
}

// ActionExecutor executes a single moderation action. Satisfied by
// *moderation.Dispatcher.
type ActionExecutor interface {
	Execute(ctx context.Context, action moderation.Action, req *moderation.Request) (*moderation.Result, error)
}

// ModerationHandler executes moderation actions over HTTP. It shares the
// dispatcher with the bot, so both surfaces enforce the same rules.
type ModerationHandler struct {
	dispatcher ActionExecutor
	logger     *zap.Logger
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(dispatcher ActionExecutor, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ExecuteAction handles POST /v1/moderation/:action.
func (h *ModerationHandler) ExecuteAction(w http.ResponseWriter, req bunrouter.Request) error {
	action := moderation.Action(req.Param("action"))
	if _, ok := validActions[action]; !ok {
		return writeError(w, http.StatusNotFound, "unknown action", "")
	}

	var body restTypes.ActionRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid request body", "")
	}

	result, err := h.dispatcher.Execute(req.Context(), action, toModerationRequest(&body))
	if err != nil {
		actionErr := moderation.AsActionError(err)

		status := statusForCode(actionErr.Code)
		if status == http.StatusInternalServerError {
			h.logger.Error("Action failed",
				zap.String("action", string(action)),
				zap.Error(err))

			return writeError(w, status, "internal server error", string(actionErr.Code))
		}

		return writeError(w, status, actionErr.Message, string(actionErr.Code))
	}

	return writeJSON(w, http.StatusCreated, result)
}

// toModerationRequest maps the JSON body onto a dispatcher request.
func toModerationRequest(body *restTypes.ActionRequest) *moderation.Request {
	return &moderation.Request{
		GuildID:     body.GuildID,
		UserID:      body.UserID,
		ModeratorID: body.ModeratorID,
		Reason:      body.Reason,
		BanDays:     body.BanDays,
		Duration: moderation.MuteDuration{
			Days:    body.Days,
			Hours:   body.Hours,
			Minutes: body.Minutes,
			Seconds: body.Seconds,
		},
		VoiceDuration: time.Duration(body.VoiceDurationSeconds) * time.Second,
		WarningID:     body.WarningID,
		ChannelID:     body.ChannelID,
		Count:         body.Count,
		FilterUserID:  body.FilterUserID,
	}
}

// statusForCode maps dispatcher error codes onto HTTP status codes.
func statusForCode(code moderation.ErrorCode) int {
	switch code {
	case moderation.CodeForbidden:
		return http.StatusForbidden
	case moderation.CodeNotFound:
		return http.StatusNotFound
	case moderation.CodeTargetInvalid, moderation.CodeInvalidDuration:
		return http.StatusBadRequest
	case moderation.CodeAlreadySanctioned, moderation.CodeNotSanctioned, moderation.CodeNotPresent:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
