/*
This file covers the player endpoints: reading the player's own status and moving
between locations. A successful move persists the new location first, then notifies
the realtime layer so occupants of both locations see consistent presence events.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/1o0n1/structure/internal/app/store"
	"github.com/1o0n1/structure/internal/pkg/auth/jwt"
	"github.com/1o0n1/structure/internal/pkg/errs"
	"github.com/1o0n1/structure/internal/pkg/logx"
	"github.com/1o0n1/structure/internal/pkg/req"
	"github.com/1o0n1/structure/internal/pkg/resp"
)

// HandleGetPlayerStatus returns the caller's player record.
func HandleGetPlayerStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.GetPayloadFromContext(r)

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		player, err := deps.Store.GetPlayer(r.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPlayerNotFound))
				return
			}
			logx.Error(err, "failed to load player status", "user_id", claims.Sub)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, player)
	}
}

type MoveInput struct {
	TargetLocationID uuid.UUID `json:"target_location_id"`
}

// HandleMovePlayer relocates the caller along a link of the world graph.
//
// The link must exist from the player's current location and the player's access
// level must satisfy it. The ordering here is load-bearing: the database write
// completes before the realtime coordinator runs, so a reconnect racing the move
// joins the new location.
func HandleMovePlayer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.GetPayloadFromContext(r)

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input MoveInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.TargetLocationID == uuid.Nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		player, err := deps.Store.GetPlayer(r.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPlayerNotFound))
				return
			}
			logx.Error(err, "failed to load player for move", "user_id", claims.Sub)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// A player with no recorded location can only surface at the start location.
		if player.CurrentLocationID == nil {
			if input.TargetLocationID != store.StartLocationID {
				resp.RespondError(w, r, errs.NewError(errs.ErrNoLinkToLocation))
				return
			}
		} else {
			link, err := deps.Store.GetLink(r.Context(), *player.CurrentLocationID, input.TargetLocationID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					resp.RespondError(w, r, errs.NewError(errs.ErrNoLinkToLocation))
					return
				}
				logx.Error(err, "failed to look up location link", "user_id", claims.Sub)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			if player.AccessLevel < link.RequiredAccessLevel {
				resp.RespondError(w, r, errs.NewError(errs.ErrAccessLevelTooLow, link.RequiredAccessLevel))
				return
			}
		}

		if err := deps.Store.SetCurrentLocation(r.Context(), userID, input.TargetLocationID); err != nil {
			logx.Error(err, "failed to persist player move", "user_id", claims.Sub)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Coordinator.NotifyMove(userID, claims.Username, player.CurrentLocationID, input.TargetLocationID)

		player.CurrentLocationID = &input.TargetLocationID
		resp.RespondSuccess(w, r, player)
	}
}
