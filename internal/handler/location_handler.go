/*
This file covers the location read endpoint. Locations carry a security level;
players below it receive a scrambled variant instead of the real record, with no
outgoing links revealed.
*/
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/1o0n1/structure/internal/app/store"
	"github.com/1o0n1/structure/internal/pkg/auth/jwt"
	"github.com/1o0n1/structure/internal/pkg/errs"
	"github.com/1o0n1/structure/internal/pkg/logx"
	"github.com/1o0n1/structure/internal/pkg/resp"
)

// scrambledImageURL is shown in place of a location the player lacks clearance for.
const scrambledImageURL = "/static/images/scrambled.gif"

type LocationResponse struct {
	Location store.Location       `json:"location"`
	Links    []store.LocationLink `json:"links"`
}

// HandleGetLocation returns one location and its outgoing links, scrambled when the
// caller's access level is below the location's security level.
func HandleGetLocation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.GetPayloadFromContext(r)

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		locationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		location, err := deps.Store.GetLocation(r.Context(), locationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrLocationNotFound))
				return
			}
			logx.Error(err, "failed to load location", "location_id", locationID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		player, err := deps.Store.GetPlayer(r.Context(), userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPlayerNotFound))
				return
			}
			logx.Error(err, "failed to load player for location read", "user_id", claims.Sub)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if player.AccessLevel < location.SecurityLevel {
			scrambledImage := scrambledImageURL

			location.Name = "[[ DATA CORRUPTED ]]"
			location.Description = fmt.Sprintf(
				"ACCESS LEVEL %d REQUIRED. YOUR LEVEL: %d.",
				location.SecurityLevel, player.AccessLevel,
			)
			location.ImageURL = &scrambledImage

			resp.RespondSuccess(w, r, LocationResponse{
				Location: location,
				Links:    []store.LocationLink{},
			})
			return
		}

		links, err := deps.Store.ListLinks(r.Context(), locationID)
		if err != nil {
			logx.Error(err, "failed to list location links", "location_id", locationID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, LocationResponse{Location: location, Links: links})
	}
}
