/*
This file covers location imagery. Architects (and above) attach images to
locations; files live in S3-compatible storage and move client-side through
pre-signed URLs, with a small direct-upload fallback proxied by the server.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/1o0n1/structure/internal/app/storage"
	"github.com/1o0n1/structure/internal/app/store"
	"github.com/1o0n1/structure/internal/pkg/auth/jwt"
	"github.com/1o0n1/structure/internal/pkg/errs"
	"github.com/1o0n1/structure/internal/pkg/logx"
	"github.com/1o0n1/structure/internal/pkg/req"
	"github.com/1o0n1/structure/internal/pkg/resp"
)

// requireArchitect checks the caller's role and resolves the location in the URL.
// It responds with the appropriate error and returns false when the request should
// not proceed.
func requireArchitect(deps *AppDeps, w http.ResponseWriter, r *http.Request) (store.Location, bool) {
	claims := jwt.GetPayloadFromContext(r)

	if !store.RoleAtLeast(claims.Role, store.RoleArchitect) {
		resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
		return store.Location{}, false
	}

	locationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return store.Location{}, false
	}

	location, err := deps.Store.GetLocation(r.Context(), locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			resp.RespondError(w, r, errs.NewError(errs.ErrLocationNotFound))
			return store.Location{}, false
		}
		logx.Error(err, "failed to load location for imagery", "location_id", locationID.String())
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return store.Location{}, false
	}

	return location, true
}

type PresignImageInput struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// HandlePresignLocationImage mints a pre-signed upload URL for a location image and
// records the key the client will upload to.
func HandlePresignLocationImage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location, ok := requireArchitect(deps, w, r)
		if !ok {
			return
		}

		var input PresignImageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FileSize <= 0 || input.FileSize > storage.MaxImageSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := storage.ValidateImageType(input.FileName, input.MimeType); err != nil {
			logx.Warn("rejected location image presign", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		key := storage.LocationImageKey(location.ID, input.FileName)

		uploadURL, err := deps.StorageService.PresignUpload(
			r.Context(), key, input.MimeType, input.FileSize, storage.UploadURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		if err := deps.Store.SetLocationImage(r.Context(), location.ID, key); err != nil {
			logx.Error(err, "failed to record location image key", "location_id", location.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"upload_url": uploadURL,
			"key":        key,
		})
	}
}

// HandleUploadLocationImage streams a small image through the server into storage,
// for clients that cannot do the presign round trip.
func HandleUploadLocationImage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location, ok := requireArchitect(deps, w, r)
		if !ok {
			return
		}

		mimeType := r.Header.Get("Content-Type")
		fileName := r.URL.Query().Get("file_name")

		if err := storage.ValidateImageType(fileName, mimeType); err != nil {
			logx.Warn("rejected direct location image upload", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		key := storage.LocationImageKey(location.ID, fileName)
		body := http.MaxBytesReader(w, r.Body, storage.MaxImageSize)

		if err := deps.StorageService.Upload(r.Context(), key, mimeType, body); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		if err := deps.Store.SetLocationImage(r.Context(), location.ID, key); err != nil {
			logx.Error(err, "failed to record location image key", "location_id", location.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"key": key})
	}
}

// HandleGetLocationImage resolves a location's image to a fetchable URL: a
// pre-signed download link for stored keys, or the recorded URL verbatim for
// external/static references.
func HandleGetLocationImage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
			logx.Error(err, "failed to load location for image read", "location_id", locationID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if location.ImageURL == nil || *location.ImageURL == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrLocationNotFound))
			return
		}

		if !storage.IsLocationKey(*location.ImageURL) {
			resp.RespondSuccess(w, r, map[string]any{"download_url": *location.ImageURL})
			return
		}

		downloadURL, err := deps.StorageService.PresignDownload(
			r.Context(), *location.ImageURL, storage.DownloadURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"download_url": downloadURL})
	}
}
