/*
This file contains the WebSocket upgrade handler. It authenticates the token passed
in the query string, resolves the player's current location, and runs the
connection's read/write loops against the presence registry.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/1o0n1/structure/internal/app/realtime"
	"github.com/1o0n1/structure/internal/pkg/auth/jwt"
	"github.com/1o0n1/structure/internal/pkg/errs"
	"github.com/1o0n1/structure/internal/pkg/limiter"
	"github.com/1o0n1/structure/internal/pkg/logx"
	"github.com/1o0n1/structure/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
//
// Authentication happens before the upgrade: a missing or invalid token rejects the
// handshake and never touches the registry. A failed location lookup is not fatal;
// the connection joins the "no location" sentinel room instead.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		claims, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			logx.Warn("WebSocket connection rejected: malformed subject", "sub", claims.Sub)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		locationID, err := deps.Store.GetCurrentLocation(r.Context(), userID)
		if err != nil {
			logx.Error(err, "Failed to resolve current location, using sentinel", "user_id", claims.Sub)
			locationID = realtime.NoLocation
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket client connected",
			"user_id", claims.Sub, "username", claims.Username, "location_id", locationID.String())

		occupant := realtime.NewOccupant(userID, claims.Username)
		client := realtime.NewClient(deps.Registry, conn, occupant)

		go client.WritePump()

		deps.Registry.Join(locationID, occupant)

		client.ReadPump()
	}
}
