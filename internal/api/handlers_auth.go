// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/logging"
	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/validation"
)

const invalidCredentialsMsg = "Invalid username or password"

// dummyHash is a well-formed hash of no real password. Comparing against it
// keeps the unknown-username path as slow as a wrong-password one.
const dummyHash = "pbkdf2_sha256$120000$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login handles POST /api/v1/auth/login. Unknown usernames, wrong
// passwords, and deactivated accounts all produce the same 401 so callers
// cannot tell which accounts exist.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ip := loginClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		metrics.RecordLoginAttempt("rate_limited")
		rw.TooManyRequests("Too many login attempts, try again later")
		return
	}

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			auth.VerifyPassword(req.Password, dummyHash)
			metrics.RecordLoginAttempt("invalid_credentials")
			rw.Unauthorized(invalidCredentialsMsg)
			return
		}
		rw.DatabaseError(err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		metrics.RecordLoginAttempt("invalid_credentials")
		rw.Unauthorized(invalidCredentialsMsg)
		return
	}

	if !user.IsActive {
		metrics.RecordLoginAttempt("inactive")
		rw.Unauthorized(invalidCredentialsMsg)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to issue token")
		rw.InternalError("Failed to issue token")
		return
	}

	metrics.RecordLoginAttempt("success")
	logging.Ctx(r.Context()).Info().
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("Login succeeded")

	rw.Success(models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// loginClientIP resolves the client address used as the login rate limit
// key: the first X-Forwarded-For hop when present, else the socket peer.
func loginClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
