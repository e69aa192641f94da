// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package catalyst

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// jwtClockSkew bounds how far a token's "iat" claim may drift from the
// authenticator's own clock, matching the window the Engine API spec
// mandates for the CL/EL JWT handshake.
const jwtClockSkew = 60 * time.Second

var (
	// ErrMissingIssuedAt is returned when a presented token carries no "iat"
	// claim at all; the Engine API requires one on every request.
	ErrMissingIssuedAt = errors.New("catalyst: token is missing iat claim")
	// ErrIssuedAtOutOfRange is returned when "iat" lies outside the allowed
	// clock-skew window around the authenticator's own time.
	ErrIssuedAtOutOfRange = errors.New("catalyst: token iat claim out of allowed range")
)

// Authenticator validates the JWT bearer tokens a CL peer must attach to
// every Engine API call. It is the one piece of the RPC transport this
// package takes a position on: everything else about framing a JSON-RPC
// request is the transport's job, but the auth handshake is specified by the
// Engine API itself and is cheap to verify once here rather than in every
// transport implementation.
type Authenticator struct {
	secret [32]byte
}

// NewAuthenticator builds an Authenticator around a 32-byte HMAC secret, the
// same shared secret the CL is configured with out of band.
func NewAuthenticator(secret [32]byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Authenticate verifies tokenString is a validly-signed HS256 JWT whose
// "iat" claim falls within jwtClockSkew of now. It returns nil on success.
func (a *Authenticator) Authenticate(tokenString string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret[:], nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return fmt.Errorf("catalyst: invalid token: %w", err)
	}

	iat, ok := claims["iat"]
	if !ok {
		return ErrMissingIssuedAt
	}
	issuedAt, ok := iat.(float64)
	if !ok {
		return ErrMissingIssuedAt
	}
	delta := time.Since(time.Unix(int64(issuedAt), 0))
	if delta < 0 {
		delta = -delta
	}
	if delta > jwtClockSkew {
		return ErrIssuedAtOutOfRange
	}
	return nil
}
