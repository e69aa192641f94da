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
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func testSecret(seed byte) [32]byte {
	var s [32]byte
	for i := range s {
		s[i] = seed
	}
	return s
}

func signedToken(t *testing.T, secret [32]byte, issuedAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": issuedAt.Unix(),
	})
	signed, err := token.SignedString(secret[:])
	require.NoError(t, err)
	return signed
}

// A token signed with the shared secret and issued within the clock-skew
// window is accepted.
func TestAuthenticatorAcceptsFreshToken(t *testing.T) {
	secret := testSecret(0x01)
	auth := NewAuthenticator(secret)

	require.NoError(t, auth.Authenticate(signedToken(t, secret, time.Now())))
}

// S9: a token whose iat claim falls outside the 60 second clock-skew window
// is rejected, even though it's correctly signed.
func TestAuthenticatorRejectsStaleToken(t *testing.T) {
	secret := testSecret(0x01)
	auth := NewAuthenticator(secret)

	stale := signedToken(t, secret, time.Now().Add(-5*time.Minute))
	require.ErrorIs(t, auth.Authenticate(stale), ErrIssuedAtOutOfRange)
}

// S9: a token signed with a different secret than the one the authenticator
// was built with is rejected regardless of its claims.
func TestAuthenticatorRejectsForgedToken(t *testing.T) {
	secret := testSecret(0x01)
	wrongSecret := testSecret(0x02)
	auth := NewAuthenticator(secret)

	forged := signedToken(t, wrongSecret, time.Now())
	require.Error(t, auth.Authenticate(forged))
}

// A token missing the iat claim entirely is rejected.
func TestAuthenticatorRejectsMissingIssuedAt(t *testing.T) {
	secret := testSecret(0x01)
	auth := NewAuthenticator(secret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	signed, err := token.SignedString(secret[:])
	require.NoError(t, err)

	require.ErrorIs(t, auth.Authenticate(signed), ErrMissingIssuedAt)
}
