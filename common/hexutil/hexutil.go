// Copyright 2017 The go-ethereum Authors
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

// Package hexutil implements the JSON-over-hex encodings the Engine API uses
// for quantity and byte-array fields ("0x"-prefixed hex strings).
package hexutil

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
)

// Uint64 marshals/unmarshals a uint64 as a 0x-prefixed hex quantity.
type Uint64 uint64

func (u Uint64) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", uint64(u))), nil
}

func (u *Uint64) UnmarshalText(input []byte) error {
	v, err := strconv.ParseUint(trim0x(string(input)), 16, 64)
	if err != nil {
		return err
	}
	*u = Uint64(v)
	return nil
}

// Big marshals/unmarshals a *big.Int as a 0x-prefixed hex quantity.
type Big big.Int

func (b *Big) MarshalText() ([]byte, error) {
	if b == nil {
		return []byte("0x0"), nil
	}
	return []byte("0x" + (*big.Int)(b).Text(16)), nil
}

func (b *Big) UnmarshalText(input []byte) error {
	v, ok := new(big.Int).SetString(trim0x(string(input)), 16)
	if !ok {
		return fmt.Errorf("invalid hex big integer: %q", input)
	}
	*b = Big(*v)
	return nil
}

func (b *Big) ToInt() *big.Int {
	if b == nil {
		return nil
	}
	return (*big.Int)(b)
}

// Bytes marshals/unmarshals a byte slice as a 0x-prefixed hex string.
type Bytes []byte

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(b)), nil
}

func (b *Bytes) UnmarshalText(input []byte) error {
	s := string(input)
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

func trim0x(s string) string {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if s == "" {
		s = "0"
	}
	return s
}
