// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/blinklabs-io/gouroboros/cbor"
)

var (
	// MaxInt128 is the largest token quantity that can be represented
	MaxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	// MinInt128 is the smallest token quantity that can be represented
	MinInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// ErrAmountOverflow is returned when a token quantity leaves the signed 128-bit range
var ErrAmountOverflow = errors.New("amount outside int128 range")

// Amount is an exact token-unit quantity constrained to the signed 128-bit
// range. The zero value is 0. Amounts are immutable: arithmetic returns a
// new value.
//
//nolint:recvcheck
type Amount struct {
	i *big.Int
}

func NewAmount(v int64) Amount {
	return Amount{i: big.NewInt(v)}
}

// NewAmountFromBig copies v into a new Amount
func NewAmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, nil
	}
	if v.Cmp(MaxInt128) > 0 || v.Cmp(MinInt128) < 0 {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{i: new(big.Int).Set(v)}, nil
}

// ParseAmount parses a base-10 integer string
func ParseAmount(s string) (Amount, error) {
	tmp, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", s)
	}
	return NewAmountFromBig(tmp)
}

// AmountFromAny converts a positional call argument into an Amount. It
// accepts the integer shapes produced by CBOR and JSON decoding.
func AmountFromAny(v any) (Amount, error) {
	switch tv := v.(type) {
	case Amount:
		return tv, nil
	case *Amount:
		if tv == nil {
			return Amount{}, nil
		}
		return *tv, nil
	case *big.Int:
		return NewAmountFromBig(tv)
	case big.Int:
		return NewAmountFromBig(&tv)
	case int:
		return NewAmount(int64(tv)), nil
	case int64:
		return NewAmount(tv), nil
	case int32:
		return NewAmount(int64(tv)), nil
	case uint32:
		return NewAmount(int64(tv)), nil
	case uint64:
		return NewAmountFromBig(new(big.Int).SetUint64(tv))
	case json.Number:
		return ParseAmount(tv.String())
	case string:
		return ParseAmount(tv)
	default:
		return Amount{}, fmt.Errorf("cannot convert %T to amount", v)
	}
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

// Big returns a copy of the underlying value
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(a.big())
}

func (a Amount) String() string {
	return a.big().String()
}

func (a Amount) Sign() int {
	return a.big().Sign()
}

func (a Amount) Cmp(b Amount) int {
	return a.big().Cmp(b.big())
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// Add returns a+b, or ErrAmountOverflow if the result leaves the int128 range
func (a Amount) Add(b Amount) (Amount, error) {
	return NewAmountFromBig(new(big.Int).Add(a.big(), b.big()))
}

// Sub returns a-b, or ErrAmountOverflow if the result leaves the int128 range
func (a Amount) Sub(b Amount) (Amount, error) {
	return NewAmountFromBig(new(big.Int).Sub(a.big(), b.big()))
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(val any) error {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	tmp, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

func (a Amount) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.String())
}

func (a *Amount) UnmarshalCBOR(data []byte) error {
	var s string
	if _, err := cbor.Decode(data, &s); err != nil {
		return err
	}
	tmp, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// MarshalJSON renders the amount as a decimal JSON string
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Accept bare JSON numbers as well
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = n.String()
	}
	tmp, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}
