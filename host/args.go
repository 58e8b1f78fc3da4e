// Copyright 2025 Blink Labs Software
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

package host

import (
	"fmt"

	"github.com/blinklabs-io/govern/database/types"
)

func checkArgCount(args []any, count int) error {
	if len(args) != count {
		return fmt.Errorf(
			"%w: expected %d, got %d",
			ErrInvalidArgs,
			count,
			len(args),
		)
	}
	return nil
}

// AddressArg converts a positional argument into an address
func AddressArg(args []any, idx int) (types.Address, error) {
	switch v := args[idx].(type) {
	case types.Address:
		return v, nil
	case string:
		return types.Address(v), nil
	default:
		return "", fmt.Errorf("%w: argument %d: expected address, got %T", ErrInvalidArgs, idx, v)
	}
}

// StringArg converts a positional argument into a string
func StringArg(args []any, idx int) (string, error) {
	switch v := args[idx].(type) {
	case string:
		return v, nil
	case types.Address:
		return string(v), nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: argument %d: expected string, got %T", ErrInvalidArgs, idx, v)
	}
}

// BoolArg converts a positional argument into a bool
func BoolArg(args []any, idx int) (bool, error) {
	v, ok := args[idx].(bool)
	if !ok {
		return false, fmt.Errorf("%w: argument %d: expected bool, got %T", ErrInvalidArgs, idx, args[idx])
	}
	return v, nil
}

// AmountArg converts a positional argument into a token amount
func AmountArg(args []any, idx int) (types.Amount, error) {
	ret, err := types.AmountFromAny(args[idx])
	if err != nil {
		return types.Amount{}, fmt.Errorf("%w: argument %d: %w", ErrInvalidArgs, idx, err)
	}
	return ret, nil
}

// Uint32Arg converts a positional argument into a uint32
func Uint32Arg(args []any, idx int) (uint32, error) {
	tmp, err := types.AmountFromAny(args[idx])
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d: %w", ErrInvalidArgs, idx, err)
	}
	big := tmp.Big()
	if big.Sign() < 0 || !big.IsUint64() || big.Uint64() > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: argument %d: out of range", ErrInvalidArgs, idx)
	}
	return uint32(big.Uint64()), nil
}
