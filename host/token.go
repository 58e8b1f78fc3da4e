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
	"errors"
	"fmt"

	"github.com/blinklabs-io/govern/database/types"
)

const TokenCodeHash = "token"

const (
	TokenFnInitialize = "initialize"
	TokenFnSetAuth    = "set_auth"
	TokenFnMint       = "mint"
	TokenFnBalance    = "balance"
	TokenFnTransfer   = "transfer"
	TokenFnAuthorized = "authorized"
	TokenFnName       = "name"
	TokenFnSymbol     = "symbol"
	TokenFnDecimals   = "decimals"
)

var (
	ErrTokenInitialized    = errors.New("token already initialized")
	ErrTokenNotInitialized = errors.New("token not initialized")
	ErrNotAuthorized       = errors.New("account not authorized")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("negative amount")
)

const (
	tokenKeyAdmin    = "admin"
	tokenKeyDecimals = "decimals"
	tokenKeyName     = "name"
	tokenKeySymbol   = "symbol"
)

func tokenBalanceKey(id types.Address) string {
	return "balance/" + string(id)
}

func tokenAuthKey(id types.Address) string {
	return "auth/" + string(id)
}

// TokenCode is a minimal administered token: an admin authorizes holders
// and mints to them, and authorized holders transfer between each other
type TokenCode struct{}

func (TokenCode) Call(cc *CallContext, function string, args []any) (any, error) {
	switch function {
	case TokenFnInitialize:
		return nil, tokenInitialize(cc, args)
	case TokenFnSetAuth:
		return nil, tokenSetAuth(cc, args)
	case TokenFnMint:
		return nil, tokenMint(cc, args)
	case TokenFnBalance:
		if err := checkArgCount(args, 1); err != nil {
			return nil, err
		}
		id, err := AddressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return tokenBalance(cc, id)
	case TokenFnTransfer:
		return nil, tokenTransfer(cc, args)
	case TokenFnAuthorized:
		if err := checkArgCount(args, 1); err != nil {
			return nil, err
		}
		id, err := AddressArg(args, 0)
		if err != nil {
			return nil, err
		}
		return tokenAuthorized(cc, id)
	case TokenFnName, TokenFnSymbol:
		var ret string
		if _, err := cc.Get(function, &ret); err != nil {
			return nil, err
		}
		return ret, nil
	case TokenFnDecimals:
		var ret uint32
		if _, err := cc.Get(tokenKeyDecimals, &ret); err != nil {
			return nil, err
		}
		return ret, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
}

func tokenInitialize(cc *CallContext, args []any) error {
	if err := checkArgCount(args, 4); err != nil {
		return err
	}
	admin, err := AddressArg(args, 0)
	if err != nil {
		return err
	}
	decimals, err := Uint32Arg(args, 1)
	if err != nil {
		return err
	}
	name, err := StringArg(args, 2)
	if err != nil {
		return err
	}
	symbol, err := StringArg(args, 3)
	if err != nil {
		return err
	}
	var existing types.Address
	ok, err := cc.Get(tokenKeyAdmin, &existing)
	if err != nil {
		return err
	}
	if ok {
		return ErrTokenInitialized
	}
	for key, val := range map[string]any{
		tokenKeyAdmin:    admin,
		tokenKeyDecimals: decimals,
		tokenKeyName:     name,
		tokenKeySymbol:   symbol,
	} {
		if err := cc.Put(key, val); err != nil {
			return err
		}
	}
	return nil
}

func requireAdmin(cc *CallContext) error {
	var admin types.Address
	ok, err := cc.Get(tokenKeyAdmin, &admin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotInitialized
	}
	if cc.Invoker != admin {
		return fmt.Errorf("%w: %s is not the token admin", ErrUnauthorized, cc.Invoker)
	}
	return nil
}

func tokenSetAuth(cc *CallContext, args []any) error {
	if err := checkArgCount(args, 2); err != nil {
		return err
	}
	id, err := AddressArg(args, 0)
	if err != nil {
		return err
	}
	authorize, err := BoolArg(args, 1)
	if err != nil {
		return err
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}
	return cc.Put(tokenAuthKey(id), authorize)
}

func tokenAuthorized(cc *CallContext, id types.Address) (bool, error) {
	var ret bool
	if _, err := cc.Get(tokenAuthKey(id), &ret); err != nil {
		return false, err
	}
	return ret, nil
}

func tokenBalance(cc *CallContext, id types.Address) (types.Amount, error) {
	var ret types.Amount
	if _, err := cc.Get(tokenBalanceKey(id), &ret); err != nil {
		return types.Amount{}, err
	}
	return ret, nil
}

func tokenCredit(cc *CallContext, id types.Address, amount types.Amount) error {
	authorized, err := tokenAuthorized(cc, id)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, id)
	}
	balance, err := tokenBalance(cc, id)
	if err != nil {
		return err
	}
	balance, err = balance.Add(amount)
	if err != nil {
		return err
	}
	return cc.Put(tokenBalanceKey(id), balance)
}

func tokenMint(cc *CallContext, args []any) error {
	if err := checkArgCount(args, 2); err != nil {
		return err
	}
	to, err := AddressArg(args, 0)
	if err != nil {
		return err
	}
	amount, err := AmountArg(args, 1)
	if err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}
	return tokenCredit(cc, to, amount)
}

func tokenTransfer(cc *CallContext, args []any) error {
	if err := checkArgCount(args, 3); err != nil {
		return err
	}
	from, err := AddressArg(args, 0)
	if err != nil {
		return err
	}
	to, err := AddressArg(args, 1)
	if err != nil {
		return err
	}
	amount, err := AmountArg(args, 2)
	if err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if cc.Invoker != from {
		return fmt.Errorf("%w: %s cannot spend from %s", ErrUnauthorized, cc.Invoker, from)
	}
	authorized, err := tokenAuthorized(cc, from)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, from)
	}
	balance, err := tokenBalance(cc, from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	balance, err = balance.Sub(amount)
	if err != nil {
		return err
	}
	if err := cc.Put(tokenBalanceKey(from), balance); err != nil {
		return err
	}
	return tokenCredit(cc, to, amount)
}
