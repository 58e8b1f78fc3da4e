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

// Package host provides the contract capabilities the governance engine
// calls out to: deploying contracts, invoking functions on them and
// querying token balances.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/govern/database/types"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrCodeNotFound     = errors.New("contract code not registered")
	ErrAlreadyDeployed  = errors.New("contract already deployed")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Host is the capability interface the governance engine consumes
type Host interface {
	// Deploy instantiates registered contract code at an address derived
	// from the invoker, the code hash and the salt
	Deploy(ctx context.Context, codeHash string, salt []byte) (types.Address, error)
	// Invoke calls a function on a deployed contract with positional arguments
	Invoke(ctx context.Context, contract types.Address, function string, args []any) (any, error)
	// QueryBalance returns the token balance of holder on a token contract
	QueryBalance(ctx context.Context, contract types.Address, holder types.Address) (types.Amount, error)
}

// CallError wraps any failure raised while calling into a contract
type CallError struct {
	Err      error
	Contract types.Address
	Function string
}

func (e *CallError) Error() string {
	return fmt.Sprintf(
		"call %s on contract %s: %s",
		e.Function,
		e.Contract,
		e.Err,
	)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

type invokerContextKey struct{}

// WithInvoker returns a copy of ctx identifying the account making contract
// calls
func WithInvoker(ctx context.Context, invoker types.Address) context.Context {
	return context.WithValue(ctx, invokerContextKey{}, invoker)
}

// InvokerFromContext returns the account making contract calls, or an empty
// address if none was set
func InvokerFromContext(ctx context.Context) types.Address {
	invoker, _ := ctx.Value(invokerContextKey{}).(types.Address)
	return invoker
}
