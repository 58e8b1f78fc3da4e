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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const codeStateKey = "__code"

// Code is registered contract code. It is stateless: all contract state is
// read and written through the CallContext.
type Code interface {
	Call(cc *CallContext, function string, args []any) (any, error)
}

// CodeFunc adapts a function to the Code interface
type CodeFunc func(cc *CallContext, function string, args []any) (any, error)

func (f CodeFunc) Call(cc *CallContext, function string, args []any) (any, error) {
	return f(cc, function, args)
}

// CallContext is handed to contract code for the duration of one call
type CallContext struct {
	ctx      context.Context
	txn      *database.Txn
	Contract types.Address
	Invoker  types.Address
}

func (c *CallContext) Context() context.Context {
	return c.ctx
}

// Now returns the ledger time of the enclosing unit of work
func (c *CallContext) Now() uint64 {
	return c.txn.Now()
}

// Get loads a contract state value into dest. It reports false when the
// key was never written. Reads inside a writable call renew the lease.
func (c *CallContext) Get(key string, dest any) (bool, error) {
	stateKey := types.ContractStateKey(c.Contract, key)
	if err := c.txn.GetEntry(stateKey, dest); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	if c.txn.ReadWrite() {
		if _, err := c.txn.ExtendEntry(stateKey); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Put stores a contract state value
func (c *CallContext) Put(key string, value any) error {
	return c.txn.PutEntry(types.ContractStateKey(c.Contract, key), value)
}

// Registry is an in-process Host. Contract state lives in the governance
// database, and calls join the transaction carried by the context so a
// failed governance call discards every contract write it made.
type Registry struct {
	db           *database.Database
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *registryMetrics
	codes        map[string]Code
	mu           sync.RWMutex
}

type RegistryOptionFunc func(*Registry)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) RegistryOptionFunc {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) RegistryOptionFunc {
	return func(r *Registry) {
		r.promRegistry = registry
	}
}

// NewRegistry creates a Registry with the built-in token and echo code
// registered
func NewRegistry(db *database.Database, opts ...RegistryOptionFunc) *Registry {
	r := &Registry{
		db:    db,
		codes: make(map[string]Code),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r.metrics = newRegistryMetrics(r.promRegistry)
	r.Register(TokenCodeHash, TokenCode{})
	r.Register(EchoCodeHash, EchoCode{})
	return r
}

// Register makes code deployable under codeHash
func (r *Registry) Register(codeHash string, code Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[codeHash] = code
}

func (r *Registry) code(codeHash string) (Code, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.codes[codeHash]
	return code, ok
}

// withTxn runs fn in the transaction carried by ctx, or in a transaction of
// its own when there is none
func (r *Registry) withTxn(
	ctx context.Context,
	readWrite bool,
	fn func(*database.Txn) error,
) error {
	if txn, ok := database.TxnFromContext(ctx); ok {
		return fn(txn)
	}
	txn := r.db.Transaction(readWrite)
	if !readWrite {
		defer txn.Release()
		return fn(txn)
	}
	return txn.Do(fn)
}

// Deploy instantiates registered code at an address derived from the
// invoker carried by ctx, codeHash and salt
func (r *Registry) Deploy(
	ctx context.Context,
	codeHash string,
	salt []byte,
) (types.Address, error) {
	addr := ContractAddress(InvokerFromContext(ctx), codeHash, salt)
	err := r.withTxn(ctx, true, func(txn *database.Txn) error {
		if _, ok := r.code(codeHash); !ok {
			return fmt.Errorf("%w: %s", ErrCodeNotFound, codeHash)
		}
		codeKey := types.ContractStateKey(addr, codeStateKey)
		exists, err := txn.HasEntry(codeKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyDeployed
		}
		return txn.PutEntry(codeKey, codeHash)
	})
	r.metrics.observe("deploy", err)
	if err != nil {
		return "", &CallError{Contract: addr, Function: "deploy", Err: err}
	}
	r.logger.Debug(
		"deployed contract",
		"component", "host",
		"contract", addr,
		"code", codeHash,
	)
	return addr, nil
}

// Invoke calls function on a deployed contract
func (r *Registry) Invoke(
	ctx context.Context,
	contract types.Address,
	function string,
	args []any,
) (any, error) {
	var ret any
	err := r.withTxn(ctx, true, func(txn *database.Txn) error {
		var err error
		ret, err = r.invoke(ctx, txn, contract, function, args)
		return err
	})
	r.metrics.observe(function, err)
	if err != nil {
		var callErr *CallError
		if errors.As(err, &callErr) {
			return nil, err
		}
		return nil, &CallError{Contract: contract, Function: function, Err: err}
	}
	return ret, nil
}

func (r *Registry) invoke(
	ctx context.Context,
	txn *database.Txn,
	contract types.Address,
	function string,
	args []any,
) (any, error) {
	var codeHash string
	codeKey := types.ContractStateKey(contract, codeStateKey)
	if err := txn.GetEntry(codeKey, &codeHash); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	if txn.ReadWrite() {
		if _, err := txn.ExtendEntry(codeKey); err != nil {
			return nil, err
		}
	}
	code, ok := r.code(codeHash)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, codeHash)
	}
	cc := &CallContext{
		ctx:      ctx,
		txn:      txn,
		Contract: contract,
		Invoker:  InvokerFromContext(ctx),
	}
	return code.Call(cc, function, args)
}

// QueryBalance returns the balance of holder on a token contract
func (r *Registry) QueryBalance(
	ctx context.Context,
	contract types.Address,
	holder types.Address,
) (types.Amount, error) {
	var ret types.Amount
	err := r.withTxn(ctx, false, func(txn *database.Txn) error {
		tmp, err := r.invoke(ctx, txn, contract, TokenFnBalance, []any{holder})
		if err != nil {
			return err
		}
		ret, err = types.AmountFromAny(tmp)
		return err
	})
	r.metrics.observe(TokenFnBalance, err)
	if err != nil {
		return types.Amount{}, &CallError{Contract: contract, Function: TokenFnBalance, Err: err}
	}
	return ret, nil
}
