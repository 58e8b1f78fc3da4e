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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/govern/database/types"
)

func TestAmountScanValue(t *testing.T) {
	testDefs := []struct {
		origValue     types.Amount
		expectedValue any
	}{
		{
			origValue:     types.NewAmount(123),
			expectedValue: "123",
		},
		{
			origValue:     types.NewAmount(-42),
			expectedValue: "-42",
		},
		{
			origValue:     types.Amount{},
			expectedValue: "0",
		},
	}
	for _, testDef := range testDefs {
		var tmpValuer driver.Valuer = testDef.origValue
		valueOut, err := tmpValuer.Value()
		require.NoError(t, err)
		assert.Equal(t, testDef.expectedValue, valueOut)
		tmpAmount := &types.Amount{}
		var tmpScanner sql.Scanner = tmpAmount
		require.NoError(t, tmpScanner.Scan(valueOut))
		assert.True(
			t,
			tmpAmount.Equal(testDef.origValue),
			"got %s, expected %s",
			tmpAmount,
			testDef.origValue,
		)
	}
}

func TestAmountRange(t *testing.T) {
	maxAmount, err := types.NewAmountFromBig(types.MaxInt128)
	require.NoError(t, err)
	_, err = maxAmount.Add(types.NewAmount(1))
	require.ErrorIs(t, err, types.ErrAmountOverflow)

	minAmount, err := types.NewAmountFromBig(types.MinInt128)
	require.NoError(t, err)
	_, err = minAmount.Sub(types.NewAmount(1))
	require.ErrorIs(t, err, types.ErrAmountOverflow)

	tooBig := new(big.Int).Add(types.MaxInt128, big.NewInt(1))
	_, err = types.ParseAmount(tooBig.String())
	require.ErrorIs(t, err, types.ErrAmountOverflow)

	_, err = types.ParseAmount("12abc")
	require.Error(t, err)
}

func TestAmountCbor(t *testing.T) {
	type wrapper struct {
		cbor.StructAsArray
		Value types.Amount
	}
	orig := wrapper{Value: types.NewAmount(1_000_000_000_000)}
	data, err := cbor.Encode(&orig)
	require.NoError(t, err)
	var decoded wrapper
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000", decoded.Value.String())
}

func TestAmountJson(t *testing.T) {
	var a types.Amount
	require.NoError(t, json.Unmarshal([]byte(`"170141183460469231731687303715884105727"`), &a))
	assert.Equal(t, types.MaxInt128.String(), a.String())
	require.NoError(t, json.Unmarshal([]byte(`60`), &a))
	assert.Equal(t, "60", a.String())
	out, err := json.Marshal(types.NewAmount(7))
	require.NoError(t, err)
	assert.JSONEq(t, `"7"`, string(out))
}

func TestAmountFromAny(t *testing.T) {
	testDefs := []struct {
		input    any
		expected string
	}{
		{input: 5, expected: "5"},
		{input: uint64(18), expected: "18"},
		{input: int64(-3), expected: "-3"},
		{input: big.NewInt(99), expected: "99"},
		{input: "100", expected: "100"},
		{input: json.Number("250"), expected: "250"},
	}
	for _, testDef := range testDefs {
		a, err := types.AmountFromAny(testDef.input)
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, a.String())
	}
	_, err := types.AmountFromAny(1.5)
	require.Error(t, err)
}

func TestKeyScope(t *testing.T) {
	assert.Equal(t, types.ScopeCore, types.KeyScope(types.CoreStateKey()))
	assert.Equal(t, types.ScopeCore, types.KeyScope(types.ProposalCounterKey()))
	assert.Equal(t, "proposal/7", types.KeyScope(types.ProposalKey(7)))
	assert.Equal(t, "proposal/7", types.KeyScope(types.VotesCountKey(7)))
	assert.Equal(t, "proposal/7", types.KeyScope(types.ExecutedKey(7)))
	assert.Equal(
		t,
		"proposal/7",
		types.KeyScope(types.VotedKey(7, types.Address("GABC"))),
	)
	assert.Equal(
		t,
		"contract/CTOKEN",
		types.KeyScope(types.ContractStateKey("CTOKEN", "balance/GABC")),
	)
	assert.Equal(t, "", types.KeyScope([]byte("_commit_timestamp")))
}

func TestScopePrefixes(t *testing.T) {
	prefixes, err := types.ScopePrefixes("proposal/3")
	require.NoError(t, err)
	require.Len(t, prefixes, 4)
	for _, prefix := range prefixes {
		assert.Equal(t, "proposal/3", types.KeyScope(prefix))
	}
	prefixes, err = types.ScopePrefixes(types.ScopeCore)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{types.CoreStateKey(), types.ProposalCounterKey()}, prefixes)
	prefixes, err = types.ScopePrefixes(types.ContractScope("CTOKEN"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("hCTOKEN/")}, prefixes)
	_, err = types.ScopePrefixes("proposal/abc")
	require.Error(t, err)
	_, err = types.ScopePrefixes("bogus")
	require.Error(t, err)
}
