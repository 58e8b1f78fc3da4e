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

package types

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Blob key prefixes. Every leased entry lives under one of these.
const (
	CoreStateKeyPrefix       = "c"
	ProposalCounterKeyPrefix = "n"
	ProposalKeyPrefix        = "p"
	VotesCountKeyPrefix      = "v"
	VotedKeyPrefix           = "r"
	ExecutedKeyPrefix        = "x"
	ContractStateKeyPrefix   = "h"
)

const (
	ScopeCore         = "core"
	scopeProposalBase = "proposal/"
	scopeContractBase = "contract/"
)

// LeasedKeyPrefixes lists the prefixes whose values are lease envelopes
var LeasedKeyPrefixes = []string{
	CoreStateKeyPrefix,
	ProposalCounterKeyPrefix,
	ProposalKeyPrefix,
	VotesCountKeyPrefix,
	VotedKeyPrefix,
	ExecutedKeyPrefix,
	ContractStateKeyPrefix,
}

func uint32ToBytes(input uint32) []byte {
	ret := make([]byte, 4)
	binary.BigEndian.PutUint32(ret, input)
	return ret
}

func CoreStateKey() []byte {
	return []byte(CoreStateKeyPrefix)
}

func ProposalCounterKey() []byte {
	return []byte(ProposalCounterKeyPrefix)
}

func ProposalKey(id uint32) []byte {
	return slices.Concat([]byte(ProposalKeyPrefix), uint32ToBytes(id))
}

func VotesCountKey(id uint32) []byte {
	return slices.Concat([]byte(VotesCountKeyPrefix), uint32ToBytes(id))
}

// VotedKeyPrefixFor returns the prefix shared by all vote records of a proposal
func VotedKeyPrefixFor(id uint32) []byte {
	return slices.Concat([]byte(VotedKeyPrefix), uint32ToBytes(id))
}

func VotedKey(id uint32, voter Address) []byte {
	return slices.Concat(VotedKeyPrefixFor(id), []byte(voter))
}

func ExecutedKey(id uint32) []byte {
	return slices.Concat([]byte(ExecutedKeyPrefix), uint32ToBytes(id))
}

// ContractStateKey addresses a single value owned by a hosted contract
func ContractStateKey(contract Address, key string) []byte {
	return slices.Concat(
		[]byte(ContractStateKeyPrefix),
		[]byte(contract),
		[]byte{'/'},
		[]byte(key),
	)
}

// ProposalScope returns the archive scope shared by all entries of a proposal
func ProposalScope(id uint32) string {
	return fmt.Sprintf("%s%d", scopeProposalBase, id)
}

// ContractScope returns the archive scope of a hosted contract's state
func ContractScope(contract Address) string {
	return scopeContractBase + string(contract)
}

// KeyScope maps a blob key to the archive scope it is restored with. It
// returns an empty string for keys that do not carry a lease.
func KeyScope(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	switch string(key[:1]) {
	case CoreStateKeyPrefix, ProposalCounterKeyPrefix:
		if len(key) == 1 {
			return ScopeCore
		}
	case ProposalKeyPrefix, VotesCountKeyPrefix, VotedKeyPrefix, ExecutedKeyPrefix:
		if len(key) >= 5 {
			return ProposalScope(binary.BigEndian.Uint32(key[1:5]))
		}
	case ContractStateKeyPrefix:
		if idx := slices.Index(key[1:], '/'); idx > 0 {
			return ContractScope(Address(key[1 : idx+1]))
		}
	}
	return ""
}

// ScopePrefixes returns the blob key prefixes covering every entry of a
// scope. Core scope prefixes are exact keys.
func ScopePrefixes(scope string) ([][]byte, error) {
	switch {
	case scope == ScopeCore:
		return [][]byte{CoreStateKey(), ProposalCounterKey()}, nil
	case strings.HasPrefix(scope, scopeProposalBase):
		id, err := strconv.ParseUint(
			strings.TrimPrefix(scope, scopeProposalBase),
			10,
			32,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid scope %q: %w", scope, err)
		}
		return [][]byte{
			ProposalKey(uint32(id)),
			VotesCountKey(uint32(id)),
			VotedKeyPrefixFor(uint32(id)),
			ExecutedKey(uint32(id)),
		}, nil
	case strings.HasPrefix(scope, scopeContractBase):
		contract := strings.TrimPrefix(scope, scopeContractBase)
		if contract == "" {
			return nil, fmt.Errorf("invalid scope %q", scope)
		}
		return [][]byte{
			slices.Concat(
				[]byte(ContractStateKeyPrefix),
				[]byte(contract),
				[]byte{'/'},
			),
		}, nil
	}
	return nil, fmt.Errorf("invalid scope %q", scope)
}
