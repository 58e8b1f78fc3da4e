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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/govern/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadInitFile(t *testing.T) {
	path := writeFile(t, "dao.yaml", `
tokenName: Gov
tokenSymbol: GOV
quorum: "170141183460469231731687303715884105727"
minProposalDuration: 3600
minVotePower: 2
shareholders:
  GA: "100"
  GB: "250"
`)
	params, err := loadInitFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GOV", params.TokenSymbol)
	assert.Equal(t, uint64(3600), params.MinProposalDuration)
	assert.Equal(t, uint32(2), params.MinVotePower)
	assert.Nil(t, params.TokenSalt)
	assert.Equal(t, types.MaxInt128.String(), params.Quorum.String())
	require.Len(t, params.Shareholders, 2)
	assert.Equal(t, "250", params.Shareholders["GB"].String())

	_, err = loadInitFile(writeFile(t, "bad.yaml", "quorum: lots\n"))
	require.Error(t, err)
	_, err = loadInitFile(writeFile(t, "bad.yaml", "quorum: \"1\"\nshareholders:\n  GA: x\n"))
	require.Error(t, err)
}

func TestLoadProposalFile(t *testing.T) {
	path := writeFile(t, "proposal.yaml", `
author: GA
deadline: 5000
instructions:
  - contract: CECHO
    function: demo_exec
    args: ["hello"]
  - contract: CTOKEN
    function: mint
    args: [GB, 25]
`)
	def, err := loadProposalFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GA", def.Author)
	params := def.params()
	assert.Equal(t, uint64(5000), params.Deadline)
	require.Len(t, params.Instructions, 2)
	assert.Equal(t, types.Address("CTOKEN"), params.Instructions[1].Contract)
	assert.Equal(t, []any{"GB", 25}, params.Instructions[1].Args)
}

func TestParseProposalID(t *testing.T) {
	id, err := parseProposalID("7")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
	for _, bad := range []string{"-1", "x", "4294967296"} {
		_, err := parseProposalID(bad)
		assert.Error(t, err, bad)
	}
}
