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
	"encoding/hex"

	"github.com/blinklabs-io/govern/database/types"
	"golang.org/x/crypto/blake2b"
)

// ContractAddressPrefix marks addresses of deployed contracts
const ContractAddressPrefix = "C"

// ContractAddress derives the deterministic address of a contract deployed
// by deployer from codeHash and salt
func ContractAddress(
	deployer types.Address,
	codeHash string,
	salt []byte,
) types.Address {
	h, _ := blake2b.New256(nil)
	// Length prefixes keep the concatenation unambiguous
	for _, part := range [][]byte{[]byte(deployer), []byte(codeHash), salt} {
		h.Write([]byte{byte(len(part) >> 8), byte(len(part))})
		h.Write(part)
	}
	return types.Address(
		ContractAddressPrefix + hex.EncodeToString(h.Sum(nil)),
	)
}
