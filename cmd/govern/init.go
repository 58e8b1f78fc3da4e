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
	"fmt"
	"os"

	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/api"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/governance"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// initFile is the YAML document accepted by the init command. Amounts are
// decimal strings so they may exceed 64 bits.
type initFile struct {
	TokenName           string            `yaml:"tokenName"`
	TokenSymbol         string            `yaml:"tokenSymbol"`
	TokenSalt           string            `yaml:"tokenSalt"`
	Quorum              string            `yaml:"quorum"`
	MinProposalDuration uint64            `yaml:"minProposalDuration"`
	MinVotePower        uint32            `yaml:"minVotePower"`
	ProposalPower       uint32            `yaml:"proposalPower"`
	Shareholders        map[string]string `yaml:"shareholders"`
}

func (f *initFile) params() (governance.InitParams, error) {
	ret := governance.InitParams{
		TokenName:           f.TokenName,
		TokenSymbol:         f.TokenSymbol,
		MinProposalDuration: f.MinProposalDuration,
		MinVotePower:        f.MinVotePower,
		ProposalPower:       f.ProposalPower,
		Shareholders:        make(map[types.Address]types.Amount, len(f.Shareholders)),
	}
	if f.TokenSalt != "" {
		ret.TokenSalt = []byte(f.TokenSalt)
	}
	quorum, err := types.AmountFromAny(f.Quorum)
	if err != nil {
		return ret, fmt.Errorf("invalid quorum: %w", err)
	}
	ret.Quorum = quorum
	for holder, tmp := range f.Shareholders {
		amount, err := types.AmountFromAny(tmp)
		if err != nil {
			return ret, fmt.Errorf("invalid balance for %s: %w", holder, err)
		}
		ret.Shareholders[types.Address(holder)] = amount
	}
	return ret, nil
}

func loadInitFile(path string) (governance.InitParams, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return governance.InitParams{}, fmt.Errorf("error reading init file: %w", err)
	}
	var tmp initFile
	if err := yaml.Unmarshal(buf, &tmp); err != nil {
		return governance.InitParams{}, fmt.Errorf("error parsing init file: %w", err)
	}
	return tmp.params()
}

func initCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Deploy the governance token and store the DAO configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := loadInitFile(file)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *govern.Node) error {
				if _, err := n.State().Initialize(cmd.Context(), params); err != nil {
					return err
				}
				state, err := n.State().Core(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewDaoResponse(state))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the DAO definition (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func daoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dao",
		Short: "Show the DAO configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *govern.Node) error {
				state, err := n.State().Core(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewDaoResponse(state))
			})
		},
	}
}
