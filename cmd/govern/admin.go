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
	"encoding/hex"

	"github.com/blinklabs-io/govern"
	"github.com/spf13/cobra"
)

func setMinVotePowerCommand() *cobra.Command {
	var power uint32
	cmd := &cobra.Command{
		Use:   "set-min-vote-power",
		Short: "Change the minimum declared power required to vote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *govern.Node) error {
				if err := n.State().SetMinVotePower(cmd.Context(), power); err != nil {
					return err
				}
				return printJSON(cmd, map[string]uint32{"min_vote_power": power})
			})
		},
	}
	cmd.Flags().Uint32Var(&power, "power", 0, "new minimum vote power")
	_ = cmd.MarkFlagRequired("power")
	return cmd
}

type sweptEntry struct {
	Key       string `json:"key"`
	Scope     string `json:"scope"`
	LiveUntil uint64 `json:"live_until"`
}

func sweepCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Move lapsed entries into the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *govern.Node) error {
				ret := []sweptEntry{}
				for {
					archived, err := n.State().Sweep(cmd.Context(), limit)
					if err != nil {
						return err
					}
					for _, entry := range archived {
						ret = append(ret, sweptEntry{
							Key:       hex.EncodeToString(entry.Key),
							Scope:     entry.Scope,
							LiveUntil: entry.LiveUntil,
						})
					}
					if len(archived) == 0 || limit > 0 {
						break
					}
				}
				return printJSON(cmd, ret)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "archive at most this many entries (0 sweeps everything)")
	return cmd
}
