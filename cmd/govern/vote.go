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

	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/api"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/tally"
	"github.com/spf13/cobra"
)

func voteCommand() *cobra.Command {
	var voter, choice, tokens, tokenContract string
	var power uint32
	cmd := &cobra.Command{
		Use:   "vote <proposal-id>",
		Short: "Cast a weighted vote on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			parsedChoice, err := tally.ParseChoice(choice)
			if err != nil {
				return err
			}
			weight, err := types.AmountFromAny(tokens)
			if err != nil {
				return fmt.Errorf("invalid tokens: %w", err)
			}
			return withNode(cmd, func(n *govern.Node) error {
				err := n.State().Vote(cmd.Context(), governance.VoteParams{
					Voter:         types.Address(voter),
					Tokens:        weight,
					ProposalID:    id,
					Power:         power,
					Choice:        uint32(parsedChoice),
					TokenContract: types.Address(tokenContract),
				})
				if err != nil {
					return err
				}
				counts, err := n.State().GetVotes(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewVotesResponse(counts))
			})
		},
	}
	cmd.Flags().StringVar(&voter, "voter", "", "voting shareholder")
	cmd.Flags().StringVar(&choice, "choice", "", "against, for or abstain")
	cmd.Flags().StringVar(&tokens, "tokens", "0", "token weight to vote with")
	cmd.Flags().Uint32Var(&power, "power", 1, "declared vote power")
	cmd.Flags().StringVar(&tokenContract, "token-contract", "", "governance token contract")
	_ = cmd.MarkFlagRequired("voter")
	_ = cmd.MarkFlagRequired("choice")
	return cmd
}

func votesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "votes <proposal-id>",
		Short: "Show the tally of a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *govern.Node) error {
				counts, err := n.State().GetVotes(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewVotesResponse(counts))
			})
		},
	}
}

func votedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voted <proposal-id> <address>",
		Short: "Check whether an address has voted on a proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			voter := types.Address(args[1])
			return withNode(cmd, func(n *govern.Node) error {
				voted, err := n.State().HaveVoted(cmd.Context(), id, voter)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.VoterResponse{
					ProposalID: id,
					Voter:      string(voter),
					Voted:      voted,
				})
			})
		},
	}
}

func historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <proposal-id>",
		Short: "List the recorded votes of a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *govern.Node) error {
				votes, err := n.State().VoteHistory(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewVoteHistoryItems(votes))
			})
		},
	}
}
