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
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/api"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type proposalFile struct {
	Author       string                `yaml:"author"`
	Deadline     uint64                `yaml:"deadline"`
	Instructions []proposalInstruction `yaml:"instructions"`
}

type proposalInstruction struct {
	Contract string `yaml:"contract"`
	Function string `yaml:"function"`
	Args     []any  `yaml:"args"`
}

func loadProposalFile(path string) (*proposalFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading proposal file: %w", err)
	}
	var ret proposalFile
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, fmt.Errorf("error parsing proposal file: %w", err)
	}
	return &ret, nil
}

func (f *proposalFile) params() governance.ProposalParams {
	ret := governance.ProposalParams{
		Deadline:     f.Deadline,
		Instructions: make([]proposal.Instruction, 0, len(f.Instructions)),
	}
	for _, instr := range f.Instructions {
		ret.Instructions = append(ret.Instructions, proposal.Instruction{
			Contract: types.Address(instr.Contract),
			Function: instr.Function,
			Args:     instr.Args,
		})
	}
	return ret
}

func parseProposalID(arg string) (uint32, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id: %s", arg)
	}
	return uint32(id), nil
}

func proposeCommand() *cobra.Command {
	var file, author string
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal from a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := loadProposalFile(file)
			if err != nil {
				return err
			}
			if author != "" {
				def.Author = author
			}
			return withNode(cmd, func(n *govern.Node) error {
				id, err := n.State().CreateProposal(
					cmd.Context(),
					types.Address(def.Author),
					def.params(),
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.CreateProposalResponse{ID: id})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the proposal definition (YAML)")
	cmd.Flags().StringVar(&author, "author", "", "override the proposal author")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func proposalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proposals",
		Short: "List proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *govern.Node) error {
				rows, err := n.State().ListProposals(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewProposalListItems(rows))
			})
		},
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <proposal-id>",
		Short: "Show a proposal and its lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *govern.Node) error {
				prop, err := n.State().GetProposal(cmd.Context(), id)
				if err != nil {
					return err
				}
				status, err := n.State().Status(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewProposalResponse(prop, status))
			})
		},
	}
}

func executeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Execute a passed proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *govern.Node) error {
				results, err := n.State().ExecuteWithResults(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.ExecuteResponse{
					Executed: true,
					Results:  results,
				})
			})
		},
	}
}

func restoreCommand() *cobra.Command {
	var proposalID int64
	var restoreCore bool
	var contract string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore archived governance or contract state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := 0
			if proposalID >= 0 {
				selected++
			}
			if restoreCore {
				selected++
			}
			if contract != "" {
				selected++
			}
			if selected != 1 {
				return errors.New("exactly one of --proposal, --core or --contract is required")
			}
			return withNode(cmd, func(n *govern.Node) error {
				var count int
				var err error
				switch {
				case restoreCore:
					count, err = n.State().RestoreCore(cmd.Context())
				case contract != "":
					count, err = n.State().RestoreContract(
						cmd.Context(),
						types.Address(contract),
					)
				default:
					if proposalID > int64(^uint32(0)) {
						return fmt.Errorf("invalid proposal id: %d", proposalID)
					}
					count, err = n.State().RestoreProposal(
						cmd.Context(),
						uint32(proposalID),
					)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd, api.RestoreResponse{Restored: count})
			})
		},
	}
	cmd.Flags().Int64Var(&proposalID, "proposal", -1, "restore a proposal and its tally")
	cmd.Flags().BoolVar(&restoreCore, "core", false, "restore the DAO configuration")
	cmd.Flags().StringVar(&contract, "contract", "", "restore the state of a contract")
	return cmd
}
