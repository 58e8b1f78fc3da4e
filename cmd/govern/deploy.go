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
	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/host"
	"github.com/spf13/cobra"
)

func deployCommand() *cobra.Command {
	var code, salt, deployer string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy registered contract code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *govern.Node) error {
				ctx := host.WithInvoker(cmd.Context(), types.Address(deployer))
				addr, err := n.Host().Deploy(ctx, code, []byte(salt))
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"contract": string(addr),
					"code":     code,
				})
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", host.EchoCodeHash, "registered code to deploy")
	cmd.Flags().StringVar(&salt, "salt", "", "salt for the contract address")
	cmd.Flags().StringVar(&deployer, "deployer", "", "deploying account")
	return cmd
}
