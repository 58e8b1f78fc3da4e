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

package api

import (
	"context"

	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/blinklabs-io/govern/tally"
)

// GovernanceNode is the interface the API server uses to reach the
// governance engine. *governance.State implements it.
type GovernanceNode interface {
	Core(ctx context.Context) (*core.CoreState, error)
	ListProposals(ctx context.Context) ([]*models.GovernanceProposal, error)
	GetProposal(ctx context.Context, id uint32) (*proposal.Proposal, error)
	Status(ctx context.Context, id uint32) (governance.Status, error)
	GetVotes(ctx context.Context, id uint32) (tally.VotesCount, error)
	HaveVoted(ctx context.Context, id uint32, voter types.Address) (bool, error)
	VoteHistory(ctx context.Context, id uint32) ([]*models.GovernanceVote, error)
	CreateProposal(
		ctx context.Context,
		author types.Address,
		params governance.ProposalParams,
	) (uint32, error)
	Vote(ctx context.Context, params governance.VoteParams) error
	ExecuteWithResults(ctx context.Context, id uint32) ([]any, error)
	RestoreProposal(ctx context.Context, id uint32) (int, error)
}

var _ GovernanceNode = (*governance.State)(nil)
