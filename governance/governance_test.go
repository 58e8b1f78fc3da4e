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

package governance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/host"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/blinklabs-io/govern/tally"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	holderA = types.Address("GA")
	holderB = types.Address("GB")
	holderC = types.Address("GC")
	outside = types.Address("GZ")
)

type testClock struct {
	mu  sync.Mutex
	now uint64
}

func (c *testClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type testEnv struct {
	state    *governance.State
	registry *host.Registry
	db       *database.Database
	bus      *event.EventBus
	clock    *testClock
	token    types.Address
}

type testEnvOptions struct {
	leaseLow         uint64
	leaseHigh        uint64
	membersOnly      bool
	minDuration      uint64
	skipInitialize   bool
	minVotePower     uint32
	quorum           int64
	shareholderFunds int64
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()
	clock := &testClock{now: 1000}
	db, err := database.New(&database.Config{
		Clock:              clock.Now,
		LeaseLowWatermark:  opts.leaseLow,
		LeaseHighWatermark: opts.leaseHigh,
	})
	require.NoError(t, err)
	promRegistry := prometheus.NewRegistry()
	bus := event.NewEventBus(promRegistry, nil)
	t.Cleanup(func() {
		bus.Stop()
		_ = db.Close()
	})
	registry := host.NewRegistry(db, host.WithPromRegistry(promRegistry))
	state, err := governance.NewState(governance.StateConfig{
		Database:                    db,
		Host:                        registry,
		EventBus:                    bus,
		PromRegistry:                promRegistry,
		ProposalCreatorsMembersOnly: opts.membersOnly,
	})
	require.NoError(t, err)
	env := &testEnv{
		state:    state,
		registry: registry,
		db:       db,
		bus:      bus,
		clock:    clock,
	}
	if opts.skipInitialize {
		return env
	}
	if opts.minVotePower == 0 {
		opts.minVotePower = 1
	}
	if opts.quorum == 0 {
		opts.quorum = 150
	}
	if opts.shareholderFunds == 0 {
		opts.shareholderFunds = 100
	}
	funds := types.NewAmount(opts.shareholderFunds)
	env.token, err = state.Initialize(
		context.Background(),
		governance.InitParams{
			TokenSalt:   []byte("gov-token"),
			TokenName:   "Governance",
			TokenSymbol: "GOV",
			Shareholders: map[types.Address]types.Amount{
				holderA: funds,
				holderB: funds,
				holderC: funds,
			},
			MinVotePower:        opts.minVotePower,
			Quorum:              types.NewAmount(opts.quorum),
			MinProposalDuration: opts.minDuration,
		},
	)
	require.NoError(t, err)
	return env
}

func (e *testEnv) deployEcho(t *testing.T) types.Address {
	t.Helper()
	addr, err := e.registry.Deploy(
		host.WithInvoker(context.Background(), holderA),
		host.EchoCodeHash,
		[]byte("echo"),
	)
	require.NoError(t, err)
	return addr
}

func (e *testEnv) propose(
	t *testing.T,
	deadline uint64,
	instructions ...proposal.Instruction,
) uint32 {
	t.Helper()
	id, err := e.state.CreateProposal(
		context.Background(),
		holderA,
		governance.ProposalParams{
			Instructions: instructions,
			Deadline:     deadline,
		},
	)
	require.NoError(t, err)
	return id
}

func (e *testEnv) vote(
	id uint32,
	voter types.Address,
	choice tally.Choice,
	tokens int64,
) error {
	return e.state.Vote(context.Background(), governance.VoteParams{
		Voter:      voter,
		Tokens:     types.NewAmount(tokens),
		ProposalID: id,
		Power:      1,
		Choice:     uint32(choice),
	})
}

func (e *testEnv) balance(t *testing.T, holder types.Address) string {
	t.Helper()
	bal, err := e.registry.QueryBalance(context.Background(), e.token, holder)
	require.NoError(t, err)
	return bal.String()
}

func echoInstruction(addr types.Address, greeting string) proposal.Instruction {
	return proposal.Instruction{
		Contract: addr,
		Function: host.EchoFnDemoExec,
		Args:     []any{greeting},
	}
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	assert.Equal(
		t,
		host.ContractAddress(governance.DefaultAddress, host.TokenCodeHash, []byte("gov-token")),
		env.token,
	)
	for _, holder := range []types.Address{holderA, holderB, holderC} {
		assert.Equal(t, "100", env.balance(t, holder))
	}
	state, err := env.state.Core(context.Background())
	require.NoError(t, err)
	assert.Equal(t, env.token, state.Token)
	assert.Equal(t, []types.Address{holderA, holderB, holderC}, state.Shareholders)
	assert.Equal(t, uint32(1), state.MinVotePower)
	assert.Equal(t, "150", state.Quorum.String())
}

func TestInitializeOnlyOnce(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	for _, params := range []governance.InitParams{
		{
			TokenSalt:    []byte("gov-token"),
			Shareholders: map[types.Address]types.Amount{holderA: types.NewAmount(1)},
		},
		{
			TokenSalt:    []byte("other"),
			Shareholders: map[types.Address]types.Amount{outside: types.NewAmount(5)},
			MinVotePower: 7,
		},
		{},
	} {
		_, err := env.state.Initialize(context.Background(), params)
		require.ErrorIs(t, err, governance.ErrAlreadyInitialized)
		assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))
	}
	// The failed calls left nothing behind
	_, err := env.registry.QueryBalance(
		context.Background(),
		host.ContractAddress(governance.DefaultAddress, host.TokenCodeHash, []byte("other")),
		outside,
	)
	require.ErrorIs(t, err, host.ErrContractNotFound)
}

func TestInitializeAfterLapse(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{leaseLow: 100, leaseHigh: 200})
	ctx := context.Background()
	params := governance.InitParams{
		TokenSalt:    []byte("fresh"),
		Shareholders: map[types.Address]types.Amount{outside: types.NewAmount(5)},
	}

	env.clock.Set(5000)
	_, err := env.state.Core(ctx)
	require.ErrorIs(t, err, governance.ErrEntryArchived)
	_, err = env.state.Initialize(ctx, params)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialized)

	// Same answer once the sweeper has moved the configuration out
	_, err = env.state.Sweep(ctx, 0)
	require.NoError(t, err)
	_, err = env.state.Initialize(ctx, params)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialized)
	assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))
}

func TestInitializeValidation(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{skipInitialize: true})
	_, err := env.state.Initialize(context.Background(), governance.InitParams{})
	require.ErrorIs(t, err, governance.ErrNoShareholders)
	_, err = env.state.Initialize(context.Background(), governance.InitParams{
		Shareholders: map[types.Address]types.Amount{holderA: types.NewAmount(-1)},
	})
	require.ErrorIs(t, err, governance.ErrInvalidInitialBalance)
	assert.Equal(t, governance.ErrorClassEligibility, governance.Classify(err))
	// Rolled back, so a valid call still succeeds
	_, err = env.state.Initialize(context.Background(), governance.InitParams{
		Shareholders: map[types.Address]types.Amount{holderA: types.NewAmount(1)},
	})
	require.NoError(t, err)
}

func TestNotInitialized(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{skipInitialize: true})
	ctx := context.Background()
	_, err := env.state.CreateProposal(ctx, holderA, governance.ProposalParams{
		Instructions: []proposal.Instruction{echoInstruction("CECHO", "hi")},
		Deadline:     2000,
	})
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	err = env.vote(0, holderA, tally.ChoiceFor, 1)
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	_, err = env.state.Execute(ctx, 0)
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	_, err = env.state.GetVotes(ctx, 0)
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	_, err = env.state.HaveVoted(ctx, 0, holderA)
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	err = env.state.SetMinVotePower(ctx, 3)
	require.ErrorIs(t, err, governance.ErrNotInitialized)
	assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))
}

func TestProposalIdsMonotonic(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	for i := range 3 {
		id := env.propose(t, 2000, echoInstruction(echo, "hi"))
		assert.Equal(t, uint32(i), id)
	}
	_, err := env.state.CreateProposal(ctx, holderA, governance.ProposalParams{
		Deadline: 2000,
	})
	require.ErrorIs(t, err, proposal.ErrInvalidInstruction)
	assert.Equal(t, uint32(3), env.propose(t, 2000, echoInstruction(echo, "hi")))

	rows, err := env.state.ListProposals(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, uint32(i), row.ProposalID)
		assert.Equal(t, string(holderA), row.Author)
		assert.Equal(t, uint64(1000), row.CreatedAt)
		assert.Nil(t, row.ExecutedAt)
	}
}

func TestCreateProposalGates(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{membersOnly: true, minDuration: 100})
	echo := env.deployEcho(t)
	ctx := context.Background()
	params := governance.ProposalParams{
		Instructions: []proposal.Instruction{echoInstruction(echo, "hi")},
		Deadline:     1050,
	}
	_, err := env.state.CreateProposal(ctx, outside, params)
	require.ErrorIs(t, err, governance.ErrNotAMember)
	_, err = env.state.CreateProposal(ctx, holderB, params)
	require.ErrorIs(t, err, governance.ErrInvalidDeadline)
	assert.Equal(t, governance.ErrorClassEligibility, governance.Classify(err))
	params.Deadline = 1100
	id, err := env.state.CreateProposal(ctx, holderB, params)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)
}

// Three shareholders hold 100 tokens each, quorum is 150. A and B vote for
// with 100 and 60 tokens.
func TestScenarioExecuteOnce(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	id := env.propose(t, 2000, echoInstruction(echo, "hello"))

	require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 100))
	require.NoError(t, env.vote(id, holderB, tally.ChoiceFor, 60))

	status, err := env.state.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusOpen, status)

	_, err = env.state.Execute(ctx, id)
	require.ErrorIs(t, err, governance.ErrTooEarlyToExecute)
	assert.Equal(t, governance.ErrorClassTiming, governance.Classify(err))

	env.clock.Set(2001)
	status, err = env.state.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusClosedPending, status)

	results, err := env.state.ExecuteWithResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []any{"hello"}, results)

	ok, err := env.state.Execute(ctx, id)
	require.ErrorIs(t, err, governance.ErrAlreadyExecuted)
	assert.False(t, ok)

	status, err = env.state.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusExecuted, status)

	err = env.vote(id, holderC, tally.ChoiceFor, 100)
	require.ErrorIs(t, err, governance.ErrVotingClosed)
	assert.Equal(t, governance.ErrorClassTiming, governance.Classify(err))

	row, err := env.db.ProposalIndexEntry(id, nil)
	require.NoError(t, err)
	require.NotNil(t, row.ExecutedAt)
	assert.Equal(t, uint64(2001), *row.ExecutedAt)
}

func TestScenarioAntiReplay(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	id := env.propose(t, 2000, echoInstruction(echo, "hello"))

	require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 50))
	err := env.vote(id, holderA, tally.ChoiceAgainst, 10)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)
	assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))

	counts, err := env.state.GetVotes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "50", counts.For.String())
	assert.Equal(t, "0", counts.Against.String())

	voted, err := env.state.HaveVoted(ctx, id, holderA)
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = env.state.HaveVoted(ctx, id, holderB)
	require.NoError(t, err)
	assert.False(t, voted)

	history, err := env.state.VoteHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(holderA), history[0].Voter)
	assert.Equal(t, "50", history[0].Weight.String())
}

func TestVoteGuards(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{minVotePower: 5})
	echo := env.deployEcho(t)
	ctx := context.Background()
	id := env.propose(t, 2000, echoInstruction(echo, "hello"))

	base := governance.VoteParams{
		Voter:      holderA,
		Tokens:     types.NewAmount(10),
		ProposalID: id,
		Power:      5,
		Choice:     uint32(tally.ChoiceFor),
	}
	testDefs := []struct {
		name   string
		modify func(*governance.VoteParams)
		err    error
		class  governance.ErrorClass
	}{
		{
			name: "not a member beats low power",
			modify: func(p *governance.VoteParams) {
				p.Voter = outside
				p.Power = 0
			},
			err:   governance.ErrNotAMember,
			class: governance.ErrorClassEligibility,
		},
		{
			name:   "insufficient power",
			modify: func(p *governance.VoteParams) { p.Power = 4 },
			err:    governance.ErrInsufficientVotePower,
			class:  governance.ErrorClassEligibility,
		},
		{
			name:   "unknown proposal",
			modify: func(p *governance.VoteParams) { p.ProposalID = 9 },
			err:    proposal.ErrNotFound,
			class:  governance.ErrorClassPrecondition,
		},
		{
			name:   "token amount surpassed",
			modify: func(p *governance.VoteParams) { p.Tokens = types.NewAmount(101) },
			err:    governance.ErrTokenAmountSurpassed,
			class:  governance.ErrorClassEligibility,
		},
		{
			name:   "wrong token contract",
			modify: func(p *governance.VoteParams) { p.TokenContract = echo },
			err:    governance.ErrWrongTokenContract,
			class:  governance.ErrorClassEligibility,
		},
		{
			name:   "invalid choice",
			modify: func(p *governance.VoteParams) { p.Choice = 3 },
			err:    tally.ErrInvalidChoice,
			class:  governance.ErrorClassEligibility,
		},
		{
			name:   "negative amount",
			modify: func(p *governance.VoteParams) { p.Tokens = types.NewAmount(-1) },
			err:    tally.ErrNegativeWeight,
			class:  governance.ErrorClassEligibility,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			params := base
			testDef.modify(&params)
			err := env.state.Vote(ctx, params)
			require.ErrorIs(t, err, testDef.err)
			assert.Equal(t, testDef.class, governance.Classify(err))
		})
	}
	// None of the rejected votes consumed the voter's slot
	counts, err := env.state.GetVotes(ctx, id)
	require.NoError(t, err)
	total, err := counts.Total()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	params := base
	params.TokenContract = env.token
	params.Tokens = types.NewAmount(100)
	require.NoError(t, env.state.Vote(ctx, params))

	// A voter who already voted is told so before the power check
	params.Power = 0
	require.ErrorIs(t, env.state.Vote(ctx, params), governance.ErrAlreadyVoted)

	// Zero weight is accepted and still consumes the slot
	params = base
	params.Voter = holderB
	params.Tokens = types.NewAmount(0)
	require.NoError(t, env.state.Vote(ctx, params))
	params.Tokens = types.NewAmount(5)
	require.ErrorIs(t, env.state.Vote(ctx, params), governance.ErrAlreadyVoted)
}

func TestSetMinVotePower(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	id := env.propose(t, 2000, echoInstruction(echo, "hello"))
	require.NoError(t, env.state.SetMinVotePower(ctx, 2))
	require.ErrorIs(
		t,
		env.vote(id, holderA, tally.ChoiceFor, 1),
		governance.ErrInsufficientVotePower,
	)
	require.NoError(t, env.state.SetMinVotePower(ctx, 1))
	require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 1))
}

func TestExecutionGating(t *testing.T) {
	testDefs := []struct {
		name   string
		votes  map[types.Address]tally.Choice
		tokens map[types.Address]int64
		err    error
		status governance.Status
	}{
		{
			name:   "quorum not met",
			votes:  map[types.Address]tally.Choice{holderA: tally.ChoiceFor},
			tokens: map[types.Address]int64{holderA: 100},
			err:    governance.ErrQuorumNotMet,
			status: governance.StatusClosedRejected,
		},
		{
			name: "quorum reached exactly",
			votes: map[types.Address]tally.Choice{
				holderA: tally.ChoiceFor,
				holderB: tally.ChoiceFor,
			},
			tokens: map[types.Address]int64{holderA: 100, holderB: 50},
			status: governance.StatusClosedPending,
		},
		{
			name: "tie does not pass",
			votes: map[types.Address]tally.Choice{
				holderA: tally.ChoiceFor,
				holderB: tally.ChoiceAgainst,
			},
			tokens: map[types.Address]int64{holderA: 100, holderB: 100},
			err:    governance.ErrProposalNotPassed,
			status: governance.StatusClosedRejected,
		},
		{
			name: "abstain counts toward quorum only",
			votes: map[types.Address]tally.Choice{
				holderA: tally.ChoiceFor,
				holderB: tally.ChoiceAbstain,
				holderC: tally.ChoiceAbstain,
			},
			tokens: map[types.Address]int64{holderA: 1, holderB: 100, holderC: 60},
			status: governance.StatusClosedPending,
		},
		{
			name: "abstain does not break a tie",
			votes: map[types.Address]tally.Choice{
				holderA: tally.ChoiceFor,
				holderB: tally.ChoiceAgainst,
				holderC: tally.ChoiceAbstain,
			},
			tokens: map[types.Address]int64{holderA: 50, holderB: 50, holderC: 100},
			err:    governance.ErrProposalNotPassed,
			status: governance.StatusClosedRejected,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t, testEnvOptions{})
			echo := env.deployEcho(t)
			ctx := context.Background()
			id := env.propose(t, 2000, echoInstruction(echo, "hello"))
			for voter, choice := range testDef.votes {
				require.NoError(t, env.vote(id, voter, choice, testDef.tokens[voter]))
			}
			_, err := env.state.Execute(ctx, id)
			require.ErrorIs(t, err, governance.ErrTooEarlyToExecute)

			env.clock.Set(2001)
			status, err := env.state.Status(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, testDef.status, status)
			ok, err := env.state.Execute(ctx, id)
			if testDef.err != nil {
				require.ErrorIs(t, err, testDef.err)
				assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))
				assert.False(t, ok)
				// Retrying never helps
				_, err = env.state.Execute(ctx, id)
				require.ErrorIs(t, err, testDef.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			_, err = env.state.Execute(ctx, id)
			require.ErrorIs(t, err, governance.ErrAlreadyExecuted)
		})
	}
}

func TestExecuteBatchAtomic(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	mint := proposal.Instruction{
		Contract: env.token,
		Function: host.TokenFnMint,
		Args:     []any{string(holderA), "5"},
	}
	failing := env.propose(
		t,
		2000,
		mint,
		proposal.Instruction{Contract: echo, Function: "missing"},
	)
	passing := env.propose(t, 2000, mint, echoInstruction(echo, "done"))
	for _, id := range []uint32{failing, passing} {
		require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 100))
		require.NoError(t, env.vote(id, holderB, tally.ChoiceFor, 100))
	}
	env.clock.Set(2001)

	_, err := env.state.Execute(ctx, failing)
	require.ErrorIs(t, err, host.ErrUnknownFunction)
	assert.Equal(t, governance.ErrorClassCollaborator, governance.Classify(err))
	// The mint of the first instruction was discarded with the batch
	assert.Equal(t, "100", env.balance(t, holderA))
	status, err := env.state.Status(ctx, failing)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusClosedPending, status)

	results, err := env.state.ExecuteWithResults(ctx, passing)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "done"}, results)
	assert.Equal(t, "105", env.balance(t, holderA))
}

func TestLeaseExtensionAndRestore(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{leaseLow: 100, leaseHigh: 200})
	echo := env.deployEcho(t)
	ctx := context.Background()
	// Entries written at 1000 live until 1200
	id := env.propose(t, 5000, echoInstruction(echo, "hello"))

	// Voting inside the low watermark renews the proposal until 1350
	env.clock.Set(1150)
	require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 10))
	env.clock.Set(1300)
	_, err := env.state.GetProposal(ctx, id)
	require.NoError(t, err)

	// Without further activity everything lapses
	env.clock.Set(1400)
	_, err = env.state.GetProposal(ctx, id)
	require.ErrorIs(t, err, governance.ErrEntryArchived)
	assert.Equal(t, governance.ErrorClassPrecondition, governance.Classify(err))

	archivedCh := make(chan event.Event, 100)
	env.bus.SubscribeFunc(event.EntryArchivedEventType, func(evt event.Event) {
		archivedCh <- evt
	})
	archived, err := env.state.Sweep(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, archived)
	select {
	case evt := <-archivedCh:
		_, ok := evt.Data.(event.EntryArchivedEvent)
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for archive event")
	}

	// Archived entries stay distinct from missing ones
	_, err = env.state.GetProposal(ctx, id)
	require.ErrorIs(t, err, governance.ErrEntryArchived)
	err = env.vote(id, holderB, tally.ChoiceFor, 10)
	require.ErrorIs(t, err, governance.ErrEntryArchived)

	restored, err := env.state.RestoreCore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	restored, err = env.state.RestoreProposal(ctx, id)
	require.NoError(t, err)
	// Proposal, totals and A's vote record
	assert.Equal(t, 3, restored)
	_, err = env.state.RestoreContract(ctx, env.token)
	require.NoError(t, err)

	require.NoError(t, env.vote(id, holderB, tally.ChoiceFor, 10))
	require.ErrorIs(t, env.vote(id, holderA, tally.ChoiceFor, 10), governance.ErrAlreadyVoted)
	counts, err := env.state.GetVotes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "20", counts.For.String())

	_, err = env.state.RestoreProposal(ctx, 42)
	require.ErrorIs(t, err, proposal.ErrNotFound)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{})
	echo := env.deployEcho(t)
	ctx := context.Background()
	evtCh := make(chan event.Event, 10)
	for _, evtType := range []event.EventType{
		event.ProposalCreatedEventType,
		event.VoteCastEventType,
		event.ProposalExecutedEventType,
	} {
		env.bus.SubscribeFunc(evtType, func(evt event.Event) {
			evtCh <- evt
		})
	}
	next := func() event.Event {
		select {
		case evt := <-evtCh:
			return evt
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
		}
		return event.Event{}
	}

	id := env.propose(t, 2000, echoInstruction(echo, "hello"))
	created, ok := next().Data.(event.ProposalCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, id, created.ProposalID)
	assert.Equal(t, 1, created.InstructionCount)

	require.NoError(t, env.vote(id, holderA, tally.ChoiceFor, 100))
	require.NoError(t, env.vote(id, holderB, tally.ChoiceAbstain, 60))
	for range 2 {
		cast, ok := next().Data.(event.VoteCastEvent)
		require.True(t, ok)
		assert.Equal(t, id, cast.ProposalID)
	}
	// Rejected calls publish nothing
	require.Error(t, env.vote(id, holderA, tally.ChoiceFor, 1))

	env.clock.Set(2001)
	_, err := env.state.Execute(ctx, id)
	require.NoError(t, err)
	executed, ok := next().Data.(event.ProposalExecutedEvent)
	require.True(t, ok)
	assert.Equal(t, []any{"hello"}, executed.Results)
	assert.Equal(t, uint64(2001), executed.ExecutedAt)
	select {
	case evt := <-evtCh:
		t.Fatalf("unexpected event: %#v", evt)
	default:
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, governance.ErrorClassUnknown, governance.Classify(nil))
	assert.Equal(
		t,
		governance.ErrorClassCollaborator,
		governance.Classify(&host.CallError{Err: database.ErrEntryArchived}),
	)
	assert.Equal(t, "timing", governance.ErrorClassTiming.String())
}

func TestSweeper(t *testing.T) {
	env := newTestEnv(t, testEnvOptions{leaseLow: 100, leaseHigh: 200})
	ctx := context.Background()
	archivedCh := make(chan event.Event, 100)
	env.bus.SubscribeFunc(event.EntryArchivedEventType, func(evt event.Event) {
		archivedCh <- evt
	})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	env.clock.Set(1500)
	sweeper := governance.NewSweeper(env.state, 10*time.Millisecond)
	sweeper.Start()
	select {
	case <-archivedCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sweep")
	}
	sweeper.Stop()
	// Stopping twice is harmless
	sweeper.Stop()

	_, err := env.state.Core(ctx)
	require.ErrorIs(t, err, governance.ErrEntryArchived)
	archived, err := env.state.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, archived)
}
