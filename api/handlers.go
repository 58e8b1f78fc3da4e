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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/proposal"
)

const maxRequestBodySize = 1 << 20

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// statusForError maps a governance error to an HTTP status by its class
func statusForError(err error) int {
	switch {
	case errors.Is(err, proposal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, governance.ErrEntryArchived):
		return http.StatusGone
	}
	switch governance.Classify(err) {
	case governance.ErrorClassPrecondition:
		return http.StatusConflict
	case governance.ErrorClassEligibility:
		return http.StatusForbidden
	case governance.ErrorClassTiming:
		return http.StatusTooEarly
	case governance.ErrorClassCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeGovernanceError(
	w http.ResponseWriter,
	op string,
	err error,
) {
	status := statusForError(err)
	class := governance.Classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"governance call failed",
			"operation", op,
			"error", err,
		)
		writeError(w, status, "internal error")
		return
	}
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Class:      class.String(),
		Message:    err.Error(),
	})
}

func proposalID(r *http.Request) (uint32, error) {
	tmp, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(tmp), nil
}

// decodeBody decodes a JSON request body. Numbers inside free-form values
// are kept as json.Number so large token amounts survive intact.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (s *Server) handleDao(
	w http.ResponseWriter,
	r *http.Request,
) {
	state, err := s.node.Core(r.Context())
	if err != nil {
		s.writeGovernanceError(w, "dao", err)
		return
	}
	writeJSON(w, http.StatusOK, NewDaoResponse(state))
}

func (s *Server) handleListProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.node.ListProposals(r.Context())
	if err != nil {
		s.writeGovernanceError(w, "list_proposals", err)
		return
	}
	items := NewProposalListItems(rows)
	writeJSON(w, http.StatusOK, paginate(w, items, params))
}

func (s *Server) handleGetProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	prop, err := s.node.GetProposal(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "get_proposal", err)
		return
	}
	status, err := s.node.Status(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, NewProposalResponse(prop, status))
}

func (s *Server) handleCreateProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req CreateProposalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	instructions := make([]proposal.Instruction, 0, len(req.Instructions))
	for _, instr := range req.Instructions {
		instructions = append(instructions, proposal.Instruction{
			Contract: types.Address(instr.Contract),
			Function: instr.Function,
			Args:     instr.Args,
		})
	}
	id, err := s.node.CreateProposal(
		r.Context(),
		types.Address(req.Author),
		governance.ProposalParams{
			Instructions: instructions,
			Deadline:     req.Deadline,
		},
	)
	if err != nil {
		s.writeGovernanceError(w, "create_proposal", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateProposalResponse{ID: id})
}

func (s *Server) handleGetVotes(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	counts, err := s.node.GetVotes(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "get_votes", err)
		return
	}
	writeJSON(w, http.StatusOK, NewVotesResponse(counts))
}

func (s *Server) handleVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	err = s.node.Vote(r.Context(), governance.VoteParams{
		Voter:         types.Address(req.Voter),
		Tokens:        req.Tokens,
		ProposalID:    id,
		Power:         req.Power,
		Choice:        req.Choice,
		TokenContract: types.Address(req.TokenContract),
	})
	if err != nil {
		s.writeGovernanceError(w, "vote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHaveVoted(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	voter := r.PathValue("address")
	voted, err := s.node.HaveVoted(r.Context(), id, types.Address(voter))
	if err != nil {
		s.writeGovernanceError(w, "have_voted", err)
		return
	}
	writeJSON(w, http.StatusOK, VoterResponse{
		ProposalID: id,
		Voter:      voter,
		Voted:      voted,
	})
}

func (s *Server) handleVoteHistory(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	votes, err := s.node.VoteHistory(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "vote_history", err)
		return
	}
	items := NewVoteHistoryItems(votes)
	writeJSON(w, http.StatusOK, paginate(w, items, params))
}

func (s *Server) handleExecute(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	results, err := s.node.ExecuteWithResults(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "execute", err)
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{
		Executed: true,
		Results:  results,
	})
}

func (s *Server) handleRestore(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := proposalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	count, err := s.node.RestoreProposal(r.Context(), id)
	if err != nil {
		s.writeGovernanceError(w, "restore", err)
		return
	}
	writeJSON(w, http.StatusOK, RestoreResponse{Restored: count})
}
