package api

import (
	"net/http"
	"strconv"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/rewards"
	"github.com/stake-dashboard/internal/types"
)

// RewardsResponse is the windowed reward summary payload.
type RewardsResponse struct {
	Addresses []types.Address          `json:"addresses"`
	Results   []rewards.AddressRewards `json:"results"`
	FetchedAt int64                    `json:"fetchedAt"`
}

// EarnedResponse is the since-based earnings payload.
type EarnedResponse struct {
	SinceSec  int64                   `json:"sinceSec"`
	Addresses []types.Address         `json:"addresses"`
	Results   []rewards.AddressEarned `json:"results"`
	FetchedAt int64                   `json:"fetchedAt"`
}

// handleRewards handles GET /api/rewards?addresses=0x..,0x..
func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	addrs := types.ParseAddressList(r.URL.Query().Get("addresses"))
	if err := types.ValidateAddresses(addrs); err != nil {
		respondServiceError(w, err)
		return
	}

	results, err := s.rewardService.WindowedRewards(r.Context(), addrs)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("windowed rewards failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RewardsResponse{
		Addresses: addrs,
		Results:   results,
		FetchedAt: s.now().Unix(),
	})
}

// handleEarned handles GET /api/earned?addresses=0x..&since=<unix seconds>
func (s *Server) handleEarned(w http.ResponseWriter, r *http.Request) {
	addrs := types.ParseAddressList(r.URL.Query().Get("addresses"))
	if err := types.ValidateAddresses(addrs); err != nil {
		respondServiceError(w, err)
		return
	}

	since, err := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	if err != nil || since <= 0 {
		respondServiceError(w, &types.ServiceError{
			Code:    types.ErrInvalidSince,
			Message: "Invalid or missing since timestamp",
		})
		return
	}

	results, err := s.rewardService.EarnedSince(r.Context(), addrs, since)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("earned-since failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, EarnedResponse{
		SinceSec:  since,
		Addresses: addrs,
		Results:   results,
		FetchedAt: s.now().Unix(),
	})
}
