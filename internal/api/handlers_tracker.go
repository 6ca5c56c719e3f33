package api

import (
	"net/http"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/rewards"
	"github.com/stake-dashboard/internal/types"
)

// LifetimeResponse reports the lifetime tracking marker. StartedAt is null
// until lifetime tracking has been started once. When the status request
// names addresses, Results carries their earnings since the marker.
type LifetimeResponse struct {
	StartedAt *int64                  `json:"startedAt"`
	Results   []rewards.AddressEarned `json:"results,omitempty"`
}

// handleTrackingStatus handles GET /api/tracking
func (s *Server) handleTrackingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.trackerService.Status(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("tracking status failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// handleTrackingStart handles GET /api/tracking/start?addresses=0x..,0x..
func (s *Server) handleTrackingStart(w http.ResponseWriter, r *http.Request) {
	addrs := types.ParseAddressList(r.URL.Query().Get("addresses"))
	if err := types.ValidateAddresses(addrs); err != nil {
		respondServiceError(w, err)
		return
	}

	status, err := s.trackerService.Start(r.Context(), addrs)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("tracking start failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// handleTrackingStop handles GET /api/tracking/stop
func (s *Server) handleTrackingStop(w http.ResponseWriter, r *http.Request) {
	if err := s.trackerService.Stop(r.Context()); err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("tracking stop failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"tracking": false})
}

// handleTrackingRefresh handles GET /api/tracking/refresh
func (s *Server) handleTrackingRefresh(w http.ResponseWriter, r *http.Request) {
	status, err := s.trackerService.Refresh(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("tracking refresh failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// handleLifetimeStatus handles GET /api/lifetime. With an addresses
// parameter it also aggregates each address's earnings since the marker.
func (s *Server) handleLifetimeStatus(w http.ResponseWriter, r *http.Request) {
	startedAt, err := s.trackerService.LifetimeStartedAt(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("lifetime status failed")
		respondServiceError(w, err)
		return
	}

	var resp LifetimeResponse
	if startedAt != 0 {
		resp.StartedAt = &startedAt
	}

	if raw := r.URL.Query().Get("addresses"); raw != "" && startedAt != 0 {
		addrs := types.ParseAddressList(raw)
		if err := types.ValidateAddresses(addrs); err != nil {
			respondServiceError(w, err)
			return
		}
		results, err := s.rewardService.EarnedSince(r.Context(), addrs, startedAt)
		if err != nil {
			logging.FromContext(r.Context()).WithError(err).Error("lifetime earnings failed")
			respondServiceError(w, err)
			return
		}
		resp.Results = results
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleLifetimeStart handles GET /api/lifetime/start. Starting twice keeps
// the original marker.
func (s *Server) handleLifetimeStart(w http.ResponseWriter, r *http.Request) {
	startedAt, err := s.trackerService.StartLifetime(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("lifetime start failed")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, LifetimeResponse{StartedAt: &startedAt})
}
