package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"dealtracker/internal/client"
	"dealtracker/internal/misc"
	"dealtracker/internal/model"

	"github.com/pkg/errors"
)

// normalizeIdentifier routes free-form user input to a (platform, identifier)
// pair. A Steam store URL or bare AppID maps to the steam platform; anything
// else is kept as opaque text on the other platform.
func normalizeIdentifier(raw string) (model.Platform, string) {
	raw = strings.TrimSpace(raw)
	if m := misc.SteamURLRegex.FindStringSubmatch(raw); m != nil {
		return model.PlatformSteam, m[1]
	}
	if misc.SteamAppIDRegex.MatchString(raw) {
		return model.PlatformSteam, raw
	}
	return model.PlatformOther, raw
}

func (s Server) wishlistAdd() http.HandlerFunc {
	type request struct {
		Identifier string `json:"identifier"`
	}
	type response struct {
		AlreadyExists bool                `json:"already_exists"`
		Entry         model.WishlistEntry `json:"entry"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Identifier) == "" {
			http.Error(w, "identifier is required", http.StatusBadRequest)
			return
		}

		platform, identifier := normalizeIdentifier(req.Identifier)
		title := strings.TrimSpace(req.Identifier)
		if platform == model.PlatformSteam {
			if snap, err := s.Client.SteamGetApp(identifier, true); err == nil {
				title = snap.Name
			} else {
				s.Logger.Debugf("wishlistAdd: Could not resolve title for Steam AppID: %s, err: %v", identifier, err)
			}
		}

		we := model.WishlistEntry{
			UserID:     uc.user.ID,
			Platform:   platform,
			Identifier: identifier,
			Title:      title,
		}
		alreadyExists, err := s.DB.WishlistEntryInsert(r.Context(), we)
		if err != nil {
			s.Logger.Errorf("wishlistAdd: Error inserting WishlistEntry, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			AlreadyExists: alreadyExists,
			Entry:         we,
		}, http.StatusOK)
	}
}

func (s Server) wishlistRemove() http.HandlerFunc {
	type request struct {
		Identifier string `json:"identifier"`
	}
	type response struct {
		Removed bool `json:"removed"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("wishlistRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		platform, identifier := normalizeIdentifier(req.Identifier)
		existed, err := s.DB.WishlistEntryRemove(r.Context(), uc.user.ID, platform, identifier)
		if err != nil {
			s.Logger.Errorf("wishlistRemove: Error removing WishlistEntry, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Removed: existed}, http.StatusOK)
	}
}

func (s Server) wishlistGet() http.HandlerFunc {
	type wishlistItem struct {
		model.WishlistEntry
		Snapshot *model.PriceSnapshot `json:"snapshot,omitempty"`
	}
	type response []wishlistItem
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("wishlistGet: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		wes, err := s.DB.WishlistEntriesFindByUser(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("wishlistGet: Error getting WishlistEntries for UserID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, we := range wes {
			wi := wishlistItem{WishlistEntry: we}
			if we.Platform == model.PlatformSteam {
				if snap, err := s.Client.SteamGetApp(we.Identifier, true); err == nil {
					wi.Snapshot = &snap
				} else {
					s.Logger.Debugf("wishlistGet: Error getting snapshot for Steam AppID: %s, err: %v", we.Identifier, err)
				}
			}
			resp = append(resp, wi)
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) trackAdd() http.HandlerFunc {
	type request struct {
		Identifier     string `json:"identifier"`
		AlertThreshold int    `json:"alert_threshold"`
	}
	type response struct {
		AlreadyExists bool              `json:"already_exists"`
		TrackedItem   model.TrackedItem `json:"tracked_item"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("trackAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.AlertThreshold < 0 {
			http.Error(w, "alert_threshold must not be negative", http.StatusBadRequest)
			return
		}

		platform, identifier := normalizeIdentifier(req.Identifier)
		if platform != model.PlatformSteam {
			s.Logger.Debugf("trackAdd: Unsupported platform for tracking, input: %s", req.Identifier)
			http.Error(w, "price tracking supports Steam AppIDs and store URLs only", http.StatusUnprocessableEntity)
			return
		}

		title := identifier
		if snap, err := s.Client.SteamGetApp(identifier, true); err == nil {
			title = snap.Name
		} else {
			s.Logger.Debugf("trackAdd: Could not resolve title for Steam AppID: %s, err: %v", identifier, err)
		}

		ti := model.TrackedItem{
			UserID:         uc.user.ID,
			Platform:       platform,
			Identifier:     identifier,
			Title:          title,
			AlertThreshold: req.AlertThreshold,
		}
		alreadyExists, err := s.DB.TrackedItemInsert(r.Context(), ti)
		if err != nil {
			s.Logger.Errorf("trackAdd: Error inserting TrackedItem, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			AlreadyExists: alreadyExists,
			TrackedItem:   ti,
		}, http.StatusOK)
	}
}

func (s Server) trackRemove() http.HandlerFunc {
	type request struct {
		Identifier string `json:"identifier"`
	}
	type response struct {
		Removed bool `json:"removed"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackRemove: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("trackRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		platform, identifier := normalizeIdentifier(req.Identifier)
		existed, err := s.DB.TrackedItemRemove(r.Context(), uc.user.ID, platform, identifier)
		if err != nil {
			s.Logger.Errorf("trackRemove: Error removing TrackedItem, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Removed: existed}, http.StatusOK)
	}
}

func (s Server) trackGet() http.HandlerFunc {
	type response []model.TrackedItem
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackGet: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		tis, err := s.DB.TrackedItemsFindByUser(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("trackGet: Error getting TrackedItems for UserID: %s, err: %v", uc.user.ID.Hex(), err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if tis == nil {
			tis = []model.TrackedItem{}
		}
		s.writeJsonResponse(w, response(tis), http.StatusOK)
	}
}

func (s Server) priceCheck() http.HandlerFunc {
	type request struct {
		Identifier string `json:"identifier"`
	}
	type response model.PriceSnapshot
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("priceCheck: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		platform, identifier := normalizeIdentifier(req.Identifier)
		if platform != model.PlatformSteam {
			s.Logger.Debugf("priceCheck: Unsupported platform for price check, input: %s", req.Identifier)
			http.Error(w, "price check supports Steam AppIDs and store URLs only", http.StatusUnprocessableEntity)
			return
		}

		snap, err := s.Client.SteamGetApp(identifier, true)
		if err != nil {
			if errors.Is(err, client.ErrSteamAppNotFound) {
				s.Logger.Debugf("priceCheck: Steam app not found, AppID: %s, err: %v", identifier, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("priceCheck: Error getting Steam app, AppID: %s, err: %v", identifier, err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		s.writeJsonResponse(w, response(snap), http.StatusOK)
	}
}

func (s Server) dealsSteam() http.HandlerFunc {
	type response []model.Deal
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 8
		if l := r.URL.Query().Get("limit"); l != "" {
			parsed, err := strconv.Atoi(l)
			if err != nil || parsed < 1 || parsed > 50 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		deals, err := s.Client.SteamGetSpecials(limit, true)
		if err != nil {
			s.Logger.Errorf("dealsSteam: Error getting Steam specials, err: %v", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		if deals == nil {
			deals = []model.Deal{}
		}
		s.writeJsonResponse(w, response(deals), http.StatusOK)
	}
}

func (s Server) dealsEpic() http.HandlerFunc {
	type response struct {
		FreeGames []model.Deal `json:"free_games"`
		Discounts []model.Deal `json:"discounts"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		free, err := s.Client.EpicGetFreeGames()
		if err != nil {
			s.Logger.Errorf("dealsEpic: Error getting Epic free games, err: %v", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		discounts, err := s.Client.EpicGetTopDiscounts(6)
		if err != nil {
			s.Logger.Errorf("dealsEpic: Error getting Epic discounts, err: %v", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		resp := response{FreeGames: free, Discounts: discounts}
		if resp.FreeGames == nil {
			resp.FreeGames = []model.Deal{}
		}
		if resp.Discounts == nil {
			resp.Discounts = []model.Deal{}
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) dealsUpcoming() http.HandlerFunc {
	type response []model.SaleEvent
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, response{
			{Platform: model.PlatformSteam, Name: "Steam Seasonal Sales (Summer/Winter/Autumn), dates vary"},
			{Platform: model.PlatformOther, Name: "Epic Mega Sale (annual), dates vary"},
		}, http.StatusOK)
	}
}
