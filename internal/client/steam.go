package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealtracker/internal/misc"
	"dealtracker/internal/model"

	"github.com/go-redis/redis/v9"
	"golang.org/x/net/html"
)

var ErrSteam = errors.New("Steam storefront error")
var ErrSteamAppNotFound = errors.New("Steam app not found")

type steamAppDetailsEntry struct {
	Success bool                 `json:"success"`
	Data    *steamAppDetailsData `json:"data"`
}

type steamAppDetailsData struct {
	Name             string              `json:"name"`
	ShortDescription string              `json:"short_description"`
	IsFree           bool                `json:"is_free"`
	PriceOverview    *steamPriceOverview `json:"price_overview"`
}

type steamPriceOverview struct {
	DiscountPercent int `json:"discount_percent"`
	Initial         int `json:"initial"`
	Final           int `json:"final"`
}

type steamFeaturedCategoriesResponse struct {
	Specials struct {
		Items []steamSpecialItem `json:"items"`
	} `json:"specials"`
}

type steamSpecialItem struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DiscountPercent int    `json:"discount_percent"`
	FinalPrice      int    `json:"final_price"`
	OriginalPrice   int    `json:"original_price"`
}

// SteamGetApp fetches a normalized PriceSnapshot for a Steam AppID. A missing
// price block (free or unpriced app) yields zero prices, not an error.
func (c Client) SteamGetApp(appID string, useCache bool) (model.PriceSnapshot, error) {
	ctx := context.TODO()
	var snap model.PriceSnapshot
	apiURL := fmt.Sprintf("https://store.steampowered.com/api/appdetails?appids=%s&cc=%s&l=%s",
		appID, c.SteamCountry, c.SteamLocale)
	cacheKey := "SGA-" + apiURL
	if useCache {
		cached, err := c.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			c.Logger.Infof("SteamGetApp: Cache found, key: %s", cacheKey)
			if err = json.Unmarshal([]byte(cached), &snap); err == nil {
				return snap, nil
			}
			c.Logger.Errorf("SteamGetApp: Error unmarshalling cache, key: %s, err: %v", cacheKey, err)
		} else if err != redis.Nil {
			c.Logger.Errorf("SteamGetApp: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}

	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	c.Logger.Debugf("SteamGetApp: Sending request to %s", apiURL)
	resp, err := c.Do(req)
	if err != nil {
		return snap, fmt.Errorf("%w: error doing request to %s, err: %v", ErrSteam, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300*1024))
	if err != nil {
		return snap, fmt.Errorf("%w: error reading SteamAppDetailsAPI response body, status: %s, err: %v",
			ErrSteam, resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("%w: status: %s, body:\n%s", ErrSteam, resp.Status, misc.BytesLimit(body, 2000))
	}

	snap, err = steamParseAppDetails(body, appID)
	if err != nil {
		return snap, err
	}

	if snapJSON, err := json.Marshal(snap); err != nil {
		c.Logger.Errorf("SteamGetApp: Error marshalling PriceSnapshot to cache, key: %s, err: %v", cacheKey, err)
	} else if err = c.Redis.Set(ctx, cacheKey, snapJSON, 15*time.Minute).Err(); err != nil {
		c.Logger.Errorf("SteamGetApp: Error caching PriceSnapshot, key: %s, err: %v", cacheKey, err)
	}

	return snap, nil
}

func steamParseAppDetails(body []byte, appID string) (model.PriceSnapshot, error) {
	var snap model.PriceSnapshot
	detailsResp := map[string]steamAppDetailsEntry{}
	if err := json.Unmarshal(body, &detailsResp); err != nil {
		return snap, fmt.Errorf("%w: error unmarshalling SteamAppDetailsAPI response body:\n%s,\nerr: %v",
			ErrSteam, misc.BytesLimit(body, 2000), err)
	}
	entry, ok := detailsResp[appID]
	if !ok || !entry.Success || entry.Data == nil {
		return snap, fmt.Errorf("%w: AppID: %s", ErrSteamAppNotFound, appID)
	}
	snap = model.PriceSnapshot{
		Platform:    model.PlatformSteam,
		Identifier:  appID,
		Name:        entry.Data.Name,
		URL:         "https://store.steampowered.com/app/" + appID,
		Description: flattenHTML(entry.Data.ShortDescription),
	}
	if pov := entry.Data.PriceOverview; pov != nil {
		snap.DiscountPercent = pov.DiscountPercent
		snap.FinalPrice = pov.Final
		snap.OriginalPrice = pov.Initial
	}
	return snap, nil
}

// SteamGetSpecials fetches the storefront's current featured specials.
func (c Client) SteamGetSpecials(limit int, useCache bool) ([]model.Deal, error) {
	ctx := context.TODO()
	var deals []model.Deal
	apiURL := fmt.Sprintf("https://store.steampowered.com/api/featuredcategories?cc=%s&l=%s",
		c.SteamCountry, c.SteamLocale)
	cacheKey := "SGS-" + apiURL
	if useCache {
		cached, err := c.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			c.Logger.Infof("SteamGetSpecials: Cache found, key: %s", cacheKey)
			if err = json.Unmarshal([]byte(cached), &deals); err == nil {
				return dealsLimit(deals, limit), nil
			}
			c.Logger.Errorf("SteamGetSpecials: Error unmarshalling cache, key: %s, err: %v", cacheKey, err)
		} else if err != redis.Nil {
			c.Logger.Errorf("SteamGetSpecials: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}

	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	c.Logger.Debugf("SteamGetSpecials: Sending request to %s", apiURL)
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error doing request to %s, err: %v", ErrSteam, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading SteamFeaturedCategoriesAPI response body, status: %s, err: %v",
			ErrSteam, resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status: %s, body:\n%s", ErrSteam, resp.Status, misc.BytesLimit(body, 2000))
	}

	deals, err = steamParseSpecials(body)
	if err != nil {
		return nil, err
	}

	if dealsJSON, err := json.Marshal(deals); err != nil {
		c.Logger.Errorf("SteamGetSpecials: Error marshalling Deals to cache, key: %s, err: %v", cacheKey, err)
	} else if err = c.Redis.Set(ctx, cacheKey, dealsJSON, 15*time.Minute).Err(); err != nil {
		c.Logger.Errorf("SteamGetSpecials: Error caching Deals, key: %s, err: %v", cacheKey, err)
	}

	return dealsLimit(deals, limit), nil
}

func steamParseSpecials(body []byte) ([]model.Deal, error) {
	fcResp := steamFeaturedCategoriesResponse{}
	if err := json.Unmarshal(body, &fcResp); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling SteamFeaturedCategoriesAPI response body:\n%s,\nerr: %v",
			ErrSteam, misc.BytesLimit(body, 2000), err)
	}
	var deals []model.Deal
	for _, it := range fcResp.Specials.Items {
		deals = append(deals, model.Deal{
			Platform:        model.PlatformSteam,
			Identifier:      fmt.Sprintf("%d", it.ID),
			Name:            it.Name,
			URL:             fmt.Sprintf("https://store.steampowered.com/app/%d", it.ID),
			DiscountPercent: it.DiscountPercent,
			FinalPrice:      it.FinalPrice,
			OriginalPrice:   it.OriginalPrice,
		})
	}
	return deals, nil
}

func dealsLimit(deals []model.Deal, limit int) []model.Deal {
	if limit > 0 && len(deals) > limit {
		return deals[:limit]
	}
	return deals
}

// flattenHTML reduces the short HTML fragments in storefront API fields to
// plain text.
func flattenHTML(s string) string {
	if s == "" {
		return ""
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(misc.HTMLTagRegex.ReplaceAllString(s, " ")))
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		} else if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.TrimSpace(misc.ExtraSpaceRegex.ReplaceAllString(b.String(), " "))
}
