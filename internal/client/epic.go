package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"dealtracker/internal/misc"
	"dealtracker/internal/model"
)

var ErrEpic = errors.New("Epic storefront error")

const epicStoreBackend = "https://store-site-backend-static.ak.epicgames.com"

const epicSearchStoreQuery = `
query searchStoreQuery($allowCountries:String,$category:String,$country:String!,$locale:String,$sortBy:String,$onSale:Boolean){
  Catalog {
    searchStore(allowCountries:$allowCountries, category:$category, country:$country, locale:$locale, sortBy:$sortBy, onSale:$onSale) {
      elements { title productSlug price { totalPrice { discountPrice originalPrice } discount { discountPercentage } } }
    }
  }
}`

type epicCatalogResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []epicCatalogElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type epicCatalogElement struct {
	Title       string `json:"title"`
	ProductSlug string `json:"productSlug"`
	Price       *struct {
		TotalPrice struct {
			DiscountPrice int `json:"discountPrice"`
			OriginalPrice int `json:"originalPrice"`
		} `json:"totalPrice"`
		Discount *struct {
			DiscountPercentage int `json:"discountPercentage"`
		} `json:"discount"`
	} `json:"price"`
	Promotions *struct {
		PromotionalOffers []struct {
			PromotionalOffers []struct {
				DiscountSetting struct {
					DiscountPercentage int `json:"discountPercentage"`
				} `json:"discountSetting"`
			} `json:"promotionalOffers"`
		} `json:"promotionalOffers"`
	} `json:"promotions"`
}

// EpicGetFreeGames fetches the games currently free on the Epic storefront.
func (c Client) EpicGetFreeGames() ([]model.Deal, error) {
	apiURL := epicStoreBackend + "/freeGamesPromotions?locale=en-US&country=US&allowCountries=US"
	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	c.Logger.Debugf("EpicGetFreeGames: Sending request to %s", apiURL)
	body, err := c.epicDoAndRead(req)
	if err != nil {
		return nil, err
	}
	return epicParseFreeGames(body)
}

func epicParseFreeGames(body []byte) ([]model.Deal, error) {
	catResp := epicCatalogResponse{}
	if err := json.Unmarshal(body, &catResp); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling EpicFreeGamesAPI response body:\n%s,\nerr: %v",
			ErrEpic, misc.BytesLimit(body, 2000), err)
	}
	var deals []model.Deal
	for _, e := range catResp.Data.Catalog.SearchStore.Elements {
		if e.Promotions == nil {
			continue
		}
		for _, wrap := range e.Promotions.PromotionalOffers {
			for _, offer := range wrap.PromotionalOffers {
				pct := offer.DiscountSetting.DiscountPercentage
				if pct != 0 && pct != 100 {
					continue
				}
				deals = append(deals, model.Deal{
					Platform:        model.PlatformOther,
					Name:            e.Title,
					URL:             "https://store.epicgames.com/p/" + e.ProductSlug,
					DiscountPercent: 100,
				})
			}
		}
	}
	return deals, nil
}

// EpicGetTopDiscounts queries the storefront catalog for titles on sale,
// sorted by discounted price.
func (c Client) EpicGetTopDiscounts(limit int) ([]model.Deal, error) {
	reqBody, err := json.Marshal(map[string]any{
		"query": epicSearchStoreQuery,
		"variables": map[string]any{
			"allowCountries": "US",
			"category":       "games/edition/base|bundles/games",
			"country":        "US",
			"locale":         "en-US",
			"sortBy":         "discountPrice",
			"onSale":         true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling Epic catalog query, err: %v", err)
	}
	apiURL := epicStoreBackend + "/api/graphql"
	req, err := newRequest(http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.Logger.Debugf("EpicGetTopDiscounts: Sending request to %s", apiURL)
	body, err := c.epicDoAndRead(req)
	if err != nil {
		return nil, err
	}
	deals, err := epicParseTopDiscounts(body)
	if err != nil {
		return nil, err
	}
	return dealsLimit(deals, limit), nil
}

func epicParseTopDiscounts(body []byte) ([]model.Deal, error) {
	catResp := epicCatalogResponse{}
	if err := json.Unmarshal(body, &catResp); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling EpicCatalogAPI response body:\n%s,\nerr: %v",
			ErrEpic, misc.BytesLimit(body, 2000), err)
	}
	var deals []model.Deal
	for _, e := range catResp.Data.Catalog.SearchStore.Elements {
		d := model.Deal{
			Platform: model.PlatformOther,
			Name:     e.Title,
			URL:      "https://store.epicgames.com/",
		}
		if e.ProductSlug != "" {
			d.URL = "https://store.epicgames.com/p/" + e.ProductSlug
		}
		if e.Price != nil {
			d.FinalPrice = e.Price.TotalPrice.DiscountPrice
			d.OriginalPrice = e.Price.TotalPrice.OriginalPrice
			if e.Price.Discount != nil {
				d.DiscountPercent = e.Price.Discount.DiscountPercentage
			}
		}
		deals = append(deals, d)
	}
	return deals, nil
}

func (c Client) epicDoAndRead(req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error doing request to %s, err: %v", ErrEpic, req.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading Epic response body, status: %s, err: %v", ErrEpic, resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status: %s, body:\n%s", ErrEpic, resp.Status, misc.BytesLimit(body, 2000))
	}
	return body, nil
}
