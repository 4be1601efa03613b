package client

import (
	"testing"

	"dealtracker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const steamAppDetailsDiscounted = `{
  "400": {
    "success": true,
    "data": {
      "name": "Portal",
      "short_description": "Portal&trade; is a new single player game.<br>Now with <strong>more</strong> cake.",
      "is_free": false,
      "price_overview": {
        "currency": "USD",
        "initial": 999,
        "final": 99,
        "discount_percent": 90,
        "final_formatted": "$0.99"
      }
    }
  }
}`

const steamAppDetailsFree = `{
  "440": {
    "success": true,
    "data": {
      "name": "Team Fortress 2",
      "short_description": "The most fun you can have online.",
      "is_free": true
    }
  }
}`

const steamAppDetailsNotFound = `{"999999": {"success": false}}`

const steamFeaturedCategories = `{
  "specials": {
    "id": "cat_specials",
    "name": "Specials",
    "items": [
      {"id": 400, "name": "Portal", "discount_percent": 90, "original_price": 999, "final_price": 99, "currency": "USD"},
      {"id": 620, "name": "Portal 2", "discount_percent": 80, "original_price": 999, "final_price": 199, "currency": "USD"},
      {"id": 220, "name": "Half-Life 2", "discount_percent": 75, "original_price": 999, "final_price": 249, "currency": "USD"}
    ]
  }
}`

func TestSteamParseAppDetailsDiscounted(t *testing.T) {
	snap, err := steamParseAppDetails([]byte(steamAppDetailsDiscounted), "400")
	require.NoError(t, err)
	assert.Equal(t, model.PlatformSteam, snap.Platform)
	assert.Equal(t, "400", snap.Identifier)
	assert.Equal(t, "Portal", snap.Name)
	assert.Equal(t, "https://store.steampowered.com/app/400", snap.URL)
	assert.Equal(t, 90, snap.DiscountPercent)
	assert.Equal(t, 99, snap.FinalPrice)
	assert.Equal(t, 999, snap.OriginalPrice)
	assert.NotContains(t, snap.Description, "<")
	assert.Contains(t, snap.Description, "Portal™")
}

func TestSteamParseAppDetailsNoPriceBlock(t *testing.T) {
	snap, err := steamParseAppDetails([]byte(steamAppDetailsFree), "440")
	require.NoError(t, err)
	assert.Equal(t, "Team Fortress 2", snap.Name)
	assert.Zero(t, snap.DiscountPercent)
	assert.Zero(t, snap.FinalPrice)
	assert.Zero(t, snap.OriginalPrice)
}

func TestSteamParseAppDetailsNotFound(t *testing.T) {
	_, err := steamParseAppDetails([]byte(steamAppDetailsNotFound), "999999")
	assert.ErrorIs(t, err, ErrSteamAppNotFound)
}

func TestSteamParseAppDetailsBadJSON(t *testing.T) {
	_, err := steamParseAppDetails([]byte("<html>Access Denied</html>"), "400")
	assert.ErrorIs(t, err, ErrSteam)
}

func TestSteamParseSpecials(t *testing.T) {
	deals, err := steamParseSpecials([]byte(steamFeaturedCategories))
	require.NoError(t, err)
	require.Len(t, deals, 3)
	assert.Equal(t, model.PlatformSteam, deals[0].Platform)
	assert.Equal(t, "400", deals[0].Identifier)
	assert.Equal(t, "Portal", deals[0].Name)
	assert.Equal(t, "https://store.steampowered.com/app/400", deals[0].URL)
	assert.Equal(t, 90, deals[0].DiscountPercent)
	assert.Equal(t, 99, deals[0].FinalPrice)
	assert.Equal(t, 999, deals[0].OriginalPrice)
}

func TestDealsLimit(t *testing.T) {
	deals := []model.Deal{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Len(t, dealsLimit(deals, 2), 2)
	assert.Len(t, dealsLimit(deals, 5), 3)
	assert.Len(t, dealsLimit(deals, 0), 3)
	assert.Nil(t, dealsLimit(nil, 2))
}

func TestFlattenHTML(t *testing.T) {
	assert.Equal(t, "", flattenHTML(""))
	assert.Equal(t, "plain text", flattenHTML("plain text"))
	assert.Equal(t, "bold and italic", flattenHTML("<strong>bold</strong> and <em>italic</em>"))
	assert.Equal(t, "one\ntwo", flattenHTML("one<br>two"))
	assert.Equal(t, "Portal™", flattenHTML("Portal&trade;"))
}
