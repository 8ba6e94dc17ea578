package marketplace

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// SearchEndpoint lists catalog items matching a filter
	SearchEndpoint = "/v2/search/items/details"

	// AuthenticatedUserEndpoint resolves the credential to a user
	AuthenticatedUserEndpoint = "/v1/users/authenticated"

	// HomeEndpoint is the HTML page carrying the anti-forgery token
	HomeEndpoint = "/home"

	// MaxPrice restricts searches to free items
	MaxPrice = 0

	// PageSize is the number of items requested per search page
	PageSize = 120

	// BundleItemKind is the inventory item kind used for ownership checks
	BundleItemKind = 3

	// CurrencyRobux is the expected purchase currency
	CurrencyRobux = 1

	// CookieName carries the identity credential
	CookieName = ".ROBLOSECURITY"
)

// SearchQuery holds the optional catalog filters. Empty values are sent as
// empty parameters.
type SearchQuery struct {
	Category    string
	Subcategory string
}

// SearchURL constructs the catalog search URL for one page
func SearchURL(base string, q SearchQuery, cursor string) string {
	params := url.Values{}
	params.Set("category", q.Category)
	params.Set("subcategory", q.Subcategory)
	params.Set("maxPrice", strconv.Itoa(MaxPrice))
	params.Set("limit", strconv.Itoa(PageSize))
	params.Set("cursor", cursor)

	return fmt.Sprintf("%s%s?%s", trim(base), SearchEndpoint, params.Encode())
}

// AuthenticatedUserURL constructs the "who am I" URL
func AuthenticatedUserURL(base string) string {
	return trim(base) + AuthenticatedUserEndpoint
}

// IsOwnedURL constructs the inventory ownership URL
func IsOwnedURL(base string, userID, itemID uint64) string {
	return fmt.Sprintf("%s/v1/users/%d/items/%d/%d/is-owned", trim(base), userID, BundleItemKind, itemID)
}

// HomeURL constructs the home page URL
func HomeURL(base string) string {
	return trim(base) + HomeEndpoint
}

// PurchaseURL constructs the purchase URL for a product
func PurchaseURL(base string, productID uint64) string {
	return fmt.Sprintf("%s/v1/purchases/products/%d", trim(base), productID)
}

// ItemURL returns the public page of an item
func ItemURL(base string, itemID uint64) string {
	return fmt.Sprintf("%s/bundles/%d", trim(base), itemID)
}

func trim(base string) string {
	return strings.TrimRight(base, "/")
}
