package marketplace

// CatalogItem is one entry of a search page
type CatalogItem struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	ProductID       uint64  `json:"productId"`
	CreatorType     string  `json:"creatorType"`
	CreatorTargetID uint64  `json:"creatorTargetId"`
	Price           *uint32 `json:"price"`
	ItemType        string  `json:"itemType"`
}

// HasPrice reports whether the item is listed for sale at all
func (i CatalogItem) HasPrice() bool {
	return i.Price != nil
}

// SearchResponse is one page of catalog search results.
// A nil Data marks the end of the catalog.
type SearchResponse struct {
	NextPageCursor *string        `json:"nextPageCursor"`
	Data           *[]CatalogItem `json:"data"`
}

// AuthenticatedUser is the identity behind a credential
type AuthenticatedUser struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// PurchaseRequest is the body of a purchase call
type PurchaseRequest struct {
	ExpectedCurrency int    `json:"expectedCurrency"`
	ExpectedPrice    uint32 `json:"expectedPrice"`
	ExpectedSellerID uint64 `json:"expectedSellerId"`
}

// APIError is one error entry returned by the marketplace
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// RateLimitCode is the purchase error code signalling a rate limit
const RateLimitCode = 27

// PurchaseResponse is the body returned by a purchase call
type PurchaseResponse struct {
	Errors []APIError `json:"errors"`
}

// Failed reports whether the response carries any error
func (r *PurchaseResponse) Failed() bool {
	return len(r.Errors) > 0
}

// RateLimited reports whether any error is the rate-limit code
func (r *PurchaseResponse) RateLimited() bool {
	for _, e := range r.Errors {
		if e.Code == RateLimitCode {
			return true
		}
	}
	return false
}
