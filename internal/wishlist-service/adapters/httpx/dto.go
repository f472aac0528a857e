package httpx

import "github.com/jcmexdev/marketplace/internal/wishlist-service/domain"

type WishlistRequest struct {
	Name string `json:"name"`
}

type AddProductRequest struct {
	WishlistID string `json:"wishlist_id"`
	ProductID  string `json:"product_id"`
}

type RemoveProductRequest struct {
	ID string `json:"id"`
}

type WishlistResponse struct {
	ID       string         `json:"id"`
	TenantID string         `json:"tenant_id"`
	UserID   string         `json:"user_id"`
	Name     string         `json:"name"`
	Items    []ItemResponse `json:"items,omitempty"`
}

type ItemResponse struct {
	ID         string `json:"id"`
	WishlistID string `json:"wishlist_id"`
	ProductID  string `json:"product_id"`
}

type RemovedResponse struct {
	Message string       `json:"message"`
	Item    ItemResponse `json:"item"`
}

func mapWishlist(w domain.Wishlist) WishlistResponse {
	out := WishlistResponse{ID: w.ID, TenantID: w.TenantID, UserID: w.UserID, Name: w.Name}
	if w.Items != nil {
		out.Items = make([]ItemResponse, len(w.Items))
		for i, it := range w.Items {
			out.Items[i] = mapItem(it)
		}
	}
	return out
}

func mapItem(it domain.Item) ItemResponse {
	return ItemResponse{ID: it.ID, WishlistID: it.WishlistID, ProductID: it.ProductID}
}
