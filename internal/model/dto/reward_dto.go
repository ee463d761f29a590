package dto

// ProductInput 新增商品
type ProductInput struct {
	ProductName string `json:"product_name" binding:"required,max=200"`
	Description string `json:"description"`
	Point       int64  `json:"point" binding:"required,gt=0"`
	ImageURL    string `json:"image_url" binding:"omitempty,max=500"`
}

// AddProductsRequest 批量新增商品
type AddProductsRequest struct {
	Products []ProductInput `json:"products" binding:"required,min=1,dive"`
}

// AddProductsResponse 批量新增结果
type AddProductsResponse struct {
	CreatedCount int64 `json:"created_count"`
}

// ProductItem 商品
type ProductItem struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Description string `json:"description,omitempty"`
	Point       int64  `json:"point"`
	ImageURL    string `json:"image_url,omitempty"`
}

// AvailableRewardsResponse 当前积分可兑换的商品
type AvailableRewardsResponse struct {
	MaxPoints int64          `json:"max_points"`
	Products  []*ProductItem `json:"products"`
}

// RedeemResponse 兑换结果
type RedeemResponse struct {
	Redemption      *RedemptionItem `json:"redemption"`
	RemainingPoints int64           `json:"remaining_points"`
}

// RedemptionItem 兑换记录
type RedemptionItem struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	PointsUsed  int64  `json:"points_used"`
	Code        string `json:"code"`
	RedeemedAt  string `json:"redeemed_at"`
}

// ImageUploadResponse 图片上传结果
type ImageUploadResponse struct {
	URL string `json:"url"`
}
