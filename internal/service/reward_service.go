package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/repository"
)

// ImageStorage 商品图片存储，生产环境为 OSS
type ImageStorage interface {
	UploadProductImage(productID int64, data []byte, ext string) (string, error)
	Delete(objectKey string) error
	ExtractObjectKey(url string) string
}

type RewardService struct {
	ledger         *Ledger
	privilegeSvc   *PrivilegeService
	productRepo    *repository.ProductRepository
	redemptionRepo *repository.RedemptionRepository
	storage        ImageStorage
	uploadCfg      config.UploadConfig
}

func NewRewardService(
	ledger *Ledger,
	privilegeSvc *PrivilegeService,
	productRepo *repository.ProductRepository,
	redemptionRepo *repository.RedemptionRepository,
	storage ImageStorage,
	uploadCfg config.UploadConfig,
) *RewardService {
	return &RewardService{
		ledger:         ledger,
		privilegeSvc:   privilegeSvc,
		productRepo:    productRepo,
		redemptionRepo: redemptionRepo,
		storage:        storage,
		uploadCfg:      uploadCfg,
	}
}

// ListAll 全部上架商品
func (s *RewardService) ListAll(ctx context.Context) ([]*dto.ProductItem, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return buildProductItems(products), nil
}

// Available 当前积分可兑换且未兑换过的商品
func (s *RewardService) Available(ctx context.Context, userID int64) (*dto.AvailableRewardsResponse, error) {
	p, err := s.privilegeSvc.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListRedeemable(ctx, userID, p.CurrentPoint)
	if err != nil {
		return nil, err
	}

	return &dto.AvailableRewardsResponse{
		MaxPoints: p.CurrentPoint,
		Products:  buildProductItems(products),
	}, nil
}

// Redeem 兑换商品，扣减积分并生成兑换码
func (s *RewardService) Redeem(ctx context.Context, userID, productID int64) (*dto.RedeemResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductNotFound
	}
	if err := s.privilegeSvc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		p          *model.Privilege
		redemption *model.Redemption
	)
	err = s.ledger.Run(ctx, userID, func(tx *gorm.DB) error {
		var err error
		p, err = s.ledger.lockOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}

		redemptionRepo := repository.NewRedemptionRepository(tx)
		redeemed, err := redemptionRepo.Exists(ctx, userID, productID)
		if err != nil {
			return err
		}
		if redeemed {
			return ErrAlreadyRedeemed
		}
		if p.CurrentPoint < product.Point {
			return ErrInsufficientPoints
		}

		p.CurrentPoint -= product.Point
		if err := repository.NewPrivilegeRepository(tx).Save(ctx, p); err != nil {
			return err
		}

		redemption = &model.Redemption{
			UserID:      userID,
			ProductID:   product.ID,
			ProductName: product.ProductName,
			PointsUsed:  product.Point,
			Code:        uuid.NewString(),
			RedeemedAt:  s.ledger.Now(),
		}
		return redemptionRepo.Create(ctx, redemption)
	})
	s.observeRedeem(err, product.Point)
	if err != nil {
		return nil, err
	}

	slog.Info("reward redeemed",
		"user_id", userID,
		"product_id", product.ID,
		"points_used", product.Point,
		"remaining_points", p.CurrentPoint,
	)
	s.ledger.notify(ctx, pubsub.EventRewardRedeemed, "redeem", p)

	return &dto.RedeemResponse{
		Redemption:      buildRedemptionItem(redemption),
		RemainingPoints: p.CurrentPoint,
	}, nil
}

func (s *RewardService) observeRedeem(err error, points int64) {
	m := s.ledger.metrics
	if m == nil {
		return
	}

	switch {
	case err == nil:
		m.RedemptionTotal.WithLabelValues("success").Inc()
		m.PointsRedeemedTotal.Add(float64(points))
	case errors.Is(err, ErrInsufficientPoints):
		m.RedemptionTotal.WithLabelValues("insufficient").Inc()
	case errors.Is(err, ErrAlreadyRedeemed):
		m.RedemptionTotal.WithLabelValues("duplicate").Inc()
	default:
		m.RedemptionTotal.WithLabelValues("failed").Inc()
	}
}

// History 兑换历史
func (s *RewardService) History(ctx context.Context, userID int64) ([]*dto.RedemptionItem, error) {
	list, err := s.redemptionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.RedemptionItem, 0, len(list))
	for i := range list {
		items = append(items, buildRedemptionItem(&list[i]))
	}
	return items, nil
}

// AddProducts 批量新增商品，同名商品跳过
func (s *RewardService) AddProducts(ctx context.Context, req *dto.AddProductsRequest) (*dto.AddProductsResponse, error) {
	seen := make(map[string]struct{}, len(req.Products))
	products := make([]*model.Product, 0, len(req.Products))

	for _, in := range req.Products {
		name := strings.TrimSpace(in.ProductName)
		if name == "" || in.Point <= 0 {
			return nil, invalid("商品名称和所需积分不能为空")
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		products = append(products, &model.Product{
			ProductName: name,
			Description: in.Description,
			Point:       in.Point,
			ImageURL:    in.ImageURL,
			Active:      true,
		})
	}

	created, err := s.productRepo.CreateSkipDuplicates(ctx, products)
	if err != nil {
		return nil, err
	}

	slog.Info("products added", "requested", len(req.Products), "created", created)
	return &dto.AddProductsResponse{CreatedCount: created}, nil
}

// DeleteProduct 删除商品，已有兑换记录保留
func (s *RewardService) DeleteProduct(ctx context.Context, productID int64) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.removeImage(product.ImageURL)
	return nil
}

// UploadImage 上传商品图片并替换原图
func (s *RewardService) UploadImage(ctx context.Context, productID int64, file io.Reader, filename string, size int64) (*dto.ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageNotReady
	}
	if s.uploadCfg.MaxSize > 0 && size > s.uploadCfg.MaxSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !s.allowedExt(ext) {
		return nil, ErrInvalidFileType
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.UploadProductImage(productID, data, ext)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateImageURL(ctx, productID, url); err != nil {
		return nil, err
	}

	s.removeImage(product.ImageURL)
	return &dto.ImageUploadResponse{URL: url}, nil
}

func (s *RewardService) allowedExt(ext string) bool {
	if ext == "" {
		return false
	}
	if len(s.uploadCfg.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range s.uploadCfg.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func (s *RewardService) removeImage(url string) {
	if url == "" || s.storage == nil {
		return
	}
	key := s.storage.ExtractObjectKey(url)
	if key == "" {
		return
	}
	if err := s.storage.Delete(key); err != nil {
		slog.Warn("delete product image failed", "key", key, "error", err)
	}
}

func buildProductItems(products []model.Product) []*dto.ProductItem {
	items := make([]*dto.ProductItem, 0, len(products))
	for _, p := range products {
		items = append(items, &dto.ProductItem{
			ID:          p.ID,
			ProductName: p.ProductName,
			Description: p.Description,
			Point:       p.Point,
			ImageURL:    p.ImageURL,
		})
	}
	return items
}

func buildRedemptionItem(r *model.Redemption) *dto.RedemptionItem {
	return &dto.RedemptionItem{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		PointsUsed:  r.PointsUsed,
		Code:        r.Code,
		RedeemedAt:  r.RedeemedAt.Format(time.RFC3339),
	}
}
