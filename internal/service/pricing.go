package service

import (
	"context"
	"errors"
	"math"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

var ErrBelowDeliveryMinimum = errors.New("order total below delivery minimum")

// PricingInput 定价输入。Items 的单价此时已从菜单解析完毕，
// 计算过程不再回查菜单。
type PricingInput struct {
	OrderType    model.OrderType
	Items        model.OrderItems
	CouponCode   string
	RedeemPhone  string
	RedeemPoints int
}

// PriceQuote 定价结果。Total = max(0, Subtotal + DeliveryFee - Discount)。
type PriceQuote struct {
	Subtotal        float64       `json:"subtotal"`
	DeliveryFee     float64       `json:"delivery_fee"`
	CouponDiscount  float64       `json:"coupon_discount"`
	LoyaltyDiscount float64       `json:"loyalty_discount"`
	Total           float64       `json:"total"`
	Coupon          *model.Coupon `json:"-"`
}

// Discount 合计折扣
func (q *PriceQuote) Discount() float64 {
	return q.CouponDiscount + q.LoyaltyDiscount
}

// PricingCalculator 组合小计、外送费策略与折扣。
// 相同输入得到相同结果：配置快照一次读取，无隐藏随机性。
type PricingCalculator struct {
	discounts  *DiscountEngine
	settings   repository.SettingsRepository
	pointValue float64
}

func NewPricingCalculator(discounts *DiscountEngine, settings repository.SettingsRepository, pointValue float64) *PricingCalculator {
	if pointValue <= 0 {
		pointValue = 0.10
	}
	return &PricingCalculator{discounts: discounts, settings: settings, pointValue: pointValue}
}

func (p *PricingCalculator) Quote(ctx context.Context, in PricingInput) (*PriceQuote, error) {
	quote := &PriceQuote{Subtotal: round2(in.Items.Subtotal())}

	if in.OrderType == model.OrderTypeDelivery {
		cfg, err := p.settings.GetDelivery(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.DeliveryEnabled {
			if quote.Subtotal < cfg.MinOrderAmount {
				return nil, ErrBelowDeliveryMinimum
			}
			if quote.Subtotal < cfg.FreeDeliveryThreshold {
				quote.DeliveryFee = cfg.DeliveryFee
			}
		}
	}

	if in.CouponCode != "" {
		cq, err := p.discounts.Validate(ctx, in.CouponCode, quote.Subtotal, in.Items)
		if err != nil {
			return nil, err
		}
		quote.Coupon = cq.Coupon
		quote.CouponDiscount = cq.DiscountAmount
	}

	if in.RedeemPoints > 0 {
		// 积分折扣封顶：总价不会被抵成负数
		remaining := quote.Subtotal + quote.DeliveryFee - quote.CouponDiscount
		quote.LoyaltyDiscount = round2(math.Min(float64(in.RedeemPoints)*p.pointValue, math.Max(0, remaining)))
	}

	quote.Total = round2(math.Max(0, quote.Subtotal+quote.DeliveryFee-quote.Discount()))
	return quote, nil
}
