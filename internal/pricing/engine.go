package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tapiocalabs/quotation-api/internal/catalog"
)

// Discount rule constants. The category rule fires only when the accessory
// unit count is strictly greater than accessoryQtyThreshold.
const (
	accessoryQtyThreshold = 5

	codeCategoryAccessories = "CAT_ACC_5PCT"
	nameCategoryAccessories = "Categoria acessórios 5%"
	nameCartValue           = "Desconto por valor do carrinho"
)

var (
	accessoryPct = decimal.RequireFromString("0.05")

	// volumeTiers is evaluated top-down; the first tier whose MinQuantity is
	// satisfied wins.
	volumeTiers = []volumeTier{
		{MinQuantity: 50, Percent: decimal.RequireFromString("0.20"), Code: "QTY_TIER_20PCT", Name: "Desconto por volume 20%", Label: ">= 50"},
		{MinQuantity: 20, Percent: decimal.RequireFromString("0.15"), Code: "QTY_TIER_15PCT", Name: "Desconto por volume 15%", Label: ">= 20"},
		{MinQuantity: 10, Percent: decimal.RequireFromString("0.10"), Code: "QTY_TIER_10PCT", Name: "Desconto por volume 10%", Label: ">= 10"},
	}

	// cartValueTiers is evaluated top-down against the post-volume total.
	cartValueTiers = []cartValueTier{
		{Threshold: decimal.NewFromInt(2000), Amount: decimal.RequireFromString("150.00"), Code: "CART_VALUE_FIXED_150"},
		{Threshold: decimal.NewFromInt(1000), Amount: decimal.RequireFromString("50.00"), Code: "CART_VALUE_FIXED_50"},
	}
)

type volumeTier struct {
	MinQuantity int
	Percent     decimal.Decimal
	Code        string
	Name        string
	Label       string
}

type cartValueTier struct {
	Threshold decimal.Decimal
	Amount    decimal.Decimal
	Code      string
}

// Engine applies the discount rules to priced line items. Rules run in a
// fixed sequence (category, then volume, then cart-value) and each rule
// recomputes its basis from the state left by the previous one, so the order
// must not change. Diagnostics go through the injected logger.
type Engine struct {
	lg *zap.Logger
}

// NewEngine creates an Engine that logs rule application to lg. A nil logger
// disables diagnostics.
func NewEngine(lg *zap.Logger) *Engine {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Engine{lg: lg}
}

// Apply mutates items with item-level discounts, computes the cart-level
// discounts, and returns them together with the final total (rounded, never
// negative). Each rule runs exactly once per call. totalQuantity is the
// original pre-discount unit count accumulated by the Pricer.
func (e *Engine) Apply(items []LineItem, cartSubtotal decimal.Decimal, totalQuantity int) (cartDiscounts []Discount, finalTotal decimal.Decimal) {
	e.lg.Debug("applying discount rules",
		zap.String("cart_subtotal", cartSubtotal.StringFixed(2)),
		zap.Int("total_quantity", totalQuantity),
	)

	e.applyCategoryRule(items)

	currentTotal := decimal.Zero
	for i := range items {
		currentTotal = currentTotal.Add(items[i].Total)
	}
	e.lg.Debug("total after item-level discounts", zap.String("total", currentTotal.StringFixed(2)))

	cartDiscounts = []Discount{}

	if d, ok := e.volumeDiscount(currentTotal, totalQuantity); ok {
		cartDiscounts = append(cartDiscounts, d)
		currentTotal = round2(floorAtZero(currentTotal.Sub(d.Amount)))
		e.lg.Debug("volume discount applied",
			zap.String("code", d.Code),
			zap.String("amount", d.Amount.StringFixed(2)),
			zap.String("total", currentTotal.StringFixed(2)),
		)
	}

	if d, ok := e.cartValueDiscount(currentTotal); ok {
		cartDiscounts = append(cartDiscounts, d)
		currentTotal = round2(floorAtZero(currentTotal.Sub(d.Amount)))
		e.lg.Debug("cart value discount applied",
			zap.String("code", d.Code),
			zap.String("amount", d.Amount.StringFixed(2)),
			zap.String("total", currentTotal.StringFixed(2)),
		)
	}

	return cartDiscounts, round2(floorAtZero(currentTotal))
}

// applyCategoryRule gives 5% off every accessory item when the cart holds
// strictly more than accessoryQtyThreshold accessory units. The discount is
// computed per item against that item's own subtotal, rounded independently,
// and capped at the subtotal. Non-accessory items are untouched.
func (e *Engine) applyCategoryRule(items []LineItem) {
	accessoryQty := 0
	for i := range items {
		if items[i].Category == catalog.CategoryAccessories {
			accessoryQty += items[i].Quantity
		}
	}
	if accessoryQty <= accessoryQtyThreshold {
		return
	}

	for i := range items {
		item := &items[i]
		if item.Category != catalog.CategoryAccessories {
			continue
		}

		amount := round2(item.Subtotal.Mul(accessoryPct))
		amount = floorAtZero(decimal.Min(amount, item.Subtotal))

		item.Discounts = append(item.Discounts, Discount{
			Code:   codeCategoryAccessories,
			Name:   nameCategoryAccessories,
			Basis:  round2(item.Subtotal),
			Amount: amount,
			Metadata: map[string]any{
				"productId": item.ProductID,
				"category":  catalog.CategoryAccessories,
				"threshold": accessoryQtyThreshold,
			},
		})
		item.Total = round2(item.Subtotal.Sub(amount))

		e.lg.Debug("category discount applied",
			zap.String("product_id", item.ProductID),
			zap.String("amount", amount.StringFixed(2)),
		)
	}
}

// volumeDiscount computes the quantity-tier discount against the given basis.
// The tier is chosen by the original unit count, not by monetary value.
func (e *Engine) volumeDiscount(basis decimal.Decimal, totalQuantity int) (Discount, bool) {
	for _, tier := range volumeTiers {
		if totalQuantity < tier.MinQuantity {
			continue
		}
		return Discount{
			Code:   tier.Code,
			Name:   tier.Name,
			Basis:  round2(basis),
			Amount: round2(basis.Mul(tier.Percent)),
			Metadata: map[string]any{
				"totalItems": totalQuantity,
				"tier":       tier.Label,
			},
		}, true
	}
	return Discount{}, false
}

// cartValueDiscount computes the flat discount for carts whose post-volume
// total crosses a value threshold.
func (e *Engine) cartValueDiscount(basis decimal.Decimal) (Discount, bool) {
	for _, tier := range cartValueTiers {
		if basis.LessThan(tier.Threshold) {
			continue
		}
		return Discount{
			Code:   tier.Code,
			Name:   nameCartValue,
			Basis:  round2(basis),
			Amount: tier.Amount,
			Metadata: map[string]any{
				"threshold": tier.Threshold.IntPart(),
			},
		}, true
	}
	return Discount{}, false
}
