package ledger

// MovementType classifies a stock movement in the ledger
type MovementType string

const (
	// MovementTypePurchase represents goods received against a purchase (receipt approval)
	MovementTypePurchase MovementType = "PURCHASE"
	// MovementTypeSale represents stock leaving through a sale
	MovementTypeSale MovementType = "SALE"
	// MovementTypeCustomerReturn represents resellable stock restored by an approved customer return
	MovementTypeCustomerReturn MovementType = "CUSTOMER_RETURN"
	// MovementTypeReplacementIssued represents stock handed out as a replacement for a returned item
	MovementTypeReplacementIssued MovementType = "REPLACEMENT_ISSUED"
	// MovementTypeAdjustment represents a manual stock correction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeTransfer represents stock moved between locations
	MovementTypeTransfer MovementType = "TRANSFER"
	// MovementTypeOpeningStock represents initial stock entered when onboarding a product
	MovementTypeOpeningStock MovementType = "OPENING_STOCK"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSale,
		MovementTypeCustomerReturn,
		MovementTypeReplacementIssued,
		MovementTypeAdjustment,
		MovementTypeTransfer,
		MovementTypeOpeningStock:
		return true
	}
	return false
}

// ReferenceKind identifies the document type a movement points back to.
// Movements reference their triggering document as a tagged {kind, id} pair
// instead of a type hierarchy; consumers switch on the kind.
type ReferenceKind string

const (
	ReferenceKindGoodsReceipt   ReferenceKind = "GOODS_RECEIPT"
	ReferenceKindPurchaseOrder  ReferenceKind = "PURCHASE_ORDER"
	ReferenceKindCustomerReturn ReferenceKind = "CUSTOMER_RETURN"
	ReferenceKindReplacement    ReferenceKind = "REPLACEMENT"
	ReferenceKindAdjustment     ReferenceKind = "ADJUSTMENT"
	ReferenceKindOpeningStock   ReferenceKind = "OPENING_STOCK"
)

// IsValid returns true if the reference kind is valid
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceKindGoodsReceipt,
		ReferenceKindPurchaseOrder,
		ReferenceKindCustomerReturn,
		ReferenceKindReplacement,
		ReferenceKindAdjustment,
		ReferenceKindOpeningStock:
		return true
	}
	return false
}
