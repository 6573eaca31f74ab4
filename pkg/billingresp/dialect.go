package billingresp

// FieldType is the semantic type a string leaf is coerced to.
type FieldType uint8

const (
	TypeBoolean FieldType = iota + 1
	TypeInteger
	TypeFloat
	TypeDate
	TypeDateTime
)

// Dialect holds the fixed lookup tables of one service's response dialect.
// A Dialect is immutable once built and safe to share between responses.
type Dialect struct {
	singular   map[Key]Key
	fieldTypes map[Key]FieldType
}

// NewDialect builds a dialect from a plural->singular collection table and a field->type table.
// Both maps are copied.
func NewDialect(collections map[Key]Key, fieldTypes map[Key]FieldType) *Dialect {
	d := &Dialect{
		singular:   make(map[Key]Key, len(collections)),
		fieldTypes: make(map[Key]FieldType, len(fieldTypes)),
	}
	for k, v := range collections {
		d.singular[k] = v
	}
	for k, v := range fieldTypes {
		d.fieldTypes[k] = v
	}
	return d
}

// Singular returns the element key used when a collection is collapsed to a single wrapper.
func (d *Dialect) Singular(collection Key) (Key, bool) {
	if d == nil {
		return "", false
	}
	s, ok := d.singular[collection]
	return s, ok
}

// FieldType returns the semantic type registered for a field.
func (d *Dialect) FieldType(field Key) (FieldType, bool) {
	if d == nil {
		return 0, false
	}
	t, ok := d.fieldTypes[field]
	return t, ok
}

// Canonical keys used by the accessors.
const (
	KeyPlans         Key = "plans"
	KeyItems         Key = "items"
	KeySubscriptions Key = "subscriptions"
	KeyCustomers     Key = "customers"
	KeyInvoices      Key = "invoices"
	KeyCharges       Key = "charges"
	KeyTransactions  Key = "transactions"
	KeyErrors        Key = "errors"
	KeyError         Key = "error"
	KeyPromotions    Key = "promotions"

	KeyCode              Key = "code"
	KeyText              Key = "text"
	KeyFieldName         Key = "fieldName"
	KeyAuxCode           Key = "auxCode"
	KeyErrorType         Key = "errorType"
	KeyQuantity          Key = "quantity"
	KeyIncludedQuantity  Key = "includedQuantity"
	KeyOverageAmount     Key = "overageAmount"
	KeyCanceledDatetime  Key = "canceledDatetime"
	KeyBillingDatetime   Key = "billingDatetime"
	KeyPaidTransactionID Key = "paidTransactionId"
)

var defaultDialect = NewDialect(
	map[Key]Key{
		KeyPlans:         "plan",
		KeyItems:         "item",
		KeySubscriptions: "subscription",
		KeyCustomers:     "customer",
		KeyInvoices:      "invoice",
		KeyCharges:       "charge",
		KeyTransactions:  "transaction",
		KeyErrors:        KeyError,
		KeyPromotions:    "promotion",
		"incentives":     "incentive",
		"coupons":        "coupon",
	},
	map[Key]FieldType{
		"isActive":                 TypeBoolean,
		"isFree":                   TypeBoolean,
		"isPeriodic":               TypeBoolean,
		"isVatExempt":              TypeBoolean,
		"isApproved":               TypeBoolean,
		"isAmountInCents":          TypeBoolean,
		"trialDays":                TypeInteger,
		"billingFrequencyQuantity": TypeInteger,
		"number":                   TypeInteger,
		"duration":                 TypeInteger,
		"maxUses":                  TypeInteger,
		"setupChargeAmount":        TypeFloat,
		"recurringChargeAmount":    TypeFloat,
		"initialBillCount":         TypeInteger,
		"includedQuantity":         TypeFloat,
		"quantity":                 TypeFloat,
		"overageAmount":            TypeFloat,
		"eachAmount":               TypeFloat,
		"amount":                   TypeFloat,
		"vatRate":                  TypeFloat,
		"percentage":               TypeFloat,
		"ccExpirationDate":         TypeDate,
		"expirationDate":           TypeDate,
		"createdDatetime":          TypeDateTime,
		"modifiedDatetime":         TypeDateTime,
		"canceledDatetime":         TypeDateTime,
		"billingDatetime":          TypeDateTime,
		"transactedDatetime":       TypeDateTime,
		"firstContactDatetime":     TypeDateTime,
		"expirationDatetime":       TypeDateTime,
	},
)

// DefaultDialect returns the billing service's response dialect.
func DefaultDialect() *Dialect {
	return defaultDialect
}
