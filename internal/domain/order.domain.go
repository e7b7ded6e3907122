package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentApproved    PaymentStatus = "approved"
	PaymentAuthorized  PaymentStatus = "authorized"
	PaymentInProcess   PaymentStatus = "in_process"
	PaymentInMediation PaymentStatus = "in_mediation"
	PaymentRejected    PaymentStatus = "rejected"
	PaymentCancelled   PaymentStatus = "cancelled"
	PaymentRefunded    PaymentStatus = "refunded"
	PaymentChargedBack PaymentStatus = "charged_back"
)

// MapPaymentStatus translates the provider vocabulary into the internal enum.
// Unrecognized values fall back to pending so a callback is never rejected.
func MapPaymentStatus(providerStatus string) PaymentStatus {
	switch strings.ToLower(providerStatus) {
	case "approved":
		return PaymentApproved
	case "pending":
		return PaymentPending
	case "authorized":
		return PaymentAuthorized
	case "in_process":
		return PaymentInProcess
	case "in_mediation":
		return PaymentInMediation
	case "rejected":
		return PaymentRejected
	case "cancelled":
		return PaymentCancelled
	case "refunded":
		return PaymentRefunded
	case "charged_back":
		return PaymentChargedBack
	default:
		return PaymentPending
	}
}

type PaymentType string

const (
	PaymentTypeCreditCard    PaymentType = "credit_card"
	PaymentTypeDebitCard     PaymentType = "debit_card"
	PaymentTypeBankTransfer  PaymentType = "bank_transfer"
	PaymentTypeTicket        PaymentType = "ticket"
	PaymentTypeDigitalWallet PaymentType = "digital_wallet"
	PaymentTypeOther         PaymentType = "other"
)

func MapPaymentType(providerType string) PaymentType {
	switch strings.ToLower(providerType) {
	case "credit_card":
		return PaymentTypeCreditCard
	case "debit_card":
		return PaymentTypeDebitCard
	case "bank_transfer":
		return PaymentTypeBankTransfer
	case "ticket":
		return PaymentTypeTicket
	case "digital_wallet":
		return PaymentTypeDigitalWallet
	default:
		return PaymentTypeOther
	}
}

type OrderItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Desc       string  `json:"description,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	PictureURL string  `json:"picture_url,omitempty"`
}

type PayerData struct {
	Name          string `json:"name,omitempty"`
	Surname       string `json:"surname,omitempty"`
	Email         string `json:"email,omitempty"`
	PhoneAreaCode string `json:"phone_area_code,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	CPF           string `json:"cpf,omitempty"`
	ZipCode       string `json:"zip_code,omitempty"`
	StreetName    string `json:"street_name,omitempty"`
	StreetNumber  int    `json:"street_number,omitempty"`
}

// Order keys on ExternalReference, the sole correlation between checkout
// creation and later provider callbacks.
type Order struct {
	ExternalReference string        `json:"external_reference"`
	PaymentID         *string       `json:"payment_id,omitempty"`
	CollectionID      *string       `json:"collection_id,omitempty"`
	MerchantOrderID   *string       `json:"merchant_order_id,omitempty"`
	PreferenceID      *string       `json:"preference_id,omitempty"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	CollectionStatus  *string       `json:"collection_status,omitempty"`
	PaymentType       *PaymentType  `json:"payment_type,omitempty"`
	ProcessingMode    *string       `json:"processing_mode,omitempty"`
	Items             []OrderItem   `json:"items"`
	TotalAmount       float64       `json:"total_amount"`
	Currency          string        `json:"currency"`
	Payer             *PayerData    `json:"payer,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	PaymentDate       *time.Time    `json:"payment_date,omitempty"`
}

// OrderCallback carries the fields a provider redirect or webhook reports
// back for one order.
type OrderCallback struct {
	Status           string
	PaymentID        string
	CollectionID     string
	CollectionStatus string
	MerchantOrderID  string
	PaymentType      string
	ProcessingMode   string
}
