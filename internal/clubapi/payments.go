package clubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"club-dashboard-backend/internal/payment"
)

const (
	pathPaymentInitiate = "api/payments/initiate/"
	pathPaymentStatus   = "api/payments/status/"
)

// initiateResponse accepts the field spellings the payment endpoints have
// used over time.
type initiateResponse struct {
	URL                   string `json:"url"`
	RedirectURL           string `json:"redirect_url"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	CorrelationID         string `json:"correlation_id"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// InitiatePayment implements payment.Gateway.
func (c *Client) InitiatePayment(ctx context.Context, transactionID int) (payment.Initiation, error) {
	in := map[string]int{"transaction_id": transactionID}
	var out initiateResponse
	if err := c.do(ctx, http.MethodPost, pathPaymentInitiate, in, &out); err != nil {
		return payment.Initiation{}, err
	}
	return payment.Initiation{
		RedirectURL:   firstNonEmpty(out.URL, out.RedirectURL),
		CorrelationID: firstNonEmpty(out.MerchantTransactionID, out.CorrelationID),
	}, nil
}

// CheckPaymentStatus implements payment.Gateway.
func (c *Client) CheckPaymentStatus(ctx context.Context, correlationID string) (payment.GatewayStatus, error) {
	if correlationID == "" {
		return payment.GatewayStatus{}, fmt.Errorf("check payment status: empty correlation id")
	}
	var out payment.GatewayStatus
	path := pathPaymentStatus + url.PathEscape(correlationID) + "/"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return payment.GatewayStatus{}, err
	}
	return out, nil
}
