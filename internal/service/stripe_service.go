package service

import (
	"fmt"
	"os"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

// defaultDepositCents is charged when DEPOSIT_AMOUNT_CENTS is unset. The
// deposit is a flat hold, not a price: pricing is decided elsewhere.
const defaultDepositCents = 3000

type StripeService struct{}

func NewStripeService() *StripeService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeService{}
}

// CreateDepositSession opens a checkout session for the booking deposit and
// returns the redirect URL plus the session id persisted with the booking.
func (s *StripeService) CreateDepositSession(bookingCode, customerEmail, language string) (string, string, error) {
	amount := int64(defaultDepositCents)
	if v := os.Getenv("DEPOSIT_AMOUNT_CENTS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			amount = parsed
		}
	}

	successURL := os.Getenv("CHECKOUT_SUCCESS_URL")
	if successURL == "" {
		successURL = "http://localhost:3000/bookings/confirmation/?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := os.Getenv("CHECKOUT_CANCEL_URL")
	if cancelURL == "" {
		cancelURL = "http://localhost:3000/bookings/failed/?session_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("eur"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("SorrisoDental booking deposit %s", bookingCode)),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// ExpireSession closes an open checkout session whose booking was not
// admitted, so the payment link cannot be completed afterwards.
func (s *StripeService) ExpireSession(sessionID string) error {
	_, err := session.Expire(sessionID, &stripe.CheckoutSessionExpireParams{})
	return err
}

// RefundBySessionID refunds the deposit captured through a checkout session.
func (s *StripeService) RefundBySessionID(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return err
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no PaymentIntent found for session %s", sessionID)
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	_, err = refund.New(params)
	return err
}
