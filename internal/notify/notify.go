package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"houseoflove/pkg/models"
)

// NotificationError reports which order notification failed. For the owner
// alert Err joins the email and SMS failures.
type NotificationError struct {
	Op          string // "customer_confirmation" or "owner_alert"
	OrderNumber string
	Err         error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s for order %s: %v", e.Op, e.OrderNumber, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Dispatcher sends the order notifications. Senders are interfaces so tests
// and development setups can swap the real providers out.
type Dispatcher struct {
	Email      EmailSender
	SMS        SMSSender
	OwnerEmail string
	OwnerPhone string
	Currency   string
	Log        *zap.Logger
}

// New validates cfg and wires the EmailJS and Twilio senders.
func New(cfg Config, log *zap.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	client := &http.Client{Timeout: cfg.Timeout}
	return &Dispatcher{
		Email: &EmailJSSender{
			BaseURL:    cfg.EmailJSBaseURL,
			ServiceID:  cfg.EmailJSServiceID,
			TemplateID: cfg.EmailJSTemplateID,
			PublicKey:  cfg.EmailJSPublicKey,
			PrivateKey: cfg.EmailJSPrivateKey,
			Client:     client,
		},
		SMS: &TwilioSender{
			BaseURL:    cfg.TwilioBaseURL,
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
			Client:     client,
		},
		OwnerEmail: cfg.OwnerEmail,
		OwnerPhone: cfg.OwnerPhone,
		Currency:   "KSH",
		Log:        orNop(log),
	}, nil
}

// NewLogOnly returns a Dispatcher that writes every message to the log
// instead of sending it. The API server uses it when no provider is set up.
func NewLogOnly(log *zap.Logger) *Dispatcher {
	s := &LogSender{Log: orNop(log)}
	return &Dispatcher{Email: s, SMS: s, OwnerEmail: "owner@localhost", OwnerPhone: "+0", Currency: "KSH", Log: orNop(log)}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// FormatOrderItems renders one "<name> x<qty> - <line total> KSH" line per item.
func FormatOrderItems(items []models.CartItem, currency string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s x%d - %s %s", it.Name, it.Quantity, it.LineTotal().String(), currency))
	}
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) params(order models.Order, to string) EmailParams {
	return EmailParams{
		ToEmail:      to,
		OrderNumber:  order.Number,
		OrderTotal:   order.Total.String(),
		OrderItems:   FormatOrderItems(order.Items, d.Currency),
		CustomerName: order.CustomerName,
	}
}

func (d *Dispatcher) SendCustomerConfirmation(ctx context.Context, order models.Order, email string) error {
	if err := d.Email.SendEmail(ctx, d.params(order, email)); err != nil {
		d.Log.Error("customer confirmation failed", zap.String("order", order.Number), zap.Error(err))
		return &NotificationError{Op: "customer_confirmation", OrderNumber: order.Number, Err: err}
	}
	d.Log.Info("customer confirmation sent", zap.String("order", order.Number))
	return nil
}

// SendOwnerAlert emails and texts the owner. Both are attempted; the call
// fails if either does.
func (d *Dispatcher) SendOwnerAlert(ctx context.Context, order models.Order) error {
	p := d.params(order, d.OwnerEmail)
	p.CustomerEmail = order.CustomerEmail
	emailErr := d.Email.SendEmail(ctx, p)

	msg := fmt.Sprintf("New order #%s! Amount: %s %s from %s", order.Number, order.Total.String(), d.Currency, order.CustomerName)
	smsErr := d.SMS.SendSMS(ctx, d.OwnerPhone, msg)

	if err := errors.Join(emailErr, smsErr); err != nil {
		d.Log.Error("owner alert failed", zap.String("order", order.Number), zap.Error(err))
		return &NotificationError{Op: "owner_alert", OrderNumber: order.Number, Err: err}
	}
	d.Log.Info("owner alert sent", zap.String("order", order.Number))
	return nil
}

// LogSender logs messages instead of delivering them.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) SendEmail(_ context.Context, p EmailParams) error {
	s.Log.Info("email (not sent)",
		zap.String("to", p.ToEmail),
		zap.String("order", p.OrderNumber),
		zap.String("total", p.OrderTotal),
	)
	return nil
}

func (s *LogSender) SendSMS(_ context.Context, to, body string) error {
	s.Log.Info("sms (not sent)", zap.String("to", to), zap.String("body", body))
	return nil
}
