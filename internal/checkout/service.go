package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"houseoflove/internal/cart"
	"houseoflove/pkg/models"
)

const EventOrderPlaced = "order.placed"

var ErrEmptyCart = errors.New("cart is empty")

type Notifier interface {
	SendCustomerConfirmation(ctx context.Context, order models.Order, email string) error
	SendOwnerAlert(ctx context.Context, order models.Order) error
}

type Publisher interface {
	Publish(profileID, eventType string, payload any)
}

type Customer struct {
	Name  string `json:"name" binding:"required,max=120"`
	Email string `json:"email" binding:"required,email"`
}

// Result is a placed order. The order is recorded even when Notification
// or CartWarning is set.
type Result struct {
	Order        models.Order
	Notification error
	CartWarning  error
}

type Service struct {
	Repo     *Repo
	Notifier Notifier
	Events   Publisher
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(repo *Repo, n Notifier, events Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Notifier: n, Events: events, Log: log, Now: time.Now}
}

// NewOrderNumber returns a number like HOL-1A2B3C4D.
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "HOL-" + strings.ToUpper(hex[:8])
}

// Checkout records the cart as an order, empties the cart and sends the
// customer confirmation and owner alert.
func (s *Service) Checkout(ctx context.Context, c *cart.Store, profileID, userID string, cust Customer) (Result, error) {
	items, total, clearErr := c.Take(ctx)
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	order := models.Order{
		Number:        NewOrderNumber(),
		UserID:        userID,
		ProfileID:     profileID,
		CustomerName:  strings.TrimSpace(cust.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(cust.Email)),
		Items:         items,
		Total:         total,
		CreatedAt:     s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, order); err != nil {
		if rerr := c.Restore(ctx, items); rerr != nil {
			s.Log.Warn("cart restore not persisted", zap.String("profile", profileID), zap.Error(rerr))
		}
		return Result{}, fmt.Errorf("record order: %w", err)
	}
	s.Log.Info("order placed",
		zap.String("order", order.Number),
		zap.String("profile", profileID),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(items)),
	)

	res := Result{Order: order, CartWarning: clearErr}

	if s.Notifier != nil {
		res.Notification = errors.Join(
			s.Notifier.SendCustomerConfirmation(ctx, order, order.CustomerEmail),
			s.Notifier.SendOwnerAlert(ctx, order),
		)
	}

	if s.Events != nil {
		s.Events.Publish(profileID, EventOrderPlaced, order)
		s.Events.Publish(profileID, cart.EventUpdate, cart.Summarize(c))
	}
	return res, nil
}
