package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, scope ListScope) ([]Order, error)
	ListPaidOrders(ctx context.Context) ([]Order, error)
	UpdateOrder(ctx context.Context, id string, set map[string]any, unset ...string) (*Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type repository struct {
	orders store.Collection[Order]
}

func NewRepository(orders store.Collection[Order]) Repository {
	return &repository{orders: orders}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	if err := r.orders.Insert(ctx, order.ID, order); err != nil {
		return fmt.Errorf("repository: insert order: %w", err)
	}
	return nil
}

func (r *repository) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	order, err := r.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: get order: %w", err)
	}
	return order, nil
}

func (r *repository) ListOrders(ctx context.Context, scope ListScope) ([]Order, error) {
	q := store.Query{OrderBy: "createdAt", Desc: true}
	if scope.UserID != "" {
		q.Filter = map[string]any{"userId": scope.UserID}
	}

	orders, err := r.orders.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repository: list orders: %w", err)
	}
	return orders, nil
}

func (r *repository) ListPaidOrders(ctx context.Context) ([]Order, error) {
	orders, err := r.orders.Find(ctx, store.Query{
		Exists:  []string{"paymentDetails"},
		OrderBy: "paymentDetails.timestamp",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("repository: list paid orders: %w", err)
	}
	return orders, nil
}

// UpdateOrder applies set and unset as a single document update.
func (r *repository) UpdateOrder(ctx context.Context, id string, set map[string]any, unset ...string) (*Order, error) {
	order, err := r.orders.Update(ctx, id, set, unset...)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: update order: %w", err)
	}
	return order, nil
}

func (r *repository) DeleteOrder(ctx context.Context, id string) error {
	if err := r.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("repository: delete order: %w", err)
	}
	return nil
}
