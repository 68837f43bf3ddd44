package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/report"
	"github.com/recopesa/intake-backend/internal/repository"
)

// CatalogService is thin CRUD over the reference data reports point at:
// products, suppliers and staff users.
type CatalogService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	users     repository.UserRepository
}

func NewCatalogService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	users repository.UserRepository,
) *CatalogService {
	return &CatalogService{products: products, suppliers: suppliers, users: users}
}

type ProductInput struct {
	Name            string  `json:"name"`
	PricePerQuintal float64 `json:"pricePerQuintal"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &report.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.PricePerQuintal < 0 {
		return nil, &report.ValidationError{Field: "pricePerQuintal", Reason: "must not be negative"}
	}

	now := time.Now()
	p := &domain.Product{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		PricePerQuintal: in.PricePerQuintal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		p.Name = strings.TrimSpace(in.Name)
	}
	if in.PricePerQuintal < 0 {
		return nil, &report.ValidationError{Field: "pricePerQuintal", Reason: "must not be negative"}
	}
	p.PricePerQuintal = in.PricePerQuintal
	p.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]*domain.Product, error) {
	return s.products.List(ctx, search)
}

type SupplierInput struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Representative string `json:"representative"`
}

func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &report.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	now := time.Now()
	sup := &domain.Supplier{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Address:        in.Address,
		Phone:          in.Phone,
		Representative: in.Representative,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*domain.Supplier, error) {
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		sup.Name = strings.TrimSpace(in.Name)
	}
	sup.Address = in.Address
	sup.Phone = in.Phone
	sup.Representative = in.Representative
	sup.UpdatedAt = time.Now()

	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	return s.suppliers.Delete(ctx, id)
}

func (s *CatalogService) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

func (s *CatalogService) ListSuppliers(ctx context.Context, search string) ([]*domain.Supplier, error) {
	return s.suppliers.List(ctx, search)
}

type UserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (s *CatalogService) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, &report.ValidationError{Field: "email", Reason: "must not be empty"}
	}

	now := time.Now()
	u := &domain.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
