package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/filter"
	"storefront-catalog/internal/form"
)

// GRPCHandler implements catalog.v1.CatalogService over the catalog store.
type GRPCHandler struct {
	catalog  Catalog
	validate *form.Validator
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(c Catalog, v *form.Validator) *GRPCHandler {
	return &GRPCHandler{catalog: c, validate: v}
}

var _ CatalogServiceServer = (*GRPCHandler)(nil)

// --- Helper: Error Mapping ---
func mapCatalogErrorToGrpcStatus(err error, productID int64) error {
	if err == nil {
		return nil
	}
	log.Error().Err(err).Int64("product_id", productID).Msg("catalog operation failed")

	var ve form.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		return status.Errorf(codes.NotFound, "Product with ID %d not found", productID)
	case errors.Is(err, catalog.ErrClosed):
		return status.Error(codes.Unavailable, "Catalog is shutting down")
	default:
		return status.Errorf(codes.Internal, "Failed to process request for product ID %d: %v", productID, err)
	}
}

func (s *GRPCHandler) requireAvailable() error {
	st := s.catalog.Status()
	if st.Available() {
		return nil
	}
	if st.Products.Phase == catalog.PhaseFailed {
		return status.Errorf(codes.Unavailable, "Catalog unavailable: %s", st.Products.Reason)
	}
	return status.Error(codes.Unavailable, "Catalog unavailable: products have not loaded")
}

// --- CatalogService Methods Implementation ---

func (s *GRPCHandler) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.catalog.Status()
	out, err := toStruct(struct {
		Available bool `json:"available"`
		catalog.Status
	}{Available: st.Available(), Status: st})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode status: %v", err)
	}
	return out, nil
}

func (s *GRPCHandler) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.requireAvailable(); err != nil {
		return nil, err
	}
	return productListToStruct(s.catalog.Products())
}

func (s *GRPCHandler) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	categories := s.catalog.Categories()
	values := make([]interface{}, len(categories))
	for i, c := range categories {
		values[i] = c
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode categories: %v", err)
	}
	return list, nil
}

func (s *GRPCHandler) AddProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input domain.ProductInput
	if err := fromStruct(req, &input); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid product payload: %v", err)
	}
	if err := s.validate.ValidateInput(input); err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, 0)
	}
	created, err := s.catalog.AddProduct(input)
	if err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, 0)
	}
	log.Info().Int64("product_id", created.ID).Msg("gRPC AddProduct succeeded")
	return productToStruct(created)
}

func (s *GRPCHandler) UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var product domain.Product
	if err := fromStruct(req, &product); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid product payload: %v", err)
	}
	if err := s.validate.ValidateProduct(product); err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, product.ID)
	}
	if err := s.catalog.UpdateProduct(product); err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, product.ID)
	}
	return productToStruct(product)
}

func (s *GRPCHandler) DeleteProduct(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	productID := req.GetValue()
	if productID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Product ID must be a positive integer")
	}
	if err := s.catalog.DeleteProduct(productID); err != nil {
		return nil, mapCatalogErrorToGrpcStatus(err, productID)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandler) SetSearchQuery(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	s.catalog.SetSearchQuery(req.GetValue())
	return &emptypb.Empty{}, nil
}

// FilterProducts runs the filter pipeline over the search-filtered list.
// The request struct may carry category, price_range and sort_order; missing keys mean "all"/"none".
func (s *GRPCHandler) FilterProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAvailable(); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	c := filter.DefaultCriteria()
	if v := fields["category"].GetStringValue(); v != "" {
		c.Category = v
	}
	pr, err := domain.ParsePriceRange(fields["price_range"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	so, err := domain.ParseSortOrder(fields["sort_order"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	c.PriceRange, c.SortOrder = pr, so
	return productListToStruct(filter.Apply(s.catalog.Products(), c))
}

// --- Helper Functions for Conversion ---

// toStruct converts any JSON-encodable value into a structpb.Struct via its JSON form,
// so gRPC and HTTP clients see the same field names.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, v interface{}) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func productToStruct(p domain.Product) (*structpb.Struct, error) {
	out, err := toStruct(p)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode product %d: %v", p.ID, err)
	}
	return out, nil
}

func productListToStruct(products []domain.Product) (*structpb.Struct, error) {
	out, err := toStruct(ProductList{Data: products, Total: len(products)})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("Failed to encode %d products: %v", len(products), err))
	}
	return out, nil
}
