package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/form"
)

const bufSize = 1024 * 1024

func setupTestGRPC(t *testing.T, src stubSource) (*CatalogServiceClient, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(src, src, nil)
	store.Load(context.Background())

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer()
	RegisterCatalogServiceServer(srv, NewGRPCHandler(store, form.New()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewCatalogServiceClient(conn), store
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func listedIDs(t *testing.T, s *structpb.Struct) []int64 {
	t.Helper()
	var list ProductList
	require.NoError(t, fromStruct(s, &list))
	assert.Equal(t, len(list.Data), list.Total)
	return productIDs(list.Data)
}

func TestGRPCHandler_ListProducts(t *testing.T) {
	client, _ := setupTestGRPC(t, defaultSource())

	res, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, listedIDs(t, res))
}

func TestGRPCHandler_Unavailable(t *testing.T) {
	src := defaultSource()
	src.err = errors.New("upstream down")
	client, _ := setupTestGRPC(t, src)

	_, err := client.ListProducts(context.Background())
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = client.FilterProducts(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	st, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.GetFields()["available"].GetBoolValue())
}

func TestGRPCHandler_ListCategories(t *testing.T) {
	client, _ := setupTestGRPC(t, defaultSource())

	res, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"accessories", "clothing", "jewelery"}, res.AsSlice())
}

func TestGRPCHandler_AddProduct(t *testing.T) {
	client, store := setupTestGRPC(t, defaultSource())

	res, err := client.AddProduct(context.Background(), mustStruct(t, map[string]interface{}{
		"title": "Cap", "price": 5, "category": "accessories", "description": "a cap", "image": testImage,
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(4), res.GetFields()["id"].GetNumberValue())
	assert.Len(t, store.AllProducts(), 4)

	_, err = client.AddProduct(context.Background(), mustStruct(t, map[string]interface{}{
		"title": "Cap", "price": -1, "category": "accessories", "description": "a cap", "image": testImage,
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Len(t, store.AllProducts(), 4)
}

func TestGRPCHandler_UpdateProduct(t *testing.T) {
	client, store := setupTestGRPC(t, defaultSource())

	payload := map[string]interface{}{
		"id": 3, "title": "Silver Ring", "price": 60, "category": "jewelery", "description": "less shiny", "image": testImage,
	}
	_, err := client.UpdateProduct(context.Background(), mustStruct(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "Silver Ring", store.AllProducts()[2].Title)

	payload["id"] = 99
	_, err = client.UpdateProduct(context.Background(), mustStruct(t, payload))
	assert.Equal(t, codes.NotFound, status.Code(err))

	payload["id"] = 0
	_, err = client.UpdateProduct(context.Background(), mustStruct(t, payload))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_DeleteProduct(t *testing.T) {
	client, store := setupTestGRPC(t, defaultSource())

	_, err := client.DeleteProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, store.AllProducts(), 2)

	_, err = client.DeleteProduct(context.Background(), 2)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.DeleteProduct(context.Background(), -1)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_DeleteProduct_Closed(t *testing.T) {
	client, store := setupTestGRPC(t, defaultSource())
	store.Close()

	_, err := client.DeleteProduct(context.Background(), 1)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGRPCHandler_SearchAndFilter(t *testing.T) {
	client, _ := setupTestGRPC(t, defaultSource())

	_, err := client.SetSearchQuery(context.Background(), "r")
	require.NoError(t, err)

	res, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, listedIDs(t, res), "Red Shirt and Gold Ring contain r")

	res, err = client.FilterProducts(context.Background(), mustStruct(t, map[string]interface{}{
		"sort_order": "highToLow",
	}))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, listedIDs(t, res))

	res, err = client.FilterProducts(context.Background(), mustStruct(t, map[string]interface{}{
		"category": "clothing", "price_range": "above50",
	}))
	require.NoError(t, err)
	assert.Empty(t, listedIDs(t, res))

	_, err = client.FilterProducts(context.Background(), mustStruct(t, map[string]interface{}{
		"price_range": "free",
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUnaryLogger_PassesThrough(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/" + CatalogServiceName + "/DeleteProduct"}
	wantErr := status.Error(codes.NotFound, "missing")

	resp, err := UnaryLogger(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.Equal(t, "req", req)
		return nil, wantErr
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
