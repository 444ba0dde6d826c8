package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*remote.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return remote.NewClient(srv.URL+"/", srv.Client(), node, zap.NewNop()), srv
}

func TestListDecodesNumericAndTextPrices(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": 3, "name": "Vanilla", "details": "tub", "price": 4.5, "type": "cream", "size": "bulk", "productImage": "uploads/v.png"},
			{"id": 7, "name": "Lemon", "details": "cup", "price": "2.00", "type": "ice", "size": "single"}
		]`)
	})

	products, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(3), products[0].ID)
	assert.Equal(t, domain.Price("4.5"), products[0].Price)
	assert.Equal(t, "cream", products[0].Category)
	assert.Equal(t, domain.Price("2.00"), products[1].Price)
}

func TestListFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>maintenance</html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, tt.handler)
			_, err := client.List(context.Background())
			assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
		})
	}
}

func TestListTransportError(t *testing.T) {
	client, srv := newClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestCreateSendsMultipartForm(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Mango", r.FormValue("name"))
		assert.Equal(t, "sorbet", r.FormValue("details"))
		assert.Equal(t, "3.25", r.FormValue("price"))
		assert.Equal(t, "ice", r.FormValue("type"))
		assert.Equal(t, "single", r.FormValue("size"))

		file, header, err := r.FormFile("productImage")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "mango.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 99, "name": "Mango", "details": "sorbet", "price": 3.25,
			"type": "ice", "size": "single", "productImage": "uploads/17-mango.png",
		})
	})

	created, err := client.Create(context.Background(), domain.CreateRequest{
		Name: "Mango", Details: "sorbet", Price: "3.25", Category: "ice", Size: "single",
		Image: &domain.ImageUpload{Filename: "mango.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "uploads/17-mango.png", created.ProductImage)
}

func TestCreateOmitsCategoryAndSizeWhenEmpty(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasType := r.MultipartForm.Value["type"]
		_, hasSize := r.MultipartForm.Value["size"]
		assert.False(t, hasType)
		assert.False(t, hasSize)
		w.WriteHeader(http.StatusOK)
	})

	created, err := client.Create(context.Background(), domain.CreateRequest{
		Name: "Plain", Details: "d", Price: "1",
		Image: &domain.ImageUpload{Filename: "p.jpg", Data: []byte{0xff, 0xd8, 0xff}},
	})
	require.NoError(t, err)
	assert.Nil(t, created, "an empty body yields no server record")
}

func TestCreateForwardsCallerIdempotencyKey(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "retry-7", r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusCreated)
	})

	_, err := client.Create(context.Background(), domain.CreateRequest{
		Name: "Plain", Details: "d", Price: "1", IdempotencyKey: " retry-7 ",
		Image: &domain.ImageUpload{Filename: "p.jpg", Data: []byte{0x1}},
	})
	require.NoError(t, err)
}

func TestCreateRejectedStatus(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := client.Create(context.Background(), domain.CreateRequest{Name: "x", Image: &domain.ImageUpload{Filename: "x.png"}})
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestUpdateSendsJSONBody(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/products/4", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Renamed", body["name"])
		assert.Equal(t, "9.99", body["price"])
		assert.Equal(t, "yogurt", body["type"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Update(context.Background(), 4, domain.EditBuffer{
		Name: "Renamed", Details: "d", Price: "9.99", Category: "yogurt", Size: "bulk",
	})
	assert.NoError(t, err)
}

func TestDeleteStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/api/products/12", r.URL.Path)
				w.WriteHeader(tt.status)
			})

			err := client.Delete(context.Background(), 12)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
				return
			}
			assert.NoError(t, err)
		})
	}
}
