package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// StorefrontAcceptanceTestSuite drives the API through a real HTTP server
type StorefrontAcceptanceTestSuite struct {
	suite.Suite
	server    *httptest.Server
	db        *gorm.DB
	notifier  *services.MockNotifier
	uploadDir string
}

// SetupSuite runs once before all tests
func (suite *StorefrontAcceptanceTestSuite) SetupSuite() {
	os.Setenv("GO_ENV", "test")
	testutil.RequireTestEnvironment(suite.T())

	dir, err := os.MkdirTemp("", "storefront-acceptance-*")
	suite.Require().NoError(err)
	suite.uploadDir = dir

	suite.db = testutil.SetupTestDB(suite.T())
	suite.notifier = services.NewMockNotifier()
	router := testutil.NewRouter(suite.db, testutil.TestConfig(dir), services.NewLocalImageService(dir), suite.notifier)
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *StorefrontAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	os.RemoveAll(suite.uploadDir)
}

// SetupTest runs before each test
func (suite *StorefrontAcceptanceTestSuite) SetupTest() {
	// Clean up database before each test
	suite.db.Exec("DELETE FROM order_lines")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM clients")
	suite.notifier.Clear()
}

func (suite *StorefrontAcceptanceTestSuite) do(req *http.Request) (*http.Response, map[string]interface{}) {
	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	var body map[string]interface{}
	if len(raw) > 0 {
		suite.Require().NoError(json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (suite *StorefrontAcceptanceTestSuite) sendJSON(method, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	return suite.do(req)
}

func (suite *StorefrontAcceptanceTestSuite) createProduct(name, price, photo string) map[string]interface{} {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("name", name)
	writer.WriteField("price", price)
	writer.WriteField("type", "Pastéis")
	if photo != "" {
		part, err := writer.CreateFormFile("photo", photo)
		suite.Require().NoError(err)
		part.Write([]byte("image bytes of " + name))
	}
	suite.Require().NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, suite.server.URL+"/api/v1/products", body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, response := suite.do(req)
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	return response["data"].(map[string]interface{})
}

func (suite *StorefrontAcceptanceTestSuite) createClient(email string) map[string]interface{} {
	resp, response := suite.sendJSON(http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"name":         "C1",
		"email":        email,
		"phone":        "11999999999",
		"birth_date":   "1990-01-15",
		"address":      "Rua Exemplo, 123",
		"complement":   "Apto 12",
		"neighborhood": "Centro",
		"zip_code":     "12345-678",
	})
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	return response["data"].(map[string]interface{})
}

func id(data map[string]interface{}) uint {
	return uint(data["id"].(float64))
}

// TestPlaceOrder walks a client through placing an order
func (suite *StorefrontAcceptanceTestSuite) TestPlaceOrder() {
	client := suite.createClient("c1@x.test")
	p1 := suite.createProduct("P1", "50.00", "p1.png")
	p2 := suite.createProduct("P2", "30.00", "")
	suite.Nil(p2["photo_url"])

	resp, response := suite.sendJSON(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_id": id(client),
		"products": []map[string]interface{}{
			{"product_id": id(p1), "quantity": 2},
			{"product_id": id(p2), "quantity": 1},
		},
	})
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	suite.Equal(true, response["success"])
	suite.NotEmpty(resp.Header.Get("X-Request-ID"))

	order := response["data"].(map[string]interface{})
	suite.Equal("130.00", order["total"])
	lines := order["lines"].([]interface{})
	suite.Require().Len(lines, 2)
	first := lines[0].(map[string]interface{})
	suite.Equal("P1", first["name"])
	suite.Equal("100.00", first["subtotal"])
	suite.Equal(p1["photo_url"], first["photo_url"])

	// The photo in the order is reachable
	photo, err := http.Get(suite.server.URL + first["photo_url"].(string))
	suite.Require().NoError(err)
	photo.Body.Close()
	suite.Equal(http.StatusOK, photo.StatusCode)

	notifications := suite.notifier.GetNotifications()
	suite.Require().Len(notifications, 1)
	suite.Equal("c1@x.test", notifications[0].To)

	resp, response = suite.sendJSON(http.MethodGet, fmt.Sprintf("/api/v1/clients/%d", id(client)), nil)
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	detail := response["data"].(map[string]interface{})
	suite.Equal("Apto 12", detail["complement"])
	suite.Equal("1990-01-15", detail["birth_date"])
	suite.Len(detail["orders"], 1)
}

// TestErrorEnvelope checks the shape of failures a caller can act on
func (suite *StorefrontAcceptanceTestSuite) TestErrorEnvelope() {
	client := suite.createClient("c1@x.test")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"missing products", http.MethodPost, "/api/v1/orders", map[string]interface{}{"client_id": id(client)}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unknown client", http.MethodPost, "/api/v1/orders", map[string]interface{}{"client_id": 999, "products": []map[string]interface{}{{"product_id": 1, "quantity": 1}}}, http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND"},
		{"unknown order", http.MethodGet, "/api/v1/orders/999", nil, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"malformed id", http.MethodGet, "/api/v1/products/abc", nil, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"duplicate email", http.MethodPost, "/api/v1/clients", map[string]interface{}{
			"name": "Other", "email": "c1@x.test", "phone": "11988887777", "birth_date": "1985-03-02",
			"address": "Rua B, 1", "neighborhood": "Centro", "zip_code": "54321-000",
		}, http.StatusConflict, "EMAIL_EXISTS"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			resp, response := suite.sendJSON(tt.method, tt.path, tt.body)
			suite.Equal(tt.status, resp.StatusCode)
			suite.Equal(false, response["success"])
			suite.Equal(tt.code, response["error"].(map[string]interface{})["code"])
		})
	}
	suite.Empty(suite.notifier.GetNotifications())
}

// TestDeleteFlow removes records from listings while keeping order history
func (suite *StorefrontAcceptanceTestSuite) TestDeleteFlow() {
	client := suite.createClient("c1@x.test")
	product := suite.createProduct("P1", "50.00", "")

	resp, response := suite.sendJSON(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_id": id(client),
		"products":  []map[string]interface{}{{"product_id": id(product), "quantity": 1}},
	})
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	orderID := id(response["data"].(map[string]interface{}))

	resp, _ = suite.sendJSON(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id(product)), nil)
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp, response = suite.sendJSON(http.MethodGet, "/api/v1/products", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Empty(response["data"])

	// The order still shows the removed product
	resp, response = suite.sendJSON(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	line := response["data"].(map[string]interface{})["lines"].([]interface{})[0].(map[string]interface{})
	suite.Equal("P1", line["name"])
	suite.Equal("50.00", line["price_at_purchase"])

	resp, _ = suite.sendJSON(http.MethodDelete, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp, response = suite.sendJSON(http.MethodGet, "/api/v1/orders", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(float64(0), response["meta"].(map[string]interface{})["total"])
}

func TestStorefrontAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(StorefrontAcceptanceTestSuite))
}
