package storefront

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Client は Lumière API の型付きクライアント
type Client struct {
	baseURL string
	http    *http.Client
}

// httpClient が nil なら30秒タイムアウトのクライアントを使う
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// User はフロントで使うユーザー情報
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type LoginResult struct {
	User  User        `json:"user"`
	Token AccessToken `json:"token"`
}

type LineItem struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type CheckoutRequest struct {
	Items      []LineItem `json:"items"`
	SuccessURL string     `json:"successUrl,omitempty"`
	CancelURL  string     `json:"cancelUrl,omitempty"`
}

type CreateOrderRequest struct {
	Items           []LineItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	StripeSessionID string          `json:"stripeSessionId,omitempty"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    model.Category  `json:"category"`
	Image       string          `json:"image"`
	Stock       int64           `json:"stock"`
}

type Recommendation struct {
	RecommendedIDs []string `json:"recommendedIds"`
	Reasoning      string   `json:"reasoning"`
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out struct {
		Products []model.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		out.Products = []model.Product{}
	}
	return out.Products, nil
}

func (c *Client) Search(ctx context.Context, q string) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/search?q="+url.QueryEscape(q), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

func (c *Client) AdminProfile(ctx context.Context, token string) (bool, error) {
	var out struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/profile", token, nil, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var out struct {
		Orders []model.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []model.Order{}
	}
	return out.Orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (model.Order, error) {
	var out struct {
		Order model.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", token, req, &out); err != nil {
		return model.Order{}, err
	}
	return out.Order, nil
}

// Checkout は決済ページのURLを返す
func (c *Client) Checkout(ctx context.Context, token string, req CheckoutRequest) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/checkout", token, req, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &APIError{Status: http.StatusOK, Message: "missing checkout url", kind: ErrUpstream}
	}
	return out.URL, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (model.Product, error) {
	var out struct {
		Product model.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/products", token, in, &out); err != nil {
		return model.Product{}, err
	}
	return out.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), token, nil, nil)
}

// UploadImage は multipart の file フィールドで送って公開URLを返す
func (c *Client) UploadImage(ctx context.Context, token string, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setBearer(req, token)

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Recommend(ctx context.Context, query string) (Recommendation, error) {
	var out Recommendation
	if err := c.do(ctx, http.MethodPost, "/api/ai-stylist", "", map[string]string{"query": query}, &out); err != nil {
		return Recommendation{}, err
	}
	return out, nil
}

// WatchOrderStatus は /api/orders/events を読み続け、イベントごとに fn を呼ぶ。
// ctx が終わるかストリームが切れるまで戻らない。
func (c *Client) WatchOrderStatus(ctx context.Context, token string, fn func(model.OrderStatusChanged)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	setBearer(req, token)

	// ストリームなのでタイムアウト無しのクライアントで開く
	streamClient := *c.http
	streamClient.Timeout = 0

	res, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decodeError(res)
	}

	sc := bufio.NewScanner(res.Body)
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				var ev model.OrderStatusChanged
				if err := json.Unmarshal([]byte(data.String()), &ev); err == nil {
					fn(ev)
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	if err := sc.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setBearer(req, token)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeError(res)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, req.URL.Path, err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body)
	return newAPIError(res.StatusCode, body.Message)
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
