// Package loyalize is a small client for the Loyalize affiliate API.
package loyalize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const pageSize = 100

type Transaction struct {
	ID         string
	StoreID    string
	StoreName  string
	UserID     string // the sid we attach to tracking links
	SaleAmount decimal.Decimal
	Commission decimal.Decimal
	Currency   string
	Status     string
	Date       time.Time
	Raw        string
}

type Store struct {
	ID             string
	Name           string
	LogoURL        string
	WebsiteURL     string
	CommissionRate decimal.Decimal
	Active         bool
	Raw            string
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New returns nil when apiKey is empty.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transactions returns one page of transactions between from and to and
// whether more pages follow. Pages start at 0.
func (c *Client) Transactions(ctx context.Context, from, to time.Time, page int) ([]Transaction, bool, error) {
	q := url.Values{}
	q.Set("startDate", from.UTC().Format("2006-01-02"))
	q.Set("endDate", to.UTC().Format("2006-01-02"))
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(pageSize))
	body, err := c.get(ctx, "/api/v1/transactions", q)
	if err != nil {
		return nil, false, err
	}

	items, more := pageOf(body)
	out := make([]Transaction, 0, len(items))
	for _, it := range items {
		t := Transaction{
			ID:         firstString(it, "id", "transactionId"),
			StoreID:    firstString(it, "storeId", "store.id"),
			StoreName:  firstString(it, "storeName", "store.name"),
			UserID:     firstString(it, "sid", "tracking", "subId"),
			SaleAmount: decimalOf(it, "saleAmount", "orderTotal"),
			Commission: decimalOf(it, "shopperCommission", "commission"),
			Currency:   firstString(it, "currency"),
			Status:     strings.ToUpper(firstString(it, "status")),
			Raw:        it.Raw,
		}
		if d := firstString(it, "purchaseDate", "transactionDate", "createdAt"); d != "" {
			t.Date = parseTime(d)
		}
		if t.ID == "" {
			continue
		}
		out = append(out, t)
	}
	return out, more, nil
}

// Stores returns one page of the store catalog.
func (c *Client) Stores(ctx context.Context, page int) ([]Store, bool, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(pageSize))
	body, err := c.get(ctx, "/api/v1/stores", q)
	if err != nil {
		return nil, false, err
	}
	items, more := pageOf(body)
	out := make([]Store, 0, len(items))
	for _, it := range items {
		s := Store{
			ID:             firstString(it, "id"),
			Name:           firstString(it, "name"),
			LogoURL:        firstString(it, "imageUrl", "logoUrl", "logo"),
			WebsiteURL:     firstString(it, "homePage", "url", "websiteUrl"),
			CommissionRate: decimalOf(it, "commission.value", "commissionRate", "commission"),
			Active:         true,
			Raw:            it.Raw,
		}
		if v := it.Get("active"); v.Exists() {
			s.Active = v.Bool()
		}
		if s.ID == "" || s.Name == "" {
			continue
		}
		out = append(out, s)
	}
	return out, more, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (string, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(b)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return "", fmt.Errorf("loyalize status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(b) {
		return "", fmt.Errorf("loyalize: invalid json response")
	}
	return string(b), nil
}

// pageOf accepts a Spring page ({"content": [...], "last": bool}) or a bare array.
func pageOf(body string) ([]gjson.Result, bool) {
	root := gjson.Parse(body)
	if root.IsArray() {
		items := root.Array()
		return items, len(items) >= pageSize
	}
	items := root.Get("content").Array()
	if last := root.Get("last"); last.Exists() {
		return items, !last.Bool()
	}
	return items, len(items) >= pageSize
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func decimalOf(r gjson.Result, paths ...string) decimal.Decimal {
	for _, p := range paths {
		v := r.Get(p)
		if !v.Exists() || v.IsObject() || v.IsArray() {
			continue
		}
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
