// Package impact reads the campaign catalog of an Impact.com media partner account.
package impact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Campaign struct {
	ID         string
	Name       string
	LogoURL    string
	WebsiteURL string
	Active     bool
	Raw        string
}

type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
}

// New returns nil unless both credentials are set.
func New(baseURL, accountSID, authToken string, timeout time.Duration) *Client {
	if accountSID == "" || authToken == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Campaigns returns one page (starting at 1) and whether another follows.
func (c *Client) Campaigns(ctx context.Context, page int) ([]Campaign, bool, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("PageSize", "100")
	q.Set("Page", strconv.Itoa(page))
	endpoint := fmt.Sprintf("%s/Mediapartners/%s/Campaigns?%s", c.baseURL, url.PathEscape(c.accountSID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(b)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, false, fmt.Errorf("impact status %d: %s", resp.StatusCode, msg)
	}

	root := gjson.ParseBytes(b)
	var out []Campaign
	root.Get("Campaigns").ForEach(func(_, v gjson.Result) bool {
		cp := Campaign{
			ID:         v.Get("CampaignId").String(),
			Name:       v.Get("CampaignName").String(),
			LogoURL:    v.Get("CampaignLogoUri").String(),
			WebsiteURL: v.Get("CampaignUrl").String(),
			Active:     strings.EqualFold(v.Get("ContractStatus").String(), "Active"),
			Raw:        v.Raw,
		}
		if cp.ID != "" && cp.Name != "" {
			out = append(out, cp)
		}
		return true
	})
	more := root.Get("@nextpageuri").String() != ""
	return out, more, nil
}
