package impact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaigns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "IRabc", user)
		assert.Equal(t, "tok", pass)
		assert.Equal(t, "/Mediapartners/IRabc/Campaigns", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("Page"))
		_, _ = w.Write([]byte(`{"@nextpageuri":"/Mediapartners/IRabc/Campaigns?Page=3","Campaigns":[
			{"CampaignId":"1001","CampaignName":"Leaf Shoes","CampaignLogoUri":"/logo.png","CampaignUrl":"https://leaf.example","ContractStatus":"Active"},
			{"CampaignId":"1002","CampaignName":"Old Deal","ContractStatus":"Expired"},
			{"CampaignName":"missing id"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "IRabc", "tok", time.Second)
	got, more, err := c.Campaigns(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, got, 2)
	assert.Equal(t, "Leaf Shoes", got[0].Name)
	assert.True(t, got[0].Active)
	assert.False(t, got[1].Active)
}

func TestNewRequiresCredentials(t *testing.T) {
	assert.Nil(t, New("https://api.impact.com", "IRabc", "", 0))
}
