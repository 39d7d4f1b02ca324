package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/model"
)

type ClientSuite struct {
	suite.Suite
	server   *httptest.Server
	client   *Client
	lastPath string
	lastQS   map[string]string
	ctx      context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		if r.URL.Query().Get("steamid") == "private" {
			_, _ = w.Write([]byte(`{"response":{}}`))
			return
		}
		if r.URL.Query().Get("steamid") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"response":{"game_count":2,"games":[{"appid":10,"name":"Counter-Strike"},{"appid":620,"name":"Portal 2"}]}}`))
	})
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		switch r.URL.Query().Get("appids") {
		case "620":
			_, _ = w.Write([]byte(`{"620":{"success":true,"data":{"is_free":false,"header_image":"https://img/620.jpg","price_overview":{"currency":"ARS","final":1234500,"final_formatted":"ARS$ 12.345,00"}}}}`))
		case "570":
			_, _ = w.Write([]byte(`{"570":{"success":true,"data":{"is_free":true,"header_image":"https://img/570.jpg"}}}`))
		case "999":
			_, _ = w.Write([]byte(`{"999":{"success":false}}`))
		case "111":
			_, _ = w.Write([]byte(`{"111":{"success":true,"data":{"is_free":false,"header_image":"x"}}}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})
	mux.HandleFunc("/api/storesearch/", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		_, _ = w.Write([]byte(`{"total":6,"items":[
			{"id":1,"name":"A","tiny_image":"a"},{"id":2,"name":"B","tiny_image":"b"},
			{"id":3,"name":"C","tiny_image":"c"},{"id":4,"name":"D","tiny_image":"d"},
			{"id":5,"name":"E","tiny_image":"e"},{"id":6,"name":"F","tiny_image":"f"}]}`))
	})
	s.server = httptest.NewServer(mux)

	cfg := DefaultConfig()
	cfg.APIKey = "secret"
	cfg.APIBaseURL = s.server.URL
	cfg.StoreBaseURL = s.server.URL
	s.client = NewClient(cfg, s.server.Client())
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) record(r *http.Request) {
	s.lastPath = r.URL.Path
	s.lastQS = map[string]string{}
	for k, v := range r.URL.Query() {
		s.lastQS[k] = v[0]
	}
}

// GetOwnedItems tests

func (s *ClientSuite) TestGetOwnedItems() {
	items, err := s.client.GetOwnedItems(s.ctx, "7656")
	s.Require().NoError(err)

	s.Equal([]OwnedItem{{AppID: 10, Name: "Counter-Strike"}, {AppID: 620, Name: "Portal 2"}}, items)
	s.Equal("secret", s.lastQS["key"])
	s.Equal("7656", s.lastQS["steamid"])
	s.Equal("false", s.lastQS["include_played_free_games"])
}

func (s *ClientSuite) TestGetOwnedItemsPrivateProfileIsEmpty() {
	items, err := s.client.GetOwnedItems(s.ctx, "private")
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *ClientSuite) TestGetOwnedItemsNon200IsError() {
	_, err := s.client.GetOwnedItems(s.ctx, "broken")
	s.Error(err)
}

func (s *ClientSuite) TestGetOwnedItemsRequiresAPIKey() {
	client := NewClient(Config{APIBaseURL: s.server.URL}, s.server.Client())

	s.False(client.Configured())
	_, err := client.GetOwnedItems(s.ctx, "7656")
	s.ErrorIs(err, ErrMissingAPIKey)
}

// GetItemPriceInfo tests

func (s *ClientSuite) TestGetItemPriceInfoPaid() {
	info, err := s.client.GetItemPriceInfo(s.ctx, 620, "AR")
	s.Require().NoError(err)
	s.Require().NotNil(info)

	s.Equal(int64(1234500), info.PriceMinor)
	s.Equal(12345.0, info.Amount())
	s.Equal("ARS", info.Currency)
	s.Equal("https://img/620.jpg", info.Image)
	s.False(info.IsFree())
	s.Equal("AR", s.lastQS["cc"])
}

func (s *ClientSuite) TestGetItemPriceInfoFree() {
	info, err := s.client.GetItemPriceInfo(s.ctx, 570, "US")
	s.Require().NoError(err)
	s.Require().NotNil(info)

	s.Equal(CurrencyFree, info.Currency)
	s.True(info.IsFree())
}

func (s *ClientSuite) TestGetItemPriceInfoUnsuccessfulIsAbsent() {
	info, err := s.client.GetItemPriceInfo(s.ctx, 999, "US")
	s.Require().NoError(err)
	s.Nil(info)
}

func (s *ClientSuite) TestGetItemPriceInfoWithoutPriceIsAbsent() {
	info, err := s.client.GetItemPriceInfo(s.ctx, 111, "US")
	s.Require().NoError(err)
	s.Nil(info)
}

func (s *ClientSuite) TestGetItemPriceInfoRateLimitedIsError() {
	_, err := s.client.GetItemPriceInfo(s.ctx, model.AppID(42), "US")
	s.Error(err)
}

// SearchCatalog tests

func (s *ClientSuite) TestSearchCatalogLimitsResults() {
	items, err := s.client.SearchCatalog(s.ctx, "portal", "UY")
	s.Require().NoError(err)

	s.Len(items, 5)
	s.Equal(model.AppID(1), items[0].AppID)
	s.Equal("portal", s.lastQS["term"])
	s.Equal("UY", s.lastQS["cc"])
}
