package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// SteamGame is an owned game served by FakeSteam
type SteamGame struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

type steamPrice struct {
	free     bool
	currency string
	minor    int64
}

// FakeSteam is an httptest server speaking the subset of the Steam Web API
// and storefront the app uses
type FakeSteam struct {
	Server *httptest.Server

	mu        sync.Mutex
	libraries map[string][]SteamGame
	prices    map[int64]steamPrice
	search    []SteamGame
	requests  int
}

// NewFakeSteam starts a FakeSteam. Close it with Server.Close.
func NewFakeSteam() *FakeSteam {
	f := &FakeSteam{
		libraries: make(map[string][]SteamGame),
		prices:    make(map[int64]steamPrice),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/", f.ownedGames)
	mux.HandleFunc("/api/appdetails", f.appDetails)
	mux.HandleFunc("/api/storesearch/", f.storeSearch)
	f.Server = httptest.NewServer(mux)
	return f
}

// URL is the base URL for both the API and the store
func (f *FakeSteam) URL() string {
	return f.Server.URL
}

// Close shuts down the server
func (f *FakeSteam) Close() {
	f.Server.Close()
}

// SetLibrary replaces a user's owned games
func (f *FakeSteam) SetLibrary(steamID string, games ...SteamGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.libraries[steamID] = games
}

// SetPrice prices an app in minor units of currency
func (f *FakeSteam) SetPrice(appID int64, currency string, minor int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[appID] = steamPrice{currency: currency, minor: minor}
}

// SetFree marks an app as free to play
func (f *FakeSteam) SetFree(appID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[appID] = steamPrice{free: true}
}

// SetSearchResults sets the items returned by every store search
func (f *FakeSteam) SetSearchResults(games ...SteamGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = games
}

// Requests returns the number of requests served
func (f *FakeSteam) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeSteam) ownedGames(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	games, ok := f.libraries[r.URL.Query().Get("steamid")]
	f.mu.Unlock()

	body := map[string]any{"response": map[string]any{}}
	if ok {
		body["response"] = map[string]any{"game_count": len(games), "games": games}
	}
	writeJSON(w, body)
}

func (f *FakeSteam) appDetails(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("appids")
	appID, _ := strconv.ParseInt(id, 10, 64)

	f.mu.Lock()
	f.requests++
	price, ok := f.prices[appID]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, map[string]any{id: map[string]any{"success": false}})
		return
	}

	data := map[string]any{
		"is_free":      price.free,
		"header_image": "https://cdn.example/" + id + ".jpg",
	}
	if !price.free {
		data["price_overview"] = map[string]any{
			"currency":        price.currency,
			"final":           price.minor,
			"final_formatted": price.currency + " " + strconv.FormatInt(price.minor, 10),
		}
	}
	writeJSON(w, map[string]any{id: map[string]any{"success": true, "data": data}})
}

func (f *FakeSteam) storeSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("term"))

	f.mu.Lock()
	f.requests++
	items := make([]map[string]any, 0, len(f.search))
	for _, g := range f.search {
		if strings.Contains(strings.ToLower(g.Name), term) {
			items = append(items, map[string]any{"id": g.AppID, "name": g.Name, "tiny_image": "tiny/" + g.Name})
		}
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{"total": len(items), "items": items})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
