package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error. API errors keep their code, and in verbose
// mode the request id the server logged them under.
func (o *Output) PrintError(err error, verbose bool) {
	var apiErr *APIError
	isAPI := errors.As(err, &apiErr)

	if o.format == "json" {
		body := map[string]any{"message": err.Error()}
		if isAPI {
			body["message"] = apiErr.Message
			body["code"] = apiErr.Code
			body["status"] = apiErr.Status
			if verbose {
				body["request_id"] = apiErr.RequestID
			}
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if isAPI && verbose && apiErr.RequestID != "" {
		fmt.Fprintf(os.Stderr, "Request ID: %s\n", apiErr.RequestID)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case AuthResult:
		o.printAuthResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case TrophyList:
		o.printTrophies(v.Trophies)
	case Purchase:
		o.printPurchase(v)
	case PendingList:
		o.printPendingList(v)
	case Pending:
		o.printPending(v)
	case SearchResults:
		o.printSearchResults(v)
	case SyncResult:
		o.printSyncResult(v)
	case ReturnsResult:
		o.printReturnsResult(v)
	case CloseResult:
		o.printCloseResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Degraded bool   `json:"degraded"`
}

// AuthResult is the login response
type AuthResult struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Participant response type
type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Purchase response type
type Purchase struct {
	ID            int64   `json:"id"`
	ParticipantID int64   `json:"participant_id"`
	GameName      string  `json:"game_name"`
	GameAppID     *int64  `json:"game_appid"`
	Price         float64 `json:"price"`
}

// Trophy response type
type Trophy struct {
	ID            int64   `json:"id"`
	ParticipantID int64   `json:"participant_id"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	Position      int     `json:"position"`
	TotalSpent    float64 `json:"total_spent"`
}

// Standing response type
type Standing struct {
	Position    int         `json:"position"`
	Participant Participant `json:"participant"`
	Total       float64     `json:"total"`
	Purchases   []Purchase  `json:"purchases"`
	Trophies    []Trophy    `json:"trophies"`
}

// Leaderboard response type
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// TrophyList response type
type TrophyList struct {
	Trophies []Trophy `json:"trophies"`
}

// Pending response type
type Pending struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	GameName      string    `json:"game_name"`
	GameAppID     *int64    `json:"game_appid"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	DetectedAt    time.Time `json:"detected_at"`
}

// PendingList response type
type PendingList struct {
	Pending []Pending `json:"pending"`
}

// SearchResult response type
type SearchResult struct {
	AppID         int64   `json:"appid"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	DisplayPrice  string  `json:"display_price"`
	OriginalPrice string  `json:"original_price"`
	Currency      string  `json:"currency"`
}

// SearchResults response type
type SearchResults struct {
	Results []SearchResult `json:"results"`
}

// ParticipantSync response type
type ParticipantSync struct {
	Participant string `json:"participant"`
	NewGames    int    `json:"new_games"`
	SkippedFree int    `json:"skipped_free"`
	FirstSync   bool   `json:"first_sync"`
	Error       string `json:"error,omitempty"`
}

// SyncResult response type
type SyncResult struct {
	NewGames int               `json:"new_games"`
	Results  []ParticipantSync `json:"results"`
}

// RemovedItem response type
type RemovedItem struct {
	Participant string `json:"participant"`
	Game        string `json:"game"`
}

// ReturnsResult response type
type ReturnsResult struct {
	Removed        []RemovedItem `json:"removed"`
	RemovedPending []RemovedItem `json:"removed_pending"`
}

// Ranking response type
type Ranking struct {
	Position    int     `json:"position"`
	Participant string  `json:"participant"`
	Total       float64 `json:"total"`
}

// CloseResult response type
type CloseResult struct {
	Month    int       `json:"month"`
	Year     int       `json:"year"`
	Rankings []Ranking `json:"rankings"`
	Trophies []Trophy  `json:"trophies"`
}

func positionLabel(position int) string {
	switch position {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	case 5:
		return "shame"
	default:
		return fmt.Sprintf("#%d", position)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Storage: %s\n", h.Storage)
	if h.Degraded {
		fmt.Println("Degraded: yes (volatile fallback, data is not durable)")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Println("Logged in as admin")
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Standings) == 0 {
		fmt.Println("No participants")
		return
	}
	for _, s := range l.Standings {
		fmt.Printf("%2d. %-20s $%8.2f  (%d purchases, %d trophies)\n",
			s.Position, s.Participant.Name, s.Total, len(s.Purchases), len(s.Trophies))
	}
}

func (o *Output) printTrophies(trophies []Trophy) {
	if len(trophies) == 0 {
		fmt.Println("No trophies")
		return
	}
	for _, t := range trophies {
		fmt.Printf("  %04d-%02d  %-6s participant %d  $%.2f\n",
			t.Year, t.Month, positionLabel(t.Position), t.ParticipantID, t.TotalSpent)
	}
}

func (o *Output) printPurchase(p Purchase) {
	fmt.Printf("Purchase %d: %s for participant %d at $%.2f\n", p.ID, p.GameName, p.ParticipantID, p.Price)
}

func (o *Output) printPendingList(l PendingList) {
	if len(l.Pending) == 0 {
		fmt.Println("No pending purchases")
		return
	}
	fmt.Printf("Pending (%d):\n", len(l.Pending))
	for _, p := range l.Pending {
		o.printPending(p)
	}
}

func (o *Output) printPending(p Pending) {
	fmt.Printf("  [%d] %s  participant %d  %.2f %s  detected %s\n",
		p.ID, p.GameName, p.ParticipantID, p.Price, p.Currency, p.DetectedAt.Format(time.DateOnly))
}

func (o *Output) printSearchResults(r SearchResults) {
	if len(r.Results) == 0 {
		fmt.Println("No results")
		return
	}
	for _, item := range r.Results {
		fmt.Printf("  %-8d %-40s %s (%s)\n", item.AppID, item.Name, item.DisplayPrice, item.OriginalPrice)
	}
}

func (o *Output) printSyncResult(s SyncResult) {
	for _, r := range s.Results {
		switch {
		case r.Error != "":
			fmt.Printf("  %s: error: %s\n", r.Participant, r.Error)
		case r.FirstSync:
			fmt.Printf("  %s: baseline recorded\n", r.Participant)
		default:
			fmt.Printf("  %s: %d new, %d skipped\n", r.Participant, r.NewGames, r.SkippedFree)
		}
	}
	fmt.Printf("New games queued: %d\n", s.NewGames)
}

func (o *Output) printReturnsResult(r ReturnsResult) {
	fmt.Printf("Removed purchases: %d\n", len(r.Removed))
	for _, item := range r.Removed {
		fmt.Printf("  - %s: %s\n", item.Participant, item.Game)
	}
	fmt.Printf("Removed pending: %d\n", len(r.RemovedPending))
	for _, item := range r.RemovedPending {
		fmt.Printf("  - %s: %s\n", item.Participant, item.Game)
	}
}

func (o *Output) printCloseResult(c CloseResult) {
	fmt.Printf("Closed %04d-%02d\n", c.Year, c.Month)
	for _, r := range c.Rankings {
		fmt.Printf("%2d. %-20s $%8.2f\n", r.Position, r.Participant, r.Total)
	}
	fmt.Println("Trophies:")
	o.printTrophies(c.Trophies)
}
