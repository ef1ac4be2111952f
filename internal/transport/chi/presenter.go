package chi

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/usecase/area"
)

// AreaResponse is the JSON body of GET /v1/area.
type AreaResponse struct {
	Town       string            `json:"town"`
	Location   locationResponse  `json:"location"`
	Outcome    string            `json:"outcome"`
	Message    string            `json:"message,omitempty"`
	ErrorKind  string            `json:"error_kind,omitempty"`
	DistanceKm int               `json:"distance_km"`
	Notices    []noticeResponse  `json:"notices"`
	Paginator  paginatorResponse `json:"paginator"`
	Recent     []noticeResponse  `json:"recent_notices"`
	Summary    *summaryResponse  `json:"summary,omitempty"`
}

type locationResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type summaryResponse struct {
	Text      string `json:"text"`
	Basis     string `json:"basis"`
	PostCount int    `json:"post_count"`
}

type paginatorResponse struct {
	Count        int  `json:"count"`
	Total        int  `json:"total"`
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
	PerPage      int  `json:"per_page"`
	HasMorePages bool `json:"has_more_pages"`
}

type noticeResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Type          string            `json:"type"`
	Side          string            `json:"side"`
	CreatedAt     *time.Time        `json:"created_at"`
	ExpiresAt     *time.Time        `json:"expires_at"`
	Position      *positionResponse `json:"position"`
	MainCategory  *string           `json:"main_category"`
	SubCategories []string          `json:"sub_categories"`
	DistanceKm    *float64          `json:"distance_km"`
	CategoryLabel string            `json:"category_label"`
	TypeLabel     string            `json:"type_label"`
	CreatedDate   *string           `json:"created_date"`
}

type positionResponse struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewAreaResponse renders a report with display labels and per-notice distances.
func NewAreaResponse(r area.Report) AreaResponse {
	p := r.Result.Paginator
	resp := AreaResponse{
		Town:       r.Town,
		Location:   locationResponse{Name: r.Location.Name, Lat: r.Location.Lat, Long: r.Location.Long},
		Outcome:    string(r.Outcome),
		Message:    r.Message,
		DistanceKm: r.Result.DistanceKm,
		Notices:    noticesToResponse(r.Result.Notices, r.Location),
		Paginator: paginatorResponse{
			Count:        p.Count,
			Total:        p.Total,
			CurrentPage:  p.CurrentPage,
			LastPage:     p.LastPage,
			PerPage:      p.PerPage,
			HasMorePages: p.HasMorePages,
		},
		Recent: noticesToResponse(r.Recent, r.Location),
	}
	if !r.Result.Successful {
		resp.ErrorKind = string(r.Result.ErrorKind)
	}
	if r.Outcome == area.OutcomeOK {
		resp.Summary = &summaryResponse{
			Text:      r.Summary,
			Basis:     r.SummaryBasis,
			PostCount: r.SummaryPostCount,
		}
	}
	return resp
}

func noticesToResponse(notices []notice.Notice, from domain.Location) []noticeResponse {
	out := make([]noticeResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, noticeToResponse(n, from))
	}
	return out
}

func noticeToResponse(n notice.Notice, from domain.Location) noticeResponse {
	category := "uncategorized"
	if n.MainCategory != nil && *n.MainCategory != "" {
		category = *n.MainCategory
	}
	typ := n.Type
	if typ == "" {
		typ = "unknown"
	}

	subs := n.SubCategories
	if subs == nil {
		subs = []string{}
	}

	resp := noticeResponse{
		ID:            n.ID,
		Title:         n.Title,
		Description:   n.Description,
		Type:          n.Type,
		Side:          n.Side,
		CreatedAt:     n.CreatedAt,
		ExpiresAt:     n.ExpiresAt,
		MainCategory:  n.MainCategory,
		SubCategories: subs,
		CategoryLabel: headline(category),
		TypeLabel:     headline(typ),
	}
	if n.Position != nil {
		resp.Position = &positionResponse{Lat: n.Position.Lat, Long: n.Position.Long}
	}
	if km, ok := n.DistanceKm(from.Lat, from.Long); ok {
		rounded := math.Round(km*10) / 10
		resp.DistanceKm = &rounded
	}
	if n.CreatedAt != nil {
		date := n.CreatedAt.Format(time.DateOnly)
		resp.CreatedDate = &date
	}
	return resp
}

// headline turns a snake_case key into a title-cased label.
func headline(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}
