package noticecache

import (
	"time"

	"github.com/commu-practical/helpmap/internal/domain/notice"
)

// pageDTO is the cached representation of a successful notice page.
type pageDTO struct {
	Notices   []noticeDTO  `json:"notices"`
	Paginator paginatorDTO `json:"paginator"`
}

type noticeDTO struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Type          string       `json:"type"`
	Side          string       `json:"side"`
	CreatedAt     *time.Time   `json:"created_at"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	Position      *positionDTO `json:"position"`
	MainCategory  *string      `json:"main_category"`
	SubCategories []string     `json:"sub_categories"`
}

type positionDTO struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type paginatorDTO struct {
	Count        int  `json:"count"`
	Total        int  `json:"total"`
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
	PerPage      int  `json:"per_page"`
	HasMorePages bool `json:"has_more_pages"`
}

func fromPage(p notice.Page) pageDTO {
	out := pageDTO{
		Notices: make([]noticeDTO, 0, len(p.Notices)),
		Paginator: paginatorDTO{
			Count:        p.Paginator.Count,
			Total:        p.Paginator.Total,
			CurrentPage:  p.Paginator.CurrentPage,
			LastPage:     p.Paginator.LastPage,
			PerPage:      p.Paginator.PerPage,
			HasMorePages: p.Paginator.HasMorePages,
		},
	}
	for _, n := range p.Notices {
		d := noticeDTO{
			ID:            n.ID,
			Title:         n.Title,
			Description:   n.Description,
			Type:          n.Type,
			Side:          n.Side,
			CreatedAt:     n.CreatedAt,
			ExpiresAt:     n.ExpiresAt,
			MainCategory:  n.MainCategory,
			SubCategories: n.SubCategories,
		}
		if n.Position != nil {
			d.Position = &positionDTO{Lat: n.Position.Lat, Long: n.Position.Long}
		}
		out.Notices = append(out.Notices, d)
	}
	return out
}

func (d pageDTO) toPage() notice.Page {
	notices := make([]notice.Notice, 0, len(d.Notices))
	for _, n := range d.Notices {
		item := notice.Notice{
			ID:            n.ID,
			Title:         n.Title,
			Description:   n.Description,
			Type:          n.Type,
			Side:          n.Side,
			CreatedAt:     n.CreatedAt,
			ExpiresAt:     n.ExpiresAt,
			MainCategory:  n.MainCategory,
			SubCategories: n.SubCategories,
		}
		if item.SubCategories == nil {
			item.SubCategories = []string{}
		}
		if n.Position != nil {
			item.Position = &notice.Position{Lat: n.Position.Lat, Long: n.Position.Long}
		}
		notices = append(notices, item)
	}
	return notice.Page{
		Notices: notices,
		Paginator: notice.PaginatorInfo{
			Count:        d.Paginator.Count,
			Total:        d.Paginator.Total,
			CurrentPage:  d.Paginator.CurrentPage,
			LastPage:     d.Paginator.LastPage,
			PerPage:      d.Paginator.PerPage,
			HasMorePages: d.Paginator.HasMorePages,
		}.Normalize(),
	}
}
