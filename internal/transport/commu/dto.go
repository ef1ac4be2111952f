package commu

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/commu-practical/helpmap/internal/domain/notice"
)

type graphQLResponse struct {
	Data struct {
		NoticesWhereDistance *struct {
			PaginatorInfo *paginatorDTO     `json:"paginatorInfo"`
			Data          []json.RawMessage `json:"data"`
		} `json:"noticesWhereDistance"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type paginatorDTO struct {
	Count        int  `json:"count"`
	Total        int  `json:"total"`
	CurrentPage  int  `json:"currentPage"`
	LastPage     int  `json:"lastPage"`
	PerPage      int  `json:"perPage"`
	HasMorePages bool `json:"hasMorePages"`
}

type noticeDTO struct {
	ID          flexString   `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        string       `json:"type"`
	Side        string       `json:"side"`
	CreatedAt   string       `json:"created_at"`
	ExpiresAt   string       `json:"expires_at"`
	Position    *positionDTO `json:"position"`
	Categories  *struct {
		Main *categoryDTO  `json:"main"`
		Sub  []categoryDTO `json:"sub"`
	} `json:"categories"`
}

type positionDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type categoryDTO struct {
	Key string `json:"key"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err //nolint:wrapcheck // surfaced through json.Unmarshal
	}
	*f = flexString(n.String())
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp returns nil for empty or unparsable values.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// toNotices decodes the raw data array, skipping entries that are not notice objects.
func toNotices(raw []json.RawMessage) []notice.Notice {
	out := make([]notice.Notice, 0, len(raw))
	for _, r := range raw {
		var dto *noticeDTO
		if err := json.Unmarshal(r, &dto); err != nil || dto == nil {
			continue
		}
		out = append(out, dto.toDomain())
	}
	return out
}

func (d *noticeDTO) toDomain() notice.Notice {
	n := notice.Notice{
		ID:            string(d.ID),
		Title:         d.Title,
		Description:   d.Description,
		Type:          d.Type,
		Side:          d.Side,
		CreatedAt:     parseTimestamp(d.CreatedAt),
		ExpiresAt:     parseTimestamp(d.ExpiresAt),
		SubCategories: []string{},
	}
	if d.Position != nil && d.Position.Latitude != nil && d.Position.Longitude != nil {
		n.Position = &notice.Position{Lat: *d.Position.Latitude, Long: *d.Position.Longitude}
	}
	if d.Categories != nil {
		if d.Categories.Main != nil && d.Categories.Main.Key != "" {
			key := d.Categories.Main.Key
			n.MainCategory = &key
		}
		for _, sub := range d.Categories.Sub {
			if sub.Key != "" {
				n.SubCategories = append(n.SubCategories, sub.Key)
			}
		}
	}
	return n
}

// toPaginator falls back to a single-page paginator when the backend omits one.
func toPaginator(p *paginatorDTO, count, page, pageSize int) notice.PaginatorInfo {
	if p == nil {
		return notice.PaginatorInfo{
			Count:       count,
			Total:       count,
			CurrentPage: page,
			LastPage:    1,
			PerPage:     pageSize,
		}.Normalize()
	}
	return notice.PaginatorInfo{
		Count:        p.Count,
		Total:        p.Total,
		CurrentPage:  p.CurrentPage,
		LastPage:     p.LastPage,
		PerPage:      p.PerPage,
		HasMorePages: p.HasMorePages,
	}.Normalize()
}
