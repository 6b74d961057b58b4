package api

import (
	"net/http/httptest"
	"testing"

	"github.com/vajra-io/vajra/internal/analytics"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    analytics.Filters
		wantErr bool
	}{
		{
			name: "no parameters yields defaults",
			url:  "/api/v1/dashboard/overview",
			want: analytics.DefaultFilters(),
		},
		{
			name: "date range and dimensions",
			url:  "/api/v1/dashboard/overview?start_date=2023-01-01&end_date=2023-01-31&category=Apparel&status=Completed",
			want: analytics.Filters{
				StartDate:  "2023-01-01",
				EndDate:    "2023-01-31",
				Category:   "Apparel",
				Brand:      analytics.Wildcard,
				Department: analytics.Wildcard,
				Status:     "Completed",
			},
		},
		{
			name: "timestamp truncated to date part",
			url:  "/api/v1/dashboard/overview?start_date=2023-01-01T12:00:00Z",
			want: analytics.Filters{
				StartDate:  "2023-01-01",
				Category:   analytics.Wildcard,
				Brand:      analytics.Wildcard,
				Department: analytics.Wildcard,
				Status:     analytics.Wildcard,
			},
		},
		{
			name:    "malformed start date",
			url:     "/api/v1/dashboard/overview?start_date=January",
			wantErr: true,
		},
		{
			name:    "malformed end date",
			url:     "/api/v1/dashboard/overview?end_date=2023/01/31",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)

			got, err := parseFilters(req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("parseFilters() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{name: "missing limit defaults to zero", url: "/x", want: 0},
		{name: "valid limit", url: "/x?limit=10", want: 10},
		{name: "zero limit allowed", url: "/x?limit=0", want: 0},
		{name: "negative limit rejected", url: "/x?limit=-1", wantErr: true},
		{name: "limit above cap rejected", url: "/x?limit=101", wantErr: true},
		{name: "non-numeric limit rejected", url: "/x?limit=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)

			got, err := parseLimit(req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("parseLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseProductQuery(t *testing.T) {
	req := httptest.NewRequest(
		"GET",
		"/api/v1/dashboard/products?search=jacket&category=Apparel&status=Active"+
			"&min_price=10&max_price=99.5&min_margin=20&max_margin=80&sort_by=margin&sort_desc=true",
		nil,
	)

	query, err := parseProductQuery(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query.Search != "jacket" || query.Category != "Apparel" || query.Status != "Active" {
		t.Errorf("unexpected string fields: %+v", query)
	}

	if query.MinPrice == nil || *query.MinPrice != 10 {
		t.Errorf("expected min price 10, got %v", query.MinPrice)
	}

	if query.MaxPrice == nil || *query.MaxPrice != 99.5 {
		t.Errorf("expected max price 99.5, got %v", query.MaxPrice)
	}

	if query.MinMargin == nil || *query.MinMargin != 20 {
		t.Errorf("expected min margin 20, got %v", query.MinMargin)
	}

	if query.SortBy != "margin" || !query.SortDesc {
		t.Errorf("unexpected sort fields: %+v", query)
	}
}

func TestParseProductQueryRejectsBadBounds(t *testing.T) {
	for _, url := range []string{
		"/x?min_price=cheap",
		"/x?max_margin=lots",
		"/x?sort_desc=maybe",
	} {
		req := httptest.NewRequest("GET", url, nil)

		if _, err := parseProductQuery(req); err == nil {
			t.Errorf("expected error for %q, got nil", url)
		}
	}
}
