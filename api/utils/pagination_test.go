package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantPage   int
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", url: "/list", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "explicit", url: "/list?page=3&limit=25", wantPage: 3, wantLimit: 25, wantOffset: 50},
		{name: "bad page", url: "/list?page=zero", wantErr: true},
		{name: "zero page", url: "/list?page=0", wantErr: true},
		{name: "negative limit", url: "/list?limit=-5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			params, err := ExtractPagination(r)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

func TestSetPaginationStats(t *testing.T) {
	p := PaginationParams{Page: 1, Limit: 10}
	p.SetPaginationStats(25)
	assert.Equal(t, 25, p.TotalRecords)
	assert.Equal(t, 3, p.TotalPages)

	p.SetPaginationStats(0)
	assert.Equal(t, 0, p.TotalPages)
}
