package helpers

import (
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"12.5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestContainsID(t *testing.T) {
	set := []int64{3, 7, 11}

	if !ContainsID(set, 7) {
		t.Error("ContainsID(set, 7) = false")
	}
	if ContainsID(set, 8) {
		t.Error("ContainsID(set, 8) = true")
	}
	if ContainsID(nil, 3) {
		t.Error("ContainsID(nil, 3) = true")
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 10, 0, 10},
		{2, 0, 10, 10},
		{2, MaxPageSize + 1, 10, DefaultPageSize},
	}

	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		if offset != tt.wantOffset || limit != tt.wantLimit {
			t.Errorf("CalculateOffsetLimit(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.size, offset, limit, tt.wantOffset, tt.wantLimit)
		}
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(95, 2, 10)
	if info.TotalPages != 10 {
		t.Errorf("TotalPages = %d, want 10", info.TotalPages)
	}
	if info.CurrentPage != 2 || info.PageSize != 10 || info.TotalItems != 95 {
		t.Errorf("unexpected info: %+v", info)
	}

	empty := NewPaginationInfo(0, 1, 10)
	if empty.TotalPages != 1 {
		t.Errorf("empty TotalPages = %d, want 1", empty.TotalPages)
	}

	clamped := NewPaginationInfo(10, 5, 10)
	if clamped.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want clamped to 1", clamped.CurrentPage)
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("90m", time.Hour); got != 90*time.Minute {
		t.Errorf("ParseDuration(90m) = %v", got)
	}
	if got := ParseDuration("", time.Hour); got != time.Hour {
		t.Errorf("ParseDuration(empty) = %v, want fallback", got)
	}
	if got := ParseDuration("soon", time.Hour); got != time.Hour {
		t.Errorf("ParseDuration(malformed) = %v, want fallback", got)
	}
}
