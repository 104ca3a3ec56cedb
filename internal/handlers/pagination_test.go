package handlers

import "testing"

func TestBuildPaginationMeta(t *testing.T) {
	meta := buildPaginationMeta(2, 10, 25)
	if meta.Page != 2 || meta.Limit != 10 || meta.Total != 25 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", meta.TotalPages)
	}

	empty := buildPaginationMeta(1, 10, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 pages for empty result, got %d", empty.TotalPages)
	}
}

func TestParsePositiveInt(t *testing.T) {
	if got := parsePositiveInt("", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
	if got := parsePositiveInt("3", 7); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := parsePositiveInt("-2", 7); got != 7 {
		t.Errorf("expected fallback for negative, got %d", got)
	}
	if got := parsePositiveInt("abc", 7); got != 7 {
		t.Errorf("expected fallback for garbage, got %d", got)
	}
}
