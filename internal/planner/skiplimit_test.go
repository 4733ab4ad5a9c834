package planner

import "testing"

func TestApplySkipLimitBasic(t *testing.T) {
	if got := ApplySkipLimit(10, 2, 5); got != 5 {
		t.Errorf("10 candidates, skip 2, limit 5: got %d, want 5", got)
	}
	if got := ApplySkipLimit(10, 2, 0); got != 8 {
		t.Errorf("10 candidates, skip 2, no limit: got %d, want 8", got)
	}
}

func TestApplySkipLimitSkipExceedsCount(t *testing.T) {
	if got := ApplySkipLimit(3, 10, 5); got != 0 {
		t.Errorf("skip larger than count should clamp to 0, got %d", got)
	}
}

func TestApplySkipLimitNegativeLimitIsAbsolute(t *testing.T) {
	if got := ApplySkipLimit(10, 0, -4); got != 4 {
		t.Errorf("negative limit should be treated as its absolute value, got %d", got)
	}
}

func TestApplySkipLimitLimitLargerThanCount(t *testing.T) {
	if got := ApplySkipLimit(3, 0, 100); got != 3 {
		t.Errorf("limit larger than available count should not inflate it, got %d", got)
	}
}
