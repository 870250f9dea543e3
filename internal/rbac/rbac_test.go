package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:submit", true},
		{"student", "quiz:create", false},
		{"student", "results:view-all", false},
		{"teacher", "quiz:create", true},
		{"teacher", "quiz:view-answers", true},
		{"teacher", "results:view-all", true},
		{"admin", "quiz:delete-own", true},
		{"admin", "anything:at-all", true},
		{"", "quiz:view", false},
		{"ghost", "quiz:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"mod": {"forum:*"}})
	if !c.Has("mod", "forum:moderate") || !c.Has("mod", "forum:post") {
		t.Fatalf("prefix wildcard should cover forum permissions")
	}
	if c.Has("mod", "quiz:view") {
		t.Fatalf("prefix wildcard must not cross the prefix")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "results:view-own", "results:view-all") {
		t.Fatalf("student should match view-own")
	}
	if c.Any("student", "quiz:create", "users:list") {
		t.Fatalf("student should match neither")
	}
}
