package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{
			name: "case insensitive",
			a:    "How do I get a visa?",
			b:    "how do i get a VISA?",
			same: true,
		},
		{
			name: "surrounding whitespace ignored",
			a:    "  visa fees  ",
			b:    "visa fees",
			same: true,
		},
		{
			name: "interior whitespace matters",
			a:    "visa  fees",
			b:    "visa fees",
			same: false,
		},
		{
			name: "different queries differ",
			a:    "visa fees",
			b:    "license fees",
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1 := CacheKey(tt.a)
			k2 := CacheKey(tt.b)

			if tt.same && k1 != k2 {
				t.Errorf("CacheKey() = %d and %d, want equal", k1, k2)
			}
			if !tt.same && k1 == k2 {
				t.Errorf("CacheKey() collided for %q and %q", tt.a, tt.b)
			}
		})
	}
}

func TestRouteDecision_Chain(t *testing.T) {
	tests := []struct {
		name     string
		decision RouteDecision
		want     []string
	}{
		{
			name:     "primary only",
			decision: RouteDecision{Partition: "visa_knowledge"},
			want:     []string{"visa_knowledge"},
		},
		{
			name: "primary with fallbacks",
			decision: RouteDecision{
				Partition: "tax_knowledge",
				Fallbacks: []string{"licensing_knowledge", "general_knowledge"},
			},
			want: []string{"tax_knowledge", "licensing_knowledge", "general_knowledge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.decision.Chain()
			if len(got) != len(tt.want) {
				t.Fatalf("Chain() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Chain()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQueryKind_String(t *testing.T) {
	tests := []struct {
		kind QueryKind
		want string
	}{
		{KindStandard, "standard"},
		{KindPricing, "pricing"},
		{KindEnumeration, "enumeration"},
		{QueryKind(999), "standard"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("QueryKind(%d).String() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestCacheHit_String(t *testing.T) {
	tests := []struct {
		hit  CacheHit
		want string
	}{
		{CacheHitNone, "none"},
		{CacheHitExact, "exact"},
		{CacheHitSemantic, "semantic"},
	}

	for _, tt := range tests {
		if got := tt.hit.String(); got != tt.want {
			t.Errorf("CacheHit(%d).String() = %v, want %v", tt.hit, got, tt.want)
		}
	}
}
