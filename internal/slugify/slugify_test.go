// internal/slugify/slugify_test.go
//
// Unit-tests for slug candidate generation.
//
// Run: go test ./internal/slugify -v

package slugify

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Café", "cafe"},
		{"  --Jazz   Night!!  ", "jazz-night"},
		{"Tűzoltó utca 14/B", "tuzolto-utca-14-b"},
		{"UPPER lower 42", "upper-lower-42"},
		{"already-a-slug", "already-a-slug"},
		{"É Ő Ü", "e-o-u"},
		{"北京", ""},
		{"🎉🎉", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Make(c.in); got != c.want {
			t.Errorf("Make(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{"Hello World", "Café del Mar", "a--b--c", "É Ő Ü", "x"}
	for _, in := range inputs {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Errorf("Make not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestMake_Charset(t *testing.T) {
	for _, in := range []string{"Fête de la Musique", "a b c", "42!", "őz-út"} {
		got := Make(in)
		for _, r := range got {
			ok := r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			if !ok {
				t.Fatalf("Make(%q) produced %q with illegal rune %q", in, got, r)
			}
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Fatalf("Make(%q) = %q has a dangling hyphen", in, got)
		}
	}
}

func TestMake_Truncation(t *testing.T) {
	long := strings.Repeat("abcdefghi ", 20) // 200 bytes before slugging
	got := Make(long)
	if len(got) > 100 {
		t.Fatalf("len = %d, want ≤ 100", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("truncation left a trailing hyphen: %q", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("event", 42); got != "event-42" {
		t.Fatalf("Fallback = %q, want event-42", got)
	}
}
