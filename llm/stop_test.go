package llm

import "testing"

func TestShouldStop(t *testing.T) {
	stop := "User:"
	empty := ""

	cases := []struct {
		name  string
		token string
		stop  *string
		want  bool
	}{
		{"exact", "User:", &stop, true},
		{"prefix only", "User", &stop, false},
		{"contains", "User:x", &stop, false},
		{"case differs", "user:", &stop, false},
		{"no stop", "User:", nil, false},
		{"empty stop matches empty token", "", &empty, true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldStop(tt.token, tt.stop); got != tt.want {
				t.Errorf("ShouldStop(%q) = %v, erwartet %v", tt.token, got, tt.want)
			}
		})
	}
}
