package normalize

import "testing"

func TestDateCanonicalInputUnchanged(t *testing.T) {
	for _, d := range []string{"2024-06-03", "2024-12-31", "2023-01-01"} {
		if got := Date(d); got != d {
			t.Fatalf("expected %q unchanged, got %q", d, got)
		}
	}
}

func TestDateEncodings(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024/6/3", "2024-06-03"},
		{"2024/06/03", "2024-06-03"},
		{"6/3/2024", "2024-06-03"},
		{"12/31/2024", "2024-12-31"},
		{"2024年6月3日", "2024-06-03"},
		{"2024年12月31日", "2024-12-31"},
		{"２０２４年６月３日", "2024-06-03"},
		{"  2024/6/3  ", "2024-06-03"},
	}
	for _, tc := range cases {
		got := Date(tc.raw)
		if got != tc.want {
			t.Errorf("Date(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if !IsDate(got) {
			t.Errorf("Date(%q) = %q is not canonical", tc.raw, got)
		}
	}
}

func TestDatePassthrough(t *testing.T) {
	for _, raw := range []string{"", "2024.06.03", "来月3日", "2024/13/40", "junk"} {
		if got := Date(raw); got != raw {
			t.Errorf("Date(%q) = %q, want passthrough", raw, got)
		}
	}
}

func TestTime(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"9:05", "09:05"},
		{"09:05", "09:05"},
		{"23:59", "23:59"},
		{"０９：３０", "09:30"},
		{"25:00", "25:00"},
		{"9時30分", "9時30分"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Time(tc.raw); got != tc.want {
			t.Errorf("Time(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"¥7,833", 7833},
		{"", 0},
		{"7833", 7833},
		{"￥１２，０００", 12000},
		{"3000円", 3000},
		{" 1,234 ", 1234},
		{"-500", -500},
		{"無料", 0},
		{"7,833.50", 0},
	}
	for _, tc := range cases {
		if got := Amount(tc.raw); got != tc.want {
			t.Errorf("Amount(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"09:00", "10:30", 90},
		{"23:30", "00:30", 60},
		{"10:00", "10:00", 0},
		{"", "10:00", 0},
		{"9:00", "", 0},
		{"9:00", "17:30", 510},
	}
	for _, tc := range cases {
		if got := DurationMinutes(tc.start, tc.end); got != tc.want {
			t.Errorf("DurationMinutes(%q, %q) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestFold(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"　ＡＢＣ　", "ABC"},
		{"４Ａ", "4A"},
		{"スペース名", "スペース名"},
		{" mixed　ＴＥＸＴ ", "mixed TEXT"},
	}
	for _, tc := range cases {
		if got := Fold(tc.raw); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
