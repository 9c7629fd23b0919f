package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2024, 2, 30), New(2024, 3, 1); got != want {
		t.Errorf("New(2024, 2, 30) = %v, want %v", got, want)
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-06-01", 152},
		{"2024-01-01", "2025-01-01", 366}, // leap year
		{"2024-01-01", "2023-01-01", -365},
		{"2024-03-30", "2024-04-01", 2}, // no DST in UTC
	}
	for _, tc := range testCases {
		t.Run(tc.from+"_"+tc.to, func(t *testing.T) {
			got := MustParse(tc.to).Sub(MustParse(tc.from))
			if got != tc.want {
				t.Errorf("%s.Sub(%s) = %d, want %d", tc.to, tc.from, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2024-01-31", New(2024, 1, 31), false},
		{"2025-7-1", New(2025, 7, 1), false},
		{"2024-01-31Z", New(2024, 1, 31), false},
		{"2024-01-31+01:00", New(2024, 1, 31), false},
		{"2024-01-31-05:00", New(2024, 1, 31), false},
		{"2024-01-31+1", Date{}, true},
		{"2024-01-31+25:00", Date{}, true},
		{"Z", Date{}, true},
		{"31.01.2024", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	testCases := []struct {
		in   string
		want Date
	}{
		{"2024-01-02T10:30:00", New(2024, 1, 2)},
		{"2024-01-02T10:30:00Z", New(2024, 1, 2)},
		{"2024-01-02T23:30:00+02:00", New(2024, 1, 2)},
		{"2024-01-02T10:30:00.123", New(2024, 1, 2)},
		{"2024-01-02", New(2024, 1, 2)},
		{"2024-01-02+01:00", New(2024, 1, 2)},
	}
	for _, tc := range testCases {
		got, err := ParseDateTime(tc.in)
		if err != nil {
			t.Errorf("ParseDateTime(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDateTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseDateTime("yesterday"); err == nil {
		t.Error("ParseDateTime(\"yesterday\") expected an error")
	}
}

func TestOf(t *testing.T) {
	now := time.Date(2024, 5, 17, 23, 59, 0, 0, time.UTC)
	if got, want := Of(now), New(2024, 5, 17); got != want {
		t.Errorf("Of(%v) = %v, want %v", now, got, want)
	}
}

func TestJSON(t *testing.T) {
	d := New(2024, 1, 5)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2024-01-05"` {
		t.Errorf("MarshalJSON() = %s, want %q", b, "2024-01-05")
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("UnmarshalJSON() = %v, want %v", back, d)
	}
}
