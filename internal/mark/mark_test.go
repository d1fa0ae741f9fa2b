package mark

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		kind      Kind
		wantValue int64
		wantErr   bool
	}{
		{name: "sprint time", raw: "10.52", kind: Time, wantValue: 1052},
		{name: "decimal comma", raw: "10,52", kind: Time, wantValue: 1052},
		{name: "hand timing", raw: "10.5", kind: Time, wantValue: 1050},
		{name: "thousandths round up", raw: "10.521", kind: Time, wantValue: 1053},
		{name: "exact thousandths", raw: "10.520", kind: Time, wantValue: 1052},
		{name: "middle distance", raw: "3:45.00", kind: Time, wantValue: 22500},
		{name: "middle distance no fraction", raw: "4:31", kind: Time, wantValue: 27100},
		{name: "marathon", raw: "2:08:15.00", kind: Time, wantValue: 769500},
		{name: "long jump", raw: "7.45", kind: Distance, wantValue: 745},
		{name: "javelin one decimal", raw: "62.5", kind: Distance, wantValue: 6250},
		{name: "integer distance", raw: "62", kind: Distance, wantValue: 6200},
		{name: "high jump comma", raw: "2,05", kind: Distance, wantValue: 205},
		{name: "decathlon points", raw: "8123", kind: Points, wantValue: 8123},
		{name: "surrounding spaces", raw: "  12.01 ", kind: Time, wantValue: 1201},

		{name: "letters", raw: "abc", kind: Time, wantErr: true},
		{name: "empty", raw: "", kind: Time, wantErr: true},
		{name: "seconds out of range", raw: "4:75.00", kind: Time, wantErr: true},
		{name: "time for distance", raw: "4:31.19", kind: Distance, wantErr: true},
		{name: "three decimals distance", raw: "7.455", kind: Distance, wantErr: true},
		{name: "zero", raw: "0.00", kind: Time, wantErr: true},
		{name: "points with decimals", raw: "8123.5", kind: Points, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.raw, got)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformed", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.raw, err)
			}
			if got.Value != tt.wantValue {
				t.Errorf("Parse(%q).Value = %d, want %d", tt.raw, got.Value, tt.wantValue)
			}
			if got.Kind != tt.kind {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.raw, got.Kind, tt.kind)
			}
		})
	}
}

func TestMarkString(t *testing.T) {
	tests := []struct {
		mark Mark
		want string
	}{
		{Mark{Kind: Time, Value: 1052}, "10.52"},
		{Mark{Kind: Time, Value: 22500}, "3:45.00"},
		{Mark{Kind: Time, Value: 769500}, "2:08:15.00"},
		{Mark{Kind: Distance, Value: 745}, "7.45"},
		{Mark{Kind: Distance, Value: 6205}, "62.05"},
		{Mark{Kind: Points, Value: 8123}, "8123"},
		{Mark{}, ""},
	}

	for _, tt := range tests {
		if got := tt.mark.String(); got != tt.want {
			t.Errorf("Mark%+v.String() = %q, want %q", tt.mark, got, tt.want)
		}
	}
}

func TestBetter(t *testing.T) {
	fast := MustParse("3:45.00", Time)
	slow := MustParse("3:46.10", Time)
	if !fast.Better(slow) {
		t.Error("3:45.00 should be better than 3:46.10")
	}
	if slow.Better(fast) {
		t.Error("3:46.10 should not be better than 3:45.00")
	}
	if fast.Better(fast) {
		t.Error("a mark should not be strictly better than itself")
	}

	far := MustParse("7.45", Distance)
	near := MustParse("7.12", Distance)
	if !far.Better(near) {
		t.Error("7.45 should be better than 7.12")
	}

	if !near.Better(Mark{}) {
		t.Error("a present mark should be better than no mark")
	}
	if (Mark{}).Better(near) {
		t.Error("no mark should never be better")
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("10.10", Time)
	b := MustParse("10.20", Time)

	if got := a.Compare(b); got != -1 {
		t.Errorf("Compare() = %d, want -1", got)
	}
	if got := b.Compare(a); got != 1 {
		t.Errorf("Compare() = %d, want 1", got)
	}
	if got := a.Compare(a); got != 0 {
		t.Errorf("Compare() = %d, want 0", got)
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Time, Distance, Points} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", b, err)
		}
		if back != k {
			t.Errorf("kind %v came back as %v", k, back)
		}
	}

	if _, err := ParseKind("furlongs"); err == nil {
		t.Error("ParseKind(furlongs) expected error")
	}
}
