package chart

import (
	"testing"
	"time"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		qt   QuestionType
		want string
	}{
		{name: "date reformatted", raw: "2024-01-05", qt: TypeDate, want: "05/01/2024"},
		{name: "date with spaces", raw: " 2024-12-31 ", qt: TypeDate, want: "31/12/2024"},
		{name: "invalid date kept", raw: "2024-13-01", qt: TypeDate, want: "2024-13-01"},
		{name: "number verbatim", raw: "10.50", qt: TypeNumber, want: "10.50"},
		{name: "text verbatim", raw: "red", qt: TypeText, want: "red"},
		{name: "entity verbatim", raw: "3_1", qt: TypeEntity, want: "3_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.raw, tt.qt); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		qt     QuestionType
		want   float64
		wantOk bool
	}{
		{name: "integer", raw: "10", qt: TypeNumber, want: 10, wantOk: true},
		{name: "float", raw: "2.5", qt: TypeNumber, want: 2.5, wantOk: true},
		{name: "negative with spaces", raw: " -4 ", qt: TypeNumber, want: -4, wantOk: true},
		{name: "garbage", raw: "abc", qt: TypeNumber},
		{name: "nan", raw: "NaN", qt: TypeNumber},
		{name: "inf", raw: "+Inf", qt: TypeNumber},
		{name: "non numeric type", raw: "10", qt: TypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.raw, tt.qt)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("Number() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    string
		qt     QuestionType
		want   float64
		wantOk bool
	}{
		{name: "number", raw: "42", qt: TypeNumber, want: 42, wantOk: true},
		{name: "bad number", raw: "x", qt: TypeNumber},
		{name: "date", raw: "2024-01-05", qt: TypeDate, want: float64(day.Unix()), wantOk: true},
		{name: "bad date", raw: "05/01/2024", qt: TypeDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Position(tt.raw, tt.qt)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("Position() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}

	t.Run("categorical is stable and bounded", func(t *testing.T) {
		for _, raw := range []string{"red", "blue", "", "a@b.c"} {
			p1, ok1 := Position(raw, TypeText)
			p2, ok2 := Position(raw, TypeText)
			if !ok1 || !ok2 || p1 != p2 {
				t.Errorf("Position(%q) not stable: %v, %v", raw, p1, p2)
			}
			if p1 < 0 || p1 >= 1000 {
				t.Errorf("Position(%q) = %v, out of [0, 1000)", raw, p1)
			}
		}
	})
}

func TestUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Label() did not panic on unknown type")
		}
	}()
	Label("x", QuestionType("foo"))
}

func TestParseQuestionType(t *testing.T) {
	for _, qt := range QuestionTypes {
		got, err := ParseQuestionType(string(qt))
		if err != nil || got != qt {
			t.Errorf("ParseQuestionType(%q) = (%v, %v)", qt, got, err)
		}
	}
	if _, err := ParseQuestionType("foo"); err == nil {
		t.Error("ParseQuestionType(foo) expected error")
	}

	var qt QuestionType
	if err := qt.Scan([]byte("data")); err != nil || qt != TypeDate {
		t.Errorf("Scan() = (%v, %v)", qt, err)
	}
	if err := qt.Scan(1); err == nil {
		t.Error("Scan(int) expected error")
	}
}
