package definefile

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParseIntList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "", want: []int{}},
		{in: "   ", want: []int{}},
		{in: "5", want: []int{5}},
		{in: "5,10,15", want: []int{5, 10, 15}},
		{in: " 5 ,\n10 ,\t15 ", want: []int{5, 10, 15}},
		{in: "-1,+2", want: []int{-1, 2}},
		{in: "1,2,", want: []int{1, 2}},
		{in: "1,,2", wantErr: true},
		{in: ",", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: `"5"`, wantErr: true},
		{in: "99999999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := qt.New(t)
			got, err := ParseIntList(tt.in)
			if tt.wantErr {
				c.Assert(err, qt.ErrorIs, ErrParse)
				c.Assert(got, qt.IsNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.DeepEquals, tt.want)
		})
	}
}

func TestEscape(t *testing.T) {
	c := qt.New(t)
	c.Assert(escape(`a"b'c\d`), qt.Equals, `a\"b'c\\d`)
	c.Assert(escape("new\nline"), qt.Equals, "new\nline")
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`plain`:    "plain",
		`\n\t\r`:   "\n\t\r",
		`\a\b\f\v`: "\a\b\f\v",
		`\\`:       `\`,
		`\"\'`:     `"'`,
		`\x41\x4a`: "AJ",
		`\x4`:      "\x04",
		`\xZZ`:     "xZZ",
		`\101\0`:   "A\x00",
		`\1018`:    "A8",
		`\z`:       "z",
		`end\`:     "end",
	}
	c := qt.New(t)
	for in, want := range tests {
		c.Check(unescape(in), qt.Equals, want, qt.Commentf("input %q", in))
	}
}

func TestValueAccessors(t *testing.T) {
	c := qt.New(t)

	s := String("x")
	c.Assert(s.Kind(), qt.Equals, KindString)
	c.Assert(s.Ints(), qt.IsNil)
	c.Assert(s.String(), qt.Equals, "x")

	l := IntList(1, 2)
	c.Assert(l.Kind(), qt.Equals, KindIntList)
	c.Assert(l.Text(), qt.Equals, "")
	c.Assert(l.String(), qt.Equals, "1,2")
	c.Assert(l.literal(), qt.Equals, "[1,2]")

	ints := l.Ints()
	ints[0] = 9
	c.Assert(l.Ints(), qt.DeepEquals, []int{1, 2})

	c.Assert(KindIntList.String(), qt.Equals, "int list")
	c.Assert(Kind(0).String(), qt.Equals, "unknown")
}
