package booking

import (
	"encoding/json"
	"testing"

	"github.com/sudo-init-do/talentbook/internal/paging"
)

var pagingDefault = paging.Page{}

func TestFlexIntDecoding(t *testing.T) {
	cases := []struct {
		in    string
		value int
		valid bool
		raw   string
	}{
		{`50`, 50, true, ""},
		{`"50"`, 50, true, ""},
		{`" 7 "`, 7, true, ""},
		{`""`, 0, false, ""},
		{`null`, 0, false, ""},
		{`"about 40"`, 0, false, "about 40"},
		{`12.5`, 0, false, "12.5"},
	}
	for _, tc := range cases {
		var f FlexInt
		if err := json.Unmarshal([]byte(tc.in), &f); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if f.Value != tc.value || f.Valid != tc.valid || f.Raw != tc.raw {
			t.Fatalf("%s: got %+v", tc.in, f)
		}
	}
	var f FlexInt
	if err := json.Unmarshal([]byte(`true`), &f); err == nil {
		t.Fatalf("boolean guests_count accepted")
	}
}
