package kind

import (
	"testing"
)

// FuzzParse checks the type-string parser never panics and that anything it
// accepts survives a print/parse round trip.
// Run with: go test -fuzz=FuzzParse -fuzztime=30s ./kind/
func FuzzParse(f *testing.F) {
	f.Add("boolean")
	f.Add("struct<a:long,b:list<string>>")
	f.Add("map<string,decimal(10,2)>")
	f.Add("union<string,long>")
	f.Add("struct<>")
	f.Add("struct<a:int")
	f.Add("decimal(,)")
	f.Add("<<<>>>")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		k, err := Parse(input)
		if err != nil {
			return
		}
		again, err := Parse(k.String())
		if err != nil {
			t.Fatalf("re-parse of %q (from %q) failed: %v", k.String(), input, err)
		}
		if !Equal(k, again) {
			t.Fatalf("round trip changed kind: %s vs %s", k, again)
		}
	})
}
