package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expect   Location
		rendered string
	}{
		{
			name:     "plain path",
			input:    "/data/wf.cwl",
			expect:   Location{URL: "/data/wf.cwl"},
			rendered: "/data/wf.cwl",
		},
		{
			name:     "path with fragment",
			input:    "/data/types.yml#Sample",
			expect:   Location{URL: "/data/types.yml", Fragment: "Sample"},
			rendered: "/data/types.yml#Sample",
		},
		{
			name:     "url with fragment",
			input:    "https://example.com/wf.cwl#main",
			expect:   Location{URL: "https://example.com/wf.cwl", Fragment: "main"},
			rendered: "https://example.com/wf.cwl#main",
		},
		{
			name:     "only first hash splits",
			input:    "/data/types.yml#a#b",
			expect:   Location{URL: "/data/types.yml", Fragment: "a#b"},
			rendered: "/data/types.yml#a#b",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := ParseLocation(tc.input)
			assert.EqualValues(t, tc.expect, actual)
			assert.EqualValues(t, tc.rendered, actual.String())
		})
	}
}

func TestLocation_Base(t *testing.T) {
	testCases := []struct {
		name     string
		location Location
		expect   string
	}{
		{name: "file name", location: Location{URL: "/data/align.cwl"}, expect: "align"},
		{name: "fragment wins", location: Location{URL: "/data/types.yml", Fragment: "Sample"}, expect: "Sample"},
		{name: "nested fragment", location: Location{URL: "/w.cwl", Fragment: "steps/s1/run"}, expect: "run"},
		{name: "url", location: Location{URL: "https://example.com/tools/echo.cwl"}, expect: "echo"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualValues(t, tc.expect, tc.location.Base())
		})
	}
}

func TestLocation_Predicates(t *testing.T) {
	assert.True(t, Location{URL: "https://example.com/a.cwl"}.IsRemote())
	assert.True(t, Location{URL: "http://example.com/a.cwl"}.IsRemote())
	assert.False(t, Location{URL: "/data/a.cwl"}.IsRemote())
	assert.False(t, Location{URL: "mem://localhost/a.cwl"}.IsRemote())
	assert.True(t, Location{}.IsEmpty())
	assert.False(t, Location{URL: "/a"}.IsEmpty())

	doc := Location{URL: "/a.cwl", Fragment: "main"}.Document()
	assert.EqualValues(t, Location{URL: "/a.cwl"}, doc)
	assert.EqualValues(t, Location{URL: "/a.cwl", Fragment: "x"}, Location{URL: "/a.cwl"}.WithFragment("x"))
}
