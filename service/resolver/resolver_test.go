package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwlpack/cwlpack/model"
)

func TestService_Resolve(t *testing.T) {
	srv := New()

	testCases := []struct {
		name      string
		reference string
		base      model.Location
		expect    model.Location
		expectErr bool
	}{
		{
			name:      "fragment only stays in base document",
			reference: "#Sample",
			base:      model.Location{URL: "/data/wf.cwl"},
			expect:    model.Location{URL: "/data/wf.cwl", Fragment: "Sample"},
		},
		{
			name:      "relative path against local base",
			reference: "tools/align.cwl",
			base:      model.Location{URL: "/data/wf.cwl"},
			expect:    model.Location{URL: "/data/tools/align.cwl"},
		},
		{
			name:      "parent directory traversal",
			reference: "../shared/types.yml#Sample",
			base:      model.Location{URL: "/data/flows/wf.cwl"},
			expect:    model.Location{URL: "/data/shared/types.yml", Fragment: "Sample"},
		},
		{
			name:      "relative path against remote base",
			reference: "align.cwl",
			base:      model.Location{URL: "https://example.com/wf/main.cwl"},
			expect:    model.Location{URL: "https://example.com/wf/align.cwl"},
		},
		{
			name:      "relative path against virtual scheme base",
			reference: "types.yml#Rec",
			base:      model.Location{URL: "mem://localhost/data/wf.cwl"},
			expect:    model.Location{URL: "mem://localhost/data/types.yml", Fragment: "Rec"},
		},
		{
			name:      "embed scheme keeps empty host",
			reference: "tool.cwl",
			base:      model.Location{URL: "embed:///testdata/wf.cwl"},
			expect:    model.Location{URL: "embed:///testdata/tool.cwl"},
		},
		{
			name:      "absolute url stands alone",
			reference: "https://example.com/t.cwl#main",
			base:      model.Location{URL: "/data/wf.cwl"},
			expect:    model.Location{URL: "https://example.com/t.cwl", Fragment: "main"},
		},
		{
			name:      "absolute path against local base",
			reference: "/opt/tools/echo.cwl",
			base:      model.Location{URL: "/data/wf.cwl"},
			expect:    model.Location{URL: "/opt/tools/echo.cwl"},
		},
		{
			name:      "absolute path against remote base",
			reference: "/tools/echo.cwl",
			base:      model.Location{URL: "https://example.com/wf/main.cwl"},
			expect:    model.Location{URL: "https://example.com/tools/echo.cwl"},
		},
		{
			name:      "empty reference rejected",
			reference: "",
			base:      model.Location{URL: "/data/wf.cwl"},
			expectErr: true,
		},
		{
			name:      "whitespace reference rejected",
			reference: "  tool.cwl",
			base:      model.Location{URL: "/data/wf.cwl"},
			expectErr: true,
		},
		{
			name:      "bare fragment marker rejected",
			reference: "#",
			base:      model.Location{URL: "/data/wf.cwl"},
			expectErr: true,
		},
		{
			name:      "multiple fragment markers rejected",
			reference: "a.yml#x#y",
			base:      model.Location{URL: "/data/wf.cwl"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := srv.Resolve(tc.reference, tc.base)
			if tc.expectErr {
				assert.Error(t, err)
				var invalid *model.InvalidReferenceError
				assert.ErrorAs(t, err, &invalid)
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, tc.expect, actual)
		})
	}
}
