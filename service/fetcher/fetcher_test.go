package fetcher

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/embed"

	"github.com/cwlpack/cwlpack/internal/yml"
	"github.com/cwlpack/cwlpack/model"
)

//go:embed testdata/*
var testFS embed.FS

func newTestService() *Service {
	return New(WithFsOptions(&testFS))
}

func TestService_FetchAtMostOnce(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()
	location := model.Location{URL: "embed:///testdata/tool.cwl"}

	first, err := srv.Fetch(ctx, location)
	assert.NoError(t, err)
	assert.EqualValues(t, "CommandLineTool", first.LookupString("class"))

	second, err := srv.Fetch(ctx, location)
	assert.NoError(t, err)
	assert.Same(t, first, second)

	// a fragment reference still hits the same document cache entry
	_, err = srv.Fetch(ctx, location.WithFragment("message"))
	assert.NoError(t, err)
	_, err = srv.FetchText(ctx, location)
	assert.NoError(t, err)

	assert.EqualValues(t, 1, srv.FetchCount())

	srv.Reset()
	assert.EqualValues(t, 0, srv.FetchCount())
	_, err = srv.Fetch(ctx, location)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, srv.FetchCount())
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()
	location := model.Location{URL: "mem://localhost/seeded/wf.cwl"}

	node, err := yml.Parse([]byte("class: Workflow\n"))
	assert.NoError(t, err)
	srv.Seed(location, node)

	fetched, err := srv.Fetch(ctx, location)
	assert.NoError(t, err)
	assert.Same(t, node, fetched)
	assert.EqualValues(t, 0, srv.FetchCount())
}

func TestService_FetchErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()

	_, err := srv.Fetch(ctx, model.Location{URL: "embed:///testdata/absent.cwl"})
	var fetchErr *model.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	// failed downloads count as attempts
	assert.EqualValues(t, 1, srv.FetchCount())

	_, err = srv.Fetch(ctx, model.Location{URL: "embed:///testdata/bad.cwl"})
	var parseErr *model.ParseError
	assert.ErrorAs(t, err, &parseErr)

	// a failed parse is cached like a successful one
	_, err = srv.Fetch(ctx, model.Location{URL: "embed:///testdata/bad.cwl"})
	assert.ErrorAs(t, err, &parseErr)
	assert.EqualValues(t, 2, srv.FetchCount())
}

func TestExtractFragment(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()

	location := model.Location{URL: "embed:///testdata/types.yml"}
	doc, err := srv.Fetch(ctx, location)
	assert.NoError(t, err)

	sample, err := ExtractFragment(location, doc, "Sample")
	assert.NoError(t, err)
	assert.EqualValues(t, "record", sample.LookupString("type"))
	assert.EqualValues(t, "Sample", sample.LookupString("name"))

	_, err = ExtractFragment(location, doc, "Missing")
	var notFound *model.FragmentNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.EqualValues(t, "Missing", notFound.Fragment)

	whole, err := ExtractFragment(location, doc, "")
	assert.NoError(t, err)
	assert.Same(t, doc, whole)
}

func TestExtractFragment_Graph(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()

	location := model.Location{URL: "embed:///testdata/graph.cwl"}
	doc, err := srv.Fetch(ctx, location)
	assert.NoError(t, err)

	echo, err := ExtractFragment(location, doc, "echo")
	assert.NoError(t, err)
	assert.EqualValues(t, "CommandLineTool", echo.LookupString("class"))
}

func TestSymbolicLink(t *testing.T) {
	remote := model.Location{URL: "https://example.com/repo/tool.cwl"}
	local := model.Location{URL: "/data/tool.cwl"}

	target, ok := symbolicLink(remote, []byte("../common/tool.cwl"))
	assert.True(t, ok)
	assert.EqualValues(t, "../common/tool.cwl", target)

	_, ok = symbolicLink(local, []byte("../common/tool.cwl"))
	assert.False(t, ok)

	_, ok = symbolicLink(remote, []byte("class: CommandLineTool\ninputs: []\n"))
	assert.False(t, ok)

	_, ok = symbolicLink(remote, []byte("plainword"))
	assert.False(t, ok)
}
