package controller

import (
	"mime"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// ContentTypeMatcher compares media types, ignoring parameters such as charset.
type ContentTypeMatcher struct {
	contentType string
}

func RespondWithContentType(contentType string) ContentTypeMatcher {
	return ContentTypeMatcher{contentType: contentType}
}

func (m ContentTypeMatcher) Description() string {
	return "respond with content type " + m.contentType
}

func (m ContentTypeMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	want, _, err := mime.ParseMediaType(m.contentType)
	if err != nil {
		return nil, matchers.Misconfigured(m.Description(), err)
	}
	got := resp.MediaType()
	if strings.EqualFold(got, want) {
		return matchers.Pass("contentType", "Content-Type", m.Description()), nil
	}
	return matchers.Fail("contentType", "Content-Type", m.Description(),
		"expected response to be %s, but was %q", want, resp.ContentType()).WithValues(want, got), nil
}
