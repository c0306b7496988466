package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/errs"
	"github.com/unheard/unheard-backend/pkg/service"
)

// cmsAPI talks to the headless CMS. The CMS schema marks the
// moderator-authored fields (status, moderationNotes, featured) as readOnly,
// so an upsert from here never overwrites a moderation decision on an
// existing document.
type cmsAPI struct {
	c     *http.Client
	url   string
	token string
	log   zerolog.Logger
	debug bool
}

var _ service.CMSAPI = &cmsAPI{}

func NewCMSAPI(url, token string, debug bool, log zerolog.Logger) *cmsAPI {
	return &cmsAPI{
		c:     http.DefaultClient,
		url:   url,
		token: token,
		log:   log,
		debug: debug,
	}
}

func (c *cmsAPI) request(ctx context.Context, method, path string, body interface{}, v interface{}) error {
	const op errs.Op = "cmsAPI.request"

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return errs.E(errs.IO, op, err, errs.Parameter("request_body"))
		}
	}

	res, err := c.performRequest(ctx, method, path, buf)
	if err != nil {
		return errs.E(op, err)
	}
	defer res.Body.Close()

	if c.debug {
		reqdump, _ := httputil.DumpRequestOut(res.Request, true)
		c.log.Info().Msg(string(reqdump))

		respdump, _ := httputil.DumpResponse(res, true)
		c.log.Info().Msg(string(respdump))
	}

	if res.StatusCode == http.StatusNotFound {
		return errs.E(errs.NotExist, op, fmt.Errorf("%v %v: document not found", method, path))
	}

	if res.StatusCode > 299 {
		errorMesgBytes, err := io.ReadAll(res.Body)
		if err != nil {
			return errs.E(errs.IO, op, err)
		}
		c.log.Error().Fields(map[string]any{
			"error_message": string(errorMesgBytes),
			"method":        method,
			"path":          path,
		}).Msg("cms_request")
		return errs.E(errs.IO, op, fmt.Errorf("%v %v: non 2xx status code, got: %v", method, path, res.StatusCode))
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return errs.E(errs.IO, op, err, errs.Parameter("response_body"))
	}

	return nil
}

func (c *cmsAPI) performRequest(ctx context.Context, method, path string, buffer io.ReadWriter) (*http.Response, error) {
	const op errs.Op = "cmsAPI.performRequest"

	var body io.Reader
	if buffer != nil {
		body = buffer
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	return resp, nil
}

func (c *cmsAPI) GetDocument(ctx context.Context, id string) (*service.StoryDocument, error) {
	const op errs.Op = "cmsAPI.GetDocument"

	doc := &service.StoryDocument{}

	err := c.request(ctx, http.MethodGet, "/stories/"+id, nil, doc)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return doc, nil
}

func (c *cmsAPI) GetDocuments(ctx context.Context) ([]*service.StoryDocument, error) {
	const op errs.Op = "cmsAPI.GetDocuments"

	var docs []*service.StoryDocument

	err := c.request(ctx, http.MethodGet, "/stories", nil, &docs)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return docs, nil
}

func (c *cmsAPI) UpsertDocument(ctx context.Context, doc *service.StoryDocument) error {
	const op errs.Op = "cmsAPI.UpsertDocument"

	err := c.request(ctx, http.MethodPut, "/stories/"+doc.ID, doc, nil)
	if err != nil {
		return errs.E(op, err)
	}

	return nil
}

func (c *cmsAPI) CountDocuments(ctx context.Context) (int, error) {
	const op errs.Op = "cmsAPI.CountDocuments"

	var out struct {
		Count int `json:"count"`
	}

	err := c.request(ctx, http.MethodGet, "/stories/count", nil, &out)
	if err != nil {
		return 0, errs.E(op, err)
	}

	return out.Count, nil
}
