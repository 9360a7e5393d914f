package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
}

type sectionsBody struct {
	Sections []models.RemoteSection `json:"sections"`
}

type lessonsBody struct {
	Lessons []models.RemoteLesson `json:"lessons"`
}

type filesBody struct {
	Files []models.MediaReference `json:"files"`
}

type removeFileBody struct {
	PublicID string `json:"publicId"`
}

// RESTClient implements Client over HTTP/JSON.
type RESTClient struct {
	http   *resty.Client
	tokens TokenProvider

	refreshMu sync.Mutex
}

// NewRESTClient returns a client for the backend at baseURL. timeout bounds
// every single HTTP exchange; zero means no limit.
func NewRESTClient(baseURL string, timeout time.Duration, tokens TokenProvider) *RESTClient {
	h := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		h.SetTimeout(timeout)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &RESTClient{http: h, tokens: tokens}
}

// send builds a request with build and executes it, refreshing the token
// and retrying once on "token expired". build is called once per attempt.
func (c *RESTClient) send(ctx context.Context, op string, build func(r *resty.Request) (*resty.Response, error)) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: token: %w: %w: %w", op, common.ErrNetwork, common.ErrUnauthorized, err)
	}

	resp, err := c.attempt(ctx, token, build)
	if err != nil {
		return fmt.Errorf("%s: %w: %w: %w", op, common.ErrNetwork, ErrUnavailable, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized && errorMessage(resp) == common.ErrTokenExpired.Error() {
		fresh, rerr := c.refresh(ctx, token)
		if rerr != nil {
			return fmt.Errorf("%s: refresh token: %w: %w: %w", op, common.ErrNetwork, common.ErrUnauthorized, rerr)
		}
		resp, err = c.attempt(ctx, fresh, build)
		if err != nil {
			return fmt.Errorf("%s: %w: %w: %w", op, common.ErrNetwork, ErrUnavailable, err)
		}
	}

	return mapStatus(op, resp)
}

func (c *RESTClient) attempt(ctx context.Context, token string, build func(r *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	r := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if token != "" {
		r.SetAuthToken(token)
	}
	return build(r)
}

// refresh obtains a new token unless another request already replaced the
// stale one.
func (c *RESTClient) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if cur, err := c.tokens.Token(ctx); err == nil && cur != stale {
		return cur, nil
	}
	return c.tokens.Refresh(ctx)
}

func errorMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*errorBody); ok && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(resp.String())
}

// mapStatus converts a non-2xx answer into an error matching ErrNetwork and
// the sentinel for its status.
func mapStatus(op string, resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	msg := errorMessage(resp)
	if msg == "" {
		msg = http.StatusText(code)
	}

	var kind error
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		kind = common.ErrValidation
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = common.ErrUnauthorized
	case code == http.StatusNotFound:
		kind = common.ErrNotFound
	case code == http.StatusConflict:
		kind = common.ErrOrderConflict
	case code >= 500:
		kind = common.ErrInternal
	default:
		kind = ErrUnexpectedResponse
	}
	return fmt.Errorf("%s: %d %s: %w: %w", op, code, msg, common.ErrNetwork, kind)
}

func (c *RESTClient) ListSections(ctx context.Context, courseID string) ([]models.RemoteSection, error) {
	var out sectionsBody
	err := c.send(ctx, "list sections", func(r *resty.Request) (*resty.Response, error) {
		out = sectionsBody{}
		return r.SetResult(&out).SetPathParam("courseId", courseID).Get("/sections/{courseId}")
	})
	if err != nil {
		return nil, err
	}
	return out.Sections, nil
}

func (c *RESTClient) CreateSection(ctx context.Context, req models.NewSectionRequest) (models.RemoteSection, error) {
	var out models.RemoteSection
	err := c.send(ctx, "create section", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/sections")
	})
	return out, err
}

func (c *RESTClient) UpdateSection(ctx context.Context, sectionID string, req models.UpdateSectionRequest) (models.RemoteSection, error) {
	var out models.RemoteSection
	err := c.send(ctx, "update section", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).SetPathParam("id", sectionID).Put("/sections/{id}")
	})
	return out, err
}

func (c *RESTClient) DeleteSection(ctx context.Context, sectionID string) error {
	return c.send(ctx, "delete section", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", sectionID).Delete("/sections/{id}")
	})
}

func (c *RESTClient) ListLessons(ctx context.Context, sectionID string) ([]models.RemoteLesson, error) {
	var out lessonsBody
	err := c.send(ctx, "list lessons", func(r *resty.Request) (*resty.Response, error) {
		out = lessonsBody{}
		return r.SetResult(&out).SetPathParam("sectionId", sectionID).Get("/lessons/section/{sectionId}")
	})
	if err != nil {
		return nil, err
	}
	return out.Lessons, nil
}

func (c *RESTClient) CreateLesson(ctx context.Context, req models.NewLessonRequest) (models.RemoteLesson, error) {
	var out models.RemoteLesson
	err := c.send(ctx, "create lesson", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/lessons")
	})
	return out, err
}

func (c *RESTClient) UpdateLesson(ctx context.Context, lessonID string, req models.UpdateLessonRequest) (models.RemoteLesson, error) {
	var out models.RemoteLesson
	err := c.send(ctx, "update lesson", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).SetPathParam("id", lessonID).Put("/lessons/{id}")
	})
	return out, err
}

func (c *RESTClient) DeleteLesson(ctx context.Context, lessonID string) error {
	return c.send(ctx, "delete lesson", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", lessonID).Delete("/lessons/{id}")
	})
}

// UploadFile posts file as the multipart field "files". The body is rewound
// before each attempt so a retried upload sends the whole payload.
func (c *RESTClient) UploadFile(ctx context.Context, file models.MediaFile) (models.MediaReference, error) {
	if file.Body == nil {
		return models.MediaReference{}, errors.New("upload: empty body")
	}

	var out filesBody
	err := c.send(ctx, "upload file", func(r *resty.Request) (*resty.Response, error) {
		if _, err := file.Body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind %s: %w", file.Name, err)
		}
		out = filesBody{}
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		return r.SetResult(&out).
			SetMultipartField("files", file.Name, ct, file.Body).
			Post("/files/upload")
	})
	if err != nil {
		return models.MediaReference{}, err
	}
	if len(out.Files) == 0 {
		return models.MediaReference{}, fmt.Errorf("upload file: no files in response: %w: %w", common.ErrNetwork, ErrUnexpectedResponse)
	}
	return out.Files[0], nil
}

func (c *RESTClient) RemoveFile(ctx context.Context, publicID string) error {
	return c.send(ctx, "remove file", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(removeFileBody{PublicID: publicID}).Delete("/files/remove")
	})
}
